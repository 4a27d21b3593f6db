package zlog

import (
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how verbosely the process logs.
type Options struct {
	Level      string // debug, info, warn, error
	Path       string // rotated log file; empty means stdout only
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Console    bool // human readable encoder instead of JSON
}

var (
	mu     sync.RWMutex
	logger = zap.NewNop()
)

// Init builds the process logger. It is safe to call more than once.
func Init(opts Options) error {
	level := zap.NewAtomicLevel()
	if opts.Level != "" {
		if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
			return err
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)
	if opts.Console {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	if opts.Path != "" {
		sinks = append(sinks, zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.Path,
			MaxSize:    orDefault(opts.MaxSizeMB, 100),
			MaxBackups: orDefault(opts.MaxBackups, 5),
			MaxAge:     orDefault(opts.MaxAgeDays, 30),
			Compress:   true,
		}))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	Replace(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
	return nil
}

// Replace swaps the process logger, mostly for tests.
func Replace(l *zap.Logger) {
	mu.Lock()
	logger = l
	mu.Unlock()
}

// L returns the current logger without the facade's caller skip.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger.WithOptions(zap.AddCallerSkip(-1))
}

func current() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

func Debug(msg string, fields ...zap.Field) { current().Debug(msg, fields...) }
func Info(msg string, fields ...zap.Field)  { current().Info(msg, fields...) }
func Warn(msg string, fields ...zap.Field)  { current().Warn(msg, fields...) }
func Error(msg string, fields ...zap.Field) { current().Error(msg, fields...) }
func Fatal(msg string, fields ...zap.Field) { current().Fatal(msg, fields...) }

// Sync flushes buffered entries; call before exit.
func Sync() error {
	return current().Sync()
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
