package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/anonto42/reachout/backend/pkg/zlog"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the datastore connections. Mongo and Redis are optional and stay
// nil when not configured.
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Redis    *redis.Client
}

// InitDB opens every configured datastore and verifies each with a ping.
func InitDB(cfg *Config) (*DB, error) {
	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_CONN_STR environment variable not set")
	}

	db := &DB{}

	postgresDB, err := initPostgres(cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	db.Postgres = postgresDB

	if cfg.MongoURI != "" {
		mongoClient, err := initMongo(cfg.MongoURI)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.Mongo = mongoClient
	} else {
		zlog.Warn("MONGO_URI not set, notification delivery failures are only logged")
	}

	if cfg.RedisAddr != "" {
		redisClient, err := initRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		db.Redis = redisClient
	} else {
		zlog.Warn("REDIS_ADDR not set, unread counts are not cached")
	}

	return db, nil
}

// initPostgres initializes the PostgreSQL database connection using GORM
func initPostgres(connStr string) (*gorm.DB, error) {
	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{Logger: gormLogger, TranslateError: true})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	zlog.Info("Successfully connected to PostgreSQL")
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	zlog.Info("Successfully connected to MongoDB")
	return client, nil
}

func initRedis(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	zlog.Info("Successfully connected to Redis", zap.String("addr", addr))
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		sqlDB, err := db.Postgres.DB()
		if err != nil {
			zlog.Error("Error getting SQL DB from GORM", zap.Error(err))
		} else if err := sqlDB.Close(); err != nil {
			zlog.Error("Error closing PostgreSQL connection", zap.Error(err))
		} else {
			zlog.Info("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			zlog.Error("Error closing MongoDB connection", zap.Error(err))
		} else {
			zlog.Info("MongoDB connection closed")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			zlog.Error("Error closing Redis connection", zap.Error(err))
		} else {
			zlog.Info("Redis connection closed")
		}
	}
}
