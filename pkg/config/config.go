package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Port string `toml:"port"`
	Env  string `toml:"env"`

	PostgresURL   string `toml:"postgresUrl"`
	MongoURI      string `toml:"mongoUri"`
	MongoDatabase string `toml:"mongoDatabase"`

	RedisAddr     string `toml:"redisAddr"`
	RedisPassword string `toml:"redisPassword"`
	RedisDB       int    `toml:"redisDb"`

	JWTSecret      string        `toml:"jwtSecret"`
	JWTExpiry      time.Duration `toml:"-"`
	JWTExpiryHours int           `toml:"jwtExpiryHours"`

	FirebaseCredentialsPath string `toml:"firebaseCredentialsPath"`
	FirebaseProjectID       string `toml:"firebaseProjectId"`

	LogLevel string `toml:"logLevel"`
	LogPath  string `toml:"logPath"`

	QueryTimeout        time.Duration `toml:"-"`
	QueryTimeoutSeconds int           `toml:"queryTimeoutSeconds"`
}

// Load reads .env (if present), the process environment and, when CONFIG_FILE
// points at one, a TOML file whose non-zero values override the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		PostgresURL:             getEnv("POSTGRES_CONN_STR", "host=localhost user=postgres password=postgres dbname=reachout port=5432 sslmode=disable"),
		MongoURI:                getEnv("MONGO_URI", ""),
		MongoDatabase:           getEnv("MONGO_DATABASE", "reachout"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		JWTSecret:               getEnv("JWT_SECRET", "supersecretjwtkey"),
		JWTExpiryHours:          getEnvInt("JWT_EXPIRY_HOURS", 72),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", ""),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		LogLevel:                getEnv("LOG_LEVEL", "info"),
		LogPath:                 getEnv("LOG_PATH", ""),
		QueryTimeoutSeconds:     getEnvInt("QUERY_TIMEOUT_SECONDS", 5),
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	if cfg.JWTExpiryHours <= 0 {
		return nil, fmt.Errorf("jwt expiry must be positive, got %d hours", cfg.JWTExpiryHours)
	}
	if cfg.QueryTimeoutSeconds <= 0 {
		return nil, fmt.Errorf("query timeout must be positive, got %d seconds", cfg.QueryTimeoutSeconds)
	}
	cfg.JWTExpiry = time.Duration(cfg.JWTExpiryHours) * time.Hour
	cfg.QueryTimeout = time.Duration(cfg.QueryTimeoutSeconds) * time.Second

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
