package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
)

type Config struct {
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`
	PageSize int    `env:"PAGE_SIZE, default=5"`
	SeedDemo bool   `env:"SEED_DEMO, default=false"`

	Session SessionConfig
	Store   StoreConfig
	MySQL   MySQLConfig
	Redis   RedisConfig
	Mongo   MongoConfig
}

type SessionConfig struct {
	Secret string        `env:"SESSION_SECRET, default=orderdesk-dev-secret"`
	TTL    time.Duration `env:"SESSION_TTL,    default=24h"`
}

type StoreConfig struct {
	Backend    string `env:"STORE_BACKEND,    default=sqlite"`
	KeyPrefix  string `env:"STORE_KEY_PREFIX"`
	SQLitePath string `env:"SQLITE_PATH,      default=orderdesk.db"`
}

type MySQLConfig struct {
	DSN string `env:"MYSQL_DSN, default=orderdesk:orderdesk@tcp(127.0.0.1:3306)/orderdesk?charset=utf8mb4&parseTime=True&loc=UTC"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=orderdesk"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration from l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the application cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendSQLite, BackendMySQL, BackendRedis, BackendMongo:
	default:
		return fmt.Errorf("STORE_BACKEND: unknown backend %q", c.Store.Backend)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE: must be at least 1, got %d", c.PageSize)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET: must not be empty")
	}
	return nil
}

// IsDevelopment reports whether logs should be human-readable.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
