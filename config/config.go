package config

import (
	"fmt"
	"log"

	"quizzesapi/store"

	"github.com/jessevdk/go-flags"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config is read from command line flags, falling back to environment
// variables and then to the defaults below.
type Config struct {
	Port        string `long:"port" env:"PORT" default:"8080" description:"Port the API listens on"`
	BindAddress string `long:"bind-address" env:"BIND_ADDRESS" description:"Address the API binds to; empty for all interfaces"`

	Store      string `long:"store" env:"STORE" default:"postgres" choice:"postgres" choice:"memory" description:"Where records are kept"`
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"PostgreSQL host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"PostgreSQL port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"quizzes" description:"PostgreSQL user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"quizzes123" description:"PostgreSQL password"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"quizzes" description:"PostgreSQL database"`
	DBLogSQL   bool   `long:"db-log-sql" env:"DB_LOG_SQL" description:"Log every SQL statement"`

	RedisHost     string `long:"redis-host" env:"REDIS_HOST" description:"Redis host for the change feed relay; empty disables it"`
	RedisPort     string `long:"redis-port" env:"REDIS_PORT" default:"6379" description:"Redis port"`
	RedisPassword string `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	RedisChannel  string `long:"redis-channel" env:"REDIS_CHANNEL" default:"quizzesapi:events" description:"Redis channel change events are relayed on"`
}

// Load parses args (normally os.Args[1:]). A request for help is returned as
// a *flags.Error of type flags.ErrHelp.
func Load(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Addr() string {
	return c.BindAddress + ":" + c.Port
}

func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	level := logger.Warn
	if cfg.DBLogSQL {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// InitStore opens the configured store, creating tables when it is backed by
// PostgreSQL.
func InitStore(cfg *Config) (store.Store, error) {
	switch cfg.Store {
	case StoreMemory:
		log.Printf("Using in-memory store; records are lost on exit")
		return store.NewMemory(), nil
	case StorePostgres:
		db, err := InitDB(cfg)
		if err != nil {
			return nil, err
		}
		st := store.NewGorm(db)
		if err := st.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to create tables: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func InitRedis(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       0,
	})
}
