package config

import (
	"fmt"
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type GeneralConfig struct {
	Env     string `env:"ENV" envDefault:"dev"`
	Service string `env:"SERVICE" envDefault:"fundledger"`
}

type HTTPConfig struct {
	Port            int           `env:"PORT" envDefault:"8080"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

// DatabaseConfig configures the PostgreSQL ledger store. When Enabled is false
// the ledger is kept in process memory.
type DatabaseConfig struct {
	Enabled         bool   `env:"ENABLED" envDefault:"false"`
	Host            string `env:"HOST" envDefault:"localhost"`
	Port            int    `env:"PORT" envDefault:"5432"`
	User            string `env:"USER" envDefault:"postgres"`
	Password        string `env:"PASSWORD" envDefault:"postgres"`
	DBName          string `env:"NAME" envDefault:"fundledger"`
	SSLMode         string `env:"SSLMODE" envDefault:"disable"`
	MaxOpenConns    int    `env:"MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdleConns    int    `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime int    `env:"CONN_MAX_LIFETIME_MINUTES" envDefault:"30"`
	ConnMaxIdleTime int    `env:"CONN_MAX_IDLE_TIME_MINUTES" envDefault:"5"`
	MigrationsPath  string `env:"MIGRATIONS_PATH" envDefault:"migrations"`
}

// DSN returns the lib/pq connection string for the configured database
func (c DatabaseConfig) DSN() string {
	return c.dsn(c.DBName)
}

// MaintenanceDSN returns the connection string for the postgres maintenance database
func (c DatabaseConfig) MaintenanceDSN() string {
	return c.dsn("postgres")
}

func (c DatabaseConfig) dsn(dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, dbname, c.SSLMode)
}

type RedisConfig struct {
	Addr          string `env:"ADDR" envDefault:"localhost:6379"`
	Password      string `env:"PASSWORD" envDefault:""`
	DB            int    `env:"DB" envDefault:"0"`
	PublishEvents bool   `env:"PUBLISH_EVENTS" envDefault:"false"`
	EventsChannel string `env:"EVENTS_CHANNEL" envDefault:"fundledger:events"`
}

type AuthConfig struct {
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-secret-change-me"`
	Issuer    string        `env:"ISSUER" envDefault:"fundledger"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
}

// LedgerConfig holds deployment parameters of the ledger
type LedgerConfig struct {
	// Owner is the admin principal installed when the ledger is first deployed
	Owner string `env:"OWNER"`
}

type VaultConfig struct {
	DevEndpoints bool `env:"DEV_ENDPOINTS" envDefault:"false"`
}

type AppConfig struct {
	GeneralConfig  GeneralConfig  `envPrefix:"APP_"`
	HTTPConfig     HTTPConfig     `envPrefix:"HTTP_"`
	LogConfig      LogConfig      `envPrefix:"LOG_"`
	DatabaseConfig DatabaseConfig `envPrefix:"DB_"`
	CacheConfig    CacheConfig    `envPrefix:"CACHE_"`
	RedisConfig    RedisConfig    `envPrefix:"REDIS_"`
	AuthConfig     AuthConfig     `envPrefix:"AUTH_"`
	LedgerConfig   LedgerConfig   `envPrefix:"LEDGER_"`
	VaultConfig    VaultConfig    `envPrefix:"VAULT_"`
}

var AppConfigInstance AppConfig

// LoadConfigs loads the configurations from the environment variables
func LoadConfigs() error {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env files: %v", err)
	}

	cfg, err := Parse()
	if err != nil {
		return err
	}
	AppConfigInstance = cfg
	return nil
}

// Parse reads the configuration from the current environment without touching AppConfigInstance
func Parse() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return cfg, nil
}
