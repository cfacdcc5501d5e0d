package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Drivers de persistência aceitos em STORAGE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config armazena todas as configurações do serviço stocktrack.
type Config struct {
	// Geral
	Port        string
	Environment string
	LogLevel    string

	// Persistência
	StorageDriver string
	DatabaseURL   string
	DBTimeout     time.Duration
	MigrationsDir string

	// Cache (Redis). RedisAddr vazio desliga cache e rate limit.
	RedisAddr string
	CacheTTL  time.Duration

	// Segurança (JWT)
	AuthEnabled  bool
	JWTSecretKey string
	TokenExpiry  time.Duration
	AdminEmail   string

	// Rate Limiting
	RateLimitMaxRequests int
	RateLimitPeriod      time.Duration

	// Mensageria (RabbitMQ). RabbitMQURL vazio desliga os alertas.
	RabbitMQURL   string
	LowStockQueue string
}

// LoadConfig lê as variáveis de ambiente (o .env já deve ter sido carregado pelo godotenv).
func LoadConfig() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("DB_TIMEOUT_SEC", 5)
	v.SetDefault("MIGRATIONS_DIR", "./sql")
	v.SetDefault("CACHE_TTL_SEC", 300)
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_EXPIRY_MIN", 60)
	v.SetDefault("RATE_LIMIT_MAX_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_PERIOD_MIN", 1)
	v.SetDefault("LOW_STOCK_QUEUE", "inventory.low_stock")
	v.AutomaticEnv()

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),

		StorageDriver: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		DatabaseURL:   v.GetString("DATABASE_URL"),
		DBTimeout:     time.Duration(v.GetInt("DB_TIMEOUT_SEC")) * time.Second,
		MigrationsDir: v.GetString("MIGRATIONS_DIR"),

		RedisAddr: v.GetString("REDIS_ADDR"),
		CacheTTL:  time.Duration(v.GetInt("CACHE_TTL_SEC")) * time.Second,

		AuthEnabled:  v.GetBool("AUTH_ENABLED"),
		JWTSecretKey: v.GetString("JWT_SECRET_KEY"),
		TokenExpiry:  time.Duration(v.GetInt("JWT_EXPIRY_MIN")) * time.Minute,
		AdminEmail:   v.GetString("ADMIN_EMAIL"),

		RateLimitMaxRequests: v.GetInt("RATE_LIMIT_MAX_REQUESTS"),
		RateLimitPeriod:      time.Duration(v.GetInt("RATE_LIMIT_PERIOD_MIN")) * time.Minute,

		RabbitMQURL:   v.GetString("RABBITMQ_URL"),
		LowStockQueue: v.GetString("LOW_STOCK_QUEUE"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate verifica combinações obrigatórias e valores numéricos.
func (c *Config) Validate() error {
	var errs []error

	switch c.StorageDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL é obrigatória com STORAGE_DRIVER=postgres"))
		}
	case DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER desconhecido: %q", c.StorageDriver))
	}

	if c.AuthEnabled && c.JWTSecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY é obrigatória com AUTH_ENABLED=true"))
	}
	if c.DBTimeout <= 0 {
		errs = append(errs, errors.New("DB_TIMEOUT_SEC deve ser positivo"))
	}
	if c.RateLimitMaxRequests <= 0 || c.RateLimitPeriod <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX_REQUESTS e RATE_LIMIT_PERIOD_MIN devem ser positivos"))
	}

	return errors.Join(errs...)
}
