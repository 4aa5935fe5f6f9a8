package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	FinanceAPI FinanceAPIConfig
	Dashboard  DashboardConfig
	AdminPanel AdminPanelConfig
	Audit      AuditConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// FinanceAPIConfig points the client at the upstream finance service.
type FinanceAPIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// DashboardConfig governs dashboard fetch sizes and cache tuning.
type DashboardConfig struct {
	CacheEnabled       bool
	CacheTTL           time.Duration
	PaymentsLimit      int
	StudentsLimit      int
	RevenueSeriesDays  int
	ExportDefaultLimit int
}

// AdminPanelConfig lists the roles allowed into the admin panel and the locale used for redirects.
type AdminPanelConfig struct {
	Roles         []string
	DefaultLocale string
}

// AuditConfig toggles persistence of admin finance actions.
type AuditConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
	MaxRetries int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:   v.GetString("JWT_SECRET"),
		Issuer:   v.GetString("JWT_ISSUER"),
		Audience: splitAndTrim(v.GetString("JWT_AUDIENCE")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.FinanceAPI = FinanceAPIConfig{
		BaseURL: strings.TrimRight(v.GetString("FINANCE_API_BASE_URL"), "/"),
		Timeout: parseDuration(v.GetString("FINANCE_API_TIMEOUT"), 10*time.Second),
	}

	cfg.Dashboard = DashboardConfig{
		CacheEnabled:       v.GetBool("ENABLE_DASHBOARD_CACHE"),
		CacheTTL:           parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 30*time.Second),
		PaymentsLimit:      v.GetInt("DASHBOARD_PAYMENTS_LIMIT"),
		StudentsLimit:      v.GetInt("DASHBOARD_STUDENTS_LIMIT"),
		RevenueSeriesDays:  v.GetInt("DASHBOARD_REVENUE_SERIES_DAYS"),
		ExportDefaultLimit: v.GetInt("PAYMENTS_EXPORT_LIMIT"),
	}

	cfg.AdminPanel = AdminPanelConfig{
		Roles:         splitAndTrim(strings.ToUpper(v.GetString("ADMIN_PANEL_ROLES"))),
		DefaultLocale: v.GetString("DEFAULT_LOCALE"),
	}

	cfg.Audit = AuditConfig{
		Enabled:    v.GetBool("ENABLE_AUDIT"),
		Workers:    v.GetInt("AUDIT_WORKERS"),
		BufferSize: v.GetInt("AUDIT_BUFFER_SIZE"),
		MaxRetries: v.GetInt("AUDIT_MAX_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "admin_dashboard")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("JWT_AUDIENCE", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("FINANCE_API_BASE_URL", "http://localhost:3001/api")
	v.SetDefault("FINANCE_API_TIMEOUT", "10s")

	v.SetDefault("ENABLE_DASHBOARD_CACHE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "30s")
	v.SetDefault("DASHBOARD_PAYMENTS_LIMIT", 20)
	v.SetDefault("DASHBOARD_STUDENTS_LIMIT", 5)
	v.SetDefault("DASHBOARD_REVENUE_SERIES_DAYS", 0)
	v.SetDefault("PAYMENTS_EXPORT_LIMIT", 100)

	v.SetDefault("ADMIN_PANEL_ROLES", "SUPERADMIN,ADMIN,INSTRUCTOR")
	v.SetDefault("DEFAULT_LOCALE", "en")

	v.SetDefault("ENABLE_AUDIT", false)
	v.SetDefault("AUDIT_WORKERS", 2)
	v.SetDefault("AUDIT_BUFFER_SIZE", 256)
	v.SetDefault("AUDIT_MAX_RETRIES", 3)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
