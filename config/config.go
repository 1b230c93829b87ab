package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var (
	AppConfig Config
	envLoaded bool
)

type RedisConfig struct {
	Enabled  bool   `json:"enabled"`
	Address  string `json:"address"`
	Password string `json:"-"`
	DB       int    `json:"db"`
}

type SMTPConfig struct {
	Host      string `json:"host"`
	Port      string `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"-"`
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
}

type AdminConfig struct {
	Email    string `json:"email"`
	Password string `json:"-"`
	Name     string `json:"name"`
}

type Config struct {
	AppName              string        `json:"app_name"`
	Environment          string        `json:"environment"`
	ServerPort           string        `json:"server_port"`
	DBDriver             string        `json:"db_driver"` // postgres or sqlite
	DBHost               string        `json:"db_host"`
	DBPort               string        `json:"db_port"`
	DBUser               string        `json:"db_user"`
	DBPassword           string        `json:"-"`
	DBName               string        `json:"db_name"`
	DBSSLMode            string        `json:"db_ssl_mode"`
	SQLitePath           string        `json:"sqlite_path"`
	DBMaxIdleConns       int           `json:"db_max_idle_conns"`
	DBMaxOpenConns       int           `json:"db_max_open_conns"`
	JWTSecret            string        `json:"-"`
	JWTExpiry            time.Duration `json:"jwt_expiry"`
	CORSOrigins          []string      `json:"cors_origins"`
	LoginRateLimit       int           `json:"login_rate_limit"`
	SentryDSN            string        `json:"-"`
	TaskDueDays          int           `json:"task_due_days"`
	OverdueSweepInterval time.Duration `json:"overdue_sweep_interval"`
	TaskNotifyInterval   time.Duration `json:"task_notify_interval"`
	DraftTTL             time.Duration `json:"draft_ttl"`
	Redis                RedisConfig   `json:"redis"`
	SMTP                 SMTPConfig    `json:"smtp"`
	Admin                AdminConfig   `json:"admin"`
}

func init() {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()
	envLoaded = true
}

func LoadConfig() error {
	AppConfig = Config{
		AppName:        getEnv("APP_NAME", "Agency Ops"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		ServerPort:     getEnv("SERVER_PORT", "5000"),
		DBDriver:       getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", ""),
		DBName:         getEnv("DB_NAME", "agencyops"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "agencyops.db"),
		DBMaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiry:      getEnvAsDuration("JWT_EXPIRY", 24*time.Hour),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		LoginRateLimit: getEnvAsInt("LOGIN_RATE_LIMIT", 10),
		SentryDSN:      getEnv("SENTRY_DSN", ""),

		TaskDueDays:          getEnvAsInt("TASK_DUE_DAYS", 7),
		OverdueSweepInterval: getEnvAsDuration("OVERDUE_SWEEP_INTERVAL", 15*time.Minute),
		TaskNotifyInterval:   getEnvAsDuration("TASK_NOTIFY_INTERVAL", 5*time.Minute),
		DraftTTL:             getEnvAsDuration("ONBOARDING_DRAFT_TTL", 24*time.Hour),

		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Address:  getEnv("REDIS_ADDRESS", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		SMTP: SMTPConfig{
			Host:      getEnv("SMTP_HOST", ""),
			Port:      getEnv("SMTP_PORT", "587"),
			Username:  getEnv("SMTP_USERNAME", ""),
			Password:  getEnv("SMTP_PASSWORD", ""),
			FromEmail: getEnv("FROM_EMAIL", ""),
			FromName:  getEnv("SMTP_FROM_NAME", "Agency Ops"),
		},
		Admin: AdminConfig{
			Email:    getEnv("ADMIN_EMAIL", ""),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
	}

	if err := AppConfig.Validate(); err != nil {
		return err
	}

	logConfig()
	return nil
}

// Validate checks required settings.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when DB_DRIVER=sqlite")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Environment == "production" && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if c.TaskDueDays < 1 {
		return fmt.Errorf("TASK_DUE_DAYS must be at least 1")
	}
	return nil
}

// IsDevelopment reports whether error details may be returned to clients.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Helper functions
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if !envLoaded && fallback == "" {
		log.Printf("⚠️ Environment variable %s not found and no fallback provided", key)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var values []string
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

func maskPassword(dsn string) string {
	const passwordMarker = "password="
	startIdx := strings.Index(dsn, passwordMarker)
	if startIdx == -1 {
		return dsn
	}

	startIdx += len(passwordMarker)
	endIdx := strings.IndexAny(dsn[startIdx:], " ")
	if endIdx == -1 {
		return dsn[:startIdx] + "*****"
	}
	return dsn[:startIdx] + "*****" + dsn[startIdx+endIdx:]
}

func logConfig() {
	log.Println("🔧 Loaded configuration:")
	log.Printf("Environment: %s", AppConfig.Environment)
	log.Printf("Server Port: %s", AppConfig.ServerPort)
	if AppConfig.DBDriver == "sqlite" {
		log.Printf("Database: sqlite %s", AppConfig.SQLitePath)
	} else {
		log.Printf("Database: %s@%s:%s/%s",
			AppConfig.DBUser,
			AppConfig.DBHost,
			AppConfig.DBPort,
			AppConfig.DBName)
	}
	log.Printf("Redis: %t, SMTP: %t, Sentry: %t",
		AppConfig.Redis.Enabled,
		AppConfig.SMTP.Host != "",
		AppConfig.SentryDSN != "")
}
