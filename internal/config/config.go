package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"barangaylink/internal/pkg/logger"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Cookie   CookieConfig
	AI       AIConfig
	Upload   UploadConfig
	Log      LogConfig
	Admin    AdminSeedConfig
	Jobs     JobsConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // mysql, postgres or sqlite
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite file, ":memory:" allowed
}

// JWTConfig holds token lifetimes and secrets
type JWTConfig struct {
	Secret            string
	RefreshSecret     string
	AccessTokenMins   int
	RefreshTokenDays  int
	ResetTokenMinutes int
}

// CookieConfig holds refresh cookie settings
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// AIConfig points at the prioritization and chatbot services. Empty URLs
// disable the corresponding feature.
type AIConfig struct {
	PriorityURL string
	ChatURL     string
	Timeout     time.Duration
}

// UploadConfig controls request attachments
type UploadConfig struct {
	Dir      string
	MaxBytes int
}

// LogConfig selects logrus level and formatter
type LogConfig struct {
	Level  string
	Format string
}

// AdminSeedConfig is the first administrator created on an empty database
type AdminSeedConfig struct {
	Email    string
	Password string
}

// JobsConfig toggles the cron scheduler
type JobsConfig struct {
	Enabled bool
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Warnf("⚠️ .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Cookie:   loadCookieConfig(appMode),
		AI:       loadAIConfig(),
		Upload: UploadConfig{
			Dir:      getEnv("UPLOAD_DIR", "./uploads"),
			MaxBytes: getEnvInt("UPLOAD_MAX_BYTES", 10<<20),
		},
		Log:   loadLogConfig(appMode),
		Admin: AdminSeedConfig{Email: getEnv("ADMIN_EMAIL", ""), Password: getEnv("ADMIN_PASSWORD", "")},
		Jobs:  JobsConfig{Enabled: getEnvBool("JOBS_ENABLED", true)},
	}

	switch config.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be mysql, postgres or sqlite)", config.Database.Driver)
	}
	if config.IsProd() && strings.HasPrefix(config.JWT.Secret, "default_") {
		return nil, fmt.Errorf("PROD_JWT_SECRET must be set in prod mode")
	}

	AppConfig = config

	logger.Infof("✅ Configuration loaded successfully [MODE: %s, DB: %s]", appMode, config.Database.Driver)
	return config, nil
}

func prefixFor(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := prefixFor(mode)
	driver := strings.ToLower(getEnv("DB_DRIVER", "mysql"))

	defaultPort := "3306"
	if driver == "postgres" {
		defaultPort = "5432"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "barangaylink"),
		SSLMode:  getEnv(prefix+"DB_SSLMODE", "disable"),
		Path:     getEnv(prefix+"DB_PATH", "barangaylink.db"),
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := prefixFor(mode)

	return JWTConfig{
		Secret:            getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:     getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:   getEnvInt("ACCESS_TOKEN_MINUTES", 15),
		RefreshTokenDays:  getEnvInt("REFRESH_TOKEN_DAYS", 7),
		ResetTokenMinutes: getEnvInt("RESET_TOKEN_MINUTES", 30),
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	return CookieConfig{
		Secure:   getEnvBool(prefixFor(mode)+"COOKIE_SECURE", false),
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func loadAIConfig() AIConfig {
	return AIConfig{
		PriorityURL: strings.TrimRight(getEnv("AI_PRIORITY_URL", ""), "/"),
		ChatURL:     strings.TrimRight(getEnv("AI_CHAT_URL", ""), "/"),
		Timeout:     time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 10)) * time.Second,
	}
}

func loadLogConfig(mode string) LogConfig {
	format := "text"
	if mode == "prod" {
		format = "json"
	}
	return LogConfig{
		Level:  getEnv("LOG_LEVEL", "info"),
		Format: getEnv("LOG_FORMAT", format),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://barangaylink.ph"
	}
	return origins
}
