package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	JWT          JWTConfig
	CORS         CORSConfig
	Wizard       WizardConfig
	Integrations IntegrationsConfig
	S3           S3Config
	Security     SecurityConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	LogLevel    string
	LogFormat   string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxIdleConns int
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

// Gateway modes
const (
	GatewayLocal  = "local"
	GatewayRemote = "remote"
)

type WizardConfig struct {
	SessionTTL     time.Duration
	SubmitTimeout  time.Duration
	WebhookBaseURL string
	GatewayMode    string // local, remote
	GatewayURL     string
	GatewayToken   string
}

type IntegrationsConfig struct {
	LineAPIBaseURL string
	GoogleTokenURL string
	RequestTimeout time.Duration
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // S3-compatible endpoint (MinIO); empty means AWS
	LinkExpiry      time.Duration
}

type SecurityConfig struct {
	SealingKey string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "console"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "admin"),
			Password: getEnv("DB_PASSWORD", "1234"),
			DBName:   getEnv("DB_NAME", "restaurant_ops"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),

			MaxIdleConns: parseInt(getEnv("DB_MAX_IDLE_CONNS", "2")),
			MaxOpenConns: parseInt(getEnv("DB_MAX_OPEN_CONNS", "10")),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0")),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key"),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Wizard: WizardConfig{
			SessionTTL:     parseDuration(getEnv("WIZARD_SESSION_TTL", "2h"), 2*time.Hour),
			SubmitTimeout:  parseDuration(getEnv("WIZARD_SUBMIT_TIMEOUT", "30s"), 30*time.Second),
			WebhookBaseURL: getEnv("WIZARD_WEBHOOK_BASE_URL", "https://api.example.com/webhook/line"),
			GatewayMode:    getEnv("GATEWAY_MODE", GatewayLocal),
			GatewayURL:     getEnv("GATEWAY_URL", "http://localhost:8080/api/v1"),
			GatewayToken:   getEnv("GATEWAY_TOKEN", ""),
		},
		Integrations: IntegrationsConfig{
			LineAPIBaseURL: getEnv("LINE_API_BASE_URL", "https://api.line.me"),
			GoogleTokenURL: getEnv("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			RequestTimeout: parseDuration(getEnv("INTEGRATION_TIMEOUT", "10s"), 10*time.Second),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "ap-northeast-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", "restaurant-ops-summaries"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("AWS_S3_ENDPOINT", ""),
			LinkExpiry:      parseDuration(getEnv("AWS_S3_LINK_EXPIRY", "15m"), 15*time.Minute),
		},
		Security: SecurityConfig{
			SealingKey: getEnv("SEALING_KEY", "change-me-in-production"),
		},
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) validate() error {
	switch c.Wizard.GatewayMode {
	case GatewayLocal:
	case GatewayRemote:
		if c.Wizard.GatewayURL == "" {
			return fmt.Errorf("GATEWAY_URL is required when GATEWAY_MODE=%s", GatewayRemote)
		}
	default:
		return fmt.Errorf("unknown GATEWAY_MODE %q", c.Wizard.GatewayMode)
	}
	if c.Server.Environment == "production" && c.Security.SealingKey == "change-me-in-production" {
		return fmt.Errorf("SEALING_KEY must be set in production")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string) int {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		log.Printf("Invalid integer %s, using 0", s)
		return 0
	}
	return n
}

func parseSlice(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
