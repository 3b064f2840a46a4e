package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service. Loaded once at
// process start and treated as immutable afterwards.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Notification NotificationConfig
	Ticket       TicketConfig
	Pagination   PaginationConfig
	Reports      ReportConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	CORSOrigins           string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret               string
	AccessTokenTTLMinutes   int
	PasswordResetTTLMinutes int
	BcryptCost              int
}

// StorageConfig holds S3-compatible object storage settings.
type StorageConfig struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	PublicBase   string
}

// NotificationConfig holds outbound notification settings.
type NotificationConfig struct {
	EmailFrom        string
	EmailEndpoint    string
	WhatsAppToken    string
	WhatsAppEndpoint string
}

// TicketConfig captures lifecycle policy knobs.
type TicketConfig struct {
	AllowReopenClosed   bool
	ReopenWindowDays    int
	MinDeleteReasonLen  int
	AutoApproveRoles    []string
	DefaultAssigneeID   string
	ApprovalMinLevel    int
}

// PaginationConfig sets list endpoint defaults and caps.
type PaginationConfig struct {
	DefaultLimit int
	MaxLimit     int
}

// ReportConfig holds cron expressions for periodic report jobs.
type ReportConfig struct {
	Enabled        bool
	DailySchedule  string
	WeeklySchedule string
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-desk"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			CORSOrigins:           getEnv("CORS_ORIGINS", "*"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:               getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes:   getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			PasswordResetTTLMinutes: getEnvAsInt("AUTH_PASSWORD_RESET_TTL_MINUTES", 30),
			BcryptCost:              getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		Storage: StorageConfig{
			Bucket:       getEnv("STORAGE_BUCKET", "support-desk-uploads"),
			Region:       getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:     os.Getenv("STORAGE_ENDPOINT"),
			AccessKey:    os.Getenv("STORAGE_ACCESS_KEY"),
			SecretKey:    os.Getenv("STORAGE_SECRET_KEY"),
			UsePathStyle: getEnvAsBool("STORAGE_USE_PATH_STYLE", false),
			PublicBase:   os.Getenv("STORAGE_PUBLIC_BASE_URL"),
		},
		Notification: NotificationConfig{
			EmailFrom:        getEnv("NOTIFY_EMAIL_FROM", "noreply@example.com"),
			EmailEndpoint:    os.Getenv("NOTIFY_EMAIL_ENDPOINT"),
			WhatsAppToken:    os.Getenv("NOTIFY_WHATSAPP_TOKEN"),
			WhatsAppEndpoint: os.Getenv("NOTIFY_WHATSAPP_ENDPOINT"),
		},
		Ticket: TicketConfig{
			AllowReopenClosed:  getEnvAsBool("TICKET_ALLOW_REOPEN_CLOSED", true),
			ReopenWindowDays:   getEnvAsInt("TICKET_REOPEN_WINDOW_DAYS", 7),
			MinDeleteReasonLen: getEnvAsInt("TICKET_MIN_DELETE_REASON_LEN", 10),
			AutoApproveRoles:   getEnvAsList("TICKET_AUTO_APPROVE_ROLES", []string{"MANAGER"}),
			DefaultAssigneeID:  os.Getenv("TICKET_DEFAULT_ASSIGNEE_ID"),
			ApprovalMinLevel:   getEnvAsInt("TICKET_APPROVAL_MIN_LEVEL", 50),
		},
		Pagination: PaginationConfig{
			DefaultLimit: getEnvAsInt("PAGINATION_DEFAULT_LIMIT", 10),
			MaxLimit:     getEnvAsInt("PAGINATION_MAX_LIMIT", 100),
		},
		Reports: ReportConfig{
			Enabled:        getEnvAsBool("REPORTS_ENABLED", false),
			DailySchedule:  getEnv("REPORTS_DAILY_SCHEDULE", "5 0 * * *"),
			WeeklySchedule: getEnv("REPORTS_WEEKLY_SCHEDULE", "10 0 * * 1"),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// IsProduction reports whether stack traces should be suppressed in responses.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// ReopenWindow returns the reopen window as a duration.
func (t TicketConfig) ReopenWindow() time.Duration {
	return time.Duration(t.ReopenWindowDays) * 24 * time.Hour
}

// AutoApprovesRole reports whether the role code resolves straight to RESOLVED.
func (t TicketConfig) AutoApprovesRole(roleCode string) bool {
	for _, code := range t.AutoApproveRoles {
		if strings.EqualFold(code, roleCode) {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
