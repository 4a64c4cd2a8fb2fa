package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultJWTSecret     = "change-me-jwt-secret"
	defaultAdminPassword = "admin123"
)

// Config holds process-level settings shared by the api and worker binaries.
// Values come from the optional YAML file first, then the environment.
type Config struct {
	Env         string `yaml:"env"`
	HTTPAddr    string `yaml:"http_addr"`
	MetricsAddr string `yaml:"metrics_addr"`

	DatabaseURL string `yaml:"database_url"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	JWTSecret string        `yaml:"jwt_secret"`
	JWTTTL    time.Duration `yaml:"jwt_ttl"`

	UsersCacheTTL    time.Duration `yaml:"users_cache_ttl"`
	ServicesCacheTTL time.Duration `yaml:"services_cache_ttl"`

	TaskResultTTL     time.Duration `yaml:"task_result_ttl"`
	WorkerConcurrency int           `yaml:"worker_concurrency"`

	ReminderSchedule      string `yaml:"reminder_schedule"`
	MonthlyReportSchedule string `yaml:"monthly_report_schedule"`
	PurgeSchedule         string `yaml:"purge_schedule"`

	ExportDir string `yaml:"export_dir"`
	UploadDir string `yaml:"upload_dir"`

	SMTPHost     string `yaml:"smtp_host"`
	SMTPPort     int    `yaml:"smtp_port"`
	SMTPUser     string `yaml:"smtp_user"`
	SMTPPassword string `yaml:"smtp_password"`
	MailSender   string `yaml:"mail_sender"`

	CloudinaryCloudName string `yaml:"cloudinary_cloud_name"`
	CloudinaryAPIKey    string `yaml:"cloudinary_api_key"`
	CloudinaryAPISecret string `yaml:"cloudinary_api_secret"`

	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// Default returns the development defaults. The database is a local sqlite
// file and mail goes to a MailHog instance on localhost.
func Default() *Config {
	return &Config{
		Env:                   "dev",
		HTTPAddr:              ":8000",
		MetricsAddr:           ":9100",
		DatabaseURL:           "household_services.db",
		RedisAddr:             "localhost:6379",
		JWTSecret:             defaultJWTSecret,
		JWTTTL:                24 * time.Hour,
		UsersCacheTTL:         300 * time.Second,
		ServicesCacheTTL:      600 * time.Second,
		TaskResultTTL:         time.Hour,
		WorkerConcurrency:     4,
		ReminderSchedule:      "0 18 * * *",
		MonthlyReportSchedule: "0 8 1 * *",
		PurgeSchedule:         "@daily",
		ExportDir:             "exports",
		UploadDir:             "static/uploads",
		SMTPHost:              "localhost",
		SMTPPort:              1025,
		MailSender:            "no-reply@example.com",
		AdminEmail:            "admin@example.com",
		AdminPassword:         defaultAdminPassword,
		LogLevel:              "info",
		LogFormat:             "text",
	}
}

// Load builds the configuration from .env, CONFIG_FILE and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using environment variables directly")
	}

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.MetricsAddr, "METRICS_ADDR")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.ReminderSchedule, "REMINDER_SCHEDULE")
	setString(&cfg.MonthlyReportSchedule, "MONTHLY_REPORT_SCHEDULE")
	setString(&cfg.PurgeSchedule, "PURGE_SCHEDULE")
	setString(&cfg.ExportDir, "EXPORT_DIR")
	setString(&cfg.UploadDir, "UPLOAD_DIR")
	setString(&cfg.SMTPHost, "SMTP_HOST")
	setString(&cfg.SMTPUser, "EMAIL_USER")
	setString(&cfg.SMTPPassword, "EMAIL_PASS")
	setString(&cfg.MailSender, "MAIL_DEFAULT_SENDER")
	setString(&cfg.CloudinaryCloudName, "CLOUDINARY_CLOUD_NAME")
	setString(&cfg.CloudinaryAPIKey, "CLOUDINARY_API_KEY")
	setString(&cfg.CloudinaryAPISecret, "CLOUDINARY_API_SECRET")
	setString(&cfg.AdminEmail, "ADMIN_EMAIL")
	setString(&cfg.AdminPassword, "ADMIN_PASSWORD")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogFormat, "LOG_FORMAT")

	for name, dst := range map[string]*int{
		"REDIS_DB":           &cfg.RedisDB,
		"SMTP_PORT":          &cfg.SMTPPort,
		"WORKER_CONCURRENCY": &cfg.WorkerConcurrency,
	} {
		if err := setInt(dst, name); err != nil {
			return err
		}
	}

	for name, dst := range map[string]*time.Duration{
		"JWT_TTL":            &cfg.JWTTTL,
		"USERS_CACHE_TTL":    &cfg.UsersCacheTTL,
		"SERVICES_CACHE_TTL": &cfg.ServicesCacheTTL,
		"TASK_RESULT_TTL":    &cfg.TaskResultTTL,
	} {
		if err := setDuration(dst, name); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects settings the processes cannot run with.
func (c *Config) Validate() error {
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be > 0")
	}
	if c.UsersCacheTTL <= 0 || c.ServicesCacheTTL <= 0 {
		return fmt.Errorf("cache TTLs must be > 0")
	}
	if c.TaskResultTTL <= 0 {
		return fmt.Errorf("TASK_RESULT_TTL must be > 0")
	}
	if c.WorkerConcurrency < 1 {
		return fmt.Errorf("WORKER_CONCURRENCY must be >= 1")
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if c.IsProduction() {
		if isEmptyOrDefault(c.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in production JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(c.AdminPassword, defaultAdminPassword) {
			return fmt.Errorf("in production ADMIN_PASSWORD must be set and not default")
		}
	}
	return nil
}

// IsProduction reports whether APP_ENV names a production-like environment.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Env))
	return env == "prod" || env == "production" || env == "release"
}

// CloudinaryEnabled reports whether document uploads go to Cloudinary.
func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func setString(dst *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, name string) error {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s value %q: %w", name, v, err)
	}
	*dst = d
	return nil
}
