package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string `koanf:"listen_addr"`
	Port           string `koanf:"port" validate:"required,numeric"`
	DatabaseDriver string `koanf:"database_driver" validate:"oneof=sqlite postgres"`
	DatabasePath   string `koanf:"database_path"`
	DatabaseURL    string `koanf:"database_url" validate:"required_if=DatabaseDriver postgres"`
	SessionSecret  string `koanf:"session_secret" validate:"required"`
	GinMode        string `koanf:"gin_mode" validate:"oneof=debug release test"`
	UploadDir      string `koanf:"upload_dir" validate:"required"`
	UploadURLPath  string `koanf:"upload_url_path" validate:"required,startswith=/"`
	PricingPath    string `koanf:"pricing_path" validate:"required"`
	AdminUsername  string `koanf:"admin_username"`
	AdminPassword  string `koanf:"admin_password"`
	AdminEmail     string `koanf:"admin_email" validate:"omitempty,email"`
	SiteBaseURL    string `koanf:"site_base_url" validate:"omitempty,url"`
	SiteName       string `koanf:"site_name"`
	LogLevel       string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
	LogFormat      string `koanf:"log_format" validate:"oneof=json console"`
	ResendAPIKey   string `koanf:"resend_api_key"`
	EmailFrom      string `koanf:"email_from"`
	RedisAddr      string `koanf:"redis_addr" validate:"omitempty,hostname_port"`
	MetricsEnabled bool   `koanf:"metrics_enabled"`
}

// knownKeys 限定读取的环境变量，避免把整个进程环境载入配置。
var knownKeys = map[string]struct{}{
	"listen_addr": {}, "port": {}, "database_driver": {}, "database_path": {}, "database_url": {},
	"session_secret": {}, "gin_mode": {}, "upload_dir": {}, "upload_url_path": {}, "pricing_path": {},
	"admin_username": {}, "admin_password": {}, "admin_email": {}, "site_base_url": {}, "site_name": {},
	"log_level": {}, "log_format": {}, "resend_api_key": {}, "email_from": {}, "redis_addr": {},
	"metrics_enabled": {},
}

// Defaults returns the configuration used when no environment overrides are present.
func Defaults() AppConfig {
	return AppConfig{
		Port:           "8080",
		DatabaseDriver: DriverSQLite,
		DatabasePath:   "firmdirectory.db",
		SessionSecret:  "firmdirectory-dev-secret",
		GinMode:        "release",
		UploadDir:      "web/static/uploads",
		UploadURLPath:  "/static/uploads",
		PricingPath:    "data/pricing.json",
		AdminUsername:  "admin",
		SiteBaseURL:    "http://localhost:8080",
		SiteName:       "Law Firm Directory",
		LogLevel:       "info",
		LogFormat:      "json",
		EmailFrom:      "Law Firm Directory <no-reply@example.com>",
		MetricsEnabled: true,
	}
}

// Load 从环境变量读取应用配置，并为缺失项提供默认值，随后校验。
func Load() (AppConfig, error) {
	k := koanf.New(".")
	err := k.Load(env.Provider("", ".", func(s string) string {
		key := strings.ToLower(strings.TrimSpace(s))
		if _, ok := knownKeys[key]; !ok {
			return ""
		}
		return key
	}), nil)
	if err != nil {
		return AppConfig{}, fmt.Errorf("load env: %w", err)
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.normalize()

	if err := validator.New().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return AppConfig{}, fmt.Errorf("invalid config: %s failed %q", strings.ToUpper(verrs[0].Field()), verrs[0].Tag())
		}
		return AppConfig{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *AppConfig) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.ListenAddr = strings.TrimSpace(c.ListenAddr)
	if c.ListenAddr == "" {
		c.ListenAddr = fmt.Sprintf(":%s", c.Port)
	}
	c.DatabaseDriver = strings.ToLower(strings.TrimSpace(c.DatabaseDriver))
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
	c.UploadURLPath = "/" + strings.Trim(strings.TrimSpace(c.UploadURLPath), "/")
	c.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.SiteBaseURL), "/")
	c.AdminUsername = strings.TrimSpace(c.AdminUsername)
	c.AdminPassword = strings.TrimSpace(c.AdminPassword)
	c.AdminEmail = strings.TrimSpace(c.AdminEmail)
	c.RedisAddr = strings.TrimSpace(c.RedisAddr)
}

// DSN returns the connection string for the configured driver.
func (c AppConfig) DSN() string {
	if c.DatabaseDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

// QueueEnabled reports whether notification emails go through the Redis-backed queue.
func (c AppConfig) QueueEnabled() bool {
	return c.RedisAddr != ""
}
