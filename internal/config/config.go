package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	DBMaxConns  int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns  int32  `mapstructure:"DB_MIN_CONNS"`
	DBSchema    string `mapstructure:"DB_SCHEMA"`

	AppName               string `mapstructure:"APP_NAME"`
	ReportPageSize        string `mapstructure:"REPORT_PAGE_SIZE"`
	ReportDPI             int    `mapstructure:"REPORT_DPI"`
	ReportImageFormat     string `mapstructure:"REPORT_IMAGE_FORMAT"`
	ReportJPEGQuality     int    `mapstructure:"REPORT_JPEG_QUALITY"`
	ReportNotAvailable    string `mapstructure:"REPORT_NOT_AVAILABLE"`
	ReportChartGroupsFile string `mapstructure:"REPORT_CHART_GROUPS_FILE"`
	ReportMaxConcurrent   int64  `mapstructure:"REPORT_MAX_CONCURRENT"`
	ReportOutputDir       string `mapstructure:"REPORT_OUTPUT_DIR"`

	RateLimitRPS   float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int           `mapstructure:"RATE_LIMIT_BURST"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	BodyLimit      string        `mapstructure:"BODY_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "DB_SCHEMA",
	"APP_NAME", "REPORT_PAGE_SIZE", "REPORT_DPI", "REPORT_IMAGE_FORMAT", "REPORT_JPEG_QUALITY",
	"REPORT_NOT_AVAILABLE", "REPORT_CHART_GROUPS_FILE", "REPORT_MAX_CONCURRENT", "REPORT_OUTPUT_DIR",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "REQUEST_TIMEOUT", "BODY_LIMIT",
}

// Load reads configuration from the environment, overlaid on an optional
// .env file in the working directory. It does not validate; commands call
// Validate and RequireDatabase as they need.
func Load() (*Config, error) {
	return load(".env")
}

func load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("APP_NAME", "GIPOGO RHC Tools")
	v.SetDefault("REPORT_PAGE_SIZE", "A4")
	v.SetDefault("REPORT_DPI", 150)
	v.SetDefault("REPORT_IMAGE_FORMAT", "png")
	v.SetDefault("REPORT_JPEG_QUALITY", 88)
	v.SetDefault("REPORT_NOT_AVAILABLE", "N/A")
	v.SetDefault("REPORT_MAX_CONCURRENT", 2)
	v.SetDefault("REPORT_OUTPUT_DIR", os.TempDir())
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("REQUEST_TIMEOUT", "60s")
	v.SetDefault("BODY_LIMIT", "256K")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		v.BindEnv(k)
	}

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RequireDatabase reports whether a database-backed command can run.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// Validate checks value ranges and enumerations. It does not require
// DATABASE_URL, since file-based exports run without one.
func (c *Config) Validate() error {
	switch strings.ToLower(c.ReportPageSize) {
	case "a4", "letter":
	default:
		return fmt.Errorf("REPORT_PAGE_SIZE must be \"A4\" or \"Letter\", got %q", c.ReportPageSize)
	}
	switch strings.ToLower(c.ReportImageFormat) {
	case "png", "jpeg", "jpg":
	default:
		return fmt.Errorf("REPORT_IMAGE_FORMAT must be \"png\" or \"jpeg\", got %q", c.ReportImageFormat)
	}
	if c.ReportDPI < 36 || c.ReportDPI > 600 {
		return fmt.Errorf("REPORT_DPI must be between 36 and 600, got %d", c.ReportDPI)
	}
	if c.ReportJPEGQuality < 1 || c.ReportJPEGQuality > 100 {
		return fmt.Errorf("REPORT_JPEG_QUALITY must be between 1 and 100, got %d", c.ReportJPEGQuality)
	}
	if c.ReportMaxConcurrent < 1 {
		return fmt.Errorf("REPORT_MAX_CONCURRENT must be at least 1, got %d", c.ReportMaxConcurrent)
	}
	if strings.TrimSpace(c.ReportNotAvailable) == "" {
		return fmt.Errorf("REPORT_NOT_AVAILABLE must not be blank")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	return nil
}
