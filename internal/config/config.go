package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/opdbook/booking-api/internal/model"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Clinic   ClinicConfig   `mapstructure:"clinic"`
	Booking  BookingConfig  `mapstructure:"booking"`
	Pricing  PricingConfig  `mapstructure:"pricing"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	RateLimitRPS   float64       `mapstructure:"rate_limit_rps"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpiryHours int    `mapstructure:"expiry_hours"`
}

type GatewayConfig struct {
	KeyID     string        `mapstructure:"key_id"`
	KeySecret string        `mapstructure:"key_secret"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// ClinicConfig describes the clinic's bookable day.
type ClinicConfig struct {
	Facility     string        `mapstructure:"facility"`
	OpeningTime  string        `mapstructure:"opening_time"`
	ClosingTime  string        `mapstructure:"closing_time"`
	SlotInterval time.Duration `mapstructure:"slot_interval"`
	SlotCapacity int           `mapstructure:"slot_capacity"`
	// WorkingDays are weekday numbers with Sunday = 0. Empty means all days.
	WorkingDays []int `mapstructure:"working_days"`
}

type BookingConfig struct {
	SessionTTL time.Duration `mapstructure:"session_ttl"`
	// VerifyTimeout bounds how long a payment may sit in verifying before
	// the worker fails it and directs the patient to support.
	VerifyTimeout time.Duration `mapstructure:"verify_timeout"`
	// EmailRequired toggles whether patient email is mandatory. The online
	// flow historically required it; the offline one did not.
	EmailRequired map[string]bool `mapstructure:"email_required"`
	// FlagSkippedIntake records an explicit skip on the appointment so
	// skipped intakes stay distinguishable from never-offered ones.
	FlagSkippedIntake bool `mapstructure:"flag_skipped_intake"`
}

// FeeConfig is one fee schedule entry: whole currency units.
type FeeConfig struct {
	Amount   int64  `mapstructure:"amount"`
	Currency string `mapstructure:"currency"`
}

type PricingConfig struct {
	// GSTRate applies to the domestic branch only.
	GSTRate float64                         `mapstructure:"gst_rate"`
	Fees    map[string]map[string]FeeConfig `mapstructure:"fees"`
}

// Fee resolves the schedule entry for a (region, visit type) pair.
func (p PricingConfig) Fee(region model.PatientRegion, visit model.VisitType) (FeeConfig, bool) {
	byVisit, ok := p.Fees[string(region)]
	if !ok {
		return FeeConfig{}, false
	}
	fee, ok := byVisit[string(visit)]
	return fee, ok
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	Enabled  bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// secrets are environment-only overrides; they never live in the yaml file.
type secrets struct {
	DBPassword       string `envconfig:"DB_PASSWORD"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	GatewayKeyID     string `envconfig:"GATEWAY_KEY_ID"`
	GatewayKeySecret string `envconfig:"GATEWAY_KEY_SECRET"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	var sec secrets
	if err := envconfig.Process("booking", &sec); err != nil {
		return nil, fmt.Errorf("failed to read environment secrets: %w", err)
	}
	if sec.DBPassword != "" {
		config.Database.Password = sec.DBPassword
	}
	if sec.JWTSecret != "" {
		config.JWT.Secret = sec.JWTSecret
	}
	if sec.GatewayKeyID != "" {
		config.Gateway.KeyID = sec.GatewayKeyID
	}
	if sec.GatewayKeySecret != "" {
		config.Gateway.KeySecret = sec.GatewayKeySecret
	}
	if sec.SMTPPassword != "" {
		config.SMTP.Password = sec.SMTPPassword
	}

	applyDefaults(&config)
	return &config, nil
}

func applyDefaults(c *Config) {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 30 * time.Second
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = 50
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = 100
	}
	if c.Booking.SessionTTL == 0 {
		c.Booking.SessionTTL = 30 * time.Minute
	}
	if c.Booking.VerifyTimeout == 0 {
		c.Booking.VerifyTimeout = 90 * time.Second
	}
	if c.Clinic.SlotInterval == 0 {
		c.Clinic.SlotInterval = 30 * time.Minute
	}
	if c.Clinic.SlotCapacity == 0 {
		c.Clinic.SlotCapacity = 1
	}
	if c.JWT.ExpiryHours == 0 {
		c.JWT.ExpiryHours = 24
	}
}
