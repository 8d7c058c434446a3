package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// ErrInvalidConfig возвращается при некорректной конфигурации
var ErrInvalidConfig = errors.New("config: invalid configuration")

// CheckoutSessionPlaceholder провайдер подставляет вместо него id сессии оплаты
const CheckoutSessionPlaceholder = "{CHECKOUT_SESSION_ID}"

// Config конфигурация сервиса
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Logs     LogsConfig     `toml:"logs"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Redis    RedisConfig    `toml:"redis"`
	Auth     AuthConfig     `toml:"auth"`
	Booking  BookingConfig  `toml:"booking"`
	Payments PaymentsConfig `toml:"payments"`
	AI       AIConfig       `toml:"ai"`
	SMS      SMSConfig      `toml:"sms"`
	CORS     CORSConfig     `toml:"cors"`
}

type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`     // секунды
	WriteTimeout    int `toml:"write_timeout"`    // секунды
	IdleTimeout     int `toml:"idle_timeout"`     // секунды
	ShutdownTimeout int `toml:"shutdown_timeout"` // секунды
}

type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"` // секунды
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	ServiceName string `toml:"service_name"`
	Path        string `toml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	TTL      int    `toml:"ttl"` // секунды
}

type AuthConfig struct {
	JWTSecret  string `toml:"jwt_secret"`
	AllowBasic bool   `toml:"allow_basic"`
}

type BookingConfig struct {
	Timezone    string `toml:"timezone"`
	HorizonDays int    `toml:"horizon_days"`
}

// Location часовой пояс, в котором считаются календарные даты записей
func (c BookingConfig) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

type PaymentsConfig struct {
	URL        string `toml:"url"`
	SecretKey  string `toml:"secret_key"`
	Currency   string `toml:"currency"`
	SuccessURL string `toml:"success_url"` // шаблон, {bookingId} подставляется, {CHECKOUT_SESSION_ID} заполняет провайдер
	CancelURL  string `toml:"cancel_url"`  // шаблон, {doctorId} подставляется
	Timeout    int    `toml:"timeout"`     // секунды
}

type AIConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
	Timeout int    `toml:"timeout"` // секунды
}

type SMSConfig struct {
	Enabled            bool   `toml:"enabled"`
	URL                string `toml:"url"`
	AccountSID         string `toml:"account_sid"`
	AuthToken          string `toml:"auth_token"`
	From               string `toml:"from"`
	DefaultCountryCode string `toml:"default_country_code"`
	SupportPhone       string `toml:"support_phone"`
	SupportURL         string `toml:"support_url"`
	Timeout            int    `toml:"timeout"` // секунды
}

type CORSConfig struct {
	AllowedOrigins []string `toml:"allowed_origins"`
}

// Load читает TOML-файл, затем .env (если есть) и переменные окружения
// Секреты из окружения перекрывают значения из файла
func Load(path string) (*Config, error) {
	cfg := defaults()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidConfig, path, err)
	}

	// .env необязателен
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: load .env: %v", ErrInvalidConfig, err)
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 30,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			ServiceName: "doctor-booking",
			Path:        "/metrics",
		},
		Redis: RedisConfig{Addr: "localhost:6379", TTL: 300},
		Booking: BookingConfig{
			Timezone:    "UTC",
			HorizonDays: 30,
		},
		Payments: PaymentsConfig{Currency: "usd", Timeout: 10},
		AI:       AIConfig{Timeout: 60},
		SMS:      SMSConfig{DefaultCountryCode: "+91", Timeout: 10},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.DBName, "DB_NAME")
	setString(&cfg.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Payments.SecretKey, "PAYMENTS_SECRET_KEY")
	setString(&cfg.AI.APIKey, "AI_API_KEY")
	setString(&cfg.SMS.AccountSID, "SMS_ACCOUNT_SID")
	setString(&cfg.SMS.AuthToken, "SMS_AUTH_TOKEN")
	setString(&cfg.SMS.From, "SMS_FROM")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port out of range", ErrInvalidConfig)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("%w: database.dbname is required", ErrInvalidConfig)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%w: auth.jwt_secret is required (or JWT_SECRET)", ErrInvalidConfig)
	}
	if c.Booking.HorizonDays <= 0 {
		return fmt.Errorf("%w: booking.horizon_days must be positive", ErrInvalidConfig)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}
	if c.Payments.URL == "" {
		return fmt.Errorf("%w: payments.url is required", ErrInvalidConfig)
	}
	// без id сессии подтверждение оплаты невозможно
	if c.Payments.SuccessURL != "" && !strings.Contains(c.Payments.SuccessURL, CheckoutSessionPlaceholder) {
		return fmt.Errorf("%w: payments.success_url must contain %s", ErrInvalidConfig, CheckoutSessionPlaceholder)
	}
	if c.AI.Enabled && c.AI.URL == "" {
		return fmt.Errorf("%w: ai.url is required when ai is enabled", ErrInvalidConfig)
	}
	if c.SMS.Enabled && (c.SMS.URL == "" || c.SMS.From == "") {
		return fmt.Errorf("%w: sms.url and sms.from are required when sms is enabled", ErrInvalidConfig)
	}
	return nil
}
