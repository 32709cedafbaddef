package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

// EnvPrefix префикс переменных окружения: WORKSHOP_<СЕКЦИЯ>_<ПОЛЕ>,
// например WORKSHOP_DATABASE_PASSWORD. Короткие имена ($USER, $PATH) не читаются.
const EnvPrefix = "WORKSHOP"

var (
	// ErrInvalidConfig возвращается при некорректных значениях конфигурации
	ErrInvalidConfig = errors.New("config: invalid configuration")
)

// Config конфигурация сервиса
type Config struct {
	Server     ServerConfig     `toml:"server" split_words:"true"`
	Database   DatabaseConfig   `toml:"database" split_words:"true"`
	Logs       LogsConfig       `toml:"logs" split_words:"true"`
	Metrics    MetricsConfig    `toml:"metrics" split_words:"true"`
	Booking    BookingConfig    `toml:"booking" split_words:"true"`
	Messaging  MessagingConfig  `toml:"messaging" split_words:"true"`
	ProofStore ProofStoreConfig `toml:"proof_store" split_words:"true"`
	Reminders  RemindersConfig  `toml:"reminders" split_words:"true"`
}

// ServerConfig настройки HTTP сервера (таймауты в секундах)
type ServerConfig struct {
	HTTPPort        int `toml:"http_port" split_words:"true"`
	ReadTimeout     int `toml:"read_timeout" split_words:"true"`
	WriteTimeout    int `toml:"write_timeout" split_words:"true"`
	IdleTimeout     int `toml:"idle_timeout" split_words:"true"`
	ShutdownTimeout int `toml:"shutdown_timeout" split_words:"true"`
	// InternalToken общий секрет для /api/v1/internal (заголовок X-Service-Token)
	InternalToken string `toml:"internal_token" split_words:"true"`
}

// DatabaseConfig настройки подключения к Postgres
type DatabaseConfig struct {
	Host            string `toml:"host" split_words:"true"`
	Port            int    `toml:"port" split_words:"true"`
	User            string `toml:"user" split_words:"true"`
	Password        string `toml:"password" split_words:"true"`
	DBName          string `toml:"dbname" split_words:"true"`
	SSLMode         string `toml:"sslmode" split_words:"true"`
	MaxOpenConns    int    `toml:"max_open_conns" split_words:"true"`
	MaxIdleConns    int    `toml:"max_idle_conns" split_words:"true"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime" split_words:"true"`
	TxMaxRetries    int    `toml:"tx_max_retries" split_words:"true"`
}

// DSN строка подключения для lib/pq
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	Level string `toml:"level" split_words:"true"`
	File  string `toml:"file" split_words:"true"`
}

// MetricsConfig настройки Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled" split_words:"true"`
	Path        string `toml:"path" split_words:"true"`
	ServiceName string `toml:"service_name" split_words:"true"`
}

// BookingConfig бизнес-правила записи
type BookingConfig struct {
	DailyCapacity             int    `toml:"daily_capacity" split_words:"true"`
	HorizonMonths             int    `toml:"horizon_months" split_words:"true"`
	ClosedWeekday             string `toml:"closed_weekday" split_words:"true"`
	OpenTime                  string `toml:"open_time" split_words:"true"`
	CloseTime                 string `toml:"close_time" split_words:"true"`
	Timezone                  string `toml:"timezone" split_words:"true"`
	TrustClientPrices         bool   `toml:"trust_client_prices" split_words:"true"`
	StrictOperatorTransitions bool   `toml:"strict_operator_transitions" split_words:"true"`
	CashPaymentMethod         string `toml:"cash_payment_method" split_words:"true"`
}

// Location часовой пояс мастерской
func (c BookingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// Messaging transports
const (
	TransportAMQP = "amqp"
	TransportHTTP = "http"
	TransportNone = "none"
)

// MessagingConfig настройки канала уведомлений
type MessagingConfig struct {
	Transport         string `toml:"transport" split_words:"true"`
	AMQPURL           string `toml:"amqp_url" split_words:"true"`
	Exchange          string `toml:"exchange" split_words:"true"`
	RoutingKey        string `toml:"routing_key" split_words:"true"`
	GatewayURL        string `toml:"gateway_url" split_words:"true"`
	GatewayToken      string `toml:"gateway_token" split_words:"true"`
	Timeout           int    `toml:"timeout" split_words:"true"`
	ReconnectInterval int    `toml:"reconnect_interval" split_words:"true"`
	CountryCode       string `toml:"country_code" split_words:"true"`
	TrunkPrefix       string `toml:"trunk_prefix" split_words:"true"`
	AddressSuffix     string `toml:"address_suffix" split_words:"true"`
	SendTimeout       int    `toml:"send_timeout" split_words:"true"`
}

// Proof store backends
const (
	ProofStoreLocal      = "local"
	ProofStoreCloudinary = "cloudinary"
	ProofStoreNone       = "none"
)

// ProofStoreConfig хранилище подтверждений оплаты
type ProofStoreConfig struct {
	Backend       string `toml:"backend" split_words:"true"`
	Dir           string `toml:"dir" split_words:"true"`
	CloudinaryURL string `toml:"cloudinary_url" split_words:"true"`
	Folder        string `toml:"folder" split_words:"true"`
}

// RemindersConfig напоминания накануне визита
type RemindersConfig struct {
	Enabled  bool   `toml:"enabled" split_words:"true"`
	Schedule string `toml:"schedule" split_words:"true"`
}

// Default конфигурация по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     15,
			WriteTimeout:    15,
			IdleTimeout:     60,
			ShutdownTimeout: 10,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			DBName:          "workshop",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
			TxMaxRetries:    3,
		},
		Logs: LogsConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "workshop-booking",
		},
		Booking: BookingConfig{
			DailyCapacity:     10,
			HorizonMonths:     3,
			ClosedWeekday:     "sunday",
			OpenTime:          "08:00",
			CloseTime:         "16:30",
			Timezone:          "Local",
			TrustClientPrices: true,
			CashPaymentMethod: "cash",
		},
		Messaging: MessagingConfig{
			Transport:         TransportNone,
			Exchange:          "notifications",
			RoutingKey:        "whatsapp.text",
			Timeout:           10,
			ReconnectInterval: 5,
			CountryCode:       "62",
			TrunkPrefix:       "0",
			AddressSuffix:     "@c.us",
			SendTimeout:       15,
		},
		ProofStore: ProofStoreConfig{
			Backend: ProofStoreLocal,
			Dir:     "uploads/payment-proofs",
		},
		Reminders: RemindersConfig{
			Schedule: "0 18 * * *",
		},
	}
}

// Load читает .env (если есть), TOML-файл и переопределения из окружения
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("config: decode %s: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: apply env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: server.http_port=%d", ErrInvalidConfig, c.Server.HTTPPort)
	}
	if c.Database.Port <= 0 {
		return fmt.Errorf("%w: database.port=%d", ErrInvalidConfig, c.Database.Port)
	}
	if c.Database.TxMaxRetries < 0 {
		return fmt.Errorf("%w: database.tx_max_retries must not be negative", ErrInvalidConfig)
	}
	if c.Booking.DailyCapacity < 1 {
		return fmt.Errorf("%w: booking.daily_capacity must be at least 1", ErrInvalidConfig)
	}
	if c.Booking.HorizonMonths < 1 {
		return fmt.Errorf("%w: booking.horizon_months must be at least 1", ErrInvalidConfig)
	}
	if _, err := ParseWeekday(c.Booking.ClosedWeekday); err != nil {
		return err
	}

	open, err := types.NewTimeStringFromString(c.Booking.OpenTime)
	if err != nil {
		return fmt.Errorf("%w: booking.open_time: %v", ErrInvalidConfig, err)
	}
	closing, err := types.NewTimeStringFromString(c.Booking.CloseTime)
	if err != nil {
		return fmt.Errorf("%w: booking.close_time: %v", ErrInvalidConfig, err)
	}
	if !open.IsBefore(closing) {
		return fmt.Errorf("%w: booking.open_time must be before close_time", ErrInvalidConfig)
	}
	if _, err := c.Booking.Location(); err != nil {
		return fmt.Errorf("%w: booking.timezone: %v", ErrInvalidConfig, err)
	}

	switch c.Messaging.Transport {
	case TransportAMQP:
		if c.Messaging.AMQPURL == "" {
			return fmt.Errorf("%w: messaging.amqp_url is required for amqp transport", ErrInvalidConfig)
		}
	case TransportHTTP:
		if c.Messaging.GatewayURL == "" {
			return fmt.Errorf("%w: messaging.gateway_url is required for http transport", ErrInvalidConfig)
		}
	case TransportNone:
	default:
		return fmt.Errorf("%w: unknown messaging.transport %q", ErrInvalidConfig, c.Messaging.Transport)
	}

	switch c.ProofStore.Backend {
	case ProofStoreLocal:
		if c.ProofStore.Dir == "" {
			return fmt.Errorf("%w: proof_store.dir is required for local backend", ErrInvalidConfig)
		}
	case ProofStoreCloudinary:
		if c.ProofStore.CloudinaryURL == "" {
			return fmt.Errorf("%w: proof_store.cloudinary_url is required for cloudinary backend", ErrInvalidConfig)
		}
	case ProofStoreNone:
	default:
		return fmt.Errorf("%w: unknown proof_store.backend %q", ErrInvalidConfig, c.ProofStore.Backend)
	}

	if c.Reminders.Enabled && c.Reminders.Schedule == "" {
		return fmt.Errorf("%w: reminders.schedule is required when reminders are enabled", ErrInvalidConfig)
	}

	return nil
}

// ParseWeekday переводит название дня недели в time.Weekday
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("%w: unknown weekday %q", ErrInvalidConfig, s)
}
