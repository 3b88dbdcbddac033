package configs

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

var ErrInvalidConfig = errors.New("invalid config")

type Conf struct {
	AppEnv         string `mapstructure:"APP_ENV"`
	ServiceName    string `mapstructure:"SERVICE_NAME"`
	ServiceVersion string `mapstructure:"SERVICE_VERSION"`
	WebServerPort  string `mapstructure:"WEB_SERVER_PORT"`

	TrackingStreamURL         string        `mapstructure:"TRACKING_STREAM_URL"`
	TrackingStreamTransport   string        `mapstructure:"TRACKING_STREAM_TRANSPORT"`
	TrackingReconnectEnabled  bool          `mapstructure:"TRACKING_RECONNECT_ENABLED"`
	TrackingReconnectAttempts int           `mapstructure:"TRACKING_RECONNECT_MAX_ATTEMPTS"`
	TrackingReconnectDelay    time.Duration `mapstructure:"TRACKING_RECONNECT_DELAY"`
	TrackingReconnectBackoff  string        `mapstructure:"TRACKING_RECONNECT_BACKOFF"`
	TrackingReconnectMaxDelay time.Duration `mapstructure:"TRACKING_RECONNECT_MAX_DELAY"`
	TrackingReadTimeout       time.Duration `mapstructure:"TRACKING_READ_TIMEOUT"`

	OrderAPIURL    string        `mapstructure:"ORDER_API_URL"`
	OrderAPIToken  string        `mapstructure:"ORDER_API_TOKEN"`
	CommandTimeout time.Duration `mapstructure:"COMMAND_TIMEOUT"`

	RedisHost      string        `mapstructure:"REDIS_HOST"`
	RedisPort      string        `mapstructure:"REDIS_PORT"`
	IdempotencyTTL time.Duration `mapstructure:"IDEMPOTENCY_TTL"`

	OtelCollectorAddr string  `mapstructure:"OTEL_COLLECTOR_ADDR"`
	OtelSampleRatio   float64 `mapstructure:"OTEL_SAMPLE_RATIO"`

	RateLimitRPS   int `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int `mapstructure:"RATE_LIMIT_BURST"`
}

var defaults = map[string]any{
	"APP_ENV":                         "development",
	"SERVICE_NAME":                    "gotrack",
	"SERVICE_VERSION":                 "dev",
	"WEB_SERVER_PORT":                 "8080",
	"TRACKING_STREAM_URL":             "ws://localhost:3001/socket",
	"TRACKING_STREAM_TRANSPORT":       "websocket",
	"TRACKING_RECONNECT_ENABLED":      true,
	"TRACKING_RECONNECT_MAX_ATTEMPTS": 5,
	"TRACKING_RECONNECT_DELAY":        "1s",
	"TRACKING_RECONNECT_BACKOFF":      "fixed",
	"TRACKING_RECONNECT_MAX_DELAY":    "30s",
	"TRACKING_READ_TIMEOUT":           "60s",
	"ORDER_API_URL":                   "http://localhost:3001",
	"ORDER_API_TOKEN":                 "",
	"COMMAND_TIMEOUT":                 "10s",
	"REDIS_HOST":                      "",
	"REDIS_PORT":                      "6379",
	"IDEMPOTENCY_TTL":                 "24h",
	"OTEL_COLLECTOR_ADDR":             "",
	"OTEL_SAMPLE_RATIO":               1.0,
	"RATE_LIMIT_RPS":                  20,
	"RATE_LIMIT_BURST":                40,
}

// LoadConfig reads path/.env when present and lets the environment override every key.
func LoadConfig(path string) (*Conf, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Conf
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Conf) Validate() error {
	var errs []error
	switch strings.ToLower(c.TrackingStreamTransport) {
	case "websocket", "amqp":
	default:
		errs = append(errs, fmt.Errorf("TRACKING_STREAM_TRANSPORT must be websocket or amqp, got %q", c.TrackingStreamTransport))
	}
	switch strings.ToLower(c.TrackingReconnectBackoff) {
	case "fixed", "exponential":
	default:
		errs = append(errs, fmt.Errorf("TRACKING_RECONNECT_BACKOFF must be fixed or exponential, got %q", c.TrackingReconnectBackoff))
	}
	if _, err := url.ParseRequestURI(c.TrackingStreamURL); err != nil {
		errs = append(errs, fmt.Errorf("TRACKING_STREAM_URL: %w", err))
	}
	if _, err := url.ParseRequestURI(c.OrderAPIURL); err != nil {
		errs = append(errs, fmt.Errorf("ORDER_API_URL: %w", err))
	}
	if c.TrackingReconnectAttempts < 1 {
		errs = append(errs, errors.New("TRACKING_RECONNECT_MAX_ATTEMPTS must be positive"))
	}
	if c.TrackingReconnectDelay < 0 || c.CommandTimeout <= 0 {
		errs = append(errs, errors.New("TRACKING_RECONNECT_DELAY must not be negative and COMMAND_TIMEOUT must be positive"))
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func (c *Conf) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c *Conf) RedisAddr() string {
	if c.RedisHost == "" {
		return ""
	}
	return c.RedisHost + ":" + c.RedisPort
}
