package internal

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Mail          MailConfig          `mapstructure:"mail"`
	Notification  NotificationConfig  `mapstructure:"notification"`
	Calendar      CalendarConfig      `mapstructure:"calendar"`
	Security      SecurityConfig      `mapstructure:"security"`
	DefaultUser   DefaultUserConfig   `mapstructure:"default_user"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	Debug             bool          `mapstructure:"debug"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type MailConfig struct {
	Server        string        `mapstructure:"server"`
	Port          int           `mapstructure:"port"`
	UseSSL        bool          `mapstructure:"use_ssl"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	DefaultSender string        `mapstructure:"default_sender"`
	Timeout       time.Duration `mapstructure:"timeout"`
}

type NotificationConfig struct {
	Recipients  []string      `mapstructure:"recipients"`
	MaxWorkers  int           `mapstructure:"max_workers"`
	QueueSize   int           `mapstructure:"queue_size"`
	SendTimeout time.Duration `mapstructure:"send_timeout"`
}

// CalendarConfig is optional; calendar sync is on when either field is set.
type CalendarConfig struct {
	ServiceAccountFile string        `mapstructure:"service_account_file"`
	CalendarID         string        `mapstructure:"calendar_id"`
	TimeZone           string        `mapstructure:"time_zone"`
	Timeout            time.Duration `mapstructure:"timeout"`
}

func (c CalendarConfig) Enabled() bool {
	return c.ServiceAccountFile != "" || c.CalendarID != ""
}

type SecurityConfig struct {
	SecretKey           string        `mapstructure:"secret_key"`
	AccessTokenDuration time.Duration `mapstructure:"access_token_duration"`
}

type DefaultUserConfig struct {
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ----------------- VALIDATION -----------------

// Validate returns a ConfigurationError listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Mail.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("mail config: %v", err))
	}

	if err := c.Notification.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("notification config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Observability.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	if len(errs) > 0 {
		return NewConfigurationError(strings.Join(errs, "; "), ErrCodeInvalidSetting)
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return fmt.Errorf("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return fmt.Errorf("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *MailConfig) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("MAIL_SERVER is required")
	}
	if c.Port <= 0 {
		return fmt.Errorf("MAIL_PORT must be positive")
	}
	if c.DefaultSender == "" {
		return fmt.Errorf("MAIL_DEFAULT_SENDER is required")
	}
	if c.Password != "" && c.Username == "" {
		return fmt.Errorf("MAIL_USERNAME is required when MAIL_PASSWORD is set")
	}
	return nil
}

func (c *NotificationConfig) Validate() error {
	if len(c.Recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}
	if c.MaxWorkers <= 0 {
		return fmt.Errorf("max_workers must be positive")
	}
	if c.QueueSize <= 0 {
		return fmt.Errorf("queue_size must be positive")
	}
	return nil
}

func (c *SecurityConfig) Validate() error {
	if len(c.SecretKey) < 16 {
		return fmt.Errorf("APP_SECRET_KEY must be at least 16 characters")
	}
	if c.AccessTokenDuration <= 0 {
		return fmt.Errorf("access_token_duration must be positive")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown level %q", c.Level)
	}
	switch c.Format {
	case "json", "text":
	default:
		return fmt.Errorf("unknown format %q", c.Format)
	}
	return nil
}
