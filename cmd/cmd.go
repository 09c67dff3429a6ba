package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "leave-request",
	Short: "Leave Request",
	Long:  `Web form for employee leave applications with email notification and calendar sync.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// envBindings maps config keys to the environment variables operators set.
var envBindings = map[string]string{
	"http_server.host":               "APP_HOST",
	"http_server.port":               "APP_PORT",
	"http_server.debug":              "APP_DEBUG",
	"database.driver":                "DB_DRIVER",
	"database.source":                "DB_SOURCE",
	"mail.server":                    "MAIL_SERVER",
	"mail.port":                      "MAIL_PORT",
	"mail.use_ssl":                   "MAIL_USE_SSL",
	"mail.username":                  "MAIL_USERNAME",
	"mail.password":                  "MAIL_PASSWORD",
	"mail.default_sender":            "MAIL_DEFAULT_SENDER",
	"notification.recipients":        "NOTIFY_RECIPIENTS",
	"notification.max_workers":       "NOTIFY_WORKERS",
	"notification.queue_size":        "NOTIFY_QUEUE_SIZE",
	"calendar.service_account_file":  "SERVICE_ACCOUNT_JSON",
	"calendar.calendar_id":           "CALENDAR_ID",
	"calendar.time_zone":             "CALENDAR_TIME_ZONE",
	"calendar.timeout":               "CALENDAR_TIMEOUT",
	"security.secret_key":            "APP_SECRET_KEY",
	"security.access_token_duration": "ACCESS_TOKEN_DURATION",
	"default_user.email":             "DEFAULT_USER",
	"default_user.password":          "DEFAULT_USER_PASSWORD",
	"observability.logging.level":    "LOG_LEVEL",
	"observability.logging.format":   "LOG_FORMAT",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_server.host", "0.0.0.0")
	v.SetDefault("http_server.port", 5000)
	v.SetDefault("http_server.debug", false)
	v.SetDefault("http_server.read_header_timeout", "5s")
	v.SetDefault("http_server.read_timeout", "15s")
	v.SetDefault("http_server.write_timeout", "30s")
	v.SetDefault("http_server.idle_timeout", "60s")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.source", "leave_applications.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("mail.port", 465)
	v.SetDefault("mail.use_ssl", true)
	v.SetDefault("mail.timeout", "15s")

	v.SetDefault("notification.max_workers", 4)
	v.SetDefault("notification.queue_size", 100)
	v.SetDefault("notification.send_timeout", "30s")

	v.SetDefault("calendar.time_zone", "UTC")
	v.SetDefault("calendar.timeout", "10s")

	v.SetDefault("security.access_token_duration", "1h")

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "text")
}

// loadConfig reads .env (if present), then config.yml under path (if
// present), then the environment. It does not validate; each command checks
// the sections it needs.
func loadConfig(path string) (*internal.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, internal.NewConfigurationError("failed to read .env file", internal.ErrCodeInvalidSetting).WithCause(err)
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, internal.NewConfigurationError("failed to read config file", internal.ErrCodeInvalidSetting).WithCause(err)
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, internal.NewConfigurationError(fmt.Sprintf("failed to bind %s", env), internal.ErrCodeInvalidSetting).WithCause(err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, internal.NewConfigurationError("failed to parse configuration", internal.ErrCodeInvalidSetting).WithCause(err)
	}

	cfg.Notification.Recipients = cleanList(cfg.Notification.Recipients)
	if len(cfg.Notification.Recipients) == 0 && cfg.Mail.DefaultSender != "" {
		cfg.Notification.Recipients = []string{cfg.Mail.DefaultSender}
	}

	if cfg.Server.Debug {
		cfg.Observability.Logging.Level = "debug"
	}

	return &cfg, nil
}

// cleanList splits comma separated entries and drops blanks.
func cleanList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func setupLogger(cfg *internal.Config) {
	logger.Configure(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "directory containing an optional config.yml")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(calendarCmd)
}
