// Package calendar creates events on a Google Calendar using service-account
// credentials. Created event ids are logged, not stored, so events cannot be
// updated or cancelled from this service later.
package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/internal/core/common/validation"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultTimeout = 10 * time.Second

type Config struct {
	ServiceAccountFile string
	CalendarID         string
	TimeZone           string
	Timeout            time.Duration
}

func ConfigFrom(cfg internal.CalendarConfig) Config {
	return Config{
		ServiceAccountFile: cfg.ServiceAccountFile,
		CalendarID:         cfg.CalendarID,
		TimeZone:           cfg.TimeZone,
		Timeout:            cfg.Timeout,
	}
}

// Validate checks the preconditions that can be verified without a network
// call: readable credentials, a plausible calendar id and a known time zone.
func (c Config) Validate() error {
	_, err := c.check()
	return err
}

// check validates c and returns the event time zone.
func (c Config) check() (*time.Location, error) {
	if c.ServiceAccountFile == "" {
		return nil, internal.NewConfigurationError("SERVICE_ACCOUNT_JSON is not set", internal.ErrCodeMissingSetting)
	}

	f, err := os.Open(c.ServiceAccountFile)
	if err != nil {
		return nil, internal.NewConfigurationError(
			fmt.Sprintf("service account file not readable: %s", c.ServiceAccountFile),
			internal.ErrCodeInvalidSetting).WithCause(err)
	}
	_ = f.Close()

	if c.CalendarID == "" || !validation.IsEmail(c.CalendarID) {
		return nil, internal.NewConfigurationError(
			fmt.Sprintf("invalid calendar id: %q", c.CalendarID),
			internal.ErrCodeInvalidSetting)
	}

	if c.TimeZone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, internal.NewConfigurationError(
			fmt.Sprintf("unknown calendar time zone: %q", c.TimeZone),
			internal.ErrCodeInvalidSetting).WithCause(err)
	}
	return loc, nil
}

type Client struct {
	cfg     Config
	loc     *time.Location
	service *gcal.Service
	logger  *slog.Logger
}

// New validates cfg, loads the service account and builds the API client.
// ctx only bounds construction; token fetches are bounded by cfg.Timeout.
// Extra options are applied after the credentials and may replace them.
func New(ctx context.Context, cfg Config, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	loc, err := cfg.check()
	if err != nil {
		return nil, err
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	data, err := os.ReadFile(cfg.ServiceAccountFile)
	if err != nil {
		return nil, internal.NewConfigurationError("failed to read service account file", internal.ErrCodeInvalidSetting).WithCause(err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(data, gcal.CalendarScope)
	if err != nil {
		return nil, internal.NewConfigurationError("invalid service account credentials", internal.ErrCodeInvalidSetting).WithCause(err)
	}

	// the oauth2 transport fetches tokens without the request context
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: cfg.Timeout})
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(jwtCfg.Client(tokenCtx))}, opts...)
	service, err := gcal.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, internal.NewConfigurationError("failed to create calendar service", internal.ErrCodeInvalidSetting).WithCause(err)
	}

	return &Client{
		cfg:     cfg,
		loc:     loc,
		service: service,
		logger:  logger,
	}, nil
}

// CreateEvent inserts one event and returns its external id. It does not
// retry; a timeout or API failure comes back as a CalendarIntegrationError.
func (c *Client) CreateEvent(ctx context.Context, summary string, start, end time.Time) (string, error) {
	if err := c.cfg.Validate(); err != nil {
		return "", err
	}
	if !end.After(start) {
		return "", internal.NewCalendarError("event end must be after start", internal.ErrCodeCalendarFailed)
	}

	ctx, cancel := internal.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	event := &gcal.Event{
		Summary: summary,
		Start: &gcal.EventDateTime{
			DateTime: start.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: end.In(c.loc).Format(time.RFC3339),
			TimeZone: c.loc.String(),
		},
	}

	c.logger.Info("creating calendar event",
		"calendar_id", c.cfg.CalendarID,
		"summary", summary,
		"start", event.Start.DateTime,
		"end", event.End.DateTime)

	created, err := c.service.Events.Insert(c.cfg.CalendarID, event).Context(ctx).Do()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Error("calendar event creation timed out", "timeout", c.cfg.Timeout, "error", err)
			return "", internal.NewCalendarError("calendar request timed out", internal.ErrCodeCalendarTimeout).WithCause(err)
		}

		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			c.logger.Error("calendar API rejected event",
				"status_code", apiErr.Code,
				"message", apiErr.Message,
				"body", apiErr.Body)
		} else {
			c.logger.Error("calendar event creation failed", "error", err)
		}
		return "", internal.NewCalendarError("failed to create calendar event", internal.ErrCodeCalendarFailed).WithCause(err)
	}

	c.logger.Info("calendar event created",
		"event_id", created.Id,
		"html_link", created.HtmlLink)

	return created.Id, nil
}
