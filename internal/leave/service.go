package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/leave-request/internal"
	leaveDatamodel "github.com/frahmantamala/leave-request/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-request/internal/notification"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

type Repository interface {
	Create(ctx context.Context, app *leaveDatamodel.LeaveApplication) error
	GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveApplication, error)
	List(ctx context.Context, status string, limit, offset int) ([]*leaveDatamodel.LeaveApplication, error)
	// UpdateStatus changes status only if the row still has status from.
	UpdateStatus(ctx context.Context, id int64, from, to string) (bool, error)
}

type Notifier interface {
	Enqueue(msg notification.Message) error
}

type EventCreator interface {
	CreateEvent(ctx context.Context, summary string, start, end time.Time) (string, error)
}

type Config struct {
	// Recipients receive the "new application" email.
	Recipients []string
	// Location is used to read dates out of the leave period.
	Location *time.Location
}

type Service struct {
	repo     Repository
	notifier Notifier
	calendar EventCreator
	cfg      Config
	logger   *slog.Logger
}

// NewService wires the submission workflow. calendar may be nil, which
// disables calendar sync.
func NewService(repo Repository, notifier Notifier, calendar EventCreator, cfg Config, logger *slog.Logger) *Service {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		repo:     repo,
		notifier: notifier,
		calendar: calendar,
		cfg:      cfg,
		logger:   logger,
	}
}

// Submit validates and stores a new application, then runs the best-effort
// side effects. Only validation and storage failures are returned; email and
// calendar outcomes are reported in the result.
func (s *Service) Submit(ctx context.Context, dto SubmitLeaveDTO) (*SubmitResult, error) {
	dto = dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Info("leave application rejected by validation", "errors", appErr.GetDetailedMessage())
		return nil, appErr
	}

	app := NewLeaveApplication(dto)
	record := ToDataModel(app)
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.Error("failed to store leave application", "error", err, "email", app.Email)
		return nil, internal.NewStorageError("failed to store leave application", err)
	}
	app = FromDataModel(record)

	s.logger.Info("leave application stored",
		"application_id", app.ID,
		"email", app.Email,
		"leave_period", app.LeavePeriod)

	result := &SubmitResult{Application: app}
	result.NotificationQueued = s.notify(submittedMessage(app, s.cfg.Recipients), app.ID)
	s.syncCalendar(ctx, app, result)

	return result, nil
}

func (s *Service) notify(msg notification.Message, applicationID int64) bool {
	if err := s.notifier.Enqueue(msg); err != nil {
		s.logger.Error("failed to schedule notification",
			"application_id", applicationID,
			"subject", msg.Subject,
			"error", err)
		return false
	}
	return true
}

func (s *Service) syncCalendar(ctx context.Context, app *LeaveApplication, result *SubmitResult) {
	if s.calendar == nil {
		result.Calendar = CalendarDisabled
		return
	}

	start, end, err := ParsePeriod(app.LeavePeriod, s.cfg.Location)
	if err != nil {
		s.logger.Warn("leave period has no usable dates, skipping calendar sync",
			"application_id", app.ID,
			"leave_period", app.LeavePeriod,
			"error", err)
		result.Calendar = CalendarSkipped
		result.CalendarMessage = "the leave period could not be read as dates"
		return
	}

	eventID, err := s.calendar.CreateEvent(ctx, eventSummary(app), start, end)
	if err != nil {
		s.logger.Error("calendar sync failed",
			"application_id", app.ID,
			"error", err)
		result.Calendar = CalendarFailed
		result.CalendarMessage = "calendar sync failed"
		return
	}

	s.logger.Info("calendar event created for leave application",
		"application_id", app.ID,
		"event_id", eventID)
	result.Calendar = CalendarSynced
	result.CalendarEventID = eventID
}

func (s *Service) Get(ctx context.Context, id int64) (*LeaveApplication, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to load leave application", "application_id", id, "error", err)
		return nil, internal.NewStorageError("failed to load leave application", err)
	}
	if record == nil {
		return nil, internal.ErrLeaveNotFound
	}
	return FromDataModel(record), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	if filter.Status != "" && !IsValidStatus(filter.Status) {
		return nil, internal.NewValidationFieldError("status", "status must be one of pending, approved, rejected", internal.ErrCodeInvalidLeaveState)
	}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = defaultListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	records, err := s.repo.List(ctx, filter.Status, filter.Limit, filter.Offset)
	if err != nil {
		s.logger.Error("failed to list leave applications", "error", err)
		return nil, internal.NewStorageError("failed to list leave applications", err)
	}

	return &ListResponse{
		Applications: FromDataModelSlice(records),
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}, nil
}

func (s *Service) Approve(ctx context.Context, id int64) (*LeaveApplication, error) {
	return s.decide(ctx, id, StatusApproved)
}

func (s *Service) Reject(ctx context.Context, id int64) (*LeaveApplication, error) {
	return s.decide(ctx, id, StatusRejected)
}

func (s *Service) decide(ctx context.Context, id int64, status string) (*LeaveApplication, error) {
	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !app.IsPending() {
		s.logger.Warn("leave application already decided",
			"application_id", id,
			"current_status", app.Status)
		return nil, internal.ErrLeaveAlreadyDealt
	}

	updated, err := s.repo.UpdateStatus(ctx, id, StatusPending, status)
	if err != nil {
		s.logger.Error("failed to update leave status", "application_id", id, "error", err)
		return nil, internal.NewStorageError("failed to update leave application", err)
	}
	if !updated {
		return nil, internal.ErrLeaveAlreadyDealt
	}

	if status == StatusApproved {
		app.Approve()
	} else {
		app.Reject()
	}

	s.logger.Info("leave application decided", "application_id", id, "status", status)
	s.notify(decisionMessage(app), app.ID)

	return app, nil
}
