package leave

import (
	"net/url"
	"strings"

	"github.com/frahmantamala/leave-request/internal"
	"github.com/frahmantamala/leave-request/internal/core/common/validation"
)

const (
	maxNameLength   = 200
	maxEmailLength  = 254
	maxDaysLength   = 100
	maxPeriodLength = 200
	maxReasonLength = 2000
)

// SubmitLeaveDTO is the leave form as posted by the browser.
type SubmitLeaveDTO struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	LeaveDays   string `json:"leave_days"`
	LeavePeriod string `json:"leave_period"`
	Reason      string `json:"reason"`
}

func SubmitLeaveDTOFromForm(form url.Values) SubmitLeaveDTO {
	return SubmitLeaveDTO{
		Name:        form.Get("name"),
		Email:       form.Get("email"),
		LeaveDays:   form.Get("leave_days"),
		LeavePeriod: form.Get("leave_period"),
		Reason:      form.Get("reason"),
	}
}

// Normalize trims surrounding whitespace from every field.
func (dto SubmitLeaveDTO) Normalize() SubmitLeaveDTO {
	return SubmitLeaveDTO{
		Name:        strings.TrimSpace(dto.Name),
		Email:       strings.TrimSpace(dto.Email),
		LeaveDays:   strings.TrimSpace(dto.LeaveDays),
		LeavePeriod: strings.TrimSpace(dto.LeavePeriod),
		Reason:      strings.TrimSpace(dto.Reason),
	}
}

func (dto SubmitLeaveDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(maxNameLength)
	v.Field("email", dto.Email).Required().MaxLength(maxEmailLength).Email()
	v.Field("leave_days", dto.LeaveDays).Required().MaxLength(maxDaysLength)
	v.Field("leave_period", dto.LeavePeriod).Required().MaxLength(maxPeriodLength)
	v.Field("reason", dto.Reason).MaxLength(maxReasonLength)
	return v.Validate()
}

type ListFilter struct {
	Status string
	Limit  int
	Offset int
}

type ListResponse struct {
	Applications []*LeaveApplication `json:"applications"`
	Limit        int                 `json:"limit"`
	Offset       int                 `json:"offset"`
}

type CalendarStatus string

const (
	CalendarDisabled CalendarStatus = "disabled"
	CalendarSynced   CalendarStatus = "synced"
	CalendarSkipped  CalendarStatus = "skipped"
	CalendarFailed   CalendarStatus = "failed"
)

// SubmitResult describes what happened after the application was stored.
// NotificationQueued only means the email was scheduled.
type SubmitResult struct {
	Application        *LeaveApplication `json:"application"`
	NotificationQueued bool              `json:"notification_queued"`
	Calendar           CalendarStatus    `json:"calendar_status"`
	CalendarEventID    string            `json:"calendar_event_id,omitempty"`
	CalendarMessage    string            `json:"calendar_message,omitempty"`
}

// PartialSuccess is true when the application was recorded but calendar sync
// was attempted or wanted and did not happen.
func (r *SubmitResult) PartialSuccess() bool {
	return r.Calendar == CalendarFailed || r.Calendar == CalendarSkipped
}
