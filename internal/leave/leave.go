package leave

import (
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-request/internal/core/datamodel/leave"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type LeaveApplication struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	LeaveDays   string    `json:"leave_days"`
	LeavePeriod string    `json:"leave_period"`
	Reason      string    `json:"reason"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewLeaveApplication(dto SubmitLeaveDTO) *LeaveApplication {
	now := time.Now()
	return &LeaveApplication{
		Name:        dto.Name,
		Email:       dto.Email,
		LeaveDays:   dto.LeaveDays,
		LeavePeriod: dto.LeavePeriod,
		Reason:      dto.Reason,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (a *LeaveApplication) IsPending() bool {
	return a.Status == StatusPending
}

func (a *LeaveApplication) Approve() {
	a.Status = StatusApproved
	a.UpdatedAt = time.Now()
}

func (a *LeaveApplication) Reject() {
	a.Status = StatusRejected
	a.UpdatedAt = time.Now()
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func ToDataModel(a *LeaveApplication) *leaveDatamodel.LeaveApplication {
	return &leaveDatamodel.LeaveApplication{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		LeaveDays:   a.LeaveDays,
		LeavePeriod: a.LeavePeriod,
		Reason:      a.Reason,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModel(a *leaveDatamodel.LeaveApplication) *LeaveApplication {
	return &LeaveApplication{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		LeaveDays:   a.LeaveDays,
		LeavePeriod: a.LeavePeriod,
		Reason:      a.Reason,
		Status:      a.Status,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromDataModelSlice(apps []*leaveDatamodel.LeaveApplication) []*LeaveApplication {
	result := make([]*LeaveApplication, len(apps))
	for i, a := range apps {
		result[i] = FromDataModel(a)
	}
	return result
}
