package leave

import "time"

type LeaveApplication struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Email       string    `gorm:"column:email;not null"`
	LeaveDays   string    `gorm:"column:leave_days;not null"`
	LeavePeriod string    `gorm:"column:leave_period;not null"`
	Reason      string    `gorm:"column:reason"`
	Status      string    `gorm:"column:status;not null;default:pending"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (LeaveApplication) TableName() string {
	return "leave_applications"
}
