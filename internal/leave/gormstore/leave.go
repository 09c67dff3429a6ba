package gormstore

import (
	"context"
	"errors"
	"time"

	leaveDatamodel "github.com/frahmantamala/leave-request/internal/core/datamodel/leave"
	"github.com/frahmantamala/leave-request/internal/leave"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.Repository {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Create(ctx context.Context, app *leaveDatamodel.LeaveApplication) error {
	if app.Status == "" {
		app.Status = leave.StatusPending
	}
	return r.db.WithContext(ctx).Create(app).Error
}

func (r *LeaveRepository) GetByID(ctx context.Context, id int64) (*leaveDatamodel.LeaveApplication, error) {
	var app leaveDatamodel.LeaveApplication
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &app, nil
}

func (r *LeaveRepository) List(ctx context.Context, status string, limit, offset int) ([]*leaveDatamodel.LeaveApplication, error) {
	var apps []*leaveDatamodel.LeaveApplication
	query := r.db.WithContext(ctx).Order("id DESC").Limit(limit).Offset(offset)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Find(&apps).Error
	return apps, err
}

func (r *LeaveRepository) UpdateStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&leaveDatamodel.LeaveApplication{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
