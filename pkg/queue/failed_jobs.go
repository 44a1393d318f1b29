package queue

import (
	"context"
	"time"

	"github.com/shashiranjanraj/rigparts/pkg/logger"
	"gorm.io/gorm"
)

// FailedJobRecord is the row written for every job that exhausts its retries.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement"`
	JobType  string    `gorm:"size:255;not null;index"`
	Payload  string    `gorm:"type:text;not null"`
	Error    string    `gorm:"type:text"`
	Attempts int       `gorm:"not null;default:0"`
	FailedAt time.Time `gorm:"not null"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// FailedStore persists exhausted jobs.
type FailedStore interface {
	SaveFailed(ctx context.Context, rec FailedJobRecord) error
}

// GormFailedStore writes failures to the failed_jobs table.
type GormFailedStore struct {
	DB *gorm.DB
}

func (s GormFailedStore) SaveFailed(ctx context.Context, rec FailedJobRecord) error {
	return s.DB.WithContext(ctx).Create(&rec).Error
}

// UseStore makes the default manager persist failures through s.
func UseStore(s FailedStore) { defaultManager.UseStore(s) }

func (m *Manager) UseStore(s FailedStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
}

func (m *Manager) recordFailure(ctx context.Context, f FailedJob) {
	m.mu.Lock()
	m.failed = append(m.failed, f)
	store := m.store
	m.mu.Unlock()

	if store == nil {
		return
	}

	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	rec := FailedJobRecord{
		JobType:  f.Name,
		Payload:  string(f.Payload),
		Error:    msg,
		Attempts: f.Attempts,
		FailedAt: f.FailedAt,
	}
	// A cancelled worker context must not lose the record.
	if err := store.SaveFailed(context.WithoutCancel(ctx), rec); err != nil {
		logger.Error("queue: persist failed job", "type", f.Name, "error", err)
	}
}
