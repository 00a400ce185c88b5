package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
)

// auditRecord is the relational shape of a persisted audit entry. The
// in-memory entry id is kept alongside a row id so restarts never collide
// on the primary key.
type auditRecord struct {
	RowID     uint64 `gorm:"primaryKey;autoIncrement;column:row_id"`
	EntryID   uint64 `gorm:"index:idx_audit_entry;not null"`
	Action    string `gorm:"size:64;index:idx_audit_action;not null"`
	ActorID   string `gorm:"size:64;index:idx_audit_actor;not null"`
	TargetID  string `gorm:"size:64;index:idx_audit_target"`
	Status    string `gorm:"size:16;not null"`
	Details   string `gorm:"size:1024"`
	CreatedAt int64  `gorm:"not null"`
}

// TableName returns the table name for GORM.
func (auditRecord) TableName() string {
	return "audit_entries"
}

type audits struct {
	db *gorm.DB
}

func newAudits(db *gorm.DB) *audits {
	return &audits{db}
}

// Persist writes one audit entry.
func (a *audits) Persist(ctx context.Context, entry *model.AuditEntry) error {
	record := &auditRecord{
		EntryID:   entry.ID,
		Action:    entry.Action,
		ActorID:   entry.ActorID,
		TargetID:  entry.TargetID,
		Status:    entry.Status,
		Details:   entry.Details,
		CreatedAt: entry.CreatedAt.UnixMilli(),
	}
	if record.CreatedAt == 0 {
		record.CreatedAt = time.Now().UnixMilli()
	}
	if err := a.db.WithContext(ctx).Create(record).Error; err != nil {
		return errors.ErrAuditSink.WithCause(err)
	}
	return nil
}
