// Package biz implements the business logic services on top of the store
// layer.
package biz

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"

	"github.com/kart-io/calshare/internal/calshare/store"
	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	auditopts "github.com/kart-io/calshare/pkg/options/audit"
)

// AuditService owns the append-only audit log. The in-memory log is the
// source of truth; configured sinks receive asynchronous best-effort
// copies. Entries are never mutated or removed once recorded.
type AuditService struct {
	mu      sync.Mutex
	entries []*model.AuditEntry
	nextID  uint64

	pool  *ants.Pool
	sinks []store.AuditStore
}

// NewAuditService creates the audit service with the given persistence
// sinks. Sinks may be empty; the in-memory log always works.
func NewAuditService(opts *auditopts.Options, sinks ...store.AuditStore) (*AuditService, error) {
	if opts == nil {
		opts = auditopts.NewOptions()
	}

	pool, err := ants.NewPool(opts.Workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, err
	}

	return &AuditService{
		pool:  pool,
		sinks: sinks,
	}, nil
}

// Record appends one entry to the audit log. Empty actor and target are
// defaulted to "anonymous" and "unknown" before validation; an entry
// still missing required fields after defaulting is rejected and not
// recorded. The assigned id is sequential per process instance.
func (s *AuditService) Record(ctx context.Context, entry *model.AuditEntry) (*model.AuditEntry, error) {
	if entry.ActorID == "" {
		entry.ActorID = model.AuditActorAnonymous
	}
	if entry.TargetID == "" {
		entry.TargetID = model.AuditTargetUnknown
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if missing := entry.Invalid(); missing != nil {
		return nil, errors.ErrValidationFailed.
			WithMessage("audit entry missing required fields: " + strings.Join(missing, ", "))
	}

	s.mu.Lock()
	s.nextID++
	entry.ID = s.nextID
	s.entries = append(s.entries, entry)
	s.mu.Unlock()

	s.persist(entry)
	return entry, nil
}

// RecordAction records an action outcome such as login, calendar_create
// or a permission check decision.
func (s *AuditService) RecordAction(ctx context.Context, action, actorID, targetID, status, details string) {
	s.recordBestEffort(ctx, &model.AuditEntry{
		Action:   action,
		ActorID:  actorID,
		TargetID: targetID,
		Status:   status,
		Details:  details,
	})
}

// RecordDenied records a denial on behalf of the request pipeline when no
// evaluator ran.
func (s *AuditService) RecordDenied(ctx context.Context, action, actorID, targetID, details string) {
	s.recordBestEffort(ctx, &model.AuditEntry{
		Action:   action,
		ActorID:  actorID,
		TargetID: targetID,
		Status:   model.AuditStatusDenied,
		Details:  details,
	})
}

func (s *AuditService) recordBestEffort(ctx context.Context, entry *model.AuditEntry) {
	if _, err := s.Record(ctx, entry); err != nil {
		logger.Warnw("dropping invalid audit entry",
			"action", entry.Action,
			"error", err.Error(),
		)
	}
}

// AuditFilter narrows List results. Zero values match everything.
type AuditFilter struct {
	ActorID string
	Action  string
	Status  string
}

// List returns a snapshot of matching entries, oldest first, with the
// total match count. The returned slice is a copy; the log itself is
// never exposed.
func (s *AuditService) List(_ context.Context, filter AuditFilter, offset, limit int) (int64, []*model.AuditEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*model.AuditEntry
	for _, e := range s.entries {
		if filter.ActorID != "" && e.ActorID != filter.ActorID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		matched = append(matched, e)
	}

	total := int64(len(matched))
	if offset < 0 {
		offset = 0
	}
	if offset >= len(matched) {
		return total, []*model.AuditEntry{}
	}
	end := len(matched)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}

	out := make([]*model.AuditEntry, end-offset)
	for i, e := range matched[offset:end] {
		copied := *e
		out[i] = &copied
	}
	return total, out
}

// Len returns the number of recorded entries.
func (s *AuditService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// persist submits the entry to every sink on the worker pool. A full pool
// or failed sink loses only the persisted copy, never the log entry.
func (s *AuditService) persist(entry *model.AuditEntry) {
	if len(s.sinks) == 0 {
		return
	}

	copied := *entry
	err := s.pool.Submit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for _, sink := range s.sinks {
			if err := sink.Persist(ctx, &copied); err != nil {
				logger.Warnw("audit sink persist failed",
					"entry_id", copied.ID,
					"error", err.Error(),
				)
			}
		}
	})
	if err != nil {
		logger.Warnw("audit persistence pool rejected entry",
			"entry_id", entry.ID,
			"error", err.Error(),
		)
	}
}

// Close releases the persistence pool.
func (s *AuditService) Close() {
	s.pool.Release()
}
