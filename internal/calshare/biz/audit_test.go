package biz

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	auditopts "github.com/kart-io/calshare/pkg/options/audit"
)

func newAuditService(t *testing.T) *AuditService {
	t.Helper()

	svc, err := NewAuditService(auditopts.NewOptions())
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestAuditRecordAssignsSequentialIDs(t *testing.T) {
	svc := newAuditService(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		entry, err := svc.Record(ctx, &model.AuditEntry{
			Action:  model.AuditActionLogin,
			ActorID: "u1",
			Status:  model.AuditStatusSuccess,
		})
		require.NoError(t, err)
		assert.Equal(t, uint64(i), entry.ID)
	}
}

func TestAuditRecordDefaultsActorAndTarget(t *testing.T) {
	svc := newAuditService(t)

	entry, err := svc.Record(context.Background(), &model.AuditEntry{
		Action: model.AuditActionPermissionCheck,
		Status: model.AuditStatusDenied,
	})
	require.NoError(t, err)

	assert.Equal(t, model.AuditActorAnonymous, entry.ActorID)
	assert.Equal(t, model.AuditTargetUnknown, entry.TargetID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestAuditRecordRejectsMissingFields(t *testing.T) {
	svc := newAuditService(t)

	rejected := &model.AuditEntry{ActorID: "u1"}
	_, err := svc.Record(context.Background(), rejected)
	require.Error(t, err)
	assert.True(t, errors.ErrValidationFailed.Is(err))
	assert.Contains(t, err.Error(), "action")
	assert.Contains(t, err.Error(), "status")

	// A rejected entry must not consume an id, be assigned one, or land
	// in the log.
	assert.Zero(t, rejected.ID)
	assert.Zero(t, svc.Len())
	entry, err := svc.Record(context.Background(), &model.AuditEntry{
		Action: model.AuditActionLogin,
		Status: model.AuditStatusSuccess,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), entry.ID)
}

func TestAuditListReturnsSnapshotCopy(t *testing.T) {
	svc := newAuditService(t)
	ctx := context.Background()

	_, err := svc.Record(ctx, &model.AuditEntry{
		Action:  model.AuditActionLogin,
		ActorID: "u1",
		Status:  model.AuditStatusSuccess,
	})
	require.NoError(t, err)

	_, first := svc.List(ctx, AuditFilter{}, 0, 0)
	require.Len(t, first, 1)
	first[0].Details = "tampered"

	_, second := svc.List(ctx, AuditFilter{}, 0, 0)
	assert.Empty(t, second[0].Details)
}

func TestAuditListFiltersAndPaginates(t *testing.T) {
	svc := newAuditService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		status := model.AuditStatusAllowed
		if i%2 == 1 {
			status = model.AuditStatusDenied
		}
		_, err := svc.Record(ctx, &model.AuditEntry{
			Action:  model.AuditActionPermissionCheck,
			ActorID: "u1",
			Status:  status,
		})
		require.NoError(t, err)
	}

	total, denied := svc.List(ctx, AuditFilter{Status: model.AuditStatusDenied}, 0, 0)
	assert.Equal(t, int64(2), total)
	assert.Len(t, denied, 2)

	total, pageOne := svc.List(ctx, AuditFilter{}, 0, 2)
	assert.Equal(t, int64(5), total)
	require.Len(t, pageOne, 2)
	assert.Equal(t, uint64(1), pageOne[0].ID)
	assert.Equal(t, uint64(2), pageOne[1].ID)
}

func TestAuditRecordConcurrentIDsUnique(t *testing.T) {
	svc := newAuditService(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	ids := make(chan uint64, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, err := svc.Record(ctx, &model.AuditEntry{
				Action:  model.AuditActionPermissionCheck,
				ActorID: "u1",
				Status:  model.AuditStatusAllowed,
			})
			if err == nil {
				ids <- entry.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
