package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/kart-io/calshare/internal/model"
	"github.com/kart-io/calshare/pkg/errors"
	"github.com/kart-io/calshare/pkg/mongodb"
)

// mongoAudits persists audit entries to a MongoDB collection.
type mongoAudits struct {
	client *mongodb.Client
}

// NewMongoAuditStore creates the MongoDB audit sink.
func NewMongoAuditStore(client *mongodb.Client) AuditStore {
	return &mongoAudits{client: client}
}

// Persist writes one audit entry as a document.
func (m *mongoAudits) Persist(ctx context.Context, entry *model.AuditEntry) error {
	doc := bson.M{
		"entry_id":   entry.ID,
		"action":     entry.Action,
		"actor_id":   entry.ActorID,
		"target_id":  entry.TargetID,
		"status":     entry.Status,
		"details":    entry.Details,
		"created_at": entry.CreatedAt,
	}
	if _, err := m.client.AuditCollection().InsertOne(ctx, doc); err != nil {
		return errors.ErrAuditSink.WithCause(err)
	}
	return nil
}
