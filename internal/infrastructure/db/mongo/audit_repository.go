package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/brightpath/school-portal/internal/core/domain"
)

const auditCollection = "audit_events"

// AuditRepository persists admission audit events.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	Kind    string `bson:"kind"`
	Subject string `bson:"subject"`
	Detail  string `bson:"detail,omitempty"`
	At      int64  `bson:"at"`
}

func (r *AuditRepository) Record(ctx context.Context, event domain.AuditEvent) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	doc := auditDoc{
		Kind:    event.Kind,
		Subject: event.Subject,
		Detail:  event.Detail,
		At:      event.At.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}
