package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brightpath/school-portal/internal/core/domain"
)

const sequenceCollection = "registration_numbers"

// SequenceRepository reserves allocated identifiers in MongoDB. The
// identifier is the document _id, so the collection's primary index provides
// the atomic insert-if-absent the allocator's retry loop depends on. The
// numeric position is stored alongside and ordering reads sort on it, not on
// the identifier string, which would misorder once the sequence outgrows its
// zero padding.
type SequenceRepository struct {
	coll *mongo.Collection
}

func NewSequenceRepository(db *mongo.Database) *SequenceRepository {
	return &SequenceRepository{coll: db.Collection(sequenceCollection)}
}

type sequenceDoc struct {
	ID          string `bson:"_id"`
	Scope       string `bson:"scope"`
	Seq         int    `bson:"seq"`
	AllocatedAt int64  `bson:"allocated_at"`
}

// LastSeq returns the highest reserved position in the scope, or
// domain.ErrSequenceNotFound for a fresh scope.
func (r *SequenceRepository) LastSeq(ctx context.Context, scope string) (int, error) {
	ctx, cancel := opContext(ctx)
	defer cancel()

	filter := bson.M{"scope": scope}
	opts := options.FindOne().SetSort(bson.D{{Key: "seq", Value: -1}})

	var doc sequenceDoc
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, domain.ErrSequenceNotFound
		}
		return 0, fmt.Errorf("find last sequence: %w", err)
	}
	return doc.Seq, nil
}

// Reserve claims the identifier at the given position. A concurrent winner
// surfaces as domain.ErrSequenceTaken, which the allocator converts into a
// retry.
func (r *SequenceRepository) Reserve(ctx context.Context, scope, id string, seq int) error {
	ctx, cancel := opContext(ctx)
	defer cancel()

	doc := sequenceDoc{ID: id, Scope: scope, Seq: seq, AllocatedAt: time.Now().Unix()}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrSequenceTaken
		}
		return fmt.Errorf("reserve sequence: %w", err)
	}
	return nil
}
