package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
)

type movementDoc struct {
	ID             string    `bson:"_id"`
	Timestamp      time.Time `bson:"timestamp"`
	Kind           string    `bson:"kind"`
	ReferencedCode string    `bson:"referenced_code"`
	Quantity       string    `bson:"quantity"`
	Details        string    `bson:"details"`
}

func toMovementDoc(e models.MovementLogEntry) movementDoc {
	return movementDoc{
		ID:             e.ID.String(),
		Timestamp:      e.Timestamp,
		Kind:           string(e.Kind),
		ReferencedCode: e.ReferencedCode,
		Quantity:       e.Quantity.String(),
		Details:        e.Details,
	}
}

func (d movementDoc) toEntry() (models.MovementLogEntry, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return models.MovementLogEntry{}, fmt.Errorf("movement id: %w", err)
	}
	qty, err := decimal.NewFromString(d.Quantity)
	if err != nil {
		return models.MovementLogEntry{}, fmt.Errorf("movement %s quantity: %w", d.ID, err)
	}
	return models.MovementLogEntry{
		ID:             id,
		Timestamp:      d.Timestamp,
		Kind:           models.MovementKind(d.Kind),
		ReferencedCode: d.ReferencedCode,
		Quantity:       qty,
		Details:        d.Details,
	}, nil
}

type movementRepository struct {
	coll *mongo.Collection
}

func (r *movementRepository) Append(ctx context.Context, entry models.MovementLogEntry) error {
	if _, err := r.coll.InsertOne(ctx, toMovementDoc(entry)); err != nil {
		return fmt.Errorf("insert movement: %w", err)
	}
	return nil
}

func (r *movementRepository) List(ctx context.Context, limit int) ([]models.MovementLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	entries, err := decodeMovements(ctx, cursor)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

func (r *movementRepository) ByDateRange(ctx context.Context, from, to time.Time) ([]models.MovementLogEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cursor, err := r.coll.Find(ctx, dateRangeFilter("timestamp", from, to), opts)
	if err != nil {
		return nil, fmt.Errorf("movements by date range: %w", err)
	}
	return decodeMovements(ctx, cursor)
}

func decodeMovements(ctx context.Context, cursor *mongo.Cursor) ([]models.MovementLogEntry, error) {
	var docs []movementDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode movements: %w", err)
	}
	entries := make([]models.MovementLogEntry, 0, len(docs))
	for _, doc := range docs {
		entry, err := doc.toEntry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
