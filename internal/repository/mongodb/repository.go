// Package mongodb implements the repository interfaces on MongoDB, for labs
// that outgrow the flat-file tables. Decimal fields are stored as strings so
// values round-trip without float drift.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

const (
	batchCollection    = "batches"
	solutionCollection = "stock_solutions"
	movementCollection = "movements"
)

// Store wraps a MongoDB connection and hands out the table repositories.
type Store struct {
	client *mongo.Client
	dbName string
}

// NewStore connects to MongoDB and verifies the connection with a ping.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

// Batches returns the batch table repository.
func (s *Store) Batches() repository.BatchRepository {
	return &batchRepository{coll: s.collection(batchCollection)}
}

// Solutions returns the stock-solution table repository.
func (s *Store) Solutions() repository.SolutionRepository {
	return &solutionRepository{coll: s.collection(solutionCollection)}
}

// Movements returns the append-only movement log repository.
func (s *Store) Movements() repository.MovementRepository {
	return &movementRepository{coll: s.collection(movementCollection)}
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

func notFoundOr(err error, code string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("%s: %w", code, repository.ErrNotFound)
	}
	return err
}

func dateRangeFilter(field string, from, to time.Time) bson.M {
	return bson.M{field: bson.M{"$gte": from, "$lte": to}}
}
