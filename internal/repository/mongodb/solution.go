package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JASIELAB/CULTUREMEDIA/internal/domain/models"
	"github.com/JASIELAB/CULTUREMEDIA/internal/repository"
)

type solutionDoc struct {
	SolutionCode    string    `bson:"_id"`
	PreparationDate time.Time `bson:"preparation_date"`
	Quantity        string    `bson:"quantity"`
	Unit            string    `bson:"unit"`
	Responsible     string    `bson:"responsible"`
	RegulatorType   string    `bson:"regulator_type"`
	Notes           string    `bson:"notes"`
}

func toSolutionDoc(s models.StockSolution) solutionDoc {
	return solutionDoc{
		SolutionCode:    s.SolutionCode,
		PreparationDate: s.PreparationDate,
		Quantity:        s.Quantity.String(),
		Unit:            s.Unit,
		Responsible:     s.Responsible,
		RegulatorType:   s.RegulatorType,
		Notes:           s.Notes,
	}
}

func (d solutionDoc) toRecord() (models.StockSolution, error) {
	qty, err := decimal.NewFromString(d.Quantity)
	if err != nil {
		return models.StockSolution{}, fmt.Errorf("solution %s quantity: %w", d.SolutionCode, err)
	}
	return models.StockSolution{
		SolutionCode:    d.SolutionCode,
		PreparationDate: d.PreparationDate,
		Quantity:        qty,
		Unit:            d.Unit,
		Responsible:     d.Responsible,
		RegulatorType:   d.RegulatorType,
		Notes:           d.Notes,
	}, nil
}

type solutionRepository struct {
	coll *mongo.Collection
}

func (r *solutionRepository) Get(ctx context.Context, code string) (models.StockSolution, error) {
	var doc solutionDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		return models.StockSolution{}, notFoundOr(err, "solution "+code)
	}
	return doc.toRecord()
}

func (r *solutionRepository) List(ctx context.Context, limit int) ([]models.StockSolution, error) {
	opts := options.Find().SetSort(bson.D{{Key: "preparation_date", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list solutions: %w", err)
	}
	var docs []solutionDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode solutions: %w", err)
	}
	records := make([]models.StockSolution, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (r *solutionRepository) Append(ctx context.Context, record models.StockSolution) error {
	if _, err := r.coll.InsertOne(ctx, toSolutionDoc(record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("solution %s: %w", record.SolutionCode, repository.ErrDuplicateCode)
		}
		return fmt.Errorf("insert solution: %w", err)
	}
	return nil
}

func (r *solutionRepository) Update(ctx context.Context, code string, fn func(*models.StockSolution) error) error {
	record, err := r.Get(ctx, code)
	if err != nil {
		return err
	}
	if err := fn(&record); err != nil {
		return err
	}
	record.SolutionCode = code
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": code}, toSolutionDoc(record)); err != nil {
		return fmt.Errorf("update solution %s: %w", code, err)
	}
	return nil
}

func (r *solutionRepository) Delete(ctx context.Context, code string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": code})
	if err != nil {
		return fmt.Errorf("delete solution %s: %w", code, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("solution %s: %w", code, repository.ErrNotFound)
	}
	return nil
}
