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

// batchDoc is the stored shape of a BatchRecord. pH and conductivity are kept
// as strings: shopspring decimals have no native bson representation.
type batchDoc struct {
	Code              string    `bson:"_id"`
	Year              int       `bson:"year"`
	RecipeName        string    `bson:"recipe_name"`
	SolutionCode      string    `bson:"solution_code"`
	Week              int       `bson:"week"`
	Day               int       `bson:"day"`
	PreparationNumber int       `bson:"preparation_number"`
	VesselCount       int       `bson:"vessel_count"`
	VolumeML          int       `bson:"volume_ml"`
	Hormones          string    `bson:"hormones"`
	AdjustedPH        string    `bson:"adjusted_ph"`
	FinalPH           string    `bson:"final_ph"`
	FinalConductivity string    `bson:"final_conductivity"`
	RegistrationDate  time.Time `bson:"registration_date"`
}

func toBatchDoc(b models.BatchRecord) batchDoc {
	return batchDoc{
		Code:              b.Code,
		Year:              b.Year,
		RecipeName:        b.RecipeName,
		SolutionCode:      b.SolutionCode,
		Week:              b.Week,
		Day:               b.Day,
		PreparationNumber: b.PreparationNumber,
		VesselCount:       b.VesselCount,
		VolumeML:          b.VolumeML,
		Hormones:          b.Hormones,
		AdjustedPH:        b.AdjustedPH.String(),
		FinalPH:           b.FinalPH.String(),
		FinalConductivity: b.FinalConductivity.String(),
		RegistrationDate:  b.RegistrationDate,
	}
}

func (d batchDoc) toRecord() (models.BatchRecord, error) {
	adjusted, err := decimal.NewFromString(d.AdjustedPH)
	if err != nil {
		return models.BatchRecord{}, fmt.Errorf("batch %s adjusted_ph: %w", d.Code, err)
	}
	final, err := decimal.NewFromString(d.FinalPH)
	if err != nil {
		return models.BatchRecord{}, fmt.Errorf("batch %s final_ph: %w", d.Code, err)
	}
	ce, err := decimal.NewFromString(d.FinalConductivity)
	if err != nil {
		return models.BatchRecord{}, fmt.Errorf("batch %s final_conductivity: %w", d.Code, err)
	}
	return models.BatchRecord{
		Code:              d.Code,
		Year:              d.Year,
		RecipeName:        d.RecipeName,
		SolutionCode:      d.SolutionCode,
		Week:              d.Week,
		Day:               d.Day,
		PreparationNumber: d.PreparationNumber,
		VesselCount:       d.VesselCount,
		VolumeML:          d.VolumeML,
		Hormones:          d.Hormones,
		AdjustedPH:        adjusted,
		FinalPH:           final,
		FinalConductivity: ce,
		RegistrationDate:  d.RegistrationDate,
	}, nil
}

type batchRepository struct {
	coll *mongo.Collection
}

func (r *batchRepository) Get(ctx context.Context, code string) (models.BatchRecord, error) {
	var doc batchDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		return models.BatchRecord{}, notFoundOr(err, "batch "+code)
	}
	return doc.toRecord()
}

func (r *batchRepository) List(ctx context.Context, limit int) ([]models.BatchRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "registration_date", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	records, err := decodeBatches(ctx, cursor)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

func (r *batchRepository) ByDateRange(ctx context.Context, from, to time.Time) ([]models.BatchRecord, error) {
	cursor, err := r.coll.Find(ctx, dateRangeFilter("registration_date", from, to))
	if err != nil {
		return nil, fmt.Errorf("batches by date range: %w", err)
	}
	return decodeBatches(ctx, cursor)
}

func (r *batchRepository) Append(ctx context.Context, record models.BatchRecord) error {
	if _, err := r.coll.InsertOne(ctx, toBatchDoc(record)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("batch %s: %w", record.Code, repository.ErrDuplicateCode)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

func (r *batchRepository) Update(ctx context.Context, code string, fn func(*models.BatchRecord) error) error {
	record, err := r.Get(ctx, code)
	if err != nil {
		return err
	}
	if err := fn(&record); err != nil {
		return err
	}
	record.Code = code // the key never changes under update
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": code}, toBatchDoc(record)); err != nil {
		return fmt.Errorf("update batch %s: %w", code, err)
	}
	return nil
}

func (r *batchRepository) Delete(ctx context.Context, code string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": code})
	if err != nil {
		return fmt.Errorf("delete batch %s: %w", code, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("batch %s: %w", code, repository.ErrNotFound)
	}
	return nil
}

func decodeBatches(ctx context.Context, cursor *mongo.Cursor) ([]models.BatchRecord, error) {
	var docs []batchDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode batches: %w", err)
	}
	records := make([]models.BatchRecord, 0, len(docs))
	for _, doc := range docs {
		rec, err := doc.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
