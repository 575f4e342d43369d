package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/noah-isme/course-portal-api/internal/models"
	"github.com/noah-isme/course-portal-api/pkg/database"
)

// MongoModuleRepository stores modules in the "modules" collection.
type MongoModuleRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoModuleRepository creates a new repository instance.
func NewMongoModuleRepository(db *mongo.Database) *MongoModuleRepository {
	return &MongoModuleRepository{db: db, collection: db.Collection(database.ModulesCollection)}
}

// List returns modules matching filters, newest academic year first.
func (r *MongoModuleRepository) List(ctx context.Context, filter models.ModuleFilter) ([]models.Module, error) {
	query := bson.M{}
	if filter.Year != "" {
		query["year"] = filter.Year
	}
	if filter.Term != "" {
		query["term"] = filter.Term
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		query["$or"] = bson.A{bson.M{"id": pattern}, bson.M{"name": pattern}}
	}

	opts := options.Find().SetSort(bson.D{{Key: "year", Value: -1}, {Key: "id", Value: 1}})
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("list modules: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck

	modules := make([]models.Module, 0)
	if err := cursor.All(ctx, &modules); err != nil {
		return nil, fmt.Errorf("decode modules: %w", err)
	}
	return modules, nil
}

// Create inserts a module; the unique index on id reports duplicates.
func (r *MongoModuleRepository) Create(ctx context.Context, module *models.Module) error {
	if module.CreatedAt.IsZero() {
		module.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, module); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create module: %w", err)
	}
	return nil
}

// Delete removes a module document. A missing document yields ErrNotFound.
func (r *MongoModuleRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("delete module: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Terms returns the distinct year/term pairs in use.
func (r *MongoModuleRepository) Terms(ctx context.Context) ([]models.TermOption, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: bson.D{
			{Key: "year", Value: "$year"},
			{Key: "term", Value: "$term"},
		}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id.year", Value: -1}, {Key: "_id.term", Value: 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list module terms: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck

	var groups []struct {
		ID models.TermOption `bson:"_id"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode module terms: %w", err)
	}
	terms := make([]models.TermOption, 0, len(groups))
	for _, g := range groups {
		terms = append(terms, g.ID)
	}
	return terms, nil
}

// Ping verifies the deployment answers.
func (r *MongoModuleRepository) Ping(ctx context.Context) error {
	return r.db.Client().Ping(ctx, nil)
}

// MongoOutlineRepository stores extraction results in the "outlines" collection.
type MongoOutlineRepository struct {
	collection *mongo.Collection
}

// NewMongoOutlineRepository creates a new repository instance.
func NewMongoOutlineRepository(db *mongo.Database) *MongoOutlineRepository {
	return &MongoOutlineRepository{collection: db.Collection(database.OutlinesCollection)}
}

// Get returns the stored outline or ErrNotFound.
func (r *MongoOutlineRepository) Get(ctx context.Context, moduleID string) (*models.OutlineRecord, error) {
	var record models.OutlineRecord
	err := r.collection.FindOne(ctx, bson.M{"module_id": moduleID}).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get outline: %w", err)
	}
	return &record, nil
}

// Upsert replaces the module's outline document wholesale.
func (r *MongoOutlineRepository) Upsert(ctx context.Context, record *models.OutlineRecord) error {
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"module_id": record.ModuleID}, record, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert outline: %w", err)
	}
	return nil
}

// Delete drops a module's outline; a missing document is not an error.
func (r *MongoOutlineRepository) Delete(ctx context.Context, moduleID string) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"module_id": moduleID}); err != nil {
		return fmt.Errorf("delete outline: %w", err)
	}
	return nil
}
