package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/3plops/putaway/internal/domain/models"
)

// Repository defines the interface for audit storage.
type Repository interface {
	SaveAuditRecords(ctx context.Context, records []models.AuditRecord) error
	SaveRunSummary(ctx context.Context, summary models.RunSummary) error
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client        *mongo.Client
	dbName        string
	auditCollName string
	runsCollName  string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:        client,
		dbName:        dbName,
		auditCollName: "putaway_audit",
		runsCollName:  "putaway_runs",
	}, nil
}

// SaveAuditRecords stores one document per processed unit.
func (r *MongoDBRepository) SaveAuditRecords(ctx context.Context, records []models.AuditRecord) error {
	if len(records) == 0 {
		return nil
	}

	docs := make([]interface{}, len(records))
	for i, rec := range records {
		docs[i] = rec
	}

	collection := r.client.Database(r.dbName).Collection(r.auditCollName)
	if _, err := collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert audit records: %w", err)
	}
	return nil
}

// SaveRunSummary stores the aggregate document for one batch run.
func (r *MongoDBRepository) SaveRunSummary(ctx context.Context, summary models.RunSummary) error {
	collection := r.client.Database(r.dbName).Collection(r.runsCollName)
	if _, err := collection.InsertOne(ctx, summary); err != nil {
		return fmt.Errorf("failed to insert run summary: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
