package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kdiomande/stockroom/internal/domain/models"
)

// ErrNoSnapshot indicates no cached snapshot exists for the requested kind.
var ErrNoSnapshot = errors.New("no cached snapshot")

// CacheRepository mirrors master-data snapshots locally and keeps the audit
// trail of finished imports. The spreadsheet gateway stays the system of
// record; this cache only serves reads when the gateway is slow or down.
type CacheRepository interface {
	GetSnapshot(ctx context.Context, kind models.EntityKind) ([]models.MasterRecord, time.Time, error)
	PutSnapshot(ctx context.Context, kind models.EntityKind, records []models.MasterRecord) error
	SaveImportAudit(ctx context.Context, audit models.ImportAudit) error
}

// MongoDBRepository implements CacheRepository on MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	dbName string
}

const (
	snapshotCollection = "master_snapshots"
	auditCollection    = "import_audits"
)

// NewMongoDBRepository connects and pings the database.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{client: client, dbName: dbName}, nil
}

type snapshotDoc struct {
	Kind      string                `bson:"kind"`
	Records   []models.MasterRecord `bson:"records"`
	FetchedAt time.Time             `bson:"fetched_at"`
}

// GetSnapshot returns the cached record list for one entity kind together
// with the time it was fetched from the gateway.
func (r *MongoDBRepository) GetSnapshot(ctx context.Context, kind models.EntityKind) ([]models.MasterRecord, time.Time, error) {
	collection := r.client.Database(r.dbName).Collection(snapshotCollection)

	var doc snapshotDoc
	err := collection.FindOne(ctx, bson.M{"kind": string(kind)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load %s snapshot: %w", kind, err)
	}
	return doc.Records, doc.FetchedAt, nil
}

// PutSnapshot overwrites the cached record list for one entity kind.
func (r *MongoDBRepository) PutSnapshot(ctx context.Context, kind models.EntityKind, records []models.MasterRecord) error {
	collection := r.client.Database(r.dbName).Collection(snapshotCollection)

	doc := snapshotDoc{Kind: string(kind), Records: records, FetchedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := collection.ReplaceOne(ctx, bson.M{"kind": string(kind)}, doc, opts); err != nil {
		return fmt.Errorf("store %s snapshot: %w", kind, err)
	}
	return nil
}

// SaveImportAudit records the outcome of one finished import run.
func (r *MongoDBRepository) SaveImportAudit(ctx context.Context, audit models.ImportAudit) error {
	collection := r.client.Database(r.dbName).Collection(auditCollection)
	if _, err := collection.InsertOne(ctx, audit); err != nil {
		return fmt.Errorf("failed to insert import audit: %w", err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
