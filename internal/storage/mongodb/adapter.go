// Package mongodb implements the storage.Store contract on top of the
// official MongoDB driver.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/storage"
)

// Adapter provides MongoDB connectivity and implements storage.Store.
type Adapter struct {
	client   *mongo.Client
	database string
	logger   logger.Logger
	timeout  time.Duration
	mu       sync.RWMutex
	closed   bool
}

// Config holds MongoDB adapter configuration.
type Config struct {
	URL              string
	Database         string
	ConnectTimeout   time.Duration
	OperationTimeout time.Duration
}

// NewAdapter connects to MongoDB and verifies connectivity via ping.
// It does not create indexes or collections; see EnsureIndexes.
func NewAdapter(cfg Config, log logger.Logger) (*Adapter, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("mongodb URL is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("mongodb database is required")
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.OperationTimeout <= 0 {
		cfg.OperationTimeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("MongoDB connection established", "database", cfg.Database)
	return &Adapter{
		client:   client,
		database: cfg.Database,
		logger:   log,
		timeout:  cfg.OperationTimeout,
	}, nil
}

// Collection returns a handle to the named collection.
func (a *Adapter) Collection(name string) *mongo.Collection {
	return a.client.Database(a.database).Collection(name)
}

// Ping verifies the connection is alive.
func (a *Adapter) Ping(ctx context.Context) error {
	a.mu.RLock()
	closed := a.closed
	a.mu.RUnlock()
	if closed {
		return fmt.Errorf("mongodb adapter is closed")
	}
	return a.client.Ping(ctx, readpref.Primary())
}

// HealthCheck pings the store with a short timeout.
func (a *Adapter) HealthCheck(ctx context.Context) error {
	hcCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Ping(hcCtx); err != nil {
		a.logger.Error("MongoDB health check failed", "error", err)
		return fmt.Errorf("mongodb health check failed: %w", err)
	}
	return nil
}

// Close disconnects the client. Safe to call more than once.
func (a *Adapter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close mongodb connection: %w", err)
	}
	return nil
}

// EnsureIndexes creates the compound unique index guarding reaction
// natural-key uniqueness. The conditional upsert is the first line of
// defense; the index is the second.
func (a *Adapter) EnsureIndexes(ctx context.Context, reactionsCollection string) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	_, err := a.Collection(reactionsCollection).Indexes().CreateOne(opCtx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "target_id", Value: 1},
			{Key: "content_type", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create reactions index: %w", mapError(err))
	}
	return nil
}

// InsertOne persists a document into the collection.
func (a *Adapter) InsertOne(ctx context.Context, collection string, document interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	if _, err := a.Collection(collection).InsertOne(opCtx, document); err != nil {
		return mapError(err)
	}
	return nil
}

// FindOne decodes the first document matching filter into result.
func (a *Adapter) FindOne(ctx context.Context, collection string, filter bson.M, result interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()
	if err := a.Collection(collection).FindOne(opCtx, filter).Decode(result); err != nil {
		return mapError(err)
	}
	return nil
}

// FindMany decodes an ordered page of matching documents into results.
func (a *Adapter) FindMany(ctx context.Context, collection string, filter bson.M, sort storage.Sort, skip, limit int64, results interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	opts := options.Find().SetSkip(skip).SetLimit(limit)
	if sort.Field != "" {
		direction := 1
		if sort.Order == storage.SortDesc {
			direction = -1
		}
		opts.SetSort(bson.D{{Key: sort.Field, Value: direction}})
	}

	cursor, err := a.Collection(collection).Find(opCtx, filter, opts)
	if err != nil {
		return mapError(err)
	}
	if err := cursor.All(opCtx, results); err != nil {
		return mapError(err)
	}
	return nil
}

// UpdateOne applies update to the first document matching filter.
func (a *Adapter) UpdateOne(ctx context.Context, collection string, filter, update bson.M, upsert bool) (*storage.UpdateResult, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	result, err := a.Collection(collection).UpdateOne(opCtx, filter, update, options.Update().SetUpsert(upsert))
	if err != nil {
		return nil, mapError(err)
	}
	return &storage.UpdateResult{
		MatchedCount:  result.MatchedCount,
		ModifiedCount: result.ModifiedCount,
		UpsertedID:    result.UpsertedID,
	}, nil
}

// DeleteOne removes the first document matching filter.
func (a *Adapter) DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	result, err := a.Collection(collection).DeleteOne(opCtx, filter)
	if err != nil {
		return 0, mapError(err)
	}
	return result.DeletedCount, nil
}

// Count returns the number of documents matching filter.
func (a *Adapter) Count(ctx context.Context, collection string, filter bson.M) (int64, error) {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	count, err := a.Collection(collection).CountDocuments(opCtx, filter)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}

// Aggregate runs an aggregation pipeline and decodes the rows into results.
func (a *Adapter) Aggregate(ctx context.Context, collection string, pipeline []bson.M, results interface{}) error {
	opCtx, cancel := a.withOperationTimeout(ctx)
	defer cancel()

	cursor, err := a.Collection(collection).Aggregate(opCtx, pipeline)
	if err != nil {
		return mapError(err)
	}
	if err := cursor.All(opCtx, results); err != nil {
		return mapError(err)
	}
	return nil
}

func (a *Adapter) withOperationTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, a.timeout)
}

// mapError translates driver errors onto the storage taxonomy. Failures with
// no more specific kind surface as ErrUnavailable; the engine does not retry.
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return storage.ErrNoDocument
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %s", storage.ErrDuplicateKey, err)
	default:
		return fmt.Errorf("%w: %s", storage.ErrUnavailable, err)
	}
}
