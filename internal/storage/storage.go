// Package storage defines the document store contract consumed by the
// repositories. Two implementations exist: the MongoDB adapter used in
// production and an in-memory store used by tests.
package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
)

// Store errors. Adapters map backend-specific failures onto these so the
// repositories can translate them without importing driver packages.
var (
	// ErrNoDocument is returned by FindOne when nothing matches the filter.
	ErrNoDocument = errors.New("document not found")
	// ErrDuplicateKey is returned when a write violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrUnavailable is returned when the store cannot be reached.
	ErrUnavailable = errors.New("store unavailable")
)

// SortOrder defines the direction of sorting.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort specifies a single-key sort. A zero Field means store-default order,
// which is not guaranteed stable across pages.
type Sort struct {
	Field string
	Order SortOrder
}

// UpdateResult reports the outcome of an UpdateOne call.
type UpdateResult struct {
	MatchedCount  int64
	ModifiedCount int64
	// UpsertedID holds the id of a document inserted by an upsert, or nil.
	UpsertedID interface{}
}

// Store is the document store contract. Every operation may block on network
// I/O; callers must not hold in-process locks across calls.
type Store interface {
	// InsertOne persists a new document.
	InsertOne(ctx context.Context, collection string, document interface{}) error

	// FindOne decodes the first document matching filter into result.
	// Returns ErrNoDocument when nothing matches.
	FindOne(ctx context.Context, collection string, filter bson.M, result interface{}) error

	// FindMany decodes an ordered page of matching documents into results,
	// which must be a pointer to a slice. An empty page is not an error.
	FindMany(ctx context.Context, collection string, filter bson.M, sort Sort, skip, limit int64, results interface{}) error

	// UpdateOne applies update to the first document matching filter.
	// With upsert enabled a missing document is inserted from the filter's
	// equality fields plus the update operators.
	UpdateOne(ctx context.Context, collection string, filter, update bson.M, upsert bool) (*UpdateResult, error)

	// DeleteOne removes the first document matching filter and reports how
	// many documents were removed (0 or 1).
	DeleteOne(ctx context.Context, collection string, filter bson.M) (int64, error)

	// Count returns the number of documents matching filter.
	Count(ctx context.Context, collection string, filter bson.M) (int64, error)

	// Aggregate runs an aggregation pipeline and decodes the resulting rows
	// into results, which must be a pointer to a slice.
	Aggregate(ctx context.Context, collection string, pipeline []bson.M, results interface{}) error
}
