// Package repository provides CRUD and paginated listing over the UGC
// document collections, plus the reaction upsert/removal state machine.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/storage"
)

// Persisted collections. Each document is keyed by its own id; reactions
// additionally carry a unique index on (user_id, target_id, content_type).
const (
	CollectionMovies    = "movies"
	CollectionReviews   = "reviews"
	CollectionBookmarks = "bookmarks"
	CollectionReactions = "reactions"
)

// Repository provides generic CRUD operations over one document collection.
// T is the document type, C the create payload and U the update payload.
type Repository[T, C, U any] struct {
	store      storage.Store
	collection string
	fromCreate func(C) T
	logger     logger.Logger
}

// NewRepository creates a generic repository. fromCreate builds a document
// from a create payload and is responsible for assigning a fresh id.
func NewRepository[T, C, U any](store storage.Store, collection string, fromCreate func(C) T, log logger.Logger) *Repository[T, C, U] {
	return &Repository[T, C, U]{
		store:      store,
		collection: collection,
		fromCreate: fromCreate,
		logger:     log,
	}
}

// Create persists a new document built from payload and returns it.
func (r *Repository[T, C, U]) Create(ctx context.Context, payload C) (*T, error) {
	document := r.fromCreate(payload)
	if err := r.store.InsertOne(ctx, r.collection, &document); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, r.collection)
		}
		return nil, fmt.Errorf("create %s: %w", r.collection, err)
	}
	r.logger.WithContext(ctx).Debug("document created", "collection", r.collection)
	return &document, nil
}

// Get returns the document with the given id that also satisfies the extra
// filters. Owner-scoped lookups pass an equality filter on the owner field;
// a wrong owner and a missing document are deliberately indistinguishable.
func (r *Repository[T, C, U]) Get(ctx context.Context, id model.UUID, filters ...Filter) (*T, error) {
	query, err := BuildQuery(filters)
	if err != nil {
		return nil, err
	}
	query["_id"] = id

	var document T
	if err := r.store.FindOne(ctx, r.collection, query, &document); err != nil {
		if errors.Is(err, storage.ErrNoDocument) {
			return nil, fmt.Errorf("%w: %s %s", ErrNotFound, r.collection, id)
		}
		return nil, fmt.Errorf("get %s: %w", r.collection, err)
	}
	return &document, nil
}

// Exists reports whether the document with the given id exists.
func (r *Repository[T, C, U]) Exists(ctx context.Context, id model.UUID) error {
	_, err := r.Get(ctx, id)
	return err
}

// Update applies a full-document update to an already-fetched record and
// returns the stored result.
func (r *Repository[T, C, U]) Update(ctx context.Context, id model.UUID, payload U, filters ...Filter) (*T, error) {
	if _, err := r.Get(ctx, id, filters...); err != nil {
		return nil, err
	}
	patch, err := toDocument(payload)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", r.collection, err)
	}
	if _, err := r.store.UpdateOne(ctx, r.collection, bson.M{"_id": id}, bson.M{"$set": patch}, false); err != nil {
		return nil, fmt.Errorf("update %s: %w", r.collection, err)
	}
	return r.Get(ctx, id)
}

// Delete removes the document with the given id, honoring the same scoping
// rule as Get.
func (r *Repository[T, C, U]) Delete(ctx context.Context, id model.UUID, filters ...Filter) error {
	if _, err := r.Get(ctx, id, filters...); err != nil {
		return err
	}
	if _, err := r.store.DeleteOne(ctx, r.collection, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("delete %s: %w", r.collection, err)
	}
	r.logger.WithContext(ctx).Debug("document deleted", "collection", r.collection, "id", id)
	return nil
}

// List returns an ordered page of documents satisfying the filters. A
// non-positive limit yields an empty page, never the whole collection; a
// skip past the end yields an empty page, not an error. Without a sort
// field the store-default order applies and is not stable across pages.
func (r *Repository[T, C, U]) List(ctx context.Context, skip, limit int64, sort storage.Sort, filters ...Filter) ([]T, error) {
	documents := []T{}
	if limit <= 0 {
		return documents, nil
	}
	if skip < 0 {
		skip = 0
	}
	query, err := BuildQuery(filters)
	if err != nil {
		return nil, err
	}
	if err := r.store.FindMany(ctx, r.collection, query, sort, skip, limit, &documents); err != nil {
		return nil, fmt.Errorf("list %s: %w", r.collection, err)
	}
	return documents, nil
}

// Count returns the number of documents satisfying the filters.
func (r *Repository[T, C, U]) Count(ctx context.Context, filters ...Filter) (int64, error) {
	query, err := BuildQuery(filters)
	if err != nil {
		return 0, err
	}
	count, err := r.store.Count(ctx, r.collection, query)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.collection, err)
	}
	return count, nil
}

// toDocument converts a payload struct into a BSON document for $set.
func toDocument(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}
