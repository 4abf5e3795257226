package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/storage"
)

// Rated composes the generic repository with the one operation rated
// entities need: an atomic rating increment. The rating field is never
// overwritten wholesale through this path.
type Rated[T, C, U any] struct {
	*Repository[T, C, U]
}

// NewRated creates a repository for a rated-entity collection.
func NewRated[T, C, U any](store storage.Store, collection string, fromCreate func(C) T, log logger.Logger) *Rated[T, C, U] {
	return &Rated[T, C, U]{
		Repository: NewRepository[T, C, U](store, collection, fromCreate, log),
	}
}

// IncrementRating applies a single-document atomic delta to the target's
// denormalized rating counter.
func (r *Rated[T, C, U]) IncrementRating(ctx context.Context, id model.UUID, delta int) error {
	result, err := r.store.UpdateOne(
		ctx,
		r.collection,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"rating": delta}},
		false,
	)
	if err != nil {
		return fmt.Errorf("increment rating %s: %w", r.collection, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s %s", ErrNotFound, r.collection, id)
	}
	r.logger.WithContext(ctx).Debug("rating incremented",
		"collection", r.collection, "id", id, "delta", delta)
	return nil
}
