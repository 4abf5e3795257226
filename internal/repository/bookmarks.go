package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/storage"
)

// BookmarkRepository owns the bookmarks collection.
type BookmarkRepository struct {
	*Repository[model.Bookmark, model.CreateBookmark, model.UpdateBookmark]
}

// NewBookmarkRepository creates the bookmark repository.
func NewBookmarkRepository(store storage.Store, log logger.Logger) *BookmarkRepository {
	return &BookmarkRepository{
		Repository: NewRepository[model.Bookmark, model.CreateBookmark, model.UpdateBookmark](store, CollectionBookmarks, newBookmark, log),
	}
}

// GetOrCreate returns the existing bookmark for (user_id, movie_id) or
// creates one. Uniqueness is enforced here rather than by an index.
func (r *BookmarkRepository) GetOrCreate(ctx context.Context, in model.CreateBookmark) (*model.Bookmark, error) {
	var existing model.Bookmark
	err := r.store.FindOne(ctx, r.collection, bson.M{"movie_id": in.MovieID, "user_id": in.UserID}, &existing)
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, storage.ErrNoDocument) {
		return nil, fmt.Errorf("get bookmark: %w", err)
	}
	return r.Create(ctx, in)
}

func newBookmark(in model.CreateBookmark) model.Bookmark {
	return model.Bookmark{
		ID:        model.NewUUID(),
		MovieID:   in.MovieID,
		UserID:    in.UserID,
		CreatedAt: time.Now().UTC(),
	}
}
