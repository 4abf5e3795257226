package repository

import (
	"time"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/storage"
)

// ReviewRepository owns the reviews collection.
type ReviewRepository struct {
	*Rated[model.Review, model.CreateReview, model.UpdateReview]
}

// NewReviewRepository creates the review repository.
func NewReviewRepository(store storage.Store, log logger.Logger) *ReviewRepository {
	return &ReviewRepository{
		Rated: NewRated[model.Review, model.CreateReview, model.UpdateReview](store, CollectionReviews, newReview, log),
	}
}

// newReview builds a review document. Reviews always start at rating 0.
func newReview(in model.CreateReview) model.Review {
	return model.Review{
		ID:         model.NewUUID(),
		MovieID:    in.MovieID,
		UserID:     in.UserID,
		Title:      in.Title,
		ReviewText: in.ReviewText,
		Rating:     0,
		CreatedAt:  time.Now().UTC(),
	}
}
