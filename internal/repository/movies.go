package repository

import (
	"time"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/storage"
)

// MovieRepository owns the movies collection.
type MovieRepository struct {
	*Rated[model.Movie, model.CreateMovie, model.UpdateMovie]
}

// NewMovieRepository creates the movie repository.
func NewMovieRepository(store storage.Store, log logger.Logger) *MovieRepository {
	return &MovieRepository{
		Rated: NewRated[model.Movie, model.CreateMovie, model.UpdateMovie](store, CollectionMovies, newMovie, log),
	}
}

func newMovie(in model.CreateMovie) model.Movie {
	id := in.ID
	if id.IsZero() {
		id = model.NewUUID()
	}
	return model.Movie{
		ID:        id,
		Title:     in.Title,
		Rating:    in.Rating,
		CreatedAt: time.Now().UTC(),
	}
}
