package service

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/repository"
)

// Statistics is the read model for one target. Zero counts are a valid
// result, not an error.
type Statistics struct {
	LikesCount     int64 `json:"likes_count"`
	DislikesCount  int64 `json:"dislikes_count"`
	ReactionsCount int64 `json:"reactions_count"`
	BookmarksCount int64 `json:"bookmarks_count"`
	ReviewsCount   int64 `json:"reviews_count"`
}

// StatisticsService computes presentation-only counters for a target. The
// reads are independent and run concurrently; if any sub-read fails the
// whole aggregation fails, never a partial result.
type StatisticsService struct {
	reactions *repository.ReactionRepository
	bookmarks *repository.BookmarkRepository
	reviews   *repository.ReviewRepository
}

// NewStatisticsService creates the statistics service.
func NewStatisticsService(
	reactions *repository.ReactionRepository,
	bookmarks *repository.BookmarkRepository,
	reviews *repository.ReviewRepository,
) *StatisticsService {
	return &StatisticsService{
		reactions: reactions,
		bookmarks: bookmarks,
		reviews:   reviews,
	}
}

// ForTarget gathers like/dislike/total reaction counts for any target, plus
// bookmark and review counts when the target is a movie.
func (s *StatisticsService) ForTarget(ctx context.Context, targetID model.UUID, contentType model.ContentType) (*Statistics, error) {
	var stats Statistics

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.reactions.CountByTarget(ctx, targetID, contentType)
		if err != nil {
			return err
		}
		stats.LikesCount = counts.Likes
		stats.DislikesCount = counts.Dislikes
		stats.ReactionsCount = counts.Total
		return nil
	})
	if contentType == model.ContentTypeMovie {
		g.Go(func() error {
			count, err := s.bookmarks.Count(ctx, repository.Eq("movie_id", targetID))
			if err != nil {
				return err
			}
			stats.BookmarksCount = count
			return nil
		})
		g.Go(func() error {
			count, err := s.reviews.Count(ctx, repository.Eq("movie_id", targetID))
			if err != nil {
				return err
			}
			stats.ReviewsCount = count
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
