package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/repository"
	"github.com/gryroach/ugc-service/internal/storage"
	"github.com/gryroach/ugc-service/internal/storage/memstore"
)

type fixture struct {
	store     *memstore.Store
	movies    *repository.MovieRepository
	reviews   *repository.ReviewRepository
	reactions *repository.ReactionRepository
	service   *ReactionService
}

func newFixture() *fixture {
	store := memstore.New()
	store.EnsureUniqueIndex(repository.CollectionReactions, "user_id", "target_id", "content_type")

	log := logger.NewNop()
	movies := repository.NewMovieRepository(store, log)
	reviews := repository.NewReviewRepository(store, log)
	reactions := repository.NewReactionRepository(store, log)
	return &fixture{
		store:     store,
		movies:    movies,
		reviews:   reviews,
		reactions: reactions,
		service:   NewReactionService(reactions, movies, reviews, log),
	}
}

func (f *fixture) createMovie(t *testing.T) model.UUID {
	t.Helper()
	movie, err := f.movies.Create(context.Background(), model.CreateMovie{Title: "m"})
	if err != nil {
		t.Fatalf("create movie: %v", err)
	}
	return movie.ID
}

func (f *fixture) rating(t *testing.T, id model.UUID) int {
	t.Helper()
	movie, err := f.movies.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get movie: %v", err)
	}
	return movie.Rating
}

func TestReactionService_EvaluateIdempotence(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	movieID := f.createMovie(t)
	user := model.NewUUID()

	// Repeating the same verdict applies the delta exactly once.
	for i := 0; i < 2; i++ {
		if err := f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Like); err != nil {
			t.Fatalf("Evaluate #%d failed: %v", i+1, err)
		}
	}
	if got := f.rating(t, movieID); got != 1 {
		t.Errorf("expected rating 1 after repeated like, got %d", got)
	}
}

func TestReactionService_FlipAppliesExactCorrection(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	movieID := f.createMovie(t)
	user := model.NewUUID()

	if err := f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Like); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if err := f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Dislike); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	// +1 from the like, -2 from the flip.
	if got := f.rating(t, movieID); got != -1 {
		t.Errorf("expected rating -1 after flip, got %d", got)
	}
}

func TestReactionService_WithdrawRollsBack(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	movieID := f.createMovie(t)
	user := model.NewUUID()

	if err := f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Dislike); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if err := f.service.Withdraw(ctx, movieID, model.ContentTypeMovie, user); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if got := f.rating(t, movieID); got != 0 {
		t.Errorf("expected rating 0 after withdrawal, got %d", got)
	}

	// Withdrawing again is a no-op.
	if err := f.service.Withdraw(ctx, movieID, model.ContentTypeMovie, user); err != nil {
		t.Fatalf("second Withdraw failed: %v", err)
	}
	if got := f.rating(t, movieID); got != 0 {
		t.Errorf("expected rating 0 after second withdrawal, got %d", got)
	}
}

func TestReactionService_Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	movieID := f.createMovie(t)
	userA := model.NewUUID()
	userB := model.NewUUID()

	steps := []struct {
		name string
		run  func() error
		want int
	}{
		{"A likes", func() error { return f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, userA, model.Like) }, 1},
		{"B dislikes", func() error { return f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, userB, model.Dislike) }, 0},
		{"A flips to dislike", func() error { return f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, userA, model.Dislike) }, -2},
		{"B withdraws", func() error { return f.service.Withdraw(ctx, movieID, model.ContentTypeMovie, userB) }, -1},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			t.Fatalf("%s failed: %v", step.name, err)
		}
		if got := f.rating(t, movieID); got != step.want {
			t.Fatalf("%s: expected rating %d, got %d", step.name, step.want, got)
		}
	}

	counts, err := f.reactions.CountByTarget(ctx, movieID, model.ContentTypeMovie)
	if err != nil {
		t.Fatalf("CountByTarget failed: %v", err)
	}
	if counts.Likes != 0 || counts.Dislikes != 1 {
		t.Errorf("expected final state {0 likes, 1 dislike}, got %+v", counts)
	}
}

func TestReactionService_ReviewTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	movieID := f.createMovie(t)
	review, err := f.reviews.Create(ctx, model.CreateReview{MovieID: movieID, UserID: model.NewUUID(), Title: "t"})
	if err != nil {
		t.Fatalf("create review: %v", err)
	}

	if err := f.service.Evaluate(ctx, review.ID, model.ContentTypeReview, model.NewUUID(), model.Like); err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	got, err := f.reviews.Get(ctx, review.ID)
	if err != nil {
		t.Fatalf("get review: %v", err)
	}
	if got.Rating != 1 {
		t.Errorf("expected review rating 1, got %d", got.Rating)
	}
}

func TestReactionService_MissingTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	err := f.service.Evaluate(ctx, model.NewUUID(), model.ContentTypeMovie, model.NewUUID(), model.Like)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReactionService_UnsupportedContentType(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	err := f.service.Evaluate(ctx, model.NewUUID(), "actor", model.NewUUID(), model.Like)
	if !errors.Is(err, ErrUnsupportedContentType) {
		t.Fatalf("expected ErrUnsupportedContentType, got %v", err)
	}
}

// flakyStore fails UpdateOne for one collection, leaving every other
// operation to the wrapped store.
type flakyStore struct {
	storage.Store
	failCollection string
}

func (s *flakyStore) UpdateOne(ctx context.Context, collection string, filter, update bson.M, upsert bool) (*storage.UpdateResult, error) {
	if collection == s.failCollection {
		return nil, storage.ErrUnavailable
	}
	return s.Store.UpdateOne(ctx, collection, filter, update, upsert)
}

// The upsert and the counter increment are separate store operations. When
// the increment is lost the reaction is still recorded and the counter stays
// stale; nothing reconciles it. This test pins that divergence down as the
// documented cost of forgoing transactions.
func TestReactionService_LostIncrementLeavesCounterStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	movieID := f.createMovie(t)
	user := model.NewUUID()

	log := logger.NewNop()
	flaky := &flakyStore{Store: f.store, failCollection: repository.CollectionMovies}
	brokenMovies := repository.NewMovieRepository(flaky, log)
	broken := NewReactionService(f.reactions, brokenMovies, f.reviews, log)

	err := broken.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Like)
	if !errors.Is(err, storage.ErrUnavailable) {
		t.Fatalf("expected the lost increment to surface, got %v", err)
	}

	counts, err := f.reactions.CountByTarget(ctx, movieID, model.ContentTypeMovie)
	if err != nil {
		t.Fatalf("CountByTarget failed: %v", err)
	}
	if counts.Likes != 1 {
		t.Fatalf("expected the reaction to be recorded, got %+v", counts)
	}
	if got := f.rating(t, movieID); got != 0 {
		t.Fatalf("expected the counter to miss the lost delta, got %d", got)
	}
	// rating != likes - dislikes: the divergence is observable and permanent.
	if int64(f.rating(t, movieID)) == counts.Likes-counts.Dislikes {
		t.Errorf("expected counter divergence after a lost increment")
	}
}

// **Validates: rating == likes - dislikes after any sequential history.**
//
// Every delta is derived from the transition the conditional upsert reports,
// so the counter must track the recorded reactions exactly, whatever the
// order of likes, dislikes and withdrawals.
func TestProperty_RatingTracksReactions(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("counter equals net reaction state", prop.ForAll(
		func(ops []int) bool {
			ctx := context.Background()
			f := newFixture()
			movieID := f.createMovie(t)
			users := []model.UUID{model.NewUUID(), model.NewUUID(), model.NewUUID()}

			for _, op := range ops {
				user := users[op/3%len(users)]
				var err error
				switch op % 3 {
				case 0:
					err = f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Like)
				case 1:
					err = f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Dislike)
				case 2:
					err = f.service.Withdraw(ctx, movieID, model.ContentTypeMovie, user)
				}
				if err != nil {
					t.Logf("operation %d failed: %v", op, err)
					return false
				}
			}

			counts, err := f.reactions.CountByTarget(ctx, movieID, model.ContentTypeMovie)
			if err != nil {
				t.Logf("CountByTarget failed: %v", err)
				return false
			}
			return int64(f.rating(t, movieID)) == counts.Likes-counts.Dislikes
		},
		gen.SliceOf(gen.IntRange(0, 8)),
	))

	properties.TestingRun(t)
}

// Concurrent verdicts on one target from many users. Upsert signals are
// atomic per transition and increments commute, so the counter must match
// the recorded reactions once every call has returned.
func TestReactionService_ConcurrentEvaluations(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	movieID := f.createMovie(t)

	const users = 8
	const opsPerUser = 10

	errs := make(chan error, users*opsPerUser)
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		user := model.NewUUID()
		wg.Add(1)
		go func(seed int) {
			defer wg.Done()
			for i := 0; i < opsPerUser; i++ {
				var err error
				switch (seed + i) % 3 {
				case 0:
					err = f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Like)
				case 1:
					err = f.service.Evaluate(ctx, movieID, model.ContentTypeMovie, user, model.Dislike)
				case 2:
					err = f.service.Withdraw(ctx, movieID, model.ContentTypeMovie, user)
				}
				if err != nil {
					errs <- err
				}
			}
		}(u)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent operation failed: %v", err)
	}

	counts, err := f.reactions.CountByTarget(ctx, movieID, model.ContentTypeMovie)
	if err != nil {
		t.Fatalf("CountByTarget failed: %v", err)
	}
	if got := int64(f.rating(t, movieID)); got != counts.Likes-counts.Dislikes {
		t.Errorf("counter drifted: rating %d, likes %d, dislikes %d", got, counts.Likes, counts.Dislikes)
	}
}
