// Package service orchestrates the repositories: reaction transitions with
// their rating deltas, and the read-only statistics fan-out.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/gryroach/ugc-service/internal/model"
	"github.com/gryroach/ugc-service/internal/observability/logger"
	"github.com/gryroach/ugc-service/internal/repository"
)

// ErrUnsupportedContentType is returned for content types outside the known
// variants.
var ErrUnsupportedContentType = errors.New("unsupported content type")

// ratedTarget is the slice of a rated-entity repository the reaction flow
// needs: existence checks and atomic rating increments.
type ratedTarget interface {
	Exists(ctx context.Context, id model.UUID) error
	IncrementRating(ctx context.Context, id model.UUID, delta int) error
}

// ReactionService applies a reaction transition and the corresponding
// counter delta as one logical (not transactional) operation. The counter
// stays correct through single-document atomic increments: the delta is
// derived from the transition the upsert reports, never from a recomputation
// scan.
//
// Known hazard: the upsert and the increment are two store operations, not
// one. A failure between them leaves the counter stale relative to the
// recorded reactions, and nothing reconciles it afterwards. The property
// tests pin down both sides: no drift under concurrent interleavings, and
// the observable divergence when the increment is lost.
type ReactionService struct {
	reactions *repository.ReactionRepository
	movies    *repository.MovieRepository
	reviews   *repository.ReviewRepository
	logger    logger.Logger
}

// NewReactionService creates the reaction service.
func NewReactionService(
	reactions *repository.ReactionRepository,
	movies *repository.MovieRepository,
	reviews *repository.ReviewRepository,
	log logger.Logger,
) *ReactionService {
	return &ReactionService{
		reactions: reactions,
		movies:    movies,
		reviews:   reviews,
		logger:    log,
	}
}

// Evaluate records the user's reaction to the target and applies the exact
// rating delta implied by the transition: +value on a new reaction,
// 2*value on a flip (the net correction from -value to +value), nothing on
// an idempotent repeat.
func (s *ReactionService) Evaluate(ctx context.Context, targetID model.UUID, contentType model.ContentType, userID model.UUID, value model.ReactionValue) error {
	target, err := s.target(contentType)
	if err != nil {
		return err
	}
	if err := target.Exists(ctx, targetID); err != nil {
		return err
	}

	created, updated, err := s.reactions.Upsert(ctx, targetID, contentType, userID, value)
	if err != nil {
		return err
	}

	var delta int
	switch {
	case created:
		delta = int(value)
	case updated:
		delta = 2 * int(value)
	default:
		return nil
	}

	s.logger.WithContext(ctx).Debug("reaction applied",
		"target_id", targetID, "content_type", contentType, "delta", delta)
	return target.IncrementRating(ctx, targetID, delta)
}

// Withdraw removes the user's reaction and rolls the target's rating back
// by the value the reaction held. Withdrawing an absent reaction is a
// no-op.
func (s *ReactionService) Withdraw(ctx context.Context, targetID model.UUID, contentType model.ContentType, userID model.UUID) error {
	target, err := s.target(contentType)
	if err != nil {
		return err
	}
	if err := target.Exists(ctx, targetID); err != nil {
		return err
	}

	prior, err := s.reactions.RemoveValue(ctx, targetID, contentType, userID)
	if err != nil {
		return err
	}
	if prior == 0 {
		return nil
	}

	s.logger.WithContext(ctx).Debug("reaction withdrawn",
		"target_id", targetID, "content_type", contentType, "prior", prior)
	return target.IncrementRating(ctx, targetID, -int(prior))
}

func (s *ReactionService) target(contentType model.ContentType) (ratedTarget, error) {
	switch contentType {
	case model.ContentTypeMovie:
		return s.movies, nil
	case model.ContentTypeReview:
		return s.reviews, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
}
