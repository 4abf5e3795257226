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

// ReactionRepository owns the reactions collection and the upsert/removal
// state machine over the (user_id, target_id, content_type) natural key.
type ReactionRepository struct {
	*Repository[model.Reaction, model.CreateReaction, model.UpdateReaction]
}

// ReactionCounts aggregates like/dislike/total counts for one target.
type ReactionCounts struct {
	Likes    int64 `bson:"likes"`
	Dislikes int64 `bson:"dislikes"`
	Total    int64 `bson:"total"`
}

// NewReactionRepository creates the reaction repository.
func NewReactionRepository(store storage.Store, log logger.Logger) *ReactionRepository {
	return &ReactionRepository{
		Repository: NewRepository[model.Reaction, model.CreateReaction, model.UpdateReaction](store, CollectionReactions, newReaction, log),
	}
}

func newReaction(in model.CreateReaction) model.Reaction {
	now := time.Now().UTC()
	return model.Reaction{
		ID:          model.NewUUID(),
		ContentType: in.ContentType,
		Value:       in.Value,
		UserID:      in.UserID,
		TargetID:    in.TargetID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Upsert moves the natural key to the requested value with a single
// conditional upsert rather than a read-then-write pair, narrowing the race
// window under concurrent calls for the same key.
//
// State transitions and their signals:
//
//	absent -> liked/disliked:  insert, (created=true, updated=false)
//	same value requested:      no write, (created=false, updated=false)
//	liked <-> disliked:        in-place flip, (created=false, updated=true)
//
// The filter excludes documents already holding the requested value, so a
// same-value request falls through to the upsert insert and trips the unique
// index on the natural key; that duplicate-key outcome is the idempotent
// no-op, not an error. A flip preserves the reaction's id and created_at.
func (r *ReactionRepository) Upsert(ctx context.Context, targetID model.UUID, contentType model.ContentType, userID model.UUID, value model.ReactionValue) (created, updated bool, err error) {
	now := time.Now().UTC()
	filter := bson.M{
		"content_type": contentType,
		"target_id":    targetID,
		"user_id":      userID,
		"value":        bson.M{"$ne": value},
	}
	update := bson.M{
		"$set": bson.M{
			"value":      value,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":        model.NewUUID(),
			"created_at": now,
		},
	}

	result, err := r.store.UpdateOne(ctx, r.collection, filter, update, true)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return false, false, nil
		}
		return false, false, fmt.Errorf("upsert reaction: %w", err)
	}
	return result.UpsertedID != nil, result.ModifiedCount > 0, nil
}

// RemoveValue deletes the reaction held by the natural key and returns the
// value it held immediately before deletion. A key that was already absent
// yields 0, signaling a no-op to the caller.
func (r *ReactionRepository) RemoveValue(ctx context.Context, targetID model.UUID, contentType model.ContentType, userID model.UUID) (model.ReactionValue, error) {
	naturalKey := bson.M{
		"content_type": contentType,
		"target_id":    targetID,
		"user_id":      userID,
	}

	var reaction model.Reaction
	if err := r.store.FindOne(ctx, r.collection, naturalKey, &reaction); err != nil {
		if errors.Is(err, storage.ErrNoDocument) {
			return 0, nil
		}
		return 0, fmt.Errorf("find reaction: %w", err)
	}

	// Pin the delete to the value just read so a concurrent flip cannot be
	// reverted with the stale delta.
	deleted, err := r.store.DeleteOne(ctx, r.collection, bson.M{"_id": reaction.ID, "value": reaction.Value})
	if err != nil {
		return 0, fmt.Errorf("delete reaction: %w", err)
	}
	if deleted == 0 {
		return 0, nil
	}
	return reaction.Value, nil
}

// CountByTarget computes like/dislike/total counts for one target with a
// single grouping aggregation. A target with no reactions yields zeros.
func (r *ReactionRepository) CountByTarget(ctx context.Context, targetID model.UUID, contentType model.ContentType) (*ReactionCounts, error) {
	pipeline := []bson.M{
		{"$match": bson.M{
			"target_id":    targetID,
			"content_type": contentType,
		}},
		{"$group": bson.M{
			"_id": nil,
			"likes": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$value", model.Like}}, 1, 0},
			}},
			"dislikes": bson.M{"$sum": bson.M{
				"$cond": bson.A{bson.M{"$eq": bson.A{"$value", model.Dislike}}, 1, 0},
			}},
			"total": bson.M{"$sum": 1},
		}},
	}

	rows := []ReactionCounts{}
	if err := r.store.Aggregate(ctx, r.collection, pipeline, &rows); err != nil {
		return nil, fmt.Errorf("aggregate reactions: %w", err)
	}
	if len(rows) == 0 {
		return &ReactionCounts{}, nil
	}
	return &rows[0], nil
}
