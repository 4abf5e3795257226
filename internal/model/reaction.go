package model

import "time"

// ContentType identifies which rated-entity collection a reaction targets.
type ContentType string

const (
	ContentTypeMovie  ContentType = "movie"
	ContentTypeReview ContentType = "review"
)

// Valid reports whether the content type is one of the known variants.
func (c ContentType) Valid() bool {
	return c == ContentTypeMovie || c == ContentTypeReview
}

// ReactionValue is the signed weight a reaction contributes to a rating.
type ReactionValue int

const (
	Like    ReactionValue = 1
	Dislike ReactionValue = -1
)

// Valid reports whether the value is like or dislike.
func (v ReactionValue) Valid() bool {
	return v == Like || v == Dislike
}

// Reaction records one user's current sentiment toward one target.
// At most one reaction exists per (user_id, target_id, content_type).
type Reaction struct {
	ID          UUID          `bson:"_id" json:"id"`
	ContentType ContentType   `bson:"content_type" json:"content_type"`
	Value       ReactionValue `bson:"value" json:"value"`
	UserID      UUID          `bson:"user_id" json:"user_id"`
	TargetID    UUID          `bson:"target_id" json:"target_id"`
	CreatedAt   time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time     `bson:"updated_at" json:"updated_at"`
}

// CreateReaction is the payload for inserting a reaction directly.
type CreateReaction struct {
	ContentType ContentType   `bson:"content_type" json:"content_type"`
	Value       ReactionValue `bson:"value" json:"value"`
	UserID      UUID          `bson:"user_id" json:"user_id"`
	TargetID    UUID          `bson:"target_id" json:"target_id"`
}

// UpdateReaction is the payload for a full reaction update.
type UpdateReaction = CreateReaction
