package model

import "time"

// Bookmark links a user to a movie. Uniqueness per (user_id, movie_id) is
// enforced at the repository level via get-or-create.
type Bookmark struct {
	ID        UUID      `bson:"_id" json:"id"`
	MovieID   UUID      `bson:"movie_id" json:"movie_id"`
	UserID    UUID      `bson:"user_id" json:"user_id"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CreateBookmark is the creation payload.
type CreateBookmark struct {
	MovieID UUID `bson:"movie_id" json:"movie_id"`
	UserID  UUID `bson:"user_id" json:"user_id"`
}

// UpdateBookmark is the full-document update payload.
type UpdateBookmark = CreateBookmark
