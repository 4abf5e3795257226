package model

import "time"

// Review is a user review of a movie and a rated entity of its own.
type Review struct {
	ID         UUID      `bson:"_id" json:"id"`
	MovieID    UUID      `bson:"movie_id" json:"movie_id"`
	UserID     UUID      `bson:"user_id" json:"user_id"`
	Title      string    `bson:"title" json:"title"`
	ReviewText string    `bson:"review_text" json:"review_text"`
	Rating     int       `bson:"rating" json:"rating"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// CreateReview is the creation payload. New reviews always start at rating 0.
type CreateReview struct {
	MovieID    UUID   `bson:"movie_id" json:"movie_id"`
	UserID     UUID   `bson:"user_id" json:"user_id"`
	Title      string `bson:"title" json:"title"`
	ReviewText string `bson:"review_text" json:"review_text"`
}

// UpdateReview is the full-document update payload.
type UpdateReview struct {
	MovieID    UUID   `bson:"movie_id" json:"movie_id"`
	UserID     UUID   `bson:"user_id" json:"user_id"`
	Title      string `bson:"title" json:"title"`
	ReviewText string `bson:"review_text" json:"review_text"`
}
