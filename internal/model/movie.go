package model

import "time"

// Movie is a rated entity. Its rating is mutated only through the
// rated-entity repository's increment operation.
type Movie struct {
	ID        UUID      `bson:"_id" json:"id"`
	Title     string    `bson:"title" json:"title"`
	Rating    int       `bson:"rating" json:"rating"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// CreateMovie is the creation payload. The id may be supplied by the caller
// (movies originate in an external catalog); a zero id gets a fresh one.
type CreateMovie struct {
	ID     UUID   `bson:"_id" json:"id"`
	Title  string `bson:"title" json:"title"`
	Rating int    `bson:"rating" json:"rating"`
}

// UpdateMovie is the full-document update payload.
type UpdateMovie struct {
	Title  string `bson:"title" json:"title"`
	Rating int    `bson:"rating" json:"rating"`
}
