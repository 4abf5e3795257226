package model

import (
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// UUID identifies every persisted document. It is persisted as a BSON string
// so that filters and stored ids compare bytewise across drivers.
type UUID uuid.UUID

// NewUUID returns a fresh random identifier.
func NewUUID() UUID {
	return UUID(uuid.New())
}

// ParseUUID parses the canonical textual form of a UUID.
func ParseUUID(s string) (UUID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	return UUID(parsed), nil
}

func (u UUID) String() string {
	return uuid.UUID(u).String()
}

// IsZero reports whether the identifier is unset.
func (u UUID) IsZero() bool {
	return uuid.UUID(u) == uuid.Nil
}

// MarshalBSONValue encodes the identifier as a BSON string.
func (u UUID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(u.String())
}

// UnmarshalBSONValue decodes the identifier from a BSON string.
func (u *UUID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return fmt.Errorf("decode uuid: %w", err)
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid uuid %q: %w", s, err)
	}
	*u = UUID(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler for JSON responses.
func (u UUID) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for JSON requests.
func (u *UUID) UnmarshalText(data []byte) error {
	parsed, err := uuid.Parse(string(data))
	if err != nil {
		return err
	}
	*u = UUID(parsed)
	return nil
}
