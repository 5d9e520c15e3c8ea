package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrInvalidInput marks caller mistakes: missing fields, malformed ids or dates.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks lookups of records that do not exist.
	ErrNotFound = errors.New("not found")
)

// NewID returns a fresh record identifier.
func NewID() string { return primitive.NewObjectID().Hex() }

// ValidID reports whether id has the shape of a record identifier.
func ValidID(id string) bool { return primitive.IsValidObjectID(id) }

// Now returns the current time at the precision the stores keep.
func Now() time.Time { return time.Now().UTC().Truncate(time.Millisecond) }
