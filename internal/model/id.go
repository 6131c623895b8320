package model

import (
	"strings"

	"finance_tracker/internal/apperr"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var ErrInvalidIdentifier = apperr.New(apperr.KindValidation, "invalid_identifier", "Invalid ID format")

// NewID returns a fresh identifier. Both storage drivers use ObjectID hex
// strings so ids stay portable between them.
func NewID() string {
	return bson.NewObjectID().Hex()
}

// ParseID normalizes and validates an identifier received from a client.
func ParseID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	oid, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return "", ErrInvalidIdentifier
	}
	return oid.Hex(), nil
}
