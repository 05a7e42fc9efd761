package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh 24-character hex identifier. Both store backends use
// it so ids look the same regardless of where documents live.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether s has the shape of an identifier produced by NewID.
func IsValidID(s string) bool {
	_, err := primitive.ObjectIDFromHex(s)
	return err == nil
}
