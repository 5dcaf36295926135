package utils

import (
	"strings"

	"github.com/google/uuid"
)

// UserIDPrefix prefixes every identifier assigned to a user record.
const UserIDPrefix = "usr"

// GenerateID generates a unique ID with the given prefix, e.g. "usr-<uuid v7>".
// Version 7 UUIDs sort by creation time, so store keys keep insertion order.
func GenerateID(prefix string) string {
	return prefix + "-" + uuid.Must(uuid.NewV7()).String()
}

// ValidateUserID reports whether id has the shape produced by GenerateID(UserIDPrefix).
func ValidateUserID(id string) bool {
	rest, ok := strings.CutPrefix(id, UserIDPrefix+"-")
	if !ok {
		return false
	}
	_, err := uuid.Parse(rest)
	return err == nil
}
