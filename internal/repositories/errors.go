package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate indicates a unique-constraint violation, e.g. a dedup
// record that already exists for a (business, provider message id) pair.
var ErrDuplicate = errors.New("duplicate")

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// isUniqueViolation matches both GORM's translated error and the
// plain-text UNIQUE errors glebarez/sqlite returns in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key value")
}
