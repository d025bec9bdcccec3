package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether err (possibly wrapped) is the storage
// layer's missing-record error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
