package repositories

import (
	stderrors "errors"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = stderrors.New("record not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = stderrors.New("duplicate record")
)

// wrapErr maps driver errors onto the package sentinels and adds context.
func wrapErr(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	switch {
	case stderrors.Is(err, gorm.ErrRecordNotFound):
		return errors.Wrapf(ErrNotFound, format, args...)
	case stderrors.Is(err, gorm.ErrDuplicatedKey):
		return errors.Wrapf(ErrDuplicate, format, args...)
	}
	return errors.Wrapf(err, format, args...)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return stderrors.Is(err, ErrNotFound)
}

// IsDuplicate reports whether err wraps ErrDuplicate.
func IsDuplicate(err error) bool {
	return stderrors.Is(err, ErrDuplicate)
}

// CatalogFilter narrows storefront and catalog listings. Zero values mean no filter.
type CatalogFilter struct {
	Category   string
	BusinessID *uint
}
