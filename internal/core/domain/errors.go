package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrTemporary          = errors.New("temporary failure")
	// ErrExtraction means the PDF itself could not be read; retrying will
	// not help.
	ErrExtraction = errors.New("text extraction failed")
)

// kinds is the lookup order for KindOf. More specific kinds come first.
var kinds = []error{
	ErrInvalidInput,
	ErrUnauthorized,
	ErrSubmissionNotFound,
	ErrExtraction,
	ErrTemporary,
}

// WrapError tags err with a kind and the failing operation:
// "<operation>: <kind>: <err>".
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// KindOf returns the first known kind err carries, or nil.
func KindOf(err error) error {
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
