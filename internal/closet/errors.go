package closet

import (
	"errors"
	"slices"
	"strings"
)

var (
	// ErrNotFound is returned when an item does not exist or belongs to another user.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidItem is returned when a new item fails validation.
	ErrInvalidItem = errors.New("invalid item")
	// ErrFetchFailed is returned when the closet could not be read. Callers
	// should show it distinctly from an empty closet.
	ErrFetchFailed = errors.New("could not load items")
	// ErrSuperseded is returned by Loader when a newer load was issued.
	ErrSuperseded = errors.New("superseded by a newer load")
)

// ValidationError lists the offending fields of a rejected item.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid item: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidItem
}
