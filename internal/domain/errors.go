package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNoItemsSelected     = errors.New("no items selected")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotCancellable = errors.New("only pending orders can be cancelled")
	ErrProductNotFound     = errors.New("bread not found")
	ErrCartEntryNotFound   = errors.New("cart item not found")
	// ErrProductUnavailable rejects a checkout whose bread was removed after
	// the cart was loaded.
	ErrProductUnavailable = errors.New("bread no longer available")
)

type InsufficientStockError struct {
	ProductID int64
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s. Available: %d", e.Product, e.Available)
}

// ValidationError maps request fields to a description of what is wrong with them.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
