package domain

import (
	"context"
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Result is the outcome of a gated execution. On a replay Value is nil and
// Stored carries the serialized response from the first execution; callers
// hand Stored back to the client verbatim.
type Result struct {
	Replayed bool
	Stored   datatypes.JSON
	Value    any
}

// Gate wraps a mutating operation so that re-sending the same key returns
// the stored first result instead of executing again.
type Gate interface {
	// Execute runs fn inside a transaction and stores its result under key.
	// A reused key with a matching fingerprint short-circuits to the stored
	// result without calling fn; a reused key with a different fingerprint
	// fails with ErrKeyConflict. fn receives the transaction handle and must
	// do all of its writes through it.
	Execute(ctx context.Context, key, fingerprint string, fn func(tx *gorm.DB) (any, error)) (*Result, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidKey          = errors.New("invalid_idempotency_key")
	// ErrKeyConflict means the key was already used with a different payload.
	ErrKeyConflict = errors.New("idempotency_key_conflict")
	// ErrConcurrentKeyUse means two requests raced on the same key's first
	// use; the loser should be retried by the client.
	ErrConcurrentKeyUse = errors.New("idempotency_key_concurrent_use")
)
