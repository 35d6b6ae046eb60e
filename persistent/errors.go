package persistent

import (
	"github.com/cockroachdb/errors"
)

// ErrUnsupportedMutation is returned from in-place mutation entry points of persistent
// collections. Clients should use the persistent API (Updated, Removed, …) instead.
var ErrUnsupportedMutation = errors.New("unsupported mutation")

// ErrIndexOutOfRange is returned from index-addressed operations for negative or
// out-of-bounds indices.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrKeyNotFound is returned if an identity key cannot be resolved.
var ErrKeyNotFound = errors.New("key not found")

// IndexOutOfRange creates an error wrapping ErrIndexOutOfRange.
func IndexOutOfRange(index, size int) error {
	return errors.Wrapf(ErrIndexOutOfRange, "index %d for size %d", index, size)
}

// KeyNotFound creates an error wrapping ErrKeyNotFound.
func KeyNotFound(key any) error {
	return errors.Wrapf(ErrKeyNotFound, "key %v", key)
}

// Unsupported creates an error wrapping ErrUnsupportedMutation for operation op.
func Unsupported(op string) error {
	return errors.Wrapf(ErrUnsupportedMutation, "%s", op)
}
