package repository

import "errors"

var (
	// ErrInvalidRef indicates a ref no store can address
	ErrInvalidRef = errors.New("invalid image reference")

	// ErrReadOnlyRef indicates an attempt to write to an http(s) ref
	ErrReadOnlyRef = errors.New("image reference is read-only")

	// ErrStoreUnavailable indicates the ref needs a store that is not configured
	ErrStoreUnavailable = errors.New("image store unavailable")
)
