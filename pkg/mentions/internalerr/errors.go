package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound                 = errors.New("not found")
	ErrInvalidInput             = errors.New("invalid input")
	ErrInvalidConfig            = errors.New("invalid configuration")
	ErrStoreUnavailable         = errors.New("store unavailable")
	ErrDictionaryLoad           = errors.New("dictionary load failed")
	ErrMalformedText            = errors.New("malformed text")
	ErrInconsistentSegmentation = errors.New("segmented phrase missing from dictionary")
	ErrScorer                   = errors.New("scorer failed")
)
