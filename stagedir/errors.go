package stagedir

import "errors"

// Sentinel errors for package stagedir.
// These errors can be checked with errors.Is() for specific error handling.
var (
	// Stage config errors
	ErrConfigOrder = errors.New("section directive out of order")

	// Archive structure errors
	ErrCorruptHeader = errors.New("stage table size is not a multiple of 12")
	ErrCorruptEntry  = errors.New("corrupt stage entry record")

	// Dictionary errors
	ErrNameNotFound = errors.New("name code not found in dictionary")
)
