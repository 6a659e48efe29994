package oneshot

import "errors"

const Namespace = "oneshot"

var (
	// ErrCancelled reports that the sending endpoint was closed before it
	// delivered. It is the only error this package produces.
	ErrCancelled = errors.New(Namespace + ": cancelled")
)
