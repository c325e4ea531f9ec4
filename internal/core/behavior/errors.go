package behavior

import "errors"

// Construction errors. Trees are validated when built; ticking never fails.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidChildCount    = errors.New("invalid child count")
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Registry errors

	ErrNodeNotFound      = errors.New("node not registered")
	ErrNodeAlreadyExists = errors.New("node already registered")
)
