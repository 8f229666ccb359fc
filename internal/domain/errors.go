package domain

import "errors"

var (
	ErrInvalidBelief    = errors.New("belief must be within [0, 1]")
	ErrSelfConnection   = errors.New("agent cannot connect to itself")
	ErrUnknownModelType = errors.New("unknown model type")
	ErrInvalidParams    = errors.New("invalid simulation parameters")
)
