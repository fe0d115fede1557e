package compliance

import "errors"

var (
	ErrInvalidKind  = errors.New("invalid compliance event kind")
	ErrInvalidRange = errors.New("invalid report range")
)
