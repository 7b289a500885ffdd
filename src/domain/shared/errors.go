package shared

import "errors"

// Cross-aggregate error categories. Domain packages wrap these in their own
// sentinels so boundaries can match on either the specific error or the class.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
)
