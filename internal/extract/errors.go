package extract

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports a payload that could not be turned into records, either
// because it is malformed or because a required anchor is absent.
type ParseError struct {
	Format string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse %s: %s: %v", e.Format, e.Reason, e.Err)
	}
	return fmt.Sprintf("parse %s: %s", e.Format, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParse.
func (e *ParseError) Is(target error) bool { return target == ErrParse }
