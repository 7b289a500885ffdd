package command

import (
	"errors"
	"fmt"
)

// unbounded marks an ArgSpec with no upper limit on argument count.
const unbounded = -1

// ArgSpec declares how many arguments a command accepts. Min == Max is an exact
// count; Max == unbounded accepts any count at or above Min.
type ArgSpec struct {
	Min int
	Max int
}

// Exactly accepts exactly n arguments.
func Exactly(n int) ArgSpec { return ArgSpec{Min: n, Max: n} }

// Between accepts any count in the inclusive range [min, max].
func Between(min, max int) ArgSpec { return ArgSpec{Min: min, Max: max} }

// AtLeast accepts n or more arguments.
func AtLeast(n int) ArgSpec { return ArgSpec{Min: n, Max: unbounded} }

// Validate reports whether the spec itself is well-formed. An empty accepted
// set is a configuration error and is rejected at registration time.
func (s ArgSpec) Validate() error {
	if s.Min < 0 {
		return errors.New("argument minimum must be non-negative")
	}
	if s.Max != unbounded && s.Max < s.Min {
		return errors.New("argument range accepts no counts")
	}
	return nil
}

// Check compares a command's argument count against the spec, returning a
// human-readable expected-vs-actual error on mismatch.
func (s ArgSpec) Check(cmd Command) error {
	got := len(cmd.Args)
	if got >= s.Min && (s.Max == unbounded || got <= s.Max) {
		return nil
	}
	return fmt.Errorf("expected %s, got %d", s.describe(), got)
}

func (s ArgSpec) describe() string {
	switch {
	case s.Max == unbounded:
		return fmt.Sprintf("at least %s", plural(s.Min))
	case s.Min == s.Max:
		return plural(s.Min)
	default:
		return fmt.Sprintf("between %d and %d arguments", s.Min, s.Max)
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return fmt.Sprintf("%d arguments", n)
}
