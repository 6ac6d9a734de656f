package config

import (
	"errors"
	"fmt"
	"strconv"
)

// Kind classifies a resolution failure.
type Kind int

const (
	KindMissingRequired Kind = iota + 1
	KindMalformed
	KindOutOfRange
)

var (
	ErrMissingRequired = errors.New("missing required key")
	ErrMalformed       = errors.New("malformed value")
	ErrOutOfRange      = errors.New("value out of range")
)

func (k Kind) String() string {
	switch k {
	case KindMissingRequired:
		return "missing"
	case KindMalformed:
		return "malformed"
	case KindOutOfRange:
		return "out_of_range"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) sentinel() error {
	switch k {
	case KindMissingRequired:
		return ErrMissingRequired
	case KindOutOfRange:
		return ErrOutOfRange
	}
	return ErrMalformed
}

// Error reports which key failed resolution and why.  It matches the
// Err* sentinels with errors.Is.
type Error struct {
	Key  string
	Kind Kind
	Raw  string // offending value; empty for KindMissingRequired
	Err  error  // underlying cause, may be nil

	secret bool
}

func (e *Error) Error() string {
	if e.Kind == KindMissingRequired {
		return fmt.Sprintf("config: %s: %v", e.Key, ErrMissingRequired)
	}
	raw := fmt.Sprintf("%q", e.Raw)
	if e.secret {
		raw = "<redacted>"
	}
	msg := fmt.Sprintf("config: %s=%s: %v", e.Key, raw, e.Kind.sentinel())
	// strconv.ErrRange says the same thing as ErrOutOfRange.
	if e.Err != nil && e.Err != strconv.ErrRange {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.sentinel()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
