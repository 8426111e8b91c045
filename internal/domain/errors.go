package domain

import (
	"errors"
	"fmt"
)

// FetchErrorKind classifies why a feed could not be retrieved.
type FetchErrorKind string

const (
	FetchErrorHTTP    FetchErrorKind = "http"
	FetchErrorNetwork FetchErrorKind = "network"
	FetchErrorTimeout FetchErrorKind = "timeout"
)

// FetchError is returned when the feed request fails. Status is set only for
// FetchErrorHTTP.
type FetchError struct {
	Kind   FetchErrorKind
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Kind == FetchErrorHTTP:
		return fmt.Sprintf("fetch feed: unexpected status %d", e.Status)
	case e.Err != nil:
		return fmt.Sprintf("fetch feed: %s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("fetch feed: %s", e.Kind)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// FetchErrorKindOf returns the kind of a FetchError anywhere in err's chain,
// or "unknown".
func FetchErrorKindOf(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	return "unknown"
}

// ParseError reports a feed document that is not well-formed XML. It is a
// diagnostic: ParseFeed still returns a usable, empty result alongside it.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse feed: %v", e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }
