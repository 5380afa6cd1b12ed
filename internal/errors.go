package internal

import (
	"errors"
	"fmt"
)

var (
	ErrFetch               = errors.New("fetch failed")
	ErrParse               = errors.New("malformed feed")
	ErrUnknownCurrency     = errors.New("unknown currency")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	ErrCacheMiss           = errors.New("cache miss")
)

// FetchError reports an unreachable upstream or a non-2xx answer. StatusCode
// is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() []error { return []error{ErrFetch, e.Err} }

// ParseError points at the feed element that broke the parse. Index is -1 for
// document level problems.
type ParseError struct {
	Index int
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("parse feed: %v", e.Err)
	}
	return fmt.Sprintf("parse feed: currency #%d field %s: %v", e.Index, e.Field, e.Err)
}

func (e *ParseError) Unwrap() []error { return []error{ErrParse, e.Err} }

type UnknownCurrencyError struct {
	Code CurrencyCode
}

func (e *UnknownCurrencyError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code.String())
}

func (e *UnknownCurrencyError) Is(target error) bool { return target == ErrUnknownCurrency }
