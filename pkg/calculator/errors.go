package calculator

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors matched with errors.Is.
var (
	ErrNegativeNumbers  = errors.New("negative numbers not allowed")
	ErrMalformedNumber  = errors.New("malformed number")
	ErrInvalidDelimiter = errors.New("invalid delimiter")
	ErrSumOverflow      = errors.New("sum exceeds the float64 range")
)

var errEmptyMatch = errors.New("pattern matches the empty string")

// NegativeNumberError reports every negative value found, in input order.
type NegativeNumberError struct {
	Values []float64
}

func (e *NegativeNumberError) Error() string {
	parts := make([]string, len(e.Values))
	for i, v := range e.Values {
		parts[i] = FormatNumber(v)
	}
	return "Negative numbers not allowed: " + strings.Join(parts, ", ")
}

func (e *NegativeNumberError) Is(target error) bool { return target == ErrNegativeNumbers }

// MalformedNumberError is returned when a token is not a finite decimal.
type MalformedNumberError struct {
	Token    string
	Position int // zero-based token index
}

func (e *MalformedNumberError) Error() string {
	return fmt.Sprintf("malformed number %q at token %d", e.Token, e.Position)
}

func (e *MalformedNumberError) Is(target error) bool { return target == ErrMalformedNumber }

// DelimiterError is returned when a custom delimiter pattern cannot be used.
type DelimiterError struct {
	Spec string
	Err  error
}

func (e *DelimiterError) Error() string {
	return fmt.Sprintf("invalid delimiter %q: %v", e.Spec, e.Err)
}

func (e *DelimiterError) Unwrap() error { return e.Err }

func (e *DelimiterError) Is(target error) bool { return target == ErrInvalidDelimiter }
