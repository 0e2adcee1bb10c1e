package shape

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidContract = errors.New("invalid contract")
	ErrUnknownVariant  = errors.New("unknown variant")
)

// Issue codes.
const (
	CodeRequired   = "required"
	CodeType       = "type"
	CodeLiteral    = "literal"
	CodeEnum       = "enum"
	CodeTooLong    = "too_long"
	CodeTooSmall   = "too_small"
	CodeNotInteger = "not_integer"
)

// Issue is a single violated constraint.
type Issue struct {
	Path     string `json:"path"`
	Code     string `json:"code"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
}

func (i Issue) String() string {
	path := i.Path
	if path == "" {
		path = "(root)"
	}
	s := path + ": " + i.Code
	if i.Expected != "" {
		s += " (expected " + i.Expected
		if i.Actual != "" {
			s += ", got " + i.Actual
		}
		s += ")"
	}
	return s
}

// ValidationError collects every issue found in one value.
type ValidationError struct{ Issues []Issue }

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return ErrInvalidContract.Error()
	}
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, is.String())
	}
	return fmt.Sprintf("%s: %s", ErrInvalidContract, strings.Join(parts, "; "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrInvalidContract }

func (e *ValidationError) add(path, code, expected, actual string) {
	e.Issues = append(e.Issues, Issue{Path: path, Code: code, Expected: expected, Actual: actual})
}

// Has reports whether an issue with code exists at path.
func (e *ValidationError) Has(path, code string) bool {
	for _, is := range e.Issues {
		if is.Path == path && is.Code == code {
			return true
		}
	}
	return false
}

// UnknownVariantError means the discriminator was well formed but names no known
// variant. Callers may skip these instead of rejecting them.
type UnknownVariantError struct {
	Path  string
	Field string
	Value string
}

func (e *UnknownVariantError) Error() string {
	return fmt.Sprintf("%s: %s=%q", ErrUnknownVariant, e.Path, e.Value)
}

func (e *UnknownVariantError) Is(target error) bool { return target == ErrUnknownVariant }

// IsUnknownVariant reports whether err carries an *UnknownVariantError.
func IsUnknownVariant(err error) bool {
	var uv *UnknownVariantError
	return errors.As(err, &uv)
}

// Issues extracts the issue list from err, or nil.
func Issues(err error) []Issue {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Issues
	}
	return nil
}
