// Package errors provides the typed error used across the pricing engine.
package errors

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strings"
)

// Type identifies the category of error
type Type string

const (
	// TypeNoActiveContract indicates the partner has no contract valid at the evaluation time
	TypeNoActiveContract Type = "NO_ACTIVE_CONTRACT"

	// TypeAmbiguousContract indicates more than one contract is active for the partner
	TypeAmbiguousContract Type = "AMBIGUOUS_CONTRACT"

	// TypeNoMatchingPricing indicates no pricing rule governs the transaction
	TypeNoMatchingPricing Type = "NO_MATCHING_PRICING"

	// TypeAmbiguousPricing indicates two or more equally specific pricing rules match
	TypeAmbiguousPricing Type = "AMBIGUOUS_PRICING"

	// TypeTaxNotFound indicates a tax rule references a missing or disabled tax
	TypeTaxNotFound Type = "TAX_NOT_FOUND"

	// TypeInvalidAmount indicates a non-positive transfer amount
	TypeInvalidAmount Type = "INVALID_AMOUNT"

	// TypeCancelled indicates the resolution was cancelled or timed out
	TypeCancelled Type = "CANCELLED"

	// TypeInput indicates an input validation error
	TypeInput Type = "INPUT_ERROR"

	// TypeConfig indicates a configuration error
	TypeConfig Type = "CONFIG_ERROR"

	// TypeStorage indicates a repository read failure
	TypeStorage Type = "STORAGE_ERROR"

	// TypeNotFound indicates a resource not found error
	TypeNotFound Type = "NOT_FOUND"

	// TypeInternal indicates an internal error
	TypeInternal Type = "INTERNAL_ERROR"
)

// Error represents a domain error with context
type Error struct {
	Type    Type                   `json:"type"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Error implements the error interface. Context keys are printed sorted so
// the message is stable.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Type, e.Message)

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is checks if the error is of a specific type
func (e *Error) Is(t Type) bool {
	return e.Type == t
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithFields merges a set of context values into the error
func (e *Error) WithFields(fields map[string]interface{}) *Error {
	for k, v := range fields {
		e.WithContext(k, v)
	}
	return e
}

// New creates a new error
func New(errType Type, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
	}
}

// Newf creates a new formatted error
func Newf(errType Type, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap wraps an error with context
func Wrap(errType Type, message string, cause error) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an error with formatted context
func Wrapf(errType Type, cause error, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// IsType reports whether err, or any error it wraps, is an *Error of type t
func IsType(err error, t Type) bool {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type == t
	}
	return false
}

// TypeOf returns the type of the outermost *Error in err's chain, or
// TypeInternal if there is none.
func TypeOf(err error) Type {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Type
	}
	return TypeInternal
}

// As is errors.As re-exported so callers need a single errors import
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// Input creates an input error
func Input(message string) *Error {
	return New(TypeInput, message)
}

// Config creates a configuration error
func Config(message string) *Error {
	return New(TypeConfig, message)
}

// Storage wraps a repository failure
func Storage(message string, cause error) *Error {
	return Wrap(TypeStorage, message, cause)
}

// NotFound creates a not found error
func NotFound(resourceType, identifier string) *Error {
	return Newf(TypeNotFound, "%s not found: %s", resourceType, identifier)
}

// Internal creates an internal error
func Internal(message string, cause error) *Error {
	return Wrap(TypeInternal, message, cause)
}

// InvalidAmount creates an invalid amount error
func InvalidAmount(amount string) *Error {
	return Newf(TypeInvalidAmount, "amount must be positive, got %s", amount).
		WithContext("amount", amount)
}

// Cancelled wraps a context cancellation or deadline error
func Cancelled(operation string, cause error) *Error {
	return Wrapf(TypeCancelled, cause, "%s cancelled", operation)
}
