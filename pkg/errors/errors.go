package errors

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrMaterialNotFound   = errors.New("material not found")
	ErrPatronNotFound     = errors.New("patron not found")
	ErrCheckoutNotFound   = errors.New("checkout not found")
	ErrNoMaterialsMatch   = errors.New("no materials match the given filters")
	ErrIDMismatch         = errors.New("body id does not match path id")
	ErrInvalidReference   = errors.New("referenced entity does not exist")
	ErrAlreadyReturned    = errors.New("checkout has already been returned")
	ErrRelationsNotLoaded = errors.New("required relations are not loaded")
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	ErrCodeMaterialNotFound = "MATERIAL_NOT_FOUND"
	ErrCodePatronNotFound   = "PATRON_NOT_FOUND"
	ErrCodeCheckoutNotFound = "CHECKOUT_NOT_FOUND"
	ErrCodeNoMaterialsMatch = "NO_MATERIALS_MATCH"
	ErrCodeIDMismatch       = "ID_MISMATCH"
	ErrCodeInvalidReference = "INVALID_REFERENCE"
	ErrCodeAlreadyReturned  = "ALREADY_RETURNED"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeDatabaseError    = "DATABASE_ERROR"
	ErrCodeCacheError       = "CACHE_ERROR"
)

var notFoundCodes = map[string]bool{
	ErrCodeMaterialNotFound: true,
	ErrCodePatronNotFound:   true,
	ErrCodeCheckoutNotFound: true,
	ErrCodeNoMaterialsMatch: true,
}

var validationCodes = map[string]bool{
	ErrCodeIDMismatch:       true,
	ErrCodeInvalidReference: true,
	ErrCodeAlreadyReturned:  true,
	ErrCodeValidationFailed: true,
}

// IsNotFound reports whether err belongs to the not-found class
// (entity absent by id, or a filtered query that matched nothing).
func IsNotFound(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return notFoundCodes[de.Code]
	}
	return false
}

// IsValidation reports whether err belongs to the validation class
// (malformed or mismatched input, broken references).
func IsValidation(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return validationCodes[de.Code]
	}
	return false
}

// Wrap common errors with domain context
func WrapMaterialNotFound(id string) *DomainError {
	return NewDomainError(
		ErrCodeMaterialNotFound,
		fmt.Sprintf("Material with ID %s not found", id),
		ErrMaterialNotFound,
	)
}

func WrapPatronNotFound(id string) *DomainError {
	return NewDomainError(
		ErrCodePatronNotFound,
		fmt.Sprintf("Patron with ID %s not found", id),
		ErrPatronNotFound,
	)
}

func WrapCheckoutNotFound(id string) *DomainError {
	return NewDomainError(
		ErrCodeCheckoutNotFound,
		fmt.Sprintf("Checkout with ID %s not found", id),
		ErrCheckoutNotFound,
	)
}

func WrapNoMaterialsMatch() *DomainError {
	return NewDomainError(
		ErrCodeNoMaterialsMatch,
		"No circulating materials match the given filters",
		ErrNoMaterialsMatch,
	)
}

func WrapIDMismatch(bodyID, pathID string) *DomainError {
	return NewDomainError(
		ErrCodeIDMismatch,
		fmt.Sprintf("Body ID %s does not match path ID %s", bodyID, pathID),
		ErrIDMismatch,
	)
}

func WrapInvalidReference(err error) *DomainError {
	return NewDomainError(
		ErrCodeInvalidReference,
		"Request references an entity that does not exist",
		err,
	)
}

func WrapAlreadyReturned(id string) *DomainError {
	return NewDomainError(
		ErrCodeAlreadyReturned,
		fmt.Sprintf("Checkout with ID %s has already been returned", id),
		ErrAlreadyReturned,
	)
}

func WrapValidationFailed(err error) *DomainError {
	return NewDomainError(
		ErrCodeValidationFailed,
		"Request validation failed",
		err,
	)
}

func WrapDatabaseError(err error) *DomainError {
	return NewDomainError(
		ErrCodeDatabaseError,
		"database operation failed",
		err,
	)
}

func WrapCacheError(err error) *DomainError {
	return NewDomainError(
		ErrCodeCacheError,
		"cache operation failed",
		err,
	)
}
