// Package businessflow contains the core business logic and use cases for account lifecycle workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound      = errors.New("account not found")
	ErrEATypeRequired       = errors.New("ea_type is required")
	ErrAccountRequired      = errors.New("account is required")
	ErrBrokerRequired       = errors.New("broker is required")
	ErrNameRequired         = errors.New("name is required")
	ErrPhoneRequired        = errors.New("phone is required")
	ErrInvalidAccountStatus = errors.New("invalid account status")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsInvalidAccountStatus(err error) bool {
	return errors.Is(err, ErrInvalidAccountStatus)
}

// IsMissingField reports whether err is one of the required-field errors
func IsMissingField(err error) bool {
	return errors.Is(err, ErrEATypeRequired) ||
		errors.Is(err, ErrAccountRequired) ||
		errors.Is(err, ErrBrokerRequired) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrPhoneRequired)
}
