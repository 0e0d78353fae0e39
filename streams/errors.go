package streams

import "fmt"

type notFoundError struct {
}

func NewNotFoundError() error {
	return &notFoundError{}
}

func (err *notFoundError) Error() string {
	return "The stream requested was not found"
}

func IsNotFoundError(err error) bool {
	_, ok := err.(*notFoundError)
	return ok
}

type requiredFieldError struct {
	field string
}

func NewRequiredFieldError(field string) error {
	return &requiredFieldError{field: field}
}

func (err *requiredFieldError) Error() string {
	return fmt.Sprintf("Required field is missing: %s", err.field)
}

type validationError struct {
	message string
}

func NewValidationError(message string) error {
	return &validationError{message: message}
}

func (err *validationError) Error() string {
	return err.message
}

type insufficientFundsError struct {
}

func NewInsufficientFundsError() error {
	return &insufficientFundsError{}
}

func (err *insufficientFundsError) Error() string {
	return "Insufficient balance remaining to pay the next stream part"
}
