package apperrors

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidAmount indicates a transaction amount that is zero, NaN or infinite.
var ErrInvalidAmount = errors.New("invalid transaction amount")

// ErrInsufficientFunds indicates a spend that would take an envelope below zero.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAlreadyProcessed indicates the monthly update already ran for the current month.
var ErrAlreadyProcessed = errors.New("monthly update already processed for this month")

// ErrConfig indicates invalid or unreadable application configuration.
var ErrConfig = errors.New("configuration error")

// ErrForbidden indicates the acting user is not allowed to perform the operation.
var ErrForbidden = errors.New("operation not permitted")

// InsufficientFundsError carries the balances involved in a rejected spend.
type InsufficientFundsError struct {
	Current  decimal.Decimal
	Required decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: current balance %s, required %s", e.Current.StringFixed(2), e.Required.StringFixed(2))
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// AppError wraps an underlying error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err with the given code and message.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
