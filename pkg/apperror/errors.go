package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Amount must be greater than zero", http.StatusBadRequest)
}

func ErrSelfTransfer() *AppError {
	return New("VAL_002", "Sender and recipient must be different", http.StatusBadRequest)
}

func ErrCurrencyMismatch(want, got string) *AppError {
	return New("VAL_003", fmt.Sprintf("Currency mismatch: wallet holds %s, request is %s", want, got), http.StatusBadRequest)
}

// Validation returns a generic VAL_000 validation error with a custom message.
func Validation(message string) *AppError {
	return New("VAL_000", message, http.StatusBadRequest)
}

// ---- Lookup (ACC) ----

func ErrNotFound(entity string) *AppError {
	return New("ACC_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrWalletInactive() *AppError {
	return New("ACC_002", "Wallet is deactivated", http.StatusForbidden)
}

// ---- Business rules (FUND) ----

func ErrInsufficientFunds() *AppError {
	return New("FUND_001", "Insufficient balance in wallet", http.StatusPaymentRequired)
}

// ---- Concurrency (CONFLICT) ----

// ErrConcurrencyConflict reports a bounded lock wait that expired.
// The attempted unit left no effects; safe for the caller to retry.
func ErrConcurrencyConflict(err error) *AppError {
	return Wrap("CONFLICT_001", "Wallet is locked by another operation, retry", http.StatusConflict, err)
}

// ---- Authentication (AUTH) ----

func ErrInvalidToken() *AppError {
	return New("AUTH_001", "Invalid or expired token", http.StatusUnauthorized)
}

// ---- System & Infrastructure (SYS) ----

// ErrPersistence wraps a storage failure inside the atomic unit.
// The whole unit has been rolled back when this is returned.
func ErrPersistence(stage string, err error) *AppError {
	return Wrap("SYS_001", fmt.Sprintf("Persistence failure at %s", stage), http.StatusInternalServerError, err)
}

// InternalError wraps an unexpected error.
func InternalError(err error) *AppError {
	return Wrap("SYS_000", "Internal server error", http.StatusInternalServerError, err)
}
