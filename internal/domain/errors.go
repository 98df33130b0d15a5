package domain

import (
	"errors"
	"net/http"
)

// ErrorKind classifies user-facing failures
type ErrorKind string

// ErrorKind constants
const (
	KindEmptySymbol          ErrorKind = "EMPTY_SYMBOL"
	KindNonIntegerShares     ErrorKind = "NON_INTEGER_SHARES"
	KindNonPositiveShares    ErrorKind = "NON_POSITIVE_SHARES"
	KindInvalidQuantity      ErrorKind = "INVALID_QUANTITY"
	KindUnknownSymbol        ErrorKind = "UNKNOWN_SYMBOL"
	KindInsufficientFunds    ErrorKind = "INSUFFICIENT_FUNDS"
	KindInsufficientHoldings ErrorKind = "INSUFFICIENT_HOLDINGS"
	KindMissingCredential    ErrorKind = "MISSING_CREDENTIAL"
	KindPasswordMismatch     ErrorKind = "PASSWORD_MISMATCH"
	KindUsernameTaken        ErrorKind = "USERNAME_TAKEN"
	KindInvalidCredentials   ErrorKind = "INVALID_CREDENTIALS"
	KindInvalidAmount        ErrorKind = "INVALID_AMOUNT"
	KindQuoteUnavailable     ErrorKind = "QUOTE_UNAVAILABLE"
)

// Error is a failure that is reported to the user as an apology page.
// Two errors match under errors.Is when their kinds are equal.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is matches any *Error of the same kind
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// With returns a copy of the error carrying a different status and message
func (e *Error) With(status int, message string) *Error {
	return &Error{Kind: e.Kind, Status: status, Message: message}
}

func newError(kind ErrorKind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Validation and business-rule failures
var (
	ErrEmptySymbol          = newError(KindEmptySymbol, http.StatusBadRequest, "Empty Symbol field")
	ErrNonIntegerShares     = newError(KindNonIntegerShares, http.StatusBadRequest, "The Shares field only accepts integers")
	ErrNonPositiveShares    = newError(KindNonPositiveShares, http.StatusBadRequest, "The Shares field only accepts positive integers")
	ErrInvalidQuantity      = newError(KindInvalidQuantity, http.StatusBadRequest, "Share count must be a positive integer")
	ErrUnknownSymbol        = newError(KindUnknownSymbol, http.StatusBadRequest, "Invalid symbol")
	ErrInsufficientFunds    = newError(KindInsufficientFunds, http.StatusBadRequest, "The cash on hand is not enough")
	ErrInsufficientHoldings = newError(KindInsufficientHoldings, http.StatusBadRequest, "The number of shares selected exceeds the ones you own")
	ErrMissingCredential    = newError(KindMissingCredential, http.StatusBadRequest, "Missing credential")
	ErrPasswordMismatch     = newError(KindPasswordMismatch, http.StatusBadRequest, "Passwords do not match")
	ErrUsernameTaken        = newError(KindUsernameTaken, http.StatusBadRequest, "Username already exists")
	ErrInvalidCredentials   = newError(KindInvalidCredentials, http.StatusForbidden, "invalid username and/or password")
	ErrInvalidAmount        = newError(KindInvalidAmount, http.StatusBadRequest, "The amount must be a positive integer")
	ErrBalanceLimit         = newError(KindInvalidAmount, http.StatusBadRequest, "The amount would exceed the maximum cash balance")
	ErrQuoteUnavailable     = newError(KindQuoteUnavailable, http.StatusServiceUnavailable, "Quote service unavailable, try again later")
)

// Storage-level failures
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)
