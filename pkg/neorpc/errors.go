package neorpc

import (
	"errors"
	"fmt"
	"strings"
)

// Error represents JSON-RPC 2.0 error type.
type Error struct {
	Code    int64  `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

// Standard JSON-RPC 2.0 error codes.
const (
	// ParseErrorCode is returned when the server can't parse the request.
	ParseErrorCode = -32700
	// InvalidRequestCode is returned for malformed requests.
	InvalidRequestCode = -32600
	// MethodNotFoundCode is returned for unknown methods.
	MethodNotFoundCode = -32601
	// InvalidParamsCode is returned for invalid method parameters.
	InvalidParamsCode = -32602
	// InternalServerErrorCode is returned for internal RPC server error.
	InternalServerErrorCode = -32603
)

// Neo-specific error codes.
const (
	// ErrCompatGeneric is the legacy catch-all code older nodes return for
	// every application-level error (unknown transaction included).
	ErrCompatGeneric = -100
	// ErrUnknownBlockCode is returned for unknown blocks.
	ErrUnknownBlockCode = -101
	// ErrUnknownContractCode is returned for unknown contracts.
	ErrUnknownContractCode = -102
	// ErrUnknownTransactionCode is returned for unknown transactions.
	ErrUnknownTransactionCode = -103
	// ErrInsufficientFundsCode is returned when the sender can't pay.
	ErrInsufficientFundsCode = -511
	// ErrAlreadyExistsCode is returned for transactions already in the chain.
	ErrAlreadyExistsCode = -501
	// ErrAlreadyInPoolCode is returned for transactions already in the mempool.
	ErrAlreadyInPoolCode = -503
	// ErrVerificationFailedCode is returned for transactions failing verification.
	ErrVerificationFailedCode = -500
)

var (
	// ErrInvalidParams represents a generic "Invalid params" error.
	ErrInvalidParams = NewInvalidParamsError("Invalid params")
	// ErrUnknownTransaction is returned when requested transaction is not found.
	ErrUnknownTransaction = NewError(ErrUnknownTransactionCode, "Unknown transaction", "")
	// ErrUnknownContract is returned when requested contract is not found.
	ErrUnknownContract = NewError(ErrUnknownContractCode, "Unknown contract", "")
	// ErrAlreadyExists is returned for transactions that are already in the chain.
	ErrAlreadyExists = NewError(ErrAlreadyExistsCode, "Already exists", "")
)

// NewError is an Error constructor that takes Error contents from its parameters.
func NewError(code int64, message string, data string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewParseError creates a new error with code -32700.
func NewParseError(data string) *Error {
	return NewError(ParseErrorCode, "Parse error", data)
}

// NewInvalidRequestError creates a new error with code -32600.
func NewInvalidRequestError(data string) *Error {
	return NewError(InvalidRequestCode, "Invalid request", data)
}

// NewMethodNotFoundError creates a new error with code -32601.
func NewMethodNotFoundError(data string) *Error {
	return NewError(MethodNotFoundCode, "Method not found", data)
}

// NewInvalidParamsError creates a new error with code -32602.
func NewInvalidParamsError(data string) *Error {
	return NewError(InvalidParamsCode, "Invalid params", data)
}

// NewInternalServerError creates a new error with code -32603.
func NewInternalServerError(data string) *Error {
	return NewError(InternalServerErrorCode, "Internal error", data)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("%s (%d)", e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%d) - %s", e.Message, e.Code, e.Data)
}

// Is denotes whether the error matches the target one. Errors with the same
// code match, the legacy -100 code matches by message.
func (e *Error) Is(target error) bool {
	var clTarget *Error
	if !errors.As(target, &clTarget) {
		return false
	}
	if e.Code == clTarget.Code {
		return true
	}
	return e.Code == ErrCompatGeneric && clTarget.Code != ErrCompatGeneric &&
		strings.EqualFold(e.Message, clTarget.Message)
}

// IsUnknownTransaction checks whether the error means that the node doesn't
// know the transaction (yet). Both the current code and the legacy generic
// one are recognized.
func IsUnknownTransaction(err error) bool {
	if errors.Is(err, ErrUnknownTransaction) {
		return true
	}
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCompatGeneric &&
		strings.Contains(strings.ToLower(e.Message+" "+e.Data), "unknown transaction")
}

// WrapErrorWithData returns copy of the given error with the specified data.
// It does not modify the source error.
func WrapErrorWithData(e *Error, data string) *Error {
	return NewError(e.Code, e.Message, data)
}
