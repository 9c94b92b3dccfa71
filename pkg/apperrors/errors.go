// Package apperrors contains the bridge's error category taxonomy and the
// ServiceError type used across every component to carry a stable, client
// facing error kind alongside the underlying cause.
package apperrors

import (
	"errors"
	"net/http"
)

// Category defines an error category with a fixed HTTP status mapping and
// retry semantics. Among the general categories, those below
// CategoryDependencyFailure are client errors and those from it through
// CategoryConnectionTimeout are internal/operational errors. The bridge
// categories declared after them include both kinds; IsRetryable and
// StatusCode give each one's semantics.
type Category int

const (
	CategoryNoError Category = iota
	// CategoryDataError is a malformed or missing request field.
	CategoryDataError
	CategoryUnauthorized
	CategoryForbidden
	CategoryResourceNotFound
	CategoryNotSupported
	CategoryDataConflict
	CategoryLocked
	// CategoryDependencyFailure is a chain RPC, oracle, or queue broker error.
	CategoryDependencyFailure
	CategoryGeneralError
	CategoryRecovering
	CategoryConnectionTimeout

	// CategoryInvalidSignature: signature does not recover to the claimed
	// EVM address.
	CategoryInvalidSignature
	// CategoryInvalidOwner: no confirmed claim links the native and EVM
	// addresses involved in the request.
	CategoryInvalidOwner
	// CategoryBlacklisted: the native address is on the blacklist oracle.
	CategoryBlacklisted
	// CategoryInsufficientBalance: the ledger balance is below the
	// requested amount.
	CategoryInsufficientBalance
	// CategoryAlreadyProcessed: duplicate hash/timestamp; idempotent,
	// callers may treat it as success.
	CategoryAlreadyProcessed
	// CategoryPendingLiquidity: the hot wallet cannot currently cover a
	// withdrawal; not an error to the end user.
	CategoryPendingLiquidity
	// CategoryContentionTimeout: named-lock acquisition exhausted its
	// retries; retryable by the queue.
	CategoryContentionTimeout
	// CategoryExternalFailure: chain RPC or oracle call failed; retryable
	// up to the queue's attempt cap.
	CategoryExternalFailure
)

func (c Category) String() string {
	switch c {
	case CategoryDataError:
		return "CategoryDataError"
	case CategoryUnauthorized:
		return "CategoryUnauthorized"
	case CategoryForbidden:
		return "CategoryForbidden"
	case CategoryResourceNotFound:
		return "CategoryResourceNotFound"
	case CategoryNotSupported:
		return "CategoryNotSupported"
	case CategoryDataConflict:
		return "CategoryDataConflict"
	case CategoryLocked:
		return "CategoryLocked"
	case CategoryDependencyFailure:
		return "CategoryDependencyFailure"
	case CategoryRecovering:
		return "CategoryRecovering"
	case CategoryConnectionTimeout:
		return "CategoryConnectionTimeout"
	case CategoryInvalidSignature:
		return "CategoryInvalidSignature"
	case CategoryInvalidOwner:
		return "CategoryInvalidOwner"
	case CategoryBlacklisted:
		return "CategoryBlacklisted"
	case CategoryInsufficientBalance:
		return "CategoryInsufficientBalance"
	case CategoryAlreadyProcessed:
		return "CategoryAlreadyProcessed"
	case CategoryPendingLiquidity:
		return "CategoryPendingLiquidity"
	case CategoryContentionTimeout:
		return "CategoryContentionTimeout"
	case CategoryExternalFailure:
		return "CategoryExternalFailure"
	default:
		return "CategoryGeneralError"
	}
}

// ServiceError is the error type carried across every bridge component.
type ServiceError struct {
	Category Category
	Message  string
	Err      error
}

func (err ServiceError) Error() string {
	if err.Err != nil {
		return err.Err.Error()
	}
	return err.Message
}

func (err ServiceError) Unwrap() error {
	return err.Err
}

func (err ServiceError) Is(target error) bool {
	return err.Message == target.Error()
}

// Is reports whether err is a ServiceError of the given category.
func Is(err error, cat Category) bool {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) && svcErr.Category == cat {
		return true
	}
	return false
}

// IsRetryable reports whether the queue should retry the job that produced
// err rather than surface it to the caller as a terminal failure.
func IsRetryable(err error) bool {
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		return false
	}
	switch svcErr.Category {
	case CategoryContentionTimeout, CategoryExternalFailure, CategoryConnectionTimeout, CategoryRecovering:
		return true
	default:
		return false
	}
}

func GeneralError(err error) error {
	if err == nil {
		err = errors.New("internal server error")
	}
	return &ServiceError{Category: CategoryGeneralError, Message: "Internal Server Error", Err: err}
}

func ResourceNotFoundError(err error, message string) error {
	if err == nil {
		err = errors.New("resource not found:" + message)
	}
	return &ServiceError{Category: CategoryResourceNotFound, Message: message, Err: err}
}

func BadRequestError(err error, message string) error {
	if err == nil {
		err = errors.New("bad request:" + message)
	}
	return &ServiceError{Category: CategoryDataError, Message: message, Err: err}
}

func ConflictError(err error, message string) error {
	if err == nil {
		err = errors.New("conflict")
	}
	return &ServiceError{Category: CategoryDataConflict, Message: message, Err: err}
}

// InvalidSignatureError: signature does not recover to the claimed address.
func InvalidSignatureError(err error, message string) error {
	if err == nil {
		err = errors.New("invalid signature")
	}
	if message == "" {
		message = "invalid signature"
	}
	return &ServiceError{Category: CategoryInvalidSignature, Message: message, Err: err}
}

// InvalidOwnerError: claim does not link the given native/evm pair.
func InvalidOwnerError(err error, message string) error {
	if err == nil {
		err = errors.New("invalid owner")
	}
	if message == "" {
		message = "invalid owner"
	}
	return &ServiceError{Category: CategoryInvalidOwner, Message: message, Err: err}
}

// BlacklistedError: the native address is blacklisted.
func BlacklistedError(native string) error {
	return &ServiceError{Category: CategoryBlacklisted, Message: "address is blacklisted", Err: errors.New("blacklisted: " + native)}
}

// InsufficientBalanceError: ledger balance cannot cover the request.
func InsufficientBalanceError(message string) error {
	if message == "" {
		message = "insufficient balance"
	}
	return &ServiceError{Category: CategoryInsufficientBalance, Message: message, Err: errors.New(message)}
}

// AlreadyProcessedError: duplicate hash/timestamp, fatal but idempotent.
func AlreadyProcessedError(message string) error {
	if message == "" {
		message = "already processed"
	}
	return &ServiceError{Category: CategoryAlreadyProcessed, Message: message, Err: errors.New(message)}
}

// PendingLiquidityError: hot wallet cannot cover the withdrawal yet.
func PendingLiquidityError() error {
	return &ServiceError{Category: CategoryPendingLiquidity, Message: "pending", Err: errors.New("pending liquidity")}
}

// ContentionTimeoutError: named-lock acquisition exhausted its retries.
func ContentionTimeoutError(key string) error {
	return &ServiceError{Category: CategoryContentionTimeout, Message: "lock contention", Err: errors.New("lock timeout: " + key)}
}

// ExternalFailureError: chain RPC or oracle call failed.
func ExternalFailureError(err error, message string) error {
	if err == nil {
		err = errors.New("external failure")
	}
	if message == "" {
		message = "external service failure"
	}
	return &ServiceError{Category: CategoryExternalFailure, Message: message, Err: err}
}

// StatusCode returns the HTTP status code for the error category.
func (err ServiceError) StatusCode() int {
	switch err.Category {
	case CategoryDataError:
		return http.StatusBadRequest
	case CategoryUnauthorized:
		return http.StatusUnauthorized
	case CategoryForbidden, CategoryBlacklisted:
		return http.StatusForbidden
	case CategoryResourceNotFound:
		return http.StatusNotFound
	case CategoryNotSupported:
		return http.StatusMethodNotAllowed
	case CategoryDataConflict, CategoryInvalidOwner, CategoryInvalidSignature:
		return http.StatusConflict
	case CategoryLocked:
		return http.StatusLocked
	case CategoryDependencyFailure:
		return http.StatusBadGateway
	case CategoryGeneralError:
		return http.StatusInternalServerError
	case CategoryRecovering, CategoryPendingLiquidity:
		return http.StatusAccepted
	case CategoryConnectionTimeout:
		return http.StatusGatewayTimeout
	case CategoryInsufficientBalance:
		return http.StatusPaymentRequired
	case CategoryAlreadyProcessed:
		return http.StatusAccepted
	case CategoryContentionTimeout:
		return http.StatusServiceUnavailable
	case CategoryExternalFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
