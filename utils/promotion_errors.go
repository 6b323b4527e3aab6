package utils

import (
	"errors"
	"net/http"
)

// PromoErrorKind enumerates every way a promotion can be refused. The set is
// closed: callers switch on the kind, never on message text.
type PromoErrorKind int

const (
	// PromoErrNotFound - code does not exist or is not ACTIVE
	PromoErrNotFound PromoErrorKind = iota
	// PromoErrExpired - current time outside the promotion window
	PromoErrExpired
	// PromoErrLimitExceeded - global usage limit exhausted
	PromoErrLimitExceeded
	// PromoErrPerCustomerLimitExceeded - customer already redeemed the maximum allowed times
	PromoErrPerCustomerLimitExceeded
	// PromoErrBelowMinimumPurchase - order total under the minimum purchase amount
	PromoErrBelowMinimumPurchase
	// PromoErrInvalidDiscountConfiguration - unsupported or malformed discount type
	PromoErrInvalidDiscountConfiguration
	// PromoErrLockTimeout - could not acquire the promotion row lock in time; safe to retry
	PromoErrLockTimeout
)

// PromoError is the engine's typed refusal. Limit errors carry different
// user-facing messages depending on whether they were raised advisorily
// (validate) or authoritatively (redeem); the kind stays the same.
type PromoError struct {
	Kind    PromoErrorKind
	Message string
}

// Error implements the error interface
func (e *PromoError) Error() string {
	return e.Message
}

// NewPromoError creates a PromoError with the given kind and message
func NewPromoError(kind PromoErrorKind, message string) *PromoError {
	return &PromoError{Kind: kind, Message: message}
}

// GetPromoError returns the PromoError within err, or nil
func GetPromoError(err error) *PromoError {
	var promoErr *PromoError
	if errors.As(err, &promoErr) {
		return promoErr
	}
	return nil
}

// IsPromoErrorKind reports whether err is a PromoError of the given kind
func IsPromoErrorKind(err error, kind PromoErrorKind) bool {
	promoErr := GetPromoError(err)
	return promoErr != nil && promoErr.Kind == kind
}

// PromoErrorStatus maps an error kind to the HTTP status the API surfaces
func PromoErrorStatus(kind PromoErrorKind) int {
	switch kind {
	case PromoErrNotFound:
		return http.StatusNotFound
	case PromoErrLimitExceeded, PromoErrPerCustomerLimitExceeded:
		return http.StatusConflict
	case PromoErrLockTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}
