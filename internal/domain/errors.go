package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindNotFound
	KindInsufficientStock
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindInsufficientStock:
		return "insufficient_stock"
	default:
		return "unknown"
	}
}

// Error is a classified domain failure. Sentinels are compared with errors.Is,
// which matches on Kind and Code so that copies carrying Details still match.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithDetails returns a copy of e carrying field level details.
func (e *Error) WithDetails(details map[string]string) *Error {
	cp := *e
	cp.Details = details
	return &cp
}

// Validation builds a validation error with a formatted message.
func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// KindOf reports the kind of err, KindUnknown for anything unclassified.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

var (
	ErrInvalidID         = &Error{Kind: KindValidation, Code: "invalid_id", Message: "invalid id"}
	ErrBloodTypeRequired = &Error{Kind: KindValidation, Code: "blood_type_required", Message: "blood type cannot be empty"}
	ErrNegativeVolume    = &Error{Kind: KindValidation, Code: "negative_volume", Message: "volume cannot be negative"}
	ErrInvalidVolume     = &Error{Kind: KindValidation, Code: "invalid_volume", Message: "volume must be positive"}
	ErrInvalidPagination = &Error{Kind: KindValidation, Code: "invalid_pagination", Message: "page and limit must be positive"}
	ErrInvalidStatus     = &Error{Kind: KindValidation, Code: "invalid_status", Message: "status must be fulfilled or rejected"}
	ErrInvalidDonor      = &Error{Kind: KindValidation, Code: "invalid_donor", Message: "invalid donor"}

	ErrEmailTaken        = &Error{Kind: KindConflict, Code: "email_taken", Message: "a donor with this email already exists"}
	ErrRequestNotPending = &Error{Kind: KindConflict, Code: "request_not_pending", Message: "request is no longer pending"}

	ErrDonorNotFound   = &Error{Kind: KindNotFound, Code: "donor_not_found", Message: "donor not found"}
	ErrRequestNotFound = &Error{Kind: KindNotFound, Code: "request_not_found", Message: "request not found"}

	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Code: "insufficient_stock", Message: "insufficient blood stock"}
)
