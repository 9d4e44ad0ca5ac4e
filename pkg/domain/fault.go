package domain

import (
	"errors"
	"fmt"
)

// FaultKind classifies a failure the route layer has to map to a response.
type FaultKind int

const (
	ValidationFault FaultKind = iota + 1
	NotFoundFault
	QuotaExceededFault
	BackendFault
	ForbiddenFault
)

func (k FaultKind) String() string {
	switch k {
	case ValidationFault:
		return "validation"
	case NotFoundFault:
		return "not_found"
	case QuotaExceededFault:
		return "quota_exceeded"
	case BackendFault:
		return "backend"
	case ForbiddenFault:
		return "forbidden"
	}
	return "unknown"
}

// Fault is the structured error returned by every mutating operation.
// Remaining is only meaningful for QuotaExceededFault.
type Fault struct {
	Kind      FaultKind
	Msg       string
	Remaining int64
	Err       error
}

func (f *Fault) Error() string {
	if f.Err != nil {
		return fmt.Sprintf("%s: %v", f.Msg, f.Err)
	}
	return f.Msg
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func NewValidationFault(format string, args ...any) *Fault {
	return &Fault{Kind: ValidationFault, Msg: fmt.Sprintf(format, args...)}
}

func NewNotFoundFault(format string, args ...any) *Fault {
	return &Fault{Kind: NotFoundFault, Msg: fmt.Sprintf(format, args...)}
}

func NewQuotaExceededFault(remaining int64, format string, args ...any) *Fault {
	return &Fault{Kind: QuotaExceededFault, Msg: fmt.Sprintf(format, args...), Remaining: remaining}
}

func NewBackendFault(err error, format string, args ...any) *Fault {
	return &Fault{Kind: BackendFault, Msg: fmt.Sprintf(format, args...), Err: err}
}

func NewForbiddenFault(format string, args ...any) *Fault {
	return &Fault{Kind: ForbiddenFault, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first Fault in err's chain, or 0.
func KindOf(err error) FaultKind {
	var f *Fault
	if errors.As(err, &f) {
		return f.Kind
	}
	return 0
}

func IsValidation(err error) bool {
	return KindOf(err) == ValidationFault
}

func IsNotFound(err error) bool {
	return KindOf(err) == NotFoundFault
}

func IsQuotaExceeded(err error) bool {
	return KindOf(err) == QuotaExceededFault
}

func IsBackend(err error) bool {
	return KindOf(err) == BackendFault
}

func IsForbidden(err error) bool {
	return KindOf(err) == ForbiddenFault
}
