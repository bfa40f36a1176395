// Package errkind defines the typed error taxonomy shared by every
// pipeline component, so the Pipeline Coordinator can classify a failing
// stage without string-matching error messages.
package errkind

import "fmt"

// Kind names a category of failure without pinning down a concrete Go
// type; every component-level error implements Kinded.
type Kind string

const (
	KindParse            Kind = "ParseError"
	KindEmptyRoute       Kind = "EmptyRouteError"
	KindTooShort         Kind = "TooShortError"
	KindConfig           Kind = "ConfigError"
	KindSpawn            Kind = "SpawnError"
	KindContainerExit    Kind = "ContainerExitError"
	KindContainerIO      Kind = "ContainerIOError"
	KindValidation       Kind = "ValidationError"
	KindTimeout          Kind = "TimeoutError"
	KindCanceled         Kind = "CanceledError"
	KindMemoryCritical   Kind = "MemoryCriticalError"
	KindInternal         Kind = "InternalError"
)

// Kinded is implemented by every error type in this repo that carries a
// taxonomy Kind, so callers can switch on Kind() instead of on the
// concrete type.
type Kinded interface {
	error
	Kind() Kind
}

// Error is a generic kinded error for components that don't need extra
// structured fields beyond a reason string.
type Error struct {
	kind   Kind
	reason string
	err    error
}

// New builds a kinded error wrapping err (which may be nil) with reason
// as the human-readable detail.
func New(kind Kind, reason string, err error) *Error {
	return &Error{kind: kind, reason: reason, err: err}
}

func (e *Error) Kind() Kind { return e.kind }

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.kind, e.reason, e.err)
	}
	if e.reason != "" {
		return fmt.Sprintf("%s: %s", e.kind, e.reason)
	}
	return string(e.kind)
}

func (e *Error) Unwrap() error { return e.err }

// KindOf extracts the Kind from err if it (or something it wraps)
// implements Kinded, falling back to KindInternal.
func KindOf(err error) Kind {
	var k Kinded
	if asKinded(err, &k) {
		return k.Kind()
	}
	return KindInternal
}

func asKinded(err error, target *Kinded) bool {
	for err != nil {
		if k, ok := err.(Kinded); ok {
			*target = k
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
