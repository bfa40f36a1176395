package orchestrator

import "github.com/chicogong/route-recorder/pkg/errkind"

// TimeoutError is fired when a job's wall-clock budget expires.
func TimeoutError(reason string) *errkind.Error {
	return errkind.New(errkind.KindTimeout, reason, nil)
}

// CanceledError is fired for an explicit cancelRender.
func CanceledError(reason string) *errkind.Error {
	return errkind.New(errkind.KindCanceled, reason, nil)
}

// MemoryCriticalError builds an error of the MemoryCriticalError kind.
// The Coordinator does not escalate memory events: a critical threshold
// crossing is only forwarded as a memory_warning progress message.
func MemoryCriticalError(reason string) *errkind.Error {
	return errkind.New(errkind.KindMemoryCritical, reason, nil)
}

// InternalError wraps an unexpected failure that doesn't fit the other
// kinds.
func InternalError(reason string, err error) *errkind.Error {
	return errkind.New(errkind.KindInternal, reason, err)
}
