package loader

// Cause classifies why a model load failed.
type Cause string

const (
	CauseAuth         Cause = "auth_error"
	CauseNetwork      Cause = "network_error"
	CauseIncompatible Cause = "incompatible_device"
	CauseUnknown      Cause = "unknown"
)

// loadError carries the failure cause so the shell can explain it without
// parsing messages.
type loadError struct {
	cause Cause
	msg   string
}

func (e loadError) Error() string { return string(e.cause) + ": " + e.msg }

// ErrLoad constructs a loadError with the given cause.
func ErrLoad(cause Cause, msg string) error { return loadError{cause: cause, msg: msg} }

// IsLoadError reports whether err is a model load failure and returns its cause.
func IsLoadError(err error) (Cause, bool) {
	if e, ok := err.(loadError); ok {
		return e.cause, true
	}
	return "", false
}

// loadPendingError signals a Reset attempted while a load is in flight.
type loadPendingError struct{}

func (loadPendingError) Error() string { return "model load in progress" }

// IsLoadPending reports whether err indicates an in-flight load.
func IsLoadPending(err error) bool {
	_, ok := err.(loadPendingError)
	return ok
}
