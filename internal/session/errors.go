package session

// ValidationReason classifies a rejected parameter edit.
type ValidationReason string

const (
	ReasonOutOfRange   ValidationReason = "out_of_range"
	ReasonWrongType    ValidationReason = "wrong_type"
	ReasonUnknownField ValidationReason = "unknown_field"
)

// validationError reports a rejected edit; the active set stays unchanged.
type validationError struct {
	field  string
	reason ValidationReason
}

func (e validationError) Error() string { return "invalid " + e.field + ": " + string(e.reason) }

// ErrValidation constructs a validationError.
func ErrValidation(field string, reason ValidationReason) error {
	return validationError{field: field, reason: reason}
}

// IsValidation reports whether err is a rejected parameter edit and returns
// the offending field and reason.
func IsValidation(err error) (field string, reason ValidationReason, ok bool) {
	if e, isV := err.(validationError); isV {
		return e.field, e.reason, true
	}
	return "", "", false
}

// busyError signals a command rejected because a generation is in flight.
type busyError struct{ op string }

func (e busyError) Error() string { return e.op + " rejected: session is busy generating" }

// ErrBusy constructs a busyError for the named operation.
func ErrBusy(op string) error { return busyError{op: op} }

// IsBusy reports whether err indicates an in-flight generation (409 mapping).
func IsBusy(err error) bool {
	_, ok := err.(busyError)
	return ok
}

// notReadyError signals a send before the model is ready or after a failure.
type notReadyError struct{ state string }

func (e notReadyError) Error() string { return "session not ready: state is " + e.state }

// ErrNotReady constructs a notReadyError for the given state.
func ErrNotReady(state string) error { return notReadyError{state: state} }

// IsNotReady reports whether err indicates the session cannot serve yet (503 mapping).
func IsNotReady(err error) bool {
	_, ok := err.(notReadyError)
	return ok
}

// generationError wraps an inference failure surfaced to the shell verbatim.
type generationError struct{ cause error }

func (e generationError) Error() string { return "generation failed: " + e.cause.Error() }
func (e generationError) Unwrap() error { return e.cause }

// ErrGeneration constructs a generationError wrapping cause.
func ErrGeneration(cause error) error { return generationError{cause: cause} }

// IsGeneration reports whether err is an inference failure.
func IsGeneration(err error) bool {
	_, ok := err.(generationError)
	return ok
}

// canceledError signals a send whose result was suppressed by Cancel.
type canceledError struct{}

func (canceledError) Error() string { return "generation canceled" }

// ErrCanceled constructs a canceledError.
func ErrCanceled() error { return canceledError{} }

// IsCanceled reports whether err indicates a canceled generation.
func IsCanceled(err error) bool {
	_, ok := err.(canceledError)
	return ok
}
