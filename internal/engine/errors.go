package engine

// notBuiltError signals the binary was compiled without a usable backend.
type notBuiltError struct{ msg string }

func (e notBuiltError) Error() string { return e.msg }

// ErrNotBuilt constructs a notBuiltError.
func ErrNotBuilt(msg string) error { return notBuiltError{msg: msg} }

// IsNotBuilt reports whether err indicates a missing backend build.
func IsNotBuilt(err error) bool {
	_, ok := err.(notBuiltError)
	return ok
}
