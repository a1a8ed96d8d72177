package cart

import "fmt"

// PreconditionError is the panic value for caller bugs: a non-positive
// quantity, an empty product ID or a missing collaborator.
type PreconditionError struct {
	Message string
}

func (e *PreconditionError) Error() string {
	return "cart: precondition violated: " + e.Message
}

// InvariantError is the panic value raised when the cart's own bookkeeping
// is inconsistent. It signals a bug in this package.
type InvariantError struct {
	Message string
}

func (e *InvariantError) Error() string {
	return "cart: invariant violated: " + e.Message
}

func preconditionf(format string, args ...interface{}) *PreconditionError {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

func invariantf(format string, args ...interface{}) *InvariantError {
	return &InvariantError{Message: fmt.Sprintf(format, args...)}
}
