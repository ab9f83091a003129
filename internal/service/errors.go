package service

import "fmt"

// ServiceError carries the failing operation alongside a wrapped cause.
// Callers inspect the cause with errors.Is/errors.As.
type ServiceError struct {
	Service   string
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s service %s failed: %s: %v", e.Service, e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s service %s failed: %s", e.Service, e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

func newAuthError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "auth", Operation: operation, Message: message, Err: err}
}

func newTaskError(operation, message string, err error) *ServiceError {
	return &ServiceError{Service: "task", Operation: operation, Message: message, Err: err}
}
