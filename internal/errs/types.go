package errs

import "fmt"

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type ValidationError struct {
	ErrorMessage
}

type UnsupportedToolError struct {
	ErrorMessage
	Tool string
}

type MalformedFunctionCallError struct {
	ErrorMessage
}

// ExternalServiceError wraps a failed call to the model or search provider.
type ExternalServiceError struct {
	ErrorMessage
	Service   string
	Transient bool
	Err       error
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewUnsupportedToolError(tool string) *UnsupportedToolError {
	return &UnsupportedToolError{
		ErrorMessage: ErrorMessage{Message: fmt.Sprintf("unsupported tool: %s", tool)},
		Tool:         tool,
	}
}

func NewMalformedFunctionCallError(message string) *MalformedFunctionCallError {
	return &MalformedFunctionCallError{
		ErrorMessage: ErrorMessage{Message: "malformed function call: " + message},
	}
}

func NewExternalServiceError(service, message string, transient bool, err error) *ExternalServiceError {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return &ExternalServiceError{
		ErrorMessage: ErrorMessage{Message: message},
		Service:      service,
		Transient:    transient,
		Err:          err,
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	if err != nil {
		message = fmt.Sprintf("%s: %v", message, err)
	}
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}
