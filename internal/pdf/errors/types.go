package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinels for the fatal conditions callers are expected to branch on.
var (
	// ErrSourceUnavailable reports a source PDF that is missing, unreadable or unparseable.
	ErrSourceUnavailable = stderrors.New("source document unavailable")
	// ErrLayoutTargetMissing reports a narrative region that cannot be located in the template.
	ErrLayoutTargetMissing = stderrors.New("layout target field missing")
	// ErrSerialization reports a failure while writing the output document.
	ErrSerialization = stderrors.New("document serialization failed")
)

// ErrorType represents the category of a PDFError
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeSourceUnavailable
	ErrorTypeLayoutTarget
	ErrorTypeSerialization
	ErrorTypeInvalidForm
	ErrorTypeInvalidFont
	ErrorTypeInvalidDefinition
)

// String returns a string representation of the ErrorType
func (et ErrorType) String() string {
	switch et {
	case ErrorTypeSourceUnavailable:
		return "SOURCE_UNAVAILABLE"
	case ErrorTypeLayoutTarget:
		return "LAYOUT_TARGET_MISSING"
	case ErrorTypeSerialization:
		return "SERIALIZATION"
	case ErrorTypeInvalidForm:
		return "INVALID_FORM"
	case ErrorTypeInvalidFont:
		return "INVALID_FONT"
	case ErrorTypeInvalidDefinition:
		return "INVALID_DEFINITION"
	default:
		return "UNKNOWN"
	}
}

// sentinel maps an error type onto the exported sentinel it satisfies, if any.
func (et ErrorType) sentinel() error {
	switch et {
	case ErrorTypeSourceUnavailable:
		return ErrSourceUnavailable
	case ErrorTypeLayoutTarget:
		return ErrLayoutTargetMissing
	case ErrorTypeSerialization:
		return ErrSerialization
	}
	return nil
}

// PDFError describes a failure while handling a PDF document
type PDFError struct {
	Type     ErrorType `json:"type"`
	Message  string    `json:"message"`
	FilePath string    `json:"file_path,omitempty"`
	Field    string    `json:"field,omitempty"`
	Err      error     `json:"-"`
}

// NewPDFError creates a new PDFError
func NewPDFError(errorType ErrorType, message string) *PDFError {
	return &PDFError{Type: errorType, Message: message}
}

// WrapError wraps an existing error into a PDFError
func WrapError(errorType ErrorType, err error) *PDFError {
	e := &PDFError{Type: errorType, Err: err}
	if err != nil {
		e.Message = err.Error()
	}
	return e
}

// WithFile adds the file path to the error
func (e *PDFError) WithFile(filePath string) *PDFError {
	e.FilePath = filePath
	return e
}

// WithField adds the field name to the error
func (e *PDFError) WithField(field string) *PDFError {
	e.Field = field
	return e
}

// Error implements the error interface
func (e *PDFError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Type, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (field %q)", e.Field)
	}
	if e.FilePath != "" {
		msg += ": " + e.FilePath
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *PDFError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match the package sentinels by error type.
func (e *PDFError) Is(target error) bool {
	s := e.Type.sentinel()
	return s != nil && s == target
}

// SourceUnavailable wraps err as an ErrSourceUnavailable failure for path.
func SourceUnavailable(path string, err error) *PDFError {
	return WrapError(ErrorTypeSourceUnavailable, err).WithFile(path)
}

// LayoutTargetMissing reports that field could not be located in path.
func LayoutTargetMissing(path, field string) *PDFError {
	return NewPDFError(ErrorTypeLayoutTarget, "required region not found").WithFile(path).WithField(field)
}
