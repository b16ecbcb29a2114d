package tabula

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrUnsupportedTopLevelShape indicates the top-level value is not object-shaped.
	ErrUnsupportedTopLevelShape = errors.New("unsupported top-level shape")

	// ErrUnsupportedLeafShape indicates a value that should be scalar is composite.
	ErrUnsupportedLeafShape = errors.New("unsupported leaf shape")

	// ErrTypeConflict indicates a prefix is addressed as more than one container kind.
	ErrTypeConflict = errors.New("type conflict")

	// ErrMissingField indicates a required key or column is absent.
	ErrMissingField = errors.New("missing field")

	// ErrUnsortedKeys indicates sibling index keys are not in ascending order.
	ErrUnsortedKeys = errors.New("keys are not sorted")

	// ErrInvalidArrayIndex indicates array indices are not contiguous from zero
	// or fall outside the target's bounds.
	ErrInvalidArrayIndex = errors.New("invalid array index")

	// ErrAmbiguousEnum indicates an enum prefix has no leaf and not exactly one child.
	ErrAmbiguousEnum = errors.New("ambiguous enum encoding")

	// ErrScalarParse indicates text does not parse as the requested scalar kind.
	ErrScalarParse = errors.New("scalar parse failed")

	// ErrExtraFields indicates a written item has keys beyond the established header.
	ErrExtraFields = errors.New("extra fields compared to header")

	// ErrUnsupportedType indicates a Go type that has no flat shape.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrNoHeaders indicates the input has no header row.
	ErrNoHeaders = errors.New("no header row")

	// ErrNoCodec indicates an operation needs a codec and none was configured.
	ErrNoCodec = errors.New("no codec configured")

	// ErrUnmarshal indicates the codec failed to unmarshal input data.
	ErrUnmarshal = errors.New("unmarshal failed")

	// ErrMarshal indicates the codec failed to marshal output data.
	ErrMarshal = errors.New("marshal failed")
)

// TopLevelError reports a top-level value that is not object-shaped.
type TopLevelError struct {
	Found string // Shape or kind that was found
}

func (e *TopLevelError) Error() string {
	return fmt.Sprintf("%s: expected an object, found %s", ErrUnsupportedTopLevelShape, e.Found)
}

func (e *TopLevelError) Unwrap() error {
	return ErrUnsupportedTopLevelShape
}

// LeafShapeError reports a composite value where a scalar was required.
type LeafShapeError struct {
	Key  string // Flat key holding the value
	Kind Kind   // Kind that was found
}

func (e *LeafShapeError) Error() string {
	return fmt.Sprintf("%s for key %q: expected string, bool, number or null, found %s",
		ErrUnsupportedLeafShape, e.Key, e.Kind)
}

func (e *LeafShapeError) Unwrap() error {
	return ErrUnsupportedLeafShape
}

// ConflictError reports a path whose prefix needs two container kinds.
type ConflictError struct {
	Path  string // Offending flat key
	At    string // Prefix where the conflict was detected
	Want  Kind   // Kind required by the path
	Found Kind   // Kind already present
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s at %q (key %q): found %s, expected %s",
		ErrTypeConflict, e.At, e.Path, e.Found, e.Want)
}

func (e *ConflictError) Unwrap() error {
	return ErrTypeConflict
}

// PathError wraps a sentinel error with the flat prefix it occurred at.
type PathError struct {
	Err    error  // Underlying sentinel error
	Path   string // Encoded prefix
	Detail string // Optional explanation
}

func (e *PathError) Error() string {
	msg := e.Err.Error()
	if e.Path != "" {
		msg = fmt.Sprintf("%s at %q", msg, e.Path)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ColumnError reports a row that is shorter than the header.
type ColumnError struct {
	Index  int    // Column position
	Name   string // Header name
	Record int    // Zero-based data record number
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s %q (idx: %d) for record number %d", ErrMissingField, e.Name, e.Index, e.Record)
}

func (e *ColumnError) Unwrap() error {
	return ErrMissingField
}

// EnumError reports an enum prefix that does not name exactly one variant.
type EnumError struct {
	Prefix     string
	FieldCount int
}

func (e *EnumError) Error() string {
	return fmt.Sprintf("%s: expected enum at %q, found %d fields", ErrAmbiguousEnum, e.Prefix, e.FieldCount)
}

func (e *EnumError) Unwrap() error {
	return ErrAmbiguousEnum
}

// ParseError reports text that does not parse as the requested scalar kind.
type ParseError struct {
	Path  string // Encoded key
	Kind  string // Expected scalar kind
	Text  string // Raw text
	Cause error  // Parser error, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("%s: expected %s, got %q", ErrScalarParse, e.Kind, e.Text)
	if e.Path != "" {
		msg = fmt.Sprintf("field %s: %s", e.Path, msg)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return ErrScalarParse
}

// ExtraFieldsError reports keys that are not part of the established header.
type ExtraFieldsError struct {
	Keys []string
}

func (e *ExtraFieldsError) Error() string {
	return fmt.Sprintf("%s: %s", ErrExtraFields, strings.Join(e.Keys, ", "))
}

func (e *ExtraFieldsError) Unwrap() error {
	return ErrExtraFields
}

// RecordError attaches a record number to a per-record failure.
type RecordError struct {
	Record int // Zero-based data record number
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record #%d: %v", e.Record, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// CodecError represents a marshal/unmarshal error.
type CodecError struct {
	Err   error // Underlying sentinel error (ErrMarshal, ErrUnmarshal)
	Cause error // Original error from the codec
}

func (e *CodecError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

func (e *CodecError) Unwrap() error {
	return e.Err
}

// newPathError creates a PathError for prefix-scoped failures.
func newPathError(sentinel error, path, detail string) error {
	return &PathError{
		Err:    sentinel,
		Path:   path,
		Detail: detail,
	}
}

// newCodecError creates a CodecError for marshal/unmarshal failures.
func newCodecError(sentinel error, cause error) error {
	return &CodecError{
		Err:   sentinel,
		Cause: cause,
	}
}
