package convextypes

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Sentinel errors. Every typed error below matches exactly one of these with
// errors.Is.
var (
	// ErrMissingSchemaFile is returned when the schema path does not exist or
	// cannot be resolved.
	ErrMissingSchemaFile = errors.New("convextypes: schema file not found")

	// ErrParsingFailed is returned when a source file fails lexing, parsing or
	// the post-parse semantic checks.
	ErrParsingFailed = errors.New("convextypes: parsing failed")

	// ErrEmptySchemaFile is returned when a source file contains no statements.
	ErrEmptySchemaFile = errors.New("convextypes: empty file")

	// ErrInvalidPath is returned when a path has no usable file name.
	ErrInvalidPath = errors.New("convextypes: invalid path")

	// ErrInvalidUnicode is returned when a path or source is not valid UTF-8.
	ErrInvalidUnicode = errors.New("convextypes: invalid unicode")

	// ErrInvalidSchema is returned when a recognized construct has the wrong
	// shape.
	ErrInvalidSchema = errors.New("convextypes: invalid schema")

	// ErrInvalidType is returned for a validator outside the type vocabulary.
	ErrInvalidType = errors.New("convextypes: invalid type")

	// ErrCircularReference is returned when an object type re-enters itself.
	ErrCircularReference = errors.New("convextypes: circular reference")

	// ErrSerializationFailed is returned when rendering or encoding output fails.
	ErrSerializationFailed = errors.New("convextypes: serialization failed")

	// ErrIO is returned for read and write failures.
	ErrIO = errors.New("convextypes: i/o error")

	// ErrInvalidConfig is returned for an unusable configuration.
	ErrInvalidConfig = errors.New("convextypes: invalid configuration")
)

// ParseError reports a source file that could not be parsed.
type ParseError struct {
	File    string
	Details string
	Pos     lexer.Position
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse %s: %s", e.File, e.Details)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is reports whether target is ErrParsingFailed.
func (e *ParseError) Is(target error) bool { return target == ErrParsingFailed }

// EmptyFileError reports a source file with an empty program.
type EmptyFileError struct {
	File string
}

func (e *EmptyFileError) Error() string {
	return "empty file: " + e.File
}

// Is reports whether target is ErrEmptySchemaFile.
func (e *EmptyFileError) Is(target error) bool { return target == ErrEmptySchemaFile }

// PathError reports an unusable file path.
type PathError struct {
	Path   string
	Reason string
	// Unicode distinguishes encoding failures from structurally bad paths.
	Unicode bool
}

func (e *PathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// Is reports whether target is ErrInvalidPath or ErrInvalidUnicode.
func (e *PathError) Is(target error) bool {
	if e.Unicode {
		return target == ErrInvalidUnicode
	}

	return target == ErrInvalidPath
}

// SchemaError reports a construct with an unexpected shape. Context is the
// dotted location of the failure, such as `users.profile.inner`.
type SchemaError struct {
	Context string
	Details string
	Pos     lexer.Position
}

func (e *SchemaError) Error() string {
	var b strings.Builder

	b.WriteString("invalid schema")

	if e.Context != "" {
		b.WriteString(" at ")
		b.WriteString(e.Context)
	}

	b.WriteString(": ")
	b.WriteString(e.Details)

	if e.Pos.Line > 0 {
		fmt.Fprintf(&b, " (%s)", e.Pos)
	}

	return b.String()
}

// Is reports whether target is ErrInvalidSchema.
func (e *SchemaError) Is(target error) bool { return target == ErrInvalidSchema }

// TypeError reports a validator name outside the vocabulary.
type TypeError struct {
	Found string
	Valid []TypeTag
	Pos   lexer.Position
}

func (e *TypeError) Error() string {
	names := make([]string, len(e.Valid))
	for i, v := range e.Valid {
		names[i] = string(v)
	}

	msg := fmt.Sprintf("invalid type %q, valid types are: %s", e.Found, strings.Join(names, ", "))
	if e.Pos.Line > 0 {
		msg += fmt.Sprintf(" (%s)", e.Pos)
	}

	return msg
}

// Is reports whether target is ErrInvalidType.
func (e *TypeError) Is(target error) bool { return target == ErrInvalidType }

// CircularReferenceError reports an object type that re-enters itself.
type CircularReferenceError struct {
	Path []string
}

func (e *CircularReferenceError) Error() string {
	return "circular reference: " + strings.Join(e.Path, " -> ")
}

// Is reports whether target is ErrCircularReference.
func (e *CircularReferenceError) Is(target error) bool { return target == ErrCircularReference }

// SerializationError reports a failure to render or encode output.
type SerializationError struct {
	Format string
	Err    error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize %s: %v", e.Format, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// Is reports whether target is ErrSerializationFailed.
func (e *SerializationError) Is(target error) bool { return target == ErrSerializationFailed }

// IOError reports a read or write failure on a file.
type IOError struct {
	File string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }
