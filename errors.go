package rekodo

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType      = "invalid_type"
	CodeConvert          = "convert_error"
	CodeVerifyFailed     = "verify_failed"
	CodeOutOfRange       = "out_of_range"
	CodeInvalidEnum      = "invalid_enum"
	CodeUnknownKey       = "unknown_key"
	CodeUndefinedField   = "undefined_field"
	CodeClassMismatch    = "class_mismatch"
	CodeMalformedPayload = "malformed_payload"
	CodeParseError       = "parse_error"
	CodeEncodeError      = "encode_error"
)

// Issue represents a single validation entry.
type Issue struct {
	Path    string // Field path (for example: /subject).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, expected values, etc.
	Cause   error  // Optional: underlying error.
	// Params carries structured parameters (e.g., {"bound":"200", "got":"201"})
	// for i18n and observability.
	Params map[string]string
}

// Issues is a collection of validation errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. invalid_type at /subject
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries at least one Issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// ErrImmutable indicates a write was attempted on a frozen Record.
var ErrImmutable = errors.New("rekodo: may not modify, record is immutable")

// DuplicateFieldError is returned by SchemaBuilder.Build when a field
// re-declares a name already present in an ancestor schema without the
// override marker.
type DuplicateFieldError struct {
	Field  string
	Schema string // Name of the schema that already declares the field.
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("rekodo: field %q already defined in schema %q", e.Field, e.Schema)
}

// RegistrationError is returned when a type or tag is registered twice
// without the Overwrite option.
type RegistrationError struct {
	Tag  string
	Type reflect.Type // Set when the conflict is on the type side.
}

func (e *RegistrationError) Error() string {
	if e.Type != nil {
		return fmt.Sprintf("rekodo: encoder for type %v already registered", e.Type)
	}
	return fmt.Sprintf("rekodo: hook for tag %q already registered", e.Tag)
}

func singleIssue(path, code, msg string) Issues {
	return AppendIssues(nil, Issue{Path: path, Code: code, Message: msg})
}
