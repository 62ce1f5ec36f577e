package rekodo

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reoring/rekodo/i18n"
)

// Validator is an immutable unit of value conversion and verification.
// Applying one runs, in order: convert -> isa (type restriction) -> verify.
// Combinators return new Validators and never mutate their operands; the
// left operand's doc/override metadata propagates to the result.
type Validator struct {
	convert  func(any) (any, error)
	isa      []reflect.Type
	verify   func(any) bool
	doc      string
	override bool
}

// Conv returns a Validator whose convert step is fn. Invalid values should be
// rejected by returning an error; nil errors accept the (possibly rewritten)
// value.
func Conv(fn func(any) (any, error)) Validator { return Validator{convert: fn} }

// Verify returns a Validator that accepts values for which pred is true.
func Verify(pred func(any) bool) Validator { return Validator{verify: pred} }

// Isa returns a Validator restricting values to the given concrete types.
// The check runs after any convert step and before any verify step.
func Isa(types ...reflect.Type) Validator { return Validator{isa: types} }

// TypeOf returns the reflect.Type of T, for use with Isa.
func TypeOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }

// Is is shorthand for a restriction to the single concrete type T.
func Is[T any]() Validator { return Isa(TypeOf[T]()) }

// Any returns the pass-through Validator.
func Any() Validator { return Validator{} }

// NewValidator assembles a validator from its steps directly; any step may be
// nil. The isa restriction runs after convert (conversion may legitimately
// change the type) and before verify.
func NewValidator(convert func(any) (any, error), verify func(any) bool, types ...reflect.Type) Validator {
	return Validator{convert: convert, verify: verify, isa: types}
}

// WithDoc attaches documentation to a copy of the validator.
func (a Validator) WithDoc(doc string) Validator {
	a.doc = doc
	return a
}

// Doc returns the attached documentation string.
func (a Validator) Doc() string { return a.doc }

// Overridable marks a copy of the validator as allowed to replace a field of
// the same name inherited from an ancestor schema.
func (a Validator) Overridable() Validator {
	a.override = true
	return a
}

// IsOverridable reports whether the override marker is set.
func (a Validator) IsOverridable() bool { return a.override }

// Apply validates value for the named field and returns the canonical value.
// Failures are Issues whose paths are rebased under "/<field>".
func (a Validator) Apply(value any, field string) (any, error) {
	v, err := a.pipe(value)
	if err != nil {
		return nil, rebaseIssues(field, err)
	}
	return v, nil
}

// pipe runs the validator without field context. Combinators compose against
// pipe so that inner failures carry no path; Apply attaches it once at the top.
func (a Validator) pipe(value any) (any, error) {
	if a.convert != nil {
		v, err := a.convert(value)
		if err != nil {
			if _, ok := AsIssues(err); ok {
				return nil, err
			}
			return nil, Issues{{Code: CodeConvert, Message: err.Error(), Cause: err}}
		}
		value = v
	}
	if len(a.isa) > 0 {
		t := reflect.TypeOf(value)
		ok := false
		for _, want := range a.isa {
			if t == want {
				ok = true
				break
			}
		}
		if !ok {
			return nil, Issues{{
				Code:    CodeInvalidType,
				Message: i18n.T(CodeInvalidType, nil),
				Params:  map[string]string{"expected": typeNames(a.isa), "got": fmt.Sprintf("%T", value)},
			}}
		}
	}
	if a.verify != nil && !a.verify(value) {
		return nil, Issues{{Code: CodeVerifyFailed, Message: i18n.T(CodeVerifyFailed, nil)}}
	}
	return value, nil
}

// derive builds a fresh convert-only Validator carrying a's metadata.
func (a Validator) derive(fn func(any) (any, error)) Validator {
	return Validator{convert: fn, doc: a.doc, override: a.override}
}

// AndThen applies a, then feeds the result into next.
func (a Validator) AndThen(next Validator) Validator {
	d := a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		return next.pipe(v1)
	})
	d.override = a.override || next.override
	if d.doc == "" {
		d.doc = next.doc
	}
	return d
}

// OrElse tries a; on failure it applies alt to the original value.
func (a Validator) OrElse(alt Validator) Validator {
	d := a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err == nil {
			return v1, nil
		}
		return alt.pipe(v)
	})
	d.override = a.override || alt.override
	if d.doc == "" {
		d.doc = alt.doc
	}
	return d
}

// Or tries a; on failure, if the original value equals literal, the literal is
// the canonical result, otherwise the original error is re-raised.
func (a Validator) Or(literal any) Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err == nil {
			return v1, nil
		}
		if equalValues(v, literal) {
			return literal, nil
		}
		return nil, err
	})
}

// ---- ordering comparisons against a fixed bound ----

func (a Validator) bounded(bound any, name string, ok func(int) bool) Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		c, cerr := compareValues(v1, bound)
		if cerr != nil {
			return nil, cerr
		}
		if !ok(c) {
			return nil, Issues{{
				Code:    CodeOutOfRange,
				Message: i18n.T(CodeOutOfRange, nil),
				Params:  map[string]string{"relation": name, "bound": fmt.Sprint(bound), "got": fmt.Sprint(v1)},
			}}
		}
		return v1, nil
	})
}

// LessThan requires the validated value to order strictly below bound.
func (a Validator) LessThan(bound any) Validator {
	return a.bounded(bound, "<", func(c int) bool { return c < 0 })
}

// AtMost requires the validated value to order at or below bound.
func (a Validator) AtMost(bound any) Validator {
	return a.bounded(bound, "<=", func(c int) bool { return c <= 0 })
}

// AtLeast requires the validated value to order at or above bound.
func (a Validator) AtLeast(bound any) Validator {
	return a.bounded(bound, ">=", func(c int) bool { return c >= 0 })
}

// GreaterThan requires the validated value to order strictly above bound.
func (a Validator) GreaterThan(bound any) Validator {
	return a.bounded(bound, ">", func(c int) bool { return c > 0 })
}

// ---- smart match ----

// OneOf requires the validated value to equal one of the given literals.
func (a Validator) OneOf(vals ...any) Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		for _, c := range vals {
			if equalValues(v1, c) {
				return v1, nil
			}
		}
		return nil, Issues{{
			Code:    CodeInvalidEnum,
			Message: i18n.T(CodeInvalidEnum, nil),
			Params:  map[string]string{"got": fmt.Sprint(v1)},
		}}
	})
}

// NoneOf requires the validated value to equal none of the given literals.
func (a Validator) NoneOf(vals ...any) Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		for _, c := range vals {
			if equalValues(v1, c) {
				return nil, Issues{{
					Code:    CodeInvalidEnum,
					Message: i18n.T(CodeInvalidEnum, nil),
					Params:  map[string]string{"got": fmt.Sprint(v1)},
				}}
			}
		}
		return v1, nil
	})
}

// Canon maps the validated value through m to its canonical form.
//
// WARNING: lookups must be idempotent (looking up the result of a previous
// lookup had better return the same thing) since validation may happen more
// than once.
//
//	GOOD: {"a": "A", "b": "B", "A": "A", "B": "B"}
//
//	BAD:  {"a": "A", "b": "B"}  // fails on repeated validation since "A" and "B" are not keys
func (a Validator) Canon(m map[any]any) Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		for k, mapped := range m {
			if equalValues(v1, k) {
				return mapped, nil
			}
		}
		return nil, Issues{{
			Code:    CodeInvalidEnum,
			Message: i18n.T(CodeInvalidEnum, nil),
			Params:  map[string]string{"got": fmt.Sprint(v1)},
		}}
	})
}

// ---- numeric unary ops ----

// Mod reduces the validated value modulo n. Integers stay integral; floats use
// a euclidean-style remainder matching integer semantics for positive n.
func (a Validator) Mod(n int64) Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		i, ok := asInt(v1)
		if !ok {
			f, okf := asFloat(v1)
			if !okf {
				return nil, numericIssue(v1)
			}
			r := f - float64(n)*math.Floor(f/float64(n))
			return r, nil
		}
		r := i % n
		if r < 0 {
			r += n
		}
		return r, nil
	})
}

// Pos asserts that the validated value is numeric and passes it through.
func (a Validator) Pos() Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		if _, ok := asFloat(v1); !ok {
			return nil, numericIssue(v1)
		}
		return v1, nil
	})
}

// Abs replaces the validated value with its absolute value.
func (a Validator) Abs() Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		if i, ok := asInt(v1); ok {
			if i < 0 {
				i = -i
			}
			return i, nil
		}
		f, ok := asFloat(v1)
		if !ok {
			return nil, numericIssue(v1)
		}
		if f < 0 {
			f = -f
		}
		return f, nil
	})
}

// ---- coercion helpers ----

// ToFloat coerces the validated value to float64.
func (a Validator) ToFloat() Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		f, ok := coerceFloat(v1)
		if !ok {
			return nil, numericIssue(v1)
		}
		return f, nil
	})
}

// ToInt coerces the validated value to int64. Floats truncate toward zero;
// strings must parse as integers.
func (a Validator) ToInt() Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		i, ok := coerceInt(v1)
		if !ok {
			return nil, numericIssue(v1)
		}
		return i, nil
	})
}

// ToComplex coerces the validated value to complex128.
func (a Validator) ToComplex() Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		c, ok := coerceComplex(v1)
		if !ok {
			return nil, numericIssue(v1)
		}
		return c, nil
	})
}

// ---- capability-conditional transforms ----
//
// These apply an operation only when the validated value supports it and pass
// every other value through unchanged. A non-string value given to Strip is
// not an error; it simply skips the transform.

func (a Validator) mapIfCapable(fn func(any) (any, bool)) Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		if out, ok := fn(v1); ok {
			return out, nil
		}
		return v1, nil
	})
}

// Strip trims cutset (whitespace when empty) from both ends of string and
// []byte values.
func (a Validator) Strip(cutset string) Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		switch s := v.(type) {
		case string:
			if cutset == "" {
				return strings.TrimSpace(s), true
			}
			return strings.Trim(s, cutset), true
		case []byte:
			if cutset == "" {
				return []byte(strings.TrimSpace(string(s))), true
			}
			return []byte(strings.Trim(string(s), cutset)), true
		}
		return nil, false
	})
}

// RStrip trims cutset (whitespace when empty) from the right end.
func (a Validator) RStrip(cutset string) Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		if s, ok := v.(string); ok {
			if cutset == "" {
				return strings.TrimRightFunc(s, unicode.IsSpace), true
			}
			return strings.TrimRight(s, cutset), true
		}
		return nil, false
	})
}

// LStrip trims cutset (whitespace when empty) from the left end.
func (a Validator) LStrip(cutset string) Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		if s, ok := v.(string); ok {
			if cutset == "" {
				return strings.TrimLeftFunc(s, unicode.IsSpace), true
			}
			return strings.TrimLeft(s, cutset), true
		}
		return nil, false
	})
}

// EncodeText converts string values to their UTF-8 byte representation.
// Values that are not strings (including already-encoded []byte) pass through.
func (a Validator) EncodeText() Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		if s, ok := v.(string); ok {
			return []byte(s), true
		}
		return nil, false
	})
}

// DecodeText converts []byte values to string, rejecting invalid UTF-8.
// Values that are not []byte (including already-decoded strings) pass through.
func (a Validator) DecodeText() Validator {
	return a.derive(func(v any) (any, error) {
		v1, err := a.pipe(v)
		if err != nil {
			return nil, err
		}
		b, ok := v1.([]byte)
		if !ok {
			return v1, nil
		}
		if !utf8.Valid(b) {
			return nil, Issues{{Code: CodeConvert, Message: "invalid UTF-8 sequence"}}
		}
		return string(b), nil
	})
}

// Lower lower-cases string values.
func (a Validator) Lower() Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		if s, ok := v.(string); ok {
			return strings.ToLower(s), true
		}
		return nil, false
	})
}

// Upper upper-cases string values.
func (a Validator) Upper() Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		if s, ok := v.(string); ok {
			return strings.ToUpper(s), true
		}
		return nil, false
	})
}

// Title title-cases string values using Unicode casing rules.
func (a Validator) Title() Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		if s, ok := v.(string); ok {
			return cases.Title(language.Und).String(s), true
		}
		return nil, false
	})
}

// Capitalize upper-cases the first rune and lower-cases the rest.
func (a Validator) Capitalize() Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		if s == "" {
			return s, true
		}
		r, size := utf8.DecodeRuneInString(s)
		return string(unicode.ToUpper(r)) + strings.ToLower(s[size:]), true
	})
}

// Casefold applies Unicode case folding to string values, suitable for
// caseless matching.
func (a Validator) Casefold() Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		if s, ok := v.(string); ok {
			return cases.Fold().String(s), true
		}
		return nil, false
	})
}

// Split splits string values into a []string. An empty sep splits on
// whitespace runs (maxSplit is ignored in that mode); maxSplit < 0 means no
// limit.
func (a Validator) Split(sep string, maxSplit int) Validator {
	return a.mapIfCapable(func(v any) (any, bool) {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		if sep == "" {
			return strings.Fields(s), true
		}
		if maxSplit < 0 {
			return strings.Split(s, sep), true
		}
		return strings.SplitN(s, sep, maxSplit+1), true
	})
}

// ---- primitive conveniences ----

// Int returns a strict integer validator: integral values and integral
// strings canonicalize to int64; fractional input is rejected.
func Int() Validator {
	return Conv(func(v any) (any, error) {
		if i, ok := asInt(v); ok {
			return i, nil
		}
		return nil, fmt.Errorf("cannot interpret %T as integer", v)
	})
}

// Float returns a numeric validator canonicalizing to float64; numeric strings
// are accepted.
func Float() Validator {
	return Conv(func(v any) (any, error) {
		if f, ok := coerceFloat(v); ok {
			return f, nil
		}
		return nil, fmt.Errorf("cannot interpret %T as float", v)
	})
}

// String restricts to string values.
func String() Validator { return Is[string]() }

// Bool restricts to bool values.
func Bool() Validator { return Is[bool]() }

// ---- helpers ----

func rebaseIssues(field string, err error) error {
	base := "/" + field
	iss, ok := AsIssues(err)
	if !ok {
		return Issues{{Path: base, Code: CodeParseError, Message: err.Error(), Cause: err}}
	}
	out := make(Issues, 0, len(iss))
	for _, it := range iss {
		p := it.Path
		switch {
		case p == "" || p == "/":
			p = base
		case p[0] == '/':
			p = base + p
		default:
			p = base + "/" + p
		}
		it.Path = p
		out = append(out, it)
	}
	return out
}

func numericIssue(v any) Issues {
	return Issues{{
		Code:    CodeInvalidType,
		Message: i18n.T(CodeInvalidType, nil),
		Params:  map[string]string{"expected": "number", "got": fmt.Sprintf("%T", v)},
	}}
}

func typeNames(ts []reflect.Type) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		names[i] = t.String()
	}
	return strings.Join(names, "|")
}
