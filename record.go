package rekodo

import (
	"fmt"
	"sort"

	"github.com/reoring/rekodo/i18n"
)

// Record is an instantiable value object: a key/value backing store validated
// against a frozen ClassSchema, plus a mutability flag. Records are not safe
// for concurrent use.
type Record struct {
	schema  *ClassSchema
	mutable bool
	store   map[string]any
}

// NewRecord constructs a mutable, empty Record and seeds eager defaults for
// every field whose key is absent.
func NewRecord(s *ClassSchema) *Record {
	r := &Record{schema: s, mutable: true, store: map[string]any{}}
	for _, name := range s.fieldNames {
		f := s.fields[name]
		if f.hasDefault {
			if _, ok := r.store[name]; !ok {
				r.store[name] = f.DefaultValue()
			}
		}
	}
	return r
}

// NewRecordFrom constructs a Record and loads data through the validation
// pipeline with class verification off.
func NewRecordFrom(s *ClassSchema, data map[string]any) (*Record, error) {
	r := NewRecord(s)
	if err := r.LoadData(data, LoadOpt{Verify: VerifyOff}); err != nil {
		return nil, err
	}
	return r, nil
}

// Schema returns the Record's frozen ClassSchema.
func (r *Record) Schema() *ClassSchema { return r.schema }

// ---- mutability ----

// IsMutable reports whether writes are currently permitted.
func (r *Record) IsMutable() bool { return r.mutable }

// Freeze forbids all subsequent writes. Reads stay permitted.
func (r *Record) Freeze() *Record {
	r.mutable = false
	return r
}

// Unfreeze re-enables writes.
func (r *Record) Unfreeze() *Record {
	r.mutable = true
	return r
}

// AssertMutable returns ErrImmutable when the Record is frozen.
func (r *Record) AssertMutable() error {
	if !r.mutable {
		return ErrImmutable
	}
	return nil
}

// ---- mapping surface ----

// Get returns the stored value for key, or dflt when absent. It never
// validates and never fails.
func (r *Record) Get(key string, dflt any) any {
	if v, ok := r.store[key]; ok {
		return v
	}
	return dflt
}

// Has reports whether key is present in the store.
func (r *Record) Has(key string) bool {
	_, ok := r.store[key]
	return ok
}

// Len returns the number of stored keys.
func (r *Record) Len() int { return len(r.store) }

// Keys returns the stored keys in sorted order.
func (r *Record) Keys() []string {
	out := make([]string, 0, len(r.store))
	for k := range r.store {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Store returns a shallow copy of the backing store.
func (r *Record) Store() map[string]any { return copyStore(r.store) }

func (r *Record) String() string { return fmt.Sprint(r.store) }

// ---- validated writes ----

// Set validates value through the field's validator and applies it.
func (r *Record) Set(key string, value any) error {
	return r.SetMany(nil, key, value)
}

// SetMany validates and applies keyword-style pairs plus positional pairs.
// Positional pairs take precedence over same-named keyword-style pairs.
func (r *Record) SetMany(kw map[string]any, pairs ...any) error {
	if err := r.AssertMutable(); err != nil {
		return err
	}
	if len(pairs)%2 != 0 {
		return singleIssue("/", CodeParseError, "SetMany requires an even number of positional arguments")
	}
	merged := make(map[string]any, len(kw)+len(pairs)/2)
	for k, v := range kw {
		merged[k] = v
	}
	for i := 0; i < len(pairs); i += 2 {
		k, ok := pairs[i].(string)
		if !ok {
			return singleIssue("/", CodeParseError, fmt.Sprintf("SetMany key must be a string, got %T", pairs[i]))
		}
		merged[k] = pairs[i+1]
	}
	out, err := r.ValidateUpdate(merged)
	if err != nil {
		return err
	}
	for k, v := range out {
		r.store[k] = v
	}
	return nil
}

// SetDefault behaves as Set when key is absent; when present it returns the
// stored value and never validates the proposed one.
func (r *Record) SetDefault(key string, value any) (any, error) {
	if err := r.AssertMutable(); err != nil {
		return nil, err
	}
	if _, ok := r.store[key]; !ok {
		if err := r.Set(key, value); err != nil {
			return nil, err
		}
	}
	return r.store[key], nil
}

// Update bulk-merges mappings into the store without validation. It is an
// explicit escape hatch; prefer Set/SetMany.
func (r *Record) Update(maps ...map[string]any) error {
	if err := r.AssertMutable(); err != nil {
		return err
	}
	for _, m := range maps {
		for k, v := range m {
			r.store[k] = v
		}
	}
	return nil
}

// Pop removes key and returns its value, or dflt when absent.
func (r *Record) Pop(key string, dflt any) (any, error) {
	if err := r.AssertMutable(); err != nil {
		return nil, err
	}
	if v, ok := r.store[key]; ok {
		delete(r.store, key)
		return v, nil
	}
	return dflt, nil
}

// ---- field accessors (generated at schema build time) ----

// Field resolves a declared field: stored value, else eager default (cached),
// else lazy builder (cached once per instance), else an undefined-field error.
func (r *Record) Field(name string) (any, error) {
	f, ok := r.schema.fields[name]
	if !ok {
		return nil, singleIssue("/"+name, CodeUndefinedField, i18n.T(CodeUndefinedField, nil))
	}
	return f.accessor.Get(r)
}

// SetField writes the value raw, without validation. Direct field writes
// bypass validation; validation happens in Set and LoadData.
func (r *Record) SetField(name string, value any) error {
	f, ok := r.schema.fields[name]
	if !ok {
		return singleIssue("/"+name, CodeUndefinedField, i18n.T(CodeUndefinedField, nil))
	}
	return f.accessor.Set(r, value)
}

// DeleteField removes a declared field's key from the store.
func (r *Record) DeleteField(name string) error {
	f, ok := r.schema.fields[name]
	if !ok {
		return singleIssue("/"+name, CodeUndefinedField, i18n.T(CodeUndefinedField, nil))
	}
	return f.accessor.Del(r)
}

// FieldValueOK checks a single value against the field's validator,
// independently of any other field.
func (r *Record) FieldValueOK(name string, value any) bool {
	f, ok := r.schema.fields[name]
	if !ok {
		return false
	}
	_, err := f.Validator.Apply(value, name)
	return err == nil
}

// ---- validation pipeline ----

// ValidateData builds a brand-new canonical mapping from in: every declared
// field validates its input value when present, else its eager default is
// back-filled; unknown keys follow the key policy. The Record itself is never
// mutated; the first violation aborts with no partial result.
func (r *Record) ValidateData(in map[string]any, opts ...LoadOpt) (map[string]any, error) {
	policy := r.resolvePolicy(lastLoadOpt(opts).Policy)
	out := map[string]any{}
	if policy == KeySloppy {
		out = copyStore(in)
	}
	for _, name := range r.schema.fieldNames {
		f := r.schema.fields[name]
		if v, ok := in[name]; ok {
			cv, err := f.Validator.Apply(v, name)
			if err != nil {
				return nil, err
			}
			out[name] = cv
		} else if f.hasDefault {
			out[name] = f.DefaultValue()
		}
	}
	if policy == KeyStrict {
		if err := r.firstUnknownKey(in); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ValidateUpdate is ValidateData restricted to keys actually present in in:
// no default back-filling.
func (r *Record) ValidateUpdate(in map[string]any, opts ...LoadOpt) (map[string]any, error) {
	policy := r.resolvePolicy(lastLoadOpt(opts).Policy)
	out := map[string]any{}
	if policy == KeySloppy {
		out = copyStore(in)
	}
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f, ok := r.schema.fields[k]
		if !ok {
			if policy == KeyStrict {
				return nil, unknownKeyIssue(k, r.schema.tag)
			}
			continue // loose drops; sloppy already copied
		}
		cv, err := f.Validator.Apply(in[k], k)
		if err != nil {
			return nil, err
		}
		out[k] = cv
	}
	return out, nil
}

// LoadData replaces the Record's entire backing store with the validated form
// of data. It accepts a plain mapping or another *Record, unwraps a single-key
// class-tagged wrapper or a flat "__class__" marker, verifies the tag unless
// verification is disabled, and runs ValidateData on the remainder.
func (r *Record) LoadData(data any, opts ...LoadOpt) error {
	if err := r.AssertMutable(); err != nil {
		return err
	}
	opt := lastLoadOpt(opts)
	verify := r.schema.verifyClass
	switch opt.Verify {
	case VerifyOn:
		verify = true
	case VerifyOff:
		verify = false
	}

	var m map[string]any
	switch d := data.(type) {
	case *Record:
		if d.schema == r.schema {
			verify = false
		}
		m = copyStore(d.store)
	case map[string]any:
		m = copyStore(d)
	default:
		return singleIssue("/", CodeMalformedPayload, i18n.T(CodeMalformedPayload, nil))
	}

	// Single-key wrapper: when the sole key is our own tag, pop out the inner
	// mapping and bypass the class verification step.
	if len(m) == 1 {
		for k, inner := range m {
			if k == r.schema.tag {
				im, ok := inner.(map[string]any)
				if !ok {
					return singleIssue("/", CodeMalformedPayload, i18n.T(CodeMalformedPayload, nil))
				}
				verify = false
				m = copyStore(im)
			}
		}
	}

	if verify {
		got, _ := m["__class__"].(string)
		if got != r.schema.tag {
			return Issues{{
				Path:    "/",
				Code:    CodeClassMismatch,
				Message: i18n.T(CodeClassMismatch, nil),
				Params:  map[string]string{"expected": r.schema.tag, "got": got},
			}}
		}
	}
	delete(m, "__class__")

	out, err := r.ValidateData(m, LoadOpt{Policy: opt.Policy})
	if err != nil {
		return err
	}
	r.store = out
	return nil
}

// ---- helpers ----

func (r *Record) resolvePolicy(p KeyPolicy) KeyPolicy {
	if p == PolicyDefault {
		return r.schema.policy
	}
	return p
}

// firstUnknownKey reports the first (in sorted order) key of in that does not
// correspond to a declared field.
func (r *Record) firstUnknownKey(in map[string]any) error {
	keys := make([]string, 0, len(in))
	for k := range in {
		if _, ok := r.schema.fields[k]; !ok {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)
	return unknownKeyIssue(keys[0], r.schema.tag)
}

func unknownKeyIssue(key, tag string) Issues {
	return Issues{{
		Path:    "/" + key,
		Code:    CodeUnknownKey,
		Message: i18n.T(CodeUnknownKey, nil),
		Params:  map[string]string{"key": key, "schema": tag},
	}}
}

func copyStore(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
