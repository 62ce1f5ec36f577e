package rekodo

import (
	"reflect"
	"sort"

	"github.com/reoring/rekodo/i18n"
)

// Accessor is a get/set/delete triple bound to a Record's backing store.
// Custom accessors replace the generated ones for a field.
type Accessor struct {
	Get func(r *Record) (any, error)
	Set func(r *Record, v any) error
	Del func(r *Record) error
}

// FieldDef describes one declared field: its validator, optional eager
// default, optional lazy builder, and accessor behavior.
type FieldDef struct {
	Name      string
	Validator Validator

	def        any // literal, or func() any producer
	hasDefault bool
	builder    func() any
	accessor   *Accessor
	override   bool
	doc        string
}

// HasDefault reports whether an eager default is defined.
func (f FieldDef) HasDefault() bool { return f.hasDefault }

// DefaultValue materializes the eager default, invoking a producer function
// when one was supplied.
func (f FieldDef) DefaultValue() any {
	if fn, ok := f.def.(func() any); ok {
		return fn()
	}
	return f.def
}

// HasBuilder reports whether a lazy builder is defined.
func (f FieldDef) HasBuilder() bool { return f.builder != nil }

// Doc returns the field documentation.
func (f FieldDef) Doc() string { return f.doc }

// ClassSchema is the frozen per-type set of field definitions plus
// serialization policy. It is created once by SchemaBuilder.Build and never
// modified afterwards.
type ClassSchema struct {
	name       string
	tag        string
	fields     map[string]FieldDef
	fieldNames []string // sorted, for deterministic validation order

	encoders map[reflect.Type]EncodeFunc // local encoder table; output used as-is
	hooks    map[string]DecodeFunc       // local hook table, keyed by tag

	includeClass bool
	verifyClass  bool
	policy       KeyPolicy
	style        TagStyle
}

// Name returns the schema's qualified name.
func (s *ClassSchema) Name() string { return s.name }

// Tag returns the canonical serialization tag.
func (s *ClassSchema) Tag() string { return s.tag }

// FieldNames returns the declared field names in sorted order.
func (s *ClassSchema) FieldNames() []string {
	out := make([]string, len(s.fieldNames))
	copy(out, s.fieldNames)
	return out
}

// Field returns the definition for name.
func (s *ClassSchema) Field(name string) (FieldDef, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// SchemaBuilder assembles a ClassSchema. It is meant to run once, at program
// start, typically from a package-level variable or init function.
type SchemaBuilder struct {
	name   string
	tag    string
	parent *ClassSchema

	fields   map[string]FieldDef
	encoders map[reflect.Type]EncodeFunc
	hooks    map[string]DecodeFunc

	includeClass bool
	verifyClass  bool
	policy       KeyPolicy
	style        TagStyle
	noRegister   bool
}

// NewSchema creates a builder with safe defaults: class tag included and
// verified, strict key policy, flat tag style, global registration on Build.
// The canonical tag derives from name as "__<name>__" unless Tag overrides it.
func NewSchema(name string) *SchemaBuilder {
	return &SchemaBuilder{
		name:         name,
		fields:       map[string]FieldDef{},
		encoders:     map[reflect.Type]EncodeFunc{},
		hooks:        map[string]DecodeFunc{},
		includeClass: true,
		verifyClass:  true,
		policy:       KeyStrict,
		style:        TagFlat,
	}
}

// Extends merges the parent's fields, encoder table, and hook table into the
// schema under construction. Re-declaring a parent field without an override
// marker fails Build.
func (b *SchemaBuilder) Extends(parent *ClassSchema) *SchemaBuilder {
	b.parent = parent
	return b
}

type fieldStep struct {
	b    *SchemaBuilder
	name string
}

// Field registers a field with its validator and returns a step for per-field
// options.
func (b *SchemaBuilder) Field(name string, v Validator) *fieldStep {
	b.fields[name] = FieldDef{Name: name, Validator: v, doc: v.Doc()}
	return &fieldStep{b: b, name: name}
}

// Default sets the eager default: a literal, or a func() any producer invoked
// at construction time when the key is absent.
func (f *fieldStep) Default(v any) *fieldStep {
	fd := f.b.fields[f.name]
	fd.def = v
	fd.hasDefault = true
	f.b.fields[f.name] = fd
	return f
}

// Builder sets the lazy builder, invoked once per instance on first read when
// the key is still absent and no eager default exists.
func (f *fieldStep) Builder(fn func() any) *fieldStep {
	fd := f.b.fields[f.name]
	fd.builder = fn
	f.b.fields[f.name] = fd
	return f
}

// Override allows this field to replace a same-named field inherited from the
// parent schema.
func (f *fieldStep) Override() *fieldStep {
	fd := f.b.fields[f.name]
	fd.override = true
	f.b.fields[f.name] = fd
	return f
}

// Accessor installs a custom get/set/delete triple in place of the generated
// store accessors. Nil members fall back to the generated behavior.
func (f *fieldStep) Accessor(get func(*Record) (any, error), set func(*Record, any) error, del func(*Record) error) *fieldStep {
	fd := f.b.fields[f.name]
	fd.accessor = &Accessor{Get: get, Set: set, Del: del}
	f.b.fields[f.name] = fd
	return f
}

// Doc attaches documentation to the field.
func (f *fieldStep) Doc(doc string) *fieldStep {
	fd := f.b.fields[f.name]
	fd.doc = doc
	f.b.fields[f.name] = fd
	return f
}

// Builder-proxy methods so field options chain naturally into the next field
// or the final Build.
func (f *fieldStep) Field(name string, v Validator) *fieldStep { return f.b.Field(name, v) }
func (f *fieldStep) Encoder(t reflect.Type, fn EncodeFunc) *SchemaBuilder {
	return f.b.Encoder(t, fn)
}
func (f *fieldStep) Hook(tag string, fn DecodeFunc) *SchemaBuilder { return f.b.Hook(tag, fn) }
func (f *fieldStep) Tag(tag string) *SchemaBuilder                 { return f.b.Tag(tag) }
func (f *fieldStep) IncludeClassTag(on bool) *SchemaBuilder        { return f.b.IncludeClassTag(on) }
func (f *fieldStep) VerifyClassTag(on bool) *SchemaBuilder         { return f.b.VerifyClassTag(on) }
func (f *fieldStep) KeyPolicy(p KeyPolicy) *SchemaBuilder          { return f.b.KeyPolicy(p) }
func (f *fieldStep) TagStyle(s TagStyle) *SchemaBuilder            { return f.b.TagStyle(s) }
func (f *fieldStep) NoRegister() *SchemaBuilder                    { return f.b.NoRegister() }
func (f *fieldStep) Build() (*ClassSchema, error)                  { return f.b.Build() }
func (f *fieldStep) MustBuild() *ClassSchema                       { return f.b.MustBuild() }

// Encoder adds a local encoder for t. Local encoders shadow the global
// registry and their output is used as-is (no tag wrapping).
func (b *SchemaBuilder) Encoder(t reflect.Type, fn EncodeFunc) *SchemaBuilder {
	b.encoders[t] = fn
	return b
}

// Hook adds a local decode hook for tag, shadowing the global registry.
func (b *SchemaBuilder) Hook(tag string, fn DecodeFunc) *SchemaBuilder {
	b.hooks[tag] = fn
	return b
}

// Tag overrides the derived canonical tag with a literal.
func (b *SchemaBuilder) Tag(tag string) *SchemaBuilder {
	b.tag = tag
	return b
}

// IncludeClassTag controls whether encode emits a class tag at all.
func (b *SchemaBuilder) IncludeClassTag(on bool) *SchemaBuilder {
	b.includeClass = on
	return b
}

// VerifyClassTag controls whether decode requires and checks the class tag.
func (b *SchemaBuilder) VerifyClassTag(on bool) *SchemaBuilder {
	b.verifyClass = on
	return b
}

// KeyPolicy sets the default key-strictness policy for this schema.
func (b *SchemaBuilder) KeyPolicy(p KeyPolicy) *SchemaBuilder {
	if p == PolicyDefault {
		p = KeyStrict
	}
	b.policy = p
	return b
}

// TagStyle sets the default class-tag style for this schema.
func (b *SchemaBuilder) TagStyle(s TagStyle) *SchemaBuilder {
	if s == TagDefault {
		s = TagFlat
	}
	b.style = s
	return b
}

// NoRegister suppresses global registry registration on Build.
func (b *SchemaBuilder) NoRegister() *SchemaBuilder {
	b.noRegister = true
	return b
}

// Build merges inherited fields, freezes the ClassSchema, generates field
// accessors, and (unless suppressed) registers the schema's tag globally.
func (b *SchemaBuilder) Build() (*ClassSchema, error) {
	fields := map[string]FieldDef{}
	encoders := map[reflect.Type]EncodeFunc{}
	hooks := map[string]DecodeFunc{}
	if b.parent != nil {
		for k, v := range b.parent.fields {
			fields[k] = v
		}
		for k, v := range b.parent.encoders {
			encoders[k] = v
		}
		for k, v := range b.parent.hooks {
			hooks[k] = v
		}
	}

	declared := make([]string, 0, len(b.fields))
	for name := range b.fields {
		declared = append(declared, name)
	}
	sort.Strings(declared)
	for _, name := range declared {
		f := b.fields[name]
		if b.parent != nil {
			if _, exists := b.parent.fields[name]; exists && !f.override && !f.Validator.IsOverridable() {
				return nil, &DuplicateFieldError{Field: name, Schema: b.parent.name}
			}
		}
		fields[name] = f
	}

	// Child tables silently override inherited entries.
	for k, v := range b.encoders {
		encoders[k] = v
	}
	for k, v := range b.hooks {
		hooks[k] = v
	}

	tag := b.tag
	if tag == "" {
		tag = "__" + b.name + "__"
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	s := &ClassSchema{
		name:         b.name,
		tag:          tag,
		fields:       fields,
		fieldNames:   names,
		encoders:     encoders,
		hooks:        hooks,
		includeClass: b.includeClass,
		verifyClass:  b.verifyClass,
		policy:       b.policy,
		style:        b.style,
	}

	// Generate store-backed accessors; nil members of a custom triple fall
	// back to the generated behavior.
	for name, f := range s.fields {
		gen := generatedAccessor(name, f)
		if f.accessor == nil {
			f.accessor = &gen
		} else {
			acc := *f.accessor
			if acc.Get == nil {
				acc.Get = gen.Get
			}
			if acc.Set == nil {
				acc.Set = gen.Set
			}
			if acc.Del == nil {
				acc.Del = gen.Del
			}
			f.accessor = &acc
		}
		s.fields[name] = f
	}

	if !b.noRegister {
		if err := registerSchema(s, false); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// MustBuild is Build, panicking on error. Intended for package-level schema
// variables.
func (b *SchemaBuilder) MustBuild() *ClassSchema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// generatedAccessor returns the default store-backed accessor triple for a
// field. Reads resolve stored value, then eager default (cached), then lazy
// builder (cached once); raw writes require mutability and skip validation.
func generatedAccessor(name string, f FieldDef) Accessor {
	return Accessor{
		Get: func(r *Record) (any, error) {
			if v, ok := r.store[name]; ok {
				return v, nil
			}
			// default happens before builder
			if f.hasDefault {
				v := f.DefaultValue()
				r.store[name] = v
				return v, nil
			}
			if f.builder != nil {
				v := f.builder()
				r.store[name] = v
				return v, nil
			}
			return nil, singleIssue("/"+name, CodeUndefinedField, i18n.T(CodeUndefinedField, nil))
		},
		Set: func(r *Record, v any) error {
			if err := r.AssertMutable(); err != nil {
				return err
			}
			r.store[name] = v
			return nil
		},
		Del: func(r *Record) error {
			if err := r.AssertMutable(); err != nil {
				return err
			}
			delete(r.store, name)
			return nil
		},
	}
}
