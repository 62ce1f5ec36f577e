package rekodo

import (
	"reflect"
	"sync"

	"github.com/reoring/rekodo/i18n"
)

// EncodeFunc translates a value the JSON layer cannot represent into a
// JSON-able replacement.
type EncodeFunc func(v any) (any, error)

// DecodeFunc rebuilds a value from the payload stored under its tag.
type DecodeFunc func(v any) (any, error)

// RegisterOpt bundles options for RegisterType. Zero values are the defaults.
type RegisterOpt struct {
	// Overwrite permits replacing an existing registration; without it a
	// duplicate type or tag is a RegistrationError.
	Overwrite bool
	// NoWrap stores the encode function as-is instead of wrapping its output
	// as {tag: encoded}.
	NoWrap bool
}

// The registry is process-wide shared state: written during type definition
// (one-time initialization) and read-mostly thereafter. Concurrent
// registration must be serialized by the caller; reads may be concurrent.
var (
	regMu        sync.RWMutex
	typeEncoders = map[reflect.Type]EncodeFunc{}
	tagHooks     = map[string]DecodeFunc{}
)

// RegisterType associates a Go type with a serialization tag and its
// encode/decode pair. By default the encoded value is wrapped as
// {tag: encoded} so it round-trips through the hook resolution step.
func RegisterType(t reflect.Type, tag string, enc EncodeFunc, dec DecodeFunc, opts ...RegisterOpt) error {
	var opt RegisterOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := typeEncoders[t]; dup && !opt.Overwrite {
		return &RegistrationError{Tag: tag, Type: t}
	}
	if _, dup := tagHooks[tag]; dup && !opt.Overwrite {
		return &RegistrationError{Tag: tag}
	}
	stored := enc
	if !opt.NoWrap {
		stored = func(v any) (any, error) {
			inner, err := enc(v)
			if err != nil {
				return nil, err
			}
			return map[string]any{tag: inner}, nil
		}
	}
	typeEncoders[t] = stored
	tagHooks[tag] = dec
	return nil
}

// registerSchema exposes a built schema's tag for decoding. Records do not get
// a type-keyed encoder entry: all records share the *Record Go type, so the
// encode side dispatches on the instance's own schema instead.
func registerSchema(s *ClassSchema, overwrite bool) error {
	regMu.Lock()
	defer regMu.Unlock()
	if _, dup := tagHooks[s.tag]; dup && !overwrite {
		return &RegistrationError{Tag: s.tag}
	}
	tagHooks[s.tag] = func(v any) (any, error) {
		r := NewRecord(s)
		if err := r.LoadData(v, LoadOpt{Verify: VerifyOff}); err != nil {
			return nil, err
		}
		return r, nil
	}
	return nil
}

func encoderFor(t reflect.Type) (EncodeFunc, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	fn, ok := typeEncoders[t]
	return fn, ok
}

func hookFor(tag string) (DecodeFunc, bool) {
	regMu.RLock()
	defer regMu.RUnlock()
	fn, ok := tagHooks[tag]
	return fn, ok
}

// Reserved built-in tags for set-like containers.
const (
	TagSet       = "__set__"
	TagFrozenSet = "__frozenset__"
)

func init() {
	mustRegister(TypeOf[Set](), TagSet,
		func(v any) (any, error) { return v.(Set).Values(), nil },
		func(v any) (any, error) {
			vals, ok := v.([]any)
			if !ok {
				return nil, singleIssue("/", CodeMalformedPayload, i18n.T(CodeMalformedPayload, nil))
			}
			return NewSet(vals...), nil
		})
	mustRegister(TypeOf[FrozenSet](), TagFrozenSet,
		func(v any) (any, error) { return v.(FrozenSet).Values(), nil },
		func(v any) (any, error) {
			vals, ok := v.([]any)
			if !ok {
				return nil, singleIssue("/", CodeMalformedPayload, i18n.T(CodeMalformedPayload, nil))
			}
			return NewFrozenSet(vals...), nil
		})
}

func mustRegister(t reflect.Type, tag string, enc EncodeFunc, dec DecodeFunc) {
	if err := RegisterType(t, tag, enc, dec); err != nil {
		panic(err)
	}
}
