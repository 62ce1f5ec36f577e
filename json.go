package rekodo

import (
	"bytes"
	"reflect"

	json "github.com/goccy/go-json"

	"github.com/reoring/rekodo/i18n"
)

// ToJSON serializes the Record's backing store to JSON text. Depending on the
// effective tag style, the class tag is injected flat into the store for the
// duration of the dump (restored afterwards even on failure) or the store is
// wrapped as {tag: store} without mutating the Record.
func (r *Record) ToJSON(opts ...EncodeOpt) ([]byte, error) {
	dump, restore := r.buildDump(lastEncodeOpt(opts))
	defer restore()
	resolved, err := resolveForEncode(dump, r.schema)
	if err != nil {
		return nil, err
	}
	b, err := json.Marshal(resolved)
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeEncodeError, Message: err.Error(), Cause: err}}
	}
	return b, nil
}

// FromJSON parses JSON text, resolves decode hooks, and loads the result into
// the Record via LoadData.
func (r *Record) FromJSON(data []byte, opts ...LoadOpt) error {
	v, err := decodeJSONValue(data)
	if err != nil {
		return err
	}
	v, err = applyHooks(v, r.schema)
	if err != nil {
		return err
	}
	return r.LoadData(v, opts...)
}

// NewFromJSON constructs a Record for s and populates it from JSON text.
func NewFromJSON(s *ClassSchema, data []byte, opts ...LoadOpt) (*Record, error) {
	r := NewRecord(s)
	if err := r.FromJSON(data, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeTagged parses JSON text and resolves tags through the global registry
// only, without loading into any Record. Single-key objects whose key matches
// a registered tag are replaced by the decoded value.
func DecodeTagged(data []byte) (any, error) {
	v, err := decodeJSONValue(data)
	if err != nil {
		return nil, err
	}
	return applyHooks(v, nil)
}

// buildDump assembles the value to serialize plus a restore function for the
// flat-style temporary "__class__" entry.
func (r *Record) buildDump(opt EncodeOpt) (any, func()) {
	include := r.schema.includeClass
	switch opt.IncludeClass {
	case IncludeOn:
		include = true
	case IncludeOff:
		include = false
	}
	style := r.schema.style
	if opt.Style != TagDefault {
		style = opt.Style
	}

	if !include {
		return r.store, func() {}
	}
	switch style {
	case TagSingleKey:
		return map[string]any{r.schema.tag: r.store}, func() {}
	default: // TagFlat
		r.store["__class__"] = r.schema.tag
		return r.store, func() { delete(r.store, "__class__") }
	}
}

// resolveForEncode walks a value and replaces anything the JSON layer should
// not see directly: nested Records wrap under their own tag; other types
// resolve through the schema's local encoder table, then the global registry.
// Unmatched values pass through for the JSON codec to reject or accept.
func resolveForEncode(v any, s *ClassSchema) (any, error) {
	switch t := v.(type) {
	case nil, bool, string, float64, int, int64, json.Number:
		return v, nil
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			rv, err := resolveForEncode(val, s)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			rv, err := resolveForEncode(val, s)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	case *Record:
		return resolveForEncode(map[string]any{t.schema.tag: t.Store()}, s)
	default:
		rt := reflect.TypeOf(v)
		if s != nil {
			if fn, ok := s.encoders[rt]; ok {
				out, err := fn(v)
				if err != nil {
					return nil, err
				}
				return resolveForEncode(out, s)
			}
		}
		if fn, ok := encoderFor(rt); ok {
			out, err := fn(v)
			if err != nil {
				return nil, err
			}
			return resolveForEncode(out, s)
		}
		return v, nil
	}
}

// applyHooks offers every decoded object of exactly one key to the hook
// resolution step: the schema's local hook table first, then the global
// registry. Resolution is bottom-up so nested tagged values decode first.
func applyHooks(v any, s *ClassSchema) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			rv, err := applyHooks(val, s)
			if err != nil {
				return nil, err
			}
			out[k] = rv
		}
		if len(out) == 1 {
			for k, inner := range out {
				if s != nil {
					if fn, ok := s.hooks[k]; ok {
						return fn(inner)
					}
				}
				if fn, ok := hookFor(k); ok {
					return fn(inner)
				}
			}
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			rv, err := applyHooks(val, s)
			if err != nil {
				return nil, err
			}
			out[i] = rv
		}
		return out, nil
	default:
		return v, nil
	}
}

func decodeJSONValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}
	}
	return v, nil
}
