package rekodo

import (
	"gopkg.in/yaml.v3"

	"github.com/reoring/rekodo/i18n"
)

// ToYAML serializes the Record through the same tag-and-resolution pipeline
// as ToJSON, emitting YAML text.
func (r *Record) ToYAML(opts ...EncodeOpt) ([]byte, error) {
	dump, restore := r.buildDump(lastEncodeOpt(opts))
	defer restore()
	resolved, err := resolveForEncode(dump, r.schema)
	if err != nil {
		return nil, err
	}
	b, err := yaml.Marshal(resolved)
	if err != nil {
		return nil, Issues{{Path: "/", Code: CodeEncodeError, Message: err.Error(), Cause: err}}
	}
	return b, nil
}

// FromYAML parses YAML text, normalizes it to JSON-like mappings, resolves
// decode hooks, and loads the result via LoadData.
func (r *Record) FromYAML(data []byte, opts ...LoadOpt) error {
	v, err := decodeYAMLValue(data)
	if err != nil {
		return err
	}
	v, err = applyHooks(v, r.schema)
	if err != nil {
		return err
	}
	return r.LoadData(v, opts...)
}

// NewFromYAML constructs a Record for s and populates it from YAML text.
func NewFromYAML(s *ClassSchema, data []byte, opts ...LoadOpt) (*Record, error) {
	r := NewRecord(s)
	if err := r.FromYAML(data, opts...); err != nil {
		return nil, err
	}
	return r, nil
}

// DecodeTaggedYAML parses YAML text and resolves tags through the global
// registry only, mirroring DecodeTagged.
func DecodeTaggedYAML(data []byte) (any, error) {
	v, err := decodeYAMLValue(data)
	if err != nil {
		return nil, err
	}
	return applyHooks(v, nil)
}

func decodeYAMLValue(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, Issues{{Path: "/", Code: CodeParseError, Message: i18n.T(CodeParseError, nil), Cause: err}}
	}
	return yamlNormalize(v), nil
}

// yamlNormalize converts YAML-decoded values (which may contain map[any]any)
// into JSON-like map[string]any recursively. Non-string keys are dropped.
func yamlNormalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = yamlNormalize(vv)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			out[ks] = yamlNormalize(vv)
		}
		return out
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = yamlNormalize(t[i])
		}
		return arr
	default:
		return v
	}
}
