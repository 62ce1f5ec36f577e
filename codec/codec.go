// Package codec provides ready-made encode/decode pairs for the rekodo type
// registry: values the JSON layer cannot represent directly, expressed as
// tagged wire forms.
package codec

import (
	"encoding/base64"
	"reflect"
	"time"

	rekodo "github.com/reoring/rekodo"
)

// Pair bundles everything needed to register one type: its Go type, its wire
// tag, and the encode/decode functions.
type Pair struct {
	Type   reflect.Type
	Tag    string
	Encode rekodo.EncodeFunc
	Decode rekodo.DecodeFunc
}

// Register installs the pair into the global type registry.
func (p Pair) Register(opts ...rekodo.RegisterOpt) error {
	return rekodo.RegisterType(p.Type, p.Tag, p.Encode, p.Decode, opts...)
}

// TimeRFC3339 converts between time.Time and RFC3339 strings under the
// "__datetime__" tag. Encoding normalizes to UTC.
func TimeRFC3339() Pair {
	return Pair{
		Type: reflect.TypeOf(time.Time{}),
		Tag:  "__datetime__",
		Encode: func(v any) (any, error) {
			return formatRFC3339Canonical(v.(time.Time)), nil
		},
		Decode: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, rekodo.Issues{{Path: "/", Code: rekodo.CodeMalformedPayload, Message: "expected RFC3339 string"}}
			}
			t, err := parseRFC3339(s)
			if err != nil {
				return nil, rekodo.Issues{{Path: "/", Code: rekodo.CodeConvert, Message: "invalid RFC3339 time", Cause: err}}
			}
			return t, nil
		},
	}
}

// BytesBase64 converts between []byte and standard base64 strings under the
// "__bytes__" tag.
func BytesBase64() Pair {
	return Pair{
		Type: reflect.TypeOf([]byte(nil)),
		Tag:  "__bytes__",
		Encode: func(v any) (any, error) {
			return base64.StdEncoding.EncodeToString(v.([]byte)), nil
		},
		Decode: func(v any) (any, error) {
			s, ok := v.(string)
			if !ok {
				return nil, rekodo.Issues{{Path: "/", Code: rekodo.CodeMalformedPayload, Message: "expected base64 string"}}
			}
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return nil, rekodo.Issues{{Path: "/", Code: rekodo.CodeConvert, Message: "invalid base64 payload", Cause: err}}
			}
			return b, nil
		},
	}
}

// ---- helpers ----

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}
