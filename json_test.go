package rekodo_test

import (
	"reflect"
	"strings"
	"testing"
	"time"

	rekodo "github.com/reoring/rekodo"
)

func mailSchema(t *testing.T, name string) *rekodo.ClassSchema {
	t.Helper()
	return rekodo.NewSchema(name).
		Field("subject", rekodo.String().Strip("")).
		Field("size", rekodo.Int().AtLeast(0)).
		Field("tags", rekodo.Is[rekodo.Set]()).
		NoRegister().MustBuild()
}

func TestJSON_RoundTrip_FlatStyle(t *testing.T) {
	s := mailSchema(t, "jsontest.Mail1")
	r := rekodo.NewRecord(s)
	if err := r.SetMany(map[string]any{
		"subject": "hello",
		"size":    42,
		"tags":    rekodo.NewSet("a", "b"),
	}); err != nil {
		t.Fatalf("set: %v", err)
	}

	wire, err := r.ToJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(wire), `"__class__"`) {
		t.Fatalf("flat style must embed the class marker: %s", wire)
	}
	if r.Has("__class__") {
		t.Fatalf("store must be restored after the dump")
	}

	r2, err := rekodo.NewFromJSON(s, wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(r.Store(), r2.Store()) {
		t.Fatalf("round trip mismatch:\n%v\n%v", r.Store(), r2.Store())
	}
}

func TestJSON_RoundTrip_SingleKeyStyle(t *testing.T) {
	s := rekodo.NewSchema("jsontest.Mail2").
		Field("subject", rekodo.String()).
		Field("size", rekodo.Int()).
		TagStyle(rekodo.TagSingleKey).
		NoRegister().MustBuild()

	r := rekodo.NewRecord(s)
	_ = r.SetMany(map[string]any{"subject": "x", "size": 1})

	wire, err := r.ToJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(string(wire), `{"__jsontest.Mail2__":`) {
		t.Fatalf("single-key wrapper expected: %s", wire)
	}

	r2, err := rekodo.NewFromJSON(s, wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(r.Store(), r2.Store()) {
		t.Fatalf("round trip mismatch:\n%v\n%v", r.Store(), r2.Store())
	}
}

func TestJSON_RoundTrip_RegisteredSchemaSingleKey(t *testing.T) {
	// A registered schema's tag resolves through the global hook table, so
	// the top-level wrapper decodes straight into a Record.
	s := rekodo.NewSchema("jsontest.Registered").
		Field("v", rekodo.Int()).
		TagStyle(rekodo.TagSingleKey).
		MustBuild()

	r := rekodo.NewRecord(s)
	_ = r.Set("v", 9)
	wire, err := r.ToJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	r2, err := rekodo.NewFromJSON(s, wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r2.Get("v", nil) != int64(9) {
		t.Fatalf("got %v", r2.Get("v", nil))
	}
}

func TestJSON_ClassTagVerification(t *testing.T) {
	s := mailSchema(t, "jsontest.Mail3")
	r := rekodo.NewRecord(s)

	payload := []byte(`{"__class__": "__other.Type__", "subject": "x"}`)
	if err := r.FromJSON(payload); !rekodo.HasCode(err, rekodo.CodeClassMismatch) {
		t.Fatalf("expected class_mismatch, got %v", err)
	}
	if err := r.FromJSON(payload, rekodo.LoadOpt{Verify: rekodo.VerifyOff}); err != nil {
		t.Fatalf("verification disabled should succeed: %v", err)
	}
	if r.Get("subject", nil) != "x" {
		t.Fatalf("got %v", r.Get("subject", nil))
	}
}

func TestJSON_IncludeClassOff(t *testing.T) {
	s := mailSchema(t, "jsontest.Mail4")
	r := rekodo.NewRecord(s)
	_ = r.Set("subject", "x")

	wire, err := r.ToJSON(rekodo.EncodeOpt{IncludeClass: rekodo.IncludeOff})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.Contains(string(wire), "__class__") {
		t.Fatalf("tag must be omitted: %s", wire)
	}

	r2 := rekodo.NewRecord(s)
	if err := r2.FromJSON(wire, rekodo.LoadOpt{Verify: rekodo.VerifyOff}); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if r2.Get("subject", nil) != "x" {
		t.Fatalf("got %v", r2.Get("subject", nil))
	}
}

func TestJSON_PerCallStyleOverride(t *testing.T) {
	s := mailSchema(t, "jsontest.Mail5")
	r := rekodo.NewRecord(s)
	_ = r.Set("size", 1)

	wire, err := r.ToJSON(rekodo.EncodeOpt{Style: rekodo.TagSingleKey})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(string(wire), `{"__jsontest.Mail5__":`) {
		t.Fatalf("per-call style should win: %s", wire)
	}
}

func TestJSON_NestedRecord(t *testing.T) {
	inner := rekodo.NewSchema("jsontest.Inner").
		Field("v", rekodo.Int()).
		MustBuild()
	outer := rekodo.NewSchema("jsontest.Outer").
		Field("child", rekodo.Is[*rekodo.Record]()).
		NoRegister().MustBuild()

	c := rekodo.NewRecord(inner)
	_ = c.Set("v", 5)
	p := rekodo.NewRecord(outer)
	_ = p.Set("child", c)

	wire, err := p.ToJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(wire), `"__jsontest.Inner__"`) {
		t.Fatalf("nested record should wrap under its own tag: %s", wire)
	}

	p2, err := rekodo.NewFromJSON(outer, wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	child, ok := p2.Get("child", nil).(*rekodo.Record)
	if !ok {
		t.Fatalf("child should decode into a Record, got %T", p2.Get("child", nil))
	}
	if child.Get("v", nil) != int64(5) {
		t.Fatalf("got %v", child.Get("v", nil))
	}
}

func TestJSON_LocalEncoderAndHook(t *testing.T) {
	when := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	s := rekodo.NewSchema("jsontest.Stamped").
		Field("at", rekodo.Is[time.Time]()).
		Encoder(rekodo.TypeOf[time.Time](), func(v any) (any, error) {
			return map[string]any{"__when__": v.(time.Time).UTC().Format(time.RFC3339)}, nil
		}).
		Hook("__when__", func(v any) (any, error) {
			return time.Parse(time.RFC3339, v.(string))
		}).
		NoRegister().MustBuild()

	r := rekodo.NewRecord(s)
	_ = r.Set("at", when)
	wire, err := r.ToJSON()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(wire), `"__when__"`) {
		t.Fatalf("local encoder output expected: %s", wire)
	}

	r2, err := rekodo.NewFromJSON(s, wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got, ok := r2.Get("at", nil).(time.Time)
	if !ok || !got.Equal(when) {
		t.Fatalf("got %v", r2.Get("at", nil))
	}
}

func TestJSON_EncodeFailureRestoresStore(t *testing.T) {
	s := mailSchema(t, "jsontest.Mail6")
	r := rekodo.NewRecord(s)
	// a func value has no encoder anywhere and the JSON layer rejects it
	_ = r.Update(map[string]any{"subject": func() {}})

	if _, err := r.ToJSON(); err == nil {
		t.Fatalf("expected encode failure")
	}
	if r.Has("__class__") {
		t.Fatalf("store must be restored even when the dump fails")
	}
}

func TestJSON_StrictPolicyAppliesOnLoad(t *testing.T) {
	s := mailSchema(t, "jsontest.Mail7")
	r := rekodo.NewRecord(s)
	payload := []byte(`{"__class__": "__jsontest.Mail7__", "bogus": 1}`)
	if err := r.FromJSON(payload); !rekodo.HasCode(err, rekodo.CodeUnknownKey) {
		t.Fatalf("expected unknown_key, got %v", err)
	}
	if err := r.FromJSON(payload, rekodo.LoadOpt{Policy: rekodo.KeySloppy}); err != nil {
		t.Fatalf("sloppy load: %v", err)
	}
	if r.Get("bogus", nil) == nil {
		t.Fatalf("sloppy must keep the unknown key")
	}
}

func TestJSON_DecodeTagged_Builtins(t *testing.T) {
	v, err := rekodo.DecodeTagged([]byte(`{"__set__": ["a", "b"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	set, ok := v.(rekodo.Set)
	if !ok {
		t.Fatalf("expected Set, got %T", v)
	}
	if !set.Equal(rekodo.NewSet("a", "b")) {
		t.Fatalf("got %v", set)
	}

	v, err = rekodo.DecodeTagged([]byte(`{"__frozenset__": ["x"]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fs, ok := v.(rekodo.FrozenSet)
	if !ok || !fs.Has("x") || fs.Len() != 1 {
		t.Fatalf("got %T %v", v, v)
	}

	// a single-key object with an unregistered key passes through unchanged
	v, err = rekodo.DecodeTagged([]byte(`{"plain": 1}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := v.(map[string]any); !ok {
		t.Fatalf("expected passthrough map, got %T", v)
	}
}

func TestJSON_ParseErrorSurfaced(t *testing.T) {
	s := mailSchema(t, "jsontest.Mail8")
	r := rekodo.NewRecord(s)
	if err := r.FromJSON([]byte(`{nope`)); !rekodo.HasCode(err, rekodo.CodeParseError) {
		t.Fatalf("expected parse_error, got %v", err)
	}
}
