package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodeFallsThrough(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("expected code echo for unknown code, got %q", msg)
	}
}

func TestTranslator_CustomAndReset(t *testing.T) {
	SetTranslator(constTranslator{})
	if msg := T("invalid_type", nil); msg != "x" {
		t.Fatalf("expected custom translator message, got %q", msg)
	}
	SetTranslator(nil)
	if msg := T("invalid_type", nil); msg != "invalid type" {
		t.Fatalf("expected builtin en message after reset, got %q", msg)
	}
}

type constTranslator struct{}

func (constTranslator) Message(code string, data map[string]string) string { return "x" }
