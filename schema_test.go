package rekodo_test

import (
	"errors"
	"testing"

	rekodo "github.com/reoring/rekodo"
)

func TestSchema_TagDerivation(t *testing.T) {
	s := rekodo.NewSchema("schematest.Widget").NoRegister().MustBuild()
	if s.Tag() != "__schematest.Widget__" {
		t.Fatalf("unexpected tag %q", s.Tag())
	}
	if s.Name() != "schematest.Widget" {
		t.Fatalf("unexpected name %q", s.Name())
	}

	lit := rekodo.NewSchema("schematest.Widget2").Tag("__w2__").NoRegister().MustBuild()
	if lit.Tag() != "__w2__" {
		t.Fatalf("unexpected literal tag %q", lit.Tag())
	}
}

func TestSchema_DuplicateFieldRejected(t *testing.T) {
	parent := rekodo.NewSchema("schematest.Base").
		Field("id", rekodo.String()).
		NoRegister().MustBuild()

	_, err := rekodo.NewSchema("schematest.Child").
		Extends(parent).
		Field("id", rekodo.Int()).
		NoRegister().Build()
	var dup *rekodo.DuplicateFieldError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateFieldError, got %v", err)
	}
	if dup.Field != "id" || dup.Schema != "schematest.Base" {
		t.Fatalf("unexpected error detail: %+v", dup)
	}
}

func TestSchema_OverrideMarkerAllowsRedeclaration(t *testing.T) {
	parent := rekodo.NewSchema("schematest.Base2").
		Field("id", rekodo.String()).
		Field("kind", rekodo.String()).
		NoRegister().MustBuild()

	// via the field step
	child, err := rekodo.NewSchema("schematest.Child2").
		Extends(parent).
		Field("id", rekodo.Int()).Override().
		NoRegister().Build()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	f, ok := child.Field("id")
	if !ok {
		t.Fatalf("id missing on child")
	}
	if _, err := f.Validator.Apply("not-an-int", "id"); err == nil {
		t.Fatalf("child validator should have replaced the parent's")
	}
	// inherited fields survive the merge
	if _, ok := child.Field("kind"); !ok {
		t.Fatalf("inherited field missing")
	}

	// via the validator's own marker
	if _, err := rekodo.NewSchema("schematest.Child3").
		Extends(parent).
		Field("id", rekodo.Int().Overridable()).
		NoRegister().Build(); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestSchema_FieldNamesSorted(t *testing.T) {
	s := rekodo.NewSchema("schematest.Sorted").
		Field("b", rekodo.Any()).
		Field("a", rekodo.Any()).
		Field("c", rekodo.Any()).
		NoRegister().MustBuild()
	names := s.FieldNames()
	if len(names) != 3 || names[0] != "a" || names[1] != "b" || names[2] != "c" {
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestSchema_GlobalRegistrationConflict(t *testing.T) {
	if _, err := rekodo.NewSchema("schematest.Registered").Build(); err != nil {
		t.Fatalf("first registration should succeed: %v", err)
	}
	_, err := rekodo.NewSchema("schematest.Registered").Build()
	var reg *rekodo.RegistrationError
	if !errors.As(err, &reg) {
		t.Fatalf("expected RegistrationError, got %v", err)
	}
	// NoRegister sidesteps the conflict
	if _, err := rekodo.NewSchema("schematest.Registered").NoRegister().Build(); err != nil {
		t.Fatalf("NoRegister should not collide: %v", err)
	}
}

func TestSchema_FieldDocFromValidatorAndStep(t *testing.T) {
	s := rekodo.NewSchema("schematest.Docs").
		Field("a", rekodo.Int().WithDoc("from validator")).
		Field("b", rekodo.Int()).Doc("from step").
		NoRegister().MustBuild()
	fa, _ := s.Field("a")
	if fa.Doc() != "from validator" {
		t.Fatalf("got %q", fa.Doc())
	}
	fb, _ := s.Field("b")
	if fb.Doc() != "from step" {
		t.Fatalf("got %q", fb.Doc())
	}
}
