package form

import (
	"errors"
	"reflect"
	"testing"

	"donatrack/internal/core"
)

func titleSchema() Schema {
	return Schema{{Key: "title", Label: "Title", Kind: Text{}, Required: true}}
}

func TestSubmitRequiresTitle(t *testing.T) {
	f := New(titleSchema())
	if err := f.Open(nil); err != nil {
		t.Fatalf("open: %v", err)
	}

	calls := 0
	var got Values
	submit := func(v Values) error {
		calls++
		got = v
		return nil
	}

	err := f.Submit(submit)
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	errs := f.Errors()
	if len(errs) != 1 || errs["title"] != "Title is required" {
		t.Fatalf("unexpected errors %v", errs)
	}
	if calls != 0 {
		t.Fatalf("callback invoked on invalid form")
	}
	if f.State() != Open {
		t.Fatalf("invalid form must stay open")
	}

	if err := f.Set("title", "Water Wells"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if len(f.Errors()) != 0 {
		t.Fatalf("setting a field should clear its error")
	}
	if err := f.Submit(submit); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if calls != 1 || got["title"] != "Water Wells" {
		t.Fatalf("callback calls=%d record=%v", calls, got)
	}
	if f.State() != Closed || f.Values() != nil || len(f.Errors()) != 0 {
		t.Fatalf("form should reset and close after submit")
	}
}

func TestWhitespaceIsEmpty(t *testing.T) {
	f := New(titleSchema())
	_ = f.Open(Values{"title": "   \t"})
	if err := f.Submit(func(Values) error { return nil }); err == nil {
		t.Fatal("whitespace-only required field should fail")
	}
}

func TestOptionalEmptyFieldsPass(t *testing.T) {
	s := Schema{
		{Key: "title", Label: "Title", Kind: Text{}, Required: true},
		{Key: "notes", Label: "Notes", Kind: Textarea{}},
		{Key: "amount", Label: "Amount", Kind: Number{}},
	}
	if err := s.Validate(Values{"title": "x"}); err != nil {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFieldCheck(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		value string
		want  string
	}{
		{"number ok", Field{Label: "Amount", Kind: Number{}}, "12.50", ""},
		{"number comma", Field{Label: "Amount", Kind: Number{}}, "12,50", ""},
		{"number bad", Field{Label: "Amount", Kind: Number{}}, "twelve", "Amount must be a number"},
		{"number exponent", Field{Label: "Amount", Kind: Number{}}, "1e3", "Amount must be a number"},
		{"number nan", Field{Label: "Amount", Kind: Number{}}, "NaN", "Amount must be a number"},
		{"number inf", Field{Label: "Amount", Kind: Number{}}, "Inf", "Amount must be a number"},
		{"whole ok", Field{Label: "Age", Kind: Number{Whole: true}}, "34", ""},
		{"whole fraction", Field{Label: "Age", Kind: Number{Whole: true}}, "1.5", "Age must be a whole number"},
		{"email ok", Field{Label: "Email", Kind: Email{}}, "ana@example.org", ""},
		{"email bad", Field{Label: "Email", Kind: Email{}}, "ana@", "Email must be a valid email address"},
		{"select ok", Field{Label: "Status", Kind: Select{Options: []string{"a", "b"}}}, "b", ""},
		{"select bad", Field{Label: "Status", Kind: Select{Options: []string{"a", "b"}}}, "c", "Status must be one of a, b"},
		{"date ok", Field{Label: "Date", Kind: Date{}}, "2024-01-15", ""},
		{"date bad", Field{Label: "Date", Kind: Date{}}, "15/01/2024", "Date must be a date in YYYY-MM-DD format"},
		{"required", Field{Label: "Name", Kind: Text{}, Required: true}, "", "Name is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.field.Check(tt.value); got != tt.want {
				t.Fatalf("Check(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestRender(t *testing.T) {
	got := Schema{
		{Key: "amount", Label: "Amount", Kind: Number{}, Required: true},
		{Key: "email", Label: "Email", Kind: Email{}},
		{Key: "notes", Label: "Notes", Kind: Textarea{}},
		{Key: "status", Label: "Status", Kind: Select{Options: []string{"a"}}},
		{Key: "date", Label: "Date", Kind: Date{}},
		{Key: "name", Label: "Name"},
	}.Render()

	want := []Widget{
		{Key: "amount", Label: "Amount", Type: "number", Required: true, InputMode: "numeric"},
		{Key: "email", Label: "Email", Type: "email", InputMode: "email"},
		{Key: "notes", Label: "Notes", Type: "textarea", InputMode: "default", Multiline: true},
		{Key: "status", Label: "Status", Type: "select", InputMode: "default", Picker: "list", Options: []string{"a"}},
		{Key: "date", Label: "Date", Type: "date", InputMode: "default", Picker: "date"},
		{Key: "name", Label: "Name", Type: "text", InputMode: "default"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Render() =\n%+v\nwant\n%+v", got, want)
	}
}

func TestClosedFormRejectsInput(t *testing.T) {
	f := New(titleSchema())
	if err := f.Set("title", "x"); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := f.Submit(func(Values) error { return nil }); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
}

func TestOpenUsesInitialDraftAndRejectsUnknownKeys(t *testing.T) {
	f := New(titleSchema())
	if err := f.Open(Values{"bogus": "x"}); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := f.Open(Values{"title": "Draft"}); err != nil {
		t.Fatalf("open: %v", err)
	}
	if f.Values()["title"] != "Draft" {
		t.Fatalf("initial draft not applied: %v", f.Values())
	}
	if err := f.Set("bogus", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}

	f.Close()
	_ = f.Open(nil)
	if f.Values()["title"] != "" {
		t.Fatalf("reopen should start empty, got %v", f.Values())
	}
}

func TestCallbackErrorKeepsDraft(t *testing.T) {
	f := New(titleSchema())
	_ = f.Open(Values{"title": "Kept"})

	err := f.Submit(func(Values) error {
		return core.ValidationError{"title": "duplicate title"}
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected callback error, got %v", err)
	}
	if f.State() != Open || f.Values()["title"] != "Kept" {
		t.Fatalf("draft lost after callback error")
	}
	if f.Errors()["title"] != "duplicate title" {
		t.Fatalf("callback field error not attached: %v", f.Errors())
	}

	if err := f.Submit(func(Values) error { return errors.New("store down") }); err == nil {
		t.Fatal("expected error")
	}
	if f.State() != Open {
		t.Fatal("form should stay open")
	}
}

func TestCallbackReceivesCopy(t *testing.T) {
	f := New(titleSchema())
	_ = f.Open(Values{"title": "A"})
	_ = f.Submit(func(v Values) error {
		v["title"] = "mutated"
		return errors.New("retry")
	})
	if f.Values()["title"] != "A" {
		t.Fatal("callback mutated the draft")
	}
}
