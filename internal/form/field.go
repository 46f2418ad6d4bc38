// Package form implements schema-driven forms: rendering field widgets,
// validating a draft and handing a complete record to a submit callback.
package form

import (
	"fmt"
	"net/mail"
	"slices"
	"strconv"
	"strings"

	"donatrack/internal/core"
)

// Kind is the closed set of field types. Only this package can add
// variants.
type Kind interface {
	kind() string
}

type (
	Text   struct{}
	Number struct {
		// Whole restricts the field to integers.
		Whole bool
	}
	Email    struct{}
	Textarea struct{}
	Date     struct{}
	Select   struct {
		Options []string
	}
)

func (Text) kind() string     { return "text" }
func (Number) kind() string   { return "number" }
func (Email) kind() string    { return "email" }
func (Textarea) kind() string { return "textarea" }
func (Date) kind() string     { return "date" }
func (Select) kind() string   { return "select" }

// KindName returns the wire name of k.
func KindName(k Kind) string {
	if k == nil {
		return Text{}.kind()
	}
	return k.kind()
}

// Field describes one input of a form.
type Field struct {
	Key         string
	Label       string
	Placeholder string
	Kind        Kind
	Required    bool
}

// Widget is what a client needs to draw a field.
type Widget struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Type        string   `json:"type"`
	Placeholder string   `json:"placeholder,omitempty"`
	Required    bool     `json:"required"`
	InputMode   string   `json:"inputMode"`
	Multiline   bool     `json:"multiline,omitempty"`
	Picker      string   `json:"picker,omitempty"`
	Options     []string `json:"options,omitempty"`
}

// Render describes the widget for f.
func (f Field) Render() Widget {
	w := Widget{
		Key:         f.Key,
		Label:       f.Label,
		Type:        KindName(f.Kind),
		Placeholder: f.Placeholder,
		Required:    f.Required,
		InputMode:   "default",
	}
	switch k := f.Kind.(type) {
	case Number:
		w.InputMode = "numeric"
	case Email:
		w.InputMode = "email"
	case Textarea:
		w.Multiline = true
	case Select:
		w.Picker = "list"
		w.Options = slices.Clone(k.Options)
	case Date:
		w.Picker = "date"
	}
	return w
}

// Check returns the error message for value, or "" when it is acceptable.
// Empty optional values are always acceptable.
func (f Field) Check(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		if f.Required {
			return f.Label + " is required"
		}
		return ""
	}
	switch k := f.Kind.(type) {
	case Number:
		if k.Whole {
			if _, err := strconv.Atoi(v); err != nil {
				return f.Label + " must be a whole number"
			}
		} else if _, err := core.ParseMoney(v); err != nil {
			return f.Label + " must be a number"
		}
	case Email:
		if _, err := mail.ParseAddress(v); err != nil {
			return f.Label + " must be a valid email address"
		}
	case Select:
		if !slices.Contains(k.Options, v) {
			return fmt.Sprintf("%s must be one of %s", f.Label, strings.Join(k.Options, ", "))
		}
	case Date:
		if _, err := core.ParseDate(v); err != nil {
			return f.Label + " must be a date in YYYY-MM-DD format"
		}
	}
	return ""
}

// Schema is an ordered list of fields.
type Schema []Field

// Render describes every widget in order.
func (s Schema) Render() []Widget {
	out := make([]Widget, len(s))
	for i, f := range s {
		out[i] = f.Render()
	}
	return out
}

// Field looks a field up by key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// Validate checks every field of values and returns nil when all pass.
func (s Schema) Validate(values Values) error {
	verr := core.ValidationError{}
	for _, f := range s {
		if msg := f.Check(values[f.Key]); msg != "" {
			verr.Add(f.Key, msg)
		}
	}
	return verr.Err()
}

// Values is a draft record: every schema key mapped to its raw text.
type Values map[string]string

func (v Values) clone() Values {
	out := make(Values, len(v))
	for k, s := range v {
		out[k] = s
	}
	return out
}
