package form

import (
	"errors"
	"fmt"
	"sync"

	"donatrack/internal/core"
)

// State of a form instance.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

var (
	ErrClosed       = errors.New("form is closed")
	ErrUnknownField = errors.New("unknown field")
)

// SubmitFunc receives the validated draft. Returning an error keeps the
// form open with its draft; a core.ValidationError is attached to the
// matching fields.
type SubmitFunc func(Values) error

// Form holds the draft and field errors of one form instance.
//
// Closed -> Open -> Open (with errors) | Closed (submitted or discarded).
type Form struct {
	mu     sync.Mutex
	schema Schema
	state  State
	values Values
	errors core.ValidationError
}

// New returns a closed form for schema.
func New(schema Schema) *Form {
	return &Form{schema: schema, errors: core.ValidationError{}}
}

func (f *Form) Schema() Schema {
	return f.schema
}

// Open starts editing from an empty draft overlaid with initial. Opening
// an open form discards its current draft.
func (f *Form) Open(initial Values) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	draft := make(Values, len(f.schema))
	for _, field := range f.schema {
		draft[field.Key] = ""
	}
	for k, v := range initial {
		if _, ok := draft[k]; !ok {
			return fmt.Errorf("open: %w %q", ErrUnknownField, k)
		}
		draft[k] = v
	}

	f.values = draft
	f.errors = core.ValidationError{}
	f.state = Open
	return nil
}

// Set stores value for key and clears that field's error.
func (f *Form) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Open {
		return ErrClosed
	}
	if _, ok := f.values[key]; !ok {
		return fmt.Errorf("set: %w %q", ErrUnknownField, key)
	}
	f.values[key] = value
	delete(f.errors, key)
	return nil
}

// Submit validates the whole draft. On success submit is called exactly
// once with a copy of the draft, after which the form resets and closes.
// On failure submit is not called and the errors stay on the form.
func (f *Form) Submit(submit SubmitFunc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Open {
		return ErrClosed
	}

	if err := f.schema.Validate(f.values); err != nil {
		f.errors = err.(core.ValidationError)
		return err
	}
	f.errors = core.ValidationError{}

	if err := submit(f.values.clone()); err != nil {
		var verr core.ValidationError
		if errors.As(err, &verr) {
			for k, msg := range verr {
				f.errors[k] = msg
			}
		}
		return err
	}

	f.reset()
	return nil
}

// Close discards the draft.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reset()
}

func (f *Form) reset() {
	f.values = nil
	f.errors = core.ValidationError{}
	f.state = Closed
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Values returns a copy of the draft, nil when closed.
func (f *Form) Values() Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.values == nil {
		return nil
	}
	return f.values.clone()
}

// Errors returns a copy of the current field errors.
func (f *Form) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errors.Fields()
}
