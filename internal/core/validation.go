package core

import (
	"sort"
	"strings"
)

// ValidationError maps field keys to human-readable messages.
type ValidationError map[string]string

// Add records msg for field, keeping the first message per field.
func (v ValidationError) Add(field, msg string) {
	if _, exists := v[field]; exists {
		return
	}
	v[field] = msg
}

// Err returns nil when no field failed.
func (v ValidationError) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationError) Error() string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+v[k])
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (v ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Fields returns a copy of the field messages.
func (v ValidationError) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}
