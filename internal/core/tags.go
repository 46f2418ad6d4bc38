package core

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Tags is an ordered set of category tags, such as a beneficiary's needs.
type Tags []string

// ParseTags splits a comma-separated list ("Food, Medical").
func ParseTags(s string) Tags {
	return Tags(strings.Split(s, ",")).Clean()
}

// Clean trims every tag and drops blanks and duplicates, keeping order.
func (t Tags) Clean() Tags {
	seen := map[string]struct{}{}
	out := make(Tags, 0, len(t))
	for _, v := range t {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Contains reports whether tag is present, ignoring case.
func (t Tags) Contains(tag string) bool {
	for _, v := range t {
		if strings.EqualFold(v, tag) {
			return true
		}
	}
	return false
}

// Value stores the tags as a JSON array.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	case nil:
		*t = nil
		return nil
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	*t = out
	return nil
}
