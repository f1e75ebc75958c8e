// Package formvalue normalizes optional request fields sent by HTML forms.
package formvalue

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// String trims s and maps an empty value to nil.
func String(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// Optional is a string field that tells an absent key apart from an
// explicit null. Set reports whether the key was present in the body.
type Optional struct {
	Set   bool
	Value *string
}

// Present returns a set Optional holding s.
func Present(s string) Optional {
	return Optional{Set: true, Value: &s}
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	o.Set = true
	if strings.TrimSpace(string(b)) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Number is a JSON number or a numeric string. Forms post "10" where API
// clients post 10; both decode to the same value.
type Number string

func (n *Number) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*n = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*n = Number(strings.TrimSpace(str))
		return nil
	}
	*n = Number(s)
	return nil
}

// Int parses an optional non-negative integer. field names the value in
// the error message.
func Int(n *Number, field string) (*int, error) {
	if n == nil || *n == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(string(*n))
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative whole number", field)
	}
	return &v, nil
}

// Float parses an optional non-negative decimal.
func Float(n *Number, field string) (*float64, error) {
	if n == nil || *n == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(string(*n), 64)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number", field)
	}
	return &v, nil
}
