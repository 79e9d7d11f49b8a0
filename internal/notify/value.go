package notify

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value is an optional field passed through exactly as the caller sent it.
// Backends disagree on types (decimals arrive as strings, phones as
// numbers), so the relay never coerces them. JSON null is stored as empty.
type Value []byte

// Text returns a Value holding a JSON string.
func Text(s string) Value {
	b, _ := json.Marshal(s)
	return Value(b)
}

// Number returns a Value holding a JSON number.
func Number(f float64) Value {
	return Value(strconv.FormatFloat(f, 'f', -1, 64))
}

func (v Value) MarshalJSON() ([]byte, error) {
	if len(v) == 0 {
		return []byte("null"), nil
	}
	return v, nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = nil
		return nil
	}
	*v = append((*v)[:0], data...)
	return nil
}

// String renders the value as text: strings unquoted, anything else as the
// raw JSON literal. Empty for absent or null values.
func (v Value) String() string {
	if len(v) == 0 {
		return ""
	}
	if v[0] == '"' {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	}
	return string(v)
}

// Float reads a number, or a string holding one.
func (v Value) Float() (float64, bool) {
	s := strings.TrimSpace(v.String())
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}
