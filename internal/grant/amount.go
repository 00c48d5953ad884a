package grant

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a monetary amount as text, e.g. "25,000" or "Up to $5k".
//
// The zero value means "unknown amount", which is a normal state. Decoding
// treats null, "", 0 and "0" identically as unknown.
type Amount string

// Present reports whether the amount carries a value
func (a Amount) Present() bool {
	s := strings.TrimSpace(string(a))
	return s != "" && s != "0"
}

// Int returns the amount as an integer when it is a plain or comma-grouped number
func (a Amount) Int() (int, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(string(a)), ",", "")
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// UnmarshalJSON accepts strings, numbers and null
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decoding amount: %w", err)
		}
		*a = normalizeAmount(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decoding amount: %w", err)
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*a = ""
		return nil
	}
	if i, err := n.Int64(); err == nil {
		*a = Amount(strconv.FormatInt(i, 10))
		return nil
	}
	*a = Amount(n.String())
	return nil
}

// MarshalJSON writes the amount as a string, or null when absent
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Present() {
		return []byte("null"), nil
	}
	return json.Marshal(string(a))
}

func normalizeAmount(s string) Amount {
	s = strings.TrimSpace(s)
	if s == "0" {
		return ""
	}
	return Amount(s)
}
