package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// dateLayouts lists the timestamp shapes the backend is known to emit, from
// zoned RFC 3339 down to bare LocalDate values.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date wraps time.Time with lenient JSON decoding. A zero Date means the
// backend sent null, an empty string or omitted the field.
type Date struct {
	time.Time
}

// UnmarshalJSON parses strings in any of dateLayouts, or epoch milliseconds.
func (d *Date) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "" || raw == "null" || raw == `""` {
		d.Time = time.Time{}
		return nil
	}
	if raw[0] != '"' {
		var ms int64
		if err := json.Unmarshal(b, &ms); err != nil {
			return fmt.Errorf("parse date %s: %w", raw, err)
		}
		d.Time = time.UnixMilli(ms).UTC()
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := ParseDate(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// MarshalJSON emits RFC 3339 or null for the zero value.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(time.RFC3339))
}

// ParseDate parses s using the known backend layouts. Values without a zone are
// interpreted as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}
