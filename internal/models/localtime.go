package models

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the wire format for store timestamps. It carries no zone;
// the implied zone is the store's local zone.
const TimestampLayout = "2006-01-02T15:04:05"

// LocalTime is an optional timestamp in the store's zone. The zero value
// serializes as an empty string so the key is always present.
type LocalTime struct {
	time.Time
}

// NewLocalTime wraps t, converting it into loc
func NewLocalTime(t time.Time, loc *time.Location) LocalTime {
	if t.IsZero() {
		return LocalTime{}
	}
	if loc != nil {
		t = t.In(loc)
	}
	return LocalTime{Time: t}
}

// IsSet reports whether the timestamp is present
func (lt LocalTime) IsSet() bool {
	return !lt.Time.IsZero()
}

// String renders the wire format, or "" when absent
func (lt LocalTime) String() string {
	if !lt.IsSet() {
		return ""
	}
	return lt.Time.Format(TimestampLayout)
}

// MarshalJSON implements json.Marshaler
func (lt LocalTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + lt.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. Values are read in time.Local;
// callers that know the store zone should parse with ParseStoreTime instead.
func (lt *LocalTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		lt.Time = time.Time{}
		return nil
	}
	t, err := ParseStoreTime(s, time.Local)
	if err != nil {
		return err
	}
	lt.Time = t
	return nil
}

var storeLayouts = []string{
	TimestampLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseStoreTime parses a timestamp as emitted by the store or supplied by a caller.
// Zone-less layouts are read in loc; RFC3339 values are converted into loc.
func ParseStoreTime(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range storeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q (expected YYYY-MM-DDTHH:MM:SS)", s)
}
