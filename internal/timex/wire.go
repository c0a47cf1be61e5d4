package timex

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// WireLayout is the canonical ISO-8601 representation used on the wire:
// UTC with millisecond precision.
const WireLayout = "2006-01-02T15:04:05.000Z07:00"

// Epoch is the zero cursor value.
var Epoch = time.UnixMilli(0).UTC()

// FormatMillis renders epoch millis in the wire layout.
func FormatMillis(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(WireLayout)
}

// FormatTime renders t in the wire layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(WireLayout)
}

// ParseWire parses an ISO-8601 timestamp. Both RFC 3339 with and without
// fractional seconds are accepted, as is the space-separated form Postgres
// emits when timestamps travel as text.
func ParseWire(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t.UTC(), nil
	}
	if t2, err2 := time.Parse("2006-01-02 15:04:05.999999999Z07:00", s); err2 == nil {
		return t2.UTC(), nil
	}
	return time.Time{}, err
}

// ParseWireMillis parses an ISO-8601 timestamp into epoch millis.
func ParseWireMillis(s string) (int64, error) {
	t, err := ParseWire(s)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}

// CoerceMillis interprets v as a timestamp. Accepted inputs are JSON numbers
// (epoch millis), numeric strings and ISO-8601 strings. ok is false for
// missing, zero or unparseable values.
func CoerceMillis(v any) (ms int64, ok bool) {
	switch value := v.(type) {
	case nil:
		return 0, false
	case float64:
		if value <= 0 || math.IsNaN(value) || math.IsInf(value, 0) {
			return 0, false
		}
		return int64(value), true
	case int64:
		return value, value > 0
	case int:
		return int64(value), value > 0
	case string:
		if value == "" {
			return 0, false
		}
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n, n > 0
		}
		ms, err := ParseWireMillis(value)
		if err != nil {
			return 0, false
		}
		return ms, true
	default:
		return 0, false
	}
}
