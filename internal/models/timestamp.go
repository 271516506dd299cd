package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// millisCutoff separates unix-seconds values from unix-millis values: the
// feed mixes both encodings, and anything below 1e12 is far in the past as
// millis but a plausible date as seconds.
const millisCutoff = 1e12

// Timestamp is a creation time as delivered by the notification and message
// feeds, which encode it inconsistently: unix seconds, unix millis, numeric
// strings, or RFC3339 strings. A value that cannot be parsed is kept as
// unknown rather than rejected; callers resolve unknown to "now".
type Timestamp struct {
	t     time.Time
	known bool
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{t: t, known: true}
}

// Resolve returns the parsed time, or now when the original value was
// missing or malformed.
func (ts Timestamp) Resolve(now time.Time) time.Time {
	if !ts.known {
		return now
	}
	return ts.t
}

func (ts Timestamp) Known() bool {
	return ts.known
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "" || raw == "null" {
		*ts = Timestamp{}
		return nil
	}

	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		*ts = fromEpoch(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*ts = Timestamp{}
		return nil
	}
	*ts = ParseTimestamp(s)
	return nil
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if !ts.known {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(ts.t.UnixMilli(), 10)), nil
}

// ParseTimestamp parses a string timestamp: numeric strings are treated as
// unix seconds or millis, everything else is tried as RFC3339.
func ParseTimestamp(s string) Timestamp {
	s = strings.TrimSpace(s)
	if s == "" {
		return Timestamp{}
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && n > 0 {
		return fromEpoch(n)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NewTimestamp(t)
	}
	return Timestamp{}
}

func fromEpoch(n float64) Timestamp {
	if n <= 0 {
		return Timestamp{}
	}
	millis := int64(n)
	if n < millisCutoff {
		millis = int64(n * 1000)
	}
	return NewTimestamp(time.UnixMilli(millis).UTC())
}
