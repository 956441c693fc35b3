// internal/sched/instant.go

package sched

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// awareLayouts are accepted for instants carrying an offset.
var awareLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

// naiveLayouts are accepted for offset-less (naive) instants.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

const naiveFormat = "2006-01-02T15:04:05.999999999"

// Instant is a point in time tagged with its awareness class.
// Aware instants carry an explicit offset, naive ones are a bare wall clock reading.
type Instant struct {
	t     time.Time
	aware bool
}

// Aware returns an offset-carrying instant.
func Aware(t time.Time) Instant {
	return Instant{t: t, aware: true}
}

// Naive returns a wall clock instant. The location in t is dropped and the
// reading kept, so two naive instants compare by their wall clocks.
func Naive(t time.Time) Instant {
	y, mo, d := t.Date()
	h, mi, s := t.Clock()
	return Instant{t: time.Date(y, mo, d, h, mi, s, t.Nanosecond(), time.UTC)}
}

// ParseInstant parses an ISO 8601 timestamp. A trailing Z or ±hh:mm makes it
// aware; without one it is naive. Seconds may be omitted, and naive values may
// be a bare date (midnight).
func ParseInstant(s string) (Instant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Instant{}, fmt.Errorf("empty time value")
	}
	for _, layout := range awareLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Aware(t), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Naive(t), nil
		}
	}
	return Instant{}, fmt.Errorf("invalid time value %q", s)
}

func (i Instant) Time() time.Time { return i.t }
func (i Instant) IsAware() bool   { return i.aware }
func (i Instant) IsZero() bool    { return i.t.IsZero() }

// Compare returns -1, 0 or 1. Comparing instants of different awareness
// classes is meaningless; callers validate that first.
func (i Instant) Compare(j Instant) int {
	return i.t.Compare(j.t)
}

func (i Instant) Before(j Instant) bool { return i.t.Before(j.t) }
func (i Instant) After(j Instant) bool  { return i.t.After(j.t) }

func (i Instant) String() string {
	if i.aware {
		return i.t.Format(time.RFC3339Nano)
	}
	return i.t.Format(naiveFormat)
}

func (i Instant) MarshalJSON() ([]byte, error) {
	return json.Marshal(i.String())
}

func (i *Instant) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time value must be a string: %w", err)
	}
	parsed, err := ParseInstant(s)
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
