package domain

import (
	"strconv"
	"strings"
	"time"
)

// Document is an opaque record read from the document store. The adapter
// always injects the document id under the "id" key.
type Document map[string]any

// ID returns the document id, or "" when absent.
func (d Document) ID() string {
	s, _ := d["id"].(string)
	return s
}

// Text returns the value under key when it is a string.
func (d Document) Text(key string) string {
	s, _ := d[key].(string)
	return s
}

// Flag returns the value under key when it is a bool.
func (d Document) Flag(key string) bool {
	b, _ := d[key].(bool)
	return b
}

// Millis normalizes the value under key into epoch milliseconds. Store data
// carries timestamps in two shapes, raw epoch millis and native timestamps;
// both must compare identically, so every sort and cutoff goes through here.
func (d Document) Millis(key string) (int64, bool) {
	return MillisValue(d[key])
}

// MillisValue converts a raw timestamp value to epoch milliseconds.
// The second return is false when the value is absent or not a timestamp.
func MillisValue(v any) (int64, bool) {
	switch t := v.(type) {
	case int64:
		return t, true
	case int32:
		return int64(t), true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case time.Time:
		return t.UnixMilli(), true
	}
	return 0, false
}

// HasReward reports whether a post's reward field holds an actual reward:
// a non-empty string, or any numeric value.
func HasReward(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case float64, int64, int32, int:
		return true
	}
	return false
}

// RewardAmount coerces a reward value that may arrive as a number or a
// numeric string. Unparseable values count as 0.
func RewardAmount(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int32:
		return float64(t)
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}
