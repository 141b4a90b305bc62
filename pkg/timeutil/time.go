package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

// ParseRelativeDuration parses duration strings like "2h", "30m", "7d".
func ParseRelativeDuration(s string) (time.Duration, error) {
	duration, err := time.ParseDuration(s)
	if err == nil {
		return duration, nil
	}

	if len(s) > 1 && s[len(s)-1] == 'd' {
		days := s[:len(s)-1]
		if numDays, err := strconv.Atoi(days); err == nil {
			return time.Duration(numDays) * 24 * time.Hour, nil
		}
	}

	return 0, fmt.Errorf("invalid duration format: use formats like '2h', '30m', '2d', '7d'")
}

// ResolveBoundary converts one time-range boundary into epoch milliseconds.
// Supported forms: "now", "now-6h"/"now+15m" (relative, 'd' suffix allowed),
// numeric epoch milliseconds, and RFC3339 or "2006-01-02 15:04:05" strings.
func ResolveBoundary(expr string, now time.Time) (int64, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, fmt.Errorf("empty time boundary")
	}

	if expr == "now" {
		return now.UnixMilli(), nil
	}
	if rest, ok := strings.CutPrefix(expr, "now-"); ok {
		d, err := ParseRelativeDuration(rest)
		if err != nil {
			return 0, err
		}
		return now.Add(-d).UnixMilli(), nil
	}
	if rest, ok := strings.CutPrefix(expr, "now+"); ok {
		d, err := ParseRelativeDuration(rest)
		if err != nil {
			return 0, err
		}
		return now.Add(d).UnixMilli(), nil
	}

	if ms, err := strconv.ParseInt(expr, 10, 64); err == nil {
		return ms, nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, expr); err == nil {
			return t.UnixMilli(), nil
		}
	}

	return 0, fmt.Errorf("unrecognized time boundary %q", expr)
}

// ParseTimestampValue interprets a cell value as epoch milliseconds.
// Numeric values are taken as milliseconds already; strings must be
// numeric or a parseable date. The second return is false when the value
// cannot be interpreted as a point in time.
func ParseTimestampValue(v any) (int64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case time.Time:
		return t.UnixMilli(), true
	case int64:
		return t, true
	case int:
		return int64(t), true
	case float64:
		return int64(t), true
	case float32:
		return int64(t), true
	case string:
		if t == "" {
			return 0, false
		}
		if ms, err := strconv.ParseInt(t, 10, 64); err == nil {
			return ms, true
		}
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return int64(f), true
		}
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UnixMilli(), true
			}
		}
		return 0, false
	default:
		return 0, false
	}
}
