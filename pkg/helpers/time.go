package helpers

import (
	"fmt"
	"time"
)

// LocalizeTimes rewrites the *Text companions of known timestamps into loc.
func LocalizeTimes(data map[string]any, loc *time.Location) {
	if data == nil || loc == nil {
		return
	}
	if v, ok := data["ReviewedAt"]; ok {
		if t, ok2 := parseTimeAny(v); ok2 && !t.IsZero() {
			data["ReviewedAtText"] = t.In(loc).Format("02 January 2006, 15:04 MST")
		}
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s := fmt.Sprintf("%v", v)
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
