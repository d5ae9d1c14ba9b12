package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the exclusive upper bound for interval end minutes;
// "24:00" parses to it.
const MinutesPerDay = 1440

// ParseMinuteOfDay converts an "HH:MM" clock string to minutes since
// midnight. "24:00" is accepted as the midnight end marker.
func ParseMinuteOfDay(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("models: invalid time %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("models: invalid time %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("models: invalid time %q", s)
	}
	if minute < 0 || minute > 59 || hour < 0 || hour > 24 || (hour == 24 && minute != 0) {
		return 0, fmt.Errorf("models: time %q out of range", s)
	}
	return hour*60 + minute, nil
}

// FormatMinuteOfDay renders minutes since midnight as "HH:MM", with 1440
// rendered as "24:00".
func FormatMinuteOfDay(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
