package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseHour parses an hour-of-day value such as "22", "06", or "22:15" and
// returns it as an integer in [0, 23].
func ParseHour(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty hour value")
	}
	if idx := strings.Index(value, ":"); idx >= 0 {
		value = value[:idx]
	}
	hour, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parse hour: %w", err)
	}
	if hour < 0 || hour > 23 {
		return 0, fmt.Errorf("hour %d out of range", hour)
	}
	return hour, nil
}

// IsLateNight reports whether the hour falls in the 22:00-06:59 window.
func IsLateNight(hour int) bool {
	return hour >= 22 || hour <= 6
}
