// Package timefmt parses and formats durations in the time syntax the
// ffmpeg tools use: either a plain decimal number of seconds or
// HH:MM:SS[.fraction].
package timefmt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Parse converts an ffmpeg-style time string to a duration.
func Parse(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("negative duration %q", s)
		}
		return time.Duration(math.Round(secs * float64(time.Second))), nil
	}

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid time format %q", s)
	}
	hours, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", s, err)
	}
	minutes, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", s, err)
	}
	secs, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", s, err)
	}
	if secs < 0 {
		return 0, fmt.Errorf("negative seconds in %q", s)
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(math.Round(secs*float64(time.Second)))
	return d, nil
}

// Format renders a duration as HH:MM:SS, with millisecond precision
// appended when the duration has a sub-second component.
func Format(d time.Duration) string {
	total := int64(d / time.Second)
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	millis := int64((d % time.Second) / time.Millisecond)

	if millis > 0 {
		return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
