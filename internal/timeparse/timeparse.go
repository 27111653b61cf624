// Package timeparse converts free-form relative time expressions like
// "30m", "2h", "1d" or "30 دقیقه" into absolute timestamps.
package timeparse

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat is returned when no recognized number/unit pair
// is found. The message lists the accepted formats, matching the reply
// shown to the user.
var ErrInvalidTimeFormat = errors.New("فرمت زمان: 30m, 2h, 1d یا '30 دقیقه'")

var unitPatterns = []struct {
	re   *regexp.Regexp
	unit time.Duration
}{
	{regexp.MustCompile(`(\d+)\s*(?:دقیقه|minute|min|m)`), time.Minute},
	{regexp.MustCompile(`(\d+)\s*(?:ساعت|hour|h)`), time.Hour},
	{regexp.MustCompile(`(\d+)\s*(?:روز|day|d)`), 24 * time.Hour},
}

var shortPattern = regexp.MustCompile(`^(\d+)([mhd])$`)

// Parse returns now plus the duration expressed by s, or
// ErrInvalidTimeFormat. No upper bound is applied to the value.
func Parse(s string, now time.Time) (time.Time, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, p := range unitPatterns {
		match := p.re.FindStringSubmatch(s)
		if match == nil {
			continue
		}
		value, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		return now.Add(time.Duration(value) * p.unit), nil
	}

	match := shortPattern.FindStringSubmatch(s)
	if match == nil {
		return time.Time{}, ErrInvalidTimeFormat
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		return time.Time{}, ErrInvalidTimeFormat
	}

	switch match[2] {
	case "m":
		return now.Add(time.Duration(value) * time.Minute), nil
	case "h":
		return now.Add(time.Duration(value) * time.Hour), nil
	default: // "d"
		return now.Add(time.Duration(value) * 24 * time.Hour), nil
	}
}
