// Package timex parses the three time grammars accepted on the command
// line: absolute UT timestamps, raw epoch seconds, and relative offsets.
// Exact lexical detail is a thin external collaborator (spec.md §1); this
// package implements just enough grammar to drive the resampling core.
package timex

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseAbsolute parses tstart/tend in the UTYYYYMMDDTHH[:MM[:SS[.fff…]]]
// grammar or as bare floating-point epoch seconds.
func ParseAbsolute(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("timex: empty timestamp")
	}
	if strings.HasPrefix(s, "UT") {
		return parseUT(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("timex: %q is neither UT-form nor epoch seconds: %w", s, err)
	}
	return v, nil
}

// ParseEnd parses tend, which additionally accepts a relative offset from
// tstart: +SS.fff, +MM:SS.fff, or +HH:MM:SS.fff.
func ParseEnd(s string, tstart float64) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "+") {
		offset, err := parseRelativeOffset(s[1:])
		if err != nil {
			return 0, fmt.Errorf("timex: bad relative tend %q: %w", s, err)
		}
		return tstart + offset, nil
	}
	return ParseAbsolute(s)
}

func parseUT(s string) (float64, error) {
	body := s[2:]
	idx := strings.Index(body, "T")
	if idx < 0 {
		return 0, fmt.Errorf("timex: missing T separator in %q", s)
	}
	datePart, timePart := body[:idx], body[idx+1:]
	if len(datePart) != 8 {
		return 0, fmt.Errorf("timex: expected YYYYMMDD, got %q", datePart)
	}
	year, err := strconv.Atoi(datePart[0:4])
	if err != nil {
		return 0, err
	}
	month, err := strconv.Atoi(datePart[4:6])
	if err != nil {
		return 0, err
	}
	day, err := strconv.Atoi(datePart[6:8])
	if err != nil {
		return 0, err
	}

	hour, minute, sec, err := parseClock(timePart)
	if err != nil {
		return 0, err
	}

	whole := int(sec)
	frac := sec - float64(whole)
	t := time.Date(year, time.Month(month), day, hour, minute, whole, 0, time.UTC)
	return float64(t.Unix()) + frac, nil
}

// parseClock accepts HH, HH:MM, or HH:MM:SS.fff, defaulting omitted
// trailing fields to zero.
func parseClock(s string) (hour, minute int, sec float64, err error) {
	parts := strings.Split(s, ":")
	if len(parts) == 0 || len(parts[0]) == 0 {
		return 0, 0, 0, fmt.Errorf("timex: missing hour in clock %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, err
	}
	if len(parts) >= 2 {
		minute, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0, 0, 0, err
		}
	}
	if len(parts) >= 3 {
		sec, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0, 0, 0, err
		}
	}
	if len(parts) > 3 {
		return 0, 0, 0, fmt.Errorf("timex: too many clock fields in %q", s)
	}
	return hour, minute, sec, nil
}

// parseRelativeOffset accepts SS.fff, MM:SS.fff, or HH:MM:SS.fff and
// returns the offset in seconds.
func parseRelativeOffset(s string) (float64, error) {
	parts := strings.Split(s, ":")
	var hours, minutes float64
	var secs float64
	var err error
	switch len(parts) {
	case 1:
		secs, err = strconv.ParseFloat(parts[0], 64)
	case 2:
		minutes, err = strconv.ParseFloat(parts[0], 64)
		if err == nil {
			secs, err = strconv.ParseFloat(parts[1], 64)
		}
	case 3:
		hours, err = strconv.ParseFloat(parts[0], 64)
		if err == nil {
			minutes, err = strconv.ParseFloat(parts[1], 64)
		}
		if err == nil {
			secs, err = strconv.ParseFloat(parts[2], 64)
		}
	default:
		return 0, fmt.Errorf("timex: unrecognized relative offset %q", s)
	}
	if err != nil {
		return 0, err
	}
	return hours*3600 + minutes*60 + secs, nil
}

// DayStart returns the UTC midnight that begins the calendar day
// containing t (t expressed as epoch seconds).
func DayStart(t float64) time.Time {
	tm := time.Unix(int64(t), 0).UTC()
	return time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC)
}

// DayDirName renders the YYYYMMDD directory-name form of a day boundary.
func DayDirName(day time.Time) string {
	return day.Format("20060102")
}
