package subtitle

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// matches "H:MM:SS.mmm --> H:MM:SS.mmm" with either separator, and the
// WebVTT short form without hours
var timeRangeRegex = regexp.MustCompile(
	`((?:\d{1,2}:)?\d{2}:\d{2}[.,]\d{3})\s+-->\s+((?:\d{1,2}:)?\d{2}:\d{2}[.,]\d{3})`,
)

// parses a single timestamp into seconds
func ParseTimestamp(ts string) (float64, error) {
	ts = strings.TrimSpace(ts)
	sep := "."
	if strings.Contains(ts, ",") {
		sep = ","
	}

	parts := strings.Split(ts, ":")
	var hours, minutes, rest string
	switch len(parts) {
	case 3:
		hours, minutes, rest = parts[0], parts[1], parts[2]
	case 2:
		hours, minutes, rest = "0", parts[0], parts[1]
	default:
		return 0, fmt.Errorf("unsupported timestamp %q", ts)
	}

	secParts := strings.SplitN(rest, sep, 2)

	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", ts, err)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", ts, err)
	}
	s, err := strconv.Atoi(secParts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid seconds in %q: %w", ts, err)
	}

	seconds := float64(h*3600 + m*60 + s)
	if len(secParts) == 2 {
		frac := secParts[1]
		for len(frac) < 3 {
			frac += "0"
		}
		ms, err := strconv.Atoi(frac)
		if err != nil {
			return 0, fmt.Errorf("invalid milliseconds in %q: %w", ts, err)
		}
		seconds += float64(ms) / 1000
	}
	return seconds, nil
}

// formats seconds as HH:MM:SS.mmm (or ,mmm for SRT); milliseconds are
// rounded, negative or NaN input yields zero
func FormatTimestamp(seconds float64, format Format) string {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}

	totalMillis := int64(math.Round(seconds * 1000))
	hours := totalMillis / 3_600_000
	minutes := (totalMillis / 60_000) % 60
	secs := (totalMillis / 1000) % 60
	millis := totalMillis % 1000

	return fmt.Sprintf(
		"%02d:%02d:%02d%s%03d",
		hours,
		minutes,
		secs,
		format.separator(),
		millis,
	)
}

// finds the time range on a line, returning ok=false if there is none
func matchTimeRange(line string) (start, end float64, ok bool, err error) {
	m := timeRangeRegex.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, 0, false, nil
	}
	start, err = ParseTimestamp(m[1])
	if err != nil {
		return 0, 0, true, err
	}
	end, err = ParseTimestamp(m[2])
	if err != nil {
		return 0, 0, true, err
	}
	return start, end, true, nil
}

// replaces the two times on a time line, leaving any surrounding text
// such as WebVTT cue settings untouched
func rewriteTimeLine(template string, start, end float64, format Format) string {
	replacement := FormatTimestamp(start, format) + " --> " + FormatTimestamp(end, format)
	loc := timeRangeRegex.FindStringIndex(template)
	if loc == nil {
		return replacement
	}
	return template[:loc[0]] + replacement + template[loc[1]:]
}
