package extraction

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var nonNumeric = regexp.MustCompile(`[^0-9.]`)

// parseNumber strips everything but digits and '.' and parses the rest.
func parseNumber(s string) (float64, bool) {
	s = nonNumeric.ReplaceAllString(s, "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// parseCount parses s like parseNumber and requires a non-negative whole
// number, so "42,000 lbs." and "26.0" are counts and "4.5" is not.
func parseCount(s string) (int, bool) {
	f, ok := parseNumber(s)
	if !ok || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

var (
	isoDate  = regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`)
	usDate   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2}|\d{4})\b`)
	clock    = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})(?::\d{2})?\s*([ap]\.?m\.?)?`)
	military = regexp.MustCompile(`^\s*(\d{2})(\d{2})\s*(?:hrs?)?\s*$`)
)

// parseDate finds a YYYY-MM-DD or MM/DD/YYYY date in s and returns it as YYYY-MM-DD.
func parseDate(s string) (string, bool) {
	var y, m, d int
	if g := isoDate.FindStringSubmatch(s); g != nil {
		y, _ = strconv.Atoi(g[1])
		m, _ = strconv.Atoi(g[2])
		d, _ = strconv.Atoi(g[3])
	} else if g := usDate.FindStringSubmatch(s); g != nil {
		m, _ = strconv.Atoi(g[1])
		d, _ = strconv.Atoi(g[2])
		y, _ = strconv.Atoi(g[3])
		if len(g[3]) == 2 {
			y += 2000
		}
	} else {
		return "", false
	}

	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return "", false
	}
	return t.Format(time.DateOnly), true
}

// parseClock finds an H:MM time, optionally with AM/PM, or an HHMM military
// time in s and returns it as HH:MM.
func parseClock(s string) (string, bool) {
	var h, m int
	if g := clock.FindStringSubmatch(s); g != nil {
		h, _ = strconv.Atoi(g[1])
		m, _ = strconv.Atoi(g[2])
		switch strings.ToLower(strings.ReplaceAll(g[3], ".", "")) {
		case "am":
			if h == 12 {
				h = 0
			}
		case "pm":
			if h < 12 {
				h += 12
			}
		}
	} else if g := military.FindStringSubmatch(s); g != nil {
		h, _ = strconv.Atoi(g[1])
		m, _ = strconv.Atoi(g[2])
	} else {
		return "", false
	}

	if h > 23 || m > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", h, m), true
}

// appointment combines a date value and a time value into YYYY-MM-DDTHH:MM.
// A missing time falls back to a time embedded in the date value, then 00:00.
func appointment(dateValue, timeValue string) *string {
	date, ok := parseDate(dateValue)
	if !ok {
		return nil
	}
	hm, ok := parseClock(timeValue)
	if !ok {
		if hm, ok = parseClock(stripDate(dateValue)); !ok {
			hm = "00:00"
		}
	}
	out := date + "T" + hm
	return &out
}

func stripDate(s string) string {
	s = isoDate.ReplaceAllString(s, " ")
	return usDate.ReplaceAllString(s, " ")
}

var (
	cityComma = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z .'-]*?)\s*,\s*([A-Za-z]{2})\.?(?:\s+(\d{5}(?:-\d{4})?))?\s*$`)
	citySpace = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z .'-]*?)\s+([A-Z]{2})(?:\s+(\d{5}(?:-\d{4})?))?\s*$`)
)

// cityLine is a parsed "City, ST ZIP" or "City ST ZIP" line.
type cityLine struct {
	City  string
	State string
	Zip   string
}

func parseCityLine(s string) (cityLine, bool) {
	g := cityComma.FindStringSubmatch(s)
	if g == nil {
		g = citySpace.FindStringSubmatch(s)
	}
	if g == nil {
		return cityLine{}, false
	}
	return cityLine{
		City:  strings.TrimSpace(g[1]),
		State: strings.ToUpper(g[2]),
		Zip:   g[3],
	}, true
}
