package project

import (
	"regexp"
	"strings"
	"time"
)

var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
}

// ParseDate parses the date notations found in documents: dd.mm.yyyy
// (optionally without zero padding) and ISO yyyy-mm-dd.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

var rangeRe = regexp.MustCompile(`^(\d{1,2})-\d{1,2}\.(\d{1,2}\.\d{4})$`)

// ParseDateRange parses the dd-dd.mm.yyyy range notation and returns the
// first day of the range.
func ParseDateRange(s string) (time.Time, bool) {
	m := rangeRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return time.Time{}, false
	}
	return ParseDate(m[1] + "." + m[2])
}
