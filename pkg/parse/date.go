package parse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

var (
	utcSuffixRe = regexp.MustCompile(`(?i)z$`)
	dateLayouts = makeDateLayouts()
)

// time.Parse gives unknown zone abbreviations a zero offset, so RFC 822 ones are rewritten to numeric offsets.
var rfc822Zones = map[string]string{
	"UT":  "+0000",
	"GMT": "+0000",
	"EST": "-0500",
	"EDT": "-0400",
	"CST": "-0600",
	"CDT": "-0500",
	"MST": "-0700",
	"MDT": "-0600",
	"PST": "-0800",
	"PDT": "-0700",
}

// Date parses RFC 822 and ISO 8601 dates found in feeds. A trailing Z (of any case) is treated as UTC.
func Date(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("invalid date: %q", value)
	}

	normalized := utcSuffixRe.ReplaceAllString(normalizeZone(value), "-00:00")

	for _, layout := range dateLayouts {
		if date, err := time.Parse(layout, normalized); err == nil {
			return date.UTC(), nil
		}
	}

	date, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %q", value)
	}

	return date.UTC(), nil
}

func normalizeZone(value string) string {
	index := strings.LastIndexByte(value, ' ')
	if index == -1 {
		return value
	}

	if offset, ok := rfc822Zones[value[index+1:]]; ok {
		return value[:index+1] + offset
	}

	return value
}

func makeDateLayouts() []string {
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04-07:00",
		"2006-01-02 15:04:05 -0700",
		"2006-01-02 15:04:05-07:00",
		"2006-01-02",
	}

	for _, tz := range []string{"MST", "-0700", "-07:00"} {
		for _, year := range []string{"2006", "06"} {
			for _, day := range []string{"02", "2"} {
				for _, weekday := range []string{"Mon, ", ""} {
					layouts = append(layouts, fmt.Sprintf("%s%s Jan %s 15:04:05 %s", weekday, day, year, tz))
				}
			}
		}
	}

	return layouts
}
