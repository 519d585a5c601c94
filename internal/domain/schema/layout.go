package schema

import (
	"fmt"
	"strings"
	"time"
)

// strftime directives and their Go reference layout equivalents.
var directives = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'e': "_2",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'L': ".000",
	'p': "PM",
	'Z': "Z07:00",
	'z': "-0700",
	'%': "%",
}

// isoLayouts are tried in order when a date field has no layout.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ConvertLayout translates a strftime-style layout such as "%b,%Y" to a
// Go time layout.
func ConvertLayout(layout string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(layout); i++ {
		c := layout[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(layout) {
			return "", fmt.Errorf("%w: trailing %% in %q", ErrLayout, layout)
		}
		i++
		g, ok := directives[layout[i]]
		if !ok {
			return "", fmt.Errorf("%w: %%%c in %q", ErrLayout, layout[i], layout)
		}
		b.WriteString(g)
	}
	return b.String(), nil
}

// ParseDate parses s with a Go layout, or as ISO-8601 when goLayout is
// empty. Month and weekday names match regardless of case.
func ParseDate(goLayout, s string) (time.Time, error) {
	if goLayout != "" {
		t, err := time.ParseInLocation(goLayout, s, time.UTC)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q is not a date", ErrCoerce, s)
		}
		return t, nil
	}
	for _, l := range isoLayouts {
		if t, err := time.ParseInLocation(l, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q is not an ISO-8601 date", ErrCoerce, s)
}
