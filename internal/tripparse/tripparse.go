// Package tripparse turns raw bike-share CSV rows into normalized trips.
//
// Two trip layouts are recognized from the file header. Legacy exports carry
// a "Start date" column and a "Duration" column in whole seconds. Newer
// exports carry "started_at" and "ended_at" timestamps and the duration is
// their difference. The layout is resolved once per file and then applied to
// every row.
package tripparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MaxTripDuration is the longest accepted trip, in seconds (12 hours)
const MaxTripDuration = 43200

var (
	// ErrRowParse marks a row whose fields could not be parsed
	ErrRowParse = errors.New("unparseable row")
	// ErrRowRange marks a row whose duration is outside [0, MaxTripDuration]
	ErrRowRange = errors.New("duration out of range")
	// ErrUnsupportedSchema is returned for every row of a file with an unknown header
	ErrUnsupportedSchema = errors.New("unsupported schema")
)

// Schema identifies a trip file layout
type Schema int

const (
	SchemaUnknown Schema = iota
	SchemaStartDuration
	SchemaStartEnd
)

// Supported reports whether the schema is one the parser understands
func (s Schema) Supported() bool {
	return s == SchemaStartDuration || s == SchemaStartEnd
}

func (s Schema) String() string {
	switch s {
	case SchemaStartDuration:
		return "start+duration"
	case SchemaStartEnd:
		return "start+end"
	default:
		return "unknown"
	}
}

// Column names for each layout
const (
	ColStartDate = "Start date"
	ColDuration  = "Duration"
	ColStartedAt = "started_at"
	ColEndedAt   = "ended_at"
)

// Trip is a normalized trip record
type Trip struct {
	Date     string // YYYY-MM-DD of the trip start
	Hour     int    // 0-23
	Duration int64  // seconds
}

// Layout is a resolved schema plus the column positions it reads
type Layout struct {
	Schema Schema
	start  int
	second int // Duration column for start+duration, ended_at for start+end
	width  int // minimum row length
}

// DetectSchema resolves the layout from a header row.
// The start+duration layout wins when both column pairs are present.
func DetectSchema(header []string) Layout {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		name = strings.TrimSpace(name)
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	if s, ok := idx[ColStartDate]; ok {
		if d, ok := idx[ColDuration]; ok {
			return newLayout(SchemaStartDuration, s, d)
		}
	}
	if s, ok := idx[ColStartedAt]; ok {
		if e, ok := idx[ColEndedAt]; ok {
			return newLayout(SchemaStartEnd, s, e)
		}
	}
	return Layout{Schema: SchemaUnknown}
}

func newLayout(schema Schema, start, second int) Layout {
	return Layout{
		Schema: schema,
		start:  start,
		second: second,
		width:  max(start, second) + 1,
	}
}

// Supported reports whether rows of this layout can be parsed
func (l Layout) Supported() bool {
	return l.Schema.Supported()
}

// Parse normalizes one data row. Errors wrap ErrRowParse, ErrRowRange or
// ErrUnsupportedSchema.
func (l Layout) Parse(row []string) (Trip, error) {
	if l.Schema == SchemaUnknown {
		return Trip{}, ErrUnsupportedSchema
	}
	if len(row) < l.width {
		return Trip{}, fmt.Errorf("%w: row has %d fields, need %d", ErrRowParse, len(row), l.width)
	}

	var (
		trip Trip
		err  error
	)
	switch l.Schema {
	case SchemaStartDuration:
		trip, err = parseStartDuration(row[l.start], row[l.second])
	case SchemaStartEnd:
		trip, err = parseStartEnd(row[l.start], row[l.second])
	}
	if err != nil {
		return Trip{}, err
	}

	if trip.Duration < 0 || trip.Duration > MaxTripDuration {
		return Trip{}, fmt.Errorf("%w: %d seconds", ErrRowRange, trip.Duration)
	}
	return trip, nil
}

func parseStartDuration(start, duration string) (Trip, error) {
	secs, err := strconv.ParseInt(strings.TrimSpace(duration), 10, 64)
	if err != nil {
		return Trip{}, fmt.Errorf("%w: duration %q", ErrRowParse, duration)
	}
	date, hour, err := ParseStartDate(start)
	if err != nil {
		return Trip{}, err
	}
	return Trip{Date: date, Hour: hour, Duration: secs}, nil
}

func parseStartEnd(started, ended string) (Trip, error) {
	s, err := ParseTimestamp(started)
	if err != nil {
		return Trip{}, err
	}
	e, err := ParseTimestamp(ended)
	if err != nil {
		return Trip{}, err
	}
	return Trip{
		Date:     s.Format(time.DateOnly),
		Hour:     s.Hour(),
		Duration: int64(e.Sub(s) / time.Second),
	}, nil
}

// usStartLayouts cover unpadded US-style start dates
var usStartLayouts = []string{
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 3:04 PM",
}

// ParseStartDate reads the date and hour from a "Start date" value.
// Year-first values (YYYY/MM/DD HH:MM, YYYY-MM-DD HH:MM[:SS]) and padded
// US values (MM/DD/YYYY HH:MM) are read by fixed offsets; anything else
// falls back to the unpadded US layouts.
func ParseStartDate(s string) (string, int, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 13 {
		switch {
		case isDateSep(s[4]) && s[7] == s[4]:
			if date, hour, ok := fromParts(s[0:4], s[5:7], s[8:10], s[11:13]); ok {
				return date, hour, nil
			}
		case s[2] == '/' && s[5] == '/':
			if date, hour, ok := fromParts(s[6:10], s[0:2], s[3:5], s[11:13]); ok {
				return date, hour, nil
			}
		}
	}
	for _, layout := range usStartLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), t.Hour(), nil
		}
	}
	return "", 0, fmt.Errorf("%w: start date %q", ErrRowParse, s)
}

func isDateSep(c byte) bool {
	return c == '/' || c == '-'
}

func fromParts(year, month, day, hour string) (string, int, bool) {
	y, ok1 := atoiDigits(year)
	m, ok2 := atoiDigits(month)
	d, ok3 := atoiDigits(day)
	h, ok4 := atoiDigits(hour)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return "", 0, false
	}
	if !validDate(y, m, d) || h > 23 {
		return "", 0, false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d), h, true
}

// ParseTimestamp reads YYYY-MM-DD?HH:MM:SS[.ffffff] in UTC. The separator at
// offset 10 is not checked so both "T" and " " forms are accepted. Fractions
// are padded or truncated to microseconds; any other suffix is ignored.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	bad := func() (time.Time, error) {
		return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrRowParse, s)
	}
	if len(s) < 19 || s[4] != '-' || s[7] != '-' || s[13] != ':' || s[16] != ':' {
		return bad()
	}

	y, ok1 := atoiDigits(s[0:4])
	mo, ok2 := atoiDigits(s[5:7])
	d, ok3 := atoiDigits(s[8:10])
	h, ok4 := atoiDigits(s[11:13])
	mi, ok5 := atoiDigits(s[14:16])
	sec, ok6 := atoiDigits(s[17:19])
	if !ok1 || !ok2 || !ok3 || !ok4 || !ok5 || !ok6 {
		return bad()
	}
	if !validDate(y, mo, d) || h > 23 || mi > 59 || sec > 59 {
		return bad()
	}

	micro := 0
	if len(s) > 19 && s[19] == '.' {
		frac := s[20:]
		if len(frac) > 6 {
			frac = frac[:6]
		}
		frac += strings.Repeat("0", 6-len(frac))
		var ok bool
		if micro, ok = atoiDigits(frac); !ok {
			return bad()
		}
	}

	return time.Date(y, time.Month(mo), d, h, mi, sec, micro*1000, time.UTC), nil
}

func atoiDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	n := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

func validDate(y, m, d int) bool {
	if m < 1 || m > 12 || d < 1 {
		return false
	}
	return d <= time.Date(y, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
