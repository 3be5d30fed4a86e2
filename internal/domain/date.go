package domain

import (
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// ArgoEpoch is the reference instant of ARGO Julian-day offsets.
	ArgoEpoch = time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC)

	// DefaultDate is used when neither the row nor the file name carries a
	// decodable date. It doubles as the deployment date of new floats.
	DefaultDate = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

	// fileDateRe matches the 8-digit date that precedes the "_prof" suffix,
	// e.g. "20201122_prof.csv" -> "20201122".
	fileDateRe = regexp.MustCompile(`(\d{8})_prof(?:\.[^.]*)?$`)
)

// julianFill is the first Julian offset treated as a fill value.
const julianFill = 999999

// calendarLayouts are tried in order before falling back to Julian days.
var calendarLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"20060102150405",
	"20060102",
}

// DecodeDate returns the timestamp of a row. It tries the row's date
// aliases, then the date embedded in fileName, then DefaultDate.
func DecodeDate(row Row, fileName string) time.Time {
	if raw, ok := Resolve(row, FieldDate); ok {
		if t, ok := DecodeDateValue(raw); ok {
			return t
		}
	}
	if t, ok := DateFromFileName(fileName); ok {
		return t
	}
	return DefaultDate
}

// DecodeDateValue parses a calendar string, or failing that a numeric
// Julian-day offset from ArgoEpoch.
func DecodeDateValue(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range calendarLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}

	days, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return time.Time{}, false
	}
	return julianToTime(days)
}

// julianToTime converts fractional days since ArgoEpoch, rejecting fill
// values. Whole days go through AddDate so large offsets cannot overflow a
// time.Duration.
func julianToTime(days float64) (time.Time, bool) {
	if !ValidValue(days) || days >= julianFill {
		return time.Time{}, false
	}
	whole := math.Floor(days)
	frac := days - whole
	t := ArgoEpoch.AddDate(0, 0, int(whole))
	ms := math.Round(frac * float64(24*time.Hour/time.Millisecond))
	return t.Add(time.Duration(ms) * time.Millisecond), true
}

// DateFromFileName extracts the YYYYMMDD token of "<YYYYMMDD>_prof.<ext>".
func DateFromFileName(name string) (time.Time, bool) {
	m := fileDateRe.FindStringSubmatch(filepath.Base(name))
	if len(m) != 2 {
		return time.Time{}, false
	}
	t, err := time.Parse("20060102", m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
