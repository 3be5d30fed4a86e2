package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DepthFactor converts decibars to meters of seawater.
const DepthFactor = 1.019716

const (
	defaultProfileKey  = "0"
	defaultQualityFlag = "1"
)

// DecodeRow resolves every canonical field of row into a RawRow. fileName is
// the source file, used as the date of last resort.
func DecodeRow(row Row, fileName string) RawRow {
	r := RawRow{
		ProfileKey:  defaultProfileKey,
		Date:        DecodeDate(row, fileName),
		Direction:   Ascending,
		QualityFlag: defaultQualityFlag,
		PositionQC:  defaultQualityFlag,
	}

	if v, ok := Resolve(row, FieldFloatID); ok {
		r.FloatID = v
	}
	if v, ok := Resolve(row, FieldProfile); ok {
		r.ProfileKey = v
	}

	r.Latitude = resolveValid(row, FieldLatitude)
	r.Longitude = resolveValid(row, FieldLongitude)
	r.Pressure = resolveValid(row, FieldPressure)
	r.Temperature = resolveValid(row, FieldTemperature)
	r.Salinity = resolveValid(row, FieldSalinity)

	if v, ok := Resolve(row, FieldCycle); ok {
		r.CycleNumber = parseIntOrZero(v)
	}
	if v, ok := Resolve(row, FieldDirection); ok {
		r.Direction = parseDirection(v)
	}
	if v, ok := Resolve(row, FieldQuality); ok {
		r.QualityFlag = firstChar(v)
	}
	if v, ok := Resolve(row, FieldPositionQC); ok {
		r.PositionQC = firstChar(v)
	}
	return r
}

// resolveValid resolves f and keeps it only when it passes IsValid.
func resolveValid(row Row, f Field) *float64 {
	raw, ok := Resolve(row, f)
	if !ok {
		return nil
	}
	v, ok := ParseValid(raw)
	if !ok {
		return nil
	}
	return &v
}

// parseIntOrZero accepts "12" and "12.0", returning 0 on failure.
func parseIntOrZero(s string) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !ValidValue(f) {
		return 0
	}
	return int(f)
}

func parseDirection(s string) Direction {
	if strings.EqualFold(firstChar(s), string(Descending)) {
		return Descending
	}
	return Ascending
}

func firstChar(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultQualityFlag
	}
	return string([]rune(s)[:1])
}

// GroupProfiles partitions rows by resolved float id and profile key,
// ordered by first appearance and preserving row order within each group.
// Rows of different floats never share a group, even under the same key.
func GroupProfiles(rows []RawRow) []ProfileGroup {
	type groupKey struct{ floatID, key string }
	var groups []ProfileGroup
	pos := make(map[groupKey]int)
	for _, r := range rows {
		k := groupKey{r.FloatID, r.ProfileKey}
		i, ok := pos[k]
		if !ok {
			i = len(groups)
			pos[k] = i
			groups = append(groups, ProfileGroup{FloatID: r.FloatID, Key: r.ProfileKey})
		}
		groups[i].Rows = append(groups[i].Rows, r)
	}
	return groups
}

// ProfileID builds the index-wide identity of a profile from its float, the
// day of its source file, and its file-local key.
func ProfileID(floatID string, fileDate time.Time, key string) string {
	return fmt.Sprintf("%s_%s_%s", floatID, fileDate.Format("20060102"), key)
}

// SyntheticFloatID names a float whose rows carry no identity column.
func SyntheticFloatID(fileDate time.Time, key string) string {
	return fmt.Sprintf("%s-%s", fileDate.Format("20060102"), key)
}

// Depth converts pressure in decibars to depth in meters.
func Depth(pressure float64) float64 {
	return pressure * DepthFactor
}

// BuildMeasurements keeps the rows whose pressure and temperature are both
// valid. Salinity is carried when valid and omitted otherwise.
func BuildMeasurements(profileID string, rows []RawRow) []MeasurementRecord {
	out := make([]MeasurementRecord, 0, len(rows))
	for _, r := range rows {
		if r.Pressure == nil || r.Temperature == nil {
			continue
		}
		m := MeasurementRecord{
			ProfileID:   profileID,
			Pressure:    *r.Pressure,
			Temperature: *r.Temperature,
			Depth:       Depth(*r.Pressure),
			QualityFlag: r.QualityFlag,
		}
		if r.Salinity != nil {
			s := *r.Salinity
			m.Salinity = &s
		}
		out = append(out, m)
	}
	return out
}

// Summarize computes per-profile means. Means are nil when no value exists.
func Summarize(p ProfileRecord, ms []MeasurementRecord) ProfileSummary {
	s := ProfileSummary{
		ProfileID:        p.ProfileID,
		ProfileDate:      p.ProfileDate,
		CycleNumber:      p.CycleNumber,
		MeasurementCount: len(ms),
	}
	var pres, temp, sal mean
	for _, m := range ms {
		pres.add(m.Pressure)
		temp.add(m.Temperature)
		if m.Salinity != nil {
			sal.add(*m.Salinity)
		}
	}
	s.MeanPressure = pres.value()
	s.MeanTemperature = temp.value()
	s.MeanSalinity = sal.value()
	return s
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() *float64 {
	if m.n == 0 {
		return nil
	}
	v := m.sum / float64(m.n)
	return &v
}
