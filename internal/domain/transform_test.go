package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestDecodeRow(t *testing.T) {
	t.Run("full ARGO row", func(t *testing.T) {
		row := NewRow(map[string]string{
			"PLATFORM_NUMBER": "2901001 ",
			"PROFILE":         "3",
			"CYCLE_NUMBER":    "42",
			"DIRECTION":       "D",
			"JULD":            "25872",
			"LATITUDE":        "10.5",
			"LONGITUDE":       "70.3",
			"PRES":            "5.0",
			"TEMP":            "27.1",
			"PSAL":            "35.2",
			"TEMP_QC":         "2",
			"POSITION_QC":     "1",
		})
		r := DecodeRow(row, testFileName)

		assert.Equal(t, "2901001", r.FloatID)
		assert.Equal(t, "3", r.ProfileKey)
		assert.Equal(t, 42, r.CycleNumber)
		assert.Equal(t, Descending, r.Direction)
		assert.Equal(t, day(2020, 11, 1), r.Date)
		assert.Equal(t, ptr(10.5), r.Latitude)
		assert.Equal(t, ptr(70.3), r.Longitude)
		assert.Equal(t, ptr(5.0), r.Pressure)
		assert.Equal(t, ptr(27.1), r.Temperature)
		assert.Equal(t, ptr(35.2), r.Salinity)
		assert.Equal(t, "2", r.QualityFlag)
		assert.Equal(t, "1", r.PositionQC)
	})

	t.Run("defaults", func(t *testing.T) {
		r := DecodeRow(NewRow(map[string]string{"pressure": "1"}), testFileName)

		assert.Empty(t, r.FloatID)
		assert.Equal(t, "0", r.ProfileKey)
		assert.Equal(t, 0, r.CycleNumber)
		assert.Equal(t, Ascending, r.Direction)
		assert.Equal(t, "1", r.QualityFlag)
		assert.Equal(t, "1", r.PositionQC)
		assert.Equal(t, day(2020, 11, 22), r.Date)
		assert.Nil(t, r.Temperature)
		assert.Nil(t, r.Salinity)
	})

	t.Run("sentinels become nil", func(t *testing.T) {
		r := DecodeRow(NewRow(map[string]string{"PRES": "99999.0", "TEMP": "27.1", "PSAL": "-999"}), testFileName)
		assert.Nil(t, r.Pressure)
		assert.NotNil(t, r.Temperature)
		assert.Nil(t, r.Salinity)
	})

	t.Run("float cycle number", func(t *testing.T) {
		r := DecodeRow(NewRow(map[string]string{"cycle": "7.0"}), testFileName)
		assert.Equal(t, 7, r.CycleNumber)
	})

	t.Run("unknown direction reads ascending", func(t *testing.T) {
		r := DecodeRow(NewRow(map[string]string{"direction": "X"}), testFileName)
		assert.Equal(t, Ascending, r.Direction)
	})
}

func TestRawRow_Position(t *testing.T) {
	r := DecodeRow(NewRow(map[string]string{"LATITUDE": "95.0", "LONGITUDE": "70.0"}), testFileName)
	_, ok := r.Position()
	assert.False(t, ok)

	r = DecodeRow(NewRow(map[string]string{"lat": "-5", "lon": "200"}), testFileName)
	p, ok := r.Position()
	require.True(t, ok)
	assert.Equal(t, Position{Latitude: -5, Longitude: -160}, p)

	r = DecodeRow(NewRow(map[string]string{"lat": "-5"}), testFileName)
	_, ok = r.Position()
	assert.False(t, ok)
}

func TestGroupProfiles(t *testing.T) {
	rows := []RawRow{
		{ProfileKey: "1", CycleNumber: 1},
		{ProfileKey: "0", CycleNumber: 2},
		{ProfileKey: "1", CycleNumber: 3},
		{ProfileKey: "0", CycleNumber: 4},
		{ProfileKey: "2", CycleNumber: 5},
	}

	groups := GroupProfiles(rows)
	require.Len(t, groups, 3)

	assert.Equal(t, "1", groups[0].Key)
	assert.Equal(t, "0", groups[1].Key)
	assert.Equal(t, "2", groups[2].Key)

	assert.Equal(t, []int{1, 3}, cycles(groups[0].Rows))
	assert.Equal(t, []int{2, 4}, cycles(groups[1].Rows))
	assert.Equal(t, []int{5}, cycles(groups[2].Rows))
}

func TestGroupProfiles_SeparatesFloatsWithoutProfileColumn(t *testing.T) {
	rows := []RawRow{
		DecodeRow(NewRow(map[string]string{"PLATFORM_NUMBER": "a", "PRES": "5", "TEMP": "28"}), testFileName),
		DecodeRow(NewRow(map[string]string{"PLATFORM_NUMBER": "b", "PRES": "5", "TEMP": "12"}), testFileName),
		DecodeRow(NewRow(map[string]string{"PLATFORM_NUMBER": "a", "PRES": "50", "TEMP": "25"}), testFileName),
	}

	groups := GroupProfiles(rows)
	require.Len(t, groups, 2)

	assert.Equal(t, "a", groups[0].FloatID)
	assert.Equal(t, "0", groups[0].Key)
	require.Len(t, groups[0].Rows, 2)
	assert.Equal(t, 28.0, *groups[0].Rows[0].Temperature)
	assert.Equal(t, 25.0, *groups[0].Rows[1].Temperature)

	assert.Equal(t, "b", groups[1].FloatID)
	assert.Equal(t, "0", groups[1].Key)
	require.Len(t, groups[1].Rows, 1)
	assert.Equal(t, 12.0, *groups[1].Rows[0].Temperature)
}

func TestGroupProfiles_Empty(t *testing.T) {
	assert.Empty(t, GroupProfiles(nil))
}

func cycles(rows []RawRow) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.CycleNumber
	}
	return out
}

func TestBuildMeasurements(t *testing.T) {
	rows := []RawRow{
		{Pressure: ptr(5), Temperature: ptr(27.1), Salinity: ptr(35.2), QualityFlag: "1"},
		{Pressure: nil, Temperature: ptr(27.1), QualityFlag: "1"},
		{Pressure: ptr(10), Temperature: nil, QualityFlag: "1"},
		{Pressure: ptr(20), Temperature: ptr(26.4), QualityFlag: "3"},
	}

	ms := BuildMeasurements("p-1", rows)
	require.Len(t, ms, 2)

	assert.Equal(t, "p-1", ms[0].ProfileID)
	assert.Equal(t, 5.0, ms[0].Pressure)
	assert.InDelta(t, 5*1.019716, ms[0].Depth, 1e-9)
	require.NotNil(t, ms[0].Salinity)
	assert.Equal(t, 35.2, *ms[0].Salinity)

	assert.Equal(t, 20.0, ms[1].Pressure)
	assert.Nil(t, ms[1].Salinity)
	assert.Equal(t, "3", ms[1].QualityFlag)
}

func TestBuildMeasurements_SentinelPressureDropsRow(t *testing.T) {
	r := DecodeRow(NewRow(map[string]string{"PRES": "99999.0", "TEMP": "27.1"}), testFileName)
	assert.Empty(t, BuildMeasurements("p", []RawRow{r}))
}

func TestDepth(t *testing.T) {
	for _, p := range []float64{0, 1, 5.5, 1000, 2000.25} {
		assert.InDelta(t, p*1.019716, Depth(p), 1e-9)
	}
}

func TestProfileID(t *testing.T) {
	assert.Equal(t, "2901001_20201122_0", ProfileID("2901001", day(2020, 11, 22), "0"))
	assert.Equal(t, "20201122-4", SyntheticFloatID(day(2020, 11, 22), "4"))
}

func TestSummarize(t *testing.T) {
	p := ProfileRecord{ProfileID: "p", ProfileDate: day(2020, 11, 1), CycleNumber: 9}
	ms := []MeasurementRecord{
		{Pressure: 10, Temperature: 20, Salinity: ptr(35)},
		{Pressure: 30, Temperature: 10},
	}

	s := Summarize(p, ms)
	assert.Equal(t, 2, s.MeasurementCount)
	assert.Equal(t, 9, s.CycleNumber)
	assert.Equal(t, ptr(20), s.MeanPressure)
	assert.Equal(t, ptr(15), s.MeanTemperature)
	assert.Equal(t, ptr(35), s.MeanSalinity)

	empty := Summarize(p, nil)
	assert.Zero(t, empty.MeasurementCount)
	assert.Nil(t, empty.MeanTemperature)
	assert.True(t, empty.ProfileDate.Equal(time.Date(2020, 11, 1, 0, 0, 0, 0, time.UTC)))
}
