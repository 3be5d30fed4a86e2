package domain

import "strings"

// Field is a canonical quantity that may appear under several column names.
type Field string

const (
	FieldFloatID     Field = "float_id"
	FieldProfile     Field = "profile"
	FieldLatitude    Field = "latitude"
	FieldLongitude   Field = "longitude"
	FieldPressure    Field = "pressure"
	FieldTemperature Field = "temperature"
	FieldSalinity    Field = "salinity"
	FieldDate        Field = "date"
	FieldCycle       Field = "cycle_number"
	FieldDirection   Field = "direction"
	FieldQuality     Field = "quality_flag"
	FieldPositionQC  Field = "position_qc"
)

// fieldAliases lists accepted source columns per field, in lookup order.
var fieldAliases = map[Field][]string{
	FieldFloatID:     {"PLATFORM_NUMBER", "platform_number", "FLOAT_ID", "float_id", "WMO", "wmo"},
	FieldProfile:     {"PROFILE", "profile", "N_PROF", "n_prof"},
	FieldLatitude:    {"LATITUDE", "latitude", "LAT", "lat"},
	FieldLongitude:   {"LONGITUDE", "longitude", "LON", "lon"},
	FieldPressure:    {"PRES", "pressure", "PRESSURE"},
	FieldTemperature: {"TEMP", "temperature", "TEMPERATURE"},
	FieldSalinity:    {"PSAL", "salinity", "SALINITY"},
	FieldDate:        {"JULD", "juld", "DATE", "date", "REFERENCE_DATE_TIME"},
	FieldCycle:       {"CYCLE_NUMBER", "cycle_number", "CYCLE", "cycle"},
	FieldDirection:   {"DIRECTION", "direction", "PROFILE_DIRECTION", "profile_direction"},
	FieldQuality:     {"QUALITY_FLAG", "quality_flag", "TEMP_QC", "temp_qc", "QC", "qc"},
	FieldPositionQC:  {"POSITION_QC", "position_qc", "LOCATION_QUALITY", "location_quality"},
}

// Aliases returns a copy of the lookup order for a field.
func Aliases(f Field) []string {
	return append([]string(nil), fieldAliases[f]...)
}

// Resolve returns the first non-null value for f, probing its aliases
// exactly and then case-insensitively. Absence is not an error.
func Resolve(row Row, f Field) (string, bool) {
	aliases := fieldAliases[f]
	for _, alias := range aliases {
		if v, ok := row.values[alias]; ok && !isNull(v) {
			return strings.TrimSpace(v), true
		}
	}
	for _, alias := range aliases {
		if v, ok := row.folded[strings.ToLower(alias)]; ok && !isNull(v) {
			return strings.TrimSpace(v), true
		}
	}
	return "", false
}

// isNull reports whether a raw scalar is one of the null spellings exports use.
func isNull(v string) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return true
	}
	switch strings.ToLower(v) {
	case "null", "none", "nan", "na", "n/a", "--":
		return true
	}
	return false
}
