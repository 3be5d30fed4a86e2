// Package domain models ARGO profiling-float exports and the pure,
// stateless stages that normalize them.
//
// # Data Source
//
// Exports are delimited-text files named "<YYYYMMDD>_prof.<ext>", one per
// day, flattened from the ARGO GDAC daily profile files. Each row is one
// vertical level of one profile. The column set is not fixed: the same
// quantity shows up under different names and cases depending on the tool
// that produced the export.
//
// # Column Aliases
//
// Every canonical field is looked up through an ordered alias list (see
// [Resolve]). Exact matches are tried first, then a case-insensitive pass.
//
//	float id:    PLATFORM_NUMBER, platform_number, FLOAT_ID, float_id, WMO, wmo
//	latitude:    LATITUDE, latitude, LAT, lat
//	pressure:    PRES, pressure, PRESSURE
//	date:        JULD, juld, DATE, date, REFERENCE_DATE_TIME
//
// Adding an alias is a change to the fieldAliases table only.
//
// # ARGO Conventions
//
// Fill values:
//
//	99999.0 is the ARGO fill value for measurements and coordinates.
//	Values at or below -999 are treated as fill as well.
//	Julian offsets at or above 999999 are fill.
//
// Dates:
//
//	JULD is a count of days (fractional) since 1950-01-01T00:00:00Z.
//	REFERENCE_DATE_TIME uses the compact YYYYMMDDHHMISS layout.
//	When a row carries no decodable date, the date in the file name is used,
//	then DefaultDate. Decoding never fails.
//
// Depth:
//
//	depth (m) = pressure (dbar) * 1.019716, the usual seawater approximation.
//
// Profile direction is "A" (ascending) or "D" (descending); anything else
// reads as ascending. Quality flags are single characters, "1" (good) when
// absent.
package domain
