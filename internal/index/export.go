package index

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ExportHeader is the column layout of a float export.
var ExportHeader = []string{"float_id", "profile_id", "pressure", "temperature", "salinity"}

// ExportFloatCSV writes every measurement of a float's profiles, in
// ingestion order. Missing salinity is an empty field. An unknown float
// produces just the header.
func (idx *Index) ExportFloatCSV(w io.Writer, floatID string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return fmt.Errorf("write export header: %w", err)
	}
	for _, p := range idx.ProfilesForFloat(floatID) {
		for _, m := range idx.measurements[p.ProfileID] {
			sal := ""
			if m.Salinity != nil {
				sal = formatFloat(*m.Salinity)
			}
			rec := []string{floatID, p.ProfileID, formatFloat(m.Pressure), formatFloat(m.Temperature), sal}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("write export row: %w", err)
			}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush export: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
