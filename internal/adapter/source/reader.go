package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// sniffed are the delimiters tried for extensions that do not imply one.
var sniffed = []rune{',', '\t', ';', '|'}

// Read parses one export into rows keyed by its header line.
func Read(path string) ([]domain.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	rows, err := Parse(bytes.NewReader(data), Delimiter(path, data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return rows, nil
}

// Delimiter picks the field separator from the extension, sniffing the
// header line of .txt and .dat files.
func Delimiter(path string, data []byte) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ','
	case ".tsv":
		return '\t'
	}
	header := headerLine(data)
	best, bestN := ',', 0
	for _, d := range sniffed {
		if n := strings.Count(header, string(d)); n > bestN {
			best, bestN = d, n
		}
	}
	return best
}

// headerLine returns the first line that is neither blank nor a comment.
func headerLine(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			return line
		}
	}
	return ""
}

// Parse reads delimited text whose first record is a header. Records may be
// shorter or longer than the header: missing columns are absent and extra
// fields are ignored. Lines starting with '#' are comments.
func Parse(r io.Reader, delim rune) ([]domain.Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = delim
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	// Trimming would swallow empty fields when the delimiter is a tab.
	cr.TrimLeadingSpace = delim != '\t'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", ErrMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: header: %w", ErrMalformed, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(h)
	}

	var rows []domain.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		values := make(map[string]string, len(columns))
		for i, col := range columns {
			if col == "" || i >= len(rec) {
				continue
			}
			if _, dup := values[col]; dup {
				continue
			}
			values[col] = rec[i]
		}
		rows = append(rows, domain.NewRow(values))
	}
	return rows, nil
}
