// Package source discovers daily float exports on disk and reads them into
// opaque rows.
package source

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/couchcryptid/argo-float-etl/internal/domain"
)

var (
	// ErrSourceDir means the configured directory is missing or unreadable.
	// It is the only fatal ingestion error.
	ErrSourceDir = errors.New("source directory unavailable")

	// ErrMalformed means a file could not be parsed as delimited text.
	ErrMalformed = errors.New("malformed source file")
)

var fileNameRe = regexp.MustCompile(`^\d{8}_prof\.(csv|tsv|txt|dat)$`)

// File is one discovered daily export.
type File struct {
	Path string
	Date time.Time // from the file name, domain.DefaultDate if it is not a real day
}

// Name returns the file's base name.
func (f File) Name() string { return filepath.Base(f.Path) }

// Discover walks dir recursively and returns every "<YYYYMMDD>_prof.<ext>"
// file, ordered by file name and then by path. Unreadable subdirectories are
// skipped.
func Discover(dir string) ([]File, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSourceDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSourceDir, dir)
	}

	var files []File
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !fileNameRe.MatchString(strings.ToLower(d.Name())) {
			return nil
		}
		date, ok := domain.DateFromFileName(strings.ToLower(d.Name()))
		if !ok {
			date = domain.DefaultDate
		}
		files = append(files, File{Path: path, Date: date})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", ErrSourceDir, dir, err)
	}

	slices.SortFunc(files, func(a, b File) int {
		if c := strings.Compare(a.Name(), b.Name()); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return files, nil
}
