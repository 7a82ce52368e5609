// Package spreadsheet reads exported contact sheets into raw rows for the
// normalizer. CSV and TSV are supported; the delimiter is picked from the
// file extension unless forced in the options.
package spreadsheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Options control how a sheet is parsed.
type Options struct {
	// Comma is the field delimiter. Zero means detect from the extension:
	// '\t' for .tsv, ',' otherwise.
	Comma rune
}

// ReadFile loads all rows from the file at path.
func ReadFile(path string, opts Options) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	if opts.Comma == 0 {
		if strings.EqualFold(filepath.Ext(path), ".tsv") {
			opts.Comma = '\t'
		} else {
			opts.Comma = ','
		}
	}
	rows, err := Read(f, opts)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

// Read parses rows from r. Rows may have differing field counts; short or
// ragged rows are returned as-is and left for the normalizer to judge.
func Read(r io.Reader, opts Options) ([][]string, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}
