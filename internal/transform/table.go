package transform

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Record is one row of a source table keyed by column header.
type Record map[string]string

// DelimiterFor picks the field delimiter from a file extension: tab for
// .tsv and .txt, comma otherwise.
func DelimiterFor(path string) rune {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tsv", ".txt":
		return '\t'
	default:
		return ','
	}
}

// ReadTable reads a delimited table whose first row is the header. Short
// rows leave the missing columns empty; extra cells are dropped.
func ReadTable(r io.Reader, delimiter rune) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	for i, h := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var records []Record

	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := make(Record, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}

			if i < len(row) {
				rec[h] = strings.TrimSpace(row[i])
			} else {
				rec[h] = ""
			}
		}

		records = append(records, rec)
	}

	return records, nil
}

// ReadTableFile reads the table at path, choosing the delimiter by extension.
func ReadTableFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadTable(f, DelimiterFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return records, nil
}
