package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xavier-xia-99/delphi-epidata/internal/domain"
)

// RequiredColumns is the schema every signal CSV must carry. Extra columns
// are allowed and ignored; order is irrelevant. Changing this set is a
// breaking change for every producer.
var RequiredColumns = []string{
	"geo_id",
	"val",
	"se",
	"sample_size",
	"missing_value",
	"missing_stderr",
	"missing_sample_size",
}

// ErrInvalidHeader is returned by OpenCSV when a file's header is missing
// required columns. It rejects the whole file; no rows are read.
var ErrInvalidHeader = errors.New("header missing required columns")

// IsHeaderValid reports whether columns is a superset of RequiredColumns.
func IsHeaderValid(columns []string) bool {
	have := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		have[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	for _, c := range RequiredColumns {
		if _, ok := have[c]; !ok {
			return false
		}
	}
	return true
}

// Loader streams sanity-checked rows from one signal CSV file. It is a
// single-pass, forward-only reader; abandoning it early and calling Close
// is the way to cancel.
type Loader struct {
	f       *os.File
	r       *csv.Reader
	columns map[string]int
	geoType string
}

// OpenCSV opens a signal file and validates its header. It returns
// ErrInvalidHeader (wrapped) when the header fails the schema check, and
// plain I/O errors when the file cannot be read.
func OpenCSV(path, geoType string) (*Loader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // short rows reject individually, not fatally

	header, err := r.Read()
	if err != nil {
		f.Close()
		if err == io.EOF {
			return nil, fmt.Errorf("%s: empty file: %w", path, ErrInvalidHeader)
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	if !IsHeaderValid(header) {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, ErrInvalidHeader)
	}

	columns := make(map[string]int, len(header))
	for i, c := range header {
		columns[strings.ToLower(strings.TrimSpace(c))] = i
	}

	return &Loader{f: f, r: r, columns: columns, geoType: geoType}, nil
}

// Next returns the next data row. Accepted rows come back as
// (values, "", nil); rejected rows as (nil, failedField, nil) with
// iteration continuing; the end of the file is (nil, "", io.EOF). Rows the
// CSV layer itself cannot parse are rejected with the pseudo-field "csv".
func (l *Loader) Next() (*domain.RowValues, string, error) {
	record, err := l.r.Read()
	if err == io.EOF {
		return nil, "", io.EOF
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, "csv", nil
		}
		return nil, "", err
	}

	values, failed := domain.ExtractAndCheckRow(l.rowFromRecord(record), l.geoType)
	if failed != "" {
		return nil, failed, nil
	}
	return values, "", nil
}

// Close releases the underlying file handle.
func (l *Loader) Close() error {
	return l.f.Close()
}

func (l *Loader) rowFromRecord(record []string) domain.CSVRow {
	field := func(name string) string {
		i, ok := l.columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	return domain.CSVRow{
		GeoID:             field("geo_id"),
		Value:             field("val"),
		Stderr:            field("se"),
		SampleSize:        field("sample_size"),
		MissingValue:      field("missing_value"),
		MissingStderr:     field("missing_stderr"),
		MissingSampleSize: field("missing_sample_size"),
	}
}
