package domain

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// twoLetterRe matches state and nation codes after lower-casing.
	twoLetterRe = regexp.MustCompile(`^[a-z]{2}$`)

	// fiveDigitRe matches zero-padded county FIPS and MSA codes.
	fiveDigitRe = regexp.MustCompile(`^\d{5}$`)
)

// CSVRow carries one raw data row, values exactly as they appeared in the
// file. Columns absent from the file are empty strings.
type CSVRow struct {
	GeoID             string
	Value             string
	Stderr            string
	SampleSize        string
	MissingValue      string
	MissingStderr     string
	MissingSampleSize string
}

// cell is the three-way result of parsing a numeric column. Keeping
// "absent" and "malformed" distinct is what lets extraction fail fast on
// garbage while letting NA-style tokens through.
type cell struct {
	present   bool
	malformed bool
	value     float64
}

// parseCell tolerantly parses a numeric column. Empty strings and the
// tokens NA/NaN (any case) are absent, not errors. Infinities are
// malformed: they would poison downstream aggregates.
func parseCell(raw string) cell {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "na") || strings.EqualFold(raw, "nan") {
		return cell{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return cell{malformed: true}
	}
	return cell{present: true, value: v}
}

// floatyInt parses an integer that may be written as a float, e.g. "600.0".
// Non-integral or non-finite values are errors.
func floatyInt(raw string) (int, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

// checkGeoID validates and normalizes a geo_id for the given geo type.
// The returned id is lower-cased, with numeric kinds rewritten in their
// canonical integer form.
func checkGeoID(geoType, geoID string) (string, bool) {
	id := strings.ToLower(strings.TrimSpace(geoID))
	if id == "" {
		return "", false
	}

	switch geoType {
	case "state", "nation":
		return id, twoLetterRe.MatchString(id)
	case "county":
		return id, fiveDigitRe.MatchString(id) && id != "00000"
	case "msa":
		n, ok := floatyInt(id)
		if !ok {
			return "", false
		}
		id = strconv.Itoa(n)
		return id, fiveDigitRe.MatchString(id)
	case "hrr", "dma":
		n, ok := floatyInt(id)
		if !ok || n < 1 || n > 999 {
			return "", false
		}
		return strconv.Itoa(n), true
	case "hhs":
		n, ok := floatyInt(id)
		if !ok || n < 1 || n > 10 {
			return "", false
		}
		return strconv.Itoa(n), true
	}
	return "", false
}

// IsGeoType reports whether geoType names a recognized geography kind.
func IsGeoType(geoType string) bool {
	switch geoType {
	case "state", "county", "hrr", "msa", "dma", "nation", "hhs":
		return true
	}
	return false
}

// parseMissingCode reads a missing_* column. Absent-style tokens return
// (0, false); anything that is not a known integer code collapses to
// Other rather than failing the row.
func parseMissingCode(raw string) (MissingCode, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "na") || strings.EqualFold(raw, "nan") {
		return 0, false
	}
	n, ok := floatyInt(raw)
	if !ok {
		return Other, true
	}
	if c := MissingCode(n); c.Known() {
		return c, true
	}
	return Other, true
}

// reconcileMissing makes a missing code consistent with the resolved
// presence of its numeric field: a present value is always NotMissing, and
// an absent value must carry a non-trivial code.
func reconcileMissing(code MissingCode, supplied bool, present bool) MissingCode {
	if present {
		return NotMissing
	}
	if !supplied || code == NotMissing {
		return Other
	}
	return code
}

// ExtractAndCheckRow validates one raw row against its file's geo type.
// On success it returns the normalized RowValues and an empty string. On
// the first failing field it returns nil and the field name, checked in
// the order geo_type, geo_id, value, stderr, sample_size.
func ExtractAndCheckRow(row CSVRow, geoType string) (*RowValues, string) {
	geoType = strings.ToLower(strings.TrimSpace(geoType))
	if !IsGeoType(geoType) {
		return nil, "geo_type"
	}

	geoValue, ok := checkGeoID(geoType, row.GeoID)
	if !ok {
		return nil, "geo_id"
	}

	value := parseCell(row.Value)
	if value.malformed {
		return nil, "value"
	}

	stderr := parseCell(row.Stderr)
	if stderr.malformed || (stderr.present && stderr.value < 0) {
		return nil, "stderr"
	}

	sampleSize := parseCell(row.SampleSize)
	if sampleSize.malformed || (sampleSize.present && sampleSize.value < 0) {
		return nil, "sample_size"
	}

	missingValue, suppliedValue := parseMissingCode(row.MissingValue)
	missingStderr, suppliedStderr := parseMissingCode(row.MissingStderr)
	missingSampleSize, suppliedSampleSize := parseMissingCode(row.MissingSampleSize)

	return &RowValues{
		GeoValue:          geoValue,
		Value:             value.ptr(),
		Stderr:            stderr.ptr(),
		SampleSize:        sampleSize.ptr(),
		MissingValue:      reconcileMissing(missingValue, suppliedValue, value.present),
		MissingStderr:     reconcileMissing(missingStderr, suppliedStderr, stderr.present),
		MissingSampleSize: reconcileMissing(missingSampleSize, suppliedSampleSize, sampleSize.present),
	}, ""
}

func (c cell) ptr() *float64 {
	if !c.present {
		return nil
	}
	v := c.value
	return &v
}
