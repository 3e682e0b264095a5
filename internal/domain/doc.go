// Package domain models covidcast signal CSV submissions.
//
// # Data Source
//
// Upstream indicator pipelines drop CSV files into a shared receiving
// directory. All metadata about a file is encoded in its path; the file
// itself carries only per-row values. The ingestion service never trusts
// either: paths and rows are both validated before anything is published
// downstream.
//
// # Path Conventions
//
// Standard files:
//
//	<receiving>/<source>/<YYYYMMDD>_<geo>_<signal>.csv         → daily data
//	<receiving>/<source>/weekly_<YYYYWW>_<geo>_<signal>.csv    → weekly data
//	e.g. "fb_survey/weekly_202015_county_cli.csv"
//	means: source fb_survey, signal cli, county granularity, epiweek 2020-15.
//
// Issue-specific directories:
//
//	<receiving>/issue_<YYYYMMDD>/<source>/<file>.csv
//	pins the issue (as-of) date for every file beneath it. Without one, the
//	issue defaults to the day (or epiweek) the file is discovered.
//
// Matching is case-insensitive; source and signal names are lower-cased.
// Paths that fit neither shape are not candidates and are skipped.
//
// # Geographic Codes
//
// geo_id format depends on the file's geo type:
//
//	state:  two-letter code, e.g. "tx"
//	county: 5-digit FIPS, zero-padded, never "00000"
//	hrr:    hospital referral region number, 1–999
//	msa:    5-digit CBSA code
//	dma:    designated market area number, 1–999
//	nation: two-letter code ("us")
//	hhs:    HHS region number, 1–10
//
// hrr, msa, dma, and hhs ids are prone to arrive as floats ("450.0") and
// are normalized through an integer parse before checking.
//
// # Missing Values
//
// Each numeric column (val, se, sample_size) is paired with a missing_*
// column carrying a [MissingCode]. The empty string, "NA", and "NaN" all
// mean "absent" in the numeric columns. A value is nil in the extracted
// row if and only if its missing code is not [NotMissing]; inconsistent
// submissions are reconciled rather than rejected, so downstream
// consumers can rely on the invariant.
//
// # Time Values
//
// Days are YYYYMMDD integers, weeks are YYYYWW epiweek integers (see the
// epiweek package). Lag is issue minus time value, in days for daily data
// and in epiweeks for weekly data.
package domain
