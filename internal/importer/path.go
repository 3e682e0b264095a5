// Package importer discovers candidate signal CSV files, parses the
// metadata embedded in their paths, and streams sanity-checked rows.
package importer

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xavier-xia-99/delphi-epidata/internal/domain"
	"github.com/xavier-xia-99/delphi-epidata/internal/epiweek"
)

var (
	// issueDirRe matches an issue-pinning directory segment, e.g.
	// "issue_20200408". Matching is done on lower-cased segments.
	issueDirRe = regexp.MustCompile(`^issue_(\d{8})$`)

	// fileRe matches a standard signal file name, e.g.
	// "20200408_state_rawsearch.csv" or "weekly_202015_county_cli.csv".
	// Groups: weekly marker, time digits, geo type, signal.
	fileRe = regexp.MustCompile(`^(weekly_)?(\d+)_([a-z]+)_([a-z0-9_.-]+)\.csv$`)
)

// SkipReason explains why a path was not accepted for ingestion. Paths
// that fit no recognized shape are ReasonNotCandidate and may be skipped
// silently; every other reason is a recognized shape that failed a sanity
// check and deserves a log line.
type SkipReason string

const (
	ReasonNone            SkipReason = ""
	ReasonNotCandidate    SkipReason = "not_candidate"
	ReasonInvalidIssueDir SkipReason = "invalid_issue_dir"
	ReasonInvalidDay      SkipReason = "invalid_day"
	ReasonInvalidWeek     SkipReason = "invalid_week"
	ReasonUnknownGeoType  SkipReason = "unknown_geo_type"
	ReasonFutureTimeValue SkipReason = "future_time_value"
)

// Classification pairs a discovered path with its parsed metadata.
// Details is non-nil only when the path fit a recognized shape and all
// embedded fields parsed; Reason is ReasonNone only for accepted files.
// ReasonFutureTimeValue keeps Details populated so the anomaly can be
// logged with full context.
type Classification struct {
	Path    string
	Details *domain.PathDetails
	Reason  SkipReason
}

// Accepted reports whether the file should be ingested.
func (c Classification) Accepted() bool {
	return c.Reason == ReasonNone && c.Details != nil
}

// FindCSVFiles classifies every path produced by an external walker.
// Paths are treated as opaque strings in no particular order. asOf
// supplies "today" for default issue dates, keeping classification
// deterministic.
func FindCSVFiles(paths []string, asOf time.Time) []Classification {
	out := make([]Classification, 0, len(paths))
	for _, p := range paths {
		out = append(out, ClassifyPath(p, asOf))
	}
	return out
}

// ClassifyPath matches one path against the issue-directory and standard
// file shapes described in the domain package docs.
func ClassifyPath(path string, asOf time.Time) Classification {
	lower := strings.ToLower(filepath.ToSlash(path))
	segments := strings.Split(lower, "/")
	base := segments[len(segments)-1]
	dirs := segments[:len(segments)-1]

	// An issue directory anywhere above the file pins the issue date for
	// the whole subtree. The deepest one wins.
	issueDay := 0
	for _, seg := range dirs {
		m := issueDirRe.FindStringSubmatch(seg)
		if m == nil {
			continue
		}
		day, _ := strconv.Atoi(m[1])
		if !domain.IsSaneDay(day) {
			return Classification{Path: path, Reason: ReasonInvalidIssueDir}
		}
		issueDay = day
	}

	m := fileRe.FindStringSubmatch(base)
	if m == nil {
		return Classification{Path: path, Reason: ReasonNotCandidate}
	}

	// The source is the file's parent directory; a file sitting directly
	// under an issue directory (or under nothing) has no source segment.
	if len(dirs) == 0 {
		return Classification{Path: path, Reason: ReasonNotCandidate}
	}
	source := dirs[len(dirs)-1]
	if source == "" || issueDirRe.MatchString(source) {
		return Classification{Path: path, Reason: ReasonNotCandidate}
	}

	weekly := m[1] != ""
	timeValue, _ := strconv.Atoi(m[2])
	geoType := m[3]
	signal := m[4]

	details := domain.PathDetails{
		Source:    source,
		Signal:    signal,
		GeoType:   geoType,
		TimeValue: timeValue,
	}

	if weekly {
		details.TimeType = domain.TimeWeek
		if !domain.IsSaneWeek(timeValue) {
			return Classification{Path: path, Reason: ReasonInvalidWeek}
		}
	} else {
		details.TimeType = domain.TimeDay
		if !domain.IsSaneDay(timeValue) {
			return Classification{Path: path, Reason: ReasonInvalidDay}
		}
	}

	if !domain.IsGeoType(geoType) {
		return Classification{Path: path, Reason: ReasonUnknownGeoType}
	}

	details.Issue, details.Lag = issueAndLag(details.TimeType, timeValue, issueDay, asOf)
	if details.Lag < 0 {
		return Classification{Path: path, Details: &details, Reason: ReasonFutureTimeValue}
	}
	return Classification{Path: path, Details: &details}
}

// issueAndLag resolves the issue date and lag for a file. issueDay is the
// YYYYMMDD from an enclosing issue directory, or 0 when the file's issue
// defaults to asOf.
func issueAndLag(timeType domain.TimeType, timeValue, issueDay int, asOf time.Time) (int, int) {
	issueTime := asOf.UTC()
	if issueDay != 0 {
		issueTime = domain.DayToTime(issueDay)
	}

	if timeType == domain.TimeWeek {
		issueWeek := epiweek.FromTime(issueTime)
		timeWeek, _ := epiweek.FromInt(timeValue)
		return issueWeek.Int(), epiweek.Delta(timeWeek, issueWeek)
	}

	issue := domain.TimeToDay(issueTime)
	lag := int(issueTime.Truncate(24*time.Hour).Sub(domain.DayToTime(timeValue)).Hours() / 24)
	return issue, lag
}
