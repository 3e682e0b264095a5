package domain

// MissingCode explains why a numeric field is absent. Codes travel on the
// wire as small integers and match the sentinel values used by upstream
// indicator pipelines.
type MissingCode int

const (
	// NotMissing marks a field that carries a real value.
	NotMissing MissingCode = 0
	// NotApplicable marks a field the signal never reports.
	NotApplicable MissingCode = 1
	// RegionException marks a field withheld for this geography.
	RegionException MissingCode = 2
	// Censored is reserved for producers that suppress values below
	// reporting thresholds.
	Censored MissingCode = 3
	// Deleted marks a value retracted by the producer.
	Deleted MissingCode = 4
	// Other covers every unexplained or inconsistent absence.
	Other MissingCode = 5
)

// Known reports whether c is a member of the closed enumeration.
func (c MissingCode) Known() bool {
	return c >= NotMissing && c <= Other
}

func (c MissingCode) String() string {
	switch c {
	case NotMissing:
		return "not_missing"
	case NotApplicable:
		return "not_applicable"
	case RegionException:
		return "region_exception"
	case Censored:
		return "censored"
	case Deleted:
		return "deleted"
	case Other:
		return "other"
	default:
		return "unknown"
	}
}
