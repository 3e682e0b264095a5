package domain

// TimeType is the temporal granularity of a signal file.
type TimeType string

const (
	TimeDay  TimeType = "day"
	TimeWeek TimeType = "week"
)

// PathDetails holds the metadata parsed from a candidate file's path.
// TimeValue and Issue are YYYYMMDD integers for daily data and YYYYWW
// epiweek integers for weekly data. Lag is Issue minus TimeValue in the
// granularity's own unit and is derived, never supplied.
type PathDetails struct {
	Source    string
	Signal    string
	TimeType  TimeType
	GeoType   string
	TimeValue int
	Issue     int
	Lag       int
}

// RowValues is one sanity-checked data row. A numeric field is nil if and
// only if its missing code is not NotMissing.
type RowValues struct {
	GeoValue          string
	Value             *float64
	Stderr            *float64
	SampleSize        *float64
	MissingValue      MissingCode
	MissingStderr     MissingCode
	MissingSampleSize MissingCode
}

// SignalRow joins an accepted row with its file's path metadata. It is the
// unit handed to the downstream persister.
type SignalRow struct {
	Source            string      `json:"source"`
	Signal            string      `json:"signal"`
	TimeType          TimeType    `json:"time_type"`
	GeoType           string      `json:"geo_type"`
	TimeValue         int         `json:"time_value"`
	Issue             int         `json:"issue"`
	Lag               int         `json:"lag"`
	GeoValue          string      `json:"geo_value"`
	Value             *float64    `json:"value"`
	Stderr            *float64    `json:"stderr"`
	SampleSize        *float64    `json:"sample_size"`
	MissingValue      MissingCode `json:"missing_value"`
	MissingStderr     MissingCode `json:"missing_stderr"`
	MissingSampleSize MissingCode `json:"missing_sample_size"`
}

// NewSignalRow combines path metadata with an extracted row.
func NewSignalRow(details PathDetails, row RowValues) SignalRow {
	return SignalRow{
		Source:            details.Source,
		Signal:            details.Signal,
		TimeType:          details.TimeType,
		GeoType:           details.GeoType,
		TimeValue:         details.TimeValue,
		Issue:             details.Issue,
		Lag:               details.Lag,
		GeoValue:          row.GeoValue,
		Value:             row.Value,
		Stderr:            row.Stderr,
		SampleSize:        row.SampleSize,
		MissingValue:      row.MissingValue,
		MissingStderr:     row.MissingStderr,
		MissingSampleSize: row.MissingSampleSize,
	}
}
