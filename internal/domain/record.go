package domain

import "time"

// LogRecord represents a single event parsed from a log4j XML log
type LogRecord struct {
	ID               int               `json:"id"`               // Parse order, 0-based
	TimestampRaw     int64             `json:"timestampRaw"`     // Epoch milliseconds, 0 if absent
	TimestampDisplay string            `json:"timestampDisplay"` // Sender timestamp property or formatted TimestampRaw
	Level            string            `json:"level"`            // DEBUG, INFO, WARN, ERROR, FATAL or anything else
	Logger           string            `json:"logger"`
	Thread           string            `json:"thread"`
	ClassName        string            `json:"className"`
	Method           string            `json:"method"`
	Message          string            `json:"message"`
	ExceptionText    string            `json:"exceptionText"`
	Properties       map[string]string `json:"properties"`
}

// Time returns the record timestamp as time.Time
func (r *LogRecord) Time() time.Time {
	return time.UnixMilli(r.TimestampRaw)
}

// SystemDetails holds host metadata recovered from the records of one log
// Empty fields were not found in the log
type SystemDetails struct {
	MachineName  string `json:"machineName,omitempty" yaml:"machine_name"`
	Version      string `json:"version,omitempty" yaml:"version"`
	Architecture string `json:"architecture,omitempty" yaml:"architecture"`
	OSName       string `json:"osName,omitempty" yaml:"os_name"`
	OSVersion    string `json:"osVersion,omitempty" yaml:"os_version"`
	OSType       string `json:"osType,omitempty" yaml:"os_type"`
}

// IsEmpty reports whether no field was recovered
func (d SystemDetails) IsEmpty() bool {
	return d == SystemDetails{}
}

// TimeRange is an inclusive time interval
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t lies within the range, bounds included
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// RecordsTimeRange returns the minimum and maximum timestamps of records
// ok is false for an empty slice
func RecordsTimeRange(records []LogRecord) (tr TimeRange, ok bool) {
	if len(records) == 0 {
		return TimeRange{}, false
	}
	minTs, maxTs := records[0].TimestampRaw, records[0].TimestampRaw
	for i := 1; i < len(records); i++ {
		ts := records[i].TimestampRaw
		if ts < minTs {
			minTs = ts
		}
		if ts > maxTs {
			maxTs = ts
		}
	}
	return TimeRange{Start: time.UnixMilli(minTs), End: time.UnixMilli(maxTs)}, true
}
