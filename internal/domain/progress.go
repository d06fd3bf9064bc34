package domain

import "time"

// LoadStage names the step a file load is in
type LoadStage string

const (
	StageReading    LoadStage = "reading"
	StageExtracting LoadStage = "extracting"
	StageParsing    LoadStage = "parsing"
	StageDone       LoadStage = "done"
)

// LoadProgress represents the current progress of a file load
type LoadProgress struct {
	LoadID  string
	Stage   LoadStage
	Percent int // 0..100, non-decreasing within one load
}

// ParseStats represents parser performance figures for one parse
type ParseStats struct {
	InputBytes    int
	Chunks        int
	RecordsParsed int
	StartTime     time.Time
	EndTime       time.Time
}

// Duration returns the wall time the parse took
func (s ParseStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// RecordsPerSecond returns the parse throughput
func (s ParseStats) RecordsPerSecond() float64 {
	secs := s.Duration().Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(s.RecordsParsed) / secs
}
