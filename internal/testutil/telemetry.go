package testutil

import (
	"fmt"
	"strings"
	"sync"
)

// Report is a single call recorded by RecordingAPI.
type Report struct {
	Level  string
	ID     string
	Params []any
}

// RecordingAPI is a telemetry.API that keeps every report in memory so tests can assert on what
// a component reported.
type RecordingAPI struct {
	mu      sync.Mutex
	reports []Report
}

func (r *RecordingAPI) record(level, id string, params []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, Report{Level: level, ID: id, Params: params})
}

func (r *RecordingAPI) ReportBroken(id string, params ...any) {
	r.record("broken", id, params)
}

func (r *RecordingAPI) ReportWarning(id string, params ...any) {
	r.record("warning", id, params)
}

func (r *RecordingAPI) ReportInfo(id string, params ...any) {
	r.record("info", id, params)
}

func (r *RecordingAPI) ReportDebug(msg string, params ...any) {
	r.record("debug", msg, params)
}

func (r *RecordingAPI) ReportCount(id string, count int64) {
	r.record("count", id, []any{count})
}

// Reports returns the reports of the given level, or all of them if level is empty.
func (r *RecordingAPI) Reports(level string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Report
	for _, rep := range r.reports {
		if level == "" || rep.Level == level {
			out = append(out, rep)
		}
	}
	return out
}

// HasReport is true if a report of the given level has an id containing substr.
func (r *RecordingAPI) HasReport(level, substr string) bool {
	for _, rep := range r.Reports(level) {
		if strings.Contains(rep.ID, substr) {
			return true
		}
	}
	return false
}

func (r Report) String() string {
	return fmt.Sprintf("%s %s %v", r.Level, r.ID, r.Params)
}
