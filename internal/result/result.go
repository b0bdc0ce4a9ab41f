// Package result holds the vocabulary every inspection reports through:
// severities, waiver classes, findings and the run report.
package result

import (
	"fmt"
	"strings"
	"sync"
)

// Severity ranks a finding. Higher values are more important.
type Severity int

const (
	OK Severity = iota
	Info
	Verify
	Bad
)

// String returns the string representation of Severity
func (s Severity) String() string {
	switch s {
	case OK:
		return "OK"
	case Info:
		return "INFO"
	case Verify:
		return "VERIFY"
	case Bad:
		return "BAD"
	default:
		return "UNKNOWN"
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseSeverity converts a severity name (case-insensitive) to a Severity
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "OK":
		return OK, nil
	case "INFO":
		return Info, nil
	case "VERIFY":
		return Verify, nil
	case "BAD":
		return Bad, nil
	default:
		return OK, fmt.Errorf("unknown severity %q", name)
	}
}

// Waiver says who may override a finding
type Waiver int

const (
	NotWaivable Waiver = iota
	WaivableByAnyone
	WaivableBySecurity
)

// String returns the string representation of Waiver
func (w Waiver) String() string {
	switch w {
	case NotWaivable:
		return "Not Waivable"
	case WaivableByAnyone:
		return "Anyone"
	case WaivableBySecurity:
		return "Security"
	default:
		return "Unknown"
	}
}

// MarshalText implements encoding.TextMarshaler
func (w Waiver) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// Finding is one reported observation. Findings are values and are never
// modified once recorded.
type Finding struct {
	Severity   Severity `json:"severity" yaml:"severity"`
	Waiver     Waiver   `json:"waiver" yaml:"waiver"`
	Inspection string   `json:"inspection" yaml:"inspection"`
	Message    string   `json:"message,omitempty" yaml:"message,omitempty"`
	Details    string   `json:"details,omitempty" yaml:"details,omitempty"`
	Remedy     string   `json:"remedy,omitempty" yaml:"remedy,omitempty"`
}

// Report is an append-only, ordered collection of findings.
// It is safe for concurrent use.
type Report struct {
	mu       sync.Mutex
	findings []Finding
}

// NewReport creates an empty report
func NewReport() *Report {
	return &Report{}
}

// Add appends a finding
func (r *Report) Add(f Finding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings = append(r.findings, f)
}

// Record appends a finding built from its parts
func (r *Report) Record(sev Severity, waiver Waiver, inspection, msg, details, remedy string) {
	r.Add(Finding{
		Severity:   sev,
		Waiver:     waiver,
		Inspection: inspection,
		Message:    msg,
		Details:    details,
		Remedy:     remedy,
	})
}

// Merge appends every finding of other, in order
func (r *Report) Merge(other *Report) {
	if other == nil || other == r {
		return
	}
	fs := other.Findings()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findings = append(r.findings, fs...)
}

// Findings returns a copy of the recorded findings in insertion order
func (r *Report) Findings() []Finding {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Finding, len(r.findings))
	copy(out, r.findings)
	return out
}

// Len returns the number of recorded findings
func (r *Report) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.findings)
}

// Worst returns the highest severity recorded, OK for an empty report
func (r *Report) Worst() Severity {
	r.mu.Lock()
	defer r.mu.Unlock()
	worst := OK
	for _, f := range r.findings {
		if f.Severity > worst {
			worst = f.Severity
		}
	}
	return worst
}

// Recorder records findings for a single inspection and remembers whether
// anything at or above VERIFY was reported.
type Recorder struct {
	report     *Report
	inspection string
	count      int
	failed     bool
}

// NewRecorder creates a Recorder that tags findings with inspection
func NewRecorder(report *Report, inspection string) *Recorder {
	return &Recorder{report: report, inspection: inspection}
}

// Record appends a finding tagged with the recorder's inspection name
func (r *Recorder) Record(sev Severity, waiver Waiver, msg, details, remedy string) {
	r.report.Record(sev, waiver, r.inspection, msg, details, remedy)
	r.count++
	if sev >= Verify {
		r.failed = true
	}
}

// Passed reports whether no VERIFY or BAD finding was recorded
func (r *Recorder) Passed() bool {
	return !r.failed
}

// Finish records the all-clear OK finding when nothing else was recorded and
// returns the pass/fail aggregate.
func (r *Recorder) Finish() bool {
	if r.count == 0 {
		r.report.Record(OK, NotWaivable, r.inspection, "", "", "")
		r.count++
	}
	return r.Passed()
}
