package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/plugins"
)

// ScanMetrics collects statistics for one scan run.
type ScanMetrics struct {
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at,omitempty"`
	Duration   time.Duration `json:"duration_ms,omitempty"`
	Language   string        `json:"language"`
	Root       string        `json:"root"`

	FilesDiscovered int `json:"files_discovered"`
	FilesScanned    int `json:"files_scanned"`
	FilesFailed     int `json:"files_failed"`

	ClassesSeen     int `json:"classes_seen"`
	WrappersSkipped int `json:"wrappers_skipped"`
	ClassesAccepted int `json:"classes_accepted"`
	Methods         int `json:"methods"`
	Params          int `json:"params"`

	Failures []string `json:"failures,omitempty"`
}

// New starts tracking a scan run.
func New(language, root string) *ScanMetrics {
	return &ScanMetrics{StartedAt: time.Now(), Language: language, Root: root}
}

// AddFile records a successfully scanned file.
func (m *ScanMetrics) AddFile(res *plugins.FileScan) {
	m.FilesDiscovered++
	m.FilesScanned++
	if res == nil {
		return
	}
	m.ClassesSeen += res.ClassesSeen
	m.WrappersSkipped += res.WrappersSkipped
	m.ClassesAccepted += res.ClassesAccepted
	m.Methods += len(res.Records)
	for _, r := range res.Records {
		m.Params += len(r.Params)
	}
}

// AddFailure records a file that was discarded.
func (m *ScanMetrics) AddFailure(path string, err error) {
	m.FilesDiscovered++
	m.FilesFailed++
	m.Failures = append(m.Failures, fmt.Sprintf("%s: %v", path, err))
}

// Finish marks the run as complete.
func (m *ScanMetrics) Finish() {
	m.FinishedAt = time.Now()
	m.Duration = m.FinishedAt.Sub(m.StartedAt)
}

// PrintSummary writes a human-readable summary.
func (m *ScanMetrics) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n╔══════════════════════════════════════╗\n")
	fmt.Fprintf(w, "║          SDK SURFACE SCAN            ║\n")
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ Duration:    %-23s║\n", m.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "║ Language:    %-23s║\n", m.Language)
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ FILES (%s)\n", m.Root)
	fmt.Fprintf(w, "║   Discovered:  %d\n", m.FilesDiscovered)
	fmt.Fprintf(w, "║   Scanned:     %d\n", m.FilesScanned)
	fmt.Fprintf(w, "║   Failed:      %d\n", m.FilesFailed)
	fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
	fmt.Fprintf(w, "║ SURFACE\n")
	fmt.Fprintf(w, "║   Classes:     %d\n", m.ClassesSeen)
	fmt.Fprintf(w, "║   Wrappers:    %d\n", m.WrappersSkipped)
	fmt.Fprintf(w, "║   Accepted:    %d\n", m.ClassesAccepted)
	fmt.Fprintf(w, "║   Methods:     %d\n", m.Methods)
	fmt.Fprintf(w, "║   Params:      %d\n", m.Params)
	if len(m.Failures) > 0 {
		fmt.Fprintf(w, "╠══════════════════════════════════════╣\n")
		fmt.Fprintf(w, "║ FAILURES\n")
		for _, f := range m.Failures {
			fmt.Fprintf(w, "║   • %s\n", f)
		}
	}
	fmt.Fprintf(w, "╚══════════════════════════════════════╝\n")
}

// JSON returns the metrics as formatted JSON.
func (m *ScanMetrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}
