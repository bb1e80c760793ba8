package build

import (
	"bytes"
	"fmt"
	"time"

	"github.com/inful/mdfp"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"

	"github.com/hydessg/hyde/internal/frontmatter"
	"github.com/hydessg/hyde/internal/metrics"
)

// FileResult records what happened to one source file.
type FileResult struct {
	Path        string              `yaml:"path"`
	Output      string              `yaml:"output,omitempty"`
	ContentType string              `yaml:"content_type,omitempty"`
	Outcome     metrics.FileOutcome `yaml:"outcome"`
	Layouts     []string            `yaml:"layouts,omitempty"`
	Fingerprint string              `yaml:"fingerprint,omitempty"`
	Kind        string              `yaml:"failure_kind,omitempty"`
	Error       string              `yaml:"error,omitempty"`
}

// Summary counts files by outcome.
type Summary struct {
	Rendered int `yaml:"rendered"`
	Copied   int `yaml:"copied"`
	Skipped  int `yaml:"skipped"`
	Failed   int `yaml:"failed"`
}

func (s *Summary) add(o metrics.FileOutcome) {
	switch o {
	case metrics.FileRendered:
		s.Rendered++
	case metrics.FileCopied:
		s.Copied++
	case metrics.FileSkipped:
		s.Skipped++
	case metrics.FileFailed:
		s.Failed++
	}
}

// Report is the YAML document written by --report.
type Report struct {
	RunID     string       `yaml:"run_id"`
	Status    BuildStatus  `yaml:"status"`
	StartTime time.Time    `yaml:"start_time"`
	Duration  string       `yaml:"duration"`
	Output    string       `yaml:"output"`
	Datasets  []string     `yaml:"datasets"`
	Summary   Summary      `yaml:"summary"`
	Files     []FileResult `yaml:"files"`
}

// NewReport builds the report for a finished run.
func NewReport(r *BuildResult) *Report {
	datasets := r.Datasets
	if datasets == nil {
		datasets = []string{}
	}
	return &Report{
		RunID:     r.RunID,
		Status:    r.Status,
		StartTime: r.StartTime.UTC(),
		Duration:  r.Duration.Round(time.Millisecond).String(),
		Output:    r.OutputPath,
		Datasets:  datasets,
		Summary:   r.Summary(),
		Files:     r.Files,
	}
}

// WriteFile writes the report to path atomically.
func (rep *Report) WriteFile(path string) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode build report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode build report: %w", err)
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write build report %s: %w", path, err)
	}
	return nil
}

// fingerprint identifies a template source by its front matter and body, so
// reports from two runs can be compared file by file.
func fingerprint(src []byte) string {
	fm, body, had, err := frontmatter.Split(src)
	if err != nil || !had {
		return mdfp.CalculateFingerprintFromParts("", string(src))
	}
	return mdfp.CalculateFingerprintFromParts(string(fm), string(body))
}
