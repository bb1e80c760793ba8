package build

import (
	"context"
	"time"

	"github.com/hydessg/hyde/internal/config"
	"github.com/hydessg/hyde/internal/storage"
)

// BuildService is the entry point for generating and cleaning sites.
type BuildService interface {
	// Run generates the site described by req.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)

	// Clean removes the output directory of cfg.
	Clean(ctx context.Context, cfg *config.Config) error
}

// BuildRequest contains all inputs required to generate a site.
type BuildRequest struct {
	// Config is the loaded site configuration.
	Config *config.Config

	// Destination overrides the destination derived from Config and Options.
	Destination storage.Destination

	// Options provides optional build behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for build behavior.
type BuildOptions struct {
	// KeepGoing continues after a per-file failure and fails the run at the end.
	KeepGoing bool

	// Clean empties the destination before writing.
	Clean bool

	// DryRun logs writes instead of performing them.
	DryRun bool

	// ReportPath, when set, receives a YAML build report.
	ReportPath string
}

// BuildResult contains the outcome of a build execution.
type BuildResult struct {
	RunID      string
	Status     BuildStatus
	OutputPath string
	Datasets   []string
	Files      []FileResult

	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// Summary counts files by outcome.
func (r *BuildResult) Summary() Summary {
	var s Summary
	for _, f := range r.Files {
		s.add(f.Outcome)
	}
	return s
}

// BuildStatus represents the outcome of a build execution.
type BuildStatus string

const (
	// BuildStatusSuccess indicates every file was processed.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusFailed indicates at least one file or the run itself failed.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the build was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsSuccess returns true if the build completed successfully.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
