package metrics

import "time"

// Render passes observed by ObservePassDuration.
const (
	PassContent = "content"
	PassConvert = "convert"
	PassLayout  = "layout"
)

// FileOutcome enumerates what happened to a single source file.
type FileOutcome string

const (
	FileRendered FileOutcome = "rendered"
	FileCopied   FileOutcome = "copied"
	FileSkipped  FileOutcome = "skipped"
	FileFailed   FileOutcome = "failed"
)

// BuildOutcome enumerates the final status of a generation run.
type BuildOutcome string

const (
	BuildSuccess  BuildOutcome = "success"
	BuildFailed   BuildOutcome = "failed"
	BuildCanceled BuildOutcome = "canceled"
)

// Recorder defines observability hooks for render and build metrics.
// Implementations may forward to Prometheus or any other backend.
type Recorder interface {
	ObservePassDuration(pass string, d time.Duration)
	ObserveWriteDuration(d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncFileOutcome(outcome FileOutcome)
	IncBuildOutcome(outcome BuildOutcome)
	SetDatasets(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(string, time.Duration) {}
func (NoopRecorder) ObserveWriteDuration(time.Duration)        {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)        {}
func (NoopRecorder) IncFileOutcome(FileOutcome)                {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)              {}
func (NoopRecorder) SetDatasets(int)                           {}

var _ Recorder = NoopRecorder{}
