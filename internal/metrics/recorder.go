package metrics

import "time"

// BuildOutcome labels the result of a static build.
type BuildOutcome string

const (
	BuildSuccess BuildOutcome = "success"
	BuildFailed  BuildOutcome = "failed"
)

// Recorder defines observability hooks for scans, renders, responses and builds.
type Recorder interface {
	ObserveScanDuration(contentType string, d time.Duration)
	AddItemsLoaded(contentType string, n int)
	IncMalformed(contentType string)
	IncMissingType(contentType string)
	ObserveRenderDuration(kind string, d time.Duration, success bool)
	IncResponse(kind string, status int)
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome BuildOutcome)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveScanDuration(string, time.Duration)         {}
func (NoopRecorder) AddItemsLoaded(string, int)                        {}
func (NoopRecorder) IncMalformed(string)                               {}
func (NoopRecorder) IncMissingType(string)                             {}
func (NoopRecorder) ObserveRenderDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncResponse(string, int)                           {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)                {}
func (NoopRecorder) IncBuildOutcome(BuildOutcome)                      {}
