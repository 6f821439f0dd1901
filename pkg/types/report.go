// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "sort"

// FailureKind classifies why a file could not be processed.
type FailureKind string

const (
	// FailToolNotFound means the soffice executable could not be
	// resolved. It disables normalization for the rest of the run.
	FailToolNotFound FailureKind = "tool_not_found"

	// FailConversionTimeout means a conversion sub-step exceeded its
	// timeout and the process tree was killed.
	FailConversionTimeout FailureKind = "conversion_timeout"

	// FailConversionFailed means soffice exited non-zero or produced
	// no output file.
	FailConversionFailed FailureKind = "conversion_failed"

	// FailExtraction means the document could not be parsed and the
	// degraded fallback recovered nothing.
	FailExtraction FailureKind = "extraction_error"

	// FailConfiguration means an invalid configuration value.
	FailConfiguration FailureKind = "configuration_error"

	// FailIO means an unreadable input or unwritable output.
	FailIO FailureKind = "io_error"
)

// OutcomeStatus is the terminal state of one file in a batch.
type OutcomeStatus string

const (
	// StatusExtracted means text was produced for the file.
	StatusExtracted OutcomeStatus = "extracted"

	// StatusSkipped means the output file already existed and
	// overwrite was off. Not a success, not a failure.
	StatusSkipped OutcomeStatus = "skipped"

	// StatusFailed means the file produced no text.
	StatusFailed OutcomeStatus = "failed"
)

// Outcome is the result of processing one input file. Exactly one
// Outcome exists per discovered file.
type Outcome struct {
	// Path is the input file path, the key of the batch report.
	Path string `yaml:"path"`

	Status OutcomeStatus `yaml:"status"`

	// Text is the extracted content. Populated only on StatusExtracted
	// and never serialized into report sidecars.
	Text string `yaml:"-"`

	// OutputPath is where the text was written, when output writing is
	// enabled.
	OutputPath string `yaml:"output_path,omitempty"`

	// Kind and Message describe the failure on StatusFailed.
	Kind    FailureKind `yaml:"kind,omitempty"`
	Message string      `yaml:"message,omitempty"`
}

// Report is the final mapping from every discovered input file to its
// Outcome, plus aggregate counts.
type Report struct {
	Outcomes map[string]Outcome

	Succeeded int
	Failed    int
	Skipped   int
}

// NewReport builds a Report from a complete outcome map, computing the
// aggregate counts.
func NewReport(outcomes map[string]Outcome) *Report {
	r := &Report{Outcomes: outcomes}
	if r.Outcomes == nil {
		r.Outcomes = map[string]Outcome{}
	}
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusExtracted:
			r.Succeeded++
		case StatusSkipped:
			r.Skipped++
		case StatusFailed:
			r.Failed++
		}
	}
	return r
}

// Total returns the number of files in the report.
func (r *Report) Total() int {
	return r.Succeeded + r.Failed + r.Skipped
}

// HasFailures reports whether any file failed. When failOnSkip is true,
// skipped files count as failures for exit-code purposes.
func (r *Report) HasFailures(failOnSkip bool) bool {
	if failOnSkip && r.Skipped > 0 {
		return true
	}
	return r.Failed > 0
}

// Paths returns the report keys in sorted order, so output is
// deterministic regardless of completion order.
func (r *Report) Paths() []string {
	paths := make([]string, 0, len(r.Outcomes))
	for p := range r.Outcomes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
