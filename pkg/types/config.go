// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the configuration and result types shared across
// the texttopo pipeline stages.
package types

import (
	"fmt"
	"time"
)

// NormalizeConfig holds settings for the external soffice normalizer.
type NormalizeConfig struct {
	// Enabled controls whether documents are round-tripped through
	// soffice before extraction.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// SofficePath is an explicit path to the soffice executable. When
	// empty, the SOFFICE_PATH environment variable and a list of
	// platform-typical install locations are tried in order.
	SofficePath string `json:"soffice_path,omitempty" yaml:"soffice_path,omitempty"`

	// StepTimeout bounds each of the two conversion sub-steps
	// independently (default 60s).
	StepTimeout time.Duration `json:"step_timeout" yaml:"step_timeout"`

	// ProbeTimeout bounds the version probe used for diagnostics
	// (default 10s).
	ProbeTimeout time.Duration `json:"probe_timeout" yaml:"probe_timeout"`

	// ScratchDirName is the prefix for per-conversion scratch
	// directories created under the system temp dir.
	ScratchDirName string `json:"scratch_dir_name" yaml:"scratch_dir_name"`
}

// OutputConfig holds settings for writing extracted text to disk.
type OutputConfig struct {
	// Write controls whether extracted text is written to files. When
	// false the text is only carried in the Outcome (stdout or
	// programmatic use).
	Write bool `json:"write" yaml:"write"`

	// Dir is the destination directory. Empty means alongside each
	// input file.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Extension is the output file extension, including the dot
	// (default ".txt").
	Extension string `json:"extension" yaml:"extension"`

	// Overwrite controls whether an existing output file is replaced.
	// When false the file is skipped and recorded as such.
	Overwrite bool `json:"overwrite" yaml:"overwrite"`
}

// BatchConfig groups all settings for a batch extraction run.
type BatchConfig struct {
	// Concurrency is the hard upper bound on in-flight per-file
	// pipeline invocations (default 4).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// Recursive controls whether directory inputs are scanned into
	// subdirectories.
	Recursive bool `json:"recursive" yaml:"recursive"`

	// FailOnSkip controls whether skipped outputs count toward the
	// non-zero exit condition.
	FailOnSkip bool `json:"fail_on_skip" yaml:"fail_on_skip"`

	// HistoryDir is the directory holding the run-history database.
	// Empty disables run recording.
	HistoryDir string `json:"history_dir,omitempty" yaml:"history_dir,omitempty"`

	Normalize NormalizeConfig `json:"normalize" yaml:"normalize"`
	Output    OutputConfig    `json:"output" yaml:"output"`
}

// ConfigError reports an invalid configuration value. It is fatal at
// startup, before any file is processed.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Validate checks the configuration for values that would make a run
// unsafe or meaningless. It returns a *ConfigError describing the first
// offending field.
func (c BatchConfig) Validate() error {
	if c.Concurrency <= 0 {
		return &ConfigError{Field: "concurrency", Reason: "must be positive"}
	}
	if c.Normalize.StepTimeout <= 0 {
		return &ConfigError{Field: "normalize.step_timeout", Reason: "must be positive"}
	}
	if c.Normalize.ProbeTimeout <= 0 {
		return &ConfigError{Field: "normalize.probe_timeout", Reason: "must be positive"}
	}
	if c.Output.Extension == "" {
		return &ConfigError{Field: "output.extension", Reason: "must not be empty"}
	}
	return nil
}

// DefaultBatchConfig returns the built-in defaults, matching the values
// documented on each field.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		Concurrency: 4,
		Recursive:   true,
		Normalize: NormalizeConfig{
			Enabled:        true,
			StepTimeout:    60 * time.Second,
			ProbeTimeout:   10 * time.Second,
			ScratchDirName: "texttopo_tmp",
		},
		Output: OutputConfig{
			Write:     true,
			Extension: ".txt",
		},
	}
}
