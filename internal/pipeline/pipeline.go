// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline composes normalization, extraction, and output
// writing into a per-file operation, and fans that operation out over a
// batch under a bounded concurrency budget.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/texttopo/internal/normalize"
	"github.com/pdiddy/texttopo/pkg/types"
)

// Normalizer round-trips a document through the external tool, writing
// the re-serialized copy to dst. internal/normalize provides the
// production implementation.
type Normalizer interface {
	Normalize(ctx context.Context, src, dst string) error
}

// Extractor returns the full text of a document, with a degraded
// fallback path that never fails. internal/extract provides the
// production implementation.
type Extractor interface {
	Text(path string) (string, error)
	Fallback(path string) string
}

// ProcessFile runs one file through the pipeline: optional
// normalization, extraction with fallback, and output writing. Failures
// are returned as Outcome values, never as errors; one bad file must
// not disturb the rest of the batch. A nil norm means normalization is
// disabled for this run.
func ProcessFile(ctx context.Context, norm Normalizer, ext Extractor, path string, cfg types.BatchConfig, w io.Writer) types.Outcome {
	outPath := OutputPath(path, cfg.Output)

	if cfg.Output.Write && !cfg.Output.Overwrite {
		if _, err := os.Stat(outPath); err == nil {
			fmt.Fprintf(w, "skipped: %s (output exists)\n", path)
			return types.Outcome{Path: path, Status: types.StatusSkipped, OutputPath: outPath}
		}
	}

	if err := checkReadable(path); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
		return failure(path, types.FailIO, err)
	}

	extractPath := path
	if norm != nil {
		normalized, cleanup, err := normalizeToScratch(ctx, norm, path)
		if cleanup != nil {
			defer cleanup()
		}
		switch {
		case err == nil:
			extractPath = normalized
		case errors.Is(err, context.Canceled):
			return failure(path, types.FailConversionFailed, err)
		default:
			// Normalization is a quality improvement, not a
			// correctness requirement: fall back to the original.
			fmt.Fprintf(w, "%s, extracting original: %s (%v)\n", normalizeKind(err), path, err)
		}
	}

	text, err := ext.Text(extractPath)
	if err != nil {
		text = ext.Fallback(extractPath)
		if strings.TrimSpace(text) == "" {
			fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
			return failure(path, types.FailExtraction, err)
		}
		fmt.Fprintf(w, "recovered via fallback: %s\n", path)
	}

	if cfg.Output.Write {
		if err := writeOutput(outPath, text); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", path, err)
			return failure(path, types.FailIO, err)
		}
	}

	fmt.Fprintf(w, "extracted: %s\n", path)
	return types.Outcome{
		Path:       path,
		Status:     types.StatusExtracted,
		Text:       text,
		OutputPath: outPath,
	}
}

// OutputPath derives the destination file for an input: the input's
// base name with the configured extension, in the output directory or
// alongside the input when no directory is set.
func OutputPath(input string, cfg types.OutputConfig) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := cfg.Dir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, base+cfg.Extension)
}

// normalizeToScratch converts src into a fresh scratch directory owned
// by this invocation and returns the normalized copy's path. The
// cleanup function removes the scratch directory and is non-nil
// whenever the directory was created, error or not.
func normalizeToScratch(ctx context.Context, norm Normalizer, src string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "texttopo-norm-*")
	if err != nil {
		return "", nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	cleanup := func() { os.RemoveAll(dir) }

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	dst := filepath.Join(dir, base+".docx")
	if err := norm.Normalize(ctx, src, dst); err != nil {
		return "", cleanup, err
	}
	return dst, cleanup, nil
}

func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	return f.Close()
}

func writeOutput(outPath, text string) error {
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, []byte(text), 0o644)
}

func failure(path string, kind types.FailureKind, err error) types.Outcome {
	return types.Outcome{
		Path:    path,
		Status:  types.StatusFailed,
		Kind:    kind,
		Message: err.Error(),
	}
}

// normalizeKind maps a normalization error to its failure kind, for
// logging and the run ledger.
func normalizeKind(err error) types.FailureKind {
	switch {
	case errors.Is(err, normalize.ErrToolNotFound):
		return types.FailToolNotFound
	case errors.Is(err, normalize.ErrTimeout):
		return types.FailConversionTimeout
	default:
		return types.FailConversionFailed
	}
}
