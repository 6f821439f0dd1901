// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/texttopo/pkg/types"
)

// reportFile is the per-batch sidecar written next to the outputs.
const reportFile = "report.yaml"

// Run processes every file in files through the pipeline with at most
// cfg.Concurrency invocations in flight, and returns the batch report.
// A nil norm means normalization is disabled for the whole run; the
// caller makes that decision once, before fan-out. Per-file progress
// goes to w.
//
// Every file in files appears in the report exactly once; no failure
// aborts the batch.
func Run(ctx context.Context, files []string, cfg types.BatchConfig, norm Normalizer, ext Extractor, w io.Writer) *types.Report {
	lw := &lockedWriter{w: w}

	var (
		mu       sync.Mutex
		outcomes = make(map[string]types.Outcome, len(files))
	)

	g := new(errgroup.Group)
	g.SetLimit(cfg.Concurrency)
	for _, f := range files {
		g.Go(func() error {
			out := ProcessFile(ctx, norm, ext, f, cfg, lw)
			mu.Lock()
			outcomes[f] = out
			mu.Unlock()
			return nil
		})
	}
	// Workers record failures as outcomes and never return errors.
	g.Wait()

	report := types.NewReport(outcomes)
	fmt.Fprintf(w, "\nBatch summary: %d extracted, %d skipped, %d failed (total: %d)\n",
		report.Succeeded, report.Skipped, report.Failed, report.Total())

	if cfg.Output.Write && cfg.Output.Dir != "" {
		if err := WriteReport(report, filepath.Join(cfg.Output.Dir, reportFile)); err != nil {
			fmt.Fprintf(w, "warning: report sidecar write failed: %v\n", err)
		}
	}

	return report
}

// WriteReport renders the per-file breakdown as YAML, outcomes sorted
// by path so the sidecar is identical across runs regardless of
// completion order.
func WriteReport(r *types.Report, path string) error {
	doc := struct {
		Succeeded int             `yaml:"succeeded"`
		Failed    int             `yaml:"failed"`
		Skipped   int             `yaml:"skipped"`
		Files     []types.Outcome `yaml:"files"`
	}{
		Succeeded: r.Succeeded,
		Failed:    r.Failed,
		Skipped:   r.Skipped,
	}
	for _, p := range r.Paths() {
		doc.Files = append(doc.Files, r.Outcomes[p])
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// lockedWriter serializes progress lines from concurrent workers.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
