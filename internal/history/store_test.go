// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/texttopo/pkg/types"
)

func sampleReport() *types.Report {
	return types.NewReport(map[string]types.Outcome{
		"in/a.docx": {Path: "in/a.docx", Status: types.StatusExtracted, OutputPath: "out/a.txt"},
		"in/b.docx": {Path: "in/b.docx", Status: types.StatusFailed, Kind: types.FailExtraction, Message: "parse error"},
		"in/c.docx": {Path: "in/c.docx", Status: types.StatusSkipped, OutputPath: "out/c.txt"},
	})
}

func TestRecordAndReadBack(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	started := time.Now().Add(-time.Minute)
	runID, err := store.RecordRun(ctx, "in/", started, time.Now(), sampleReport())
	if err != nil {
		t.Fatalf("RecordRun() error = %v", err)
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("RecentRuns() returned %d runs, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != runID || r.Root != "in/" {
		t.Errorf("run = %+v, want id %d root in/", r, runID)
	}
	if r.Succeeded != 1 || r.Failed != 1 || r.Skipped != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1", r.Succeeded, r.Failed, r.Skipped)
	}
	if r.StartedAt.Unix() != started.Unix() {
		t.Errorf("StartedAt = %v, want %v", r.StartedAt, started)
	}

	outcomes, err := store.Outcomes(ctx, runID)
	if err != nil {
		t.Fatalf("Outcomes() error = %v", err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("Outcomes() returned %d rows, want 3", len(outcomes))
	}
	// Sorted by path.
	if outcomes[0].Path != "in/a.docx" || outcomes[2].Path != "in/c.docx" {
		t.Errorf("outcome order = %v", outcomes)
	}
	if outcomes[1].Kind != types.FailExtraction || outcomes[1].Message != "parse error" {
		t.Errorf("failure outcome = %+v", outcomes[1])
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := store.RecordRun(ctx, "batch", time.Now(), time.Now(), sampleReport()); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2 (limit)", len(runs))
	}
	if runs[0].ID <= runs[1].ID {
		t.Errorf("runs not newest-first: %d then %d", runs[0].ID, runs[1].ID)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	s1.Close()

	// Re-opening an existing database must not fail on schema creation.
	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	s2.Close()
}
