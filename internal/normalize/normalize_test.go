// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/texttopo/pkg/types"
)

// fakeRunner implements runner for testing. Its onRun hook stands in
// for soffice and can create output files or simulate hangs.
type fakeRunner struct {
	lookPaths map[string]string
	runErr    error
	onRun     func(ctx context.Context, name string, args []string) error

	lookCalls int32
	runCalls  int32
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	atomic.AddInt32(&f.lookCalls, 1)
	if p, ok := f.lookPaths[file]; ok {
		return p, nil
	}
	return "", fmt.Errorf("%s: executable file not found", file)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, extraEnv []string) error {
	atomic.AddInt32(&f.runCalls, 1)
	if f.onRun != nil {
		return f.onRun(ctx, name, args)
	}
	return f.runErr
}

// convertArgs picks the output format, outdir, and input path out of a
// soffice argument list.
func convertArgs(args []string) (format, outDir, input string) {
	for i, a := range args {
		switch a {
		case "--convert-to":
			format = args[i+1]
		case "--outdir":
			outDir = args[i+1]
		}
	}
	return format, outDir, args[len(args)-1]
}

// convertingRunner behaves like a healthy soffice: each invocation
// writes <outdir>/<input base>.<format>.
func convertingRunner() *fakeRunner {
	f := &fakeRunner{}
	f.onRun = func(ctx context.Context, name string, args []string) error {
		format, outDir, input := convertArgs(args)
		base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
		return os.WriteFile(filepath.Join(outDir, base+"."+format), []byte("converted "+format), 0o644)
	}
	return f
}

func testConfig(toolPath string) types.NormalizeConfig {
	return types.NormalizeConfig{
		Enabled:        true,
		SofficePath:    toolPath,
		StepTimeout:    5 * time.Second,
		ProbeTimeout:   time.Second,
		ScratchDirName: "texttopo_test",
	}
}

// newTestNormalizer builds a Normalizer whose tool override points at a
// real file and whose scratch root is confined to the test.
func newTestNormalizer(t *testing.T, run runner) (*Normalizer, string) {
	t.Helper()
	toolPath := filepath.Join(t.TempDir(), "soffice")
	if err := os.WriteFile(toolPath, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	n := New(testConfig(toolPath))
	n.run = run
	n.baseDir = t.TempDir()
	return n, n.baseDir
}

func writeInput(t *testing.T) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "letter.docx")
	if err := os.WriteFile(src, []byte("original"), 0o644); err != nil {
		t.Fatal(err)
	}
	return src
}

func assertNoScratchLeft(t *testing.T, baseDir string) {
	t.Helper()
	entries, err := os.ReadDir(baseDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("scratch directories left behind: %v", entries)
	}
}

func TestResolveToolOverride(t *testing.T) {
	n, _ := newTestNormalizer(t, &fakeRunner{})

	got, err := n.ResolveTool()
	if err != nil {
		t.Fatalf("ResolveTool() error = %v", err)
	}
	if got != n.cfg.SofficePath {
		t.Errorf("ResolveTool() = %q, want %q", got, n.cfg.SofficePath)
	}
}

func TestResolveToolOverrideMissing(t *testing.T) {
	n := New(testConfig(filepath.Join(t.TempDir(), "nope")))
	n.run = &fakeRunner{}

	if _, err := n.ResolveTool(); !errors.Is(err, ErrToolNotFound) {
		t.Errorf("ResolveTool() error = %v, want ErrToolNotFound", err)
	}
}

func TestResolveToolEnv(t *testing.T) {
	toolPath := filepath.Join(t.TempDir(), "soffice")
	if err := os.WriteFile(toolPath, []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv(sofficePathEnv, toolPath)

	cfg := testConfig("")
	n := New(cfg)
	n.run = &fakeRunner{}

	got, err := n.ResolveTool()
	if err != nil {
		t.Fatalf("ResolveTool() error = %v", err)
	}
	if got != toolPath {
		t.Errorf("ResolveTool() = %q, want %q", got, toolPath)
	}
}

func TestResolveToolCachesFailure(t *testing.T) {
	for _, p := range searchPaths {
		if _, err := os.Stat(p); err == nil {
			t.Skipf("soffice installed at %s on this machine", p)
		}
	}
	t.Setenv(sofficePathEnv, "")

	run := &fakeRunner{}
	n := New(testConfig(""))
	n.run = run

	_, err1 := n.ResolveTool()
	_, err2 := n.ResolveTool()
	if !errors.Is(err1, ErrToolNotFound) || !errors.Is(err2, ErrToolNotFound) {
		t.Fatalf("errors = %v, %v, want ErrToolNotFound", err1, err2)
	}

	// Both PATH names tried once; the second call hits the cache.
	if got := atomic.LoadInt32(&run.lookCalls); got != int32(len(pathNames)) {
		t.Errorf("lookCalls = %d, want %d", got, len(pathNames))
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	run := convertingRunner()
	n, baseDir := newTestNormalizer(t, run)
	src := writeInput(t)
	dst := filepath.Join(t.TempDir(), "letter-normalized.docx")

	if err := n.Normalize(context.Background(), src, dst); err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("normalized output missing: %v", err)
	}
	if string(data) != "converted docx" {
		t.Errorf("dst content = %q, want round-tripped docx", data)
	}
	if got := atomic.LoadInt32(&run.runCalls); got != 2 {
		t.Errorf("runCalls = %d, want 2 (doc step + docx step)", got)
	}
	assertNoScratchLeft(t, baseDir)
}

func TestNormalizeConversionFails(t *testing.T) {
	tests := []struct {
		name string
		run  *fakeRunner
	}{
		{
			name: "tool exits non-zero",
			run:  &fakeRunner{runErr: errors.New("exit status 77")},
		},
		{
			name: "tool succeeds but writes nothing",
			run:  &fakeRunner{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, baseDir := newTestNormalizer(t, tt.run)
			src := writeInput(t)
			dst := filepath.Join(t.TempDir(), "out.docx")

			err := n.Normalize(context.Background(), src, dst)
			if !errors.Is(err, ErrConversion) {
				t.Errorf("Normalize() error = %v, want ErrConversion", err)
			}
			assertNoScratchLeft(t, baseDir)
		})
	}
}

func TestNormalizeStepTimeout(t *testing.T) {
	hang := &fakeRunner{}
	hang.onRun = func(ctx context.Context, name string, args []string) error {
		<-ctx.Done()
		return ctx.Err()
	}

	n, baseDir := newTestNormalizer(t, hang)
	n.cfg.StepTimeout = 20 * time.Millisecond
	src := writeInput(t)
	dst := filepath.Join(t.TempDir(), "out.docx")

	err := n.Normalize(context.Background(), src, dst)
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("Normalize() error = %v, want ErrTimeout", err)
	}
	if _, err := os.Stat(dst); err == nil {
		t.Error("dst written despite timeout")
	}
	assertNoScratchLeft(t, baseDir)
}

func TestNormalizeCancelledBatch(t *testing.T) {
	hang := &fakeRunner{}
	hang.onRun = func(ctx context.Context, name string, args []string) error {
		<-ctx.Done()
		return ctx.Err()
	}

	n, baseDir := newTestNormalizer(t, hang)
	src := writeInput(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := n.Normalize(ctx, src, filepath.Join(t.TempDir(), "out.docx"))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Normalize() error = %v, want context.Canceled", err)
	}
	assertNoScratchLeft(t, baseDir)
}

func TestAvailable(t *testing.T) {
	tests := []struct {
		name string
		run  *fakeRunner
		want bool
	}{
		{name: "probe responds", run: &fakeRunner{}, want: true},
		{name: "probe fails", run: &fakeRunner{runErr: errors.New("no response")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, _ := newTestNormalizer(t, tt.run)
			if got := n.Available(context.Background()); got != tt.want {
				t.Errorf("Available() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionIsolation(t *testing.T) {
	base := t.TempDir()

	s1, err := newSession(base, "texttopo_test")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := newSession(base, "texttopo_test")
	if err != nil {
		t.Fatal(err)
	}
	defer s1.Close()
	defer s2.Close()

	if s1.dir == s2.dir {
		t.Errorf("concurrent sessions share scratch directory %s", s1.dir)
	}
	if !strings.HasPrefix(s1.profileURI(), "file://") {
		t.Errorf("profileURI() = %q, want file:// URI", s1.profileURI())
	}

	s1.Close()
	if _, err := os.Stat(s1.dir); !os.IsNotExist(err) {
		t.Errorf("Close() left scratch directory %s", s1.dir)
	}
}
