// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize round-trips DOCX files through LibreOffice so that
// content the direct parser mis-reads (notably merge-field placeholder
// encodings) is re-serialized into a cleanly parseable form. Each
// conversion runs in an isolated scratch directory with its own user
// profile, since concurrent soffice invocations sharing profile or lock
// state corrupt each other.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdiddy/texttopo/pkg/types"
)

var (
	// ErrToolNotFound means the soffice executable could not be
	// resolved. Callers should disable normalization for the rest of
	// the run rather than retry per file.
	ErrToolNotFound = errors.New("soffice executable not found")

	// ErrTimeout means a conversion sub-step exceeded its timeout and
	// its process tree was killed.
	ErrTimeout = errors.New("conversion timed out")

	// ErrConversion means soffice exited non-zero or produced no
	// output file.
	ErrConversion = errors.New("conversion failed")
)

// sofficeEnv suppresses soffice's interactive behavior in headless use.
var sofficeEnv = []string{
	"DISPLAY=",
	"SAL_USE_VCLPLUGIN=svp",
	"OOO_DISABLE_RECOVERY=1",
}

// Normalizer converts DOCX files to the legacy DOC format and back
// using an external soffice binary. The executable location is resolved
// at most once per Normalizer and cached; resolution failure is cached
// too, so a missing tool costs one lookup for the whole run.
type Normalizer struct {
	cfg types.NormalizeConfig
	run runner

	// baseDir is the root for scratch directories, the system temp dir
	// in production. Tests point it at t.TempDir().
	baseDir string

	resolveOnce sync.Once
	toolPath    string
	resolveErr  error
}

// New creates a Normalizer for the given configuration.
func New(cfg types.NormalizeConfig) *Normalizer {
	return &Normalizer{
		cfg:     cfg,
		run:     defaultRunner,
		baseDir: os.TempDir(),
	}
}

// ResolveTool locates the soffice executable, caching the result. The
// first failure is final for this Normalizer.
func (n *Normalizer) ResolveTool() (string, error) {
	n.resolveOnce.Do(func() {
		n.toolPath, n.resolveErr = resolveTool(n.cfg.SofficePath, n.run)
	})
	return n.toolPath, n.resolveErr
}

// Available probes the resolved tool with its version flag under the
// probe timeout. It is diagnostic only and never gates normalization.
func (n *Normalizer) Available(ctx context.Context) bool {
	tool, err := n.ResolveTool()
	if err != nil {
		return false
	}
	probeCtx, cancel := context.WithTimeout(ctx, n.cfg.ProbeTimeout)
	defer cancel()
	return n.run.Run(probeCtx, tool, []string{"--version"}, sofficeEnv) == nil
}

// Normalize converts the document at src through the DOC round trip and
// writes the re-serialized DOCX to dst. The scratch directory for the
// attempt is removed on every exit path.
func (n *Normalizer) Normalize(ctx context.Context, src, dst string) error {
	tool, err := n.ResolveTool()
	if err != nil {
		return err
	}

	s, err := newSession(n.baseDir, n.cfg.ScratchDirName)
	if err != nil {
		return fmt.Errorf("creating conversion session: %w", err)
	}
	defer s.Close()

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	docPath := filepath.Join(s.dir, base+".doc")
	docxPath := filepath.Join(s.dir, base+".docx")

	if err := n.convertStep(ctx, tool, s, src, "doc"); err != nil {
		return err
	}
	if _, err := os.Stat(docPath); err != nil {
		return fmt.Errorf("%w: no DOC output for %s", ErrConversion, src)
	}

	if err := n.convertStep(ctx, tool, s, docPath, "docx"); err != nil {
		return err
	}
	if _, err := os.Stat(docxPath); err != nil {
		return fmt.Errorf("%w: no DOCX output for %s", ErrConversion, src)
	}

	if err := copyFile(docxPath, dst); err != nil {
		return fmt.Errorf("copying normalized document: %w", err)
	}
	return nil
}

// convertStep runs one soffice --convert-to invocation under its own
// timeout.
func (n *Normalizer) convertStep(ctx context.Context, tool string, s *session, input, format string) error {
	stepCtx, cancel := context.WithTimeout(ctx, n.cfg.StepTimeout)
	defer cancel()

	args := []string{
		"-env:UserInstallation=" + s.profileURI(),
		"--headless",
		"--invisible",
		"--nodefault",
		"--nolockcheck",
		"--norestore",
		"--nologo",
		"--convert-to", format,
		"--outdir", s.dir,
		input,
	}

	if err := n.run.Run(stepCtx, tool, args, sofficeEnv); err != nil {
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s step exceeded %s", ErrTimeout, format, n.cfg.StepTimeout)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s step: %v", ErrConversion, format, err)
	}
	return nil
}

// session is the ephemeral state for one normalization attempt: a
// uniquely named scratch directory and an isolated soffice profile
// inside it. Sessions never share directories, even for concurrent
// conversions of files with the same base name.
type session struct {
	dir     string
	profile string
}

func newSession(baseDir, prefix string) (*session, error) {
	if prefix == "" {
		prefix = "texttopo_tmp"
	}
	dir, err := os.MkdirTemp(baseDir, prefix+"-*")
	if err != nil {
		return nil, err
	}
	profile := filepath.Join(dir, "profile")
	if err := os.MkdirAll(profile, 0o755); err != nil {
		os.RemoveAll(dir)
		return nil, err
	}
	return &session{dir: dir, profile: profile}, nil
}

// profileURI renders the profile directory as the file URI soffice
// expects for -env:UserInstallation.
func (s *session) profileURI() string {
	p := filepath.ToSlash(s.profile)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

// Close removes the scratch directory and everything in it, including
// any lock files soffice left behind.
func (s *session) Close() {
	os.RemoveAll(s.dir)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
