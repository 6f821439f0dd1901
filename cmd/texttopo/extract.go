// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/texttopo/internal/extract"
	"github.com/pdiddy/texttopo/internal/history"
	"github.com/pdiddy/texttopo/internal/normalize"
	"github.com/pdiddy/texttopo/internal/pipeline"
	"github.com/pdiddy/texttopo/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [input]",
	Short: "Extract text from a DOCX file or a directory of them",
	Long: `Extract processes a single DOCX file or every DOCX under a directory.
Each document is optionally round-tripped through LibreOffice, parsed,
and written as a text file named after the input. Per-file failures are
recorded and reported; the batch always runs to completion.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringP("output", "o", "", "output directory (default: alongside each input)")
	extractCmd.Flags().Bool("stdout", false, "print extracted text to stdout instead of writing files (single file only)")
	extractCmd.Flags().IntP("concurrency", "c", 4, "maximum concurrent file pipelines")
	extractCmd.Flags().Bool("recursive", true, "scan directory inputs into subdirectories")
	extractCmd.Flags().Bool("overwrite", false, "replace existing output files instead of skipping them")
	extractCmd.Flags().Bool("fail-on-skip", false, "count skipped outputs toward the non-zero exit condition")
	extractCmd.Flags().Bool("normalize", true, "round-trip documents through LibreOffice before extraction")
	extractCmd.Flags().String("soffice-path", "", "explicit path to the soffice executable")
	extractCmd.Flags().Duration("step-timeout", 60*time.Second, "timeout for each conversion sub-step")
	extractCmd.Flags().Duration("probe-timeout", 10*time.Second, "timeout for the soffice version probe")
	extractCmd.Flags().String("extension", ".txt", "output file extension")
	extractCmd.Flags().String("scratch-dir", "texttopo_tmp", "scratch directory name prefix")
	extractCmd.Flags().String("log-file", "", "tee progress output to this file")
	extractCmd.Flags().BoolP("quiet", "q", false, "suppress per-file progress output")

	for flag, key := range map[string]string{
		"output":        "output.dir",
		"concurrency":   "concurrency",
		"recursive":     "recursive",
		"overwrite":     "overwrite",
		"fail-on-skip":  "fail_on_skip",
		"normalize":     "normalize.enabled",
		"soffice-path":  "normalize.soffice_path",
		"step-timeout":  "normalize.step_timeout",
		"probe-timeout": "normalize.probe_timeout",
		"extension":     "output.extension",
		"scratch-dir":   "normalize.scratch_dir_name",
	} {
		viper.BindPFlag(key, extractCmd.Flags().Lookup(flag))
	}

	rootCmd.AddCommand(extractCmd)
}

// batchConfig assembles the effective configuration: flags over
// environment over config file over defaults.
func batchConfig() types.BatchConfig {
	return types.BatchConfig{
		Concurrency: viper.GetInt("concurrency"),
		Recursive:   viper.GetBool("recursive"),
		FailOnSkip:  viper.GetBool("fail_on_skip"),
		HistoryDir:  viper.GetString("history_dir"),
		Normalize: types.NormalizeConfig{
			Enabled:        viper.GetBool("normalize.enabled"),
			SofficePath:    viper.GetString("normalize.soffice_path"),
			StepTimeout:    viper.GetDuration("normalize.step_timeout"),
			ProbeTimeout:   viper.GetDuration("normalize.probe_timeout"),
			ScratchDirName: viper.GetString("normalize.scratch_dir_name"),
		},
		Output: types.OutputConfig{
			Write:     true,
			Dir:       viper.GetString("output.dir"),
			Extension: viper.GetString("output.extension"),
			Overwrite: viper.GetBool("overwrite"),
		},
	}
}

func runExtract(cmd *cobra.Command, args []string) error {
	input := args[0]
	toStdout, _ := cmd.Flags().GetBool("stdout")

	cfg := batchConfig()
	cfg.Output.Write = !toStdout
	if err := cfg.Validate(); err != nil {
		return &exitError{code: exitConfig, err: err}
	}

	var w io.Writer = os.Stderr
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		w = io.Discard
	}
	if logFile, _ := cmd.Flags().GetString("log-file"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return &exitError{code: exitConfig, err: fmt.Errorf("opening log file: %w", err)}
		}
		defer f.Close()
		w = io.MultiWriter(os.Stderr, f)
	}

	files, err := pipeline.Discover(input, cfg.Recursive)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(w, "no input files found under %s\n", input)
		return &exitError{code: exitNoInput, err: errors.New("no input files found")}
	}
	if toStdout && len(files) > 1 {
		return &exitError{code: exitConfig, err: errors.New("--stdout requires a single input file")}
	}

	// The tool-availability decision is made once, here, before
	// fan-out. Workers never re-resolve.
	var norm pipeline.Normalizer
	if cfg.Normalize.Enabled {
		n := normalize.New(cfg.Normalize)
		if toolPath, err := n.ResolveTool(); err != nil {
			fmt.Fprintf(w, "soffice unavailable, extracting directly: %v\n", err)
		} else {
			fmt.Fprintf(w, "using soffice at %s\n", toolPath)
			norm = n
		}
	}

	started := time.Now()
	report := pipeline.Run(cmd.Context(), files, cfg, norm, extract.DocxExtractor{}, w)
	finished := time.Now()

	if cfg.HistoryDir != "" {
		if err := recordRun(cmd, cfg.HistoryDir, input, started, finished, report); err != nil {
			fmt.Fprintf(w, "warning: run history not recorded: %v\n", err)
		}
	}

	if toStdout {
		for _, p := range report.Paths() {
			fmt.Print(report.Outcomes[p].Text)
		}
	}

	if report.HasFailures(cfg.FailOnSkip) {
		bad := report.Failed
		if cfg.FailOnSkip {
			bad += report.Skipped
		}
		return &exitError{
			code: exitFailures,
			err:  fmt.Errorf("%d of %d files not extracted", bad, report.Total()),
		}
	}
	return nil
}

func recordRun(cmd *cobra.Command, dir, root string, started, finished time.Time, report *types.Report) error {
	store, err := history.Open(dir)
	if err != nil {
		return err
	}
	defer store.Close()
	_, err = store.RecordRun(cmd.Context(), root, started, finished, report)
	return err
}
