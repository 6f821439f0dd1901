// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/texttopo/internal/normalize"
	"github.com/pdiddy/texttopo/pkg/types"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the LibreOffice normalizer is usable",
	Long: `Doctor resolves the soffice executable the way extract would and runs
it with its version flag under a short timeout. It is diagnostic only;
extract never requires soffice to be present.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := batchConfig()
		if cmd.Flags().Changed("soffice-path") {
			cfg.Normalize.SofficePath, _ = cmd.Flags().GetString("soffice-path")
		}
		if cmd.Flags().Changed("probe-timeout") {
			cfg.Normalize.ProbeTimeout, _ = cmd.Flags().GetDuration("probe-timeout")
		}
		n := normalize.New(cfg.Normalize)

		toolPath, err := n.ResolveTool()
		if err != nil {
			fmt.Fprintf(os.Stderr, "soffice: not found (%v)\n", err)
			return &exitError{code: exitFailures, err: err}
		}
		fmt.Printf("soffice: %s\n", toolPath)

		if n.Available(cmd.Context()) {
			fmt.Println("version probe: ok")
			return nil
		}
		fmt.Printf("version probe: no response within %s\n", cfg.Normalize.ProbeTimeout)
		return &exitError{code: exitFailures, err: fmt.Errorf("soffice at %s did not respond to version probe", toolPath)}
	},
}

func init() {
	doctorCmd.Flags().String("soffice-path", "", "explicit path to the soffice executable")
	doctorCmd.Flags().Duration("probe-timeout", types.DefaultBatchConfig().Normalize.ProbeTimeout, "timeout for the version probe")

	rootCmd.AddCommand(doctorCmd)
}
