// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the texttopo CLI.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// Exit codes: 0 full success, 1 one or more files failed, 2 no input
// files discovered, 3 configuration error.
const (
	exitFailures = 1
	exitNoInput  = 2
	exitConfig   = 3
)

// exitError carries a process exit code through cobra's error return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// rootCmd is the base command for the texttopo CLI.
var rootCmd = &cobra.Command{
	Use:   "texttopo",
	Short: "Extract text from DOCX documents in bulk",
	Long: `texttopo extracts plain text from Word documents. Documents are
optionally normalized through a LibreOffice round trip first, which
coerces merge-field placeholders into a form the parser reads reliably.
Batches run under a bounded concurrency budget; one file's failure
never aborts the rest.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./texttopo.yaml or ~/.config/texttopo/config.yaml)")
	rootCmd.PersistentFlags().String("history-dir", "", "run-history directory (default: .texttopo; empty string in config disables)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("texttopo")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "texttopo"))
		}
	}

	viper.SetDefault("concurrency", 4)
	viper.SetDefault("recursive", true)
	viper.SetDefault("overwrite", false)
	viper.SetDefault("fail_on_skip", false)
	viper.SetDefault("history_dir", ".texttopo")
	viper.SetDefault("output.extension", ".txt")
	viper.SetDefault("normalize.enabled", true)
	viper.SetDefault("normalize.step_timeout", 60*time.Second)
	viper.SetDefault("normalize.probe_timeout", 10*time.Second)
	viper.SetDefault("normalize.scratch_dir_name", "texttopo_tmp")

	viper.SetEnvPrefix("TEXTTOPO")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}

	if f := rootCmd.PersistentFlags().Lookup("history-dir"); f.Changed {
		viper.Set("history_dir", f.Value.String())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		code := exitFailures
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		os.Exit(code)
	}
}
