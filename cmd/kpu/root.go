// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is prefix for environment overrides of command flags.
const envPrefix = "KPU"

// Version is the semantic version (set via -ldflags).
var Version = "dev"

// newRootCmd builds kpu command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kpu",
		Short: "KPF patching utility",
		Long: `kpu replaces entries of a KPF (ZIP) archive with files from a mod folder.

Entries matching a mod folder file are replaced, files without counterpart
are added, and every other entry is kept with its name and timestamp.

Every flag can also be set through environment, e.g. KPU_NO_BACKUP=true.
List flags take space-separated values from environment.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")

	root.AddCommand(newPatchCmd())
	root.AddCommand(newListCmd())

	return root
}

// newConfig binds command flags and KPU_* environment variables.
func newConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	return v, nil
}

// newLogger creates CLI logger writing to w.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix: "kpu",
		Level:  log.InfoLevel,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	return logger
}
