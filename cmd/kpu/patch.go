// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/woozymasta/kpu"
)

// newPatchCmd builds "patch" command.
func newPatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch <archive> <mod-dir>",
		Short: "Apply mod folder files to archive",
		Example: `  kpu patch data.kpf mods/hd-textures
  kpu patch --no-backup --store '*.png' --store '*.ogg' data.kpf mods/hd
  kpu patch --dry-run --ignore '*.md' data.kpf mods/hd`,
		Args: cobra.ExactArgs(2),
		RunE: runPatch,
	}

	flags := cmd.Flags()
	flags.Bool("no-backup", false, "do not keep pre-patch archive as <archive>.bak")
	flags.Bool("case-sensitive", false, "match entry names case-sensitively")
	flags.StringSlice("ignore", nil, "glob of mod folder files to skip (repeatable, !glob re-includes)")
	flags.StringSlice("store", nil, "glob of mod folder files written without compression (repeatable)")
	flags.Int("level", 0, "deflate level for added entries, -2..9 (0 means default)")
	flags.Bool("dry-run", false, "print plan without writing anything")

	return cmd
}

// runPatch executes "patch" command.
func runPatch(cmd *cobra.Command, args []string) error {
	v, err := newConfig(cmd)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), v.GetBool("verbose"))
	archivePath, modDir := args[0], args[1]

	opts := kpu.DefaultOptions()
	opts.MakeBackup = !v.GetBool("no-backup")
	opts.CaseInsensitive = !v.GetBool("case-sensitive")
	opts.Ignore = kpu.ParseRules(v.GetStringSlice("ignore")...)
	opts.Store = kpu.ParseRules(v.GetStringSlice("store")...)
	opts.CompressionLevel = v.GetInt("level")
	opts.DryRun = v.GetBool("dry-run")
	opts.OnEntryDone = func(entry kpu.EntryProgress) {
		logger.Debug("entry written", "name", entry.Name, "origin", entry.Origin, "size", entry.Size)
	}

	logger.Debug("patching",
		"archive", archivePath,
		"mod_dir", modDir,
		"backup", opts.MakeBackup,
		"case_insensitive", opts.CaseInsensitive,
	)

	res, err := kpu.Patch(cmd.Context(), archivePath, modDir, opts)
	if err != nil {
		return fmt.Errorf("patch %s: %w", archivePath, err)
	}

	if opts.DryRun {
		out := cmd.OutOrStdout()
		for _, entry := range res.Entries {
			if entry.Origin == kpu.OriginCopied {
				continue
			}

			fmt.Fprintf(out, "%-8s %s\n", entry.Origin, entry.Name)
		}
	}

	logger.Info("done",
		"replaced", res.Replaced,
		"added", res.Added,
		"copied", res.Copied,
		"ignored", res.Ignored,
		"backup", res.BackupPath,
		"dry_run", opts.DryRun,
		"duration", res.Duration,
	)

	return nil
}
