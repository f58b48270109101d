// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/woozymasta/kpu"
)

// newListCmd builds "list" command.
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list <archive>",
		Aliases: []string{"ls"},
		Short:   "List archive entries",
		Args:    cobra.ExactArgs(1),
		RunE:    runList,
	}

	cmd.Flags().Bool("json", false, "print entries as JSON")
	cmd.Flags().Bool("yaml", false, "print entries as YAML")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")

	return cmd
}

// runList executes "list" command.
func runList(cmd *cobra.Command, args []string) error {
	v, err := newConfig(cmd)
	if err != nil {
		return err
	}

	entries, err := kpu.ListEntries(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case v.GetBool("json"):
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)

	case v.GetBool("yaml"):
		data, err := yaml.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		_, err = out.Write(data)
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}

		modified := "-"
		if !entry.Modified.IsZero() {
			modified = entry.Modified.UTC().Format("2006-01-02 15:04:05")
		}

		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\n", entry.UncompressedSize, entry.CompressedSize, modified, entry.Name)
	}

	return tw.Flush()
}
