// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

/*
Package kpu patches ZIP-format archives (KPF packages) with files from a
mod folder. Matching entries are replaced, unmatched files are added, and
every other entry is copied with its name and timestamp.

Matching rules (summary):
  - entry names and relative file paths are normalized with NormalizeEntryName;
  - with Options.CaseInsensitive, keys are lower-cased before comparison;
  - output entry name is always the file's relative path in on-disk case;
  - directory marker entries are dropped;
  - two mod folder files with the same key fail with ErrKeyCollision.

# Patching

Start from DefaultOptions (backup and case-insensitive matching enabled):

	res, err := kpu.Patch(ctx, "data.kpf", "mods/hd-textures", kpu.DefaultOptions())
	if err != nil {
	    return err
	}
	_ = res.Replaced

The merged archive is written to "data.kpf.tmp", synced, and renamed over
"data.kpf". The backup "data.kpf.bak" is a copy taken before the rewrite,
so the original path always holds either the untouched or the merged archive.

Mod folder files can be filtered and stored without compression using
github.com/woozymasta/pathrules rules:

	opts := kpu.DefaultOptions()
	opts.Ignore = kpu.ParseRules("*.md", ".git/**")
	opts.Store = kpu.ParseRules("*.png", "*.ogg")
	opts.CompressionLevel = 9
	opts.OnEntryDone = func(e kpu.EntryProgress) {
	    // progress callback per written entry
	}

Use Options.DryRun to inspect the plan without touching the filesystem:

	opts.DryRun = true
	res, err := kpu.Patch(ctx, "data.kpf", "mods/hd-textures", opts)
	if err != nil {
	    return err
	}
	for _, e := range res.Entries {
	    fmt.Println(e.Origin, e.Name)
	}

# Errors

Failures are *Error values carrying ErrorKind. Match them with errors.Is
against ErrNotFound, ErrIOFailure, ErrRenameFailure, ErrKeyCollision, or
ErrInvalidOptions, or read the kind with KindOf.
*/
package kpu
