// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"fmt"

	"github.com/klauspost/compress/zip"
)

// rewriteEntry describes one payload source for archive rewrite core.
// Exactly one of source or input is set.
type rewriteEntry struct {
	source *zip.File
	input  *replacement
	name   string
	origin EntryOrigin
}

// rewritePlan is ordered write plan for output archive.
type rewritePlan struct {
	entries     []rewriteEntry
	copied      int
	replaced    int
	added       int
	skippedDirs int
}

// buildRewritePlan partitions source entries and replacements by lookup key.
// Copied entries keep source order; replacements follow in key order.
func buildRewritePlan(files []*zip.File, set *replacementSet, caseInsensitive bool) (*rewritePlan, error) {
	plan := &rewritePlan{
		entries: make([]rewriteEntry, 0, len(files)+set.len()),
	}

	matched := make(map[string]struct{}, set.len())
	seenNames := make(map[string]struct{}, len(files))
	for _, f := range files {
		if isDirEntryName(f.Name) || f.FileInfo().IsDir() {
			plan.skippedDirs++
			continue
		}

		key := lookupKey(f.Name, caseInsensitive)
		if set.has(key) {
			matched[key] = struct{}{}
			continue
		}

		if _, dup := seenNames[f.Name]; dup {
			return nil, newError(KindCollision, "plan archive", f.Name, fmt.Errorf(
				"%w: archive stores entry %q more than once", ErrKeyCollision, f.Name,
			))
		}
		seenNames[f.Name] = struct{}{}

		plan.entries = append(plan.entries, rewriteEntry{
			name:   f.Name,
			source: f,
			origin: OriginCopied,
		})
		plan.copied++
	}

	for _, item := range set.sorted() {
		origin := OriginAdded
		if _, ok := matched[item.key]; ok {
			origin = OriginReplaced
			plan.replaced++
		} else {
			plan.added++
		}

		plan.entries = append(plan.entries, rewriteEntry{
			name:   item.name,
			input:  item,
			origin: origin,
		})
	}

	return plan, nil
}

// plannedEntries returns public view of plan in write order.
func (p *rewritePlan) plannedEntries() []PlannedEntry {
	out := make([]PlannedEntry, 0, len(p.entries))
	for _, item := range p.entries {
		entry := PlannedEntry{
			Name:   item.name,
			Origin: item.origin,
		}
		if item.input != nil {
			entry.SourcePath = item.input.sourcePath
		}

		out = append(out, entry)
	}

	return out
}
