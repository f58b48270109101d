// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"fmt"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/woozymasta/pathrules"
)

// Sibling file suffixes used during patch.
const (
	// TempSuffix is appended to archive path for the rewritten archive before install.
	TempSuffix = ".tmp"
	// BackupSuffix is appended to archive path for the pre-patch copy.
	BackupSuffix = ".bak"
)

// copyBufferSize is per-patch temporary buffer used by streaming payload copy.
const copyBufferSize = 64 * 1024

// ZIP compression methods written by the patcher.
const (
	// MethodStore writes entry payload uncompressed.
	MethodStore uint16 = 0
	// MethodDeflate writes entry payload with flate.
	MethodDeflate uint16 = 8
)

// EntryOrigin tells where an output entry payload came from.
type EntryOrigin string

// Output entry origins.
const (
	// OriginCopied is an archive entry copied unchanged.
	OriginCopied EntryOrigin = "copied"
	// OriginReplaced is an archive entry overridden by a mod folder file.
	OriginReplaced EntryOrigin = "replaced"
	// OriginAdded is a mod folder file without counterpart in archive.
	OriginAdded EntryOrigin = "added"
)

// EntryInfo describes a single archive entry from the central directory.
type EntryInfo struct {
	// Modified is entry last-modified time; zero when archive stores none.
	Modified time.Time `json:"modified,omitzero" yaml:"modified,omitempty"`
	// Name is raw entry name as stored in archive.
	Name string `json:"name" yaml:"name"`
	// CompressedSize is stored payload size in bytes.
	CompressedSize uint64 `json:"compressed_size" yaml:"compressed_size"`
	// UncompressedSize is payload size after decompression.
	UncompressedSize uint64 `json:"uncompressed_size" yaml:"uncompressed_size"`
	// CRC32 is payload checksum.
	CRC32 uint32 `json:"crc32" yaml:"crc32"`
	// Method is ZIP compression method.
	Method uint16 `json:"method" yaml:"method"`
	// IsDir reports directory marker entries.
	IsDir bool `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
}

// PlannedEntry is one output entry in write order.
type PlannedEntry struct {
	// Name is output entry name.
	Name string `json:"name" yaml:"name"`
	// Origin tells whether entry is copied, replaced, or added.
	Origin EntryOrigin `json:"origin" yaml:"origin"`
	// SourcePath is mod folder file path for replaced/added entries.
	SourcePath string `json:"source_path,omitempty" yaml:"source_path,omitempty"`
}

// EntryProgress contains one completed entry write event.
type EntryProgress struct {
	// Name is entry name written to archive.
	Name string `json:"name" yaml:"name"`
	// Origin tells where payload came from.
	Origin EntryOrigin `json:"origin" yaml:"origin"`
	// Size is uncompressed payload bytes written.
	Size int64 `json:"size" yaml:"size"`
	// Method is ZIP compression method used for entry.
	Method uint16 `json:"method" yaml:"method"`
}

// Options configures Patch behavior.
// Zero value disables backup and case folding; start from DefaultOptions.
type Options struct {
	// OnEntryDone is called after one entry is fully written to temporary archive.
	OnEntryDone func(entry EntryProgress) `json:"-" yaml:"-"`
	// Ignore defines path rules for mod folder files excluded from replacement set.
	Ignore []pathrules.Rule `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	// Store defines path rules for replacement entries written without compression.
	Store []pathrules.Rule `json:"store,omitempty" yaml:"store,omitempty"`
	// RulesMatcherOptions control Ignore and Store rule matching.
	RulesMatcherOptions pathrules.MatcherOptions `json:"rules_matcher_options,omitzero" yaml:"rules_matcher_options,omitzero"`
	// CompressionLevel is flate level for deflated replacement entries.
	// Zero means flate.DefaultCompression.
	CompressionLevel int `json:"compression_level,omitempty" yaml:"compression_level,omitempty"`
	// MakeBackup keeps pre-patch archive as `<archive>.bak`.
	MakeBackup bool `json:"make_backup" yaml:"make_backup"`
	// CaseInsensitive matches archive entries and mod folder files ignoring case.
	CaseInsensitive bool `json:"case_insensitive" yaml:"case_insensitive"`
	// DryRun builds plan and result without touching filesystem.
	DryRun bool `json:"dry_run,omitempty" yaml:"dry_run,omitempty"`
}

// Result contains patch outcome statistics.
type Result struct {
	// Entries lists output entries in write order.
	Entries []PlannedEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	// BackupPath is backup file path when backup was written.
	BackupPath string `json:"backup_path,omitempty" yaml:"backup_path,omitempty"`
	// Copied is number of archive entries copied unchanged.
	Copied int `json:"copied" yaml:"copied"`
	// Replaced is number of archive entries overridden by mod folder files.
	Replaced int `json:"replaced" yaml:"replaced"`
	// Added is number of mod folder files without archive counterpart.
	Added int `json:"added" yaml:"added"`
	// SkippedDirs is number of directory marker entries dropped from archive.
	SkippedDirs int `json:"skipped_dirs,omitempty" yaml:"skipped_dirs,omitempty"`
	// Ignored is number of mod folder files excluded by Ignore rules.
	Ignored int `json:"ignored,omitempty" yaml:"ignored,omitempty"`
	// Duration is end-to-end patch duration.
	Duration time.Duration `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// DefaultOptions returns options with backup and case-insensitive matching enabled.
func DefaultOptions() Options {
	return Options{
		MakeBackup:      true,
		CaseInsensitive: true,
	}
}

// applyDefaults fills zero-valued tuning options with defaults.
func (opts *Options) applyDefaults() {
	if opts.CompressionLevel == 0 {
		opts.CompressionLevel = flate.DefaultCompression
	}

	if opts.RulesMatcherOptions == (pathrules.MatcherOptions{}) {
		opts.RulesMatcherOptions = pathrules.MatcherOptions{
			CaseInsensitive: true,
			DefaultAction:   pathrules.ActionExclude,
		}
	}

	if opts.RulesMatcherOptions.DefaultAction == pathrules.ActionUnknown {
		opts.RulesMatcherOptions.DefaultAction = pathrules.ActionExclude
	}
}

// validate reports invalid tuning values after defaults are applied.
func (opts *Options) validate() error {
	if opts.CompressionLevel < flate.HuffmanOnly || opts.CompressionLevel > flate.BestCompression {
		return newError(KindInvalidArgument, "compression level", "", fmt.Errorf(
			"%d is out of range [%d, %d]", opts.CompressionLevel, flate.HuffmanOnly, flate.BestCompression,
		))
	}

	return nil
}
