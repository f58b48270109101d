// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/woozymasta/pathrules"
)

// testEntryTime is fixed entry timestamp used by test archives.
var testEntryTime = time.Date(2024, time.March, 9, 10, 20, 30, 0, time.UTC)

// testEntry is one entry for createTestKPF.
type testEntry struct {
	name   string
	data   []byte
	stored bool
	// dosOnly writes only MS-DOS date/time fields without extended timestamp.
	dosOnly bool
	// nonUTF8 writes name without UTF-8 flag.
	nonUTF8 bool
}

// includeRules builds include rules from raw patterns for concise test setup.
func includeRules(patterns ...string) []pathrules.Rule {
	rules := make([]pathrules.Rule, 0, len(patterns))
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}

		rules = append(rules, pathrules.Rule{
			Action:  pathrules.ActionInclude,
			Pattern: pattern,
		})
	}

	return rules
}

// createTestKPF writes ZIP archive with entries in given order.
// Entry names ending with "/" are written as directory markers.
func createTestKPF(t *testing.T, path string, entries []testEntry) {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		method := zip.Deflate
		if entry.stored || strings.HasSuffix(entry.name, "/") {
			method = zip.Store
		}

		header := &zip.FileHeader{
			Name:    entry.name,
			Method:  method,
			NonUTF8: entry.nonUTF8,
		}
		if entry.dosOnly {
			header.ModifiedDate, header.ModifiedTime = dosDateTime(testEntryTime) //nolint:staticcheck // DOS-only entry
		} else {
			header.Modified = testEntryTime
		}

		w, err := zw.CreateHeader(header)
		if err != nil {
			t.Fatalf("CreateHeader %s: %v", entry.name, err)
		}

		if len(entry.data) > 0 {
			if _, err := w.Write(entry.data); err != nil {
				t.Fatalf("write %s: %v", entry.name, err)
			}
		}
	}

	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write archive: %v", err)
	}
}

// dosDateTime encodes t wall clock as MS-DOS date and time fields.
func dosDateTime(t time.Time) (uint16, uint16) {
	date := uint16(t.Day() + int(t.Month())<<5 + (t.Year()-1980)<<9)
	clock := uint16(t.Second()/2 + t.Minute()<<5 + t.Hour()<<11)
	return date, clock
}

// writeModFile writes file under mod folder creating parent directories.
func writeModFile(t *testing.T, dir string, rel string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}

	return path
}

// entryNames returns sorted non-directory entry names of archive.
func entryNames(t *testing.T, path string) []string {
	t.Helper()

	entries, err := ListEntries(path)
	if err != nil {
		t.Fatalf("ListEntries: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}

		names = append(names, entry.Name)
	}

	sort.Strings(names)

	return names
}

// findEntry returns entry with exact name or nil.
func findEntry(entries []EntryInfo, name string) *EntryInfo {
	for i := range entries {
		if entries[i].Name == name {
			return &entries[i]
		}
	}

	return nil
}

// mustReadEntry reads entry payload or fails test.
func mustReadEntry(t *testing.T, archivePath string, name string) []byte {
	t.Helper()

	data, err := ReadEntry(archivePath, name)
	if err != nil {
		t.Fatalf("ReadEntry %s: %v", name, err)
	}

	return data
}

// mustReadFile reads file or fails test.
func mustReadFile(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile %s: %v", path, err)
	}

	return data
}
