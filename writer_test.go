// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

func TestRewriteArchive_OrderAndProgress(t *testing.T) {
	t.Parallel()

	plan, err := openTestPlan(t, []testEntry{
		{name: "z.txt", data: []byte("z")},
		{name: "a.txt", data: []byte("a")},
		{name: "m.txt", data: []byte("m")},
	}, map[string]string{
		"M.txt": "new-m",
		"b.txt": "b",
	}, true)
	if err != nil {
		t.Fatalf("buildRewritePlan: %v", err)
	}

	opts := DefaultOptions()
	opts.applyDefaults()

	var names []string
	opts.OnEntryDone = func(entry EntryProgress) {
		names = append(names, entry.Name)
	}

	var out bytes.Buffer
	if err := rewriteArchive(context.Background(), &out, plan, nil, opts); err != nil {
		t.Fatalf("rewriteArchive: %v", err)
	}

	want := []string{"z.txt", "a.txt", "b.txt", "M.txt"}
	if len(names) != len(want) {
		t.Fatalf("progress=%q, want %q", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("progress=%q, want %q", names, want)
		}
	}

	zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}

	if len(zr.File) != len(want) {
		t.Fatalf("len(zr.File)=%d, want %d", len(zr.File), len(want))
	}
	for i := range want {
		if zr.File[i].Name != want[i] {
			t.Fatalf("zr.File[%d].Name=%q, want %q", i, zr.File[i].Name, want[i])
		}
	}

	rc, err := zr.File[3].Open()
	if err != nil {
		t.Fatalf("Open M.txt: %v", err)
	}
	defer func() { _ = rc.Close() }()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(data) != "new-m" {
		t.Fatalf("M.txt=%q, want new-m", data)
	}
}

func TestRewriteArchive_CompressionLevel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := bytes.Repeat([]byte("level-test-payload-"), 4096)
	writeModFile(t, dir, "big.txt", payload)

	set, err := scanReplacements(dir, true, nil)
	if err != nil {
		t.Fatalf("scanReplacements: %v", err)
	}

	plan, err := buildRewritePlan(nil, set, true)
	if err != nil {
		t.Fatalf("buildRewritePlan: %v", err)
	}

	sizes := make(map[int]uint64)
	for _, level := range []int{flate.HuffmanOnly, flate.BestCompression} {
		opts := DefaultOptions()
		opts.CompressionLevel = level

		var out bytes.Buffer
		if err := rewriteArchive(context.Background(), &out, plan, nil, opts); err != nil {
			t.Fatalf("rewriteArchive level %d: %v", level, err)
		}

		zr, err := zip.NewReader(bytes.NewReader(out.Bytes()), int64(out.Len()))
		if err != nil {
			t.Fatalf("NewReader: %v", err)
		}

		sizes[level] = zr.File[0].CompressedSize64
	}

	if sizes[flate.BestCompression] >= sizes[flate.HuffmanOnly] {
		t.Fatalf("best=%d must be smaller than huffman-only=%d", sizes[flate.BestCompression], sizes[flate.HuffmanOnly])
	}
}

func TestRewriteArchive_MissingReplacementSource(t *testing.T) {
	t.Parallel()

	plan := &rewritePlan{
		entries: []rewriteEntry{{
			name:   "gone.txt",
			origin: OriginAdded,
			input: &replacement{
				name:       "gone.txt",
				sourcePath: filepath.Join(t.TempDir(), "gone.txt"),
				key:        "gone.txt",
			},
		}},
	}

	opts := DefaultOptions()
	opts.applyDefaults()

	err := rewriteArchive(context.Background(), io.Discard, plan, nil, opts)
	if err == nil {
		t.Fatal("rewriteArchive must fail for missing replacement file")
	}
}

func TestRewriteArchive_Canceled(t *testing.T) {
	t.Parallel()

	plan, err := openTestPlan(t, []testEntry{{name: "a.txt", data: []byte("a")}}, nil, true)
	if err != nil {
		t.Fatalf("buildRewritePlan: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.applyDefaults()

	err = rewriteArchive(ctx, io.Discard, plan, nil, opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestHasExtendedTimestamp(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		extra []byte
		want  bool
	}{
		{name: "empty", extra: nil, want: false},
		{name: "only ut", extra: []byte{0x55, 0x54, 0x05, 0x00, 0x01, 0xee, 0x37, 0xec, 0x65}, want: true},
		{name: "after other field", extra: []byte{0x0a, 0x00, 0x02, 0x00, 0xaa, 0xbb, 0x55, 0x54, 0x01, 0x00, 0x00}, want: true},
		{name: "other field only", extra: []byte{0x0a, 0x00, 0x02, 0x00, 0xaa, 0xbb}, want: false},
		{name: "truncated", extra: []byte{0x0a, 0x00, 0x09, 0x00, 0x55, 0x54}, want: false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := hasExtendedTimestamp(tc.extra); got != tc.want {
				t.Fatalf("hasExtendedTimestamp(% x)=%v, want %v", tc.extra, got, tc.want)
			}
		})
	}
}
