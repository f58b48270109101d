// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"io"

	"github.com/klauspost/compress/zip"
)

// ListEntries reads archive central directory and returns entries in stored order.
func ListEntries(archivePath string) ([]EntryInfo, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, newError(KindIOFailure, "open archive", archivePath, err)
	}
	defer func() { _ = zr.Close() }()

	entries := make([]EntryInfo, 0, len(zr.File))
	for _, f := range zr.File {
		entries = append(entries, entryInfoFromFile(f))
	}

	return entries, nil
}

// ReadEntry returns full payload of entry with exact stored name.
func ReadEntry(archivePath string, name string) ([]byte, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, newError(KindIOFailure, "open archive", archivePath, err)
	}
	defer func() { _ = zr.Close() }()

	for _, f := range zr.File {
		if f.Name != name {
			continue
		}

		data, err := readZipFile(f)
		if err != nil {
			return nil, newError(KindIOFailure, "read entry", name, err)
		}

		return data, nil
	}

	return nil, newError(KindNotFound, "entry not found", name, ErrEntryNotFound)
}

// entryInfoFromFile converts zip central directory record to EntryInfo.
func entryInfoFromFile(f *zip.File) EntryInfo {
	return EntryInfo{
		Name:             f.Name,
		Method:           f.Method,
		Modified:         f.Modified,
		CompressedSize:   f.CompressedSize64,
		UncompressedSize: f.UncompressedSize64,
		CRC32:            f.CRC32,
		IsDir:            isDirEntryName(f.Name) || f.FileInfo().IsDir(),
	}
}

// readZipFile reads whole entry payload and verifies its checksum.
func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	return io.ReadAll(rc)
}
