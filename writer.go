// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// writeBufferSize is buffered writer size placed between zip writer and temporary file.
const writeBufferSize = 1024 * 1024

var (
	// archiveWriterPool reuses bufio writers between Patch calls.
	archiveWriterPool = sync.Pool{
		New: func() any {
			return bufio.NewWriterSize(io.Discard, writeBufferSize)
		},
	}
	// copyBufferPool reuses payload copy buffers between Patch calls.
	copyBufferPool = sync.Pool{
		New: func() any {
			return new([copyBufferSize]byte)
		},
	}
)

// acquireArchiveWriter returns a buffered writer and release callback.
func acquireArchiveWriter(out io.Writer) (*bufio.Writer, func()) {
	w := archiveWriterPool.Get().(*bufio.Writer) //nolint:forcetypeassert // pool contains only *bufio.Writer
	w.Reset(out)

	return w, func() {
		w.Reset(io.Discard)
		archiveWriterPool.Put(w)
	}
}

// acquireCopyBuffer returns reusable payload copy buffer and release callback.
func acquireCopyBuffer() ([]byte, func()) {
	arr := copyBufferPool.Get().(*[copyBufferSize]byte) //nolint:forcetypeassert // pool contains only fixed-size buffers
	buf := arr[:]

	return buf, func() {
		copyBufferPool.Put(arr)
	}
}

// rewriteArchive streams plan into out as a new ZIP archive.
// All buffered output is flushed before it returns nil.
func rewriteArchive(ctx context.Context, out io.Writer, plan *rewritePlan, store *ruleMatcher, opts Options) error {
	if ctx == nil {
		ctx = context.Background()
	}

	bw, releaseWriter := acquireArchiveWriter(out)
	defer releaseWriter()

	zw := zip.NewWriter(bw)
	level := opts.CompressionLevel
	zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(w, level)
	})

	copyBuf, releaseCopyBuffer := acquireCopyBuffer()
	defer releaseCopyBuffer()

	for _, item := range plan.entries {
		if err := ctx.Err(); err != nil {
			_ = zw.Close()
			return err
		}

		var (
			progress EntryProgress
			err      error
		)
		if item.source != nil {
			progress, err = copySourceEntry(zw, item, copyBuf)
		} else {
			progress, err = writeReplacementEntry(zw, item, store, copyBuf)
		}
		if err != nil {
			_ = zw.Close()
			return err
		}

		if opts.OnEntryDone != nil {
			opts.OnEntryDone(progress)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("finish archive: %w", err)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush archive: %w", err)
	}

	return nil
}

// copySourceEntry re-encodes one archive entry under its original name, method, and timestamp.
func copySourceEntry(zw *zip.Writer, item rewriteEntry, copyBuf []byte) (EntryProgress, error) {
	src := item.source
	rc, err := src.Open()
	if err != nil {
		return EntryProgress{}, fmt.Errorf("open entry %s: %w", src.Name, err)
	}
	defer func() { _ = rc.Close() }()

	header := &zip.FileHeader{
		Name:    src.Name,
		Comment: src.Comment,
		Method:  src.Method,
		NonUTF8: src.NonUTF8,
	}
	if hasExtendedTimestamp(src.Extra) {
		header.Modified = src.Modified
	} else {
		// Setting Modified would add an extended timestamp that reads the DOS wall clock as UTC.
		header.ModifiedDate = src.ModifiedDate //nolint:staticcheck // raw DOS fields keep local wall clock
		header.ModifiedTime = src.ModifiedTime //nolint:staticcheck // raw DOS fields keep local wall clock
	}

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return EntryProgress{}, fmt.Errorf("create entry %s: %w", src.Name, err)
	}

	// Reading to EOF also verifies stored CRC32.
	written, err := io.CopyBuffer(dst, rc, copyBuf)
	if err != nil {
		return EntryProgress{}, fmt.Errorf("copy entry %s: %w", src.Name, err)
	}

	return EntryProgress{
		Name:   item.name,
		Origin: item.origin,
		Size:   written,
		Method: src.Method,
	}, nil
}

// writeReplacementEntry writes one mod folder file as archive entry.
func writeReplacementEntry(zw *zip.Writer, item rewriteEntry, store *ruleMatcher, copyBuf []byte) (EntryProgress, error) {
	in := item.input
	if in == nil {
		return EntryProgress{}, fmt.Errorf("entry %s: missing input/source", item.name)
	}

	f, err := os.Open(in.sourcePath)
	if err != nil {
		return EntryProgress{}, fmt.Errorf("open replacement %s: %w", in.sourcePath, err)
	}
	defer func() { _ = f.Close() }()

	method := entryMethod(store, in.name)
	header := &zip.FileHeader{
		Name:   in.name,
		Method: method,
	}
	if !in.modTime.IsZero() {
		header.Modified = in.modTime
	}

	dst, err := zw.CreateHeader(header)
	if err != nil {
		return EntryProgress{}, fmt.Errorf("create entry %s: %w", in.name, err)
	}

	written, err := io.CopyBuffer(dst, f, copyBuf)
	if err != nil {
		return EntryProgress{}, fmt.Errorf("copy replacement %s: %w", in.sourcePath, err)
	}

	return EntryProgress{
		Name:   item.name,
		Origin: item.origin,
		Size:   written,
		Method: method,
	}, nil
}

// extTimeExtraID is ZIP extra field tag of the extended timestamp ("UT").
const extTimeExtraID = 0x5455

// hasExtendedTimestamp reports whether ZIP extra data carries an extended timestamp field.
func hasExtendedTimestamp(extra []byte) bool {
	for len(extra) >= 4 {
		tag := binary.LittleEndian.Uint16(extra[:2])
		size := int(binary.LittleEndian.Uint16(extra[2:4]))
		if tag == extTimeExtraID {
			return true
		}

		if size > len(extra)-4 {
			return false
		}

		extra = extra[4+size:]
	}

	return false
}
