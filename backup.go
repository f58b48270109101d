// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// TempPath returns sibling path used for rewritten archive before install.
func TempPath(archivePath string) string {
	return archivePath + TempSuffix
}

// BackupPath returns sibling path used for pre-patch archive copy.
func BackupPath(archivePath string) string {
	return archivePath + BackupSuffix
}

// writeBackup replaces backupPath with a synced copy of archivePath.
// The original archive is never moved, so it stays valid when a later step fails.
func writeBackup(archivePath string, backupPath string, copyBuf []byte) error {
	if err := removeIfExists(backupPath); err != nil {
		return err
	}

	src, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = src.Close() }()

	info, err := src.Stat()
	if err != nil {
		return fmt.Errorf("stat archive: %w", err)
	}

	dst, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}

	if _, err := io.CopyBuffer(dst, src, copyBuf); err != nil {
		_ = dst.Close()
		_ = os.Remove(backupPath)
		return fmt.Errorf("copy backup: %w", err)
	}

	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		_ = os.Remove(backupPath)
		return fmt.Errorf("sync backup: %w", err)
	}

	if err := dst.Close(); err != nil {
		_ = os.Remove(backupPath)
		return fmt.Errorf("close backup: %w", err)
	}

	// Keep backup timestamp equal to original; failure is not fatal.
	_ = os.Chtimes(backupPath, info.ModTime(), info.ModTime())

	return nil
}

// installArchive atomically moves rewritten temporary archive over the original.
func installArchive(tmpPath string, archivePath string) error {
	if err := os.Rename(tmpPath, archivePath); err != nil {
		return fmt.Errorf("rename %s to %s: %w", tmpPath, archivePath, err)
	}

	return nil
}

// removeIfExists removes file when present.
func removeIfExists(path string) error {
	err := os.Remove(path)
	if errors.Is(err, os.ErrNotExist) || err == nil {
		return nil
	}

	return fmt.Errorf("remove %s: %w", path, err)
}
