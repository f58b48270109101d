// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/klauspost/compress/zip"
)

// Patch replaces archive entries with files from dir and installs merged archive at archivePath.
//
// Archive entries whose lookup key matches a file under dir are replaced by that file,
// written under the file's relative path in on-disk case. Files without counterpart are added.
// Every other non-directory entry is copied with its name and timestamp.
//
// The merged archive is written to TempPath(archivePath), synced, and renamed over archivePath.
// When opts.MakeBackup is set, BackupPath(archivePath) receives a copy of the original first.
// On write failure the temporary archive is removed and archivePath is left untouched.
func Patch(ctx context.Context, archivePath string, dir string, opts Options) (*Result, error) {
	startedAt := time.Now()

	if ctx == nil {
		ctx = context.Background()
	}

	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	archiveInfo, err := checkPatchInputs(archivePath, dir)
	if err != nil {
		return nil, err
	}

	ignore, err := newRuleMatcher(opts.Ignore, opts.RulesMatcherOptions)
	if err != nil {
		return nil, err
	}

	store, err := newRuleMatcher(opts.Store, opts.RulesMatcherOptions)
	if err != nil {
		return nil, err
	}

	set, err := scanReplacements(dir, opts.CaseInsensitive, ignore)
	if err != nil {
		return nil, err
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, newError(KindIOFailure, "open archive", archivePath, err)
	}
	readerOpen := true
	defer func() {
		if readerOpen {
			_ = zr.Close()
		}
	}()

	plan, err := buildRewritePlan(zr.File, set, opts.CaseInsensitive)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Entries:     plan.plannedEntries(),
		Copied:      plan.copied,
		Replaced:    plan.replaced,
		Added:       plan.added,
		SkippedDirs: plan.skippedDirs,
		Ignored:     set.ignored,
	}

	if opts.DryRun {
		res.Duration = time.Since(startedAt)
		return res, nil
	}

	if opts.MakeBackup {
		backupPath := BackupPath(archivePath)
		copyBuf, releaseCopyBuffer := acquireCopyBuffer()
		err := writeBackup(archivePath, backupPath, copyBuf)
		releaseCopyBuffer()
		if err != nil {
			return nil, newError(KindIOFailure, "write backup", backupPath, err)
		}

		res.BackupPath = backupPath
	}

	tmpPath := TempPath(archivePath)
	if err := writeTempArchive(ctx, tmpPath, archiveInfo.Mode().Perm(), plan, store, opts); err != nil {
		_ = os.Remove(tmpPath)
		return nil, newError(KindIOFailure, "write archive", tmpPath, err)
	}

	readerOpen = false
	if err := zr.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return nil, newError(KindIOFailure, "close archive", archivePath, err)
	}

	if err := installArchive(tmpPath, archivePath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, newError(KindRenameFailure, "install archive", archivePath, err)
	}

	res.Duration = time.Since(startedAt)

	return res, nil
}

// checkPatchInputs verifies archive is a regular file and dir is a directory.
func checkPatchInputs(archivePath string, dir string) (fs.FileInfo, error) {
	archiveInfo, err := os.Stat(archivePath)
	if err != nil {
		return nil, newError(KindNotFound, "archive not found", archivePath, err)
	}
	if !archiveInfo.Mode().IsRegular() {
		return nil, newError(KindNotFound, "archive not found", archivePath, errors.New("not a regular file"))
	}

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return nil, newError(KindNotFound, "mod folder not found", dir, err)
	}
	if !dirInfo.IsDir() {
		return nil, newError(KindNotFound, "mod folder not found", dir, errors.New("not a directory"))
	}

	return archiveInfo, nil
}

// writeTempArchive writes plan to path and syncs it to disk.
func writeTempArchive(
	ctx context.Context,
	path string,
	perm fs.FileMode,
	plan *rewritePlan,
	store *ruleMatcher,
	opts Options,
) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create temporary archive: %w", err)
	}

	if err := rewriteArchive(ctx, f, plan, store, opts); err != nil {
		_ = f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync temporary archive: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temporary archive: %w", err)
	}

	return nil
}
