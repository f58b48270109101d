// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// replacement is one mod folder file scheduled to be written into archive.
type replacement struct {
	// modTime is file modification time; zero when it could not be read.
	modTime time.Time
	// name is normalized relative path in on-disk case, used as output entry name.
	name string
	// sourcePath is absolute (or dir-joined) filesystem path of the file.
	sourcePath string
	// key is lookup key derived from name.
	key string
}

// replacementSet maps lookup key to replacement source.
type replacementSet struct {
	byKey   map[string]*replacement
	ignored int
}

// scanReplacements walks dir once and builds replacement set.
// Two files that resolve to the same lookup key are rejected with ErrKeyCollision.
func scanReplacements(dir string, caseInsensitive bool, ignore *ruleMatcher) (*replacementSet, error) {
	set := &replacementSet{byKey: make(map[string]*replacement)}

	// WalkDir does not descend into a symlinked root.
	root := dir
	if info, err := os.Lstat(dir); err == nil && info.Mode()&fs.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(dir)
		if err != nil {
			return nil, newError(KindIOFailure, "resolve mod folder", dir, err)
		}

		root = resolved
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return newError(KindIOFailure, "walk mod folder", path, err)
		}

		info, ok, err := regularFileInfo(path, d)
		if err != nil {
			return newError(KindIOFailure, "stat mod file", path, err)
		}
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return newError(KindIOFailure, "resolve relative path", path, err)
		}

		name := NormalizeEntryName(filepath.ToSlash(rel))
		if name == "" {
			return nil
		}

		if ignore.Match(name) {
			set.ignored++
			return nil
		}

		key := lookupKey(name, caseInsensitive)
		if existing, ok := set.byKey[key]; ok {
			return newError(KindCollision, "scan mod folder", path, fmt.Errorf(
				"%w: %q conflicts with %q", ErrKeyCollision, name, existing.name,
			))
		}

		set.byKey[key] = &replacement{
			modTime:    info.ModTime(),
			name:       name,
			sourcePath: path,
			key:        key,
		}
		return nil
	})
	if walkErr != nil {
		if KindOf(walkErr) != KindUnknown {
			return nil, walkErr
		}

		return nil, newError(KindIOFailure, "walk mod folder", dir, walkErr)
	}

	return set, nil
}

// regularFileInfo resolves walk entry to regular file info.
// Symlinks are followed; links to directories, dangling links and special files are skipped.
func regularFileInfo(path string, d fs.DirEntry) (fs.FileInfo, bool, error) {
	if d.Type()&fs.ModeSymlink != 0 {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, false, nil
			}

			return nil, false, err
		}

		return info, info.Mode().IsRegular(), nil
	}

	if !d.Type().IsRegular() {
		return nil, false, nil
	}

	info, err := d.Info()
	if err != nil {
		return nil, false, err
	}

	return info, true, nil
}

// has reports whether key is present in set.
func (s *replacementSet) has(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// sorted returns replacements ordered by lookup key.
func (s *replacementSet) sorted() []*replacement {
	out := make([]*replacement, 0, len(s.byKey))
	for _, item := range s.byKey {
		out = append(out, item)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })

	return out
}

// len returns number of replacements.
func (s *replacementSet) len() int {
	return len(s.byKey)
}
