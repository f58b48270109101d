// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

package kpu

import "strings"

// NormalizeEntryName converts platform-style relative path to portable archive entry name.
// It replaces "\" with "/" and strips leading "./" and "/" segments until none remain.
// Result is stable: NormalizeEntryName(NormalizeEntryName(s)) == NormalizeEntryName(s).
func NormalizeEntryName(raw string) string {
	name := strings.ReplaceAll(raw, `\`, "/")
	for {
		switch {
		case strings.HasPrefix(name, "./"):
			name = name[2:]
		case strings.HasPrefix(name, "/"):
			name = name[1:]
		default:
			return name
		}
	}
}

// lookupKey returns matching key for archive entry name or relative file path.
func lookupKey(name string, caseInsensitive bool) string {
	key := NormalizeEntryName(name)
	if caseInsensitive {
		// strings.ToLower uses Unicode simple folding and does not depend on locale.
		key = strings.ToLower(key)
	}

	return key
}

// isDirEntryName reports whether archive entry name is a directory marker.
func isDirEntryName(name string) bool {
	return strings.HasSuffix(name, "/") || strings.HasSuffix(name, `\`)
}
