// SPDX-License-Identifier: MIT
// Copyright (c) 2026 WoozyMasta
// Source: github.com/woozymasta/kpu

// Command kpu patches KPF archives with files from a mod folder.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/woozymasta/kpu"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes root command and returns process exit code.
func run(args []string, stdout io.Writer, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		logger := newLogger(stderr, false)
		logger.Error(err.Error(), "kind", kpu.KindOf(err))
		return 1
	}

	return 0
}
