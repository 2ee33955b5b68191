// Package main provides the entry point for the drawcheck CLI tool.
package main

import (
	"github.com/plantsight/drawcheck/cmd/drawcheck/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.Execute(version, commit, date)
}
