// Package main provides the entry point for the git-journal CLI.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"

	"github.com/basinwood/gitjournal/internal/output"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" && date == "unknown" {
		return version
	}
	shortCommit := commit
	if len(commit) > 7 {
		shortCommit = commit[:7]
	}
	return version + " (" + shortCommit + ", " + date + ")"
}

func main() {
	os.Exit(run())
}

func run() int {
	cmd := newRootCmd()
	lipgloss.SetHasDarkBackground(true)
	err := fang.Execute(context.Background(), cmd, fang.WithVersion(buildVersion()))
	return output.GetExitCode(err)
}
