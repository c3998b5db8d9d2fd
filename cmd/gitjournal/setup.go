package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/basinwood/gitjournal/internal/config"
	"github.com/basinwood/gitjournal/internal/gitcheck"
	"github.com/basinwood/gitjournal/internal/output"
)

// newSetupCmd implements `setup`: bootstraps a default .gitjournal.toml at
// the repository root, unless one already exists.
func newSetupCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Bootstrap a default .gitjournal.toml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSetup(cmd, force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing .gitjournal.toml")
	return cmd
}

func runSetup(cmd *cobra.Command, force bool) error {
	printer := newCommandPrinter(cmd)

	if !gitcheck.IsRepo() {
		err := output.NewSystemError("not in a git repository")
		printer.Error(err)
		return err
	}

	root, err := gitcheck.RepoRoot()
	if err != nil {
		printer.Error(err)
		return err
	}

	path := filepath.Join(root, config.FileName)
	if _, err := os.Stat(path); err == nil && !force {
		conflictErr := output.NewUserError(config.FileName + " already exists; use --force to overwrite")
		printer.Error(conflictErr)
		return conflictErr
	}

	if err := config.Save(config.Default(), path); err != nil {
		printer.Error(err)
		return err
	}

	return printer.Success(map[string]any{"message": "wrote " + path})
}
