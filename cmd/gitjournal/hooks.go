package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/basinwood/gitjournal/internal/gitcheck"
	"github.com/basinwood/gitjournal/internal/output"
)

// newHooksCmd creates the hooks parent command with install/uninstall
// subcommands, adapted from the teacher's chain/backup/dry-run pattern and
// retargeted at spec.md §4.7's prepare-commit-msg/commit-msg contracts.
func newHooksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hooks",
		Short: "Manage git-journal's git hooks",
		Long: `Install or remove the hooks that enforce the commit-message grammar:

  prepare-commit-msg  writes (or checks) the commit template via 'prepare'
  commit-msg           rejects a message whose tags aren't in the default
                        template via 'verify'`,
	}
	cmd.AddCommand(newHooksInstallCmd())
	cmd.AddCommand(newHooksUninstallCmd())
	return cmd
}

func newHooksInstallCmd() *cobra.Command {
	var chain, force, dryRun bool
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the prepare-commit-msg and commit-msg hooks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHooksInstall(cmd, chain, force, dryRun)
		},
	}
	cmd.Flags().BoolVar(&chain, "chain", false, "Preserve existing hooks, run them after git-journal's own check")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing hooks without a backup")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without doing it")
	return cmd
}

var hookNames = []string{"prepare-commit-msg", "commit-msg"}

func runHooksInstall(cmd *cobra.Command, chain, force, dryRun bool) error {
	printer := newCommandPrinter(cmd)

	if !gitcheck.IsRepo() {
		err := output.NewSystemError("not in a git repository")
		printer.Error(err)
		return err
	}

	hooksDir, err := gitcheck.HooksDir()
	if err != nil {
		printer.Error(err)
		return err
	}

	if dryRun {
		return printInstallDryRun(printer, hooksDir, chain, force)
	}

	for _, name := range hookNames {
		if err := installOneHook(printer, hooksDir, name, chain, force); err != nil {
			return err
		}
	}
	return printer.Success(map[string]any{"message": "installed prepare-commit-msg and commit-msg hooks"})
}

func installOneHook(printer *output.Printer, hooksDir, name string, chain, force bool) error {
	hookPath := filepath.Join(hooksDir, name)
	existing := hookExists(hookPath)

	if existing && !force {
		if !chain {
			err := output.NewUserError(name + " hook already exists; use --chain to preserve or --force to overwrite")
			printer.Error(err)
			return err
		}
		if err := os.Rename(hookPath, hookPath+".backup"); err != nil {
			sysErr := output.NewSystemErrorWithCause("failed to back up existing "+name+" hook", err)
			printer.Error(sysErr)
			return sysErr
		}
	}

	content := generateHookScript(name, chain && existing)
	// #nosec G306 -- hooks must be executable
	if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
		sysErr := output.NewSystemErrorWithCause("failed to write "+name+" hook", err)
		printer.Error(sysErr)
		return sysErr
	}
	return nil
}

func printInstallDryRun(printer *output.Printer, hooksDir string, chain, force bool) error {
	if printer.IsJSON() {
		data := map[string]any{}
		for _, name := range hookNames {
			hookPath := filepath.Join(hooksDir, name)
			data[name] = map[string]any{
				"exists":          hookExists(hookPath),
				"would_chain":     chain && hookExists(hookPath),
				"would_overwrite": force && hookExists(hookPath),
			}
		}
		return printer.WriteJSON(data)
	}
	printer.Section("Dry Run")
	for _, name := range hookNames {
		hookPath := filepath.Join(hooksDir, name)
		printer.KeyValue(name, describeInstallAction(hookExists(hookPath), chain, force))
	}
	return nil
}

func describeInstallAction(exists, chain, force bool) string {
	if !exists {
		return "would install"
	}
	switch {
	case force:
		return "would overwrite existing hook"
	case chain:
		return "would back up and chain existing hook"
	default:
		return "would fail (hook exists, use --chain or --force)"
	}
}

func generateHookScript(name string, withChain bool) string {
	var invocation string
	switch name {
	case "prepare-commit-msg":
		invocation = `git-journal prepare "$1" "$2"`
	case "commit-msg":
		invocation = `git-journal verify "$1"`
	}

	script := "#!/bin/sh\n" +
		"# installed by 'git-journal hooks install'\n" +
		"if command -v git-journal >/dev/null 2>&1; then\n" +
		"  " + invocation + " || exit $?\n" +
		"fi\n"

	if withChain {
		script += "\nif [ -x \"" + "$(dirname \"$0\")/" + name + ".backup\" ]; then\n" +
			"  exec \"$(dirname \"$0\")/" + name + ".backup\" \"$@\"\n" +
			"fi\n"
	}
	return script
}

func hookExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func newHooksUninstallCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove git-journal's hooks, restoring any backups",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHooksUninstall(cmd, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be done without doing it")
	return cmd
}

func runHooksUninstall(cmd *cobra.Command, dryRun bool) error {
	printer := newCommandPrinter(cmd)

	if !gitcheck.IsRepo() {
		err := output.NewSystemError("not in a git repository")
		printer.Error(err)
		return err
	}

	hooksDir, err := gitcheck.HooksDir()
	if err != nil {
		printer.Error(err)
		return err
	}

	if dryRun {
		for _, name := range hookNames {
			hookPath := filepath.Join(hooksDir, name)
			printer.KeyValue(name, uninstallAction(hookExists(hookPath), hookExists(hookPath+".backup")))
		}
		return nil
	}

	for _, name := range hookNames {
		if err := uninstallOneHook(printer, hooksDir, name); err != nil {
			return err
		}
	}
	return printer.Success(map[string]any{"message": "removed git-journal hooks"})
}

func uninstallAction(installed, hasBackup bool) string {
	switch {
	case !installed:
		return "not installed"
	case hasBackup:
		return "would remove and restore backup"
	default:
		return "would remove"
	}
}

func uninstallOneHook(printer *output.Printer, hooksDir, name string) error {
	hookPath := filepath.Join(hooksDir, name)
	if !hookExists(hookPath) {
		return nil
	}
	if err := os.Remove(hookPath); err != nil {
		sysErr := output.NewSystemErrorWithCause("failed to remove "+name+" hook", err)
		printer.Error(sysErr)
		return sysErr
	}
	backupPath := hookPath + ".backup"
	if hookExists(backupPath) {
		if err := os.Rename(backupPath, hookPath); err != nil {
			sysErr := output.NewSystemErrorWithCause("failed to restore "+name+" backup", err)
			printer.Error(sysErr)
			return sysErr
		}
	}
	return nil
}
