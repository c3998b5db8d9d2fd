// Package output provides structured reporting for the git-journal CLI.
//
// It handles both human-readable and JSON output, and maps the error
// taxonomy from internal/journal and internal/config onto process exit
// codes and a `[git-journal] [ERROR]` stderr prefix:
//
//	printer := output.NewPrinter(cmd.OutOrStdout(), jsonFlag, output.IsTTY(cmd.OutOrStdout())).
//		WithStderr(cmd.ErrOrStderr())
//	printer.Error(err)
//	os.Exit(output.GetExitCode(err))
package output
