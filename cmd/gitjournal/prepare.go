package main

import (
	"github.com/spf13/cobra"

	"github.com/basinwood/gitjournal/internal/config"
	"github.com/basinwood/gitjournal/internal/journal"
)

// newPrepareCmd implements `prepare <COMMIT_MSG> [TYPE]`, invoked from a
// prepare-commit-msg hook with the path git passes it and the source type
// ("message", "template", "merge", "squash", "commit").
func newPrepareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prepare <COMMIT_MSG> [TYPE]",
		Short: "Write (or verify) the commit message template",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runPrepare,
	}
	return cmd
}

func runPrepare(cmd *cobra.Command, args []string) error {
	printer := newCommandPrinter(cmd)

	path := args[0]
	messageType := ""
	if len(args) > 1 {
		messageType = args[1]
	}

	cfg, _, err := config.Load(".")
	if err != nil {
		printer.Error(err)
		return err
	}

	grammar := journal.NewGrammar(cfg.Categories, cfg.CategoryDelimitersPair(), cfg.TagDelimiter, nil, '#')

	var tmpl *journal.Template
	if cfg.DefaultTemplate != "" {
		tmpl, err = journal.LoadTemplate(cfg.DefaultTemplate, cfg.TagDelimiter)
		if err != nil {
			printer.Error(err)
			return err
		}
	}

	if err := journal.Prepare(grammar, tmpl, path, messageType, cfg.TemplatePrefix); err != nil {
		printer.Error(err)
		return err
	}
	return nil
}
