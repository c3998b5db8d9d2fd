package main

import (
	"github.com/spf13/cobra"

	"github.com/basinwood/gitjournal/internal/config"
	"github.com/basinwood/gitjournal/internal/journal"
)

// newVerifyCmd implements `verify <COMMIT_MSG>`, invoked from a
// commit-msg hook; exits nonzero on a parse or template-tag violation per
// spec.md §6.
func newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <COMMIT_MSG>",
		Short: "Verify a commit message against the grammar and default template",
		Args:  cobra.ExactArgs(1),
		RunE:  runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
	printer := newCommandPrinter(cmd)
	path := args[0]

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

	commit, err := journal.Verify(grammar, tmpl, path)
	if err != nil {
		printer.Error(err)
		return err
	}

	return printer.Success(map[string]any{"message": "commit message is valid", "category": commit.Summary.Category})
}
