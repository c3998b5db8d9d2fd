package main

import (
	"context"
	"os"
	"regexp"

	"github.com/spf13/cobra"

	"github.com/basinwood/gitjournal/internal/config"
	"github.com/basinwood/gitjournal/internal/journal"
	"github.com/basinwood/gitjournal/internal/logging"
	"github.com/basinwood/gitjournal/internal/output"
)

// isJSONMode reads the --json persistent flag from the command hierarchy.
func isJSONMode(cmd *cobra.Command) bool {
	flag := cmd.Flags().Lookup("json")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("json")
	}
	return flag != nil && flag.Value.String() == "true"
}

// colorModeFlag reads the --color persistent flag from the command hierarchy.
func colorModeFlag(cmd *cobra.Command) string {
	flag := cmd.Flags().Lookup("color")
	if flag == nil {
		flag = cmd.Root().PersistentFlags().Lookup("color")
	}
	if flag == nil {
		return "auto"
	}
	return flag.Value.String()
}

// newCommandPrinter builds the Printer every subcommand reports through,
// honoring both --json and --color per spec.md §6.
func newCommandPrinter(cmd *cobra.Command) *output.Printer {
	isTTY := output.ResolveColorMode(colorModeFlag(cmd), output.IsTTY(cmd.OutOrStdout()))
	return output.NewPrinter(cmd.OutOrStdout(), isJSONMode(cmd), isTTY).WithStderr(cmd.ErrOrStderr())
}

func newRootCmd() *cobra.Command {
	flagVars := newGenerateFlagVars()

	cmd := &cobra.Command{
		Use:   "git-journal [REV | REV..REV]",
		Short: "Generate a changelog from commit message grammar",
		Long: `git-journal turns a disciplined commit-message grammar into a
structured changelog: every commit summary names a category in delimiters
(e.g. "[Added] support for X"), optional :tags: route items into a
template's sections, and "Key: Value" footer lines accumulate per section.

With no subcommand, git-journal walks the given revision range and renders
a changelog to stdout.`,
		Args:          validateGenerateArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args, flagVars)
		},
	}

	registerGenerateFlags(cmd, flagVars)
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("color", "auto", "Colorize output: auto, always, or never")

	cmd.AddCommand(newPrepareCmd())
	cmd.AddCommand(newSetupCmd())
	cmd.AddCommand(newVerifyCmd())
	cmd.AddCommand(newHooksCmd())

	return cmd
}

func runGenerate(cmd *cobra.Command, args []string, v *generateFlagVars) error {
	printer := newCommandPrinter(cmd)

	revisionArgs, pathSpec := splitPathSpec(cmd, args)
	revisionRange := "HEAD"
	if len(revisionArgs) > 0 {
		revisionRange = revisionArgs[0]
	}

	cfg, _, err := config.Load(*v.path)
	if err != nil {
		printer.Error(err)
		return err
	}

	source, err := journal.OpenRepository(*v.path)
	if err != nil {
		printer.Error(err)
		return err
	}

	excludeRegex, err := regexp.Compile(*v.excludeRegex)
	if err != nil {
		err = &config.ConfigError{Detail: "invalid -e pattern: " + err.Error()}
		printer.Error(err)
		return err
	}

	sections, err := journal.WalkHistory(source, journal.WalkOptions{
		RevisionRange:  revisionRange,
		TagsCount:      *v.tagsCount,
		All:            *v.all,
		SkipUnreleased: *v.skipUnreleased,
		ExcludeRegex:   excludeRegex,
		PathSpec:       pathSpec,
	})
	if err != nil {
		printer.Error(err)
		return err
	}

	grammar := journal.NewGrammar(cfg.Categories, cfg.CategoryDelimitersPair(), cfg.TagDelimiter, nil, '#')
	logger := logging.New(os.Stderr, printer.IsJSON(), cfg.EnableDebug)
	defer func() { _ = logger.Sync() }()

	var docSections []*journal.Section
	for _, ws := range sections {
		parsed, _ := journal.ParseMany(context.Background(), grammar, ws.Commits, logger)
		parsed = journal.ExcludeTags(parsed, cfg.ExcludedCommitTags)
		parsed = journal.ApplyIgnore(parsed, *v.ignore)
		docSections = append(docSections, journal.BuildSection(ws.Name, ws.Date, parsed, cfg.SortBy, cfg.EnableFooters))
	}
	doc := journal.BuildDocument(docSections)

	renderCfg := journal.RenderConfig{
		Short:              *v.short,
		ColoredOutput:      cfg.ColoredOutput && printer.IsTTY() && *v.output == "",
		ShowCommitHash:     cfg.ShowCommitHash,
		ShowPrefix:         cfg.ShowPrefix,
		CategoryDelimiters: cfg.CategoryDelimitersPair(),
		TagDelimiter:       cfg.TagDelimiter,
		SortBy:             cfg.SortBy,
	}

	if *v.generate {
		tmpl := journal.GenerateTemplate(doc)
		data, err := tmpl.Marshal()
		if err != nil {
			printer.Error(err)
			return err
		}
		return writeRendered(cmd, printer, *v.output, string(data))
	}

	rendered, err := renderDoc(doc, cfg, renderCfg, *v.template)
	if err != nil {
		printer.Error(err)
		return err
	}

	if renderCfg.ColoredOutput && !printer.IsJSON() {
		if colored, err := colorizeMarkdown(rendered); err == nil {
			rendered = colored
		}
	}

	return writeRendered(cmd, printer, *v.output, rendered)
}

func renderDoc(doc *journal.Document, cfg *config.Config, renderCfg journal.RenderConfig, templatePath string) (string, error) {
	if renderCfg.Short {
		return journal.RenderShort(doc, renderCfg), nil
	}
	if templatePath == "" {
		return journal.RenderDocument(doc, renderCfg), nil
	}

	tmpl, err := journal.LoadTemplate(templatePath, cfg.TagDelimiter)
	if err != nil {
		return "", err
	}
	var templated []*journal.TemplatedSection
	for _, s := range doc.Sections {
		templated = append(templated, tmpl.ProjectSection(s))
	}
	return journal.RenderTemplated(templated, renderCfg), nil
}

func writeRendered(cmd *cobra.Command, printer *output.Printer, outputPath, rendered string) error {
	if outputPath == "" {
		printer.Print("%s", rendered)
		return nil
	}

	existing, _ := os.ReadFile(outputPath)
	var combined string
	if len(existing) > 0 {
		combined = string(existing) + "\n---\n" + rendered
	} else {
		combined = rendered
	}
	if err := os.WriteFile(outputPath, []byte(combined), 0o644); err != nil {
		ioErr := output.NewSystemErrorWithCause("writing output file "+outputPath, err)
		printer.Error(ioErr)
		return ioErr
	}
	return printer.Success(map[string]any{"message": "wrote " + outputPath})
}

// splitPathSpec divides args on "--" into the leading revision-range
// positional and the trailing PATH_SPEC, per spec.md §6.
func splitPathSpec(cmd *cobra.Command, args []string) (revisionArgs, pathSpec []string) {
	idx := cmd.ArgsLenAtDash()
	if idx < 0 {
		return args, nil
	}
	return args[:idx], args[idx:]
}

// validateGenerateArgs accepts at most one revision-range positional before
// "--"; everything after "--" is PATH_SPEC and unbounded.
func validateGenerateArgs(cmd *cobra.Command, args []string) error {
	idx := cmd.ArgsLenAtDash()
	revisionArgs := args
	if idx >= 0 {
		revisionArgs = args[:idx]
	}
	return cobra.MaximumNArgs(1)(cmd, revisionArgs)
}
