package main

import "github.com/spf13/cobra"

// generateFlagVars holds the flag variable pointers for the default
// "generate changelog" verb, per spec.md §6's CLI flag table.
type generateFlagVars struct {
	path           *string
	all            *bool
	tagsCount      *int
	excludeRegex   *string
	template       *string
	output         *string
	short          *bool
	skipUnreleased *bool
	generate       *bool
	ignore         *[]string
}

func newGenerateFlagVars() *generateFlagVars {
	return &generateFlagVars{
		path:           new(string),
		all:            new(bool),
		tagsCount:      new(int),
		excludeRegex:   new(string),
		template:       new(string),
		output:         new(string),
		short:          new(bool),
		skipUnreleased: new(bool),
		generate:       new(bool),
		ignore:         new([]string),
	}
}

func registerGenerateFlags(cmd *cobra.Command, v *generateFlagVars) {
	cmd.Flags().StringVarP(v.path, "path", "p", ".", "Working directory; up-walks to the enclosing repository root")
	cmd.Flags().BoolVarP(v.all, "all", "a", false, "Do not stop at the first tag; overrides -n")
	cmd.Flags().IntVarP(v.tagsCount, "tags-count", "n", 1, "Stop after N tag-anchors when a single revision is given")
	cmd.Flags().StringVarP(v.excludeRegex, "exclude", "e", "rc", "Exclude tags matching this pattern from section boundaries")
	cmd.Flags().StringVarP(v.template, "template", "t", "", "Use a template file for rendering")
	cmd.Flags().StringVarP(v.output, "output", "o", "", "Append rendered output to file, separated by ---")
	cmd.Flags().BoolVarP(v.short, "short", "s", false, "Short (summary-only) rendering")
	cmd.Flags().BoolVarP(v.skipUnreleased, "skip-unreleased", "u", false, "Drop the Unreleased section")
	cmd.Flags().BoolVarP(v.generate, "generate", "g", false, "Emit a fresh default template from the parsed range instead of a changelog")
	cmd.Flags().StringSliceVarP(v.ignore, "ignore", "i", nil, "Drop items whose tag set intersects this list")
}
