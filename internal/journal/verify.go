package journal

import (
	"fmt"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

// TemplateViolation is returned by Verify when a parsed commit carries a
// tag absent from the default template's tag set (spec.md §4.7, §7).
type TemplateViolation struct {
	Tags []string
}

func (e *TemplateViolation) Error() string {
	return fmt.Sprintf("not all tags exist in the default template: %s", strings.Join(e.Tags, ", "))
}

// Verify reads the commit message at path, strips comment lines, parses it
// through grammar, and — when tmpl is non-nil — checks every tag on the
// parsed commit against tmpl's tag set.
func Verify(grammar *Grammar, tmpl *Template, path string) (*ParsedCommit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading commit message %q", path)
	}

	summary, body := splitMessage(stripComments(string(data), grammar.CommentChar))

	commit, err := grammar.Parse("", summary, body)
	if err != nil {
		return nil, err
	}

	if tmpl == nil {
		return commit, nil
	}

	known := map[string]bool{}
	for _, t := range tmpl.AllTags() {
		known[t] = true
	}
	var unknown []string
	for _, t := range commit.Tags() {
		if !known[t] {
			unknown = append(unknown, t)
		}
	}
	if len(unknown) > 0 {
		return commit, errors.WithStack(&TemplateViolation{Tags: dedupeStrings(unknown)})
	}
	return commit, nil
}

func stripComments(text string, commentChar byte) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if len(l) > 0 && l[0] == commentChar {
			continue
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}

func splitMessage(text string) (summary, body string) {
	text = strings.TrimLeft(text, "\n")
	parts := strings.SplitN(text, "\n\n", 2)
	summary = strings.TrimSpace(firstLine(parts[0]))
	if len(parts) == 2 {
		body = parts[1]
	}
	return summary, body
}

func dedupeStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Prepare writes a default template commit message to path, per spec.md
// §4.7. messageType selects the invocation context exactly as git passes
// it to prepare-commit-msg ("message", "template", "merge", "squash",
// "commit" for an amend); an amend is a no-op, and "message" (the text was
// already supplied via -m) runs Verify instead of overwriting the file.
func Prepare(grammar *Grammar, tmpl *Template, path, messageType, templatePrefix string) error {
	switch messageType {
	case "commit":
		// Amending an existing commit: the message is already valid by
		// construction of the commit being amended.
		return nil
	case "message":
		_, err := Verify(grammar, tmpl, path)
		return err
	}

	var b strings.Builder
	if templatePrefix != "" {
		fmt.Fprintf(&b, "%s Added ...\n\n", templatePrefix)
	} else {
		b.WriteString("Added ...\n\n")
	}
	b.WriteString("# Describe your change above. One category per line, e.g.:\n")
	for _, c := range grammar.Categories {
		fmt.Fprintf(&b, "# - [%s] ...\n", c)
	}

	return os.WriteFile(path, []byte(b.String()), 0o644)
}
