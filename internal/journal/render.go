package journal

import (
	"fmt"
	"strings"
)

// RenderConfig is the closed set of rendering options from spec.md §4.6.
type RenderConfig struct {
	Short              bool
	ColoredOutput      bool
	ShowCommitHash     bool
	ShowPrefix         bool
	CategoryDelimiters [2]string
	TagDelimiter       string
	SortBy             string
	RepoURL            string // base URL for commit-hash links; empty means bare oid
}

// RenderDocument writes the default Markdown shape for doc per spec.md
// §4.6: per Section, a heading, a flat bulleted list (nested by child
// depth), then footers.
func RenderDocument(doc *Document, cfg RenderConfig) string {
	var b strings.Builder
	for _, s := range doc.Sections {
		renderSectionHeading(&b, s.Name, s.Date)
		for _, c := range s.Commits {
			renderCommitDefault(&b, c, cfg)
		}
		b.WriteString("\n")
		renderFootersDefault(&b, s.Footers)
	}
	return b.String()
}

func renderSectionHeading(b *strings.Builder, name, date string) {
	fmt.Fprintf(b, "# %s (%s):\n", name, date)
}

func renderCommitDefault(b *strings.Builder, c *ParsedCommit, cfg RenderConfig) {
	b.WriteString("- ")
	if cfg.ShowPrefix && c.Prefix != "" {
		fmt.Fprintf(b, "%s ", c.Prefix)
	}
	writeCategoryAndText(b, c.Summary, cfg)
	if cfg.ShowCommitHash {
		writeCommitHash(b, c.OID, cfg)
	}
	b.WriteString("\n")

	if cfg.Short {
		return
	}
	for _, item := range c.Body {
		renderBodyItemDefault(b, item, 1, cfg)
	}
}

func renderBodyItemDefault(b *strings.Builder, item *ParsedItem, depth int, cfg RenderConfig) {
	indent := strings.Repeat(" ", 4*depth)
	switch item.Kind {
	case KindParagraph:
		for _, line := range strings.Split(item.Text, "\n") {
			fmt.Fprintf(b, "%s%s\n", indent, line)
		}
	case KindListItem:
		b.WriteString(indent + "- ")
		writeCategoryAndText(b, item, cfg)
		b.WriteString("\n")
		for _, child := range item.Children {
			renderBodyItemDefault(b, child, depth+1, cfg)
		}
	}
}

func writeCategoryAndText(b *strings.Builder, item *ParsedItem, cfg RenderConfig) {
	if item.HasCategory() {
		fmt.Fprintf(b, "%s%s%s ", cfg.CategoryDelimiters[0], item.Category, cfg.CategoryDelimiters[1])
	}
	b.WriteString(item.Text)
}

func writeCommitHash(b *strings.Builder, oid string, cfg RenderConfig) {
	short := oid
	if len(short) > 7 {
		short = short[:7]
	}
	if cfg.RepoURL != "" {
		fmt.Fprintf(b, " ([%s](%s/commit/%s))", short, strings.TrimRight(cfg.RepoURL, "/"), oid)
		return
	}
	fmt.Fprintf(b, " (%s)", short)
}

func renderFootersDefault(b *strings.Builder, footers *FooterMultiset) {
	if footers == nil {
		return
	}
	for _, key := range footers.Keys() {
		fmt.Fprintf(b, "\n%s:\n%s\n", key, strings.Join(footers.Values(key), ", "))
	}
}

// RenderTemplated writes the templated Markdown shape for a slice of
// TemplatedSections per spec.md §4.6: section heading, optional
// header/footer text honoring `once`, then a depth-first walk of the
// template tree emitting `##`, `###`, … headings.
func RenderTemplated(sections []*TemplatedSection, cfg RenderConfig) string {
	var b strings.Builder
	headerPrinted := false
	footerPrinted := false
	for i, s := range sections {
		if s.Header != nil && s.Header.Text != "" && (!s.Header.Once || !headerPrinted) {
			b.WriteString(s.Header.Text + "\n")
			headerPrinted = true
		}
		renderSectionHeading(&b, s.Name, s.Date)
		renderTemplatedNodes(&b, s.Root.Children, 2, cfg)
		if s.Footer != nil && s.Footer.Text != "" && (!s.Footer.Once || !footerPrinted) {
			b.WriteString(s.Footer.Text + "\n")
			footerPrinted = true
		}
		if i != len(sections)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func renderTemplatedNodes(b *strings.Builder, nodes []*TemplatedNode, depth int, cfg RenderConfig) {
	// A node is omitted only when neither it nor any node beneath it holds
	// items or footer values.
	var hasContent func(n *TemplatedNode) bool
	hasContent = func(n *TemplatedNode) bool {
		if len(n.Items) > 0 || len(n.Footers.Keys()) > 0 {
			return true
		}
		for _, c := range n.Children {
			if hasContent(c) {
				return true
			}
		}
		return false
	}
	for _, n := range nodes {
		if !hasContent(n) {
			continue
		}
		fmt.Fprintf(b, "%s %s\n", strings.Repeat("#", depth), n.Name)
		for _, ri := range n.Items {
			renderTemplatedItem(b, ri, cfg)
		}
		renderFootersDefault(b, n.Footers)
		renderTemplatedNodes(b, n.Children, depth+1, cfg)
	}
}

// renderTemplatedItem renders one routed item. A standalone Paragraph is
// promoted to a list item under templates, per spec.md §4.5/§9 — the first
// line's leading indentation is replaced with a bullet exactly as the
// original's "  " → "- " substitution does.
func renderTemplatedItem(b *strings.Builder, ri routedItem, cfg RenderConfig) {
	switch ri.Item.Kind {
	case KindSummary:
		b.WriteString("- ")
		writeCategoryAndText(b, ri.Item, cfg)
		if cfg.ShowCommitHash {
			writeCommitHash(b, ri.Commit.OID, cfg)
		}
		b.WriteString("\n")
	case KindListItem:
		b.WriteString("- ")
		writeCategoryAndText(b, ri.Item, cfg)
		if cfg.ShowCommitHash {
			writeCommitHash(b, ri.Commit.OID, cfg)
		}
		b.WriteString("\n")
		for _, child := range ri.Item.Children {
			renderNestedTemplated(b, child, 1, ri.Commit, cfg)
		}
	case KindParagraph:
		lines := strings.Split(ri.Item.Text, "\n")
		for i, line := range lines {
			if i == 0 {
				b.WriteString("- " + line)
			} else {
				b.WriteString("  " + line)
			}
			if cfg.ShowCommitHash && i == 0 {
				writeCommitHash(b, ri.Commit.OID, cfg)
			}
			b.WriteString("\n")
		}
	}
}

func renderNestedTemplated(b *strings.Builder, item *ParsedItem, depth int, commit *ParsedCommit, cfg RenderConfig) {
	indent := strings.Repeat(" ", 2*depth)
	b.WriteString(indent + "- ")
	writeCategoryAndText(b, item, cfg)
	b.WriteString("\n")
	for _, child := range item.Children {
		renderNestedTemplated(b, child, depth+1, commit, cfg)
	}
}

// RenderShort produces the summary-only prefix of RenderDocument's output,
// satisfying P6: footers and headings are identical, bodies are dropped.
func RenderShort(doc *Document, cfg RenderConfig) string {
	shortCfg := cfg
	shortCfg.Short = true
	return RenderDocument(doc, shortCfg)
}
