// Package journal implements the commit-message grammar, the history
// pipeline that turns a revision range into a rendered changelog, and the
// prepare/verify hook entry points that enforce the grammar at commit time.
package journal

import (
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
)

// ItemKind discriminates the variants of ParsedItem.
type ItemKind int

const (
	// KindSummary marks the single mandatory summary item of a commit.
	KindSummary ItemKind = iota
	// KindParagraph marks a free-text body paragraph.
	KindParagraph
	// KindListItem marks a bulleted body item, possibly with children.
	KindListItem
)

// ParsedItem is a node in a commit's body: a Summary, a Paragraph, or a
// ListItem with nested children indented two spaces deeper than their
// parent.
type ParsedItem struct {
	Kind     ItemKind
	Category string
	Tags     []string
	Text     string
	Children []*ParsedItem
}

// HasCategory reports whether this item carries a category token. Summary
// and list items produced by Parse always do; paragraphs never do.
func (p *ParsedItem) HasCategory() bool {
	return p.Category != ""
}

// ContainsTag reports whether the item (or any of its children) carries tag.
func (p *ParsedItem) ContainsTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	for _, c := range p.Children {
		if c.ContainsTag(tag) {
			return true
		}
	}
	return false
}

// FooterEntry is a single `Key: Value` line from a commit's trailing
// footer block. Duplicate keys are preserved in source order.
type FooterEntry struct {
	Key   string
	Value string
}

// ParsedCommit is the structured form of one raw commit's summary and body.
type ParsedCommit struct {
	OID     string
	Prefix  string // e.g. "JIRA-1234", empty when absent
	Summary *ParsedItem
	Body    []*ParsedItem
	Footers []FooterEntry
}

// Tags returns every tag appearing anywhere on the commit, in first-seen
// order including duplicates (callers that need a unique set dedupe
// themselves — routing needs membership, not cardinality).
func (c *ParsedCommit) Tags() []string {
	var tags []string
	tags = append(tags, c.Summary.Tags...)
	for _, item := range c.Body {
		tags = append(tags, collectTags(item)...)
	}
	return tags
}

func collectTags(item *ParsedItem) []string {
	tags := append([]string{}, item.Tags...)
	for _, c := range item.Children {
		tags = append(tags, collectTags(c)...)
	}
	return tags
}

// Grammar carries the configured vocabulary (category tokens, delimiters)
// the parser needs to recognize a raw commit message. It holds no mutable
// state and is safe to share across goroutines.
type Grammar struct {
	Categories         []string // canonical display form, e.g. "Added"
	CategoryDelimiters [2]string
	TagDelimiter       string
	PrefixPattern      *regexp.Regexp // e.g. `^[A-Z]+-\d+$`, may be nil
	CommentChar        byte

	categoryByLower map[string]string
	reFooter        *regexp.Regexp
	reList          *regexp.Regexp
	reParagraph     *regexp.Regexp
	reTags          *regexp.Regexp
}

// DefaultCategories is the closed default category set from spec.md §3.
var DefaultCategories = []string{"Added", "Changed", "Fixed", "Improved", "Removed"}

var defaultPrefixPattern = regexp.MustCompile(`^[A-Z]+-\d+$`)

// NewGrammar builds a Grammar from configured categories and delimiters,
// compiling the fixed structural regexes once.
func NewGrammar(categories []string, categoryDelimiters [2]string, tagDelimiter string, prefixPattern *regexp.Regexp, commentChar byte) *Grammar {
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	g := &Grammar{
		Categories:         categories,
		CategoryDelimiters: categoryDelimiters,
		TagDelimiter:       tagDelimiter,
		PrefixPattern:      prefixPattern,
		CommentChar:        commentChar,
		categoryByLower:    make(map[string]string, len(categories)),
		reFooter:           regexp.MustCompile(`(?m)^([\w-]+): (.*)$`),
		reList:             regexp.MustCompile(`(?m)^( *)-\s+(.*)$`),
		reParagraph:        regexp.MustCompile(`(?m)^\S`),
	}
	for _, c := range categories {
		g.categoryByLower[strings.ToLower(c)] = c
	}
	delim := regexp.QuoteMeta(tagDelimiter)
	g.reTags = regexp.MustCompile(delim + `([^` + delim + `\n]+)` + delim)
	return g
}

// ParseError is returned when a raw commit fails to match the grammar.
// Per spec.md §7 these are recoverable: the caller logs at INFO and skips
// the commit rather than treating the error as fatal.
type ParseError struct {
	Kind   string // "SummaryParse" or "BodyParse"
	Detail string
	Line   string
}

func (e *ParseError) Error() string {
	if e.Line != "" {
		return e.Kind + ": " + e.Detail + " (" + e.Line + ")"
	}
	return e.Kind + ": " + e.Detail
}

func summaryParseError(detail, line string) error {
	return errors.WithStack(&ParseError{Kind: "SummaryParse", Detail: detail, Line: line})
}

func bodyParseError(detail, line string) error {
	return errors.WithStack(&ParseError{Kind: "BodyParse", Detail: detail, Line: line})
}

// Parse converts a raw commit's summary and body text into a ParsedCommit,
// per spec.md §4.1. The body is split into blocks on blank-line boundaries;
// the final all-"Key: Value" block, if any, is consumed as footers.
func (g *Grammar) Parse(oid, summary, body string) (*ParsedCommit, error) {
	prefix, summaryItem, err := g.parseSummary(strings.TrimSpace(summary))
	if err != nil {
		return nil, err
	}

	blocks := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n\n")
	var bodyItems []*ParsedItem
	var footers []FooterEntry

	for i, block := range blocks {
		block = strings.Trim(block, "\n")
		if block == "" || g.isComment(block) {
			continue
		}
		if i == len(blocks)-1 && g.isAllFooters(block) {
			footers = g.parseFooters(block)
			continue
		}
		if g.reList.MatchString(strings.SplitN(block, "\n", 2)[0]) {
			items, err := g.parseList(block)
			if err != nil {
				return nil, err
			}
			bodyItems = append(bodyItems, items...)
			continue
		}
		if g.reParagraph.MatchString(block) {
			bodyItems = append(bodyItems, g.parseParagraph(block))
			continue
		}
		return nil, bodyParseError("block matched neither list nor paragraph grammar", firstLine(block))
	}

	return &ParsedCommit{OID: oid, Prefix: prefix, Summary: summaryItem, Body: bodyItems, Footers: footers}, nil
}

func (g *Grammar) isComment(block string) bool {
	for _, line := range strings.Split(block, "\n") {
		if line == "" {
			continue
		}
		if line[0] != g.CommentChar {
			return false
		}
	}
	return true
}

func (g *Grammar) isAllFooters(block string) bool {
	lines := strings.Split(block, "\n")
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !g.reFooter.MatchString(line) {
			return false
		}
	}
	return true
}

func (g *Grammar) parseFooters(block string) []FooterEntry {
	var footers []FooterEntry
	for _, m := range g.reFooter.FindAllStringSubmatch(block, -1) {
		footers = append(footers, FooterEntry{Key: m[1], Value: m[2]})
	}
	return footers
}

// parseSummary implements `summary := optional_prefix SP category SP rest`.
func (g *Grammar) parseSummary(line string) (prefix string, item *ParsedItem, err error) {
	if line == "" {
		return "", nil, summaryParseError("empty summary line", "")
	}

	rest := line
	pattern := g.PrefixPattern
	if pattern == nil {
		pattern = defaultPrefixPattern
	}
	if fields := strings.SplitN(line, " ", 2); len(fields) == 2 && pattern.MatchString(fields[0]) {
		prefix = fields[0]
		rest = fields[1]
	}

	category, remainder, ok := g.takeCategory(rest)
	if !ok {
		return "", nil, summaryParseError("summary did not start with a recognizable category", line)
	}
	remainder = strings.TrimSpace(remainder)
	if remainder == "" {
		return "", nil, summaryParseError("summary has no text after its category", line)
	}

	tags, text := g.extractTags(remainder)
	return prefix, &ParsedItem{Kind: KindSummary, Category: category, Tags: tags, Text: text}, nil
}

// takeCategory strips a leading category token (optionally already wrapped
// in the configured delimiters) and returns its canonical form plus the
// remaining text.
func (g *Grammar) takeCategory(s string) (category string, rest string, ok bool) {
	s = strings.TrimPrefix(s, g.CategoryDelimiters[0])
	fields := strings.SplitN(s, " ", 2)
	if len(fields) == 0 {
		return "", s, false
	}
	token := strings.TrimSuffix(fields[0], g.CategoryDelimiters[1])
	canonical, known := g.categoryByLower[strings.ToLower(token)]
	if !known {
		return "", s, false
	}
	if len(fields) == 1 {
		return canonical, "", true
	}
	return canonical, fields[1], true
}

// extractTags strips every `:tag:` occurrence from s and returns the tags in
// first-seen order alongside the stripped text.
func (g *Grammar) extractTags(s string) (tags []string, text string) {
	for _, m := range g.reTags.FindAllStringSubmatch(s, -1) {
		for _, t := range strings.Split(m[1], ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				tags = append(tags, t)
			}
		}
	}
	text = strings.TrimSpace(g.reTags.ReplaceAllString(s, ""))
	return tags, text
}

func (g *Grammar) parseParagraph(block string) *ParsedItem {
	tags, text := g.extractTags(block)
	return &ParsedItem{Kind: KindParagraph, Tags: tags, Text: strings.TrimSpace(text)}
}

// parseList parses a block of `- ` lines (and deeper `- ` continuations,
// indented two spaces per nesting level per spec.md §4.1) into a flat slice
// of top-level ListItems, each carrying its nested children.
func (g *Grammar) parseList(block string) ([]*ParsedItem, error) {
	lines := strings.Split(block, "\n")
	type rawLine struct {
		indent int
		item   *ParsedItem
	}
	var raws []rawLine
	var lastItem *ParsedItem
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := 0
		for indent < len(line) && line[indent] == ' ' {
			indent++
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "- ") && trimmed != "-" {
			// A continuation line without its own bullet extends the
			// nearest preceding item's text, per spec.md §4.1 — it does
			// not start a new item.
			if lastItem == nil {
				return nil, bodyParseError("list continuation line has no preceding item", line)
			}
			lastItem.Text = strings.TrimSpace(lastItem.Text + "\n" + trimmed)
			continue
		}

		item, err := g.parseListLine(strings.TrimSpace(strings.TrimPrefix(trimmed, "-")))
		if err != nil {
			return nil, err
		}
		raws = append(raws, rawLine{indent: indent, item: item})
		lastItem = item
	}
	if len(raws) == 0 {
		return nil, bodyParseError("empty list block", block)
	}

	// Fold items into a tree by indent depth: each item adopts the nearest
	// preceding item at a shallower indent as its parent.
	var roots []*ParsedItem
	stack := []struct {
		indent int
		item   *ParsedItem
	}{}
	for _, r := range raws {
		for len(stack) > 0 && stack[len(stack)-1].indent >= r.indent {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, r.item)
		} else {
			parent := stack[len(stack)-1].item
			parent.Children = append(parent.Children, r.item)
		}
		stack = append(stack, struct {
			indent int
			item   *ParsedItem
		}{r.indent, r.item})
	}
	return roots, nil
}

func (g *Grammar) parseListLine(text string) (*ParsedItem, error) {
	category, remainder, ok := g.takeCategory(text)
	if !ok {
		return nil, bodyParseError("list item did not start with a recognizable category", text)
	}
	tags, plainText := g.extractTags(strings.TrimSpace(remainder))
	return &ParsedItem{Kind: KindListItem, Category: category, Tags: tags, Text: plainText}, nil
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}
