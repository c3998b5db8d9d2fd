package journal

import (
	"bytes"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// TemplateNode is one node of the template tree described in spec.md §4.5:
// a tag id, its display name, the footer keys it surfaces, and any nested
// subtags.
type TemplateNode struct {
	Tag     string          `toml:"tag" validate:"required"`
	Name    string          `toml:"name" validate:"required"`
	Footers []string        `toml:"footers"`
	Subtags []*TemplateNode `toml:"subtag"`
}

// templateHeaderFooter models the optional [header]/[footer] tables.
type templateHeaderFooter struct {
	Text string `toml:"text"`
	Once bool   `toml:"once"`
}

// templateFile is the raw toml shape from spec.md §4.5.
type templateFile struct {
	Tags   []*TemplateNode       `toml:"tag"`
	Header *templateHeaderFooter `toml:"header"`
	Footer *templateHeaderFooter `toml:"footer"`
}

// Template is the loaded, validated template tree plus a precomputed
// tag-id → leaf-node index for O(tags-per-item) routing, per spec.md §9.
type Template struct {
	Tags   []*TemplateNode
	Header *templateHeaderFooter
	Footer *templateHeaderFooter

	leavesByTag map[string][]*TemplateNode
}

// TemplateError.Load per spec.md §7: malformed toml, duplicate tag id, or
// an invalid tag token.
type TemplateLoadError struct {
	Detail string
}

func (e *TemplateLoadError) Error() string { return "TemplateError.Load: " + e.Detail }

// LoadTemplate reads and validates a template file from path against the
// configured tag delimiter.
func LoadTemplate(path, tagDelimiter string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading template %q", path)
	}
	return ParseTemplate(data, tagDelimiter)
}

// ParseTemplate validates and indexes template toml source.
func ParseTemplate(data []byte, tagDelimiter string) (*Template, error) {
	var raw templateFile
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.WithStack(&TemplateLoadError{Detail: "malformed template toml: " + err.Error()})
	}

	validate := validator.New()
	seen := map[string]bool{}
	var walk func(nodes []*TemplateNode) error
	walk = func(nodes []*TemplateNode) error {
		for _, n := range nodes {
			if err := validate.Struct(n); err != nil {
				return errors.WithStack(&TemplateLoadError{Detail: "invalid template node: " + err.Error()})
			}
			if seen[n.Tag] {
				return errors.WithStack(&TemplateLoadError{Detail: "duplicate tag id: " + n.Tag})
			}
			seen[n.Tag] = true
			if containsRune(n.Tag, tagDelimiter) {
				return errors.WithStack(&TemplateLoadError{Detail: "tag id contains the tag delimiter: " + n.Tag})
			}
			if err := walk(n.Subtags); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(raw.Tags); err != nil {
		return nil, err
	}

	tmpl := &Template{Tags: raw.Tags, Header: raw.Header, Footer: raw.Footer}
	tmpl.leavesByTag = map[string][]*TemplateNode{}
	var index func(nodes []*TemplateNode)
	index = func(nodes []*TemplateNode) {
		for _, n := range nodes {
			tmpl.leavesByTag[n.Tag] = append(tmpl.leavesByTag[n.Tag], n)
			index(n.Subtags)
		}
	}
	index(tmpl.Tags)

	return tmpl, nil
}

func containsRune(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}

// AllTags returns every tag id present anywhere in the template tree,
// depth-first, used by C7's verify to build the "known tags" set.
func (t *Template) AllTags() []string {
	var tags []string
	var walk func(nodes []*TemplateNode)
	walk = func(nodes []*TemplateNode) {
		for _, n := range nodes {
			tags = append(tags, n.Tag)
			walk(n.Subtags)
		}
	}
	walk(t.Tags)
	return tags
}

// TemplatedSection mirrors Section but buckets items into the template
// tree instead of a flat commit list.
type TemplatedSection struct {
	Name   string
	Date   string
	Header *templateHeaderFooter
	Footer *templateHeaderFooter
	Root   *TemplatedNode
}

// TemplatedNode is a TemplateNode paired with the items routed into it and
// its filtered footer view.
type TemplatedNode struct {
	Tag      string
	Name     string
	Items    []routedItem
	Footers  *FooterMultiset
	Children []*TemplatedNode
}

type routedItem struct {
	Commit *ParsedCommit
	Item   *ParsedItem // the summary or body item carrying the matched tag
}

// ProjectSection re-buckets one Section's items into the template tree per
// spec.md §4.5: every item is routed into every leaf whose tag it carries;
// items matching no leaf go to the implicit "default" leaf at that level.
func (t *Template) ProjectSection(s *Section) *TemplatedSection {
	root := &TemplatedNode{Tag: "", Name: ""}
	nodeFor := map[*TemplateNode]*TemplatedNode{}
	var build func(tn []*TemplateNode) []*TemplatedNode
	build = func(tn []*TemplateNode) []*TemplatedNode {
		out := make([]*TemplatedNode, len(tn))
		for i, n := range tn {
			tnode := &TemplatedNode{Tag: n.Tag, Name: n.Name, Footers: NewFooterMultiset()}
			tnode.Children = build(n.Subtags)
			nodeFor[n] = tnode
			out[i] = tnode
		}
		return out
	}
	root.Children = build(t.Tags)
	defaultLeaf := &TemplatedNode{Tag: "default", Name: "Default", Footers: NewFooterMultiset()}

	var items []struct {
		commit *ParsedCommit
		item   *ParsedItem
	}
	for _, c := range s.Commits {
		items = append(items, struct {
			commit *ParsedCommit
			item   *ParsedItem
		}{c, c.Summary})
		for _, b := range c.Body {
			items = append(items, struct {
				commit *ParsedCommit
				item   *ParsedItem
			}{c, b})
		}
	}

	for _, entry := range items {
		leaves := t.leavesFor(entry.item, nodeFor)
		if len(leaves) == 0 {
			defaultLeaf.Items = append(defaultLeaf.Items, routedItem{entry.commit, entry.item})
			continue
		}
		for _, leaf := range leaves {
			leaf.Items = append(leaf.Items, routedItem{entry.commit, entry.item})
		}
	}

	// Attach footers: each templated node pulls its declared keys from the
	// owning commit's full footer pool for every commit contributing an
	// item to it.
	var collectFooters func(node *TemplatedNode, tn *TemplateNode)
	collectFooters = func(node *TemplatedNode, tn *TemplateNode) {
		seenCommits := map[*ParsedCommit]bool{}
		for _, ri := range node.Items {
			if seenCommits[ri.Commit] {
				continue
			}
			seenCommits[ri.Commit] = true
			for _, f := range ri.Commit.Footers {
				if containsString(tn.Footers, f.Key) {
					node.Footers.Add(f.Key, f.Value)
				}
			}
		}
	}
	var walkCollect func(nodes []*TemplatedNode, tnodes []*TemplateNode)
	walkCollect = func(nodes []*TemplatedNode, tnodes []*TemplateNode) {
		for i, n := range nodes {
			collectFooters(n, tnodes[i])
			walkCollect(n.Children, tnodes[i].Subtags)
		}
	}
	walkCollect(root.Children, t.Tags)

	allRoot := root.Children
	if len(defaultLeaf.Items) > 0 {
		allRoot = append(allRoot, defaultLeaf)
	}
	root.Children = allRoot

	return &TemplatedSection{Name: s.Name, Date: s.Date, Header: t.Header, Footer: t.Footer, Root: root}
}

// leavesFor returns the TemplatedNode leaves matching any of item's tags,
// deduplicated, walking down into children as well (a tag can label a
// subtag node).
func (t *Template) leavesFor(item *ParsedItem, nodeFor map[*TemplateNode]*TemplatedNode) []*TemplatedNode {
	seen := map[*TemplatedNode]bool{}
	var out []*TemplatedNode
	for _, tag := range item.Tags {
		for _, tn := range t.leavesByTag[tag] {
			node := nodeFor[tn]
			if node != nil && !seen[node] {
				seen[node] = true
				out = append(out, node)
			}
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// GenerateTemplate builds a flat template tree from the distinct tags seen
// across doc's sections, one leaf per tag named after the tag itself
// (title-cased), per spec.md's -g/--generate. A tagless range produces a
// template with no tag nodes — ProjectSection then routes every item to the
// implicit default leaf, never an empty document.
func GenerateTemplate(doc *Document) *Template {
	seen := map[string]bool{}
	var tags []string
	for _, s := range doc.Sections {
		for _, c := range s.Commits {
			for _, t := range c.Tags() {
				if !seen[t] {
					seen[t] = true
					tags = append(tags, t)
				}
			}
		}
	}

	tmpl := &Template{leavesByTag: map[string][]*TemplateNode{}}
	for _, tag := range tags {
		node := &TemplateNode{Tag: tag, Name: titleCase(tag)}
		tmpl.Tags = append(tmpl.Tags, node)
		tmpl.leavesByTag[tag] = []*TemplateNode{node}
	}
	return tmpl
}

// Marshal renders t back to the toml shape LoadTemplate/ParseTemplate read.
func (t *Template) Marshal() ([]byte, error) {
	raw := templateFile{Tags: t.Tags, Header: t.Header, Footer: t.Footer}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(raw); err != nil {
		return nil, errors.Wrap(err, "encoding template")
	}
	return buf.Bytes(), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
