package journal

import "sort"

// Section is one release's worth of parsed commits, or the "Unreleased"
// bucket. Per spec.md §3, a Section with no commits is omitted from a
// Document.
type Section struct {
	Name    string // "Unreleased" or a tag name
	Date    string // "YYYY-MM-DD"
	Commits []*ParsedCommit

	// Footers holds the section-wide aggregated footer multiset: for each
	// key, every value seen across the section's commits, in source order,
	// with duplicate (key, value) pairs collapsed but distinct values kept.
	Footers *FooterMultiset
}

// Document is the ordered list of Sections produced by the pipeline, before
// any template is applied. Sections appear in reverse-chronological release
// order with "Unreleased" first when present.
type Document struct {
	Sections []*Section
}

// FooterMultiset is an ordered multimap from footer Key to every distinct
// Value seen for that key, preserving first-seen order of both keys and
// values. spec.md §9 calls for template nodes to hold "a filtered view, not
// a copy" — Filter below returns a new multiset (a copy) instead, since the
// engine only ever reads it.
type FooterMultiset struct {
	order  []string
	values map[string][]string
	seen   map[string]map[string]bool
}

// NewFooterMultiset returns an empty multiset.
func NewFooterMultiset() *FooterMultiset {
	return &FooterMultiset{values: map[string][]string{}, seen: map[string]map[string]bool{}}
}

// Add records one (key, value) pair, skipping an exact duplicate for that
// key while keeping every distinct value.
func (m *FooterMultiset) Add(key, value string) {
	if m.seen[key] == nil {
		m.seen[key] = map[string]bool{}
		m.order = append(m.order, key)
	}
	if m.seen[key][value] {
		return
	}
	m.seen[key][value] = true
	m.values[key] = append(m.values[key], value)
}

// Keys returns the footer keys in first-seen order.
func (m *FooterMultiset) Keys() []string {
	return m.order
}

// Values returns the distinct values recorded for key, in first-seen order.
func (m *FooterMultiset) Values(key string) []string {
	return m.values[key]
}

// Filter returns a new multiset holding only the requested keys, preserving
// relative order and all recorded values for each.
func (m *FooterMultiset) Filter(keys []string) *FooterMultiset {
	out := NewFooterMultiset()
	for _, k := range keys {
		for _, v := range m.Values(k) {
			out.Add(k, v)
		}
	}
	return out
}

// BuildSection aggregates a slice of already-parsed commits (in the order
// produced by the orchestrator) into one Section, applying the configured
// sort and footer aggregation described in spec.md §4.4.
func BuildSection(name, date string, commits []*ParsedCommit, sortBy string, enableFooters bool) *Section {
	sorted := make([]*ParsedCommit, len(commits))
	copy(sorted, commits)
	switch sortBy {
	case "name":
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Summary.Text < sorted[j].Summary.Text
		})
	default: // "date": the walker already produced commits newest-first.
	}

	footers := NewFooterMultiset()
	if enableFooters {
		for _, c := range sorted {
			for _, f := range c.Footers {
				footers.Add(f.Key, f.Value)
			}
		}
	}

	return &Section{Name: name, Date: date, Commits: sorted, Footers: footers}
}

// ApplyIgnore implements -i/--ignore per open-question decision 1 in
// SPEC_FULL.md: an item is dropped only when every tag it carries is in
// ignore; when some but not all of its tags are ignored, the item survives
// with only its non-ignored tags, so template routing sees just the
// surviving leaves. Items with no tags at all are never affected. A commit
// whose summary is dropped is dropped entirely, body items included.
func ApplyIgnore(commits []*ParsedCommit, ignore []string) []*ParsedCommit {
	if len(ignore) == 0 {
		return commits
	}
	ignored := map[string]bool{}
	for _, t := range ignore {
		ignored[t] = true
	}

	var out []*ParsedCommit
	for _, c := range commits {
		summary, keep := filterItemTags(c.Summary, ignored)
		if !keep {
			continue
		}
		var body []*ParsedItem
		for _, b := range c.Body {
			if filtered, ok := filterItemTags(b, ignored); ok {
				body = append(body, filtered)
			}
		}
		clone := *c
		clone.Summary = summary
		clone.Body = body
		out = append(out, &clone)
	}
	return out
}

// filterItemTags reports false when item carries at least one tag and every
// one of them is ignored; otherwise it returns a shallow copy of item with
// ignored tags removed from its Tags slice.
func filterItemTags(item *ParsedItem, ignored map[string]bool) (*ParsedItem, bool) {
	if item == nil || len(item.Tags) == 0 {
		return item, true
	}
	var surviving []string
	for _, t := range item.Tags {
		if !ignored[t] {
			surviving = append(surviving, t)
		}
	}
	if len(surviving) == 0 {
		return nil, false
	}
	clone := *item
	clone.Tags = surviving
	return &clone, true
}

// ExcludeTags implements the `excluded_commit_tags` config key: unlike
// ApplyIgnore's -i/--ignore (which keeps an item routed by its surviving
// tags), any item carrying at least one excluded tag is dropped from
// rendered output in full, independently of and in addition to -i. A
// commit whose summary carries an excluded tag is dropped entirely; a body
// item whose own tags intersect the excluded set is dropped along with its
// children.
func ExcludeTags(commits []*ParsedCommit, excluded []string) []*ParsedCommit {
	if len(excluded) == 0 {
		return commits
	}
	excludedSet := map[string]bool{}
	for _, t := range excluded {
		excludedSet[t] = true
	}

	var out []*ParsedCommit
	for _, c := range commits {
		if hasExcludedTag(c.Summary, excludedSet) {
			continue
		}
		var body []*ParsedItem
		for _, b := range c.Body {
			if !hasExcludedTag(b, excludedSet) {
				body = append(body, b)
			}
		}
		clone := *c
		clone.Body = body
		out = append(out, &clone)
	}
	return out
}

func hasExcludedTag(item *ParsedItem, excluded map[string]bool) bool {
	if item == nil {
		return false
	}
	for _, t := range item.Tags {
		if excluded[t] {
			return true
		}
	}
	return false
}

// BuildDocument assembles sections into a Document, dropping any section
// that ended up with zero commits (spec.md §3: "A Section with no commits
// is omitted").
func BuildDocument(sections []*Section) *Document {
	doc := &Document{}
	for _, s := range sections {
		if len(s.Commits) == 0 {
			continue
		}
		doc.Sections = append(doc.Sections, s)
	}
	return doc
}
