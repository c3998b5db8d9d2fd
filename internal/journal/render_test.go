package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func defaultRenderConfig() RenderConfig {
	return RenderConfig{CategoryDelimiters: [2]string{"[", "]"}, TagDelimiter: ":"}
}

func TestRenderDocumentProducesHeadingBulletsAndFooters(t *testing.T) {
	commit := &ParsedCommit{
		OID:     "abcdef1234",
		Summary: summaryItem("Added", "new thing"),
		Body:    []*ParsedItem{{Kind: KindListItem, Category: "Added", Text: "detail"}},
	}
	section := &Section{Name: "v1.0.0", Date: "2026-01-01", Commits: []*ParsedCommit{commit}, Footers: NewFooterMultiset()}
	section.Footers.Add("Reviewed-by", "Alice")
	doc := &Document{Sections: []*Section{section}}

	out := RenderDocument(doc, defaultRenderConfig())

	require.Contains(t, out, "# v1.0.0 (2026-01-01):\n")
	require.Contains(t, out, "- [Added] new thing\n")
	require.Contains(t, out, "    - [Added] detail\n")
	require.Contains(t, out, "Reviewed-by:\nAlice")
}

func TestRenderDocumentShowsCommitHashWhenEnabled(t *testing.T) {
	commit := &ParsedCommit{OID: "abcdef1234567", Summary: summaryItem("Added", "thing")}
	doc := &Document{Sections: []*Section{{Name: "Unreleased", Commits: []*ParsedCommit{commit}}}}

	cfg := defaultRenderConfig()
	cfg.ShowCommitHash = true
	out := RenderDocument(doc, cfg)

	require.Contains(t, out, "(abcdef1)")
}

func TestRenderDocumentLinksCommitHashWhenRepoURLSet(t *testing.T) {
	commit := &ParsedCommit{OID: "abcdef1234567", Summary: summaryItem("Added", "thing")}
	doc := &Document{Sections: []*Section{{Name: "Unreleased", Commits: []*ParsedCommit{commit}}}}

	cfg := defaultRenderConfig()
	cfg.ShowCommitHash = true
	cfg.RepoURL = "https://example.com/repo/"
	out := RenderDocument(doc, cfg)

	require.Contains(t, out, "([abcdef1](https://example.com/repo/commit/abcdef1234567))")
}

func TestRenderShortDropsBodyButKeepsFooters(t *testing.T) {
	commit := &ParsedCommit{
		Summary: summaryItem("Added", "thing"),
		Body:    []*ParsedItem{{Kind: KindParagraph, Text: "should not appear"}},
	}
	section := &Section{Name: "Unreleased", Commits: []*ParsedCommit{commit}, Footers: NewFooterMultiset()}
	doc := &Document{Sections: []*Section{section}}

	out := RenderShort(doc, defaultRenderConfig())

	require.Contains(t, out, "- [Added] thing\n")
	require.NotContains(t, out, "should not appear")
}

func TestRenderShortMatchesRenderDocumentPrefix(t *testing.T) {
	commit := &ParsedCommit{
		Summary: summaryItem("Added", "thing"),
		Body:    []*ParsedItem{{Kind: KindParagraph, Text: "extra detail"}},
	}
	section := &Section{Name: "Unreleased", Commits: []*ParsedCommit{commit}, Footers: NewFooterMultiset()}
	doc := &Document{Sections: []*Section{section}}

	full := RenderDocument(doc, defaultRenderConfig())
	short := RenderShort(doc, defaultRenderConfig())

	require.True(t, strings.HasPrefix(full, "# Unreleased"))
	require.True(t, strings.HasPrefix(short, "# Unreleased"))
	require.Contains(t, short, "- [Added] thing\n")
	require.NotContains(t, short, "extra detail")
}

func buildTemplatedSection(header, footer *templateHeaderFooter, items []routedItem) *TemplatedSection {
	return &TemplatedSection{
		Name:   "Unreleased",
		Date:   "",
		Header: header,
		Footer: footer,
		Root: &TemplatedNode{
			Children: []*TemplatedNode{{Tag: "api", Name: "API", Items: items, Footers: NewFooterMultiset()}},
		},
	}
}

func TestRenderTemplatedWalksTreeWithHeadingDepth(t *testing.T) {
	commit := &ParsedCommit{OID: "a", Summary: summaryItem("Added", "thing")}
	section := buildTemplatedSection(nil, nil, []routedItem{{Commit: commit, Item: commit.Summary}})

	out := RenderTemplated([]*TemplatedSection{section}, defaultRenderConfig())

	require.Contains(t, out, "## API\n")
	require.Contains(t, out, "- [Added] thing\n")
}

func TestRenderTemplatedHeaderOnceSemantics(t *testing.T) {
	commit := &ParsedCommit{OID: "a", Summary: summaryItem("Added", "thing")}
	header := &templateHeaderFooter{Text: "INTRO", Once: true}
	sectionA := buildTemplatedSection(header, nil, []routedItem{{Commit: commit, Item: commit.Summary}})
	sectionB := buildTemplatedSection(header, nil, []routedItem{{Commit: commit, Item: commit.Summary}})

	out := RenderTemplated([]*TemplatedSection{sectionA, sectionB}, defaultRenderConfig())

	require.Equal(t, 1, strings.Count(out, "INTRO"))
}

func TestRenderTemplatedHeaderRepeatsWhenNotOnce(t *testing.T) {
	commit := &ParsedCommit{OID: "a", Summary: summaryItem("Added", "thing")}
	header := &templateHeaderFooter{Text: "INTRO", Once: false}
	sectionA := buildTemplatedSection(header, nil, []routedItem{{Commit: commit, Item: commit.Summary}})
	sectionB := buildTemplatedSection(header, nil, []routedItem{{Commit: commit, Item: commit.Summary}})

	out := RenderTemplated([]*TemplatedSection{sectionA, sectionB}, defaultRenderConfig())

	require.Equal(t, 2, strings.Count(out, "INTRO"))
}

func TestRenderTemplatedSkipsEmptyLeaves(t *testing.T) {
	section := &TemplatedSection{
		Name: "Unreleased",
		Root: &TemplatedNode{
			Children: []*TemplatedNode{
				{Tag: "api", Name: "API", Footers: NewFooterMultiset()},
			},
		},
	}

	out := RenderTemplated([]*TemplatedSection{section}, defaultRenderConfig())

	require.NotContains(t, out, "API")
}

func TestRenderTemplatedPromotesParagraphToListItem(t *testing.T) {
	commit := &ParsedCommit{OID: "a", Summary: summaryItem("Added", "thing")}
	paragraph := &ParsedItem{Kind: KindParagraph, Text: "line one\nline two"}
	section := buildTemplatedSection(nil, nil, []routedItem{{Commit: commit, Item: paragraph}})

	out := RenderTemplated([]*TemplatedSection{section}, defaultRenderConfig())

	require.Contains(t, out, "- line one\n")
	require.Contains(t, out, "  line two\n")
}

func TestRenderTemplatedNestsListItemChildren(t *testing.T) {
	commit := &ParsedCommit{OID: "a", Summary: summaryItem("Added", "thing")}
	listItem := &ParsedItem{
		Kind: KindListItem, Category: "Added", Text: "top",
		Children: []*ParsedItem{{Kind: KindListItem, Text: "nested"}},
	}
	section := buildTemplatedSection(nil, nil, []routedItem{{Commit: commit, Item: listItem}})

	out := RenderTemplated([]*TemplatedSection{section}, defaultRenderConfig())

	require.Contains(t, out, "- [Added] top\n")
	require.Contains(t, out, "  - nested\n")
}
