package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeSource is a RevisionSource driven by a fixed, hand-built commit list
// so the walker's bucketing logic can be tested without a real git binary
// or fixture repository.
type fakeSource struct {
	commits []CommitInfo
}

func (f *fakeSource) Resolve(_, _ string) ([]CommitInfo, error) {
	return f.commits, nil
}

func mkCommit(oid string, daysAgo int, tags ...string) CommitInfo {
	return CommitInfo{
		OID:     oid,
		Time:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -daysAgo),
		Summary: "[Added] " + oid,
		Tags:    tags,
	}
}

// repo mirrors the fixture repo original_source's tests describe: 15
// unreleased commits, a v2 tag commit, one more commit, then a v1 tag
// commit, totaling 15 + 1 + 2 = 18 commits across Unreleased/v2/v1.
func testRepoCommits() []CommitInfo {
	var commits []CommitInfo
	day := 0
	for i := 0; i < 15; i++ {
		commits = append(commits, mkCommit("unreleased-"+itoa(i), day))
		day++
	}
	commits = append(commits, mkCommit("v2-tag", day, "v2"))
	day++
	commits = append(commits, mkCommit("between", day))
	day++
	commits = append(commits, mkCommit("v1-tag", day, "v1"))
	return commits
}

func itoa(n int) string {
	digits := "0123456789"
	if n == 0 {
		return "0"
	}
	var out []byte
	for n > 0 {
		out = append([]byte{digits[n%10]}, out...)
		n /= 10
	}
	return string(out)
}

func TestWalkHistoryAllTagsNoLimit(t *testing.T) {
	src := &fakeSource{commits: testRepoCommits()}
	sections, err := WalkHistory(src, WalkOptions{RevisionRange: "HEAD", All: true})
	require.NoError(t, err)
	require.Len(t, sections, 3)
	require.Equal(t, "Unreleased", sections[0].Name)
	require.Len(t, sections[0].Commits, 15)
	require.Equal(t, "v2", sections[1].Name)
	require.Len(t, sections[1].Commits, 2) // v2-tag + between
	require.Equal(t, "v1", sections[2].Name)
	require.Len(t, sections[2].Commits, 1)
}

func TestWalkHistoryTagsCountOne(t *testing.T) {
	src := &fakeSource{commits: testRepoCommits()}
	sections, err := WalkHistory(src, WalkOptions{RevisionRange: "HEAD", TagsCount: 1})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Equal(t, "Unreleased", sections[0].Name)
	require.Equal(t, "v2", sections[1].Name)
	require.Len(t, sections[1].Commits, 2) // v2-tag + between, not yet closed by a v1 anchor
}

func TestWalkHistorySkipUnreleased(t *testing.T) {
	src := &fakeSource{commits: testRepoCommits()}
	sections, err := WalkHistory(src, WalkOptions{RevisionRange: "HEAD", TagsCount: 2, SkipUnreleased: true})
	require.NoError(t, err)
	require.Len(t, sections, 2)
	require.Equal(t, "v2", sections[0].Name)
	require.Equal(t, "v1", sections[1].Name)
}

func TestWalkHistoryExcludesRCTags(t *testing.T) {
	commits := []CommitInfo{
		mkCommit("head", 0),
		mkCommit("v3rc", 1, "v3-rc"),
		mkCommit("v2", 2, "v2"),
		mkCommit("v1", 3, "v1"),
	}
	src := &fakeSource{commits: commits}
	sections, err := WalkHistory(src, WalkOptions{RevisionRange: "HEAD", TagsCount: 1})
	require.NoError(t, err)
	// v3-rc is excluded by the default "rc" pattern, so it merges into
	// Unreleased instead of opening its own section; v2 closes Unreleased
	// and opens its own section; tags-count 1 stops there.
	require.Len(t, sections, 2)
	require.Equal(t, "Unreleased", sections[0].Name)
	require.Len(t, sections[0].Commits, 2) // head + v3rc commit
	require.Equal(t, "v2", sections[1].Name)
}
