package journal

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
)

// CommitInfo is the minimal view of one repository commit the walker
// reasons about: oid, time, summary/body text, the ref names (if any)
// pointing directly at it, and the paths it touched.
type CommitInfo struct {
	OID     string
	Time    time.Time
	Summary string
	Body    string
	Tags    []string // tag names pointing at this commit, if any
	Paths   []string
}

// RevisionSource is the narrow interface C2 needs from a repository,
// letting tests drive the walker without a real git binary or fixture
// repo — mirroring the interface boundary the teacher draws around its own
// git operations.
type RevisionSource interface {
	// Resolve returns the ordered ancestor chain of `to`, newest first,
	// stopping at `exclude` (exclusive) when exclude is non-empty.
	Resolve(to, exclude string) ([]CommitInfo, error)
}

// goGitSource adapts a go-git repository to RevisionSource.
type goGitSource struct {
	repo *git.Repository
}

// OpenRepository opens the repository at path (or an ancestor directory
// containing one) and returns a RevisionSource backed by go-git.
func OpenRepository(path string) (RevisionSource, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, errors.Wrapf(err, "opening repository at %q", path)
	}
	return &goGitSource{repo: repo}, nil
}

func (s *goGitSource) Resolve(to, exclude string) ([]CommitInfo, error) {
	tagsByHash, err := s.tagsByHash()
	if err != nil {
		return nil, err
	}

	toHash, err := s.repo.ResolveRevision(plumbing.Revision(to))
	if err != nil {
		return nil, errors.Wrapf(err, "resolving revision %q", to)
	}

	logOpts := &git.LogOptions{From: *toHash, Order: git.LogOrderCommitterTime}
	iter, err := s.repo.Log(logOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "walking history from %q", to)
	}
	defer iter.Close()

	var excludeHash *plumbing.Hash
	if exclude != "" {
		h, err := s.repo.ResolveRevision(plumbing.Revision(exclude))
		if err != nil {
			return nil, errors.Wrapf(err, "resolving revision %q", exclude)
		}
		excludeHash = h
	}

	var out []CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if excludeHash != nil && c.Hash == *excludeHash {
			return storer.ErrStop
		}
		summary, body := splitCommitMessage(c.Message)
		info := CommitInfo{
			OID:     c.Hash.String(),
			Time:    c.Author.When,
			Summary: summary,
			Body:    body,
			Tags:    tagsByHash[c.Hash.String()],
		}
		if paths, err := changedPaths(c); err == nil {
			info.Paths = paths
		}
		out = append(out, info)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "iterating history")
	}
	return out, nil
}

func (s *goGitSource) tagsByHash() (map[string][]string, error) {
	result := map[string][]string{}
	tagRefs, err := s.repo.Tags()
	if err != nil {
		return nil, errors.Wrap(err, "listing tags")
	}
	defer tagRefs.Close()

	err = tagRefs.ForEach(func(ref *plumbing.Reference) error {
		name := strings.TrimPrefix(ref.Name().String(), "refs/tags/")
		hash := ref.Hash()
		if tagObj, err := s.repo.TagObject(hash); err == nil {
			hash = tagObj.Target
		}
		result[hash.String()] = append(result[hash.String()], name)
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "resolving tag refs")
	}
	return result, nil
}

func changedPaths(c *object.Commit) ([]string, error) {
	parent, err := c.Parent(0)
	if err != nil {
		// Root commit: every file it introduces counts as touched.
		tree, err := c.Tree()
		if err != nil {
			return nil, err
		}
		var paths []string
		err = tree.Files().ForEach(func(f *object.File) error {
			paths = append(paths, f.Name)
			return nil
		})
		return paths, err
	}
	patch, err := parent.Patch(c)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, fp := range patch.FilePatches() {
		from, to := fp.Files()
		if from != nil {
			paths = append(paths, from.Path())
		}
		if to != nil {
			paths = append(paths, to.Path())
		}
	}
	return paths, nil
}

func splitCommitMessage(msg string) (summary, body string) {
	msg = strings.TrimRight(msg, "\n")
	parts := strings.SplitN(msg, "\n", 2)
	summary = parts[0]
	if len(parts) == 2 {
		body = strings.TrimLeft(parts[1], "\n")
	}
	return summary, body
}

// WalkOptions configures WalkHistory per spec.md §4.2/§6.
type WalkOptions struct {
	RevisionRange  string // "R" or "A..B"
	TagsCount      int    // N from -n, ignored when All is set
	All            bool   // -a
	SkipUnreleased bool   // -u
	ExcludeRegex   *regexp.Regexp
	PathSpec       []string
}

// WalkedSection is one raw, unparsed bucket produced by the walker: the
// section name ("Unreleased" or a tag), its date, and the raw commits in
// newest-first order.
type WalkedSection struct {
	Name    string
	Date    string
	Commits []RawCommit
}

// WalkHistory implements C2: it resolves opts.RevisionRange, walks ancestry
// newest-first, and buckets commits by nearest following (i.e. chronologically
// next) non-excluded tag anchor, per spec.md §4.2.
func WalkHistory(source RevisionSource, opts WalkOptions) ([]WalkedSection, error) {
	to, exclude := splitRevisionRange(opts.RevisionRange)

	commits, err := source.Resolve(to, exclude)
	if err != nil {
		return nil, errors.Wrap(err, "resolving revision range")
	}

	excludeRegex := opts.ExcludeRegex
	if excludeRegex == nil {
		excludeRegex = regexp.MustCompile("rc")
	}

	// currentCommits accumulates the chunk currently being built, newest
	// commit first. A tag anchor flushes the PRECEDING chunk under the
	// PREVIOUS section name, then starts a new chunk (named by that
	// anchor) with the anchor commit itself as the chunk's first member,
	// and every subsequent commit accumulates into THAT chunk until the
	// next anchor (or end of history) — so a tag section holds the anchor
	// commit plus everything beneath it down to (but excluding) the next
	// tag. The tags-count limit is checked before opening a new chunk, not
	// after opening the one that just satisfied it, so the chunk opened by
	// the Nth anchor still absorbs everything beneath it up to the (N+1)th
	// anchor, which is where the walk actually stops.
	var sections []WalkedSection
	currentName := "Unreleased"
	var currentCommits []RawCommit
	var currentDate string
	tagAnchorsSeen := 0

	flush := func() {
		sections = append(sections, WalkedSection{Name: currentName, Date: currentDate, Commits: currentCommits})
	}

	for _, c := range commits {
		if len(opts.PathSpec) > 0 && !touchesAny(c.Paths, opts.PathSpec) {
			continue
		}

		anchorTag := firstNonExcludedTag(c.Tags, excludeRegex)
		if anchorTag != "" {
			if !opts.All && tagAnchorsSeen >= maxInt(opts.TagsCount, 1) {
				break
			}
			flush()
			currentName = anchorTag
			currentDate = c.Time.Format("2006-01-02")
			currentCommits = []RawCommit{{OID: c.OID, Summary: c.Summary, Body: c.Body}}
			tagAnchorsSeen++
			continue
		}

		if currentDate == "" {
			currentDate = c.Time.Format("2006-01-02")
		}
		currentCommits = append(currentCommits, RawCommit{OID: c.OID, Summary: c.Summary, Body: c.Body})
	}
	flush()

	if opts.SkipUnreleased {
		filtered := sections[:0]
		for _, s := range sections {
			if s.Name != "Unreleased" {
				filtered = append(filtered, s)
			}
		}
		sections = filtered
	}

	return reorderUnreleasedFirst(sections), nil
}

func reorderUnreleasedFirst(sections []WalkedSection) []WalkedSection {
	var unreleased *WalkedSection
	var rest []WalkedSection
	for i := range sections {
		if sections[i].Name == "Unreleased" {
			unreleased = &sections[i]
			continue
		}
		rest = append(rest, sections[i])
	}
	if unreleased == nil {
		return rest
	}
	return append([]WalkedSection{*unreleased}, rest...)
}

func firstNonExcludedTag(tags []string, exclude *regexp.Regexp) string {
	sort.Strings(tags)
	for _, t := range tags {
		if !exclude.MatchString(t) {
			return t
		}
	}
	return ""
}

func touchesAny(paths, spec []string) bool {
	for _, p := range paths {
		for _, s := range spec {
			if strings.HasPrefix(p, s) {
				return true
			}
		}
	}
	return false
}

func splitRevisionRange(rangeStr string) (to, exclude string) {
	if idx := strings.Index(rangeStr, ".."); idx >= 0 {
		return rangeStr[idx+2:], rangeStr[:idx]
	}
	return rangeStr, ""
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
