package journal

import (
	"context"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RawCommit is the unparsed form of a single commit, as produced by the
// history walker (C2): its oid, summary text and body text. It carries no
// time; the walker records dates per WalkedSection instead.
type RawCommit struct {
	OID     string
	Summary string
	Body    string
}

// ParseSkip records one raw commit that failed to parse, for the INFO-level
// diagnostic spec.md §4.3/§7 requires.
type ParseSkip struct {
	OID     string
	Summary string
	Err     error
}

// ParseMany parses raw in parallel through grammar, preserving input order
// in the returned slice, and returns every skip alongside the successfully
// parsed commits. This is C3: a bounded work-stealing map over an indexed
// slice, never reordering output relative to a serial parse (spec.md §5,
// §9).
func ParseMany(ctx context.Context, grammar *Grammar, raw []RawCommit, logger *zap.Logger) ([]*ParsedCommit, []ParseSkip) {
	slots := make([]*ParsedCommit, len(raw))
	errs := make([]error, len(raw))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(runtime.GOMAXPROCS(0))

	for i := range raw {
		i := i
		group.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			commit, err := grammar.Parse(raw[i].OID, raw[i].Summary, raw[i].Body)
			if err != nil {
				errs[i] = err
				return nil // a per-commit parse failure never aborts the group
			}
			slots[i] = commit
			return nil
		})
	}
	// Errors here can only come from context cancellation, which the
	// caller controls; a per-commit ParseError is recorded in errs, not
	// returned by Wait.
	_ = group.Wait()

	parsed := make([]*ParsedCommit, 0, len(raw))
	var skips []ParseSkip
	for i, c := range slots {
		if c != nil {
			parsed = append(parsed, c)
			continue
		}
		skip := ParseSkip{OID: raw[i].OID, Summary: raw[i].Summary, Err: errs[i]}
		skips = append(skips, skip)
		if logger != nil {
			logger.Info("skipping unparsable commit",
				zap.String("oid", truncate(skip.OID, 7)),
				zap.String("summary", truncate(skip.Summary, 72)),
				zap.Error(skip.Err))
		}
	}
	return parsed, skips
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
