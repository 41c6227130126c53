package parsing

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"golang.org/x/sync/errgroup"
)

// Job is one unit of parse work.
type Job struct {
	Path    string
	Grammar *sitter.Language
}

// ParseAll parses every job concurrently, bounded by workers (<=0 means
// unbounded), and returns results in the same order as jobs — the
// worker pool itself is unordered, but callers (C4's hierarchy builder)
// need File Iterator order preserved for deterministic sibling naming,
// so results are bucketed back into jobs' original positions rather
// than appended in completion order.
//
// A single job's parse failure (e.g. the file vanished between iterator
// and parse, or a permission error on read) does not abort the batch:
// spec §4.3 treats parse trouble as tolerable. The corresponding slot
// in results is left nil and its error recorded at the same index in
// errs; the caller decides whether any reported error is fatal. ParseAll
// itself only returns a non-nil error for context cancellation.
func ParseAll(ctx context.Context, pool *Pool, jobs []Job, workers int) (results []*Parsed, errs []error, err error) {
	results = make([]*Parsed, len(jobs))
	errs = make([]error, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			parsed, parseErr := pool.ParseFile(gctx, job.Path, job.Grammar)
			if parseErr != nil {
				errs[i] = parseErr
				return nil
			}
			results[i] = parsed
			return nil
		})
	}

	if waitErr := g.Wait(); waitErr != nil {
		return results, errs, waitErr
	}
	return results, errs, nil
}
