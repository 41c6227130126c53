package parsing

import (
	"context"
	"fmt"
	"os"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/viant/afs"
)

// Pool reuses *sitter.Parser instances per grammar (spec §4.3: "Parsers
// are not thread-safe per instance but are cheap to clone"). One
// sync.Pool per grammar avoids the SetLanguage call on every parse and
// lets concurrent callers borrow distinct parser instances safely.
type Pool struct {
	byGrammar sync.Map // map[*sitter.Language]*sync.Pool
	fs        afs.Service
}

// NewPool returns a Pool backed by the local filesystem via afs. Grammar
// sub-pools are created lazily.
func NewPool() *Pool {
	return &Pool{fs: afs.New()}
}

func (p *Pool) poolFor(grammar *sitter.Language) *sync.Pool {
	if existing, ok := p.byGrammar.Load(grammar); ok {
		return existing.(*sync.Pool)
	}
	fresh := &sync.Pool{
		New: func() any {
			parser := sitter.NewParser()
			parser.SetLanguage(grammar)
			return parser
		},
	}
	actual, _ := p.byGrammar.LoadOrStore(grammar, fresh)
	return actual.(*sync.Pool)
}

// Parse parses src with grammar, borrowing a parser from the pool and
// returning it afterward. Parse errors from malformed source do not
// occur here: tree-sitter always returns a tree, possibly containing
// ERROR nodes, which later stages tolerate (spec §4.3). The only error
// this returns is context cancellation during an incremental parse.
func (p *Pool) Parse(ctx context.Context, path string, grammar *sitter.Language, src []byte) (*Parsed, error) {
	sp := p.poolFor(grammar)
	parser := sp.Get().(*sitter.Parser)
	defer sp.Put(parser)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &Parsed{Path: path, Tree: tree, Source: src}, nil
}

// ParseFile reads path via afs and parses it with grammar. afs is tried
// first so the pool works unmodified against any afs-backed scheme
// (e.g. an in-memory or cloud-staged checkout in tests); a plain
// os.ReadFile is the fallback for the common local path, matching the
// teacher's own dual-path read in extractGoModuleName.
func (p *Pool) ParseFile(ctx context.Context, path string, grammar *sitter.Language) (*Parsed, error) {
	src, err := p.fs.DownloadWithURL(ctx, path)
	if err != nil || len(src) == 0 {
		src, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("parsing: reading %s: %w", path, err)
		}
	}
	return p.Parse(ctx, path, grammar, src)
}
