package parsing

import sitter "github.com/smacker/go-tree-sitter"

// Parsed is the result of parsing one file: the concrete-syntax tree
// plus the exact byte buffer it was built from (node content extraction
// always slices Source, never a copy made during the walk).
type Parsed struct {
	Path   string
	Tree   *sitter.Tree
	Source []byte
}

// RootNode is a convenience accessor; nil-safe for zero-value Parsed.
func (p *Parsed) RootNode() *sitter.Node {
	if p == nil || p.Tree == nil {
		return nil
	}
	return p.Tree.RootNode()
}

// Close releases the syntax tree. Safe to call on a zero-value Parsed.
func (p *Parsed) Close() {
	if p == nil || p.Tree == nil {
		return
	}
	p.Tree.Close()
}
