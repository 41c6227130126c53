// Package assembler collects nodes and edges produced by the hierarchy
// builder, resolver, and classifier into the final graph (spec §4.8).
package assembler

import (
	"fmt"
	"sync"

	"github.com/codegraph-dev/engine/codegraph"
)

// Assembler is a concurrency-safe sink for nodes and edges. Insert is
// idempotent for identical attributes; AddEdge is idempotent by
// construction since its key already includes every identity field.
// Assembler performs no ordering or mutation after insertion, matching
// spec §4.8.
type Assembler struct {
	mu    sync.RWMutex
	nodes map[codegraph.NodeID]*codegraph.Node
	edges map[edgeKey]*codegraph.Edge
}

type edgeKey struct {
	Source codegraph.NodeID
	Target codegraph.NodeID
	Kind   codegraph.RelationshipKind
}

// New builds an empty Assembler.
func New() *Assembler {
	return &Assembler{
		nodes: make(map[codegraph.NodeID]*codegraph.Node),
		edges: make(map[edgeKey]*codegraph.Edge),
	}
}

// Insert adds node, or no-ops if an identical node is already present.
// A duplicate ID carried by a different (environment, path) pair is a
// hash collision and returns codegraph.ErrHashCollision; a duplicate ID
// for the same (environment, path) with differing attributes is the
// fatal condition spec §7 names: it returns
// codegraph.ErrInvariantViolation rather than silently overwriting the
// earlier attributes.
func (a *Assembler) Insert(node *codegraph.Node) error {
	if node == nil {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	existing, ok := a.nodes[node.ID]
	if !ok {
		a.nodes[node.ID] = node
		return nil
	}
	if existing.Path != node.Path || existing.Environment != node.Environment {
		return fmt.Errorf("%w: node_id %s shared by %s and %s", codegraph.ErrHashCollision, node.ID, existing.Path, node.Path)
	}
	if !existing.SameAttributes(node) {
		return fmt.Errorf("%w: node_id %s", codegraph.ErrInvariantViolation, node.ID)
	}
	return nil
}

// AddEdge adds edge, or no-ops if an identical (source, target, kind)
// edge is already present.
func (a *Assembler) AddEdge(edge codegraph.Edge) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := edgeKey{Source: edge.Source, Target: edge.Target, Kind: edge.Kind}
	if _, ok := a.edges[key]; ok {
		return
	}
	stored := edge
	a.edges[key] = &stored
}

// Nodes returns a read-only copy of every inserted node.
func (a *Assembler) Nodes() []*codegraph.Node {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*codegraph.Node, 0, len(a.nodes))
	for _, n := range a.nodes {
		out = append(out, n)
	}
	return out
}

// Edges returns a read-only copy of every inserted edge.
func (a *Assembler) Edges() []*codegraph.Edge {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*codegraph.Edge, 0, len(a.edges))
	for _, e := range a.edges {
		out = append(out, e)
	}
	return out
}

// NodeCount and EdgeCount are cheap introspection used by engine's
// summary logging without copying the full slices.
func (a *Assembler) NodeCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.nodes)
}

func (a *Assembler) EdgeCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.edges)
}
