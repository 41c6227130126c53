package assembler_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/engine/assembler"
	"github.com/codegraph-dev/engine/codegraph"
)

func sampleNode(id byte, label codegraph.Label) *codegraph.Node {
	var nodeID codegraph.NodeID
	nodeID[0] = id
	return &codegraph.Node{ID: nodeID, Label: label, Path: "file://a.go#f", Name: "f"}
}

func TestInsertIsIdempotentForIdenticalAttributes(t *testing.T) {
	a := assembler.New()
	node := sampleNode(1, codegraph.LabelFunction)

	require.NoError(t, a.Insert(node))
	require.NoError(t, a.Insert(node))
	require.Equal(t, 1, a.NodeCount())
}

func TestInsertDuplicateIDWithDifferentAttributesFails(t *testing.T) {
	a := assembler.New()
	node := sampleNode(2, codegraph.LabelFunction)
	require.NoError(t, a.Insert(node))

	conflicting := sampleNode(2, codegraph.LabelClass)
	err := a.Insert(conflicting)
	require.ErrorIs(t, err, codegraph.ErrInvariantViolation)
}

func TestAddEdgeDeduplicatesBySourceTargetKind(t *testing.T) {
	a := assembler.New()
	var src, dst codegraph.NodeID
	src[0], dst[0] = 1, 2

	a.AddEdge(codegraph.Edge{Source: src, Target: dst, Kind: codegraph.KindCalls, ScopeText: "a()"})
	a.AddEdge(codegraph.Edge{Source: src, Target: dst, Kind: codegraph.KindCalls, ScopeText: "different scope text"})

	require.Equal(t, 1, a.EdgeCount())
}

func TestAddEdgeDistinctKindsAreDistinctEdges(t *testing.T) {
	a := assembler.New()
	var src, dst codegraph.NodeID
	src[0], dst[0] = 1, 2

	a.AddEdge(codegraph.Edge{Source: src, Target: dst, Kind: codegraph.KindCalls})
	a.AddEdge(codegraph.Edge{Source: src, Target: dst, Kind: codegraph.KindReferences})

	require.Equal(t, 2, a.EdgeCount())
}

func TestAssemblerConcurrentInsertIsSafe(t *testing.T) {
	a := assembler.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = a.Insert(sampleNode(byte(i%10), codegraph.LabelFunction))
		}(i)
	}
	wg.Wait()
	require.LessOrEqual(t, a.NodeCount(), 10)
}
