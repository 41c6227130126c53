package codegraph

// RelationshipKind is the edge kind of an Edge.
type RelationshipKind string

const (
	KindContains     RelationshipKind = "CONTAINS"
	KindCalls        RelationshipKind = "CALLS"
	KindImports      RelationshipKind = "IMPORTS"
	KindInherits     RelationshipKind = "INHERITS"
	KindInstantiates RelationshipKind = "INSTANTIATES"
	KindTypes        RelationshipKind = "TYPES"
	KindAssigns      RelationshipKind = "ASSIGNS"
	KindReferences   RelationshipKind = "REFERENCES"
	KindUses         RelationshipKind = "USES"
	KindModified     RelationshipKind = "MODIFIED"
	KindAdded        RelationshipKind = "ADDED"
	KindDeleted      RelationshipKind = "DELETED"
)

// Edge is a directed relationship between two nodes, identified by ID so
// the graph never needs back-pointers and cycles in non-CONTAINS edges
// (mutual recursion) are simply permitted.
type Edge struct {
	Source    NodeID
	Target    NodeID
	Kind      RelationshipKind
	ScopeText string
}

// ExternalEdge is an edge produced by the diff engine whose endpoints live
// in different environments; the persistence layer is responsible for
// reconciling it (spec §4.9, §GLOSSARY).
type ExternalEdge struct {
	Source NodeID // in the PR/patch environment
	Target NodeID // in the base environment
	Kind   RelationshipKind
}
