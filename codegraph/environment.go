package codegraph

import "fmt"

// Layer distinguishes the logical role an Environment plays when a build
// produces more than one (e.g. base vs. pull-request).
type Layer string

const (
	LayerBase Layer = "base"
	LayerPR   Layer = "pr"
)

// Environment tags a node's logical namespace. Two environments over an
// otherwise identical source tree produce disjoint NodeID sets.
type Environment struct {
	EntityID string
	RepoID   string
	Layer    Layer
}

// Key renders a stable, order-independent string used as hash input.
// Two Environment values that differ in any field must render different
// keys.
func (e Environment) Key() string {
	return fmt.Sprintf("%s\x1f%s\x1f%s", e.EntityID, e.RepoID, e.Layer)
}

// IsZero reports whether e was never populated by a caller.
func (e Environment) IsZero() bool {
	return e == Environment{}
}
