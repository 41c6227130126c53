package classifier_test

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/require"

	"github.com/codegraph-dev/engine/classifier"
	"github.com/codegraph-dev/engine/codegraph"
	"github.com/codegraph-dev/engine/parsing"
	"github.com/codegraph-dev/engine/registry"
)

func parse(t *testing.T, langID registry.ID, src string) (*sitter.Node, []byte, registry.Rules) {
	t.Helper()
	reg := registry.New()
	var lang *registry.Language
	for _, l := range reg.All() {
		if l.ID == langID {
			lang = l
			break
		}
	}
	require.NotNil(t, lang)

	pool := parsing.NewPool()
	parsed, err := pool.Parse(context.Background(), "sample", lang.Grammar, []byte(src))
	require.NoError(t, err)
	return parsed.RootNode(), []byte(src), lang.Rules
}

func findFirst(n *sitter.Node, nodeType string) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == nodeType {
		return n
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if found := findFirst(n.NamedChild(i), nodeType); found != nil {
			return found
		}
	}
	return nil
}

func TestClassifyPythonCallSite(t *testing.T) {
	root, src, rules := parse(t, registry.Python, "greet(name)\n")
	call := findFirst(root, "call")
	require.NotNil(t, call)
	site := call.NamedChild(0)

	kind, scope := classifier.Classify(site, codegraph.LabelFunction, registry.Python, rules, src)
	require.Equal(t, codegraph.KindCalls, kind)
	require.Contains(t, scope, "greet(name)")
}

func TestClassifyPythonCallToClassDowngradesToInstantiates(t *testing.T) {
	root, src, rules := parse(t, registry.Python, "Widget()\n")
	call := findFirst(root, "call")
	require.NotNil(t, call)
	site := call.NamedChild(0)

	kind, _ := classifier.Classify(site, codegraph.LabelClass, registry.Python, rules, src)
	require.Equal(t, codegraph.KindInstantiates, kind)
}

func TestClassifyGoCallDoesNotDowngrade(t *testing.T) {
	root, src, rules := parse(t, registry.Go, "package p\nfunc f() { New() }\n")
	call := findFirst(root, "call_expression")
	require.NotNil(t, call)
	site := call.NamedChild(0)

	kind, _ := classifier.Classify(site, codegraph.LabelClass, registry.Go, rules, src)
	require.Equal(t, codegraph.KindCalls, kind)
}

func TestClassifyRubyNewCallIsInstantiates(t *testing.T) {
	root, src, rules := parse(t, registry.Ruby, "Widget.new\n")
	call := findFirst(root, "call")
	require.NotNil(t, call)
	site := findFirst(call, "constant")
	require.NotNil(t, site)

	kind, _ := classifier.Classify(site, codegraph.LabelClass, registry.Ruby, rules, src)
	require.Equal(t, codegraph.KindInstantiates, kind)
}

func TestClassifyNoMatchBareIdentifierYieldsUses(t *testing.T) {
	root, src, rules := parse(t, registry.Go, "package p\nvar x = y\n")
	ident := findFirst(root, "identifier")
	// walk to the rightmost bare identifier (the var_spec's value, "y")
	var y *sitter.Node
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if n.Type() == "identifier" && n.Content(src) == "y" {
			y = n
		}
		for i := 0; i < int(n.NamedChildCount()); i++ {
			walk(n.NamedChild(i))
		}
	}
	walk(root)
	require.NotNil(t, y)
	_ = ident

	kind, _ := classifier.Classify(y, codegraph.LabelDefinition, registry.Go, rules, src)
	require.Equal(t, codegraph.KindUses, kind)
}
