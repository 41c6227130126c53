package registry

import sitter "github.com/smacker/go-tree-sitter"

// Language bundles everything the engine needs to treat one file
// extension as a first-class language: its tree-sitter grammar, its LSP
// language identifier, and its capability set.
type Language struct {
	ID            ID
	Extensions    []string
	Grammar       *sitter.Language
	LSPLanguageID string
	Rules         Rules
}
