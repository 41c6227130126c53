package registry

import (
	"path/filepath"
	"strings"

	tscsharp "github.com/smacker/go-tree-sitter/csharp"
	tsgolang "github.com/smacker/go-tree-sitter/golang"
	tsjava "github.com/smacker/go-tree-sitter/java"
	tsjavascript "github.com/smacker/go-tree-sitter/javascript"
	tsphp "github.com/smacker/go-tree-sitter/php"
	tspython "github.com/smacker/go-tree-sitter/python"
	tsruby "github.com/smacker/go-tree-sitter/ruby"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/tsx"
	tsts "github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Registry is a static, read-only mapping of file extension to Language.
// Lookup is O(1).
type Registry struct {
	byExtension map[string]*Language
	languages   []*Language
}

// New builds the registry with the eight languages spec §4.2 requires.
func New() *Registry {
	r := &Registry{byExtension: make(map[string]*Language)}

	r.register(&Language{
		ID:            Python,
		Extensions:    []string{".py", ".pyi"},
		Grammar:       tspython.GetLanguage(),
		LSPLanguageID: "python",
		Rules:         newPythonRules(),
	})
	r.register(&Language{
		ID:            JavaScript,
		Extensions:    []string{".js", ".jsx", ".mjs", ".cjs"},
		Grammar:       tsjavascript.GetLanguage(),
		LSPLanguageID: "javascript",
		Rules:         newJavaScriptRules(),
	})
	r.register(&Language{
		ID:            TypeScript,
		Extensions:    []string{".ts"},
		Grammar:       tsts.GetLanguage(),
		LSPLanguageID: "typescript",
		Rules:         newTypeScriptRules(false),
	})
	r.register(&Language{
		ID:            TSX,
		Extensions:    []string{".tsx"},
		Grammar:       tstypescript.GetLanguage(),
		LSPLanguageID: "typescriptreact",
		Rules:         newTypeScriptRules(true),
	})
	r.register(&Language{
		ID:            Ruby,
		Extensions:    []string{".rb"},
		Grammar:       tsruby.GetLanguage(),
		LSPLanguageID: "ruby",
		Rules:         newRubyRules(),
	})
	r.register(&Language{
		ID:            Go,
		Extensions:    []string{".go"},
		Grammar:       tsgolang.GetLanguage(),
		LSPLanguageID: "go",
		Rules:         newGoRules(),
	})
	r.register(&Language{
		ID:            CSharp,
		Extensions:    []string{".cs"},
		Grammar:       tscsharp.GetLanguage(),
		LSPLanguageID: "csharp",
		Rules:         newCSharpRules(),
	})
	r.register(&Language{
		ID:            Java,
		Extensions:    []string{".java"},
		Grammar:       tsjava.GetLanguage(),
		LSPLanguageID: "java",
		Rules:         newJavaRules(),
	})
	r.register(&Language{
		ID:            PHP,
		Extensions:    []string{".php"},
		Grammar:       tsphp.GetLanguage(),
		LSPLanguageID: "php",
		Rules:         newPHPRules(),
	})

	return r
}

func (r *Registry) register(lang *Language) {
	r.languages = append(r.languages, lang)
	for _, ext := range lang.Extensions {
		r.byExtension[ext] = lang
	}
}

// Lookup resolves a file path's extension to its Language. ok is false for
// unsupported extensions; callers fall back to hierarchy-only treatment.
func (r *Registry) Lookup(path string) (lang *Language, ok bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok = r.byExtension[ext]
	return lang, ok
}

// All returns every registered language, in registration order.
func (r *Registry) All() []*Language {
	out := make([]*Language, len(r.languages))
	copy(out, r.languages)
	return out
}

// Fallback is the hierarchy-only rules object for extensions Lookup
// cannot resolve (spec §2.2).
func (r *Registry) Fallback() Rules {
	return FallbackRules{}
}
