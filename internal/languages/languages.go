// Package languages holds the tree-sitter grammars and env lookup queries
// for the source languages envcheck understands.
package languages

import (
	"fmt"
	"path/filepath"
	"strings"
	"unsafe"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language identifies a supported source language
type Language string

const (
	Go         Language = "go"
	JavaScript Language = "javascript"
	TypeScript Language = "typescript"
	TSX        Language = "tsx"
	Python     Language = "python"
	Rust       Language = "rust"
	Java       Language = "java"
)

var extensions = map[string]Language{
	".go":   Go,
	".js":   JavaScript,
	".jsx":  JavaScript,
	".mjs":  JavaScript,
	".cjs":  JavaScript,
	".ts":   TypeScript,
	".mts":  TypeScript,
	".tsx":  TSX,
	".py":   Python,
	".rs":   Rust,
	".java": Java,
}

var displayNames = map[Language]string{
	Go:         "Go",
	JavaScript: "JavaScript",
	TypeScript: "TypeScript",
	TSX:        "TypeScript",
	Python:     "Python",
	Rust:       "Rust",
	Java:       "Java",
}

// Detect returns the language of path based on its extension
func Detect(path string) (Language, bool) {
	lang, ok := extensions[strings.ToLower(filepath.Ext(path))]
	return lang, ok
}

// DisplayName returns a human-readable name, e.g. "TypeScript"
func (l Language) DisplayName() string {
	if name, ok := displayNames[l]; ok {
		return name
	}
	return string(l)
}

// Match is one environment lookup found by a query. Dynamic lookups carry
// the source text of the key expression instead of a key.
type Match struct {
	Key     string
	Dynamic bool
}

// Captures maps capture names to their source text for one query match
type Captures map[string]string

// Info pairs a query with the function that interprets its matches
type Info struct {
	Query string
	Match func(Captures) (Match, bool)
}

// GetInfo returns the query and matcher for lang, or nil
func GetInfo(lang Language) *Info {
	switch lang {
	case JavaScript, TypeScript, TSX:
		return &Info{Query: JavaScriptQuery, Match: matchJavaScript}
	case Go:
		return &Info{Query: GoQuery, Match: matchGo}
	case Python:
		return &Info{Query: PythonQuery, Match: matchPython}
	case Rust:
		return &Info{Query: RustQuery, Match: matchRust}
	case Java:
		return &Info{Query: JavaQuery, Match: matchJava}
	default:
		return nil
	}
}

// Grammar loads the tree-sitter grammar for lang
func Grammar(lang Language) (*sitter.Language, error) {
	var ptr unsafe.Pointer
	switch lang {
	case JavaScript:
		ptr = tree_sitter_javascript.Language()
	case TypeScript:
		ptr = tree_sitter_typescript.LanguageTypescript()
	case TSX:
		ptr = tree_sitter_typescript.LanguageTSX()
	case Go:
		ptr = tree_sitter_go.Language()
	case Python:
		ptr = tree_sitter_python.Language()
	case Rust:
		ptr = tree_sitter_rust.Language()
	case Java:
		ptr = tree_sitter_java.Language()
	default:
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}
	if ptr == nil {
		return nil, fmt.Errorf("failed to load %s language grammar", lang.DisplayName())
	}
	return sitter.NewLanguage(ptr), nil
}

// argument interprets the key/full_expr/var captures shared by every query
func argument(c Captures) (Match, bool) {
	if key, ok := c["key"]; ok {
		if isFormatString(key) {
			return Match{Key: key, Dynamic: true}, true
		}
		key = trimQuotes(key)
		if key == "" {
			return Match{}, false
		}
		return Match{Key: key}, true
	}
	if expr := c["full_expr"]; expr != "" {
		return Match{Key: expr, Dynamic: true}, true
	}
	if name := c["var"]; name != "" {
		return Match{Key: name, Dynamic: true}, true
	}
	return Match{}, false
}

// isFormatString reports a python f-string literal such as f"APP_{name}"
func isFormatString(s string) bool {
	return len(s) > 2 && (s[0] == 'f' || s[0] == 'F') && (s[1] == '"' || s[1] == '\'')
}

// trimQuotes removes surrounding quotes from a string
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') ||
			(s[0] == '`' && s[len(s)-1] == '`') ||
			(s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
