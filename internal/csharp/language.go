package csharp

import (
	sitter "github.com/smacker/go-tree-sitter"
	langCSharp "github.com/smacker/go-tree-sitter/csharp"
)

// Language returns the compiled C# grammar, write-once and read-many per
// process: callers share one *sitter.Language across every parse.
func Language() *sitter.Language {
	return langCSharp.GetLanguage()
}
