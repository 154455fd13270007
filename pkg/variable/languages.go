package variable

import (
	"path"
	"strings"
)

// DefaultCommentSymbol is used for languages without a known line comment.
const DefaultCommentSymbol = "-"

var commentSymbols = map[string]string{
	"java":       "//",
	"kotlin":     "//",
	"javascript": "//",
	"typescript": "//",
	"go":         "//",
	"c":          "//",
	"c++":        "//",
	"c#":         "//",
	"rust":       "//",
	"python":     "#",
	"ruby":       "#",
	"shell":      "#",
}

// CommentSymbolFor returns the line comment prefix of a language display name.
func CommentSymbolFor(language string) string {
	if s, ok := commentSymbols[strings.ToLower(strings.TrimSpace(language))]; ok {
		return s
	}
	return DefaultCommentSymbol
}

var extensionLanguages = map[string]string{
	".java":  "Java",
	".kt":    "Kotlin",
	".kts":   "Kotlin",
	".js":    "JavaScript",
	".mjs":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".go":    "Go",
	".c":     "C",
	".h":     "C",
	".cc":    "C++",
	".cpp":   "C++",
	".hpp":   "C++",
	".cs":    "C#",
	".rs":    "Rust",
	".py":    "Python",
	".rb":    "Ruby",
	".sh":    "Shell",
	".bash":  "Shell",
	".shire": "Shire",
	".md":    "Markdown",
}

// LanguageForFile guesses the display name of the language of a file from
// its extension. Unknown extensions yield "".
func LanguageForFile(name string) string {
	return extensionLanguages[strings.ToLower(path.Ext(name))]
}
