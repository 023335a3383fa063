package agg

import (
	"path"
	"strings"
)

// languageByExt maps lowercase file extensions to a language name.
var languageByExt = map[string]string{
	".go":    "Go",
	".py":    "Python",
	".js":    "JavaScript",
	".mjs":   "JavaScript",
	".cjs":   "JavaScript",
	".jsx":   "JavaScript",
	".ts":    "TypeScript",
	".tsx":   "TypeScript",
	".java":  "Java",
	".kt":    "Kotlin",
	".scala": "Scala",
	".rb":    "Ruby",
	".rs":    "Rust",
	".c":     "C",
	".h":     "C",
	".cc":    "C++",
	".cpp":   "C++",
	".hpp":   "C++",
	".cs":    "C#",
	".swift": "Swift",
	".php":   "PHP",
	".sh":    "Shell",
	".bash":  "Shell",
	".sql":   "SQL",
	".html":  "HTML",
	".css":   "CSS",
	".scss":  "CSS",
	".vue":   "Vue",
	".md":    "Markdown",
	".json":  "JSON",
	".yaml":  "YAML",
	".yml":   "YAML",
	".toml":  "TOML",
	".xml":   "XML",
	".proto": "Protocol Buffers",
}

// languageByName maps well-known extensionless file names.
var languageByName = map[string]string{
	"dockerfile": "Dockerfile",
	"makefile":   "Makefile",
	"go.mod":     "Go",
	"go.sum":     "Go",
}

// DetectLanguage returns the language of a repository path, or "Other".
func DetectLanguage(p string) string {
	base := strings.ToLower(path.Base(p))
	if lang, ok := languageByName[base]; ok {
		return lang
	}
	if lang, ok := languageByExt[path.Ext(base)]; ok {
		return lang
	}
	return "Other"
}
