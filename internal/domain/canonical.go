package domain

import (
	"strings"
	"sync"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// foldCaser performs Unicode case folding for alias lookups.
// Folding handles case-insensitive matching more robustly than
// simple lowercasing for international text.
var foldCaser = cases.Fold()

// canonicalAliases maps normalized label keys to canonical language names.
// Keys are produced by aliasKey (whitespace stripped, case folded). An empty
// target means the label is synthetic (for example a benchmark harness id
// that is not a language) and must be dropped from every source.
var canonicalAliases = sync.OnceValue(func() map[string]string {
	return map[string]string{
		"delphi/objectpascal": "Delphi/Pascal",
		"matlab":              "Matlab",
		"cobol":               "COBOL",
		"powershell":          "PowerShell",
		"vbscript":            "VBA/VBS",
		"vba":                 "VBA/VBS",
		"abap":                "Abap",
		"(visual)foxpro":      "FoxPro",
		"c":                   "C",
		"c#":                  "C#",
		"csharp":              "C#",
		"c-sharp":             "C#",
		"c++":                 "C++",
		"c/c++":               "C/C++",
		"f#":                  "F#",
		"fsharp":              "F#",
		"f-sharp":             "F#",
		"javascript":          "JavaScript",
		"js":                  "JavaScript",
		"node":                "JavaScript",
		"node.js":             "JavaScript",
		"nodejs":              "JavaScript",
		"typescript":          "TypeScript",
		"ts":                  "TypeScript",
		"objective-c":         "Objective-C",
		"objectivec":          "Objective-C",
		"obj-c":               "Objective-C",
		"objc":                "Objective-C",
		"golang":              "Go",
		"go":                  "Go",
		"cpp":                 "C++",
		"vb":                  "Visual Basic",
		"vb.net":              "Visual Basic",
		"vbnet":               "Visual Basic",
		"visualbasic":         "Visual Basic",
		"visualbasic.net":     "Visual Basic",
		"cfml":                "CFML",
		"clojure":             "Clojure",
		"commonlisp":          "Lisp",
		"crystal":             "Crystal",
		"d":                   "D",
		"dart":                "Dart",
		"elixir":              "Elixir",
		"fortran":             "Fortran",
		"haskell":             "Haskell",
		"julia":               "Julia",
		"kotlin":              "Kotlin",
		"lua":                 "Lua",
		"luau":                "Luau",
		"nim":                 "Nim",
		"pascal":              "Delphi/Pascal",
		"prolog":              "Prolog",
		"python":              "Python",
		"r":                   "R",
		"ruby":                "Ruby",
		"rust":                "Rust",
		"scala":               "Scala",
		"swift":               "Swift",
		"ur":                  "Ur",
		"v":                   "V",
		"vala":                "Vala",
		"zig":                 "Zig",

		// Benchmark suite implementation ids map to the language they run.
		"chapel":      "Chapel",
		"clang":       "C/C++",
		"csharpaot":   "C#",
		"csharpcore":  "C#",
		"dartexe":     "Dart",
		"dartjit":     "Dart",
		"erlang":      "Erlang",
		"fpascal":     "Delphi/Pascal",
		"fsharpcore":  "F#",
		"gcc":         "C/C++",
		"ghc":         "Haskell",
		"gnat":        "Ada",
		"gpp":         "C/C++",
		"graalvm":     "Graal",
		"icx":         "C/C++",
		"ifc":         "Fortran",
		"ifx":         "Fortran",
		"java":        "Java",
		"javaxint":    "Java",
		"micropython": "Python",
		"mri":         "Ruby",
		"ocaml":       "OCaml",
		"openj9":      "Java",
		"perl":        "Perl",
		"pharo":       "Smalltalk",
		"php":         "PHP",
		"python3":     "Python",
		"racket":      "Racket",
		"sbcl":        "Lisp",
		"toit":        "Toit",
		"vw":          "",
	}
})

// aliasKey normalizes a raw label for alias table lookup by removing all
// whitespace and case folding the remainder.
func aliasKey(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(r)
	}
	return foldCaser.String(b.String())
}

// CanonicalName resolves a free-text language label to its canonical name.
// The second return value is false when the label is empty or maps to a
// synthetic entry that must be dropped. Labels absent from the alias table
// pass through trimmed verbatim, so every source resolves the same
// real-world language to the same key.
func CanonicalName(label string) (string, bool) {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return "", false
	}
	if alias, ok := canonicalAliases()[aliasKey(trimmed)]; ok {
		if alias == "" {
			return "", false
		}
		return alias, true
	}
	return trimmed, true
}

// maxSuggestionDistance bounds how far an unknown label may be from an alias
// key before SuggestAlias stays silent.
const maxSuggestionDistance = 2

// SuggestAlias returns the canonical name whose alias key is closest to the
// given unknown label, for "did you mean" diagnostics. It reports false when
// no key is within maxSuggestionDistance edits or the nearest entry is a
// dropped synthetic label.
func SuggestAlias(label string) (string, bool) {
	key := aliasKey(strings.TrimSpace(label))
	if key == "" {
		return "", false
	}

	best := ""
	bestDistance := maxSuggestionDistance + 1
	for candidate, target := range canonicalAliases() {
		if target == "" {
			continue
		}
		d := levenshtein.ComputeDistance(key, candidate)
		if d < bestDistance || (d == bestDistance && best != "" && target < best) {
			best = target
			bestDistance = d
		}
	}
	if bestDistance > maxSuggestionDistance {
		return "", false
	}
	return best, true
}
