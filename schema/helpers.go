package schema

import (
	"sort"
	"strings"
	"unicode"
)

// nameWords splits a display name into words with surrounding punctuation
// removed. Hyphens, apostrophes and inner periods survive; a trailing period
// does not, so "J." becomes "J".
func nameWords(name string) []string {
	keep := func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r) || strings.ContainsRune("-'.", r)
	}
	var words []string
	for _, w := range strings.Fields(name) {
		w = strings.TrimFunc(w, func(r rune) bool { return !keep(r) })
		if w = strings.TrimSuffix(w, "."); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// AbbreviateName shortens an author name to "First L" for narrow tables.
// Bot accounts and single-word names are returned whole.
func AbbreviateName(name string) string {
	name = strings.TrimSpace(name)
	if strings.Contains(name, "[bot]") {
		return strings.Join(strings.Fields(name), " ")
	}

	unwrapped := strings.Trim(name, "()\"'`")
	words := nameWords(unwrapped)
	switch len(words) {
	case 0:
		return unwrapped
	case 1:
		return words[0]
	}
	last := []rune(words[len(words)-1])
	return words[0] + " " + string(last[0])
}

// FormatOwners joins abbreviated owner names, e.g. "Samuel H, Jane D".
func FormatOwners(owners []string) string {
	var b strings.Builder
	for i, owner := range owners {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(AbbreviateName(owner))
	}
	return b.String()
}

// LooksLikeEmail reports whether a display name is really an email address.
func LooksLikeEmail(name string) bool {
	at := strings.Index(name, "@")
	return at > 0 && strings.Contains(name[at:], ".") && !strings.ContainsAny(name, " \t")
}

// TopOwners returns up to n owners ordered by share descending, then email ascending.
// A negative n returns every owner.
func TopOwners(ownership map[string]float64, n int) []string {
	owners := make([]string, 0, len(ownership))
	for email := range ownership {
		owners = append(owners, email)
	}
	sort.Slice(owners, func(i, j int) bool {
		if ownership[owners[i]] != ownership[owners[j]] {
			return ownership[owners[i]] > ownership[owners[j]]
		}
		return owners[i] < owners[j]
	})
	if n >= 0 && len(owners) > n {
		owners = owners[:n]
	}
	return owners
}
