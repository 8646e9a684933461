package endpoint

import "strings"

// Pluralize returns the plural form of a resource name.
// Uses simple English pluralization rules; names are expected lowercase.
func Pluralize(word string) string {
	if word == "" {
		return ""
	}

	if plural, ok := irregularPlurals[strings.ToLower(word)]; ok {
		if word[0] >= 'A' && word[0] <= 'Z' {
			return strings.ToUpper(plural[:1]) + plural[1:]
		}
		return plural
	}

	lower := strings.ToLower(word)

	// Sibilant endings take 'es'
	if strings.HasSuffix(lower, "s") ||
		strings.HasSuffix(lower, "x") ||
		strings.HasSuffix(lower, "z") ||
		strings.HasSuffix(lower, "ch") ||
		strings.HasSuffix(lower, "sh") {
		return word + "es"
	}

	// Consonant + 'y' becomes 'ies'
	if strings.HasSuffix(lower, "y") && len(word) > 1 {
		if !isVowel(rune(lower[len(lower)-2])) {
			return word[:len(word)-1] + "ies"
		}
	}

	if strings.HasSuffix(lower, "fe") {
		return word[:len(word)-2] + "ves"
	}
	if strings.HasSuffix(lower, "f") {
		return word[:len(word)-1] + "ves"
	}

	return word + "s"
}

// Capitalize upper-cases the first letter of a name for display.
func Capitalize(word string) string {
	if word == "" {
		return ""
	}
	return strings.ToUpper(word[:1]) + word[1:]
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'A', 'E', 'I', 'O', 'U':
		return true
	default:
		return false
	}
}

// Irregular plurals likely to show up as resource names.
var irregularPlurals = map[string]string{
	"person": "people",
	"child":  "children",
	"index":  "indices",
	"status": "statuses",
	"medium": "media",
	"datum":  "data",
}
