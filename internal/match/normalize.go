package match

import (
	"strings"
	"unicode"
)

// StripPrefix removes a namespace prefix from a compact identifier.
// The input is split on the first colon only, so "bts:Sample" becomes "Sample"
// and an identifier without a colon is returned unchanged.
func StripPrefix(id string) string {
	if _, local, ok := strings.Cut(id, ":"); ok {
		return local
	}

	return id
}

// Prefix returns the namespace prefix of a compact identifier, or the empty
// string if the identifier carries none.
func Prefix(id string) string {
	if prefix, _, ok := strings.Cut(id, ":"); ok {
		return prefix
	}

	return ""
}

// NormalizeFieldName builds the lookup key for a field name: every whitespace
// character is removed and the result is lower-cased.
// "HTAN Participant ID" and "HTANParticipantID" share the key "htanparticipantid".
// The key is used for lookup only, never for display.
func NormalizeFieldName(name string) string {
	var b strings.Builder

	b.Grow(len(name))

	for _, r := range name {
		if unicode.IsSpace(r) {
			continue
		}

		b.WriteRune(unicode.ToLower(r))
	}

	return b.String()
}

// normalizeLoose is NormalizeFieldName with common separators dropped as well.
// It is only used to score similarity between names.
func normalizeLoose(name string) string {
	normalized := NormalizeFieldName(name)

	return strings.Map(func(r rune) rune {
		if isSeparator(r) {
			return -1
		}

		return r
	}, normalized)
}

func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == '.' || r == '/'
}
