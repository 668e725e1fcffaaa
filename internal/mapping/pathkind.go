package mapping

import (
	"fmt"
	"strings"
)

//go:generate go tool stringer -type=PathKind -linecomment -output=pathkind_string.go

// PathKind selects how a mapped value is written into a resource.
type PathKind int

const (
	PathKindSimple     PathKind = iota // simple
	PathKindIdentifier                 // identifier
	PathKindExtension                  // extension
)

// ClassifyPath derives the kind of a path from its text. A path mentioning
// "identifier" is an identifier path even if it also mentions "extension".
func ClassifyPath(path string) PathKind {
	switch {
	case strings.Contains(path, "identifier"):
		return PathKindIdentifier
	case strings.Contains(path, "extension"):
		return PathKindExtension
	default:
		return PathKindSimple
	}
}

// ParsePathKind parses the textual form produced by String.
func ParsePathKind(s string) (PathKind, error) {
	for k := PathKindSimple; k <= PathKindExtension; k++ {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}

	return 0, fmt.Errorf("unknown path kind %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (k PathKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *PathKind) UnmarshalText(text []byte) error {
	parsed, err := ParsePathKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}
