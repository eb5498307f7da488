package spec

import (
	"strings"
	"unicode"
)

// DefaultLanguage returns the declared default language code, if any.
func (s *Spec) DefaultLanguage() string {
	if s == nil || s.Languages == nil {
		return ""
	}
	for _, l := range *s.Languages {
		if l.IsDefault {
			return l.Code
		}
	}
	return ""
}

// CountItems returns the number of items in the tree.
func CountItems(items []Item) int {
	n := 0
	for _, it := range items {
		n += 1 + CountItems(it.Children)
	}
	return n
}

// CountTopics returns the number of topics in the tree.
func CountTopics(topics []Topic) int {
	n := 0
	for _, t := range topics {
		n += 1 + CountTopics(t.Children)
	}
	return n
}

// Slug turns a name into a path segment: lower case, ASCII letters and digits,
// words joined by dashes.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case r == 'æ':
			b.WriteString("ae")
			dash = false
		case r == 'ø':
			b.WriteString("o")
			dash = false
		case r == 'å':
			b.WriteString("a")
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// JoinPath appends segment to a catalog path.
func JoinPath(parent, segment string) string {
	return strings.TrimSuffix(parent, "/") + "/" + strings.Trim(segment, "/")
}
