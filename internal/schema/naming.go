package schema

import (
	"strings"
	"unicode"
)

// NamingStrategy converts external (domain) field names into storage column
// names. Explicit column-mapping entries take precedence over the strategy
// for any field they cover.
type NamingStrategy string

const (
	NamingIdentity   NamingStrategy = "identity"
	NamingSnakeCase  NamingStrategy = "snake_case"
	NamingKebabCase  NamingStrategy = "kebab-case"
	NamingPascalCase NamingStrategy = "PascalCase"
)

// Valid reports whether s is a known strategy. The empty strategy is
// treated as identity.
func (s NamingStrategy) Valid() bool {
	switch s {
	case "", NamingIdentity, NamingSnakeCase, NamingKebabCase, NamingPascalCase:
		return true
	}
	return false
}

// Apply transforms a single field name. The transform is pure: the same
// input always yields the same output.
func (s NamingStrategy) Apply(name string) string {
	switch s {
	case NamingSnakeCase:
		return delimit(name, '_')
	case NamingKebabCase:
		return delimit(name, '-')
	case NamingPascalCase:
		return pascal(name)
	default:
		return name
	}
}

// delimit lowercases name and inserts sep at word boundaries, treating
// existing underscores, hyphens and case changes as boundaries.
func delimit(name string, sep rune) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	prevLower := false
	for _, r := range name {
		switch {
		case r == '_' || r == '-':
			b.WriteRune(sep)
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteRune(sep)
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return b.String()
}

// pascal upper-cases the first letter of every word, dropping separators.
func pascal(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	upperNext := true
	for _, r := range name {
		if r == '_' || r == '-' {
			upperNext = true
			continue
		}
		if upperNext {
			b.WriteRune(unicode.ToUpper(r))
			upperNext = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
