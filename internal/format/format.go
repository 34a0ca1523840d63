// Package format defines the six chunk output formats and the filename
// pattern substitution machinery, grounded on esbuild's
// internal/config.Format / PathTemplate.
package format

import "strings"

type Format uint8

const (
	ES Format = iota
	CommonJS
	AMD
	UMD
	IIFE
	SystemJS
)

func (f Format) String() string {
	switch f {
	case ES:
		return "es"
	case CommonJS:
		return "cjs"
	case AMD:
		return "amd"
	case UMD:
		return "umd"
	case IIFE:
		return "iife"
	case SystemJS:
		return "system"
	}
	return "es"
}

// KeepsESMSyntax reports whether generated code may use "import"/"export"
// syntax directly, as opposed to needing a finaliser to rewrite it.
func (f Format) KeepsESMSyntax() bool {
	return f == ES
}

// SupportsTopLevelAwait reports whether the format may contain a top-level
// await (spec.md §4.8, §8 scenario 3).
func (f Format) SupportsTopLevelAwait() bool {
	return f == ES || f == SystemJS
}

// Placeholder is one substitutable token in an entryFileNames/chunkFileNames
// pattern.
type Placeholder uint8

const (
	NoPlaceholder Placeholder = iota
	NamePlaceholder
	HashPlaceholder
	FormatPlaceholder
	ExtPlaceholder
	ExtnamePlaceholder
)

// Template is a parsed filename pattern: alternating literal text and
// placeholders, e.g. "[name]-[hash].[format].js" becomes
// [{Name},{"-"},{Hash},{"."},{Format},{".js"}].
type Template struct {
	Data        string
	Placeholder Placeholder
}

// Parse turns a pattern string like "chunk-[hash]" into a Template slice.
func Parse(pattern string) []Template {
	var out []Template
	rest := pattern
	for {
		start := strings.IndexByte(rest, '[')
		if start < 0 {
			out = append(out, Template{Data: rest})
			break
		}
		end := strings.IndexByte(rest[start:], ']')
		if end < 0 {
			out = append(out, Template{Data: rest})
			break
		}
		end += start
		if start > 0 {
			out = append(out, Template{Data: rest[:start]})
		}
		ph := NoPlaceholder
		switch rest[start+1 : end] {
		case "name":
			ph = NamePlaceholder
		case "hash":
			ph = HashPlaceholder
		case "format":
			ph = FormatPlaceholder
		case "ext":
			ph = ExtPlaceholder
		case "extname":
			ph = ExtnamePlaceholder
		default:
			out = append(out, Template{Data: rest[start : end+1]})
			rest = rest[end+1:]
			continue
		}
		out = append(out, Template{Placeholder: ph})
		rest = rest[end+1:]
	}
	return out
}

// Substitutions supplies a value for each placeholder kind that should be
// replaced; a nil pointer leaves that placeholder untouched.
type Substitutions struct {
	Name    *string
	Hash    *string
	Format  *string
	Ext     *string
	Extname *string
}

func (s Substitutions) get(p Placeholder) *string {
	switch p {
	case NamePlaceholder:
		return s.Name
	case HashPlaceholder:
		return s.Hash
	case FormatPlaceholder:
		return s.Format
	case ExtPlaceholder:
		return s.Ext
	case ExtnamePlaceholder:
		return s.Extname
	}
	return nil
}

// Render substitutes every placeholder for which Substitutions supplies a
// value and concatenates the result.
func Render(template []Template, subs Substitutions) string {
	var sb strings.Builder
	for _, part := range template {
		if part.Placeholder == NoPlaceholder {
			sb.WriteString(part.Data)
			continue
		}
		if v := subs.get(part.Placeholder); v != nil {
			sb.WriteString(*v)
		}
	}
	return sb.String()
}

// HasPlaceholder reports whether template contains the given placeholder.
func HasPlaceholder(template []Template, p Placeholder) bool {
	for _, part := range template {
		if part.Placeholder == p {
			return true
		}
	}
	return false
}
