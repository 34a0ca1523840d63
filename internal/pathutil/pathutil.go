// Package pathutil relativises, normalises, and extension-strips module and
// chunk paths. Grounded on the path-joining conventions esbuild applies in
// its linker (relative "./" prefixing, forward-slash normalisation
// regardless of host OS) since file-system path resolution itself is out of
// scope for this core.
package pathutil

import (
	"path"
	"strings"
)

// Normalize converts a path to forward slashes and collapses "." / ".."
// segments, the way esbuild normalises render paths before embedding them in
// import specifiers.
func Normalize(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean(p)
}

// Relative computes the relative import specifier from one rendered output
// path to another, always forward-slashed and always prefixed with "./" or
// "../" so it cannot be confused with a bare module specifier.
func Relative(fromDir, to string) string {
	fromDir = Normalize(fromDir)
	to = Normalize(to)
	rel := relPath(fromDir, to)
	if !strings.HasPrefix(rel, "../") && !strings.HasPrefix(rel, "./") {
		rel = "./" + rel
	}
	return rel
}

func relPath(fromDir, to string) string {
	fromParts := splitNonEmpty(fromDir)
	toParts := splitNonEmpty(to)

	common := 0
	for common < len(fromParts) && common < len(toParts)-1 && fromParts[common] == toParts[common] {
		common++
	}

	var up []string
	for i := common; i < len(fromParts); i++ {
		up = append(up, "..")
	}
	rest := toParts[common:]
	all := append(up, rest...)
	if len(all) == 0 {
		return "."
	}
	return strings.Join(all, "/")
}

func splitNonEmpty(p string) []string {
	parts := strings.Split(p, "/")
	out := parts[:0:0]
	for _, part := range parts {
		if part != "" && part != "." {
			out = append(out, part)
		}
	}
	return out
}

// StripJSExtension removes a trailing .js/.mjs/.cjs/.jsx/.ts/.tsx extension,
// used by the AMD/AMD-like finalisers which omit the extension in module ids
// (spec.md §4.8: "stripJsExt is true only for amd").
func StripJSExtension(p string) string {
	for _, ext := range []string{".mjs", ".cjs", ".jsx", ".tsx", ".ts", ".js"} {
		if strings.HasSuffix(p, ext) {
			return strings.TrimSuffix(p, ext)
		}
	}
	return p
}

// IsRecognizedJSExtension reports whether ext (including the leading dot) is
// one of the extensions IdGenerator treats as "already JS-like" when
// deriving preserve-modules output filenames (spec.md §4.9).
func IsRecognizedJSExtension(ext string) bool {
	switch ext {
	case ".js", ".jsx", ".ts", ".tsx":
		return true
	}
	return false
}

// Dir/Base/Ext split a path the way logger.Source.PlatformIndependentPathDirBaseExt
// does in esbuild, but always forward-slash based.
func Dir(p string) string {
	p = Normalize(p)
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return "."
}

func Base(p string) string {
	p = Normalize(p)
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

func Ext(p string) string {
	base := Base(p)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[i:]
	}
	return ""
}

func BaseNoExt(p string) string {
	base := Base(p)
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	return base
}

// LegalizeIdentifier turns an arbitrary string (a file base name, typically)
// into a syntactically legal JS identifier: replace each illegal character
// with "_", prefix with "_" if it would otherwise start with a digit.
func LegalizeIdentifier(name string) string {
	var sb strings.Builder
	for i, r := range name {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'
		switch {
		case i == 0 && isDigit:
			sb.WriteByte('_')
			sb.WriteRune(r)
		case isLetter || isDigit:
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	if sb.Len() == 0 {
		return "_"
	}
	return sb.String()
}
