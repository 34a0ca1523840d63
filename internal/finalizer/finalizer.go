// Package finalizer implements spec.md §4.8's format dispatch: six
// independent code generators, one per output format, each consuming the
// same plain Input the Renderer has already assembled (rendered source,
// dependency declarations, export declarations). Grounded on esbuild's
// format-conditional code generation inlined in internal/linker/linker.go,
// restructured here per the design note calling for "dispatch keyed by an
// enum of six formats" rather than one monolithic function.
package finalizer

import (
	"fmt"

	"github.com/bundleforge/chunk/internal/format"
)

// ImportSpecifier mirrors linker.ImportSpecifier without importing the
// linker package (which imports this one for Finalize).
type ImportSpecifier struct {
	Imported string
	Local    string
}

// Reexport mirrors linker.Reexport.
type Reexport struct {
	Imported         string
	Exported         string
	NeedsLiveBinding bool
}

// Dependency mirrors linker.RenderedDependency, minus the Dep field (the
// finaliser only ever needs the already-resolved relative id).
type Dependency struct {
	ID               string
	ExportsNames     bool
	ExportsDefault   bool
	NamedExportsMode bool
	GlobalName       string
	Imports          []ImportSpecifier
	Reexports        []Reexport
}

// Export mirrors linker.RenderedExport.
type Export struct {
	Local         string
	Exported      string
	Hoisted       bool
	Uninitialized bool
	Expression    string
}

// Input is everything a single format finaliser needs, assembled by the
// Renderer per spec.md §4.8.
type Input struct {
	Code         string
	Dependencies []Dependency
	Exports      []Export
	HasExports   bool

	AccessedGlobals []string

	IndentString string
	Intro        string
	Outro        string

	IsEntryModuleFacade bool
	NamedExportsMode    bool
	UsesTopLevelAwait   bool
	VarOrConst          string // "var" or "const", per preferConst

	Interop               bool
	DynamicImportFunction string
	GlobalName            string // this chunk's own umd/iife global, if any

	Warn func(text string)
}

// Finalize dispatches to the generator for f, wraps the result with the
// intro/outro addons, and returns the finalised source (before the chunk
// banner/footer and the output plugin's renderChunk hook, which the caller
// applies around this result).
func Finalize(f format.Format, in Input) (string, error) {
	var code string
	switch f {
	case format.ES:
		code = finalizeES(in)
	case format.CommonJS:
		code = finalizeCJS(in)
	case format.AMD:
		code = finalizeAMD(in)
	case format.UMD:
		code = finalizeUMD(in)
	case format.IIFE:
		code = finalizeIIFE(in)
	case format.SystemJS:
		code = finalizeSystem(in)
	default:
		return "", fmt.Errorf("finalizer: unknown format %v", f)
	}
	return in.Intro + code + in.Outro, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
