package linker

import (
	"github.com/bundleforge/chunk/internal/graph"
	"github.com/bundleforge/chunk/internal/renamer"
)

// GenerateExports implements spec.md §4.2: install the facade module's own
// public names first (if this chunk hosts a signature-preserving or
// dynamically-imported-from-outside facade), then assign the rest either
// mangled or readable names.
func (c *Chunk) GenerateExports(opts Options) {
	remaining := make(map[*graph.Variable]bool, len(c.exportOrder))
	for _, v := range c.exportOrder {
		remaining[v] = true
	}

	if c.FacadeModule != nil && (c.FacadeModule.PreserveSignature() != graph.PreserveSignatureFalse || c.dynamicEntrySet[c.FacadeModule]) {
		for v, names := range c.FacadeModule.ExportNamesByVariable() {
			for _, name := range names {
				c.ExportsByName[name] = v
			}
			delete(remaining, v)
		}
	}

	mangle := opts.shouldMinifyInternalExports()
	namer := renamer.NewExportRenamer()
	// Pre-seed the namer with names already installed by the facade pass so
	// readable-mode assignment doesn't collide with them.
	for name := range c.ExportsByName {
		namer.NextRenamedName(name)
	}

	for _, v := range c.exportOrder {
		if !remaining[v] {
			continue
		}
		var name string
		if mangle {
			name = namer.NextMinifiedName()
		} else {
			name = namer.NextRenamedName(preferredExportName(v))
		}
		c.ExportsByName[name] = v
	}

	c.sortedExportNamesCache = nil
}

func preferredExportName(v *graph.Variable) string {
	if v.ExportName != "" {
		return v.ExportName
	}
	if v.Kind == graph.VarExportDefault {
		return "default"
	}
	return v.Name
}
