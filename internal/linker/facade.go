package linker

import (
	"github.com/bundleforge/chunk/internal/diag"
	"github.com/bundleforge/chunk/internal/graph"
)

// CanModuleBeFacade implements spec.md §4.3's canModuleBeFacade: every
// exposed variable of the chunk must appear in that module's export-name
// map.
func (c *Chunk) CanModuleBeFacade(m graph.Module) bool {
	names := m.ExportNamesByVariable()
	for _, v := range c.exportOrder {
		if _, ok := names[v]; !ok {
			return false
		}
	}
	return true
}

type requiredFacade struct {
	name   string
	module graph.Module
}

// GenerateFacades implements spec.md §4.3.
func (c *Chunk) GenerateFacades() []*Chunk {
	var required []requiredFacade
	for _, m := range c.EntryModules {
		var names []requiredFacade
		for _, n := range m.UserChunkNames() {
			names = append(names, requiredFacade{name: n, module: m})
		}
		if m.IsUserDefinedEntryPoint() && len(m.UserChunkNames()) == 0 {
			names = append(names, requiredFacade{name: "", module: m})
		}
		for _, n := range m.ChunkFileNames() {
			names = append(names, requiredFacade{name: n, module: m})
		}
		if len(names) == 0 {
			names = append(names, requiredFacade{name: "", module: m})
		}
		required = append(required, names...)
	}

	var spawned []*Chunk
	claimedSelf := false
	for _, req := range required {
		if !claimedSelf && c.CanModuleBeFacade(req.module) {
			c.FacadeModule = req.module
			req.module.SetFacadeChunkIndex(c.Index)
			claimedSelf = true
			if len(c.exportOrder) == 0 && req.module.PreserveSignature() == graph.PreserveSignatureStrict && req.module.IsUserDefinedEntryPoint() {
				c.g.Warn(diag.Msg{ID: diag.EmptyFacade, Kind: diag.Warning,
					Text: "Internal module \"" + req.module.ID() + "\" is not exported by entry point facade but its signature could not be preserved without creating an empty chunk"})
			}
			continue
		}

		facade := newFacadeChunk(c, req.module, len(c.allChunks)+len(spawned))
		req.module.SetFacadeChunkIndex(facade.Index)
		spawned = append(spawned, facade)
	}

	if len(spawned) > 0 {
		c.allChunks = append(c.allChunks, spawned...)
		for _, ch := range c.allChunks {
			ch.allChunks = c.allChunks
		}
	}

	return spawned
}

// newFacadeChunk builds an empty chunk whose only dependency is the code
// chunk and whose facadeModule is the signed module (spec.md §4.3).
func newFacadeChunk(code *Chunk, facadeModule graph.Module, index int) *Chunk {
	facade := &Chunk{
		Index:          index,
		FacadeModule:   facadeModule,
		imports:        map[*graph.Variable]bool{},
		exports:        map[*graph.Variable]bool{},
		ExportsByName:  map[string]*graph.Variable{},
		starReexports:  map[string]graph.ExternalModule{},
		UsedModules:    map[graph.Module]bool{},
		RenderedModuleSources: map[graph.Module]graph.RenderedModule{},
		RenderedModules: map[graph.Module]RenderedModuleSummary{},
		dynamicImportResolutions: map[graph.Module]map[int]DynamicImportResolution{},
		Dependencies:   []ChunkDep{{Chunk: code}},
		g:              code.g,
		dynamicEntrySet: code.dynamicEntrySet,
	}
	facade.VariableName = facade.deriveVariableName()
	return facade
}
