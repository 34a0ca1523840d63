package linker

import (
	"sort"

	"github.com/bundleforge/chunk/internal/diag"
	"github.com/bundleforge/chunk/internal/graph"
)

// setUpChunkImportsAndExportsForModule implements spec.md §4.6.
func setUpChunkImportsAndExportsForModule(c *Chunk, m graph.Module) {
	preserveModules := c.g.PreserveModules()

	for _, binding := range m.Imports() {
		if !binding.Origin.IsResolved() || !crossesChunkBoundary(c, binding.Origin) {
			continue
		}
		v := resolveSyntheticOnly(binding.Variable)
		c.addImport(v)
		if !(preserveModules && v.Kind == graph.VarNamespace) {
			if originChunk := c.originChunkFor(binding.Origin); originChunk != nil {
				originChunk.addExport(v)
			}
		}
	}

	mustExposeSignature := (m.IsEntryPoint() && m.PreserveSignature() != graph.PreserveSignatureFalse) ||
		c.dynamicEntrySet[m]
	if mustExposeSignature {
		for v := range m.ExportNamesByVariable() {
			c.addExport(v)
			if v.Kind == graph.VarSyntheticNamedExport {
				c.addImport(v.Original)
			}
		}
		for _, ext := range m.StarReexports() {
			c.starReexports["*"+ext.ID()] = ext
		}
	}

	if m.NamespaceVariableIsIncluded() {
		for name, reexport := range m.ReexportDescriptions() {
			_ = name
			if reexport.OriginModule == nil || reexport.OriginModule.ChunkIndex() == c.Index {
				continue
			}
			v := variableForExportName(reexport.OriginModule, reexport.LocalName)
			if v == nil {
				continue
			}
			c.addImport(v)
			if originChunk := c.chunkAt(reexport.OriginModule.ChunkIndex()); originChunk != nil {
				originChunk.addExport(v)
			}
		}
	}

	for _, site := range m.DynamicImports() {
		if site.Target.Mod != nil && site.Target.Mod.ChunkIndex() == c.Index {
			site.Target.Mod.SetNamespaceVariableIncluded(true)
		}
	}
}

func resolveSyntheticOnly(v *graph.Variable) *graph.Variable {
	if v.Kind == graph.VarSyntheticNamedExport && v.Original != nil {
		return v.Original
	}
	return v
}

func variableForExportName(m graph.Module, name string) *graph.Variable {
	for v, names := range m.ExportNamesByVariable() {
		for _, n := range names {
			if n == name {
				return v
			}
		}
	}
	return nil
}

func (c *Chunk) originChunkFor(dep graph.Dep) *Chunk {
	if dep.IsExternal() {
		return nil
	}
	return c.chunkAt(dep.Mod.ChunkIndex())
}

// GetChunkDependencyDeclarations implements spec.md §4.5's reexports pass
// and imports pass, producing one RenderedDependency per Dependencies
// entry, plus one more for each reexport origin (such as an external
// star-reexport) that is not already among Dependencies.
func (c *Chunk) GetChunkDependencyDeclarations(opts Options) []RenderedDependency {
	byDep := map[interface{}]*RenderedDependency{}
	var order []ChunkDep

	ensure := func(dep ChunkDep) *RenderedDependency {
		key := dep.Key()
		if rd, ok := byDep[key]; ok {
			return rd
		}
		rd := &RenderedDependency{Dep: dep}
		if dep.IsExternal() {
			ext := dep.Ext
			rd.ExportsNames = ext.ExportsNames()
			rd.ExportsDefault = ext.ExportsNamespace()
			for _, d := range ext.Declarations() {
				if d == "default" {
					rd.ExportsDefault = true
				}
			}
			rd.NamedExportsMode = true
		} else {
			rd.ExportsNames = true
			rd.ExportsDefault = false
			rd.NamedExportsMode = dep.Chunk.ExportMode != ExportDefault
		}
		if opts.Format == fmtUMD || opts.Format == fmtIIFE {
			if dep.IsExternal() {
				name := ""
				if opts.Globals != nil {
					name = opts.Globals(dep.Ext.ID())
				}
				if name == "" && (rd.ExportsNames || rd.ExportsDefault) {
					c.g.Warn(diag.Msg{ID: diag.MissingGlobalName, Kind: diag.Warning,
						Text: "No name was provided for external module '" + dep.Ext.ID() + "' in output.globals — guessing '" + guessGlobalName(dep.Ext.ID()) + "'"})
					name = guessGlobalName(dep.Ext.ID())
				}
				rd.GlobalName = name
			}
		}
		byDep[key] = rd
		order = append(order, dep)
		return rd
	}

	for _, dep := range c.Dependencies {
		ensure(dep)
	}

	// Reexports pass, sorted export names for determinism.
	for _, name := range c.GetExportNames() {
		if len(name) > 0 && name[0] == '*' {
			// Star reexport of an external module.
			if ext := c.starReexports[name]; ext != nil {
				rd := ensure(ChunkDep{Ext: ext})
				rd.Reexports = append(rd.Reexports, Reexport{Imported: "*", Exported: "*", NeedsLiveBinding: opts.ExternalLiveBindings})
			}
			continue
		}
		v := c.ExportsByName[name]
		if v == nil || v.Kind == graph.VarSyntheticNamedExport {
			continue
		}
		if v.Module != nil && v.Module.ChunkIndex() == c.Index {
			continue
		}
		var dep ChunkDep
		var importedName string
		needsLive := v.IsReassigned
		if v.Module != nil {
			originChunk := c.chunkAt(v.Module.ChunkIndex())
			dep = ChunkDep{Chunk: originChunk}
			if originChunk != nil {
				importedName = originChunk.GetVariableExportName(v)
			}
		} else if v.Ext != nil {
			dep = ChunkDep{Ext: v.Ext}
			importedName = v.Name
			needsLive = opts.ExternalLiveBindings
		} else {
			continue
		}
		rd := ensure(dep)
		rd.Reexports = append(rd.Reexports, Reexport{Imported: importedName, Exported: name, NeedsLiveBinding: needsLive})
	}

	// Imports pass.
	for _, dep := range c.Dependencies {
		rd := ensure(dep)
		seen := map[*graph.Variable]bool{}
		for _, v := range c.Imports() {
			resolved := v.Resolve()
			origin := c.chunkDepOf(resolved)
			if origin.Key() != dep.Key() {
				continue
			}
			if seen[resolved] {
				continue
			}
			seen[resolved] = true
			var imported string
			if dep.IsExternal() {
				imported = resolved.Name
			} else if dep.Chunk != nil {
				imported = dep.Chunk.GetVariableExportName(resolved)
			}
			rd.Imports = append(rd.Imports, ImportSpecifier{Imported: imported, Local: resolved.RenderName()})
		}
	}

	result := make([]RenderedDependency, 0, len(order))
	for _, dep := range order {
		result = append(result, *byDep[dep.Key()])
	}
	return result
}

// chunkDepOf reports which chunk-level dependency a (resolved) variable's
// declaration originates from, for comparison against Chunk.Dependencies
// entries in the imports pass.
func (c *Chunk) chunkDepOf(v *graph.Variable) ChunkDep {
	if v.Module != nil {
		return ChunkDep{Chunk: c.chunkAt(v.Module.ChunkIndex())}
	}
	return ChunkDep{Ext: v.Ext}
}

func guessGlobalName(id string) string {
	out := make([]byte, 0, len(id))
	upperNext := false
	for i := 0; i < len(id); i++ {
		ch := id[i]
		isLetter := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
		isDigit := ch >= '0' && ch <= '9'
		if !isLetter && !isDigit {
			upperNext = true
			continue
		}
		if upperNext && ch >= 'a' && ch <= 'z' {
			ch = ch - 'a' + 'A'
		}
		upperNext = false
		out = append(out, ch)
	}
	return string(out)
}

// GetChunkExportDeclarations implements spec.md §4.5's export-declarations
// step.
func (c *Chunk) GetChunkExportDeclarations(opts Options) []RenderedExport {
	var out []RenderedExport
	for _, name := range c.GetExportNames() {
		if len(name) > 0 && name[0] == '*' {
			continue
		}
		v := c.ExportsByName[name]
		if v == nil {
			continue
		}
		re := RenderedExport{Exported: name, Local: v.RenderName()}
		switch v.Kind {
		case graph.VarLocal:
			re.Hoisted = v.IsHoisted
			re.Uninitialized = v.IsUninitialized
		case graph.VarSyntheticNamedExport:
			re.Expression = v.Original.RenderName()
		}
		out = append(out, re)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Exported < out[j].Exported })
	return out
}
