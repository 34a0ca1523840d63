package linker

import (
	"math"
	"sort"
	"strings"

	"github.com/bundleforge/chunk/internal/diag"
	"github.com/bundleforge/chunk/internal/graph"
	"github.com/bundleforge/chunk/internal/renamer"
)

// missingExportShimName is the identifier the exports-shim declaration binds,
// reserved across the chunk's Deconflicter pass whenever needed.
const missingExportShimName = "missingExportShim"

// interopDefaultHelperName is reserved for cjs output, where a default-interop
// helper is assumed to live under this name (spec.md §4.4 step 4).
const interopDefaultHelperName = "_interopDefault"

// PreRender implements spec.md §4.4: concatenate module sources, resolve
// dynamic imports, deconflict identifiers, and compute the rendered
// dependency/export declarations. Must run after generateExports and
// generateFacades.
func (c *Chunk) PreRender(opts Options, inputBase string) {
	preserveModules := c.g.PreserveModules()

	if opts.shouldHoistTransitiveImports() && !preserveModules && c.FacadeModule != nil {
		c.hoistTransitiveImports()
	}

	sort.SliceStable(c.Dependencies, func(i, j int) bool {
		return depExecIndex(c.Dependencies[i]) < depExecIndex(c.Dependencies[j])
	})

	c.prepareDynamicImports()

	reserved := c.setIdentifierRenderResolutions(opts)
	renamer.Deconflict(reserved, c.collectTopLevelVars(), c.collectNestedScopes())

	c.concatenateModules(opts)

	if c.NeedsExportsShim {
		keyword := "var"
		if opts.PreferConst {
			keyword = "const"
		}
		shimLine := keyword + " " + missingExportShimName + " = void 0;"
		if c.RenderedSource == "" {
			c.RenderedSource = shimLine
		} else {
			c.RenderedSource = shimLine + "\n" + c.RenderedSource
		}
	}

	if !opts.Compact {
		c.RenderedSource = strings.TrimSpace(c.RenderedSource)
	}
	c.resetRenderedHash()

	if c.RenderedSource == "" && len(c.ExportsByName) == 0 && len(c.starReexports) == 0 &&
		len(c.Dependencies) == 0 {
		c.g.Warn(diag.Msg{ID: diag.EmptyBundle, Kind: diag.Warning,
			Text: "Generated an empty chunk: \"" + c.VariableName + "\""})
	}

	c.setExternalRenderPaths(inputBase)
	c.RenderedDependencies = c.GetChunkDependencyDeclarations(opts)
	c.RenderedExports = c.GetChunkExportDeclarations(opts)
}

func depExecIndex(d ChunkDep) int {
	if d.Chunk != nil {
		return d.Chunk.execIndex
	}
	return math.MaxInt32
}

// hoistTransitiveImports implements spec.md §4.4 step 1: front-load a facade
// chunk's direct dependencies' own dependency closures so the entry point
// need not chain-await sub-chunks at runtime.
func (c *Chunk) hoistTransitiveImports() {
	seen := map[interface{}]bool{}
	var flattened []ChunkDep

	var walk func(dep ChunkDep)
	walk = func(dep ChunkDep) {
		key := dep.Key()
		if seen[key] {
			return
		}
		seen[key] = true
		flattened = append(flattened, dep)
		if dep.Chunk != nil && dep.Chunk != c {
			for _, sub := range dep.Chunk.Dependencies {
				walk(sub)
			}
		}
	}

	for _, dep := range c.Dependencies {
		walk(dep)
	}
	c.Dependencies = flattened
}

// prepareDynamicImports implements spec.md §4.4 step 3.
func (c *Chunk) prepareDynamicImports() {
	for _, m := range c.OrderedModules {
		sites := m.DynamicImports()
		if len(sites) == 0 {
			continue
		}
		resolved := make(map[int]DynamicImportResolution, len(sites))
		for i, site := range sites {
			switch {
			case site.Unresolved || !site.Target.IsResolved():
				resolved[i] = DynamicImportResolution{Mode: DynamicAuto}
			case site.Target.IsExternal():
				resolved[i] = DynamicImportResolution{Mode: DynamicAuto, TargetExternal: site.Target.Ext}
			case site.Target.Mod.ChunkIndex() == c.Index:
				resolved[i] = DynamicImportResolution{Mode: DynamicNamed, TargetVariable: site.Target.Mod.NamespaceVariable()}
			default:
				targetChunk := c.chunkAt(site.Target.Mod.ChunkIndex())
				res := DynamicImportResolution{Mode: DynamicExportMode, TargetChunk: targetChunk}
				if targetChunk != nil {
					res.ExportMode = targetChunk.ExportMode
				}
				resolved[i] = res
			}
		}
		c.dynamicImportResolutions[m] = resolved
	}
}

// setIdentifierRenderResolutions implements spec.md §4.4 step 4: decide how
// each export renders (plain identifier vs. property access on an `exports`
// object), mark needsExportsShim, and build the reserved-name set the
// Deconflicter must avoid.
func (c *Chunk) setIdentifierRenderResolutions(opts Options) map[string]bool {
	for _, v := range c.exportOrder {
		if v.Kind == graph.VarExportShim {
			c.NeedsExportsShim = true
			break
		}
	}

	needsExportsObject := !opts.Format.KeepsESMSyntax() && opts.Format != fmtSystem

	reserved := map[string]bool{}
	if c.NeedsExportsShim {
		reserved[missingExportShimName] = true
	}
	if needsExportsObject {
		reserved["exports"] = true
	}
	if opts.Format == fmtCommonJS {
		reserved["require"] = true
		reserved["module"] = true
		reserved["__filename"] = true
		reserved["__dirname"] = true
		reserved[interopDefaultHelperName] = true
	}

	if needsExportsObject && c.exportsObjectVar == nil {
		c.exportsObjectVar = &graph.Variable{Kind: graph.VarLocal, Name: "exports"}
	}

	for name, v := range c.ExportsByName {
		if v == nil || v.Kind == graph.VarSyntheticNamedExport {
			continue
		}
		v.ExportName = name
		if needsExportsObject && v.IsReassigned && !v.IsRenderedAsProperty() {
			v.SetRenderAsProperty(c.exportsObjectVar, name)
		}
	}

	return reserved
}

// collectTopLevelVars gathers, in module order, every variable declared at
// the top level of an included module (plus any live namespace object), the
// flat scope the Deconflicter treats as a single merged top level since
// concatenation merges all modules' top levels into one scope.
func (c *Chunk) collectTopLevelVars() []*graph.Variable {
	var vars []*graph.Variable
	for _, m := range c.OrderedModules {
		if !m.IsIncluded() {
			continue
		}
		if ns := m.NamespaceVariable(); ns != nil && m.NamespaceVariableIsIncluded() {
			vars = append(vars, ns)
		}
		if scope := m.TopLevelScope(); scope != nil {
			vars = append(vars, scope.Members...)
		}
	}
	return vars
}

// collectNestedScopes gathers each included module's nested scope trees, in
// module order, walked after the top level so nested declarations avoid
// colliding with the already-assigned top-level renames.
func (c *Chunk) collectNestedScopes() []*graph.Scope {
	var scopes []*graph.Scope
	for _, m := range c.OrderedModules {
		if !m.IsIncluded() {
			continue
		}
		if scope := m.TopLevelScope(); scope != nil {
			scopes = append(scopes, scope.Children...)
		}
	}
	return scopes
}

// concatenateModules implements spec.md §4.4 step 5, including "if the
// module's namespace object is live, render its block (either hoisted above
// all modules or appended in place, per the namespace's own preference)".
func (c *Chunk) concatenateModules(opts Options) {
	sep := "\n\n"
	if opts.Compact {
		sep = ""
	}

	renderOpts := graph.RenderOptions{
		IndentString:    c.IndentString,
		Compact:         opts.Compact,
		NameForVariable: func(v *graph.Variable) string { return v.RenderName() },
	}

	var sb strings.Builder
	first := true
	totalLines := 0

	writeSep := func() {
		if !first {
			sb.WriteString(sep)
		}
		first = false
	}

	for _, m := range c.OrderedModules {
		if !m.IsIncluded() || !isNamespaceLive(m) || !m.NamespaceObjectHoisted() {
			continue
		}
		decl := c.namespaceObjectDeclaration(m, opts)
		writeSep()
		sb.WriteString(decl)
		totalLines += 1 + strings.Count(decl, "\n")
	}

	for _, m := range c.OrderedModules {
		if !m.IsIncluded() {
			continue
		}
		c.UsedModules[m] = true

		rendered := m.Render(renderOpts)
		code := rendered.Code
		if opts.Compact && hasTrailingLineComment(code) {
			code += "\n"
		}

		c.RenderedModuleSources[m] = rendered
		c.RenderedModules[m] = RenderedModuleSummary{RenderedLength: len(code)}

		writeSep()
		sb.WriteString(code)
		totalLines += rendered.Lines

		if isNamespaceLive(m) && !m.NamespaceObjectHoisted() {
			decl := c.namespaceObjectDeclaration(m, opts)
			sb.WriteString(sep)
			sb.WriteString(decl)
			totalLines += 1 + strings.Count(decl, "\n")
		}
	}

	c.RenderedSource = sb.String()
	c.renderedLineCount = totalLines
}

func isNamespaceLive(m graph.Module) bool {
	return m.NamespaceVariable() != nil && m.NamespaceVariableIsIncluded()
}

// namespaceObjectDeclaration renders a module's live namespace object as a
// frozen (when opts.Freeze) plain-object literal exposing every one of its
// exported bindings, the "synthesise the namespace block" half of spec.md
// §4.4 step 5.
func (c *Chunk) namespaceObjectDeclaration(m graph.Module, opts Options) string {
	ns := m.NamespaceVariable()

	type namedProp struct{ name, value string }
	var props []namedProp
	for v, names := range m.ExportNamesByVariable() {
		for _, name := range names {
			props = append(props, namedProp{name, v.RenderName()})
		}
	}
	sort.Slice(props, func(i, j int) bool { return props[i].name < props[j].name })

	var body strings.Builder
	body.WriteString("{\n  __proto__: null")
	for _, p := range props {
		body.WriteString(",\n  " + p.name + ": " + p.value)
	}
	body.WriteString("\n}")

	literal := body.String()
	if opts.Freeze {
		literal = "/*#__PURE__*/Object.freeze(" + literal + ")"
	}

	keyword := "var"
	if opts.PreferConst {
		keyword = "const"
	}
	return keyword + " " + ns.RenderName() + " = " + literal + ";"
}

func hasTrailingLineComment(code string) bool {
	lastLine := code
	if idx := strings.LastIndexByte(code, '\n'); idx >= 0 {
		lastLine = code[idx+1:]
	}
	return strings.Contains(lastLine, "//")
}

// setExternalRenderPaths implements spec.md §4.4 step 9's call into
// ExternalModule.setRenderPath for every external dependency this chunk
// references, directly or dynamically.
func (c *Chunk) setExternalRenderPaths(inputBase string) {
	for _, dep := range c.Dependencies {
		if dep.IsExternal() {
			dep.Ext.SetRenderPath(inputBase)
		}
	}
	for _, dep := range c.DynamicDependencies {
		if dep.IsExternal() {
			dep.Ext.SetRenderPath(inputBase)
		}
	}
}
