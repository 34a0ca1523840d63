// Package linker implements the Chunk entity and its phases: construction,
// link, generateExports, generateFacades, preRender, generateId, render.
// Grounded on esbuild's internal/linker/linker.go's chunkInfo/chunkRepr
// structures, restructured per-concern into separate files since the
// teacher implements a whole-program linker rather than the Rollup-style
// per-chunk facade model spec.md names (see DESIGN.md).
package linker

import (
	"math"
	"sort"

	"github.com/bundleforge/chunk/internal/diag"
	"github.com/bundleforge/chunk/internal/graph"
)

// ExportMode mirrors Chunk.exportMode's three states (spec.md §3).
type ExportMode uint8

const (
	ExportNone ExportMode = iota
	ExportNamed
	ExportDefault
)

func (m ExportMode) String() string {
	switch m {
	case ExportNamed:
		return "named"
	case ExportDefault:
		return "default"
	}
	return "none"
}

// Graph is the narrow collaborator surface this core consumes from the
// module graph (spec.md §6: "moduleById lookup, preserveModules,
// preserveEntrySignatures, warn(diagnostic)").
type Graph interface {
	ModuleByID(id string) (graph.Module, bool)
	PreserveModules() bool
	PreserveEntrySignatures() bool
	Warn(msg diag.Msg)
}

// ChunkDep is a chunk-level dependency edge: after linking, a Chunk depends
// on other Chunks or ExternalModules, never directly on a Module (spec.md
// §3: "dependencies, each element a Chunk or ExternalModule").
type ChunkDep struct {
	Chunk *Chunk
	Ext   graph.ExternalModule
}

func (d ChunkDep) IsExternal() bool { return d.Chunk == nil }
func (d ChunkDep) Key() interface{} {
	if d.Chunk != nil {
		return d.Chunk
	}
	return d.Ext
}

func chunkDepFor(dep graph.Dep, resolve func(graph.Module) *Chunk) ChunkDep {
	if dep.IsExternal() {
		return ChunkDep{Ext: dep.Ext}
	}
	return ChunkDep{Chunk: resolve(dep.Mod)}
}

// RenderedDependency is one entry of Chunk.renderedDependencies (spec.md §4.5).
type RenderedDependency struct {
	Dep              ChunkDep
	ID               string // relative path, filled in at render time
	ExportsNames     bool
	ExportsDefault   bool
	NamedExportsMode bool
	GlobalName       string
	Imports          []ImportSpecifier
	Reexports        []Reexport
}

type ImportSpecifier struct {
	Imported string
	Local    string
}

type Reexport struct {
	Imported         string // name in the origin, or "*"
	Exported         string // name this chunk exposes it under
	NeedsLiveBinding bool
}

// RenderedExport is one entry of Chunk.renderedExports (spec.md §4.5).
type RenderedExport struct {
	Local         string
	Exported      string
	Hoisted       bool
	Uninitialized bool
	Expression    string // set for synthetic named exports
}

// DynamicImportResolution records how prepareDynamicImports (spec.md §4.4
// step 3) decided to lower one dynamic import site.
type DynamicImportResolutionMode uint8

const (
	DynamicAuto DynamicImportResolutionMode = iota
	DynamicNamed
	DynamicExportMode
)

type DynamicImportResolution struct {
	Mode           DynamicImportResolutionMode
	TargetVariable *graph.Variable // set when Mode == DynamicNamed
	TargetChunk    *Chunk          // set when the target is another chunk
	TargetExternal graph.ExternalModule
	ExportMode     ExportMode
}

// RenderedModuleSummary is one entry of Chunk.renderedModules.
type RenderedModuleSummary struct {
	RenderedLength int
}

// Chunk is the core entity of spec.md §3.
type Chunk struct {
	Index int

	ID       string
	IDAssigned bool
	Name     string
	FileName string
	VariableName string
	ManualChunkAlias string

	OrderedModules []graph.Module
	EntryModules   []graph.Module
	FacadeModule   graph.Module

	Dependencies        []ChunkDep
	DynamicDependencies []ChunkDep

	imports       map[*graph.Variable]bool
	importOrder   []*graph.Variable
	exports       map[*graph.Variable]bool
	exportOrder   []*graph.Variable
	ExportsByName map[string]*graph.Variable
	starReexports map[string]graph.ExternalModule

	// exportsObjectVar is a synthetic render target for live-reassigned
	// exports in non-es/non-system formats (spec.md §4.4 step 4): such an
	// export renders as exportsObjectVar.<name> rather than under its own
	// identifier.
	exportsObjectVar *graph.Variable

	ExportMode       ExportMode
	NeedsExportsShim bool

	execIndex int
	isEmpty   bool

	IndentString string
	UsedModules  map[graph.Module]bool

	RenderedModuleSources map[graph.Module]graph.RenderedModule
	RenderedSource        string
	renderedLineCount     int
	RenderedDependencies  []RenderedDependency
	RenderedExports       []RenderedExport
	RenderedModules       map[graph.Module]RenderedModuleSummary

	dynamicImportResolutions map[graph.Module]map[int]DynamicImportResolution

	renderedHash   string
	hasRenderedHash bool

	sortedExportNamesCache []string

	g Graph

	allChunks     []*Chunk
	dynamicEntrySet map[graph.Module]bool
}

func (c *Chunk) chunkAt(idx int) *Chunk {
	if idx < 0 || idx >= len(c.allChunks) {
		return nil
	}
	return c.allChunks[idx]
}

// BuildChunks is the ChunkCoordinator's construction step. moduleGroups is
// the graph layer's pre-decided module-to-chunk partition: an ordered list
// of modules for each output chunk. It assigns every module's ChunkIndex
// before constructing any Chunk (invariant 1: module.chunk === this holds
// for every chunk simultaneously), then computes cross-chunk dynamic-entry
// status once for the whole graph.
func BuildChunks(g Graph, moduleGroups [][]graph.Module) []*Chunk {
	for i, group := range moduleGroups {
		for _, m := range group {
			m.SetChunkIndex(i)
			m.SetFacadeChunkIndex(-1)
		}
	}

	dynamicEntry := computeDynamicEntryModules(moduleGroups)

	chunks := make([]*Chunk, len(moduleGroups))
	for i, group := range moduleGroups {
		chunks[i] = newChunk(g, i, group, dynamicEntry)
	}
	for _, c := range chunks {
		c.allChunks = chunks
	}
	return chunks
}

// computeDynamicEntryModules scans every module's dynamic import sites and
// marks the target module as a dynamic entry when the importer lives in a
// different chunk (spec.md §4.1: "dynamically imported by at least one
// module outside this chunk").
func computeDynamicEntryModules(moduleGroups [][]graph.Module) map[graph.Module]bool {
	result := map[graph.Module]bool{}
	for _, group := range moduleGroups {
		for _, importer := range group {
			for _, site := range importer.DynamicImports() {
				if site.Unresolved || site.Target.Mod == nil {
					continue
				}
				target := site.Target.Mod
				if target.ChunkIndex() != importer.ChunkIndex() {
					result[target] = true
				}
			}
		}
	}
	return result
}

func newChunk(g Graph, index int, orderedModules []graph.Module, dynamicEntry map[graph.Module]bool) *Chunk {
	c := &Chunk{
		Index:          index,
		OrderedModules: orderedModules,
		imports:        map[*graph.Variable]bool{},
		exports:        map[*graph.Variable]bool{},
		ExportsByName:  map[string]*graph.Variable{},
		starReexports:  map[string]graph.ExternalModule{},
		UsedModules:    map[graph.Module]bool{},
		RenderedModuleSources: map[graph.Module]graph.RenderedModule{},
		RenderedModules: map[graph.Module]RenderedModuleSummary{},
		dynamicImportResolutions: map[graph.Module]map[int]DynamicImportResolution{},
		g:              g,
		dynamicEntrySet: dynamicEntry,
	}

	c.execIndex = math.MaxInt32
	if len(orderedModules) > 0 {
		c.execIndex = orderedModules[0].ExecIndex()
	}

	c.isEmpty = true
	for _, m := range orderedModules {
		if m.IsIncluded() {
			c.isEmpty = false
			break
		}
	}

	for _, m := range orderedModules {
		if alias := m.ManualChunkAlias(); alias != "" {
			c.ManualChunkAlias = alias
		}
	}

	for _, m := range orderedModules {
		if m.IsEntryPoint() || dynamicEntry[m] {
			c.EntryModules = append(c.EntryModules, m)
		}
	}

	c.VariableName = c.deriveVariableName()

	return c
}

func (c *Chunk) deriveVariableName() string {
	var nameSource graph.Module
	if len(c.EntryModules) > 0 {
		nameSource = c.EntryModules[0]
	} else if len(c.OrderedModules) > 0 {
		nameSource = c.OrderedModules[len(c.OrderedModules)-1]
	}
	if nameSource == nil {
		return "chunk"
	}
	base := nameSource.ChunkName()
	if base == "" {
		if c.ManualChunkAlias != "" {
			base = c.ManualChunkAlias
		} else {
			base = nameSource.ID()
		}
	}
	return legalizeBaseName(base)
}

func legalizeBaseName(s string) string {
	// Take the last path segment and strip a known extension, same as
	// IdGenerator's name derivation (spec.md §4.9), then legalise it.
	name := s
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			name = name[i+1:]
			break
		}
	}
	for _, ext := range []string{".mjs", ".cjs", ".jsx", ".tsx", ".ts", ".js"} {
		if len(name) > len(ext) && name[len(name)-len(ext):] == ext {
			name = name[:len(name)-len(ext)]
			break
		}
	}
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		ch := name[i]
		isLetter := (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
		isDigit := ch >= '0' && ch <= '9'
		if i == 0 && isDigit {
			out = append(out, '_')
		}
		if isLetter || isDigit {
			out = append(out, ch)
		} else {
			out = append(out, '_')
		}
	}
	if len(out) == 0 {
		return "chunk"
	}
	return string(out)
}

func (c *Chunk) IsEmpty() bool { return c.isEmpty }
func (c *Chunk) ExecIndex() int { return c.execIndex }

// Link implements §4.1's link(): union module-crossing dependencies and set
// up each module's chunk-level imports/exports.
func (c *Chunk) Link() {
	seenDeps := map[interface{}]bool{}
	seenDynDeps := map[interface{}]bool{}

	for _, m := range c.OrderedModules {
		for _, dep := range m.Dependencies() {
			if crossesChunkBoundary(c, dep) {
				cd := chunkDepFor(dep, c.chunkForModule)
				key := cd.Key()
				if !seenDeps[key] {
					seenDeps[key] = true
					c.Dependencies = append(c.Dependencies, cd)
				}
			}
		}
		for _, dep := range m.DynamicDependencies() {
			if crossesChunkBoundary(c, dep) {
				cd := chunkDepFor(dep, c.chunkForModule)
				key := cd.Key()
				if !seenDynDeps[key] {
					seenDynDeps[key] = true
					c.DynamicDependencies = append(c.DynamicDependencies, cd)
				}
			}
		}
		setUpChunkImportsAndExportsForModule(c, m)
	}
}

func (c *Chunk) chunkForModule(m graph.Module) *Chunk {
	return c.chunkAt(m.ChunkIndex())
}

func crossesChunkBoundary(c *Chunk, dep graph.Dep) bool {
	if dep.IsExternal() {
		return true
	}
	return dep.Mod.ChunkIndex() != c.Index
}

// addImport / addExport maintain both the membership set and a stable
// insertion order for deterministic iteration (GetExportNames, rendering).
func (c *Chunk) addImport(v *graph.Variable) {
	if !c.imports[v] {
		c.imports[v] = true
		c.importOrder = append(c.importOrder, v)
	}
}

func (c *Chunk) addExport(v *graph.Variable) {
	if !c.exports[v] {
		c.exports[v] = true
		c.exportOrder = append(c.exportOrder, v)
	}
}

func (c *Chunk) Imports() []*graph.Variable { return c.importOrder }
func (c *Chunk) Exports() []*graph.Variable { return c.exportOrder }

// GetChunkName returns the user/auto-derived name used in [name] filename
// substitution.
func (c *Chunk) GetChunkName() string { return c.VariableName }

// GetExportNames returns exportsByName's keys plus the "*<id>" star-reexport
// keys, sorted and with no duplicates.
func (c *Chunk) GetExportNames() []string {
	if c.sortedExportNamesCache != nil {
		return c.sortedExportNamesCache
	}
	names := make([]string, 0, len(c.ExportsByName)+len(c.starReexports))
	for name := range c.ExportsByName {
		names = append(names, name)
	}
	for name := range c.starReexports {
		names = append(names, name)
	}
	sort.Strings(names)
	c.sortedExportNamesCache = names
	return names
}

// GetVariableExportName finds the external name a variable is exported
// under from this chunk. A miss is an internal-consistency bug per spec.md
// §7.
func (c *Chunk) GetVariableExportName(v *graph.Variable) string {
	for name, candidate := range c.ExportsByName {
		if candidate == v {
			return name
		}
	}
	diag.PanicInternal("no export name registered for variable %q in chunk %q", v.Name, c.VariableName)
	return ""
}

func (c *Chunk) GetImportIds() []string {
	var ids []string
	for _, d := range c.Dependencies {
		ids = append(ids, depID(d))
	}
	return ids
}

func (c *Chunk) GetDynamicImportIds() []string {
	var ids []string
	for _, d := range c.DynamicDependencies {
		ids = append(ids, depID(d))
	}
	return ids
}

func depID(d ChunkDep) string {
	if d.IsExternal() {
		return d.Ext.ID()
	}
	return d.Chunk.VariableName
}

// resetRenderedHash invalidates the memoised content hash, called whenever
// renderedSource changes (spec.md §4.4 step 7: "Invalidate renderedHash").
func (c *Chunk) resetRenderedHash() {
	c.hasRenderedHash = false
	c.renderedHash = ""
}
