// Package graph defines the external entities the chunk core reads but does
// not itself construct: Module, ExternalModule, and Variable (spec.md §3).
// A real implementation is produced by the parser/tree-shaker/graph-builder
// this core's spec explicitly places out of scope; this package also ships
// a plain-data implementation (static.go) used by the core's own test suite,
// mirroring how esbuild's bundler_tests package builds fixtures without a
// real file system.
//
// Module/Chunk back-references are modeled as integer indices rather than
// pointers (ChunkIndex, FacadeChunkIndex) to avoid an import cycle between
// this package and internal/linker, exactly as esbuild's own
// graph.LinkerFile.EntryPointChunkIndex is an index rather than a *Chunk.
package graph

// VarKind tags the Variable union described in spec.md §9.
type VarKind uint8

const (
	VarLocal VarKind = iota
	VarExportDefault
	VarNamespace
	VarSyntheticNamedExport
	VarExportShim
	VarExternal
)

// PreserveSignature mirrors Module.preserveSignature's three states.
type PreserveSignature uint8

const (
	PreserveSignatureFalse PreserveSignature = iota
	PreserveSignatureStrict
	PreserveSignatureAllowExtension
)

// Variable is a binding: a local declaration, a default export, a namespace
// object, a synthesized named export, an export shim, or an external
// module's exposed name.
type Variable struct {
	Kind   VarKind
	Name   string
	Module Module         // owning module; nil when Kind == VarExternal
	Ext    ExternalModule // set when Kind == VarExternal

	IsReassigned bool
	ExportName   string

	// IsHoisted marks a VarLocal whose declaration is a function declaration
	// (or a default-exported function declaration): spec.md §4.5's
	// "hoisted" flag on export declarations. IsUninitialized marks a
	// VarLocal initialised to the undefined sentinel. Both are set by the
	// real AST-backed Module implementation (out of scope here); this core
	// only reads them.
	IsHoisted       bool
	IsUninitialized bool

	// Original is the delegate for ExportDefault and SyntheticNamedExport
	// variables: "ExportDefaultVariable (delegates to an original variable)"
	// and "SyntheticNamedExportVariable (synthesises a named export from a
	// default export)".
	Original *Variable

	renderName     string
	renderObject   *Variable
	renderProperty string
}

// Resolve follows ExportDefault/SyntheticNamedExport delegation to the
// underlying variable, the operation spec.md §4.5's imports pass performs
// ("ExportDefaultVariable is dereferenced to its original variable").
func (v *Variable) Resolve() *Variable {
	for v.Original != nil && (v.Kind == VarExportDefault || v.Kind == VarSyntheticNamedExport) {
		v = v.Original
	}
	return v
}

// SetRenderName installs a plain-identifier render name (Deconflicter /
// setIdentifierRenderResolutions, spec.md §4.4 step 4 and §4.7).
func (v *Variable) SetRenderName(name string) {
	v.renderName = name
	v.renderObject = nil
	v.renderProperty = ""
}

// SetRenderAsProperty installs a "(object, property)" render-name override,
// used when a live-reassigned export renders as a property access on an
// `exports` object in non-es/system formats (spec.md §4.4 step 4).
func (v *Variable) SetRenderAsProperty(object *Variable, property string) {
	v.renderObject = object
	v.renderProperty = property
	v.renderName = ""
}

func (v *Variable) IsRenderedAsProperty() bool { return v.renderObject != nil }

// RenderName returns the plain identifier this variable renders as. Callers
// must check IsRenderedAsProperty first when the property form is relevant.
func (v *Variable) RenderName() string {
	if v.renderName != "" {
		return v.renderName
	}
	return v.Name
}

func (v *Variable) RenderObjectAndProperty() (*Variable, string) {
	return v.renderObject, v.renderProperty
}

// OriginModule is the module (if any) in whose chunk this variable's
// declaration lives; external variables have no origin module.
func (v *Variable) OriginModule() Module { return v.Module }

// Scope models one lexical scope for the purposes of the Deconflicter
// (spec.md §4.7): the set of variables declared directly in it, plus child
// scopes. Only top-level (module) scopes participate in cross-module
// renaming; nested scopes are walked so that a nested declaration which
// happens to collide with a hoisted cross-module rename is also resolved.
type Scope struct {
	Members  []*Variable
	Children []*Scope
}

// Dep is a dependency edge target: exactly one of Mod/Ext is set, tagging it
// {Chunk | External} per spec.md §9.
type Dep struct {
	Mod Module
	Ext ExternalModule
}

func (d Dep) IsExternal() bool  { return d.Mod == nil }
func (d Dep) IsResolved() bool  { return d.Mod != nil || d.Ext != nil }
func (d Dep) Key() interface{} {
	if d.Mod != nil {
		return d.Mod
	}
	return d.Ext
}

func ModDep(m Module) Dep    { return Dep{Mod: m} }
func ExtDep(e ExternalModule) Dep { return Dep{Ext: e} }

// ImportBinding is one import site: a variable consumed by the importing
// module and the (already-resolved, per spec.md §1 out-of-scope resolver)
// origin it was bound to.
type ImportBinding struct {
	Variable *Variable
	Origin   Dep
}

// DynamicImportSite is one dynamic `import()` call site.
type DynamicImportSite struct {
	Target       Dep
	Unresolved   bool
	ArgumentText string // preserved verbatim when Unresolved (spec.md §4.8)
}

// Reexport is one `reexportDescriptions` entry: an exported name re-bound to
// another module's local name.
type Reexport struct {
	OriginModule Module
	LocalName    string
}

// RenderOptions is threaded into Module.Render, letting the module's own
// printer (out of scope here) consult the chunk's Deconflicter for the
// render-name of any variable it prints.
type RenderOptions struct {
	IndentString string
	Compact      bool
	NameForVariable func(v *Variable) string
}

// RenderedModule is the editable source buffer Module.Render returns: the
// module's own rendered body plus a line-granularity mapping back to its
// original source, sufficient for the Renderer to compose a chunk-level
// source map (spec.md §4.4, §9 "Source buffers").
type RenderedModule struct {
	Code string
	// Lines is the number of lines in Code; generated line i of Code maps
	// 1:1 to original line i of the module's source. This is the
	// simplification this module makes in place of a full piece-table magic
	// string: modules are assumed to render without line-shuffling relative
	// to their own source, which holds for the concatenation-only rewrites
	// this core performs (see DESIGN.md).
	Lines int

	// DynamicImportMarkers holds one placeholder token per DynamicImports()
	// site, in that slice's order. A real AST printer embeds each marker
	// verbatim in Code in place of that `import()` call; once dependency
	// chunk ids are known, Chunk.Render substitutes every marker for the
	// resolved literal/path decided by prepareDynamicImports (spec.md §4.8's
	// finaliseDynamicImports). A zero-length (or nil) entry at index i means
	// that site needs no rewrite.
	DynamicImportMarkers []string
}

// Module is the external entity spec.md §3 describes.
type Module interface {
	ID() string
	ExecIndex() int
	IsIncluded() bool

	Imports() []ImportBinding
	Dependencies() []Dep
	DynamicDependencies() []Dep
	DynamicImports() []DynamicImportSite

	ExportNamesByVariable() map[*Variable][]string
	ReexportDescriptions() map[string]Reexport
	// StarReexports lists external modules this module re-exports
	// everything from ("export * from '...'"), surfaced in a chunk's
	// exportsByName under a "*<id>" key (spec.md §4.5).
	StarReexports() []ExternalModule

	Render(options RenderOptions) RenderedModule

	// AccessedGlobals lists the global identifiers (e.g. "Buffer", "process")
	// this module's body references, aggregated by the Finaliser into a
	// chunk-wide accessedGlobals set (spec.md §4.8).
	AccessedGlobals() []string
	// UsesTopLevelAwait reports whether this module's body contains a
	// top-level await expression (spec.md §4.8, §8 scenario 3).
	UsesTopLevelAwait() bool

	IsEntryPoint() bool
	IsUserDefinedEntryPoint() bool
	PreserveSignature() PreserveSignature
	ManualChunkAlias() string
	UserChunkNames() []string
	ChunkFileNames() []string

	// NamespaceVariable is the variable representing this module's namespace
	// object, or nil if the module never needs one materialised.
	NamespaceVariable() *Variable
	// NamespaceVariableIsIncluded reports whether the namespace object is
	// actually live (spec.md §4.6: "For included namespace objects...").
	NamespaceVariableIsIncluded() bool
	SetNamespaceVariableIncluded(bool)
	// NamespaceObjectHoisted reports the namespace's own placement preference
	// (spec.md §4.4 step 5): true renders its object literal before every
	// module in the chunk, false renders it in place immediately after this
	// module's own code.
	NamespaceObjectHoisted() bool

	TopLevelScope() *Scope
	NestedScopes() []*Scope

	ChunkIndex() int
	SetChunkIndex(int)
	FacadeChunkIndex() int
	SetFacadeChunkIndex(int)

	ChunkName() string
}

// ExternalModule is the external entity spec.md §3 describes for modules
// resolved outside the graph (e.g. npm packages left unbundled).
type ExternalModule interface {
	ID() string
	RenderPath() string
	RenormalizeRenderPath() bool
	VariableName() string
	ExportsNames() bool
	ExportsNamespace() bool
	Declarations() []string
	SetRenderPath(base string)
}
