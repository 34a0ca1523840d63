package graph

// StaticModule is a plain-data Module implementation used by this core's
// own tests, standing in for the real parser/graph-builder (out of scope).
type StaticModule struct {
	IDValue        string
	ExecIndexValue int
	Included       bool

	ImportsValue              []ImportBinding
	DependenciesValue         []Dep
	DynamicDependenciesValue  []Dep
	DynamicImportsValue       []DynamicImportSite
	ExportNamesByVariableValue map[*Variable][]string
	ReexportsValue            map[string]Reexport

	Body string // rendered verbatim; real modules would print their own AST

	EntryPoint             bool
	UserDefinedEntryPoint  bool
	Preserve               PreserveSignature
	ManualChunkAliasValue  string
	UserChunkNamesValue    []string
	ChunkFileNamesValue    []string
	ChunkNameValue         string

	StarReexportsValue []ExternalModule
	AccessedGlobalsValue []string
	TopLevelAwait        bool

	Namespace        *Variable
	NamespaceIncluded bool
	NamespaceHoisted  bool

	DynamicImportMarkersValue []string

	Scope       *Scope
	Nested      []*Scope

	chunkIndex       int
	facadeChunkIndex int
}

func NewStaticModule(id string, execIndex int) *StaticModule {
	return &StaticModule{
		IDValue:        id,
		ExecIndexValue: execIndex,
		Included:       true,
		chunkIndex:     -1,
		facadeChunkIndex: -1,
		Scope:          &Scope{},
	}
}

func (m *StaticModule) ID() string        { return m.IDValue }
func (m *StaticModule) ExecIndex() int    { return m.ExecIndexValue }
func (m *StaticModule) IsIncluded() bool  { return m.Included }

func (m *StaticModule) Imports() []ImportBinding           { return m.ImportsValue }
func (m *StaticModule) Dependencies() []Dep                { return m.DependenciesValue }
func (m *StaticModule) DynamicDependencies() []Dep          { return m.DynamicDependenciesValue }
func (m *StaticModule) DynamicImports() []DynamicImportSite { return m.DynamicImportsValue }

func (m *StaticModule) ExportNamesByVariable() map[*Variable][]string {
	if m.ExportNamesByVariableValue == nil {
		return map[*Variable][]string{}
	}
	return m.ExportNamesByVariableValue
}

func (m *StaticModule) StarReexports() []ExternalModule { return m.StarReexportsValue }

func (m *StaticModule) ReexportDescriptions() map[string]Reexport {
	if m.ReexportsValue == nil {
		return map[string]Reexport{}
	}
	return m.ReexportsValue
}

func (m *StaticModule) Render(options RenderOptions) RenderedModule {
	return RenderedModule{Code: m.Body, Lines: countLines(m.Body), DynamicImportMarkers: m.DynamicImportMarkersValue}
}

func countLines(s string) int {
	n := 1
	for _, r := range s {
		if r == '\n' {
			n++
		}
	}
	return n
}

func (m *StaticModule) AccessedGlobals() []string { return m.AccessedGlobalsValue }
func (m *StaticModule) UsesTopLevelAwait() bool   { return m.TopLevelAwait }

func (m *StaticModule) IsEntryPoint() bool             { return m.EntryPoint }
func (m *StaticModule) IsUserDefinedEntryPoint() bool  { return m.UserDefinedEntryPoint }
func (m *StaticModule) PreserveSignature() PreserveSignature { return m.Preserve }
func (m *StaticModule) ManualChunkAlias() string       { return m.ManualChunkAliasValue }
func (m *StaticModule) UserChunkNames() []string       { return m.UserChunkNamesValue }
func (m *StaticModule) ChunkFileNames() []string       { return m.ChunkFileNamesValue }

func (m *StaticModule) NamespaceVariable() *Variable { return m.Namespace }
func (m *StaticModule) NamespaceVariableIsIncluded() bool { return m.NamespaceIncluded }
func (m *StaticModule) SetNamespaceVariableIncluded(v bool) { m.NamespaceIncluded = v }
func (m *StaticModule) NamespaceObjectHoisted() bool { return m.NamespaceHoisted }

func (m *StaticModule) TopLevelScope() *Scope { return m.Scope }
func (m *StaticModule) NestedScopes() []*Scope { return m.Nested }

func (m *StaticModule) ChunkIndex() int         { return m.chunkIndex }
func (m *StaticModule) SetChunkIndex(i int)     { m.chunkIndex = i }
func (m *StaticModule) FacadeChunkIndex() int     { return m.facadeChunkIndex }
func (m *StaticModule) SetFacadeChunkIndex(i int) { m.facadeChunkIndex = i }

func (m *StaticModule) ChunkName() string { return m.ChunkNameValue }

// StaticExternalModule is a plain-data ExternalModule implementation.
type StaticExternalModule struct {
	IDValue           string
	renderPath        string
	Renormalize       bool
	VariableNameValue string
	ExportsNamesValue bool
	ExportsNamespaceValue bool
	DeclarationsValue []string
}

func NewStaticExternalModule(id string) *StaticExternalModule {
	return &StaticExternalModule{IDValue: id, renderPath: id, ExportsNamesValue: true}
}

func (e *StaticExternalModule) ID() string                  { return e.IDValue }
func (e *StaticExternalModule) RenderPath() string           { return e.renderPath }
func (e *StaticExternalModule) RenormalizeRenderPath() bool   { return e.Renormalize }
func (e *StaticExternalModule) VariableName() string         { return e.VariableNameValue }
func (e *StaticExternalModule) ExportsNames() bool            { return e.ExportsNamesValue }
func (e *StaticExternalModule) ExportsNamespace() bool        { return e.ExportsNamespaceValue }
func (e *StaticExternalModule) Declarations() []string        { return e.DeclarationsValue }
func (e *StaticExternalModule) SetRenderPath(base string)      { e.renderPath = base }
