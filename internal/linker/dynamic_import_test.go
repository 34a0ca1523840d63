package linker

import (
	"testing"

	"github.com/bundleforge/chunk/internal/format"
	"github.com/bundleforge/chunk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPrepareDynamicImportsResolvesSameChunkAsNamed covers spec.md §4.4 step
// 3's DynamicNamed case: a dynamic import whose target landed in the
// importer's own chunk resolves to the target's namespace variable rather
// than a cross-chunk Promise chain.
func TestPrepareDynamicImportsResolvesSameChunkAsNamed(t *testing.T) {
	target := graph.NewStaticModule("target.js", 0)
	ns := &graph.Variable{Kind: graph.VarLocal, Name: "target_js"}
	target.Namespace = ns
	target.NamespaceIncluded = true

	importer := graph.NewStaticModule("importer.js", 1)
	importer.DynamicImportsValue = []graph.DynamicImportSite{
		{Target: graph.ModDep(target)},
	}

	g := newFakeGraph(target, importer)
	c := singleGroupChunk(g, target, importer)

	c.prepareDynamicImports()

	res := c.dynamicImportResolutions[importer][0]
	assert.Equal(t, DynamicNamed, res.Mode)
	assert.Same(t, ns, res.TargetVariable)
}

// TestPrepareDynamicImportsResolvesCrossChunkAsExportMode covers the
// DynamicExportMode case: the target landed in a different chunk, so the
// resolution records that chunk (and its export mode) for the await-import()
// lowering.
func TestPrepareDynamicImportsResolvesCrossChunkAsExportMode(t *testing.T) {
	target := graph.NewStaticModule("target.js", 0)
	importer := graph.NewStaticModule("importer.js", 1)
	importer.DynamicImportsValue = []graph.DynamicImportSite{
		{Target: graph.ModDep(target)},
	}

	g := newFakeGraph(target, importer)
	chunks := BuildChunks(g, [][]graph.Module{{target}, {importer}})
	for _, c := range chunks {
		c.Link()
	}
	targetChunk, importerChunk := chunks[0], chunks[1]

	importerChunk.prepareDynamicImports()

	res := importerChunk.dynamicImportResolutions[importer][0]
	assert.Equal(t, DynamicExportMode, res.Mode)
	assert.Same(t, targetChunk, res.TargetChunk)
}

// TestPrepareDynamicImportsResolvesExternalAndUnresolvedAsAuto covers the
// DynamicAuto fallback for an external target and for a call whose
// specifier could not be resolved at all.
func TestPrepareDynamicImportsResolvesExternalAndUnresolvedAsAuto(t *testing.T) {
	ext := graph.NewStaticExternalModule("left-pad")
	importer := graph.NewStaticModule("importer.js", 0)
	importer.DynamicImportsValue = []graph.DynamicImportSite{
		{Target: graph.ExtDep(ext)},
		{Target: graph.Dep{}, Unresolved: true, ArgumentText: "computed()"},
	}

	g := newFakeGraph(importer)
	c := singleGroupChunk(g, importer)
	c.prepareDynamicImports()

	resExternal := c.dynamicImportResolutions[importer][0]
	assert.Equal(t, DynamicAuto, resExternal.Mode)
	assert.Same(t, ext, resExternal.TargetExternal)

	resUnresolved := c.dynamicImportResolutions[importer][1]
	assert.Equal(t, DynamicAuto, resUnresolved.Mode)
}

// TestHoistTransitiveImportsFlattensDependencyClosureForFacade covers §4.4
// step 1: a facade's own direct dependency's further dependencies get
// front-loaded into the facade's dependency list, each exactly once.
func TestHoistTransitiveImportsFlattensDependencyClosureForFacade(t *testing.T) {
	leaf := newMinimalChunk(newFakeGraph(), 0, "")
	leaf.VariableName = "leaf"
	mid := newMinimalChunk(newFakeGraph(), 1, "")
	mid.VariableName = "mid"
	mid.Dependencies = []ChunkDep{{Chunk: leaf}}

	entry := graph.NewStaticModule("entry.js", 2)
	facade := newMinimalChunk(newFakeGraph(), 2, "")
	facade.VariableName = "entry"
	facade.FacadeModule = entry
	facade.Dependencies = []ChunkDep{{Chunk: mid}}

	opts := Options{Format: format.ES}
	require.True(t, opts.shouldHoistTransitiveImports())

	facade.hoistTransitiveImports()

	require.Len(t, facade.Dependencies, 2)
	assert.Same(t, mid, facade.Dependencies[0].Chunk)
	assert.Same(t, leaf, facade.Dependencies[1].Chunk)
}

func TestShouldHoistTransitiveImportsDefaultsTrueButHonorsOverride(t *testing.T) {
	assert.True(t, Options{}.shouldHoistTransitiveImports())

	disabled := false
	assert.False(t, Options{HoistTransitiveImports: &disabled}.shouldHoistTransitiveImports())
}
