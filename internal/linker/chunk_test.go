package linker

import (
	"testing"

	"github.com/bundleforge/chunk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetExportNamesSortedAndDeduped(t *testing.T) {
	c := &Chunk{
		ExportsByName: map[string]*graph.Variable{
			"zeta":  {Kind: graph.VarLocal, Name: "zeta"},
			"alpha": {Kind: graph.VarLocal, Name: "alpha"},
			"mu":    {Kind: graph.VarLocal, Name: "mu"},
		},
		starReexports: map[string]graph.ExternalModule{},
	}

	names := c.GetExportNames()
	assert.Equal(t, []string{"alpha", "mu", "zeta"}, names)

	// Calling twice must return the identical cached slice content (no
	// reordering, no duplication) -- testable property 1.
	assert.Equal(t, names, c.GetExportNames())
}

func TestLinkUnionsCrossChunkDependenciesWithoutDuplication(t *testing.T) {
	dep := graph.NewStaticModule("dep.js", 0)
	a := graph.NewStaticModule("a.js", 1)
	b := graph.NewStaticModule("b.js", 2)
	a.DependenciesValue = []graph.Dep{graph.ModDep(dep)}
	b.DependenciesValue = []graph.Dep{graph.ModDep(dep)}

	g := newFakeGraph(dep, a, b)
	chunks := BuildChunks(g, [][]graph.Module{{dep}, {a, b}})
	for _, c := range chunks {
		c.Link()
	}

	abChunk := chunks[1]
	require.Len(t, abChunk.Dependencies, 1, "dep.js referenced by both a.js and b.js must appear once")
	assert.Same(t, chunks[0], abChunk.Dependencies[0].Chunk)
}

func TestCrossesChunkBoundary(t *testing.T) {
	m1 := graph.NewStaticModule("m1.js", 0)
	m2 := graph.NewStaticModule("m2.js", 1)
	ext := graph.NewStaticExternalModule("left-pad")

	g := newFakeGraph(m1, m2)
	chunks := BuildChunks(g, [][]graph.Module{{m1}, {m2}})

	assert.True(t, crossesChunkBoundary(chunks[0], graph.ModDep(m2)))
	assert.False(t, crossesChunkBoundary(chunks[0], graph.ModDep(m1)))
	assert.True(t, crossesChunkBoundary(chunks[0], graph.ExtDep(ext)))
}
