package linker

import (
	"testing"

	"github.com/bundleforge/chunk/internal/format"
	"github.com/bundleforge/chunk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildTwoChunkReexport wires a minimal two-chunk graph: dep.js declares a
// reassigned top-level variable, entry.js imports it and (per an entry
// signature that must be preserved) re-exports it under the same name --
// spec.md §8's live-binding reexport scenario.
func buildTwoChunkReexport(t *testing.T) (depChunk, entryChunk *Chunk) {
	t.Helper()

	depModule := graph.NewStaticModule("dep.js", 0)
	counterVar := &graph.Variable{Kind: graph.VarLocal, Name: "counter", Module: depModule, IsReassigned: true}
	depModule.ExportNamesByVariableValue = map[*graph.Variable][]string{counterVar: {"counter"}}
	depModule.Scope.Members = []*graph.Variable{counterVar}
	depModule.Body = "var counter = 0;"

	entryModule := graph.NewStaticModule("entry.js", 1)
	entryModule.EntryPoint = true
	entryModule.UserDefinedEntryPoint = true
	entryModule.Preserve = graph.PreserveSignatureStrict
	entryModule.ImportsValue = []graph.ImportBinding{{Variable: counterVar, Origin: graph.ModDep(depModule)}}
	entryModule.DependenciesValue = []graph.Dep{graph.ModDep(depModule)}
	entryModule.ExportNamesByVariableValue = map[*graph.Variable][]string{counterVar: {"counter"}}

	g := newFakeGraph(depModule, entryModule)
	chunks := BuildChunks(g, [][]graph.Module{{depModule}, {entryModule}})
	for _, c := range chunks {
		c.Link()
	}
	return chunks[0], chunks[1]
}

func TestGetChunkDependencyDeclarationsLiveBindingReexport(t *testing.T) {
	depChunk, entryChunk := buildTwoChunkReexport(t)

	opts := Options{Format: format.CommonJS}
	depChunk.GenerateExports(opts)
	entryChunk.GenerateExports(opts)

	decls := entryChunk.GetChunkDependencyDeclarations(opts)
	require.Len(t, decls, 1, "entry.js has exactly one cross-chunk dependency")

	rd := decls[0]
	assert.Same(t, depChunk, rd.Dep.Chunk)
	require.Len(t, rd.Reexports, 1)
	assert.True(t, rd.Reexports[0].NeedsLiveBinding, "a reassigned export must be reexported as a live binding")
	assert.Equal(t, "counter", rd.Reexports[0].Exported)

	require.Len(t, rd.Imports, 1, "entry.js's own reference to counter is also a chunk import")
	assert.Equal(t, "counter", rd.Imports[0].Local)
}

func TestGetChunkDependencyDeclarationsExternalGlobalNameGuess(t *testing.T) {
	m := graph.NewStaticModule("entry.js", 0)
	ext := graph.NewStaticExternalModule("left-pad-thing")
	m.DependenciesValue = []graph.Dep{graph.ExtDep(ext)}

	g := newFakeGraph(m)
	c := singleGroupChunk(g, m)
	c.GenerateExports(Options{Format: format.IIFE})

	decls := c.GetChunkDependencyDeclarations(Options{Format: format.IIFE})
	require.Len(t, decls, 1)
	assert.Equal(t, "leftPadThing", decls[0].GlobalName)

	fg := g
	require.Len(t, fg.log.Msgs, 1)
	assert.Equal(t, "MISSING_GLOBAL_NAME", string(fg.log.Msgs[0].ID))
}

func TestGuessGlobalName(t *testing.T) {
	assert.Equal(t, "leftPad", guessGlobalName("left-pad"))
	assert.Equal(t, "fooBar", guessGlobalName("foo/bar"))
	assert.Equal(t, "lodash", guessGlobalName("lodash"))
}
