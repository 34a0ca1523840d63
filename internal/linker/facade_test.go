package linker

import (
	"testing"

	"github.com/bundleforge/chunk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanModuleBeFacadeRequiresEveryExposedVariable(t *testing.T) {
	fooVar := &graph.Variable{Kind: graph.VarLocal, Name: "foo"}
	barVar := &graph.Variable{Kind: graph.VarLocal, Name: "bar"}

	c := &Chunk{exportOrder: []*graph.Variable{fooVar, barVar}}

	full := graph.NewStaticModule("full.js", 0)
	full.ExportNamesByVariableValue = map[*graph.Variable][]string{fooVar: {"foo"}, barVar: {"bar"}}
	assert.True(t, c.CanModuleBeFacade(full))

	partial := graph.NewStaticModule("partial.js", 0)
	partial.ExportNamesByVariableValue = map[*graph.Variable][]string{fooVar: {"foo"}}
	assert.False(t, c.CanModuleBeFacade(partial))
}

// TestGenerateFacadesSpawnsWhenSignatureCannotBeExposed covers spec.md §8's
// strict-signature scenario: when the code chunk exposes variables that are
// missing from an entry module's export map, that entry must get a dedicated
// facade chunk whose only dependency is the code chunk.
func TestGenerateFacadesSpawnsWhenSignatureCannotBeExposed(t *testing.T) {
	sharedVar := &graph.Variable{Kind: graph.VarLocal, Name: "shared"}
	onlyVar := &graph.Variable{Kind: graph.VarLocal, Name: "onlyInEntry"}

	entry := graph.NewStaticModule("entry.js", 1)
	entry.EntryPoint = true
	entry.UserDefinedEntryPoint = true
	entry.Preserve = graph.PreserveSignatureStrict
	// entry only knows how to expose onlyInEntry -- it cannot also expose
	// sharedVar, which this chunk is required to expose for some other
	// consumer, so entry cannot be this chunk's facade module.
	entry.ExportNamesByVariableValue = map[*graph.Variable][]string{onlyVar: {"onlyInEntry"}}

	code := &Chunk{
		Index:         0,
		OrderedModules: []graph.Module{entry},
		EntryModules:  []graph.Module{entry},
		exportOrder:   []*graph.Variable{sharedVar, onlyVar},
		ExportsByName: map[string]*graph.Variable{},
		starReexports: map[string]graph.ExternalModule{},
		g:             newFakeGraph(entry),
	}
	code.allChunks = []*Chunk{code}

	spawned := code.GenerateFacades()

	require.Len(t, spawned, 1)
	facade := spawned[0]
	assert.Same(t, entry, facade.FacadeModule)
	require.Len(t, facade.Dependencies, 1)
	assert.Same(t, code, facade.Dependencies[0].Chunk)
	assert.Nil(t, code.FacadeModule, "code chunk never claimed itself as the facade")
	assert.Equal(t, facade.Index, entry.FacadeChunkIndex())
}
