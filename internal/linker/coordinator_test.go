package linker

import (
	"context"
	"testing"

	"github.com/bundleforge/chunk/internal/format"
	"github.com/bundleforge/chunk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinatorDrivesFullPhaseSequenceForCJSLiveBinding(t *testing.T) {
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
	entryModule.Body = "console.log(counter);"

	g := newFakeGraph(depModule, entryModule)
	co := NewCoordinator(g, [][]graph.Module{{depModule}, {entryModule}})
	require.Len(t, co.Chunks, 2)

	opts := Options{Format: format.CommonJS}
	co.GenerateExportsAndFacades(opts)
	co.PreRender(opts, "")
	co.GenerateIds(Addons{}, opts, "", true)

	results, err := co.RenderAll(context.Background(), opts, Addons{}, nil)
	require.NoError(t, err)

	depChunk := co.Chunks[0]
	entryChunk := co.Chunks[1]

	depResult, ok := results[depChunk]
	require.True(t, ok)
	assert.Contains(t, depResult.Code, "exports.counter = counter;")

	entryResult, ok := results[entryChunk]
	require.True(t, ok)
	assert.Contains(t, entryResult.Code, "require('./")
	assert.Contains(t, entryResult.Code, "console.log(counter);")
}

func TestCoordinatorPreserveModulesSkipsFacadesAndUsesRelativeIds(t *testing.T) {
	m := graph.NewStaticModule("/root/src/a.js", 0)
	m.Body = "const a = 1;"

	g := &fakeGraph{modules: map[string]graph.Module{m.ID(): m}, preserveModules: true, log: newFakeGraph().log}
	co := NewCoordinator(g, [][]graph.Module{{m}})

	opts := Options{Format: format.ES}
	co.GenerateExportsAndFacades(opts)
	require.Len(t, co.Chunks, 1, "preserveModules must never spawn facade chunks")

	co.PreRender(opts, "")
	co.GenerateIds(Addons{}, opts, "/root/src", false)

	assert.Equal(t, "a.js", co.Chunks[0].ID)
}
