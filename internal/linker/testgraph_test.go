package linker

import (
	"github.com/bundleforge/chunk/internal/diag"
	"github.com/bundleforge/chunk/internal/graph"
)

// fakeGraph is the minimal Graph collaborator used across this package's own
// tests, standing in for the real module-graph builder (out of scope).
type fakeGraph struct {
	modules           map[string]graph.Module
	preserveModules   bool
	preserveEntrySigs bool
	log               *diag.Log
}

func newFakeGraph(modules ...graph.Module) *fakeGraph {
	g := &fakeGraph{modules: map[string]graph.Module{}, log: diag.NewLog()}
	for _, m := range modules {
		g.modules[m.ID()] = m
	}
	return g
}

func (g *fakeGraph) ModuleByID(id string) (graph.Module, bool) {
	m, ok := g.modules[id]
	return m, ok
}

func (g *fakeGraph) PreserveModules() bool         { return g.preserveModules }
func (g *fakeGraph) PreserveEntrySignatures() bool { return g.preserveEntrySigs }

func (g *fakeGraph) Warn(msg diag.Msg) {
	g.log.Msgs = append(g.log.Msgs, msg)
}

// singleGroupChunk builds and links exactly one chunk containing every
// module passed, in order, as a single moduleGroup -- the common case these
// tests exercise before moving on to the later phases.
func singleGroupChunk(g Graph, modules ...graph.Module) *Chunk {
	chunks := BuildChunks(g, [][]graph.Module{modules})
	chunks[0].Link()
	return chunks[0]
}
