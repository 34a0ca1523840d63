package linker

import (
	"context"

	"github.com/bundleforge/chunk/internal/graph"
)

// Coordinator drives the chunk phase sequence spec.md §2's data flow names:
// construction → link → generateExports → generateFacades → preRender →
// generateId → render. Phases across sibling chunks may be interleaved by
// the caller (spec.md §5); this driver simply runs them phase-by-phase
// across the whole chunk set, which is sufficient since each chunk only
// reads its own state plus the (already fully linked, by the time preRender
// or later runs) dependency graph.
type Coordinator struct {
	g      Graph
	Chunks []*Chunk
}

// NewCoordinator builds every chunk from the graph layer's pre-decided
// module-to-chunk partition and links them (spec.md §4.1).
func NewCoordinator(g Graph, moduleGroups [][]graph.Module) *Coordinator {
	chunks := BuildChunks(g, moduleGroups)
	for _, c := range chunks {
		c.Link()
	}
	return &Coordinator{g: g, Chunks: chunks}
}

// GenerateExportsAndFacades implements spec.md §4.2 and §4.3 across every
// chunk, appending any spawned facade chunks to Coordinator.Chunks. Facade
// generation is skipped entirely under preserveModules, which the graph
// layer uses in place of the facade model (spec.md §6: "preserveModules
// ... disables facade and transitive-hoisting behaviours").
func (co *Coordinator) GenerateExportsAndFacades(opts Options) {
	for _, c := range co.Chunks {
		c.GenerateExports(opts)
	}
	if co.g.PreserveModules() {
		return
	}
	var spawned []*Chunk
	for _, c := range co.Chunks {
		spawned = append(spawned, c.GenerateFacades()...)
	}
	co.Chunks = append(co.Chunks, spawned...)
}

// PreRender runs preRender (spec.md §4.4) on every chunk.
func (co *Coordinator) PreRender(opts Options, inputBase string) {
	for _, c := range co.Chunks {
		c.PreRender(opts, inputBase)
	}
}

// GenerateIds assigns every chunk's final filename (spec.md §4.9), in a
// stable order so makeUnique's collision disambiguation is deterministic
// across a run.
func (co *Coordinator) GenerateIds(addons Addons, opts Options, outputBase string, includeHash bool) {
	existingNames := map[string]bool{}
	if co.g.PreserveModules() {
		for _, c := range co.Chunks {
			c.GenerateIdPreserveModules(outputBase, opts, existingNames)
		}
		return
	}
	for _, c := range co.Chunks {
		c.GenerateId(addons, opts, existingNames, includeHash)
	}
}

// RenderAll runs the Finaliser (spec.md §4.8) on every chunk, in Chunks
// order. A failure on any chunk aborts the whole batch, matching spec.md
// §7's "a failed render raises a diagnostic and aborts the pipeline".
func (co *Coordinator) RenderAll(ctx context.Context, opts Options, addons Addons, hook RenderChunkHook) (map[*Chunk]RenderResult, error) {
	results := make(map[*Chunk]RenderResult, len(co.Chunks))
	for _, c := range co.Chunks {
		res, err := c.Render(ctx, opts, addons, hook)
		if err != nil {
			return nil, err
		}
		results[c] = res
	}
	return results, nil
}
