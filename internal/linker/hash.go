package linker

import (
	"strings"

	"github.com/bundleforge/chunk/internal/hashbuilder"
)

// Addons bundles the banner/footer/intro/outro text addons contribute at
// render time (spec.md §4.8, §4.10).
type Addons struct {
	Intro  string
	Outro  string
	Banner string
	Footer string
}

func (a Addons) joined() string {
	return a.Intro + ":" + a.Outro + ":" + a.Banner + ":" + a.Footer
}

// RenderedHash implements spec.md §4.10's renderedHash: memoised, computed
// from plugin hash augmentation, the post-preRender rendered source, and a
// fingerprint of each export. Must run after PreRender.
func (c *Chunk) RenderedHash(opts Options) string {
	if c.hasRenderedHash {
		return c.renderedHash
	}
	h := hashbuilder.NewBuilder()
	if opts.AugmentChunkHash != nil {
		h.AbsorbString(opts.AugmentChunkHash(c))
	}
	h.AbsorbString(c.RenderedSource)
	h.AbsorbString(c.exportFingerprint())
	c.renderedHash = h.Digest8()
	c.hasRenderedHash = true
	return c.renderedHash
}

// exportFingerprint renders each export as "<moduleId>:<variableName>:<exportName>"
// joined by ",", in the chunk's sorted export-name order for determinism.
// The module id is Module.ID() as given; it is not made relative to any base.
func (c *Chunk) exportFingerprint() string {
	names := c.GetExportNames()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		if len(name) > 0 && name[0] == '*' {
			parts = append(parts, name)
			continue
		}
		v := c.ExportsByName[name]
		if v == nil {
			continue
		}
		moduleID := ""
		if v.Module != nil {
			moduleID = v.Module.ID()
		}
		parts = append(parts, moduleID+":"+v.Name+":"+name)
	}
	return strings.Join(parts, ",")
}

// ComputeContentHashWithDependencies implements spec.md §4.10: absorb the
// addons and format, then walk the dependency closure (dependencies ∪
// dynamicDependencies, breadth-like) absorbing each reached chunk's
// renderedHash plus its hash-free filename, and each external's render path.
// Must run after PreRender (renderedHash, renderedSource are available) but
// before this chunk's own id is finalised.
func (c *Chunk) ComputeContentHashWithDependencies(addons Addons, opts Options, existingNames map[string]bool) string {
	h := hashbuilder.NewBuilder()
	h.AbsorbString(addons.joined())
	h.AbsorbString(opts.Format.String())

	seen := map[interface{}]bool{}
	queue := append(append([]ChunkDep{}, c.Dependencies...), c.DynamicDependencies...)

	for i := 0; i < len(queue); i++ {
		dep := queue[i]
		key := dep.Key()
		if seen[key] {
			continue
		}
		seen[key] = true

		if dep.IsExternal() {
			h.AbsorbString(":" + dep.Ext.RenderPath())
			continue
		}

		depChunk := dep.Chunk
		h.AbsorbString(depChunk.RenderedHash(opts))
		h.AbsorbString(depChunk.renderFileNamePattern(opts, ""))
		queue = append(queue, depChunk.Dependencies...)
		queue = append(queue, depChunk.DynamicDependencies...)
	}

	return h.Digest8()
}
