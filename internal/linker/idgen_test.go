package linker

import (
	"regexp"
	"testing"

	"github.com/bundleforge/chunk/internal/format"
	"github.com/bundleforge/chunk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var chunkFileNamePattern = regexp.MustCompile(`^entry-[0-9a-f]{8}\.js$`)

func TestGenerateIdUsesDefaultPatternAndRegistersName(t *testing.T) {
	c := newMinimalChunk(newFakeGraph(), 0, "const entry = 1;")
	c.VariableName = "entry"

	existing := map[string]bool{}
	id := c.GenerateId(Addons{}, Options{Format: format.ES}, existing, true)

	assert.Regexp(t, chunkFileNamePattern, id)
	assert.Equal(t, id, c.ID)
	assert.Equal(t, id, c.FileName)
	assert.True(t, c.IDAssigned)
	assert.True(t, existing[id])
}

func TestGenerateIdDisambiguatesNameCollisions(t *testing.T) {
	// Force a collision by not including a hash placeholder at all.
	opts := Options{Format: format.ES, ChunkFileNames: format.Parse("[name].js")}

	a := newMinimalChunk(newFakeGraph(), 0, "")
	a.VariableName = "shared"
	b := newMinimalChunk(newFakeGraph(), 1, "")
	b.VariableName = "shared"

	existing := map[string]bool{}
	idA := a.GenerateId(Addons{}, opts, existing, false)
	idB := b.GenerateId(Addons{}, opts, existing, false)

	assert.Equal(t, "shared.js", idA)
	assert.Equal(t, "shared2.js", idB)
}

func TestGenerateIdPreserveModulesDerivesVirtualIdForNonAbsoluteModule(t *testing.T) {
	m := graph.NewStaticModule("\x00virtual:foo", 0)
	c := &Chunk{OrderedModules: []graph.Module{m}, ExportsByName: map[string]*graph.Variable{}, starReexports: map[string]graph.ExternalModule{}}

	existing := map[string]bool{}
	id := c.GenerateIdPreserveModules("out", Options{Format: format.ES}, existing)

	assert.Equal(t, "_virtual/foo", id)
	assert.Equal(t, id, c.ID)
	require.True(t, existing[id])
}

func TestGenerateIdPreserveModulesDerivesRelativeNameForAbsoluteModule(t *testing.T) {
	m := graph.NewStaticModule("/project/src/util.js", 0)
	c := &Chunk{OrderedModules: []graph.Module{m}, ExportsByName: map[string]*graph.Variable{}, starReexports: map[string]graph.ExternalModule{}}

	id := c.GenerateIdPreserveModules("/project", Options{Format: format.ES}, map[string]bool{})

	assert.Equal(t, "src/util.js", id)
}

func TestIsAbsoluteID(t *testing.T) {
	assert.True(t, isAbsoluteID("/a/b.js"))
	assert.True(t, isAbsoluteID("C:/a/b.js"))
	assert.False(t, isAbsoluteID("virtual:config"))
	assert.False(t, isAbsoluteID("a/b.js"))
}
