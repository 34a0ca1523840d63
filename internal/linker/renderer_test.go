package linker

import (
	"strings"
	"testing"

	"github.com/bundleforge/chunk/internal/format"
	"github.com/bundleforge/chunk/internal/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPreRenderDeconflictsCollidingTopLevelNames covers spec.md §8's
// deconfliction-uniqueness testable property: two modules concatenated into
// one chunk that both declare a top-level "value" must not collide after
// PreRender.
func TestPreRenderDeconflictsCollidingTopLevelNames(t *testing.T) {
	a := graph.NewStaticModule("a.js", 0)
	aVar := &graph.Variable{Kind: graph.VarLocal, Name: "value", Module: a}
	a.Scope.Members = []*graph.Variable{aVar}
	a.Body = "var value = 1;"

	b := graph.NewStaticModule("b.js", 1)
	bVar := &graph.Variable{Kind: graph.VarLocal, Name: "value", Module: b}
	b.Scope.Members = []*graph.Variable{bVar}
	b.Body = "var value = 2;"

	g := newFakeGraph(a, b)
	c := singleGroupChunk(g, a, b)

	c.PreRender(Options{Format: format.ES}, "")

	assert.NotEqual(t, aVar.RenderName(), bVar.RenderName())
	assert.Equal(t, "value", aVar.RenderName())
	assert.Equal(t, "value2", bVar.RenderName())
	assert.Contains(t, c.RenderedSource, "var value = 1;")
	assert.Contains(t, c.RenderedSource, "var value = 2;")
}

func TestPreRenderEmitsExportsShimLine(t *testing.T) {
	shim := &graph.Variable{Kind: graph.VarExportShim, Name: "missing"}
	m := graph.NewStaticModule("a.js", 0)
	m.ExportNamesByVariableValue = map[*graph.Variable][]string{shim: {"missing"}}
	m.Body = "var x = 1;"

	c := &Chunk{
		OrderedModules:        []graph.Module{m},
		exportOrder:           []*graph.Variable{shim},
		ExportsByName:         map[string]*graph.Variable{"missing": shim},
		starReexports:         map[string]graph.ExternalModule{},
		UsedModules:           map[graph.Module]bool{},
		RenderedModuleSources: map[graph.Module]graph.RenderedModule{},
		RenderedModules:       map[graph.Module]RenderedModuleSummary{},
		dynamicImportResolutions: map[graph.Module]map[int]DynamicImportResolution{},
		g: newFakeGraph(m),
	}
	c.allChunks = []*Chunk{c}

	c.PreRender(Options{Format: format.ES, PreferConst: true}, "")

	require.True(t, c.NeedsExportsShim)
	assert.Contains(t, c.RenderedSource, "const missingExportShim = void 0;")
}

// TestConcatenateModulesEmitsNamespaceObjectInPlace covers spec.md §4.4 step
// 5's default namespace placement: a live namespace object renders right
// after its own module's code.
func TestConcatenateModulesEmitsNamespaceObjectInPlace(t *testing.T) {
	m := graph.NewStaticModule("mod.js", 0)
	fooVar := &graph.Variable{Kind: graph.VarLocal, Name: "foo", Module: m}
	nsVar := &graph.Variable{Kind: graph.VarNamespace, Name: "mod_js", Module: m}
	m.Scope.Members = []*graph.Variable{fooVar}
	m.Namespace = nsVar
	m.NamespaceIncluded = true
	m.ExportNamesByVariableValue = map[*graph.Variable][]string{fooVar: {"foo"}}
	m.Body = "var foo = 1;"

	g := newFakeGraph(m)
	c := singleGroupChunk(g, m)

	c.PreRender(Options{Format: format.ES}, "")

	bodyIdx := strings.Index(c.RenderedSource, "var foo = 1;")
	nsIdx := strings.Index(c.RenderedSource, "__proto__: null")
	require.GreaterOrEqual(t, bodyIdx, 0)
	require.Greater(t, nsIdx, bodyIdx, "in-place namespace object must follow its module's own code")
	assert.Contains(t, c.RenderedSource, "foo: foo")
	assert.Contains(t, c.RenderedSource, nsVar.RenderName()+" = ")
}

// TestConcatenateModulesHoistsNamespaceObjectWhenPreferred covers the
// alternative placement: a module reporting NamespaceObjectHoisted() true
// gets its namespace block rendered before every module's own code.
func TestConcatenateModulesHoistsNamespaceObjectWhenPreferred(t *testing.T) {
	m := graph.NewStaticModule("mod.js", 0)
	fooVar := &graph.Variable{Kind: graph.VarLocal, Name: "foo", Module: m}
	nsVar := &graph.Variable{Kind: graph.VarNamespace, Name: "mod_js", Module: m}
	m.Scope.Members = []*graph.Variable{fooVar}
	m.Namespace = nsVar
	m.NamespaceIncluded = true
	m.NamespaceHoisted = true
	m.ExportNamesByVariableValue = map[*graph.Variable][]string{fooVar: {"foo"}}
	m.Body = "var foo = 1;"

	g := newFakeGraph(m)
	c := singleGroupChunk(g, m)

	c.PreRender(Options{Format: format.ES, Freeze: true}, "")

	nsIdx := strings.Index(c.RenderedSource, "Object.freeze")
	bodyIdx := strings.Index(c.RenderedSource, "var foo = 1;")
	require.GreaterOrEqual(t, nsIdx, 0)
	require.Less(t, nsIdx, bodyIdx, "hoisted namespace object must precede the module's own code")
}

func TestPreRenderWarnsOnEmptyChunk(t *testing.T) {
	m := graph.NewStaticModule("empty.js", 0)
	m.Included = false

	c := &Chunk{
		OrderedModules:        []graph.Module{m},
		ExportsByName:         map[string]*graph.Variable{},
		starReexports:         map[string]graph.ExternalModule{},
		UsedModules:           map[graph.Module]bool{},
		RenderedModuleSources: map[graph.Module]graph.RenderedModule{},
		RenderedModules:       map[graph.Module]RenderedModuleSummary{},
		dynamicImportResolutions: map[graph.Module]map[int]DynamicImportResolution{},
		VariableName:          "empty",
	}
	fg := newFakeGraph(m)
	c.g = fg
	c.allChunks = []*Chunk{c}

	c.PreRender(Options{Format: format.ES}, "")

	require.Len(t, fg.log.Msgs, 1)
	assert.Equal(t, "EMPTY_BUNDLE", string(fg.log.Msgs[0].ID))
}
