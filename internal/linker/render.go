package linker

import (
	"context"
	"sort"
	"strings"

	"github.com/bundleforge/chunk/internal/diag"
	"github.com/bundleforge/chunk/internal/finalizer"
	"github.com/bundleforge/chunk/internal/graph"
	"github.com/bundleforge/chunk/internal/pathutil"
	"github.com/bundleforge/chunk/internal/sourcemap"
)

// RenderChunkHook is the output plugin's renderChunk hook (spec.md §6): it
// may transform the finalised code and contribute to the source-map chain.
// The context models the real plugin host's async hook (spec.md §5: "the
// only suspension point is the render phase, which awaits the output-plugin
// hook").
type RenderChunkHook func(ctx context.Context, code string, c *Chunk, opts Options) (newCode string, chain []*sourcemap.Map, err error)

// RenderResult is what Chunk.Render returns to the caller (spec.md §6:
// "render(...) → { code, map }").
type RenderResult struct {
	Code string
	Map  *sourcemap.Map
}

// Render implements spec.md §4.8. Must run after GenerateId/GenerateIdPreserveModules
// so every dependency chunk's ID is already assigned.
func (c *Chunk) Render(ctx context.Context, opts Options, addons Addons, hook RenderChunkHook) (RenderResult, error) {
	stripJsExt := opts.Format == fmtAMD

	for i := range c.RenderedDependencies {
		rd := &c.RenderedDependencies[i]
		var depID string
		if rd.Dep.IsExternal() {
			depID = rd.Dep.Ext.RenderPath()
		} else {
			depID = rd.Dep.Chunk.ID
			rd.NamedExportsMode = rd.Dep.Chunk.ExportMode != ExportDefault
		}
		rd.ID = c.relativeDependencyPath(depID, stripJsExt)
	}

	code := c.finaliseDynamicImports(opts, stripJsExt)

	usesTLA := false
	for _, m := range c.OrderedModules {
		if m.IsIncluded() && m.UsesTopLevelAwait() {
			usesTLA = true
			break
		}
	}
	if usesTLA && !opts.Format.SupportsTopLevelAwait() {
		return RenderResult{}, diag.NewFatalError(diag.InvalidTLAFormat,
			"Module level await is only supported with the \"es\" or \"system\" output formats")
	}

	if opts.DynamicImportFunction != "" && opts.Format != fmtES {
		c.g.Warn(diag.Msg{ID: diag.InvalidOption, Kind: diag.Warning,
			Text: "The \"output.dynamicImportFunction\" option is ignored for formats other than \"es\""})
	}

	hasExports := len(c.RenderedExports) > 0
	if !hasExports {
		for _, dep := range c.RenderedDependencies {
			if len(dep.Reexports) > 0 {
				hasExports = true
				break
			}
		}
	}

	globalName := ""
	if opts.Format == fmtUMD || opts.Format == fmtIIFE {
		globalName = c.GetChunkName()
	}

	varOrConst := "var"
	if opts.PreferConst {
		varOrConst = "const"
	}

	in := finalizer.Input{
		Code:                  code,
		Dependencies:          toFinalizerDeps(c.RenderedDependencies),
		Exports:               toFinalizerExports(c.RenderedExports),
		HasExports:            hasExports,
		AccessedGlobals:       c.aggregateAccessedGlobals(),
		IndentString:          c.IndentString,
		Intro:                 addons.Intro,
		Outro:                 addons.Outro,
		IsEntryModuleFacade:   c.FacadeModule != nil && c.FacadeModule.IsUserDefinedEntryPoint(),
		NamedExportsMode:      c.ExportMode != ExportDefault,
		UsesTopLevelAwait:     usesTLA,
		VarOrConst:            varOrConst,
		Interop:               opts.Interop,
		DynamicImportFunction: opts.DynamicImportFunction,
		GlobalName:            globalName,
		Warn: func(text string) {
			c.g.Warn(diag.Msg{ID: diag.InvalidOption, Kind: diag.Warning, Text: text})
		},
	}

	code, err := finalizer.Finalize(opts.Format, in)
	if err != nil {
		return RenderResult{}, err
	}

	code = addons.Banner + code + addons.Footer

	var chain []*sourcemap.Map
	if hook != nil {
		newCode, hookChain, hookErr := hook(ctx, code, c, opts)
		if hookErr != nil {
			return RenderResult{}, hookErr
		}
		code = newCode
		chain = hookChain
	}

	var sm *sourcemap.Map
	if opts.Sourcemap {
		sm = c.buildSourceMap(opts)
		if len(chain) > 0 {
			sm = sourcemap.Collapse(sm, chain)
		}
		if opts.SourcemapExcludeSources {
			sm.SourcesContent = nil
		}
		if opts.SourcemapPathTransform != nil {
			for i, s := range sm.Sources {
				sm.Sources[i] = opts.SourcemapPathTransform(s)
			}
		}
	}

	if !opts.Compact {
		code += "\n"
	}

	return RenderResult{Code: code, Map: sm}, nil
}

// finaliseDynamicImports implements spec.md §4.8's finaliseDynamicImports
// step: for each dynamic-import site in each rendered module source that
// targets another chunk or an external, rewrite the resolution to the
// appropriate literal/path. prepareDynamicImports (run during PreRender,
// before any chunk id was assigned) only decided *how* each site resolves;
// the literal/path itself can only be computed here, once every dependency
// chunk's GenerateId has run. Runs on a copy of RenderedSource rather than
// mutating it, so Render stays safe to call more than once.
func (c *Chunk) finaliseDynamicImports(opts Options, stripJsExt bool) string {
	code := c.RenderedSource
	for _, m := range c.OrderedModules {
		if !m.IsIncluded() {
			continue
		}
		sites := m.DynamicImports()
		if len(sites) == 0 {
			continue
		}
		rendered, ok := c.RenderedModuleSources[m]
		if !ok || len(rendered.DynamicImportMarkers) == 0 {
			continue
		}
		resolutions := c.dynamicImportResolutions[m]
		for i, site := range sites {
			if i >= len(rendered.DynamicImportMarkers) {
				break
			}
			marker := rendered.DynamicImportMarkers[i]
			if marker == "" {
				continue
			}
			literal := c.dynamicImportLiteral(opts, stripJsExt, site, resolutions[i])
			code = strings.ReplaceAll(code, marker, literal)
		}
	}
	return code
}

// dynamicImportLiteral renders the replacement expression for one resolved
// dynamic-import call site, per spec.md §4.8. Cross-chunk/external targets
// lower to a native import() under formats that keep ESM syntax (es, system)
// and to a require()-backed promise under the rest, matching how those
// formats already express static imports elsewhere in the Renderer/Finaliser.
func (c *Chunk) dynamicImportLiteral(opts Options, stripJsExt bool, site graph.DynamicImportSite, res DynamicImportResolution) string {
	nativeImport := opts.Format.KeepsESMSyntax() || opts.Format == fmtSystem

	switch res.Mode {
	case DynamicNamed:
		if res.TargetVariable == nil {
			return "Promise.resolve()"
		}
		return "Promise.resolve().then(function () { return " + res.TargetVariable.RenderName() + "; })"

	case DynamicExportMode:
		path := ""
		if res.TargetChunk != nil {
			path = c.relativeDependencyPath(res.TargetChunk.ID, stripJsExt)
		}
		if nativeImport {
			return "import('" + path + "')"
		}
		return "Promise.resolve().then(function () { return require('" + path + "'); })"

	default: // DynamicAuto
		if res.TargetExternal != nil {
			path := c.relativeDependencyPath(res.TargetExternal.RenderPath(), stripJsExt)
			if nativeImport {
				return "import('" + path + "')"
			}
			return "Promise.resolve().then(function () { return require('" + path + "'); })"
		}
		// Unresolved: the original call argument is preserved verbatim.
		if nativeImport {
			return "import(" + site.ArgumentText + ")"
		}
		return "Promise.resolve().then(function () { return require(" + site.ArgumentText + "); })"
	}
}

// relativeDependencyPath implements spec.md §4.8's "getRelativePath(depId,
// stripJsExt)", relative to this chunk's own output location.
func (c *Chunk) relativeDependencyPath(depID string, stripJsExt bool) string {
	fromDir := pathutil.Dir(c.FileName)
	rel := pathutil.Relative(fromDir, depID)
	if stripJsExt {
		rel = pathutil.StripJSExtension(rel)
	}
	return rel
}

func (c *Chunk) aggregateAccessedGlobals() []string {
	set := map[string]bool{}
	for _, m := range c.OrderedModules {
		if !m.IsIncluded() {
			continue
		}
		for _, g := range m.AccessedGlobals() {
			set[g] = true
		}
	}
	names := make([]string, 0, len(set))
	for g := range set {
		names = append(names, g)
	}
	sort.Strings(names)
	return names
}

// buildSourceMap composes a decoded map from each included module's rendered
// source, the "generate a decoded map from the bundle" step of spec.md §4.8.
// Per graph.RenderedModule's documented simplification, each module
// contributes its own line count 1:1 rather than a full piece-table mapping.
func (c *Chunk) buildSourceMap(opts Options) *sourcemap.Map {
	b := sourcemap.NewBuilder()
	for _, m := range c.OrderedModules {
		if !m.IsIncluded() {
			continue
		}
		rendered, ok := c.RenderedModuleSources[m]
		if !ok {
			continue
		}
		idx := b.AddSource(m.ID(), rendered.Code, opts.SourcemapExcludeSources)
		b.AppendModule(idx, rendered.Lines)
	}
	return b.Map()
}

func toFinalizerDeps(deps []RenderedDependency) []finalizer.Dependency {
	out := make([]finalizer.Dependency, len(deps))
	for i, d := range deps {
		imports := make([]finalizer.ImportSpecifier, len(d.Imports))
		for j, imp := range d.Imports {
			imports[j] = finalizer.ImportSpecifier{Imported: imp.Imported, Local: imp.Local}
		}
		reexports := make([]finalizer.Reexport, len(d.Reexports))
		for j, re := range d.Reexports {
			reexports[j] = finalizer.Reexport{Imported: re.Imported, Exported: re.Exported, NeedsLiveBinding: re.NeedsLiveBinding}
		}
		out[i] = finalizer.Dependency{
			ID:               d.ID,
			ExportsNames:     d.ExportsNames,
			ExportsDefault:   d.ExportsDefault,
			NamedExportsMode: d.NamedExportsMode,
			GlobalName:       d.GlobalName,
			Imports:          imports,
			Reexports:        reexports,
		}
	}
	return out
}

func toFinalizerExports(exports []RenderedExport) []finalizer.Export {
	out := make([]finalizer.Export, len(exports))
	for i, e := range exports {
		out[i] = finalizer.Export{
			Local: e.Local, Exported: e.Exported,
			Hoisted: e.Hoisted, Uninitialized: e.Uninitialized, Expression: e.Expression,
		}
	}
	return out
}
