package linker

import "github.com/bundleforge/chunk/internal/format"

// Local aliases keep call sites in this package terse; Options.Format is the
// canonical format.Format value.
const (
	fmtES     = format.ES
	fmtCommonJS = format.CommonJS
	fmtAMD    = format.AMD
	fmtUMD    = format.UMD
	fmtIIFE   = format.IIFE
	fmtSystem = format.SystemJS
)

// Options is the configuration consumed across the Chunk phases (spec.md
// §6 "Configuration options consumed").
type Options struct {
	Format format.Format

	Compact               bool
	MinifyInternalExports *bool // nil = unset, follow format default
	PreferConst           bool
	Freeze                bool
	NamespaceToStringTag  bool
	HoistTransitiveImports *bool // nil = unset, defaults to true
	ExternalLiveBindings  bool
	Interop               bool
	DynamicImportFunction string

	EntryFileNames []format.Template
	ChunkFileNames []format.Template

	Globals func(externalID string) string

	// AugmentChunkHash is the plugin host's hookReduceValueSync('augmentChunkHash', ...)
	// (spec.md §6), consulted when computing a chunk's renderedHash.
	AugmentChunkHash func(c *Chunk) string

	Sourcemap               bool
	SourcemapFile           string
	SourcemapExcludeSources bool
	SourcemapPathTransform  func(string) string
}

// shouldMinifyInternalExports implements spec.md §4.2's rule: "mangled names
// if minifyInternalExports === true or (when that option is unset and the
// format is es or system or compact is truthy)".
func (o Options) shouldMinifyInternalExports() bool {
	if o.MinifyInternalExports != nil {
		return *o.MinifyInternalExports
	}
	return o.Format == fmtES || o.Format == fmtSystem || o.Compact
}

// shouldHoistTransitiveImports implements spec.md §4.4 step 1's "if
// hoistTransitiveImports is not disabled" — the option defaults to enabled.
func (o Options) shouldHoistTransitiveImports() bool {
	if o.HoistTransitiveImports != nil {
		return *o.HoistTransitiveImports
	}
	return true
}
