package linker

import (
	"strconv"
	"strings"

	"github.com/bundleforge/chunk/internal/format"
	"github.com/bundleforge/chunk/internal/pathutil"
)

// GenerateId implements spec.md §4.9's ordinary-mode id generation: choose a
// pattern from entryFileNames (for user-entry facades) or chunkFileNames,
// substitute [name]/[hash]/[format], then disambiguate against
// existingNames. Must run after PreRender.
func (c *Chunk) GenerateId(addons Addons, opts Options, existingNames map[string]bool, includeHash bool) string {
	hash := ""
	if includeHash {
		hash = c.ComputeContentHashWithDependencies(addons, opts, existingNames)
	}
	name := c.renderFileNamePattern(opts, hash)
	unique := makeUnique(name, existingNames)

	c.ID = unique
	c.FileName = unique
	c.IDAssigned = true
	if existingNames != nil {
		existingNames[unique] = true
	}
	return unique
}

// renderFileNamePattern substitutes [name]/[hash]/[format] in the pattern
// selected for this chunk without mutating any assigned state. Called both
// by the real GenerateId and, with an empty hash, by the dependency-closure
// hash walk to "break recursion" per spec.md §4.10.
func (c *Chunk) renderFileNamePattern(opts Options, hash string) string {
	templates := opts.ChunkFileNames
	if c.FacadeModule != nil && c.FacadeModule.IsUserDefinedEntryPoint() {
		templates = opts.EntryFileNames
	}
	if len(templates) == 0 {
		templates = format.Parse("[name]-[hash].js")
	}

	name := c.GetChunkName()
	fmtName := opts.Format.String()
	subs := format.Substitutions{Name: &name, Format: &fmtName, Hash: &hash}
	return format.Render(templates, subs)
}

// makeUnique implements spec.md §4.9's collision disambiguation: append an
// ascending numeric suffix before the extension until the candidate no
// longer collides with existingNames.
func makeUnique(name string, existingNames map[string]bool) string {
	if existingNames == nil || !existingNames[name] {
		return name
	}
	ext := pathutil.Ext(name)
	stem := name[:len(name)-len(ext)]
	for i := 2; ; i++ {
		candidate := stem + strconv.Itoa(i) + ext
		if !existingNames[candidate] {
			return candidate
		}
	}
}

// GenerateIdPreserveModules implements spec.md §4.9's preserve-modules mode:
// derive the filename from the first ordered module's id, relative to
// outputBase for absolute ids, or under "_virtual/" for non-absolute
// (virtual) ids.
func (c *Chunk) GenerateIdPreserveModules(outputBase string, opts Options, existingNames map[string]bool) string {
	var rel string
	if len(c.OrderedModules) == 0 {
		rel = "_virtual/empty.js"
	} else {
		moduleID := c.OrderedModules[0].ID()
		if isAbsoluteID(moduleID) {
			rel = preserveModulesRelativeName(moduleID, outputBase, opts)
		} else {
			rel = "_virtual/" + virtualModuleBaseName(moduleID)
		}
	}

	unique := makeUnique(rel, existingNames)
	c.ID = unique
	c.FileName = unique
	c.IDAssigned = true
	if existingNames != nil {
		existingNames[unique] = true
	}
	return unique
}

func preserveModulesRelativeName(moduleID, outputBase string, opts Options) string {
	extname := pathutil.Ext(moduleID)
	ext := strings.TrimPrefix(extname, ".")

	templates := opts.EntryFileNames
	if len(templates) == 0 {
		if pathutil.IsRecognizedJSExtension(extname) {
			templates = format.Parse("[name].js")
		} else {
			templates = format.Parse("[name][extname].js")
		}
	}

	name := pathutil.BaseNoExt(moduleID)
	fmtName := opts.Format.String()
	subs := format.Substitutions{Name: &name, Format: &fmtName, Ext: &ext, Extname: &extname}
	rendered := format.Render(templates, subs)

	abs := pathutil.Dir(moduleID) + "/" + rendered
	rel := pathutil.Relative(outputBase, abs)
	return strings.TrimPrefix(rel, "./")
}

// virtualModuleBaseName derives a plain basename for a non-absolute (virtual)
// module id per spec.md §4.9/§8.6: strip the "\0"-prefixed internal marker a
// real plugin-generated virtual id carries, then any "namespace:" prefix
// before it (e.g. "\0virtual:foo" -> "foo"), and finally reduce the result to
// its basename like any other path.
func virtualModuleBaseName(moduleID string) string {
	id := strings.TrimPrefix(moduleID, "\x00")
	if idx := strings.Index(id, ":"); idx >= 0 {
		id = id[idx+1:]
	}
	return pathutil.Base(id)
}

func isAbsoluteID(id string) bool {
	if strings.HasPrefix(id, "/") {
		return true
	}
	if len(id) > 2 && id[1] == ':' && ((id[0] >= 'A' && id[0] <= 'Z') || (id[0] >= 'a' && id[0] <= 'z')) {
		return true
	}
	return false
}
