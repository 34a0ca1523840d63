// Package renamer produces unique, legal identifiers within a nested scope
// tree and implements the chunk's cross-module Deconflicter. Grounded on
// esbuild's internal/renamer package: NumberRenamer's numberScope sits behind
// NameAllocator.FindUnusedName below, and ExportRenamer is carried forward
// almost verbatim as the mangled/readable export-name generator.
package renamer

import (
	"sort"
	"strconv"

	"github.com/bundleforge/chunk/internal/graph"
	"github.com/bundleforge/chunk/internal/pathutil"
)

// NameAllocator finds a name that is unused in a scope or any of its
// ancestors, stably and deterministically (ascending numeric suffixes),
// mirroring esbuild's numberScope.findUnusedName.
type NameAllocator struct {
	parent     *NameAllocator
	nameCounts map[string]uint32
}

// NewRootAllocator seeds the root scope with the reserved-name set computed
// for this chunk (spec.md §4.4 step 4: "A reserved-name set is built").
func NewRootAllocator(reserved map[string]bool) *NameAllocator {
	counts := make(map[string]uint32, len(reserved))
	for name := range reserved {
		counts[name] = 1
	}
	return &NameAllocator{nameCounts: counts}
}

func (a *NameAllocator) Child() *NameAllocator {
	return &NameAllocator{parent: a, nameCounts: make(map[string]uint32)}
}

type nameUse uint8

const (
	nameUnused nameUse = iota
	nameUsed
	nameUsedInSameScope
)

func (a *NameAllocator) findNameUse(name string) nameUse {
	s := a
	for {
		if _, ok := s.nameCounts[name]; ok {
			if s == a {
				return nameUsedInSameScope
			}
			return nameUsed
		}
		if s.parent == nil {
			return nameUnused
		}
		s = s.parent
	}
}

// FindUnusedName returns a legal identifier derived from name that does not
// collide with anything visible from this scope, recording it so later
// calls in sibling/child scopes see it as taken.
func (a *NameAllocator) FindUnusedName(name string) string {
	if !isIdentifier(name) {
		name = pathutil.LegalizeIdentifier(name)
	}

	if use := a.findNameUse(name); use != nameUnused {
		tries := uint32(1)
		if use == nameUsedInSameScope {
			tries = a.nameCounts[name]
		}
		prefix := name
		for {
			tries++
			name = prefix + strconv.Itoa(int(tries))
			if a.findNameUse(name) == nameUnused {
				if use == nameUsedInSameScope {
					a.nameCounts[prefix] = tries
				}
				break
			}
		}
	}

	a.nameCounts[name] = 1
	return name
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r == '$'
		isDigit := r >= '0' && r <= '9'
		if i == 0 && isDigit {
			return false
		}
		if !isLetter && !isDigit {
			return false
		}
	}
	return true
}

// Deconflict walks the ordered module scope trees and assigns a render name
// to every variable that is not in the reserved set, implementing spec.md
// §4.7: every rendered identifier is unique in the concatenated scope,
// reserved names are never produced, and numbering is stable/deterministic.
//
// topLevelVars lists, in deterministic order, the variables that live at
// module top level across the whole chunk (these share one flat top-level
// allocator, since concatenation merges all modules' top levels into a
// single scope). nestedScopesInOrder lists each module's own nested scope
// tree, walked after the top level so nested declarations avoid colliding
// with the (already-assigned) top-level renames.
func Deconflict(reserved map[string]bool, topLevelVars []*graph.Variable, nestedScopesInOrder []*graph.Scope) {
	root := NewRootAllocator(reserved)

	for _, v := range topLevelVars {
		assign(root, v)
	}

	for _, scope := range nestedScopesInOrder {
		assignScopeRecursive(scope, root)
	}
}

func assign(alloc *NameAllocator, v *graph.Variable) {
	name := alloc.FindUnusedName(v.Name)
	v.SetRenderName(name)
}

func assignScopeRecursive(scope *graph.Scope, parent *NameAllocator) {
	child := parent
	if len(scope.Members) > 0 {
		child = parent.Child()
		members := append([]*graph.Variable(nil), scope.Members...)
		sort.Slice(members, func(i, j int) bool { return members[i].Name < members[j].Name })
		for _, v := range members {
			assign(child, v)
		}
	}
	for _, c := range scope.Children {
		assignScopeRecursive(c, child)
	}
}

// ExportRenamer assigns external export names, the readable-name half of
// spec.md §4.2's ExportNamer (appending numeric suffixes for uniqueness),
// carried over from esbuild's renamer.ExportRenamer.
type ExportRenamer struct {
	used  map[string]uint32
	count int
}

func NewExportRenamer() *ExportRenamer { return &ExportRenamer{used: map[string]uint32{}} }

func (r *ExportRenamer) NextRenamedName(name string) string {
	if tries, ok := r.used[name]; ok {
		prefix := name
		for {
			tries++
			name = prefix + strconv.Itoa(int(tries))
			if _, ok := r.used[name]; !ok {
				break
			}
		}
		r.used[name] = tries
	} else {
		r.used[name] = 1
	}
	return name
}

// mangledHead and mangledTail are the identifier-safe character sets minified
// export names are drawn from: the first character comes from mangledHead
// (letters, "_", "$"), later characters from mangledTail (which adds digits).
const mangledHead = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_$"
const mangledTail = mangledHead + "0123456789"

// NextMinifiedName returns the next shortest-possible mangled export name in
// a deterministic base-54/64 sequence, mirroring esbuild's
// ast.DefaultNameMinifierJS.NumberToMinifiedName.
func (r *ExportRenamer) NextMinifiedName() string {
	name := numberToMinifiedName(r.count)
	r.count++
	return name
}

func numberToMinifiedName(i int) string {
	n := i % len(mangledHead)
	result := string(mangledHead[n])
	i = i / len(mangledHead)
	for i > 0 {
		i--
		n = i % len(mangledTail)
		result += string(mangledTail[n])
		i = i / len(mangledTail)
	}
	return result
}
