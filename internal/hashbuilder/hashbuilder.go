// Package hashbuilder provides the incremental content hash used for
// chunk-filename stability (spec.md §4.10). Grounded on the streaming
// "hash := xxhash.New()" idiom in esbuild's internal/linker/linker.go;
// esbuild's xxhash is vendored internally and isn't present in the retrieval
// pack, so this module depends on the public github.com/cespare/xxhash/v2
// package instead, which recurs in the pack's own dependency graphs.
package hashbuilder

import (
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Hash is the seam spec.md §6 calls "a createHash() factory returning an
// object with update(bytes) and digest('hex')".
type Hash interface {
	io.Writer
	DigestHex() string
}

type xxHash struct {
	d *xxhash.Digest
}

func New() Hash {
	return &xxHash{d: xxhash.New()}
}

func (h *xxHash) Write(p []byte) (int, error) {
	return h.d.Write(p)
}

func (h *xxHash) DigestHex() string {
	sum := h.d.Sum(nil)
	return hex.EncodeToString(sum)
}

// Builder absorbs ordered byte fragments and produces the first 8 hex digits
// of the resulting digest, per spec.md §4.10 ("Return the first 8 hex
// digits").
type Builder struct {
	h Hash
}

func NewBuilder() *Builder {
	return &Builder{h: New()}
}

func (b *Builder) AbsorbString(s string) *Builder {
	b.h.Write([]byte(s))
	return b
}

func (b *Builder) AbsorbBytes(p []byte) *Builder {
	b.h.Write(p)
	return b
}

// Digest8 returns the first 8 hex digits of the digest, the [hash]
// placeholder's canonical length (spec.md §4.9).
func (b *Builder) Digest8() string {
	full := b.h.DigestHex()
	if len(full) < 8 {
		return full
	}
	return full[:8]
}
