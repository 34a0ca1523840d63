// Package sourcemap composes a chunk-level source map out of per-module
// fragments as they are concatenated, and encodes/decodes the VLQ mappings
// field. Grounded on esbuild's internal/sourcemap/sourcemap.go
// (encodeVLQ/DecodeVLQ, ChunkBuilder).
package sourcemap

import (
	"encoding/json"
	"strings"
)

const vlqBase64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// EncodeVLQ appends value, base64-VLQ-encoded, to encoded.
func EncodeVLQ(encoded []byte, value int) []byte {
	vlq := value << 1
	if value < 0 {
		vlq = (-value << 1) | 1
	}
	for {
		digit := vlq & 0x1F
		vlq >>= 5
		if vlq != 0 {
			digit |= 0x20
		}
		encoded = append(encoded, vlqBase64Chars[digit])
		if vlq == 0 {
			break
		}
	}
	return encoded
}

// DecodeVLQ decodes one VLQ value starting at start, returning the value and
// the index just past it.
func DecodeVLQ(encoded string, start int) (int, int) {
	shift := 0
	vlq := 0
	for {
		index := strings.IndexByte(vlqBase64Chars, encoded[start])
		if index < 0 {
			break
		}
		start++
		vlq |= (index &^ 0x20) << shift
		if (index & 0x20) == 0 {
			break
		}
		shift += 5
	}
	value := vlq >> 1
	if vlq&1 != 0 {
		value = -value
	}
	return value, start
}

// Map is a decoded source map, version 3 ("sources" + "mappings" form).
type Map struct {
	Sources        []string
	SourcesContent []string
	Names          []string
	// Segments is the decoded per-generated-line list of mapping segments.
	Segments [][]Segment
}

// Segment is one mapping: generated column, plus the source-relative fields
// (valid only if HasSource).
type Segment struct {
	GeneratedColumn int
	HasSource       bool
	SourceIndex     int
	OriginalLine    int
	OriginalColumn  int
	HasName         bool
	NameIndex       int
}

// jsonMap is the on-the-wire shape.
type jsonMap struct {
	Version        int      `json:"version"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
	File           string   `json:"file,omitempty"`
}

// Encode serialises m to the standard JSON source map text.
func (m *Map) Encode(file string, excludeSourcesContent bool) string {
	var sb strings.Builder
	for lineIdx, line := range m.Segments {
		if lineIdx > 0 {
			sb.WriteByte(';')
		}
		var prevGenCol, prevSrc, prevLine, prevCol, prevName int
		for segIdx, seg := range line {
			if segIdx > 0 {
				sb.WriteByte(',')
			}
			buf := EncodeVLQ(nil, seg.GeneratedColumn-prevGenCol)
			prevGenCol = seg.GeneratedColumn
			if seg.HasSource {
				buf = EncodeVLQ(buf, seg.SourceIndex-prevSrc)
				prevSrc = seg.SourceIndex
				buf = EncodeVLQ(buf, seg.OriginalLine-prevLine)
				prevLine = seg.OriginalLine
				buf = EncodeVLQ(buf, seg.OriginalColumn-prevCol)
				prevCol = seg.OriginalColumn
				if seg.HasName {
					buf = EncodeVLQ(buf, seg.NameIndex-prevName)
					prevName = seg.NameIndex
				}
			}
			sb.Write(buf)
		}
	}

	content := m.SourcesContent
	if excludeSourcesContent {
		content = nil
	}
	out := jsonMap{
		Version:        3,
		Sources:        m.Sources,
		SourcesContent: content,
		Names:          m.Names,
		Mappings:       sb.String(),
		File:           file,
	}
	b, _ := json.Marshal(out)
	return string(b)
}

// Builder composes a Map while a chunk's modules are concatenated in order,
// tracking the generated line/column cursor the way esbuild's ChunkBuilder
// does, but at line granularity (see graph.RenderedModule's doc comment for
// why this module doesn't track sub-line positions).
type Builder struct {
	sourceIndex map[string]int
	m           Map
	genLine     int
}

func NewBuilder() *Builder {
	return &Builder{sourceIndex: map[string]int{}}
}

// AddSource registers sourceName (if new) and returns its source index.
func (b *Builder) AddSource(sourceName, content string, excludeContent bool) int {
	if idx, ok := b.sourceIndex[sourceName]; ok {
		return idx
	}
	idx := len(b.m.Sources)
	b.sourceIndex[sourceName] = idx
	b.m.Sources = append(b.m.Sources, sourceName)
	if !excludeContent {
		b.m.SourcesContent = append(b.m.SourcesContent, content)
	}
	return idx
}

// AppendModule records one line-for-line identity mapping per generated
// line contributed by a module's rendered body (lineCount lines), then
// advances the generated-line cursor.
func (b *Builder) AppendModule(sourceIndex, lineCount int) {
	for i := 0; i < lineCount; i++ {
		for len(b.m.Segments) <= b.genLine {
			b.m.Segments = append(b.m.Segments, nil)
		}
		b.m.Segments[b.genLine] = append(b.m.Segments[b.genLine], Segment{
			GeneratedColumn: 0,
			HasSource:       true,
			SourceIndex:     sourceIndex,
			OriginalLine:    i,
			OriginalColumn:  0,
		})
		b.genLine++
	}
}

// AdvanceLines moves the generated-line cursor without emitting mappings,
// used for injected boilerplate (namespace shims, exports shims) that has no
// corresponding original source location.
func (b *Builder) AdvanceLines(n int) {
	b.genLine += n
}

func (b *Builder) Map() *Map { return &b.m }

// Collapse composes this map with a chain of subsequent transformation maps
// (e.g. from a render-chunk plugin hook), producing one map from the
// original sources straight to the final output. Maps later in chain were
// produced from the output of the one before; an empty chain returns base
// unchanged. This mirrors the purpose of esbuild's SourceMapPieces.Finalize
// collapsing step, simplified to line-level fidelity (see Builder's doc
// comment).
func Collapse(base *Map, chain []*Map) *Map {
	if len(chain) == 0 {
		return base
	}
	result := base
	for _, next := range chain {
		result = collapsePair(result, next)
	}
	return result
}

func collapsePair(base, next *Map) *Map {
	out := &Map{Sources: base.Sources, SourcesContent: base.SourcesContent, Names: base.Names}
	for lineIdx, line := range next.Segments {
		for _, seg := range line {
			if !seg.HasSource {
				continue
			}
			// seg maps next-generated -> base-generated; resolve through base
			// to get next-generated -> original.
			if seg.SourceIndex >= len(base.Segments) {
				continue
			}
			baseLine := seg.OriginalLine
			if baseLine >= len(base.Segments) || len(base.Segments[baseLine]) == 0 {
				continue
			}
			origSeg := base.Segments[baseLine][0]
			for len(out.Segments) <= lineIdx {
				out.Segments = append(out.Segments, nil)
			}
			out.Segments[lineIdx] = append(out.Segments[lineIdx], Segment{
				GeneratedColumn: seg.GeneratedColumn,
				HasSource:       true,
				SourceIndex:     origSeg.SourceIndex,
				OriginalLine:    origSeg.OriginalLine,
				OriginalColumn:  origSeg.OriginalColumn,
			})
		}
	}
	return out
}
