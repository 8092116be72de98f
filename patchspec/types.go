package patchspec

import (
	"fmt"
	"strings"
)

// Wildcard selects every node on an axis (spriteId, characterId, depth, text index).
const Wildcard = "*"

// FileName is the conventional patch specification file name inside a patch directory.
const FileName = "patch.json"

// PatchSpec is an ordered mapping from target asset names to their edits.
//
// Asset names are relative to the asset directory of the extracted archive
// (for example "racesex_menu.swf"). Entry order is processing order.
type PatchSpec struct {
	// Root is the patch root: the directory containing the spec file.
	// Shape file paths resolve against it.
	Root string

	// Path is the spec file the document was loaded from, empty when parsed from bytes.
	Path string

	// Entries holds the edits in document order.
	Entries []*Entry
}

// Entry pairs a target asset name with its edits.
type Entry struct {
	Name string
	Pos  Pos
	Edit *FileEdit
}

// Len returns the number of target assets.
func (s *PatchSpec) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entries)
}

// Names returns the asset names in processing order.
func (s *PatchSpec) Names() []string {
	names := make([]string, 0, s.Len())
	for _, e := range s.Entries {
		names = append(names, e.Name)
	}
	return names
}

// Get returns the edits for the named asset.
func (s *PatchSpec) Get(name string) (*FileEdit, bool) {
	if s == nil {
		return nil, false
	}
	for _, e := range s.Entries {
		if e.Name == name {
			return e.Edit, true
		}
	}
	return nil, false
}

// Problems returns every load-time problem across all entries, tagged with the entry name.
func (s *PatchSpec) Problems() []Problem {
	var out []Problem
	if s == nil {
		return out
	}
	for _, e := range s.Entries {
		for _, p := range e.Edit.Problems {
			if p.Entry == "" {
				p.Entry = e.Name
			}
			out = append(out, p)
		}
	}
	return out
}

// FileEdit describes every edit for one target asset.
type FileEdit struct {
	Header  *Header
	Shapes  []ShapeEdit
	Sprites []SpriteEdit
	Text    []TextEdit

	// Problems lists fields that were present but could not be decoded.
	// They do not abort loading; consumers surface them as warnings.
	Problems []Problem
}

// IsEmpty reports whether the edit contains nothing to apply.
func (e *FileEdit) IsEmpty() bool {
	return e == nil || (e.Header == nil && len(e.Shapes) == 0 && len(e.Sprites) == 0 && len(e.Text) == 0)
}

// Header carries edits to the document header.
type Header struct {
	// DisplayRect overwrites attributes of the stage rectangle (Xmin, Xmax, Ymin, Ymax).
	DisplayRect AttrMap
	Pos         Pos
}

// HasEdits reports whether h sets any attribute. An empty or null header is
// treated as absent.
func (h *Header) HasEdits() bool {
	return h != nil && h.DisplayRect.Len() > 0
}

// ShapeEdit replaces shapes with an external vector file and optionally
// rewrites their bounds.
type ShapeEdit struct {
	// FilePath is the replacement file, relative to the patch root unless absolute.
	FilePath string
	// Index lists shape character ids to replace.
	Index []int
	// ShapeBounds overwrites attributes of each shape's shapeBounds node.
	ShapeBounds AttrMap
	Pos         Pos
}

// HasBounds reports whether the edit rewrites shape bounds.
func (e ShapeEdit) HasBounds() bool {
	return e.ShapeBounds.Len() > 0
}

// SpriteEdit rewrites the matrix and/or color transform of placements inside sprites.
//
// A nil CharacterID or Depth means the field was missing from the document.
type SpriteEdit struct {
	SpriteID       string
	CharacterID    []string
	Depth          []string
	Matrix         AttrMap
	ColorTransform AttrMap
	Pos            Pos
}

// TextEdit restyles edit-text fields. Nil pointers mean "leave unchanged".
type TextEdit struct {
	Index       []string
	Font        *int
	UseOutlines *bool
	Color       *string
	Pos         Pos
}

// Attr is one attribute assignment with its value kept as written.
type Attr struct {
	Key   string
	Value string
}

// AttrMap is an ordered list of attribute assignments. A nil AttrMap means
// the field was absent; an empty non-nil AttrMap means it was given as {}.
type AttrMap []Attr

// Len returns the number of assignments.
func (m AttrMap) Len() int { return len(m) }

// Get returns the value for key.
func (m AttrMap) Get(key string) (string, bool) {
	for _, a := range m {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in order.
func (m AttrMap) Keys() []string {
	keys := make([]string, len(m))
	for i, a := range m {
		keys[i] = a.Key
	}
	return keys
}

// Pos is a 1-based position in the spec document. The zero value means unknown.
type Pos struct {
	Line   int
	Column int
}

// IsValid reports whether the position is known.
func (p Pos) IsValid() bool { return p.Line > 0 }

// String returns "line:column" or "-" when unknown.
func (p Pos) String() string {
	if !p.IsValid() {
		return "-"
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Problem is a non-fatal decoding issue found while loading an edit.
type Problem struct {
	// Entry is the target asset name.
	Entry string
	// Field is a dotted path inside the entry, e.g. "sprites[1].CharacterID".
	Field   string
	Message string
	Pos     Pos
}

// String formats the problem for logs.
func (p Problem) String() string {
	var b strings.Builder
	if p.Pos.IsValid() {
		fmt.Fprintf(&b, "line %d: ", p.Pos.Line)
	}
	if p.Entry != "" {
		b.WriteString(p.Entry)
		if p.Field != "" {
			b.WriteString(".")
		} else {
			b.WriteString(": ")
		}
	}
	if p.Field != "" {
		b.WriteString(p.Field)
		b.WriteString(": ")
	}
	b.WriteString(p.Message)
	return b.String()
}
