package patchspec

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationError describes a structural problem found by Validate.
type ValidationError struct {
	// Entry is the target asset name, empty for document-level errors.
	Entry string
	// Path locates the field inside the entry (e.g. "sprites[0].CharacterID").
	Path    string
	Message string
	Pos     Pos
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	loc := e.Entry
	if e.Path != "" {
		if loc != "" {
			loc += "."
		}
		loc += e.Path
	}
	msg := "patchspec: validation error"
	if loc != "" {
		msg += " at " + loc
	}
	if e.Pos.IsValid() {
		msg += fmt.Sprintf(" (line %d)", e.Pos.Line)
	}
	return msg + ": " + e.Message
}

// Validate performs the strict checks that loading skips. An empty result
// means the spec is valid. Checks include:
//   - at least one entry; names are relative .swf paths
//   - no empty edits and no load-time problems
//   - required fields (filePath, index, SpriteID, CharacterID, Depth) present and non-empty
//   - every sprite edit changes a matrix or color transform
//   - every text edit changes something and carries a well-formed color
func Validate(s *PatchSpec) []ValidationError {
	var errs []ValidationError
	if s.Len() == 0 {
		return append(errs, ValidationError{Message: "spec has no entries"})
	}
	for _, e := range s.Entries {
		errs = append(errs, validateEntry(e)...)
	}
	return errs
}

// IsValid reports whether Validate finds nothing.
func IsValid(s *PatchSpec) bool {
	return len(Validate(s)) == 0
}

func validateEntry(e *Entry) []ValidationError {
	var errs []ValidationError
	add := func(field string, p Pos, format string, args ...any) {
		errs = append(errs, ValidationError{Entry: e.Name, Path: field, Pos: p, Message: fmt.Sprintf(format, args...)})
	}

	switch {
	case strings.TrimSpace(e.Name) == "":
		add("", e.Pos, "asset name is empty")
	case !strings.EqualFold(path.Ext(e.Name), ".swf"):
		add("", e.Pos, "asset name must end in .swf")
	case filepath.IsAbs(e.Name) || escapes(e.Name):
		add("", e.Pos, "asset name must be a relative path inside the asset directory")
	}

	for _, p := range e.Edit.Problems {
		add(p.Field, p.Pos, "%s", p.Message)
	}
	if e.Edit.IsEmpty() {
		add("", e.Pos, "entry has no edits")
		return errs
	}

	if h := e.Edit.Header; h != nil && h.DisplayRect.Len() == 0 {
		add("header.displayRect", h.Pos, "header must set displayRect attributes")
	}

	for i, sh := range e.Edit.Shapes {
		f := fmt.Sprintf("shapes[%d]", i)
		if sh.FilePath == "" {
			add(f+".filePath", sh.Pos, "filePath is required")
		}
		if len(sh.Index) == 0 {
			add(f+".index", sh.Pos, "index must list at least one shape id")
		}
	}

	for i, sp := range e.Edit.Sprites {
		f := fmt.Sprintf("sprites[%d]", i)
		if sp.SpriteID == "" {
			add(f+".SpriteID", sp.Pos, "SpriteID is required")
		}
		if len(sp.CharacterID) == 0 {
			add(f+".CharacterID", sp.Pos, "CharacterID must list at least one id or %q", Wildcard)
		}
		if len(sp.Depth) == 0 {
			add(f+".Depth", sp.Pos, "Depth must list at least one depth or %q", Wildcard)
		}
		if sp.Matrix == nil && sp.ColorTransform == nil {
			add(f, sp.Pos, "sprite edit must set MATRIX or colorTransform")
		}
		if mixesWildcard(sp.CharacterID) || mixesWildcard(sp.Depth) {
			add(f, sp.Pos, "%q combined with explicit values; the wildcard wins", Wildcard)
		}
	}

	for i, t := range e.Edit.Text {
		f := fmt.Sprintf("text[%d]", i)
		if len(t.Index) == 0 {
			add(f+".index", t.Pos, "index must list at least one character id or %q", Wildcard)
		}
		if t.Font == nil && t.UseOutlines == nil && t.Color == nil {
			add(f, t.Pos, "text edit must set font, useOutlines or color")
		}
		if t.Color != nil {
			if _, err := ParseColor(*t.Color); err != nil {
				add(f+".color", t.Pos, "%v", err)
			}
		}
	}
	return errs
}

func mixesWildcard(values []string) bool {
	return len(values) > 1 && slices.Contains(values, Wildcard)
}

func escapes(name string) bool {
	clean := path.Clean(filepath.ToSlash(name))
	return clean == ".." || strings.HasPrefix(clean, "../")
}
