package transform

import (
	"fmt"

	"github.com/erraggy/drip/patchspec"
)

// Section names the edit family a change or warning belongs to.
type Section string

// Edit families, in the order they are applied.
const (
	SectionHeader  Section = "header"
	SectionShapes  Section = "shapes"
	SectionSprites Section = "sprites"
	SectionText    Section = "text"
)

// Operation describes what a change did.
type Operation string

const (
	// OpSet overwrote or added an attribute.
	OpSet Operation = "set"
	// OpCreate synthesized a missing element.
	OpCreate Operation = "create"
)

// Result reports what Apply or DryRun did.
type Result struct {
	// EditsApplied counts edits that matched at least one node.
	EditsApplied int

	// EditsSkipped counts edits that matched nothing or were invalid.
	EditsSkipped int

	// Changes records every attribute write and element creation, in order.
	Changes []ChangeRecord

	// Warnings contains the non-fatal issues encountered.
	Warnings Warnings
}

// HasChanges reports whether the tree was (or would be) modified.
func (r *Result) HasChanges() bool { return len(r.Changes) > 0 }

// HasWarnings reports whether any warnings were generated.
func (r *Result) HasWarnings() bool { return len(r.Warnings) > 0 }

// ChangeRecord describes a single change to the tree.
type ChangeRecord struct {
	Section Section
	// EditIndex is the zero-based position of the edit in its section (0 for the header).
	EditIndex int
	Operation Operation
	// Location addresses the element from the document root, e.g.
	// "tags[1]/item[7]/subTags[1]/item[1]/matrix[1]".
	Location string
	// Attr, Old and New are empty for OpCreate.
	Attr    string
	Old     string
	New     string
	Existed bool
}

// String formats the change for logs and reports.
func (c ChangeRecord) String() string {
	if c.Operation == OpCreate {
		return fmt.Sprintf("%s[%d] create %s", c.Section, c.EditIndex, c.Location)
	}
	if !c.Existed {
		return fmt.Sprintf("%s[%d] %s @%s: (unset) -> %q", c.Section, c.EditIndex, c.Location, c.Attr, c.New)
	}
	return fmt.Sprintf("%s[%d] %s @%s: %q -> %q", c.Section, c.EditIndex, c.Location, c.Attr, c.Old, c.New)
}

// WarningCategory identifies the type of transform warning.
type WarningCategory string

const (
	// WarnNoMatch indicates a selector matched no nodes.
	WarnNoMatch WarningCategory = "no_match"
	// WarnMissingNode indicates a matched node lacks the child an edit needs
	// (shapeBounds, textColor, header).
	WarnMissingNode WarningCategory = "missing_node"
	// WarnInvalidValue indicates a value that cannot be applied, e.g. a bad hex color.
	WarnInvalidValue WarningCategory = "invalid_value"
	// WarnInvalidEdit indicates an edit missing required fields.
	WarnInvalidEdit WarningCategory = "invalid_edit"
)

// Warning is a non-fatal issue: the affected edit (or part of it) is skipped
// and processing continues.
type Warning struct {
	Category  WarningCategory
	Section   Section
	EditIndex int
	// Selector describes what was looked up, e.g. "sprite 5" or a tree path.
	Selector string
	Message  string
	Cause    error
	Pos      patchspec.Pos
}

// String returns a formatted warning message.
func (w *Warning) String() string {
	msg := w.Message
	if msg == "" && w.Cause != nil {
		msg = w.Cause.Error()
	}
	if msg == "" {
		msg = string(w.Category)
	}
	if w.Selector == "" {
		return fmt.Sprintf("%s[%d]: %s", w.Section, w.EditIndex, msg)
	}
	return fmt.Sprintf("%s[%d] %s: %s", w.Section, w.EditIndex, w.Selector, msg)
}

// Error implements error so warnings can be matched with errors.Is.
func (w *Warning) Error() string { return w.String() }

// Unwrap returns the underlying cause for errors.Is/As support.
func (w *Warning) Unwrap() error { return w.Cause }

// Location returns the edit location, e.g. "sprites[2]".
func (w *Warning) Location() string {
	return fmt.Sprintf("%s[%d]", w.Section, w.EditIndex)
}

// Warnings is a collection of Warning.
type Warnings []*Warning

// Strings returns formatted messages.
func (ws Warnings) Strings() []string {
	result := make([]string, len(ws))
	for i, w := range ws {
		if w == nil {
			continue
		}
		result[i] = w.String()
	}
	return result
}

// ByCategory filters warnings by category.
func (ws Warnings) ByCategory(cat WarningCategory) Warnings {
	var result Warnings
	for _, w := range ws {
		if w != nil && w.Category == cat {
			result = append(result, w)
		}
	}
	return result
}
