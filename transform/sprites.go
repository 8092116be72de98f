package transform

import (
	"fmt"
	"slices"
	"strings"

	"github.com/erraggy/drip/internal/treepath"
	"github.com/erraggy/drip/patchspec"
	"github.com/erraggy/drip/swfxml"
)

// colorTransformTemplate is the zeroed CXFORMWITHALPHA used when a placement
// has no color transform yet. Order matches FFDec's export.
var colorTransformTemplate = []swfxml.Attr{
	{Name: "type", Value: "CXFORMWITHALPHA"},
	{Name: "alphaAddTerm", Value: "0"},
	{Name: "alphaMultTerm", Value: "0"},
	{Name: "blueAddTerm", Value: "0"},
	{Name: "blueMultTerm", Value: "0"},
	{Name: "greenAddTerm", Value: "0"},
	{Name: "greenMultTerm", Value: "0"},
	{Name: "hasAddTerms", Value: "false"},
	{Name: "hasMultTerms", Value: "false"},
	{Name: "nbits", Value: "10"},
	{Name: "redAddTerm", Value: "0"},
	{Name: "redMultTerm", Value: "0"},
}

// NewColorTransform returns a fresh element built from the zeroed template.
func NewColorTransform() *swfxml.Element {
	return swfxml.NewElement(swfxml.NameColorTransform, swfxml.KindColorTransform, slices.Clone(colorTransformTemplate)...)
}

func describeSprite(s patchspec.SpriteEdit) string {
	return fmt.Sprintf("sprite %s characterId=[%s] depth=[%s]",
		s.SpriteID, strings.Join(s.CharacterID, ","), strings.Join(s.Depth, ","))
}

// sprite applies one sprite edit to the matching sprite scope(s).
func (r *run) sprite(idx int, s patchspec.SpriteEdit) {
	chars, depths := NewAxis(s.CharacterID), NewAxis(s.Depth)
	switch {
	case s.SpriteID == "":
		r.invalidEdit(SectionSprites, idx, s.Pos, "SpriteID is missing")
		r.outcome(false)
		return
	case chars.IsEmpty() || depths.IsEmpty():
		r.invalidEdit(SectionSprites, idx, s.Pos, "CharacterID and Depth must each list at least one value")
		r.outcome(false)
		return
	case s.Matrix == nil && s.ColorTransform == nil:
		r.invalidEdit(SectionSprites, idx, s.Pos, "sprite edit sets neither MATRIX nor colorTransform")
		r.outcome(false)
		return
	}

	scopes := spritePath(s.SpriteID).Select(r.doc.Root)
	if len(scopes) == 0 {
		msg := "sprite not found"
		if s.SpriteID == patchspec.Wildcard {
			msg = "document has no sprites"
		}
		r.noMatch(SectionSprites, idx, s.Pos, "sprite "+s.SpriteID, msg)
		r.outcome(false)
		return
	}

	applied := false
	if s.Matrix != nil {
		var matrices []treepath.Match
		for _, scope := range scopes {
			matrices = append(matrices, SelectTransforms(SelectPlacements(scope, chars, depths), swfxml.NameMatrix)...)
		}
		if len(matrices) == 0 {
			r.noMatch(SectionSprites, idx, s.Pos, describeSprite(s), "no matrix found")
		}
		for _, m := range matrices {
			r.setAll(SectionSprites, idx, m, s.Matrix, true)
			applied = true
		}
	}

	if s.ColorTransform != nil {
		matchedPlacement := false
		for _, scope := range scopes {
			placements := SelectPlacements(scope, chars, depths)
			if len(placements) == 0 {
				continue
			}
			matchedPlacement = true
			transforms := SelectTransforms(placements, swfxml.NameColorTransform)
			if len(transforms) == 0 {
				transforms = r.synthesize(idx, placements)
			}
			for _, m := range transforms {
				r.setAll(SectionSprites, idx, m, s.ColorTransform, true)
				applied = true
			}
		}
		if !matchedPlacement {
			r.noMatch(SectionSprites, idx, s.Pos, describeSprite(s), "no placement found for colorTransform")
		}
	}
	r.outcome(applied)
}

// synthesize attaches a template colorTransform to every placement and
// flags the placement as carrying one.
func (r *run) synthesize(idx int, placements []treepath.Match) []treepath.Match {
	out := make([]treepath.Match, 0, len(placements))
	for _, pl := range placements {
		ct := NewColorTransform()
		insertAfterMatrix(pl.Element, ct)
		m := locate(pl, ct)
		r.created(SectionSprites, idx, m.Location)
		r.set(SectionSprites, idx, pl, swfxml.AttrPlaceFlagHasColorTransform, "true")
		out = append(out, m)
	}
	return out
}

// insertAfterMatrix places ct directly after the placement's matrix, or last
// when there is none.
func insertAfterMatrix(placement, ct *swfxml.Element) {
	for i, c := range placement.Children {
		if c.Name == swfxml.NameMatrix {
			placement.Children = slices.Insert(placement.Children, i+1, ct)
			return
		}
	}
	placement.AppendChild(ct)
}
