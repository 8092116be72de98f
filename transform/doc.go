// Package transform applies patch edits to an FFDec XML tree.
//
// Edits are applied in a fixed order: header, shape bounds, sprites, text.
// Every selector that matches nothing becomes a [Warning] whose cause is
// driperrors.ErrUnresolvedSelector; the edit (or the affected part of it) is
// skipped and the rest of the run continues.
//
// # Sprite selection
//
// A sprite edit picks a sprite by id ("*" for every sprite) and then the
// placements inside it by characterId × depth. Each axis is either a list of
// values or the wildcard, which dominates the axis:
//
//	characterId  depth   placements selected
//	["*"]        ["*"]   every placement
//	["*"]        [1, 2]  any characterId at depth 1 or 2
//	[3, 4]       ["*"]   characterId 3 or 4 at any depth
//	[3, 4]       [1]     (3,1) and (4,1), where present
//
// MATRIX values are written to the placements' matrix nodes, which are never
// created. colorTransform values go to the placements' colorTransform nodes;
// when a sprite scope has none, one is synthesized per matched placement from
// a zeroed CXFORMWITHALPHA template and the placement's
// placeFlagHasColorTransform is set to true.
//
// # Text
//
// Text edits select DefineEditTextTag nodes by characterID ("*" for all) and
// set fontId, useOutlines and color. A color rewrites every color="…" token
// of the html initialText and the RGBA textColor channels.
//
// # Usage
//
//	tr := transform.New(transform.WithLogger(logger))
//	res, err := tr.Apply(doc, edit)
//	for _, w := range res.Warnings {
//	    fmt.Println(w)
//	}
//
// [Transformer.DryRun] reports the same changes against a copy of the tree.
package transform
