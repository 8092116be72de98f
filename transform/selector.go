package transform

import (
	"slices"
	"strconv"

	"github.com/erraggy/drip/internal/treepath"
	"github.com/erraggy/drip/patchspec"
	"github.com/erraggy/drip/swfxml"
)

// Axis is one dimension of a placement selector. All means the wildcard
// was given and dominates any explicit values.
type Axis struct {
	All    bool
	Values []string
}

// NewAxis builds an axis from spec values, dropping duplicates.
func NewAxis(values []string) Axis {
	if slices.Contains(values, patchspec.Wildcard) {
		return Axis{All: true}
	}
	var a Axis
	for _, v := range values {
		if !slices.Contains(a.Values, v) {
			a.Values = append(a.Values, v)
		}
	}
	return a
}

// IsEmpty reports whether the axis selects nothing.
func (a Axis) IsEmpty() bool { return !a.All && len(a.Values) == 0 }

// predicates returns one predicate per alternative on this axis: a single
// presence test for the wildcard, otherwise one equality test per value.
func (a Axis) predicates(attr string) []treepath.Predicate {
	if a.All {
		return []treepath.Predicate{treepath.Has(attr)}
	}
	out := make([]treepath.Predicate, len(a.Values))
	for i, v := range a.Values {
		out[i] = treepath.Eq(attr, v)
	}
	return out
}

// PlacementPaths expands a characterId × depth selector into the paths that
// select placements relative to a sprite. The four wildcard combinations all
// fall out of the same cartesian product, since a wildcard axis contributes
// exactly one alternative.
func PlacementPaths(chars, depths Axis) []*treepath.Path {
	base := treepath.New().Child(swfxml.NameSubTags)
	var paths []*treepath.Path
	for _, c := range chars.predicates(swfxml.AttrCharacterID) {
		for _, d := range depths.predicates(swfxml.AttrDepth) {
			paths = append(paths, base.Child(swfxml.NameItem, c, d))
		}
	}
	return paths
}

// SelectPlacements resolves placements inside one sprite scope, in request
// order, each placement at most once.
func SelectPlacements(sprite treepath.Match, chars, depths Axis) []treepath.Match {
	var out []treepath.Match
	seen := make(map[*swfxml.Element]struct{})
	for _, p := range PlacementPaths(chars, depths) {
		for _, m := range p.Select(sprite.Element) {
			if _, dup := seen[m.Element]; dup {
				continue
			}
			seen[m.Element] = struct{}{}
			out = append(out, rooted(sprite, m))
		}
	}
	return out
}

// SelectTransforms returns the child nodes named node (matrix or
// colorTransform) of the given placements.
func SelectTransforms(placements []treepath.Match, node string) []treepath.Match {
	p := treepath.New().Child(node)
	var out []treepath.Match
	for _, pl := range placements {
		for _, m := range p.Select(pl.Element) {
			out = append(out, rooted(pl, m))
		}
	}
	return out
}

var (
	allSprites = treepath.New().Child(swfxml.NameTags).Child(swfxml.NameItem, treepath.Has(swfxml.AttrSpriteID))
	allTexts   = treepath.New().Child(swfxml.NameTags).Child(swfxml.NameItem,
		treepath.Eq(swfxml.AttrType, swfxml.TypeDefineEditText), treepath.Has(swfxml.AttrTextCharacterID))
	boundsPath    = treepath.MustParse(swfxml.NameShapeBounds)
	textColorPath = treepath.MustParse(swfxml.NameTextColor + "[@" + swfxml.AttrType + "='RGBA']")
)

func spritePath(id string) *treepath.Path {
	if id == patchspec.Wildcard {
		return allSprites
	}
	return treepath.New().Child(swfxml.NameTags).Child(swfxml.NameItem, treepath.Eq(swfxml.AttrSpriteID, id))
}

func shapePath(id int) *treepath.Path {
	return treepath.New().Child(swfxml.NameTags).Child(swfxml.NameItem, treepath.Eq(swfxml.AttrShapeID, strconv.Itoa(id)))
}

func textPath(id string) *treepath.Path {
	if id == patchspec.Wildcard {
		return allTexts
	}
	return treepath.New().Child(swfxml.NameTags).Child(swfxml.NameItem,
		treepath.Eq(swfxml.AttrType, swfxml.TypeDefineEditText), treepath.Eq(swfxml.AttrTextCharacterID, id))
}

// locate returns the location of child under parent, in treepath's
// "name[n]" form.
func locate(parent treepath.Match, child *swfxml.Element) treepath.Match {
	n := 0
	for _, c := range parent.Element.Children {
		if c.Name == child.Name {
			n++
		}
		if c == child {
			break
		}
	}
	seg := child.Name + "[" + strconv.Itoa(n) + "]"
	if parent.Location != "" {
		seg = parent.Location + "/" + seg
	}
	return treepath.Match{Element: child, Location: seg}
}
