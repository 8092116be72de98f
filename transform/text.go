package transform

import (
	"regexp"
	"strconv"

	"golang.org/x/net/html"

	"github.com/erraggy/drip/internal/treepath"
	"github.com/erraggy/drip/patchspec"
	"github.com/erraggy/drip/swfxml"
)

var colorToken = regexp.MustCompile(`color="[^"]*"`)

// RewriteMarkupColor replaces every color="…" token in HTML text markup
// with the given "#rrggbb" value. The markup is entity-decoded first and
// re-encoded only when escape is set.
func RewriteMarkupColor(markup, hex string, escape bool) string {
	decoded := html.UnescapeString(markup)
	out := colorToken.ReplaceAllLiteralString(decoded, `color="`+hex+`"`)
	if escape {
		return html.EscapeString(out)
	}
	return out
}

// text applies one text edit.
func (r *run) text(idx int, te patchspec.TextEdit) {
	if len(te.Index) == 0 {
		r.invalidEdit(SectionText, idx, te.Pos, "index must list at least one character id")
		r.outcome(false)
		return
	}
	if te.Font == nil && te.UseOutlines == nil && te.Color == nil {
		r.invalidEdit(SectionText, idx, te.Pos, "text edit sets nothing")
		r.outcome(false)
		return
	}

	var targets []treepath.Match
	if NewAxis(te.Index).All {
		targets = allTexts.Select(r.doc.Root)
		if len(targets) == 0 {
			r.noMatch(SectionText, idx, te.Pos, "text *", "document has no text fields")
		}
	} else {
		seen := make(map[*swfxml.Element]struct{})
		for _, id := range NewAxis(te.Index).Values {
			found := textPath(id).Select(r.doc.Root)
			if len(found) == 0 {
				r.noMatch(SectionText, idx, te.Pos, "text "+id, "text not found")
				continue
			}
			for _, m := range found {
				if _, dup := seen[m.Element]; !dup {
					seen[m.Element] = struct{}{}
					targets = append(targets, m)
				}
			}
		}
	}
	if len(targets) == 0 {
		r.outcome(false)
		return
	}

	var color *patchspec.Color
	if te.Color != nil {
		c, err := patchspec.ParseColor(*te.Color)
		if err != nil {
			r.warn(&Warning{
				Category:  WarnInvalidValue,
				Section:   SectionText,
				EditIndex: idx,
				Selector:  "color",
				Cause:     err,
				Pos:       te.Pos,
			})
		} else {
			color = &c
		}
	}

	for _, m := range targets {
		if te.Font != nil {
			r.set(SectionText, idx, m, swfxml.AttrFontID, strconv.Itoa(*te.Font))
		}
		if te.UseOutlines != nil {
			r.set(SectionText, idx, m, swfxml.AttrUseOutlines, strconv.FormatBool(*te.UseOutlines))
		}
		if color != nil {
			r.textColor(idx, te, m, *color)
		}
	}
	r.outcome(true)
}

func (r *run) textColor(idx int, te patchspec.TextEdit, m treepath.Match, c patchspec.Color) {
	if markup, ok := m.Element.Attr(swfxml.AttrInitialText); ok {
		r.set(SectionText, idx, m, swfxml.AttrInitialText, RewriteMarkupColor(markup, c.Hex(), r.t.escapeMarkup))
	}

	tc := textColorPath.Select(m.Element)
	if len(tc) == 0 {
		id := m.Element.AttrOr(swfxml.AttrTextCharacterID, "?")
		r.missingNode(SectionText, idx, te.Pos, "text "+id, "text has no RGBA textColor")
		return
	}
	node := rooted(m, tc[0])
	ch := c.Channels()
	r.set(SectionText, idx, node, "red", ch[0])
	r.set(SectionText, idx, node, "green", ch[1])
	r.set(SectionText, idx, node, "blue", ch[2])
	r.set(SectionText, idx, node, "alpha", ch[3])
}
