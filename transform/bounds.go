package transform

import (
	"strconv"

	"github.com/erraggy/drip/internal/treepath"
	"github.com/erraggy/drip/patchspec"
)

// header overwrites displayRect attributes on the document header. A header
// without displayRect attributes is treated as absent.
func (r *run) header(h *patchspec.Header) {
	if !h.HasEdits() {
		return
	}
	el := r.doc.Header()
	if el == nil {
		r.missingNode(SectionHeader, 0, h.Pos, "displayRect", "document has no header node")
		r.outcome(false)
		return
	}
	m := locate(treepath.Match{Element: r.doc.Root}, el)
	r.setAll(SectionHeader, 0, m, h.DisplayRect, false)
	r.outcome(true)
}

// shapeBounds rewrites the shapeBounds of every shape the edit lists.
func (r *run) shapeBounds(idx int, s patchspec.ShapeEdit) {
	root := treepath.Match{Element: r.doc.Root}
	applied := false
	for _, id := range s.Index {
		shape := shapePath(id).Select(root.Element)
		if len(shape) == 0 {
			r.noMatch(SectionShapes, idx, s.Pos, "shape "+strconv.Itoa(id), "shape not found")
			continue
		}
		bounds := boundsPath.Select(shape[0].Element)
		if len(bounds) == 0 {
			r.missingNode(SectionShapes, idx, s.Pos, "shape "+strconv.Itoa(id), "shape has no shapeBounds")
			continue
		}
		r.setAll(SectionShapes, idx, rooted(shape[0], bounds[0]), s.ShapeBounds, true)
		applied = true
	}
	r.outcome(applied)
}
