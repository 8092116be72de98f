package swfxml

// Document is a decoded FFDec XML document.
type Document struct {
	// Root is the <swf> element.
	Root *Element
}

// NewDocument wraps root and classifies the whole tree.
func NewDocument(root *Element) *Document {
	d := &Document{Root: root}
	d.Reclassify()
	return d
}

// Reclassify recomputes every element's Kind. Call it after editing
// identifying attributes (ids, depth, type) by hand.
func (d *Document) Reclassify() {
	if d == nil || d.Root == nil {
		return
	}
	classifyTree(d.Root, KindRoot)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{Root: d.Root.Clone()}
}

// Header returns the stage rectangle element, or nil.
func (d *Document) Header() *Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.ChildOfKind(KindHeader)
}

// Tags returns the <tags> container, or nil.
func (d *Document) Tags() *Element {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.ChildOfKind(KindTags)
}

func (d *Document) tagsOfKind(k Kind) []*Element {
	tags := d.Tags()
	if tags == nil {
		return nil
	}
	return tags.ChildrenOfKind(k)
}

func (d *Document) tagByID(k Kind, attr, id string) *Element {
	tags := d.Tags()
	if tags == nil {
		return nil
	}
	for _, c := range tags.Children {
		if c.Kind == k && c.AttrOr(attr, "") == id {
			return c
		}
	}
	return nil
}

// Shapes returns every shape definition in document order.
func (d *Document) Shapes() []*Element { return d.tagsOfKind(KindShape) }

// Sprites returns every sprite definition in document order.
func (d *Document) Sprites() []*Element { return d.tagsOfKind(KindSprite) }

// Texts returns every edit-text definition in document order.
func (d *Document) Texts() []*Element { return d.tagsOfKind(KindText) }

// Shape returns the shape with the given shapeId, or nil.
func (d *Document) Shape(id string) *Element { return d.tagByID(KindShape, AttrShapeID, id) }

// Sprite returns the sprite with the given spriteId, or nil.
func (d *Document) Sprite(id string) *Element { return d.tagByID(KindSprite, AttrSpriteID, id) }

// Text returns the first edit-text with the given characterID, or nil.
func (d *Document) Text(id string) *Element { return d.tagByID(KindText, AttrTextCharacterID, id) }

// Placements returns the placements inside a sprite's subTags.
func Placements(sprite *Element) []*Element {
	if sprite == nil {
		return nil
	}
	sub := sprite.ChildOfKind(KindSubTags)
	if sub == nil {
		return nil
	}
	return sub.ChildrenOfKind(KindPlacement)
}

// Stats counts the kinds present in the document.
type Stats struct {
	Shapes     int
	Sprites    int
	Placements int
	Texts      int
	Elements   int
}

// Stats walks the document and counts known kinds.
func (d *Document) Stats() Stats {
	var s Stats
	if d == nil || d.Root == nil {
		return s
	}
	d.Root.Walk(func(e *Element) bool {
		s.Elements++
		switch e.Kind {
		case KindShape:
			s.Shapes++
		case KindSprite:
			s.Sprites++
		case KindPlacement:
			s.Placements++
		case KindText:
			s.Texts++
		}
		return true
	})
	return s
}
