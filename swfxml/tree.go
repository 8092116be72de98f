package swfxml

// Kind tags the element shapes the patch engine understands.
type Kind int

// Element kinds.
const (
	KindOther Kind = iota
	KindRoot
	KindHeader
	KindTags
	KindShape
	KindShapeBounds
	KindSprite
	KindSubTags
	KindPlacement
	KindMatrix
	KindColorTransform
	KindText
	KindTextColor
)

var kindNames = [...]string{
	KindOther:          "other",
	KindRoot:           "root",
	KindHeader:         "header",
	KindTags:           "tags",
	KindShape:          "shape",
	KindShapeBounds:    "shapeBounds",
	KindSprite:         "sprite",
	KindSubTags:        "subTags",
	KindPlacement:      "placement",
	KindMatrix:         "matrix",
	KindColorTransform: "colorTransform",
	KindText:           "text",
	KindTextColor:      "textColor",
}

// String returns the kind name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Well-known attribute names.
const (
	AttrType                       = "type"
	AttrShapeID                    = "shapeId"
	AttrSpriteID                   = "spriteId"
	AttrCharacterID                = "characterId"
	AttrDepth                      = "depth"
	AttrTextCharacterID            = "characterID"
	AttrInitialText                = "initialText"
	AttrFontID                     = "fontId"
	AttrUseOutlines                = "useOutlines"
	AttrPlaceFlagHasColorTransform = "placeFlagHasColorTransform"
)

// Well-known element names.
const (
	NameItem           = "item"
	NameDisplayRect    = "displayRect"
	NameTags           = "tags"
	NameSubTags        = "subTags"
	NameShapeBounds    = "shapeBounds"
	NameMatrix         = "matrix"
	NameColorTransform = "colorTransform"
	NameTextColor      = "textColor"
)

// TypeDefineEditText is the tag type of editable text fields.
const TypeDefineEditText = "DefineEditTextTag"

// Attr is one XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a node of the intermediate tree. Children are owned; there are
// no parent links, so subtrees can be compared and copied freely.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
	// Text is non-whitespace character data directly inside the element.
	Text string
	Kind Kind
}

// NewElement creates an element with the given attributes, in order.
func NewElement(name string, kind Kind, attrs ...Attr) *Element {
	return &Element{Name: name, Kind: kind, Attrs: attrs}
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrOr returns the named attribute or def when it is absent.
func (e *Element) AttrOr(name, def string) string {
	if v, ok := e.Attr(name); ok {
		return v
	}
	return def
}

// HasAttr reports whether the attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets an attribute in place, appending it when absent. It returns
// the previous value and whether one existed.
func (e *Element) SetAttr(name, value string) (old string, existed bool) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == name {
			old = e.Attrs[i].Value
			e.Attrs[i].Value = value
			return old, true
		}
	}
	e.Attrs = append(e.Attrs, Attr{Name: name, Value: value})
	return "", false
}

// Child returns the first child with the given name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ChildOfKind returns the first child of kind k.
func (e *Element) ChildOfKind(k Kind) *Element {
	for _, c := range e.Children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns the children of kind k in document order.
func (e *Element) ChildrenOfKind(k Kind) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// AppendChild adds c as the last child.
func (e *Element) AppendChild(c *Element) {
	e.Children = append(e.Children, c)
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	c := &Element{Name: e.Name, Text: e.Text, Kind: e.Kind}
	if e.Attrs != nil {
		c.Attrs = make([]Attr, len(e.Attrs))
		copy(c.Attrs, e.Attrs)
	}
	if e.Children != nil {
		c.Children = make([]*Element, len(e.Children))
		for i, ch := range e.Children {
			c.Children[i] = ch.Clone()
		}
	}
	return c
}

// Walk visits e and its descendants depth-first. Returning false from fn
// skips the element's children.
func (e *Element) Walk(fn func(*Element) bool) {
	if e == nil || !fn(e) {
		return
	}
	for _, c := range e.Children {
		c.Walk(fn)
	}
}

// classify derives the kind of e from its parent's kind. index is e's
// position among its parent's element children.
func classify(parent Kind, index int, e *Element) Kind {
	switch parent {
	case KindRoot:
		switch {
		case e.Name == NameTags:
			return KindTags
		case e.Name == NameDisplayRect, index == 0:
			return KindHeader
		}
	case KindTags:
		if e.Name != NameItem {
			break
		}
		switch {
		case e.HasAttr(AttrShapeID):
			return KindShape
		case e.HasAttr(AttrSpriteID):
			return KindSprite
		case e.AttrOr(AttrType, "") == TypeDefineEditText && e.HasAttr(AttrTextCharacterID):
			return KindText
		}
	case KindShape:
		if e.Name == NameShapeBounds {
			return KindShapeBounds
		}
	case KindSprite:
		if e.Name == NameSubTags {
			return KindSubTags
		}
	case KindSubTags:
		if e.Name == NameItem && e.HasAttr(AttrCharacterID) && e.HasAttr(AttrDepth) {
			return KindPlacement
		}
	case KindPlacement:
		switch e.Name {
		case NameMatrix:
			return KindMatrix
		case NameColorTransform:
			return KindColorTransform
		}
	case KindText:
		if e.Name == NameTextColor {
			return KindTextColor
		}
	}
	return KindOther
}

// classifyTree assigns kinds to every descendant of e, which has kind k.
func classifyTree(e *Element, k Kind) {
	e.Kind = k
	for i, c := range e.Children {
		classifyTree(c, classify(k, i, c))
	}
}
