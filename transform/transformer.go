package transform

import (
	"errors"
	"strings"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/internal/treepath"
	"github.com/erraggy/drip/patchspec"
	"github.com/erraggy/drip/swfxml"
)

// Transformer applies patch edits to swfxml documents. It holds no per-run
// state and may be reused.
type Transformer struct {
	logger       eventlog.Logger
	escapeMarkup bool
}

// Option configures a Transformer.
type Option func(*Transformer)

// WithLogger sets the event sink. The default discards everything.
func WithLogger(l eventlog.Logger) Option {
	return func(t *Transformer) { t.logger = eventlog.OrNop(l) }
}

// WithEscapeMarkup re-escapes rewritten initialText markup with HTML
// entities. The default writes the markup unescaped.
func WithEscapeMarkup(escape bool) Option {
	return func(t *Transformer) { t.escapeMarkup = escape }
}

// New creates a Transformer.
func New(opts ...Option) *Transformer {
	t := &Transformer{logger: eventlog.NopLogger{}}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// RequiresTree reports whether edit needs the XML round trip: a header with
// displayRect attributes, any text or sprite edit, or a shape edit that
// rewrites bounds. Pure shape replacement does not.
func RequiresTree(edit *patchspec.FileEdit) bool {
	if edit == nil {
		return false
	}
	if edit.Header.HasEdits() || len(edit.Text) > 0 || len(edit.Sprites) > 0 {
		return true
	}
	for _, s := range edit.Shapes {
		if s.HasBounds() {
			return true
		}
	}
	return false
}

// Apply mutates doc in place: header, then shape bounds, then sprites, then
// text. Selectors that match nothing produce warnings, never errors; the
// only error is a missing document.
func (t *Transformer) Apply(doc *swfxml.Document, edit *patchspec.FileEdit) (*Result, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("transform: nil document")
	}
	r := &run{t: t, doc: doc, res: &Result{}}
	if edit == nil {
		return r.res, nil
	}

	r.header(edit.Header)
	for i, s := range edit.Shapes {
		if s.HasBounds() {
			r.shapeBounds(i, s)
		}
	}
	for i, s := range edit.Sprites {
		r.sprite(i, s)
	}
	for i, te := range edit.Text {
		r.text(i, te)
	}

	t.logger.Info("tree transformed",
		"applied", r.res.EditsApplied,
		"skipped", r.res.EditsSkipped,
		"changes", len(r.res.Changes),
		"warnings", len(r.res.Warnings))
	return r.res, nil
}

// DryRun applies edit to a deep copy of doc and reports what would change.
// doc is left untouched.
func (t *Transformer) DryRun(doc *swfxml.Document, edit *patchspec.FileEdit) (*Result, error) {
	if doc == nil || doc.Root == nil {
		return nil, errors.New("transform: nil document")
	}
	quiet := &Transformer{logger: eventlog.NopLogger{}, escapeMarkup: t.escapeMarkup}
	return quiet.Apply(doc.Clone(), edit)
}

// run carries the state of one Apply call.
type run struct {
	t   *Transformer
	doc *swfxml.Document
	res *Result
}

func (r *run) warn(w *Warning) {
	r.res.Warnings = append(r.res.Warnings, w)
	attrs := []any{"section", string(w.Section), "edit", w.EditIndex, "category", string(w.Category)}
	if w.Selector != "" {
		attrs = append(attrs, "selector", w.Selector)
	}
	if w.Pos.IsValid() {
		attrs = append(attrs, "line", w.Pos.Line)
	}
	r.t.logger.Warn(w.String(), attrs...)
}

// noMatch records an unresolved selector.
func (r *run) noMatch(section Section, idx int, pos patchspec.Pos, selector, msg string) {
	r.warn(&Warning{
		Category:  WarnNoMatch,
		Section:   section,
		EditIndex: idx,
		Selector:  selector,
		Message:   msg,
		Cause:     driperrors.ErrUnresolvedSelector,
		Pos:       pos,
	})
}

func (r *run) missingNode(section Section, idx int, pos patchspec.Pos, selector, msg string) {
	r.warn(&Warning{
		Category:  WarnMissingNode,
		Section:   section,
		EditIndex: idx,
		Selector:  selector,
		Message:   msg,
		Cause:     driperrors.ErrUnresolvedSelector,
		Pos:       pos,
	})
}

func (r *run) invalidEdit(section Section, idx int, pos patchspec.Pos, msg string) {
	r.warn(&Warning{Category: WarnInvalidEdit, Section: section, EditIndex: idx, Message: msg, Pos: pos})
}

// set writes one attribute and records the change.
func (r *run) set(section Section, idx int, m treepath.Match, attr, value string) {
	old, existed := m.Element.SetAttr(attr, value)
	r.res.Changes = append(r.res.Changes, ChangeRecord{
		Section:   section,
		EditIndex: idx,
		Operation: OpSet,
		Location:  m.Location,
		Attr:      attr,
		Old:       old,
		New:       value,
		Existed:   existed,
	})
	r.t.logger.Debug("attribute set", "location", m.Location, "attr", attr, "value", value)
}

// setAll writes every assignment of attrs to m, lower-casing values when lower is set.
func (r *run) setAll(section Section, idx int, m treepath.Match, attrs patchspec.AttrMap, lower bool) {
	for _, a := range attrs {
		v := a.Value
		if lower {
			v = strings.ToLower(v)
		}
		r.set(section, idx, m, a.Key, v)
	}
}

func (r *run) created(section Section, idx int, location string) {
	r.res.Changes = append(r.res.Changes, ChangeRecord{
		Section:   section,
		EditIndex: idx,
		Operation: OpCreate,
		Location:  location,
	})
	r.t.logger.Debug("element created", "location", location)
}

// outcome counts an edit as applied or skipped.
func (r *run) outcome(applied bool) {
	if applied {
		r.res.EditsApplied++
	} else {
		r.res.EditsSkipped++
	}
}

// rooted prefixes a context-relative location with the context's own location.
func rooted(ctx treepath.Match, rel treepath.Match) treepath.Match {
	if ctx.Location != "" && rel.Location != "" {
		rel.Location = ctx.Location + "/" + rel.Location
	} else if rel.Location == "" {
		rel.Location = ctx.Location
	}
	return rel
}
