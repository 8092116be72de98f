package treepath

// New returns an empty path, which selects the context element.
func New() *Path { return &Path{} }

// Child returns a copy of p extended by a child step.
func (p *Path) Child(name string, preds ...Predicate) *Path {
	return p.with(Step{Name: name, Predicates: preds})
}

// Descendant returns a copy of p extended by a descendant step.
func (p *Path) Descendant(name string, preds ...Predicate) *Path {
	return p.with(Step{Name: name, Descendant: true, Predicates: preds})
}

// Join returns a copy of p followed by the steps of q.
func (p *Path) Join(q *Path) *Path {
	out := &Path{steps: make([]Step, 0, len(p.steps)+len(q.steps))}
	out.steps = append(out.steps, p.steps...)
	out.steps = append(out.steps, q.steps...)
	return out
}

func (p *Path) with(s Step) *Path {
	out := &Path{steps: make([]Step, len(p.steps), len(p.steps)+1)}
	copy(out.steps, p.steps)
	out.steps = append(out.steps, s)
	return out
}

// Has is the [@attr] predicate.
func Has(attr string) Predicate { return Predicate{Op: OpExists, Attr: attr} }

// Eq is the [@attr='value'] predicate.
func Eq(attr, value string) Predicate { return Predicate{Op: OpEquals, Attr: attr, Value: value} }

// Ne is the [@attr!='value'] predicate.
func Ne(attr, value string) Predicate { return Predicate{Op: OpNotEquals, Attr: attr, Value: value} }

// At is the [n] predicate (1-based).
func At(n int) Predicate { return Predicate{Op: OpPosition, Position: n} }
