package treepath

import (
	"strconv"

	"github.com/erraggy/drip/swfxml"
)

// Match is a selected element and its location relative to the context.
type Match struct {
	Element *swfxml.Element
	// Location names every step from the context element with 1-based
	// positions among same-named siblings, e.g. "tags/item[7]/subTags/item[2]/matrix[1]".
	Location string
}

// Select evaluates the path against ctx and returns the matches in
// document order. Each element appears at most once.
func (p *Path) Select(ctx *swfxml.Element) []Match {
	if ctx == nil {
		return nil
	}
	current := []Match{{Element: ctx}}
	if p == nil {
		return current
	}
	for _, step := range p.steps {
		current = applyStep(current, step)
		if len(current) == 0 {
			return nil
		}
	}
	return dedupe(current)
}

// Elements is Select without locations.
func (p *Path) Elements(ctx *swfxml.Element) []*swfxml.Element {
	matches := p.Select(ctx)
	out := make([]*swfxml.Element, len(matches))
	for i, m := range matches {
		out[i] = m.Element
	}
	return out
}

// First returns the first match, or nil.
func (p *Path) First(ctx *swfxml.Element) *swfxml.Element {
	if m := p.Select(ctx); len(m) > 0 {
		return m[0].Element
	}
	return nil
}

// Count returns the number of matches.
func (p *Path) Count(ctx *swfxml.Element) int {
	return len(p.Select(ctx))
}

func applyStep(current []Match, step Step) []Match {
	var results []Match
	for _, m := range current {
		if step.Descendant {
			results = append(results, descend(m, step)...)
			continue
		}
		results = append(results, children(m, step)...)
	}
	return results
}

// children selects matching direct children of m, positions counted per parent.
func children(m Match, step Step) []Match {
	var out []Match
	seen := make(map[string]int)
	for _, c := range m.Element.Children {
		seen[c.Name]++
		if step.Name != "*" && c.Name != step.Name {
			continue
		}
		out = append(out, Match{Element: c, Location: join(m.Location, c.Name, seen[c.Name])})
	}
	return filter(out, step.Predicates)
}

// descend selects matching elements at any depth below m, in document order.
func descend(m Match, step Step) []Match {
	var out []Match
	var walk func(Match)
	walk = func(parent Match) {
		direct := children(parent, Step{Name: step.Name, Predicates: step.Predicates})
		next := 0
		seen := make(map[string]int)
		for _, c := range parent.Element.Children {
			seen[c.Name]++
			cm := Match{Element: c, Location: join(parent.Location, c.Name, seen[c.Name])}
			if next < len(direct) && direct[next].Element == c {
				out = append(out, direct[next])
				next++
			}
			walk(cm)
		}
	}
	walk(m)
	return out
}

func filter(in []Match, preds []Predicate) []Match {
	for _, pr := range preds {
		if len(in) == 0 {
			return in
		}
		if pr.Op == OpPosition {
			if pr.Position > len(in) {
				return nil
			}
			in = []Match{in[pr.Position-1]}
			continue
		}
		kept := in[:0:0]
		for _, m := range in {
			if pr.matches(m.Element) {
				kept = append(kept, m)
			}
		}
		in = kept
	}
	return in
}

func (pr Predicate) matches(e *swfxml.Element) bool {
	v, ok := e.Attr(pr.Attr)
	switch pr.Op {
	case OpExists:
		return ok
	case OpEquals:
		return ok && v == pr.Value
	case OpNotEquals:
		return ok && v != pr.Value
	}
	return false
}

func join(parent, name string, pos int) string {
	seg := name + "[" + strconv.Itoa(pos) + "]"
	if parent == "" {
		return seg
	}
	return parent + "/" + seg
}

func dedupe(in []Match) []Match {
	if len(in) < 2 {
		return in
	}
	seen := make(map[*swfxml.Element]struct{}, len(in))
	out := in[:0:0]
	for _, m := range in {
		if _, dup := seen[m.Element]; dup {
			continue
		}
		seen[m.Element] = struct{}{}
		out = append(out, m)
	}
	return out
}
