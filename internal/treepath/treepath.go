// Package treepath provides a minimal path language for addressing elements
// of an swfxml tree.
//
// The syntax is the location-path subset used by ElementTree's find:
//
//   - name (child elements named name) and * (any child element)
//   - / separates steps; a leading / or ./ is accepted and ignored
//   - // before a step searches all descendants instead of children
//   - [@attr] (attribute present)
//   - [@attr='value'] and [@attr!='value'] (attribute comparison, ' or " quotes)
//   - [n] (1-based position among the step's matches for one parent)
//
// Paths are evaluated relative to a context element:
//
//	p, _ := treepath.Parse("tags/item[@spriteId='5']/subTags/item[@characterId][@depth='0']/matrix")
//	for _, m := range p.Select(doc.Root) {
//	    m.Element.SetAttr("scaleX", "2.0")
//	}
//
// Paths can also be assembled without parsing, see [New] and [Path.Child].
package treepath

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a parsed or built location path.
type Path struct {
	steps []Step
}

// Step selects elements one level (or, when Descendant is set, any number of
// levels) below the current context.
type Step struct {
	// Name is the element name, or "*" for any element.
	Name       string
	Descendant bool
	Predicates []Predicate
}

// Op is a predicate operator.
type Op int

// Predicate operators.
const (
	OpExists Op = iota
	OpEquals
	OpNotEquals
	OpPosition
)

// Predicate filters the elements selected by a step.
type Predicate struct {
	Op    Op
	Attr  string
	Value string
	// Position is the 1-based index for OpPosition.
	Position int
}

// String renders the predicate in path syntax.
func (p Predicate) String() string {
	switch p.Op {
	case OpExists:
		return "[@" + p.Attr + "]"
	case OpEquals:
		return "[@" + p.Attr + "=" + quote(p.Value) + "]"
	case OpNotEquals:
		return "[@" + p.Attr + "!=" + quote(p.Value) + "]"
	case OpPosition:
		return "[" + strconv.Itoa(p.Position) + "]"
	}
	return "[?]"
}

func quote(s string) string {
	if strings.Contains(s, "'") {
		return `"` + s + `"`
	}
	return "'" + s + "'"
}

// String renders the path in canonical syntax.
func (p *Path) String() string {
	if p == nil || len(p.steps) == 0 {
		return "."
	}
	var b strings.Builder
	for i, s := range p.steps {
		switch {
		case s.Descendant:
			b.WriteString("//")
		case i > 0:
			b.WriteByte('/')
		}
		b.WriteString(s.Name)
		for _, pr := range s.Predicates {
			b.WriteString(pr.String())
		}
	}
	return b.String()
}

// Steps returns a copy of the path's steps.
func (p *Path) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Parse parses a path expression.
//
// Examples:
//
//	Parse("tags/item[@shapeId='3']/shapeBounds")
//	Parse("//item[@type='DefineEditTextTag']")
//	Parse("tags/item[@spriteId]/subTags/item[2]")
func Parse(expr string) (*Path, error) {
	if strings.TrimSpace(expr) == "" {
		return nil, fmt.Errorf("treepath: empty expression")
	}
	p := &parser{input: expr}
	steps, err := p.parse()
	if err != nil {
		return nil, err
	}
	return &Path{steps: steps}, nil
}

// MustParse is like Parse but panics on error. Use it for constant paths.
func MustParse(expr string) *Path {
	p, err := Parse(expr)
	if err != nil {
		panic(err)
	}
	return p
}

type parser struct {
	input string
	pos   int
}

func (p *parser) parse() ([]Step, error) {
	// "." alone selects the context element.
	if p.input == "." {
		return nil, nil
	}
	if strings.HasPrefix(p.input, "./") {
		p.pos = 1
	}

	var steps []Step
	for p.pos < len(p.input) {
		descendant := false
		if p.consume('/') {
			descendant = p.consume('/')
		} else if len(steps) > 0 {
			return nil, fmt.Errorf("treepath: expected '/' at position %d", p.pos)
		}

		step, err := p.parseStep()
		if err != nil {
			return nil, err
		}
		step.Descendant = descendant
		steps = append(steps, step)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("treepath: expression has no steps")
	}
	return steps, nil
}

func (p *parser) parseStep() (Step, error) {
	var s Step
	if p.consume('*') {
		s.Name = "*"
	} else {
		s.Name = p.parseIdentifier()
		if s.Name == "" {
			if p.pos >= len(p.input) {
				return s, fmt.Errorf("treepath: unexpected end of expression")
			}
			return s, fmt.Errorf("treepath: unexpected character %q at position %d", p.peek(), p.pos)
		}
	}
	for p.consume('[') {
		pred, err := p.parsePredicate()
		if err != nil {
			return s, err
		}
		s.Predicates = append(s.Predicates, pred)
	}
	return s, nil
}

func (p *parser) parsePredicate() (Predicate, error) {
	if isDigit(p.peek()) {
		start := p.pos
		for isDigit(p.peek()) {
			p.advance()
		}
		n, err := strconv.Atoi(p.input[start:p.pos])
		if err != nil || n < 1 {
			return Predicate{}, fmt.Errorf("treepath: invalid position %q", p.input[start:p.pos])
		}
		if !p.consume(']') {
			return Predicate{}, fmt.Errorf("treepath: expected ']' after position at %d", p.pos)
		}
		return Predicate{Op: OpPosition, Position: n}, nil
	}

	if !p.consume('@') {
		return Predicate{}, fmt.Errorf("treepath: expected '@' or position in predicate at %d", p.pos)
	}
	attr := p.parseIdentifier()
	if attr == "" {
		return Predicate{}, fmt.Errorf("treepath: expected attribute name at position %d", p.pos)
	}
	pred := Predicate{Op: OpExists, Attr: attr}

	switch {
	case p.consume(']'):
		return pred, nil
	case p.consume('='):
		pred.Op = OpEquals
	case strings.HasPrefix(p.input[p.pos:], "!="):
		p.pos += 2
		pred.Op = OpNotEquals
	default:
		return Predicate{}, fmt.Errorf("treepath: expected ']', '=' or '!=' at position %d", p.pos)
	}

	q := p.peek()
	if q != '\'' && q != '"' {
		return Predicate{}, fmt.Errorf("treepath: expected quoted value at position %d", p.pos)
	}
	p.advance()
	end := strings.IndexByte(p.input[p.pos:], q)
	if end < 0 {
		return Predicate{}, fmt.Errorf("treepath: unterminated string at position %d", p.pos)
	}
	pred.Value = p.input[p.pos : p.pos+end]
	p.pos += end + 1
	if !p.consume(']') {
		return Predicate{}, fmt.Errorf("treepath: expected ']' after value at position %d", p.pos)
	}
	return pred, nil
}

func (p *parser) parseIdentifier() string {
	start := p.pos
	for p.pos < len(p.input) && isIdentChar(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *parser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) advance() {
	if p.pos < len(p.input) {
		p.pos++
	}
}

func (p *parser) consume(ch byte) bool {
	if p.peek() == ch {
		p.advance()
		return true
	}
	return false
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentChar(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		isDigit(ch) ||
		ch == '_' || ch == '-' || ch == '.' || ch == ':'
}
