package patchspec

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
	"go.yaml.in/yaml/v4"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/erraggy/drip/driperrors"
)

// alternateFileNames are tried, in order, when a patch directory has no patch.json.
var alternateFileNames = []string{"patch.yaml", "patch.yml"}

// Load reads the patch specification from a patch directory. It looks for
// patch.json first, then patch.yaml and patch.yml.
func Load(dir string) (*PatchSpec, error) {
	p, err := FindFile(dir)
	if err != nil {
		return nil, err
	}
	return LoadFile(p)
}

// FindFile returns the spec file Load would read for path: path itself when
// it is a file, otherwise the first of patch.json, patch.yaml and patch.yml
// present in the directory.
func FindFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &driperrors.InvalidPatchError{Path: path, Message: "patch path not found", Cause: err}
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range append([]string{FileName}, alternateFileNames...) {
		p := filepath.Join(path, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", &driperrors.InvalidPatchError{
		Path:    path,
		Message: fmt.Sprintf("found no %s", FileName),
		Cause:   fs.ErrNotExist,
	}
}

// LoadFile reads and parses a single spec file. Root is set to the file's directory.
func LoadFile(path string) (*PatchSpec, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return nil, &driperrors.InvalidPatchError{Path: path, Message: "cannot read spec file", Cause: err}
	}
	ext := strings.ToLower(filepath.Ext(path))
	spec, err := parse(data, ext == ".yaml" || ext == ".yml")
	if err != nil {
		var ipe *driperrors.InvalidPatchError
		if errors.As(err, &ipe) {
			ipe.Path = path
		}
		return nil, err
	}
	spec.Path = path
	if abs, err := filepath.Abs(filepath.Dir(path)); err == nil {
		spec.Root = abs
	} else {
		spec.Root = filepath.Dir(path)
	}
	return spec, nil
}

// Parse parses a spec document from bytes. JSON with comments and trailing
// commas is accepted, and so is YAML. Root is left empty.
func Parse(data []byte) (*PatchSpec, error) {
	return parse(data, false)
}

func parse(data []byte, yamlOnly bool) (*PatchSpec, error) {
	text, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return nil, &driperrors.InvalidPatchError{Message: "spec is not valid text", Cause: err}
	}

	if !yamlOnly {
		v, jsonErr := hujson.Parse(text)
		switch {
		case jsonErr == nil:
			root, err := jwccNodes(text, v)
			if err != nil {
				return nil, &driperrors.InvalidPatchError{Message: "malformed JSON", Cause: err}
			}
			return decodeSpec(root)
		case looksLikeJSON(text):
			return nil, &driperrors.InvalidPatchError{Message: "malformed JSON", Cause: jsonErr}
		}
	}

	var root yaml.Node
	if err := yaml.Unmarshal(text, &root); err != nil {
		return nil, &driperrors.InvalidPatchError{Message: "malformed document", Cause: err}
	}
	return decodeSpec(&root)
}

// looksLikeJSON reports whether the first significant byte opens a JSON
// value. Comments are skipped so that a commented JWCC header still counts.
func looksLikeJSON(b []byte) bool {
	for len(b) > 0 {
		b = bytes.TrimLeft(b, " \t\r\n")
		switch {
		case bytes.HasPrefix(b, []byte("//")):
			if i := bytes.IndexByte(b, '\n'); i >= 0 {
				b = b[i+1:]
				continue
			}
			return false
		case bytes.HasPrefix(b, []byte("/*")):
			if i := bytes.Index(b, []byte("*/")); i >= 0 {
				b = b[i+2:]
				continue
			}
			return false
		}
		return len(b) > 0 && (b[0] == '{' || b[0] == '[')
	}
	return false
}

func decodeSpec(root *yaml.Node) (*PatchSpec, error) {
	n := root
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil, &driperrors.InvalidPatchError{Message: "document is empty"}
		}
		n = n.Content[0]
	}
	n = deref(n)
	if n == nil || n.Kind == 0 {
		return nil, &driperrors.InvalidPatchError{Message: "document is empty"}
	}
	if n.Kind != yaml.MappingNode {
		return nil, &driperrors.InvalidPatchError{
			Line:    n.Line,
			Message: fmt.Sprintf("top level must be an object mapping asset names to edits, got %s", kindName(n)),
		}
	}

	spec := &PatchSpec{}
	seen := make(map[string]int, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], deref(n.Content[i+1])
		name := k.Value
		if first, dup := seen[name]; dup {
			return nil, &driperrors.InvalidPatchError{
				Key:     name,
				Line:    k.Line,
				Message: fmt.Sprintf("duplicate entry (first defined at line %d)", first),
			}
		}
		seen[name] = k.Line

		d := &decoder{}
		edit := d.fileEdit(v)
		edit.Problems = d.problems
		for j := range edit.Problems {
			edit.Problems[j].Entry = name
		}
		spec.Entries = append(spec.Entries, &Entry{Name: name, Pos: pos(k), Edit: edit})
	}
	return spec, nil
}

// decoder accumulates non-fatal problems while walking one entry.
type decoder struct {
	problems []Problem
}

func (d *decoder) problem(n *yaml.Node, field, format string, args ...any) {
	d.problems = append(d.problems, Problem{Field: field, Message: fmt.Sprintf(format, args...), Pos: pos(n)})
}

func (d *decoder) fileEdit(n *yaml.Node) *FileEdit {
	edit := &FileEdit{}
	if isNull(n) {
		return edit
	}
	if n.Kind != yaml.MappingNode {
		d.problem(n, "", "expected an object, got %s", kindName(n))
		return edit
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], deref(n.Content[i+1])
		switch k.Value {
		case "header":
			edit.Header = d.header(v)
		case "shapes":
			for j, item := range d.sequence(v, "shapes") {
				edit.Shapes = append(edit.Shapes, d.shape(item, fmt.Sprintf("shapes[%d]", j)))
			}
		case "sprites":
			for j, item := range d.sequence(v, "sprites") {
				edit.Sprites = append(edit.Sprites, d.sprite(item, fmt.Sprintf("sprites[%d]", j)))
			}
		case "text":
			for j, item := range d.sequence(v, "text") {
				edit.Text = append(edit.Text, d.text(item, fmt.Sprintf("text[%d]", j)))
			}
		default:
			d.problem(k, k.Value, "unknown field")
		}
	}
	return edit
}

func (d *decoder) header(n *yaml.Node) *Header {
	h := &Header{Pos: pos(n)}
	if isNull(n) {
		return h
	}
	if n.Kind != yaml.MappingNode {
		d.problem(n, "header", "expected an object, got %s", kindName(n))
		return h
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], deref(n.Content[i+1])
		if k.Value == "displayRect" {
			h.DisplayRect = d.attrs(v, "header.displayRect")
			continue
		}
		d.problem(k, "header."+k.Value, "unknown field")
	}
	return h
}

func (d *decoder) shape(n *yaml.Node, field string) ShapeEdit {
	s := ShapeEdit{Pos: pos(n)}
	if !d.expectMapping(n, field) {
		return s
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], deref(n.Content[i+1])
		switch k.Value {
		case "filePath":
			s.FilePath, _ = d.scalar(v, field+".filePath")
		case "index":
			s.Index = d.ints(v, field+".index")
		case "shapeBounds":
			s.ShapeBounds = d.attrs(v, field+".shapeBounds")
		default:
			d.problem(k, field+"."+k.Value, "unknown field")
		}
	}
	return s
}

func (d *decoder) sprite(n *yaml.Node, field string) SpriteEdit {
	s := SpriteEdit{Pos: pos(n)}
	if !d.expectMapping(n, field) {
		return s
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], deref(n.Content[i+1])
		switch k.Value {
		case "SpriteID", "spriteId":
			s.SpriteID, _ = d.scalar(v, field+"."+k.Value)
		case "CharacterID", "characterId":
			s.CharacterID = d.strings(v, field+"."+k.Value)
		case "Depth", "depth":
			s.Depth = d.strings(v, field+"."+k.Value)
		case "MATRIX", "matrix":
			s.Matrix = d.attrs(v, field+"."+k.Value)
		case "colorTransform":
			s.ColorTransform = d.attrs(v, field+".colorTransform")
		default:
			d.problem(k, field+"."+k.Value, "unknown field")
		}
	}
	return s
}

func (d *decoder) text(n *yaml.Node, field string) TextEdit {
	t := TextEdit{Pos: pos(n)}
	if !d.expectMapping(n, field) {
		return t
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], deref(n.Content[i+1])
		f := field + "." + k.Value
		switch k.Value {
		case "index":
			t.Index = d.strings(v, f)
		case "font":
			if s, ok := d.scalar(v, f); ok {
				id, err := strconv.Atoi(s)
				if err != nil {
					d.problem(v, f, "font id %q is not an integer", s)
					continue
				}
				t.Font = &id
			}
		case "useOutlines":
			if s, ok := d.scalar(v, f); ok {
				b, err := strconv.ParseBool(s)
				if err != nil {
					d.problem(v, f, "%q is not a boolean", s)
					continue
				}
				t.UseOutlines = &b
			}
		case "color":
			if s, ok := d.scalar(v, f); ok {
				t.Color = &s
			}
		default:
			d.problem(k, f, "unknown field")
		}
	}
	return t
}

func (d *decoder) expectMapping(n *yaml.Node, field string) bool {
	if n.Kind == yaml.MappingNode {
		return true
	}
	d.problem(n, field, "expected an object, got %s", kindName(n))
	return false
}

func (d *decoder) sequence(n *yaml.Node, field string) []*yaml.Node {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		d.problem(n, field, "expected a list, got %s", kindName(n))
		return nil
	}
	out := make([]*yaml.Node, len(n.Content))
	for i, c := range n.Content {
		out[i] = deref(c)
	}
	return out
}

// scalar returns the literal text of a scalar node. Null counts as absent.
func (d *decoder) scalar(n *yaml.Node, field string) (string, bool) {
	if isNull(n) {
		return "", false
	}
	if n.Kind != yaml.ScalarNode {
		d.problem(n, field, "expected a value, got %s", kindName(n))
		return "", false
	}
	return n.Value, true
}

// strings decodes a list of scalars. A lone scalar is accepted as a
// one-element list and recorded as a problem.
func (d *decoder) strings(n *yaml.Node, field string) []string {
	if isNull(n) {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		d.problem(n, field, "expected a list, treating %q as a one-element list", n.Value)
		return []string{n.Value}
	}
	out := []string{}
	for i, item := range d.sequence(n, field) {
		if s, ok := d.scalar(item, fmt.Sprintf("%s[%d]", field, i)); ok {
			out = append(out, s)
		}
	}
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	return out
}

func (d *decoder) ints(n *yaml.Node, field string) []int {
	raw := d.strings(n, field)
	if raw == nil {
		return nil
	}
	out := make([]int, 0, len(raw))
	for i, s := range raw {
		v, err := strconv.Atoi(s)
		if err != nil {
			d.problem(n, fmt.Sprintf("%s[%d]", field, i), "%q is not an integer", s)
			continue
		}
		out = append(out, v)
	}
	return out
}

// attrs decodes a flat object of attribute assignments, keeping values as written.
func (d *decoder) attrs(n *yaml.Node, field string) AttrMap {
	if isNull(n) {
		return nil
	}
	if n.Kind != yaml.MappingNode {
		d.problem(n, field, "expected an object, got %s", kindName(n))
		return nil
	}
	m := make(AttrMap, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], deref(n.Content[i+1])
		s, ok := d.scalar(v, field+"."+k.Value)
		if !ok {
			continue
		}
		if idx := m.index(k.Value); idx >= 0 {
			d.problem(k, field+"."+k.Value, "duplicate attribute, last value wins")
			m[idx].Value = s
			continue
		}
		m = append(m, Attr{Key: k.Value, Value: s})
	}
	return m
}

func (m AttrMap) index(key string) int {
	for i, a := range m {
		if a.Key == key {
			return i
		}
	}
	return -1
}

func deref(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

func isNull(n *yaml.Node) bool {
	return n == nil || n.Kind == 0 || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

func pos(n *yaml.Node) Pos {
	if n == nil {
		return Pos{}
	}
	return Pos{Line: n.Line, Column: n.Column}
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "object"
	case yaml.SequenceNode:
		return "list"
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "null"
		}
		return "value"
	default:
		return "nothing"
	}
}
