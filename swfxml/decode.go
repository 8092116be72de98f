package swfxml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html/charset"
)

// Decode reads an FFDec XML document. Non-UTF-8 encodings declared in the
// XML prolog are converted on the fly. Names keep their source prefixes
// (xsi:type stays xsi:type) so the tree writes back as it was read.
func Decode(r io.Reader) (*Document, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	var (
		root  *Element
		stack []*Element
	)
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return nil, fmt.Errorf("swfxml: decode: unclosed element <%s>", stack[len(stack)-1].Name)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("swfxml: decode: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			e := &Element{Name: qualified(t.Name)}
			if len(t.Attr) > 0 {
				e.Attrs = make([]Attr, 0, len(t.Attr))
				for _, a := range t.Attr {
					e.Attrs = append(e.Attrs, Attr{Name: qualified(a.Name), Value: a.Value})
				}
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("swfxml: decode: multiple root elements")
				}
				root = e
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, e)
			}
			stack = append(stack, e)
		case xml.EndElement:
			name := qualified(t.Name)
			if len(stack) == 0 || stack[len(stack)-1].Name != name {
				return nil, fmt.Errorf("swfxml: decode: line %d: unexpected </%s>", line(dec), name)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				continue
			}
			if s := strings.TrimSpace(string(t)); s != "" {
				stack[len(stack)-1].Text += s
			}
		}
	}
	if root == nil {
		return nil, errors.New("swfxml: decode: document has no root element")
	}
	return NewDocument(root), nil
}

// ReadFile decodes the document stored at path.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the pipeline's temp dir
	if err != nil {
		return nil, fmt.Errorf("swfxml: %w", err)
	}
	defer func() { _ = f.Close() }()
	doc, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w (file %s)", err, path)
	}
	return doc, nil
}

// qualified rebuilds a "prefix:local" name from a raw token.
func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func line(dec *xml.Decoder) int {
	l, _ := dec.InputPos()
	return l
}
