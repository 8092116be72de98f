package swfxml

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/erraggy/drip/internal/fileutil"
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// Encode writes the document as indented UTF-8 XML. Attribute order is
// preserved; values are escaped so that line breaks survive a round trip.
func (d *Document) Encode(w io.Writer) error {
	if d == nil || d.Root == nil {
		return fmt.Errorf("swfxml: encode: empty document")
	}
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(xmlHeader); err != nil {
		return fmt.Errorf("swfxml: encode: %w", err)
	}
	if err := writeElement(bw, d.Root, 0); err != nil {
		return fmt.Errorf("swfxml: encode: %w", err)
	}
	return bw.Flush()
}

// String returns the encoded document, or the encode error text.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Encode(&b); err != nil {
		return err.Error()
	}
	return b.String()
}

// WriteFile encodes the document to path through a temporary file in the
// same directory, so a failed write never leaves a truncated tree behind.
func (d *Document) WriteFile(path string) error {
	if err := d.WriteFilePerm(path, fileutil.OwnerReadWrite); err != nil {
		return fmt.Errorf("swfxml: %w", err)
	}
	return nil
}

// WriteFilePerm is WriteFile with an explicit permission mode.
func (d *Document) WriteFilePerm(path string, perm os.FileMode) error {
	return fileutil.WriteAtomic(path, perm, d.Encode)
}

func writeElement(w *bufio.Writer, e *Element, depth int) error {
	indent := strings.Repeat("  ", depth)
	w.WriteString(indent)
	w.WriteByte('<')
	w.WriteString(e.Name)
	for _, a := range e.Attrs {
		w.WriteByte(' ')
		w.WriteString(a.Name)
		w.WriteString(`="`)
		if err := xml.EscapeText(w, []byte(a.Value)); err != nil {
			return err
		}
		w.WriteByte('"')
	}
	if len(e.Children) == 0 && e.Text == "" {
		_, err := w.WriteString("/>\n")
		return err
	}
	w.WriteByte('>')
	if e.Text != "" {
		if err := xml.EscapeText(w, []byte(e.Text)); err != nil {
			return err
		}
	}
	if len(e.Children) > 0 {
		w.WriteByte('\n')
		for _, c := range e.Children {
			if err := writeElement(w, c, depth+1); err != nil {
				return err
			}
		}
		w.WriteString(indent)
	}
	w.WriteString("</")
	w.WriteString(e.Name)
	_, err := w.WriteString(">\n")
	return err
}
