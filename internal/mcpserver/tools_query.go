package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/drip/internal/treepath"
	"github.com/erraggy/drip/swfxml"
)

type queryInput struct {
	Tree     treeInput `json:"tree"               jsonschema:"The FFDec XML export to query"`
	Path     string    `json:"path"               jsonschema:"Path expression relative to the root element\\, e.g. tags/item[@spriteId='5']/subTags/item"`
	Children bool      `json:"children,omitempty" jsonschema:"Include the names of each match's child elements"`
	Limit    int       `json:"limit,omitempty"    jsonschema:"Maximum number of matches to return (default 100)"`
	Offset   int       `json:"offset,omitempty"   jsonschema:"Skip the first N matches (for pagination)"`
}

type queryStats struct {
	Shapes     int `json:"shapes"`
	Sprites    int `json:"sprites"`
	Placements int `json:"placements"`
	Texts      int `json:"texts"`
	Elements   int `json:"elements"`
}

type queryMatch struct {
	Location string            `json:"location"`
	Name     string            `json:"name"`
	Kind     string            `json:"kind"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []string          `json:"children,omitempty"`
}

type queryOutput struct {
	Matched  int          `json:"matched"`
	Returned int          `json:"returned"`
	Stats    queryStats   `json:"stats"`
	Matches  []queryMatch `json:"matches,omitempty"`
}

func (s *Server) handleQuery(_ context.Context, _ *mcp.CallToolRequest, input queryInput) (*mcp.CallToolResult, queryOutput, error) {
	path, err := treepath.Parse(input.Path)
	if err != nil {
		return errResult(err), queryOutput{}, nil
	}
	doc, err := s.resolveTree(input.Tree)
	if err != nil {
		return errResult(err), queryOutput{}, nil
	}

	matches := path.Select(doc.Root)
	st := doc.Stats()
	output := queryOutput{
		Matched: len(matches),
		Stats: queryStats{
			Shapes:     st.Shapes,
			Sprites:    st.Sprites,
			Placements: st.Placements,
			Texts:      st.Texts,
			Elements:   st.Elements,
		},
	}

	page := paginate(matches, input.Offset, input.Limit)
	output.Matches = makeSlice[queryMatch](len(page))
	for _, m := range page {
		output.Matches = append(output.Matches, describe(m, input.Children))
	}
	output.Returned = len(output.Matches)
	return nil, output, nil
}

func describe(m treepath.Match, children bool) queryMatch {
	e := m.Element
	q := queryMatch{Location: m.Location, Name: e.Name, Kind: e.Kind.String()}
	if m.Location == "" {
		q.Location = "."
	}
	if len(e.Attrs) > 0 {
		q.Attrs = make(map[string]string, len(e.Attrs))
		for _, a := range e.Attrs {
			q.Attrs[a.Name] = a.Value
		}
	}
	if children {
		q.Children = childNames(e)
	}
	return q
}

func childNames(e *swfxml.Element) []string {
	names := makeSlice[string](len(e.Children))
	for _, c := range e.Children {
		names = append(names, c.Name)
	}
	return names
}
