package mcpserver

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/drip/internal/fileutil"
	"github.com/erraggy/drip/patchspec"
	"github.com/erraggy/drip/transform"
)

type transformInput struct {
	Tree         treeInput `json:"tree"                    jsonschema:"The FFDec XML export to edit"`
	Spec         specInput `json:"spec"                    jsonschema:"The patch spec holding the edits"`
	Asset        string    `json:"asset,omitempty"         jsonschema:"Spec entry to apply; may be omitted when the spec has exactly one entry"`
	DryRun       bool      `json:"dry_run,omitempty"       jsonschema:"Preview changes without writing anything"`
	Output       string    `json:"output,omitempty"        jsonschema:"Write the edited XML to this file"`
	IncludeXML   bool      `json:"include_xml,omitempty"   jsonschema:"Return the edited XML inline (bounded by DRIP_MCP_MAX_INLINE_SIZE)"`
	EscapeMarkup *bool     `json:"escape_markup,omitempty" jsonschema:"Re-escape rewritten initialText markup with HTML entities"`
	Offset       int       `json:"offset,omitempty"        jsonschema:"Skip the first N changes (for pagination)"`
	Limit        int       `json:"limit,omitempty"         jsonschema:"Maximum number of changes to return (default 100)"`
}

type transformOutput struct {
	Asset        string   `json:"asset"`
	Applied      int      `json:"applied"`
	Skipped      int      `json:"skipped"`
	ChangeCount  int      `json:"change_count"`
	Returned     int      `json:"returned"`
	Changes      []string `json:"changes,omitempty"`
	WarningCount int      `json:"warning_count"`
	Warnings     []string `json:"warnings,omitempty"`
	Written      string   `json:"written,omitempty"`
	XML          string   `json:"xml,omitempty"`
}

func (s *Server) handleTransform(_ context.Context, _ *mcp.CallToolRequest, input transformInput) (*mcp.CallToolResult, transformOutput, error) {
	if input.DryRun && (input.Output != "" || input.IncludeXML) {
		return errorf("dry_run cannot be combined with output or include_xml"), transformOutput{}, nil
	}

	spec, err := s.resolveSpec(input.Spec)
	if err != nil {
		return errResult(err), transformOutput{}, nil
	}
	name, edit, err := pickEntry(spec, input.Asset)
	if err != nil {
		return errResult(err), transformOutput{}, nil
	}
	doc, err := s.resolveTree(input.Tree)
	if err != nil {
		return errResult(err), transformOutput{}, nil
	}

	escape := s.escapeMarkup
	if input.EscapeMarkup != nil {
		escape = *input.EscapeMarkup
	}
	t := transform.New(
		transform.WithLogger(s.logger.With("asset", name)),
		transform.WithEscapeMarkup(escape),
	)

	var res *transform.Result
	if input.DryRun {
		res, err = t.DryRun(doc, edit)
	} else {
		res, err = t.Apply(doc, edit)
	}
	if err != nil {
		return errResult(err), transformOutput{}, nil
	}

	output := transformOutput{
		Asset:        name,
		Applied:      res.EditsApplied,
		Skipped:      res.EditsSkipped,
		ChangeCount:  len(res.Changes),
		WarningCount: len(res.Warnings),
		Warnings:     res.Warnings.Strings(),
	}
	page := paginate(res.Changes, input.Offset, input.Limit)
	output.Changes = makeSlice[string](len(page))
	for _, c := range page {
		output.Changes = append(output.Changes, c.String())
	}
	output.Returned = len(output.Changes)

	if input.Output != "" {
		out, err := filepath.Abs(input.Output)
		if err != nil {
			return errResult(err), transformOutput{}, nil
		}
		if err := fileutil.RejectSymlink(out); err != nil {
			return errResult(err), transformOutput{}, nil
		}
		if err := doc.WriteFile(out); err != nil {
			return errResult(err), transformOutput{}, nil
		}
		output.Written = out
	}
	if input.IncludeXML {
		xml := doc.String()
		if err := s.checkInline(xml); err != nil {
			return errorf("edited tree too large to return inline; use output instead: %w", err), transformOutput{}, nil
		}
		output.XML = xml
	}
	return nil, output, nil
}

// pickEntry returns the named entry, or the only entry when name is empty.
func pickEntry(spec *patchspec.PatchSpec, name string) (string, *patchspec.FileEdit, error) {
	if name == "" {
		if spec.Len() != 1 {
			return "", nil, fmt.Errorf("spec has %d entries; set asset to one of %v", spec.Len(), spec.Names())
		}
		e := spec.Entries[0]
		return e.Name, e.Edit, nil
	}
	edit, ok := spec.Get(name)
	if !ok {
		return "", nil, fmt.Errorf("spec has no entry %q (entries: %v)", name, spec.Names())
	}
	return name, edit, nil
}
