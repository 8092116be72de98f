package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/drip/shapejob"
	"github.com/erraggy/drip/transform"
)

type planInput struct {
	Spec  specInput `json:"spec"            jsonschema:"The patch spec to plan"`
	Asset string    `json:"asset,omitempty" jsonschema:"Plan only this target asset (e.g. racesex_menu.swf)"`
}

type planGroup struct {
	File    string `json:"file"`
	Indices []int  `json:"indices"`
}

type assetPlan struct {
	Asset    string      `json:"asset"`
	Groups   []planGroup `json:"groups,omitempty"`
	Jobs     int         `json:"jobs"`
	TreeEdit bool        `json:"tree_edit"`
	Header   bool        `json:"header,omitempty"`
	Sprites  int         `json:"sprites,omitempty"`
	Text     int         `json:"text,omitempty"`
	Warnings []string    `json:"warnings,omitempty"`
}

type planOutput struct {
	Root         string      `json:"root,omitempty"`
	Total        int         `json:"total"`
	WarningCount int         `json:"warning_count"`
	Assets       []assetPlan `json:"assets,omitempty"`
}

func (s *Server) handlePlan(_ context.Context, _ *mcp.CallToolRequest, input planInput) (*mcp.CallToolResult, planOutput, error) {
	spec, err := s.resolveSpec(input.Spec)
	if err != nil {
		return errResult(err), planOutput{}, nil
	}

	output := planOutput{Root: spec.Root, Total: spec.Len()}
	for _, entry := range spec.Entries {
		if input.Asset != "" && entry.Name != input.Asset {
			continue
		}
		sj := shapejob.Build(entry.Edit, spec.Root, shapejob.WithLogger(s.logger))
		plan := assetPlan{
			Asset:    entry.Name,
			Jobs:     len(sj.Jobs),
			TreeEdit: transform.RequiresTree(entry.Edit),
			Header:   entry.Edit != nil && entry.Edit.Header.HasEdits(),
			Warnings: sj.Warnings.Strings(),
		}
		if entry.Edit != nil {
			plan.Sprites = len(entry.Edit.Sprites)
			plan.Text = len(entry.Edit.Text)
			for _, p := range entry.Edit.Problems {
				plan.Warnings = append(plan.Warnings, p.String())
			}
		}
		plan.Groups = makeSlice[planGroup](len(sj.Groups))
		for _, g := range sj.Groups {
			plan.Groups = append(plan.Groups, planGroup{File: g.ReplacementAsset, Indices: g.Indices})
		}
		output.WarningCount += len(plan.Warnings)
		output.Assets = append(output.Assets, plan)
	}

	if input.Asset != "" && len(output.Assets) == 0 {
		return errorf("spec has no entry %q (entries: %v)", input.Asset, spec.Names()), planOutput{}, nil
	}
	return nil, output, nil
}
