package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/drip/patchspec"
)

type validateInput struct {
	Spec   specInput `json:"spec"             jsonschema:"The patch spec to validate"`
	Offset int       `json:"offset,omitempty" jsonschema:"Skip the first N errors/problems (for pagination)"`
	Limit  int       `json:"limit,omitempty"  jsonschema:"Maximum number of errors/problems to return (default 100). Applied independently to both arrays."`
}

type validateIssue struct {
	Entry   string `json:"entry,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

type validateOutput struct {
	Valid        bool            `json:"valid"`
	Assets       []string        `json:"assets,omitempty"`
	ErrorCount   int             `json:"error_count"`
	ProblemCount int             `json:"problem_count"`
	Returned     int             `json:"returned"`
	Errors       []validateIssue `json:"errors,omitempty"`
	Problems     []validateIssue `json:"problems,omitempty"`
}

func (s *Server) handleValidate(_ context.Context, _ *mcp.CallToolRequest, input validateInput) (*mcp.CallToolResult, validateOutput, error) {
	spec, err := s.resolveSpec(input.Spec)
	if err != nil {
		return errResult(err), validateOutput{}, nil
	}

	verrs := patchspec.Validate(spec)
	problems := spec.Problems()
	output := validateOutput{
		Valid:        len(verrs) == 0,
		Assets:       spec.Names(),
		ErrorCount:   len(verrs),
		ProblemCount: len(problems),
	}

	output.Errors = makeSlice[validateIssue](len(verrs))
	for _, e := range verrs {
		output.Errors = append(output.Errors, validateIssue{
			Entry:   e.Entry,
			Path:    e.Path,
			Message: e.Message,
			Line:    e.Pos.Line,
		})
	}
	output.Problems = makeSlice[validateIssue](len(problems))
	for _, p := range problems {
		output.Problems = append(output.Problems, validateIssue{
			Entry:   p.Entry,
			Path:    p.Field,
			Message: p.Message,
			Line:    p.Pos.Line,
		})
	}

	output.Errors = paginate(output.Errors, input.Offset, input.Limit)
	output.Problems = paginate(output.Problems, input.Offset, input.Limit)
	output.Returned = len(output.Errors) + len(output.Problems)

	s.logger.Debug("spec validated", "assets", len(output.Assets), "errors", output.ErrorCount)
	return nil, output, nil
}
