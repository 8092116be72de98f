// Package mcpserver implements an MCP (Model Context Protocol) server
// that exposes drip's spec validation, planning and tree editing as MCP
// tools over stdio.
package mcpserver

import (
	"context"
	"fmt"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/erraggy/drip"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/internal/config"
)

const serverInstructions = `drip MCP server: validates and plans DRIP patch specs, and applies them to FFDec XML exports of SWF interface files.

Tools take a spec (patch.json file, patch directory, or inline content) and/or a tree (FFDec -swf2xml export, file or inline). No tool runs FFDec or touches a game archive; use the drip CLI for full patch runs.

Configuration: DRIP_MCP_* environment variables set in your MCP client config.
- DRIP_MCP_CACHE_SIZE (default: 16): parsed specs and trees kept per session; 0 disables caching
- DRIP_MCP_CACHE_TTL (default: 15m): cache entry lifetime
- DRIP_MCP_MAX_INLINE_SIZE (default: 10MiB): largest accepted inline content

Caching: file entries use path+mtime as key (auto-invalidated on change); inline content is keyed by hash.`

// defaultLimit bounds list outputs when the client sets no limit.
const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Server holds the session state shared by every tool.
type Server struct {
	cfg          config.MCPConfig
	escapeMarkup bool
	logger       eventlog.Logger
	cache        *cache
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the event sink for tool activity. Never log to stdout:
// it carries the protocol.
func WithLogger(l eventlog.Logger) Option {
	return func(s *Server) { s.logger = eventlog.OrNop(l) }
}

// WithEscapeMarkup sets the default for tree_transform's escape_markup.
func WithEscapeMarkup(escape bool) Option {
	return func(s *Server) { s.escapeMarkup = escape }
}

// New creates a Server from the MCP settings.
func New(cfg config.MCPConfig, opts ...Option) *Server {
	s := &Server{cfg: cfg, logger: eventlog.NopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	s.cache = newCache(cfg.CacheSize, cfg.CacheTTL)
	return s
}

// Run starts the MCP server over stdio and blocks until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting", "cache_size", s.cfg.CacheSize, "cache_ttl", s.cfg.CacheTTL)
	return s.newMCPServer().Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) newMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: "drip", Version: drip.Version()},
		&mcp.ServerOptions{
			Instructions: serverInstructions,
		},
	)
	s.registerAllTools(server)
	return server
}

func (s *Server) registerAllTools(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "patch_validate",
		Description: "Load a DRIP patch spec (JSON with comments, or YAML) and run the strict structural checks. Returns load problems (fields present but undecodable) and validation errors with entry names, field paths and line numbers. Use offset/limit to paginate.",
	}, s.handleValidate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "patch_plan",
		Description: "Plan a patch run without touching any archive: for each target asset, the merged shape replacement queue (file -> shape indices), whether the XML round trip is needed, and warnings such as missing replacement files. Set asset to plan a single entry.",
	}, s.handlePlan)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tree_transform",
		Description: "Apply one spec entry's header, shape-bounds, sprite and text edits to an FFDec XML export. Returns every attribute change and every warning (unresolved selectors, missing nodes, bad colors). dry_run=true previews without writing. Set output to write the edited XML to a file; otherwise small results are returned inline with include_xml=true.",
	}, s.handleTransform)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "tree_query",
		Description: "Select nodes of an FFDec XML export with a path expression, e.g. tags/item[@spriteId='5']/subTags/item[@depth]/matrix or //item[@type='DefineEditTextTag']. Predicates: [@a], [@a='v'], [@a!='v'], [n]. Returns each match's location, element name and attributes, plus document stats.",
	}, s.handleQuery)
}

// paginate applies offset/limit pagination to a slice, returning the
// requested page. A non-positive limit defaults to defaultLimit.
func paginate[T any](items []T, offset, limit int) []T {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 || offset >= len(items) {
		return nil
	}
	end := offset + limit
	if end < offset || end > len(items) { // overflow or beyond slice
		end = len(items)
	}
	return items[offset:end]
}

// makeSlice returns nil when n is 0 (preserving omitempty JSON semantics),
// otherwise returns make([]T, 0, n) for pre-allocated appending.
func makeSlice[T any](n int) []T {
	if n == 0 {
		return nil
	}
	return make([]T, 0, n)
}

// sanitizeError strips absolute filesystem paths from error messages
// to prevent leaking internal directory structure to MCP clients.
var pathPattern = regexp.MustCompile(`(?:/(?:home|tmp|var|Users|etc|opt|usr|private|root|mnt|srv|run|snap|nix)[a-zA-Z0-9._/-]*)`)

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return pathPattern.ReplaceAllString(err.Error(), "<path>")
}

// errResult creates an MCP error result from an error.
func errResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: sanitizeError(err)}},
	}
}

// errorf is errResult with formatting.
func errorf(format string, args ...any) *mcp.CallToolResult {
	return errResult(fmt.Errorf(format, args...))
}
