package commands

import (
	"context"
	"flag"

	"github.com/erraggy/drip/internal/cliutil"
	"github.com/erraggy/drip/internal/mcpserver"
)

// HandleMCP runs the MCP server over stdio until the client disconnects.
// Logs go to Stderr; stdout carries the protocol.
func HandleMCP(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	var flags CommonFlags
	flags.bind(fs)
	fs.Usage = func() {
		Writef(fs.Output(), "Usage: drip mcp [flags]\n\n")
		Writef(fs.Output(), "Serve patch_validate, patch_plan, tree_transform and tree_query over MCP (stdio).\n\n")
		Writef(fs.Output(), "Flags:\n")
		fs.PrintDefaults()
		Writef(fs.Output(), "\nEnvironment:\n")
		Writef(fs.Output(), "  DRIP_MCP_CACHE_SIZE, DRIP_MCP_CACHE_TTL, DRIP_MCP_MAX_INLINE_SIZE\n")
	}
	if stop, err := parseFlags(fs, args); stop {
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return cliutil.Usagef("mcp takes no arguments")
	}

	cfg, log, err := flags.load()
	if err != nil {
		return err
	}
	srv := mcpserver.New(cfg.MCP,
		mcpserver.WithLogger(log),
		mcpserver.WithEscapeMarkup(cfg.EscapeMarkup),
	)
	return srv.Run(ctx)
}
