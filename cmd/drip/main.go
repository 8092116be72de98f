package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/erraggy/drip"
	"github.com/erraggy/drip/cmd/drip/commands"
	"github.com/erraggy/drip/internal/cliutil"
)

// commandNames lists every command, for suggestions.
var commandNames = []string{"patch", "plan", "validate", "transform", "query", "mcp", "version", "help"}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return cliutil.ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, rest := args[0], args[1:]
	var err error
	switch command {
	case "version", "-v", "--version":
		fmt.Printf("drip v%s (commit %s, built %s, %s)\n", drip.Version(), drip.Commit(), drip.BuildTime(), drip.GoVersion())
		return cliutil.ExitOK
	case "help", "-h", "--help":
		printUsage()
		return cliutil.ExitOK
	case "patch":
		err = commands.HandlePatch(ctx, rest)
	case "plan":
		err = commands.HandlePlan(ctx, rest)
	case "validate":
		err = commands.HandleValidate(rest)
	case "transform":
		err = commands.HandleTransform(rest)
	case "query":
		err = commands.HandleQuery(rest)
	case "mcp":
		err = commands.HandleMCP(ctx, rest)
	default:
		cliutil.Writef(os.Stderr, "Unknown command: %s\n", command)
		if s := suggestCommand(command); s != "" {
			cliutil.Writef(os.Stderr, "Did you mean '%s'?\n", s)
		}
		cliutil.Writef(os.Stderr, "\n")
		printUsage()
		return cliutil.ExitUsage
	}

	if err != nil {
		if errors.Is(err, context.Canceled) {
			cliutil.Writef(os.Stderr, "Interrupted\n")
		} else {
			cliutil.Writef(os.Stderr, "Error: %v\n", err)
		}
	}
	return cliutil.ExitCode(err)
}

// suggestCommand returns the closest command within edit distance 2, or "".
func suggestCommand(input string) string {
	best, bestDist := "", 3
	for _, name := range commandNames {
		if d := levenshtein(input, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func printUsage() {
	usage := `drip - declarative patcher for SWF interface files

Usage:
  drip <command> [options]

Commands:
  patch       Extract, patch and place every SWF named in a patch spec
  plan        Show what patch would do, without touching the archive
  validate    Check a patch spec for structural errors
  transform   Apply a spec entry to an FFDec XML export
  query       Select elements of an FFDec XML export by path
  mcp         Serve the spec and tree tools over MCP (stdio)
  version     Show version information
  help        Show this help message

Configuration:
  drip.yaml and .env in the working directory, then DRIP_* environment
  variables, then flags. See 'drip patch --help' for the patch options.

Examples:
  drip patch
  drip patch --archive ../RaceMenu/RaceMenu.bsa -o ../MyPatch ./patch
  drip validate ./patch
  drip plan --format json ./patch
  drip query menu.xml "tags/item[@spriteId='5']/subTags/item"

Run 'drip <command> --help' for more information on a command.
`
	fmt.Fprint(os.Stderr, usage)
}
