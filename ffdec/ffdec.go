package ffdec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/erraggy/drip/driperrors"
	"github.com/erraggy/drip/eventlog"
	"github.com/erraggy/drip/internal/proc"
	"github.com/erraggy/drip/shapejob"
)

// ToolName is the tool name carried by ExternalToolError.
const ToolName = "ffdec"

// Operations, as passed on the FFDec command line.
const (
	OpSWF2XML = "swf2xml"
	OpXML2SWF = "xml2swf"
	OpReplace = "replace"
)

// PatchedSuffix is appended to the stem of a recompiled asset so the
// original next to the tree file is never overwritten.
const PatchedSuffix = ".patched"

// Tool is the decompiler surface the patcher needs.
type Tool interface {
	// ToIntermediate exports asset as an XML tree and returns the tree path.
	ToIntermediate(ctx context.Context, asset string) (string, error)
	// FromIntermediate compiles a tree back into an asset and returns its path.
	FromIntermediate(ctx context.Context, tree string) (string, error)
	// ReplaceShapes applies every job to asset in place, in order.
	ReplaceShapes(ctx context.Context, asset string, jobs []shapejob.Job) error
}

// TreePath returns where ToIntermediate writes the tree for asset.
func TreePath(asset string) string {
	return strings.TrimSuffix(asset, filepath.Ext(asset)) + ".xml"
}

// OutputPath returns where FromIntermediate writes the asset for tree.
func OutputPath(tree string) string {
	return strings.TrimSuffix(tree, filepath.Ext(tree)) + PatchedSuffix + ".swf"
}

// CLI drives the FFDec command line.
type CLI struct {
	argv   []string
	logger eventlog.Logger
	runner *proc.Runner
}

// Option configures a CLI.
type Option func(*CLI)

// WithLogger sets the event sink; tool output is logged at debug level.
func WithLogger(l eventlog.Logger) Option {
	return func(c *CLI) { c.logger = eventlog.OrNop(l) }
}

// NewCLI creates a CLI from a command line such as "ffdec" or
// `java -jar "/opt/ffdec/ffdec.jar"`.
func NewCLI(command string, opts ...Option) (*CLI, error) {
	argv, err := proc.SplitCommand(command)
	if err != nil {
		return nil, &driperrors.ConfigError{Option: "ffdec_command", Value: command, Cause: err}
	}
	if len(argv) == 0 {
		return nil, &driperrors.ConfigError{Option: "ffdec_command", Message: "command is empty"}
	}
	c := &CLI{argv: argv, logger: eventlog.NopLogger{}}
	for _, opt := range opts {
		opt(c)
	}
	c.runner = proc.New(proc.WithLogger(c.logger.With("tool", ToolName)), proc.WithLineHandler(c.scanLine))
	return c, nil
}

// Command returns the argv prefix used for every invocation.
func (c *CLI) Command() []string { return append([]string(nil), c.argv...) }

// ToIntermediate runs -swf2xml and returns the tree path (<stem>.xml).
func (c *CLI) ToIntermediate(ctx context.Context, asset string) (string, error) {
	if err := requireFile(asset, OpSWF2XML); err != nil {
		return "", err
	}
	out := TreePath(asset)
	c.logger.Info("converting asset to tree", "asset", asset)
	if err := c.exec(ctx, OpSWF2XML, asset, "-swf2xml", asset, out); err != nil {
		return "", err
	}
	if err := requireOutput(out, OpSWF2XML, asset); err != nil {
		return "", err
	}
	return out, nil
}

// FromIntermediate runs -xml2swf and returns the asset path
// (<stem>.patched.swf).
func (c *CLI) FromIntermediate(ctx context.Context, tree string) (string, error) {
	if err := requireFile(tree, OpXML2SWF); err != nil {
		return "", err
	}
	out := OutputPath(tree)
	c.logger.Info("converting tree to asset", "tree", tree)
	if err := c.exec(ctx, OpXML2SWF, tree, "-xml2swf", tree, out); err != nil {
		return "", err
	}
	if err := requireOutput(out, OpXML2SWF, tree); err != nil {
		return "", err
	}
	return out, nil
}

// ReplaceShapes runs one -replace per job, rewriting asset in place.
// It stops at the first failure or cancellation.
func (c *CLI) ReplaceShapes(ctx context.Context, asset string, jobs []shapejob.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	if err := requireFile(asset, OpReplace); err != nil {
		return err
	}
	c.logger.Info("replacing shapes", "asset", asset, "jobs", len(jobs))
	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.logger.Debug("replacing shape",
			"n", i+1, "of", len(jobs), "index", job.TargetIndex, "file", job.ReplacementAsset)
		err := c.exec(ctx, OpReplace, asset,
			"-replace", asset, asset, strconv.Itoa(job.TargetIndex), job.ReplacementAsset, "nofill")
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) exec(ctx context.Context, op, subject string, args ...string) error {
	argv := append(c.Command()[1:], args...)
	_, err := c.runner.Run(ctx, c.argv[0], argv...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	te := &driperrors.ExternalToolError{Tool: ToolName, Operation: op, ExitCode: -1, Message: subject, Cause: err}
	var exitErr *proc.ExitError
	if errors.As(err, &exitErr) {
		te.ExitCode = exitErr.Code
	}
	return te
}

// scanLine surfaces FFDec diagnostics at warn level. FFDec often exits zero
// after logging a failure, so these lines are the only trace of it.
func (c *CLI) scanLine(line string) {
	if strings.Contains(line, "SEVERE") || strings.Contains(line, "Exception") {
		c.logger.Warn("ffdec reported a problem", "line", line)
	}
}

// CheckJava runs "<java> -version" and reports whether a JVM is available.
// FFDec's launchers need one.
func CheckJava(ctx context.Context, java string) error {
	argv, err := proc.SplitCommand(java)
	if err != nil || len(argv) == 0 {
		return &driperrors.ConfigError{Option: "java_command", Value: java, Message: "invalid command", Cause: err}
	}
	if _, err := proc.New().Run(ctx, argv[0], append(argv[1:], "-version")...); err != nil {
		return &driperrors.ExternalToolError{Tool: argv[0], Operation: "version", ExitCode: -1, Message: "java is not installed or not on PATH", Cause: err}
	}
	return nil
}

func requireFile(path, op string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &driperrors.ExternalToolError{Tool: ToolName, Operation: op, ExitCode: -1, Message: "input missing", Cause: err}
	}
	if info.IsDir() {
		return &driperrors.ExternalToolError{Tool: ToolName, Operation: op, ExitCode: -1, Message: fmt.Sprintf("input is a directory: %s", path)}
	}
	return nil
}

// requireOutput catches FFDec runs that exit zero without writing anything.
func requireOutput(path, op, subject string) error {
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return &driperrors.ExternalToolError{
			Tool:      ToolName,
			Operation: op,
			ExitCode:  -1,
			Message:   fmt.Sprintf("no output written for %s", subject),
			Cause:     err,
		}
	}
	return nil
}
