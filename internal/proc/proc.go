// Package proc runs external tools with context cancellation and streams
// their combined output line by line.
package proc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/unicode"

	"github.com/erraggy/drip/eventlog"
)

// DefaultWaitDelay bounds how long Run waits for output pipes to drain
// after the process has exited or been killed.
const DefaultWaitDelay = 2 * time.Second

// tailLines is how many trailing output lines an ExitError keeps.
const tailLines = 20

// ExitError reports a process that ran but exited non-zero.
type ExitError struct {
	Name string
	Code int
	// Tail holds the last lines of combined output.
	Tail []string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("%s exited with status %d", e.Name, e.Code)
	if len(e.Tail) > 0 {
		msg += ": " + e.Tail[len(e.Tail)-1]
	}
	return msg
}

// Result describes a finished process.
type Result struct {
	ExitCode int
	Duration time.Duration
	// Lines counts output lines seen.
	Lines int
	// Tail holds the last lines of combined output.
	Tail []string
}

// Runner starts processes. The zero value is not usable; call New.
type Runner struct {
	logger    eventlog.Logger
	dir       string
	waitDelay time.Duration
	onLine    func(string)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the sink that receives each output line at debug level.
func WithLogger(l eventlog.Logger) Option {
	return func(r *Runner) { r.logger = eventlog.OrNop(l) }
}

// WithDir sets the working directory of started processes.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// WithWaitDelay overrides DefaultWaitDelay.
func WithWaitDelay(d time.Duration) Option {
	return func(r *Runner) { r.waitDelay = d }
}

// WithLineHandler registers fn to receive every decoded output line.
func WithLineHandler(fn func(string)) Option {
	return func(r *Runner) { r.onLine = fn }
}

type startHookKey struct{}

// WithStartHook returns a context whose Run calls report the pid of every
// process they start to fn. Hooks already on ctx keep firing.
func WithStartHook(ctx context.Context, fn func(pid int)) context.Context {
	if prev, ok := ctx.Value(startHookKey{}).(func(int)); ok {
		next := fn
		fn = func(pid int) {
			prev(pid)
			next(pid)
		}
	}
	return context.WithValue(ctx, startHookKey{}, fn)
}

// New creates a Runner.
func New(opts ...Option) *Runner {
	r := &Runner{logger: eventlog.NopLogger{}, waitDelay: DefaultWaitDelay}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run starts name with args and waits for it. Stdout and stderr are merged,
// decoded as UTF-8 (invalid bytes become U+FFFD) and streamed line by line.
// Cancelling ctx kills the process and, on Unix, its whole process group.
//
// A non-zero exit returns the Result and an *ExitError; a cancelled context
// returns ctx.Err().
func (r *Runner) Run(ctx context.Context, name string, args ...string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.dir
	cmd.WaitDelay = r.waitDelay
	configure(cmd)

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	log := r.logger.With("tool", name)
	start := time.Now()
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		return nil, fmt.Errorf("proc: starting %s: %w", name, err)
	}
	log.Debug("process started", "pid", cmd.Process.Pid, "args", strings.Join(args, " "))
	if hook, ok := ctx.Value(startHookKey{}).(func(int)); ok {
		hook(cmd.Process.Pid)
	}

	res := &Result{}
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.stream(pr, log, res)
	}()

	waitErr := cmd.Wait()
	_ = pw.Close()
	wg.Wait()
	res.Duration = time.Since(start)
	res.ExitCode = cmd.ProcessState.ExitCode()

	if ctxErr := ctx.Err(); ctxErr != nil {
		log.Debug("process cancelled", "pid", cmd.Process.Pid)
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return res, &ExitError{Name: name, Code: exitErr.ExitCode(), Tail: res.Tail}
	}
	if waitErr != nil && !errors.Is(waitErr, exec.ErrWaitDelay) {
		return res, fmt.Errorf("proc: %s: %w", name, waitErr)
	}
	log.Debug("process finished", "duration", res.Duration, "lines", res.Lines)
	return res, nil
}

func (r *Runner) stream(src io.Reader, log eventlog.Logger, res *Result) {
	sc := bufio.NewScanner(unicode.UTF8.NewDecoder().Reader(src))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		res.Lines++
		res.Tail = append(res.Tail, line)
		if len(res.Tail) > tailLines {
			res.Tail = res.Tail[1:]
		}
		log.Debug(line)
		if r.onLine != nil {
			r.onLine(line)
		}
	}
	// drain whatever the scanner refused so the child never blocks on a full pipe
	_, _ = io.Copy(io.Discard, src)
}
