package patcher

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/erraggy/drip/internal/proc"
)

// Job is a run executing on its own goroutine, so the caller (a UI, a
// server) is never blocked by the pipeline.
type Job struct {
	cancel context.CancelFunc
	done   chan struct{}
	pid    atomic.Int64

	mu     sync.Mutex
	report *Report
	err    error
}

// Start runs the pipeline in the background. Cancelling ctx or calling
// Job.Cancel kills the running tool and removes the scratch directory.
func (p *Patcher) Start(ctx context.Context) *Job {
	ctx, cancel := context.WithCancel(ctx)
	j := &Job{cancel: cancel, done: make(chan struct{})}
	ctx = proc.WithStartHook(ctx, func(pid int) {
		j.pid.Store(int64(pid))
		p.logger.Debug("external tool started", "pid", pid)
	})
	go func() {
		defer close(j.done)
		defer cancel()
		rep, err := p.Run(ctx)
		j.mu.Lock()
		j.report, j.err = rep, err
		j.mu.Unlock()
	}()
	return j
}

// Cancel requests cancellation. It does not wait; use Wait or Done.
func (j *Job) Cancel() { j.cancel() }

// PID returns the pid of the most recently started external tool process,
// or 0 when none has started yet. The process may already have exited.
func (j *Job) PID() int { return int(j.pid.Load()) }

// Done is closed once the run, including scratch cleanup, has finished.
func (j *Job) Done() <-chan struct{} { return j.done }

// Wait blocks until the run finishes and returns its outcome.
func (j *Job) Wait() (*Report, error) {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.report, j.err
}
