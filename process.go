package photozip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"sync"
	"time"
)

const (
	// stderrTailSize bounds how much archiver diagnostics are kept for logging.
	stderrTailSize = 4 << 10

	// waitDelay bounds how long Wait keeps the output pipes open after the
	// archiver has been terminated.
	waitDelay = 5 * time.Second
)

// ArchiveProcess is a running archiver owned by a single stream session.
// Its standard output is the archive; its standard error is kept in a
// bounded buffer and never sent to the client.
//
// Terminate may be called from any goroutine. ReadChunk, Wait and Close
// must be called from the goroutine that owns the process.
type ArchiveProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *tailBuffer
	cancel context.CancelFunc

	waitOnce sync.Once
	exited   chan struct{}
	exitCode int
	waitErr  error

	closeOnce sync.Once
	closeErr  error
}

// StartArchive starts the archiver in dir with names appended to its
// arguments. The process runs in its own process group and is killed, with
// everything it spawned, when ctx is cancelled or Terminate is called.
func StartArchive(ctx context.Context, cfg ArchiverConfig, dir string, names []string) (*ArchiveProcess, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	procCtx, cancel := context.WithCancel(ctx)

	args := append(slices.Clone(cfg.Args), names...)
	cmd := exec.CommandContext(procCtx, cfg.Command, args...)
	cmd.Dir = dir
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)
	cmd.Cancel = func() error {
		return killProcessGroup(cmd.Process)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %s: %w", ErrProcessSpawn, cfg.Command, err)
	}

	stderr := newTailBuffer(stderrTailSize)
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %s: %w", ErrProcessSpawn, cfg.Command, err)
	}

	return &ArchiveProcess{
		cmd:      cmd,
		stdout:   stdout,
		stderr:   stderr,
		cancel:   cancel,
		exited:   make(chan struct{}),
		exitCode: -1,
	}, nil
}

// PID returns the process id of the archiver.
func (p *ArchiveProcess) PID() int {
	return p.cmd.Process.Pid
}

// ReadChunk reads up to len(buf) bytes of archive output. It returns
// io.EOF once the archiver has closed its output.
func (p *ArchiveProcess) ReadChunk(buf []byte) (int, error) {
	return p.stdout.Read(buf)
}

// Terminate kills the archiver's process group. It is a no-op once the
// process has been reaped.
func (p *ArchiveProcess) Terminate() {
	p.cancel()
}

// Wait blocks until the archiver exits and returns its exit code. A
// process killed by a signal reports -1. The returned error is non-nil
// only when waiting itself failed; a non-zero exit is not an error.
func (p *ArchiveProcess) Wait() (int, error) {
	p.waitOnce.Do(func() {
		err := p.cmd.Wait()
		if state := p.cmd.ProcessState; state != nil {
			p.exitCode = state.ExitCode()
		}

		var exitErr *exec.ExitError
		if err != nil && !errors.As(err, &exitErr) &&
			!errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			p.waitErr = err
		}

		p.cancel()
		close(p.exited)
	})
	return p.exitCode, p.waitErr
}

// Exited reports whether the archiver has been reaped.
func (p *ArchiveProcess) Exited() bool {
	select {
	case <-p.exited:
		return true
	default:
		return false
	}
}

// Stderr returns the tail of the archiver's diagnostic output.
func (p *ArchiveProcess) Stderr() string {
	return p.stderr.String()
}

// Close terminates the archiver if it is still running and reaps it.
// It runs once; later calls return the first result.
func (p *ArchiveProcess) Close() error {
	p.closeOnce.Do(func() {
		if !p.Exited() {
			p.Terminate()
		}
		_, p.closeErr = p.Wait()
	})
	return p.closeErr
}

// tailBuffer is an io.Writer that keeps the last limit bytes written.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = slices.Delete(b.buf, 0, over)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
