// Package proc runs external media tools as supervised subprocesses: spawn
// with configured stdio routing, wait bounded by an optional timeout,
// capture or hand out the standard streams, and tie the child's lifetime to
// a context so no orphan survives an abandoned handle.
package proc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const loggerName = "ffproc"

var defaultLogger *zap.SugaredLogger

func init() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("error constructing default logger: %s", err))
	}
	defaultLogger = logger.Sugar().Named(loggerName)
}

// Config describes how to run one external program. Each standard stream is
// either piped back to the supervisor or wired to the null device, so
// contradictory routing is unrepresentable.
type Config struct {
	// Path is the executable name or path, resolved the way a shell would.
	Path string

	// Dir is the working directory; empty means inherit.
	Dir string

	// Env is a "KEY=VALUE" overlay applied on top of the inherited
	// environment. Later entries win over inherited values.
	Env []string

	// Timeout bounds Wait; zero means unbounded.
	Timeout time.Duration

	CaptureStdout bool
	CaptureStderr bool
	PipeStdin     bool

	Log *zap.SugaredLogger
}

// New returns a Config that captures both output streams.
func New(path string) *Config {
	return &Config{Path: path, CaptureStdout: true, CaptureStderr: true}
}

func (c *Config) WithDir(dir string) *Config {
	c.Dir = dir
	return c
}

func (c *Config) WithEnv(key, value string) *Config {
	c.Env = append(c.Env, key+"="+value)
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithCaptureStdout(capture bool) *Config {
	c.CaptureStdout = capture
	return c
}

func (c *Config) WithCaptureStderr(capture bool) *Config {
	c.CaptureStderr = capture
	return c
}

func (c *Config) WithPipeStdin(pipe bool) *Config {
	c.PipeStdin = pipe
	return c
}

func (c *Config) WithLogger(l *zap.SugaredLogger) *Config {
	c.Log = l
	return c
}

func (c *Config) logger() *zap.SugaredLogger {
	if c.Log != nil {
		return c.Log
	}
	return defaultLogger
}

func (c *Config) clone() *Config {
	dup := *c
	dup.Env = append([]string(nil), c.Env...)
	return &dup
}

// Proc is one live supervised process. It exclusively owns the OS process
// and the parent ends of any pipes that have not been taken yet.
type Proc struct {
	cfg *Config
	cmd *exec.Cmd
	id  string
	log *zap.SugaredLogger

	mu     sync.Mutex
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	// state and waitErr are written once by the reaper goroutine before
	// exited is closed.
	exited  chan struct{}
	state   *os.ProcessState
	waitErr error
}

// Spawn launches the configured program with the given arguments. The child
// is tied to ctx: cancelling it kills the process, so a Proc abandoned
// along with its context leaves no orphan behind.
//
// A name that cannot be resolved to an executable is reported as
// *NotFoundError before any process is created.
func Spawn(ctx context.Context, cfg *Config, args []string) (*Proc, error) {
	path, err := exec.LookPath(cfg.Path)
	if err != nil {
		return nil, &NotFoundError{Name: cfg.Path}
	}

	cmd := exec.Command(path, args...)
	cmd.Dir = cfg.Dir
	if len(cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), cfg.Env...)
	}

	p := &Proc{
		cfg:    cfg,
		cmd:    cmd,
		id:     uuid.NewString()[:8],
		exited: make(chan struct{}),
	}
	p.log = cfg.logger().With("proc_id", p.id, "path", path)

	// Each piped stream gets an os.Pipe whose child end we close right
	// after the fork, so readers see EOF exactly when the child exits.
	// Unpiped streams are left nil and get the null device from os/exec.
	var childEnds []*os.File
	cleanup := func() {
		for _, f := range childEnds {
			f.Close()
		}
		p.closeStreams()
	}

	if cfg.PipeStdin {
		r, w, err := os.Pipe()
		if err != nil {
			return nil, fmt.Errorf("creating stdin pipe: %w", err)
		}
		cmd.Stdin = r
		p.stdin = w
		childEnds = append(childEnds, r)
	}
	if cfg.CaptureStdout {
		r, w, err := os.Pipe()
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("creating stdout pipe: %w", err)
		}
		cmd.Stdout = w
		p.stdout = r
		childEnds = append(childEnds, w)
	}
	if cfg.CaptureStderr {
		r, w, err := os.Pipe()
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("creating stderr pipe: %w", err)
		}
		cmd.Stderr = w
		p.stderr = r
		childEnds = append(childEnds, w)
	}

	if err := cmd.Start(); err != nil {
		cleanup()
		return nil, fmt.Errorf("starting %s: %w", cfg.Path, err)
	}
	for _, f := range childEnds {
		f.Close()
	}

	p.log.Debugw("spawned process", "pid", cmd.Process.Pid, "args", args)

	// reap the child and record its exit
	go func() {
		state, err := cmd.Process.Wait()
		p.state = state
		p.waitErr = err
		close(p.exited)
		p.log.Debugw("process exited", "state", state)
	}()

	// kill the child if the context ends first
	go func() {
		select {
		case <-ctx.Done():
			p.log.Debugw("context done, killing process", "cause", ctx.Err())
			_ = p.Kill()
		case <-p.exited:
		}
	}()

	return p, nil
}

// Wait blocks until the child exits, the configured timeout fires, or ctx
// is cancelled, whichever comes first. Captured streams still owned by the
// Proc are drained concurrently while waiting, so a child filling both
// pipes cannot deadlock against a sequential reader.
//
// A non-zero exit is not an error here; it is reported in the Output. On
// timeout the child is killed and reaped, a *TimeoutError is returned, and
// any partially captured output is discarded.
func (p *Proc) Wait(ctx context.Context) (*Output, error) {
	// whatever streams are still ours (an untaken stdin, mostly) are dead
	// once Wait resolves
	defer p.closeStreams()

	var timeoutCh <-chan time.Time
	if p.cfg.Timeout > 0 {
		timer := time.NewTimer(p.cfg.Timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	var stdoutBuf, stderrBuf []byte
	var group errgroup.Group
	if r := p.Stdout(); r != nil {
		group.Go(func() error {
			defer r.Close()
			b, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("reading stdout: %w", err)
			}
			stdoutBuf = b
			return nil
		})
	}
	if r := p.Stderr(); r != nil {
		group.Go(func() error {
			defer r.Close()
			b, err := io.ReadAll(r)
			if err != nil {
				return fmt.Errorf("reading stderr: %w", err)
			}
			stderrBuf = b
			return nil
		})
	}
	drained := make(chan error, 1)
	go func() { drained <- group.Wait() }()

	select {
	case <-p.exited:
	case <-timeoutCh:
		_ = p.Kill()
		// reap before reporting so no process outlives the error
		<-p.exited
		p.log.Debugw("wait timed out", "timeout", p.cfg.Timeout)
		return nil, &TimeoutError{Timeout: p.cfg.Timeout}
	case <-ctx.Done():
		_ = p.Kill()
		<-p.exited
		return nil, ctx.Err()
	}

	if p.waitErr != nil {
		return nil, fmt.Errorf("waiting for process: %w", p.waitErr)
	}
	if err := <-drained; err != nil {
		return nil, err
	}
	return &Output{State: p.state, Stdout: stdoutBuf, Stderr: stderrBuf}, nil
}

// Kill forcibly terminates the child. Killing a process that has already
// exited is not an error.
func (p *Proc) Kill() error {
	err := p.cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("killing process: %w", err)
	}
	return nil
}

// Signal delivers sig to the child. ffmpeg treats SIGINT as "finish the
// current output and exit", which is gentler than Kill.
func (p *Proc) Signal(sig os.Signal) error {
	err := p.cmd.Process.Signal(sig)
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("signaling process: %w", err)
	}
	return nil
}

// TryWait polls for exit without blocking and without consuming the Proc.
// It returns (nil, nil) while the child is still running.
func (p *Proc) TryWait() (*os.ProcessState, error) {
	select {
	case <-p.exited:
		if p.waitErr != nil {
			return nil, fmt.Errorf("waiting for process: %w", p.waitErr)
		}
		return p.state, nil
	default:
		return nil, nil
	}
}

// Stdin returns the write end of the child's stdin pipe, or nil if stdin is
// not piped or the handle was already taken. Ownership transfers to the
// caller, who must close it to signal EOF to the child.
func (p *Proc) Stdin() io.WriteCloser {
	p.mu.Lock()
	defer p.mu.Unlock()
	w := p.stdin
	p.stdin = nil
	return w
}

// Stdout returns the read end of the child's stdout pipe, or nil if stdout
// is not piped or the handle was already taken. A taken stream is the
// caller's to drain and close; Wait will no longer capture it.
func (p *Proc) Stdout() io.ReadCloser {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.stdout
	p.stdout = nil
	return r
}

// Stderr is the stderr counterpart of Stdout.
func (p *Proc) Stderr() io.ReadCloser {
	p.mu.Lock()
	defer p.mu.Unlock()
	r := p.stderr
	p.stderr = nil
	return r
}

// Pid returns the OS process ID of the child.
func (p *Proc) Pid() int {
	return p.cmd.Process.Pid
}

// ID is a short random identifier correlating this process's log lines.
func (p *Proc) ID() string {
	return p.id
}

func (p *Proc) closeStreams() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin != nil {
		p.stdin.Close()
		p.stdin = nil
	}
	if p.stdout != nil {
		p.stdout.Close()
		p.stdout = nil
	}
	if p.stderr != nil {
		p.stderr.Close()
		p.stderr = nil
	}
}
