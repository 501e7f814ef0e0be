package compositor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"

	"go.uber.org/zap"

	"github.com/Hitesh-sisara/remotion/internal/complog"
)

// RunningStatus describes whether the child is live, cleanly exited, or
// crashed. It transitions away from Running at most once.
type RunningStatus int

const (
	// StatusRunning means the child is alive and accepting commands.
	StatusRunning RunningStatus = iota
	// StatusQuitWithoutError means the child exited with code 0.
	StatusQuitWithoutError
	// StatusQuitWithError means the child crashed or violated the protocol.
	// The captured stderr text travels with every resulting error.
	StatusQuitWithError
)

// String returns a human-readable status name.
func (s RunningStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusQuitWithoutError:
		return "quit"
	case StatusQuitWithError:
		return "quit with error"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Options configures Start.
type Options struct {
	// ExecutablePath locates the compositor binary. Either this or
	// BinariesDirectory is required; an explicit path wins.
	ExecutablePath string

	// BinariesDirectory holds the compositor binary under its well-known
	// name. Used when ExecutablePath is empty.
	BinariesDirectory string

	// Concurrency is the child's parallel render lane count.
	// Zero means one lane per CPU.
	Concurrency int

	// FrameCacheItems caps the child's frame cache. Zero derives the cap
	// from free physical memory.
	FrameCacheItems int

	// Verbose turns on the child's diagnostic frames and this side's debug
	// logging of them.
	Verbose bool

	// Logger receives the supervisor's log stream. Defaults to a stderr
	// console logger honoring Verbose.
	Logger *zap.Logger
}

// request is one line written to the child's stdin.
type request struct {
	Nonce   string          `json:"nonce"`
	Payload commandEnvelope `json:"payload"`
}

// commandEnvelope is the {type, params} shape shared by stdin requests and
// the argv start command.
type commandEnvelope struct {
	Type   string `json:"type"`
	Params any    `json:"params"`
}

// Compositor supervises one child process. All submissions and lifecycle
// transitions serialize through one mutex; response dispatch runs on the
// stdout goroutine and touches only the registry, whose entries are one-shot.
type Compositor struct {
	log *zap.Logger

	child    *childHandles
	parser   Parser
	registry *registry
	nonces   *nonceSource

	mu         sync.Mutex
	status     RunningStatus
	quitStderr string

	stderrMu  sync.Mutex
	stderrBuf bytes.Buffer

	// exited is closed once the lifecycle leaves Running. The final status
	// is published before the close.
	exited chan struct{}
}

// Start launches the compositor binary and returns its supervisor. The start
// command is serialized as a single JSON argument; stdin stays reserved for
// the command stream.
func Start(opts Options) (*Compositor, error) {
	execPath, err := resolveExecutable(opts.ExecutablePath, opts.BinariesDirectory)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = complog.New(opts.Verbose)
	}

	concurrency := opts.Concurrency
	if concurrency == 0 {
		concurrency = runtime.NumCPU()
	}
	cacheItems := opts.FrameCacheItems
	if cacheItems == 0 {
		cacheItems = MaxFrameCacheItems()
	}

	start := StartLongRunningProcess{
		Concurrency:        concurrency,
		MaxFrameCacheItems: cacheItems,
		Verbose:            opts.Verbose,
	}
	arg, err := json.Marshal(commandEnvelope{Type: start.CommandType(), Params: start})
	if err != nil {
		return nil, fmt.Errorf("serialize start command: %w", err)
	}

	child, err := spawnChild(execPath, arg)
	if err != nil {
		return nil, err
	}

	c := newSupervisor(child, logger)
	c.log.Debug("compositor started", zap.Int("pid", child.pid))
	return c, nil
}

// newSupervisor wires the stream goroutines around a spawned (or, in tests,
// fabricated) child.
func newSupervisor(child *childHandles, logger *zap.Logger) *Compositor {
	c := &Compositor{
		log:      complog.Component(logger, "compositor"),
		child:    child,
		registry: newRegistry(),
		nonces:   newNonceSource(),
		status:   StatusRunning,
		exited:   make(chan struct{}),
	}

	stdoutDone := make(chan struct{})
	stderrDone := make(chan struct{})
	go c.readStdout(stdoutDone)
	go c.readStderr(stderrDone)
	go c.watchExit(stdoutDone, stderrDone)

	return c
}

// ExecuteCommand submits one command and blocks until the matching response
// frame arrives, the child dies, or ctx is cancelled. The returned bytes are
// the frame payload, untouched; image frames survive the trip.
func (c *Compositor) ExecuteCommand(ctx context.Context, commandType string, params any) ([]byte, error) {
	c.mu.Lock()
	if err := c.gateLocked(); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	nonce := c.nonces.next()
	line, err := json.Marshal(request{
		Nonce:   nonce,
		Payload: commandEnvelope{Type: commandType, Params: params},
	})
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("serialize command %s: %w", commandType, err)
	}

	w := newWaiter()
	c.registry.insert(nonce, w)

	line = append(line, '\n')
	if _, err := c.child.stdin.Write(line); err != nil {
		c.registry.take(nonce)
		c.mu.Unlock()
		return nil, fmt.Errorf("write command %s: %w", commandType, err)
	}
	c.mu.Unlock()

	select {
	case res := <-w.ch:
		return res.payload, res.err
	case <-ctx.Done():
		// Abandoned. Removing the entry makes the eventual frame a no-op.
		c.registry.take(nonce)
		return nil, ctx.Err()
	}
}

// Execute submits a typed command.
func (c *Compositor) Execute(ctx context.Context, cmd Command) ([]byte, error) {
	return c.ExecuteCommand(ctx, cmd.CommandType(), cmd)
}

// FinishCommands tells the child to finish processing and exit cleanly. It
// does not wait; pair it with WaitForDone.
func (c *Compositor) FinishCommands() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.gateLocked(); err != nil {
		return err
	}
	if _, err := io.WriteString(c.child.stdin, "EOF\n"); err != nil {
		return fmt.Errorf("write EOF: %w", err)
	}
	return nil
}

// WaitForDone blocks until the child exits. Clean exit resolves nil; a crash
// returns the captured stderr. Called after the child has already exited it
// fails immediately, so install it before FinishCommands.
func (c *Compositor) WaitForDone(ctx context.Context) error {
	c.mu.Lock()
	switch c.status {
	case StatusQuitWithoutError:
		c.mu.Unlock()
		return ErrAlreadyQuit
	case StatusQuitWithError:
		err := &QuitError{Stderr: c.quitStderr}
		c.mu.Unlock()
		return err
	}
	c.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.exited:
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.status == StatusQuitWithError {
			return &QuitError{Stderr: c.quitStderr}
		}
		return nil
	}
}

// Close performs an orderly shutdown: FinishCommands, then WaitForDone.
// A child that already exited cleanly is not an error.
func (c *Compositor) Close(ctx context.Context) error {
	if err := c.FinishCommands(); err != nil {
		if errors.Is(err, ErrAlreadyQuit) {
			return nil
		}
		return err
	}
	err := c.WaitForDone(ctx)
	if errors.Is(err, ErrAlreadyQuit) {
		return nil
	}
	return err
}

// PID returns the child's process identifier, or 0 if the host could not
// obtain one.
func (c *Compositor) PID() int {
	return c.child.pid
}

// Status returns the current lifecycle state.
func (c *Compositor) Status() RunningStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// gateLocked rejects submissions once the lifecycle has left Running.
// Must hold mu.
func (c *Compositor) gateLocked() error {
	switch c.status {
	case StatusQuitWithoutError:
		return ErrAlreadyQuit
	case StatusQuitWithError:
		return &QuitError{Stderr: c.quitStderr}
	}
	return nil
}

// readStdout feeds stdout chunks to the parser and dispatches every frame it
// completes. A protocol violation tears the lifecycle down.
func (c *Compositor) readStdout(done chan struct{}) {
	defer close(done)
	buf := make([]byte, 64*1024)
	for {
		n, err := c.child.stdout.Read(buf)
		if n > 0 {
			frames, perr := c.parser.Write(buf[:n])
			for _, f := range frames {
				c.dispatch(f)
			}
			if perr != nil {
				c.log.Error("protocol violation", zap.Error(perr))
				c.quit(false, c.crashText(perr.Error()))
				c.child.stdout.Close()
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// dispatch routes one frame: diagnostics to the log, everything else to the
// waiter registered under its nonce.
func (c *Compositor) dispatch(f Frame) {
	if f.Nonce == diagnosticNonce {
		c.log.Debug(string(f.Payload))
		return
	}

	w := c.registry.take(f.Nonce)
	if w == nil {
		// Duplicate or abandoned nonce; nothing to complete.
		return
	}
	if f.Status == FrameSuccess {
		w.resolve(f.Payload)
		return
	}
	w.reject(decodeErrorPayload(f.Payload))
}

// readStderr accumulates the child's stderr verbatim. It is only ever
// inspected when the child dies badly.
func (c *Compositor) readStderr(done chan struct{}) {
	defer close(done)
	buf := make([]byte, 32*1024)
	for {
		n, err := c.child.stderr.Read(buf)
		if n > 0 {
			c.stderrMu.Lock()
			c.stderrBuf.Write(buf[:n])
			c.stderrMu.Unlock()
		}
		if err != nil {
			return
		}
	}
}

// watchExit waits for both stream readers to hit EOF, reaps the child, and
// drives the lifecycle transition.
func (c *Compositor) watchExit(stdoutDone, stderrDone chan struct{}) {
	<-stdoutDone
	<-stderrDone
	code := c.child.wait()
	c.log.Debug("compositor exited", zap.Int("code", code))
	c.quit(code == 0, c.stderrText())
}

// quit performs the single lifecycle transition out of Running: record the
// final state, empty the registry, and fail every pending caller.
func (c *Compositor) quit(clean bool, stderrText string) {
	c.mu.Lock()
	if c.status != StatusRunning {
		c.mu.Unlock()
		return
	}

	var rejectErr error
	if clean {
		c.status = StatusQuitWithoutError
		rejectErr = ErrAlreadyQuit
	} else {
		c.status = StatusQuitWithError
		c.quitStderr = stderrText
		rejectErr = &QuitError{Stderr: stderrText}
	}
	waiters := c.registry.drain()
	c.mu.Unlock()

	for _, w := range waiters {
		w.reject(rejectErr)
	}
	close(c.exited)
	c.child.stdin.Close()
}

// stderrText snapshots the accumulated stderr stream.
func (c *Compositor) stderrText() string {
	c.stderrMu.Lock()
	defer c.stderrMu.Unlock()
	return c.stderrBuf.String()
}

// crashText prefixes a fatal supervisor-side error onto whatever the child
// had written to stderr.
func (c *Compositor) crashText(msg string) string {
	if stderr := c.stderrText(); stderr != "" {
		return msg + "\n" + stderr
	}
	return msg
}
