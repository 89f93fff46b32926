package gdb

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ringscope/ringscope/internal/logging"
	"github.com/ringscope/ringscope/internal/target"
)

// Config holds the configuration for a GDB session.
type Config struct {
	// GDBPath is the path to the arm-none-eabi-gdb binary.
	// Default: "arm-none-eabi-gdb" (searches PATH)
	GDBPath string

	// OpenOCDHost is the hostname/IP where OpenOCD is running.
	// Default: "localhost"
	OpenOCDHost string

	// OpenOCDPort is the port where OpenOCD's GDB stub is listening.
	// Default: 3333
	OpenOCDPort int

	// CommandTimeout bounds synchronous commands (memory reads, counter
	// prints, stepping). Continue is not subject to it; the session
	// deadline governs resumes. Default: 30 seconds.
	CommandTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		GDBPath:        "arm-none-eabi-gdb",
		OpenOCDHost:    "localhost",
		OpenOCDPort:    3333,
		CommandTimeout: 30 * time.Second,
	}
}

// sentinel is echoed after every command so the driver knows where one
// command's output ends. The token never occurs in GDB's own output.
const sentinel = "<<<ringscope-sync>>>"

// Driver owns one interactive GDB process and implements target.Target over
// it. Construct with NewDriver, attach with Start, release with Close.
type Driver struct {
	config Config
	logger *zap.Logger
	parser *Parser

	cmd   *exec.Cmd
	stdin io.WriteCloser
	lines chan string

	// stderr accumulates GDB stderr for error reports.
	stderrMu sync.Mutex
	stderr   bytes.Buffer

	// transcript keeps the most recent console exchanges for verbose output.
	transcriptMu sync.Mutex
	transcript   []string

	exited chan struct{}
}

// transcriptDepth bounds the transcript; a monitoring session issues one
// continue per stop and would otherwise grow without limit.
const transcriptDepth = 32

// NewDriver creates a driver with the given configuration. The GDB process
// is not started until Start.
func NewDriver(config Config, logger *zap.Logger) *Driver {
	if config.GDBPath == "" {
		config.GDBPath = DefaultConfig().GDBPath
	}
	if config.CommandTimeout <= 0 {
		config.CommandTimeout = DefaultConfig().CommandTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		config: config,
		logger: logger,
		parser: NewParser(),
	}
}

// Start launches GDB and runs the attach sequence rendered from spec.
// A failed remote connection is reported as *GDBConnectionError.
func (d *Driver) Start(ctx context.Context, spec AttachSpec) error {
	if spec.OpenOCDHost == "" {
		spec.OpenOCDHost = d.config.OpenOCDHost
	}
	if spec.OpenOCDPort == 0 {
		spec.OpenOCDPort = d.config.OpenOCDPort
	}

	commands, err := renderAttach(spec)
	if err != nil {
		return err
	}

	// Pre-flight both ends before spawning a process: a missing binary or
	// unreachable stub produces a typed error with guidance instead of a
	// dead interactive session.
	if err := ValidateGDBPath(ctx, d.config.GDBPath); err != nil {
		return err
	}
	if err := ValidateOpenOCDConnection(ctx, spec.OpenOCDHost, spec.OpenOCDPort); err != nil {
		return err
	}

	d.logger.Info("starting GDB session",
		zap.String("gdb_path", d.config.GDBPath),
		zap.String("openocd", fmt.Sprintf("%s:%d", spec.OpenOCDHost, spec.OpenOCDPort)),
		zap.Int("breakpoints", len(spec.Breakpoints)),
	)

	// -nx: don't execute .gdbinit, -q: no banner. The session stays
	// interactive; commands arrive over stdin.
	cmd := exec.Command(d.config.GDBPath, "-nx", "-q")

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return &GDBExecutionError{Err: fmt.Errorf("failed to create stdin pipe: %w", err)}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return &GDBExecutionError{Err: fmt.Errorf("failed to create stdout pipe: %w", err)}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return &GDBExecutionError{Err: fmt.Errorf("failed to create stderr pipe: %w", err)}
	}

	if err := cmd.Start(); err != nil {
		return &GDBExecutionError{Err: fmt.Errorf("failed to start GDB: %w", err)}
	}

	d.cmd = cmd
	d.stdin = stdin
	d.lines = make(chan string, 256)
	d.exited = make(chan struct{})

	go d.readLines(stdout)
	go d.drainStderr(stderr)
	go func() {
		_ = cmd.Wait()
		close(d.exited)
	}()

	for _, c := range commands {
		step := describeAttachCommand(c)
		reportStep(spec.OnProgress, step, "in_progress", "")

		out, err := d.run(ctx, c)
		if err != nil {
			reportStep(spec.OnProgress, step, "failed", err.Error())
			d.Close()
			return err
		}
		if strings.HasPrefix(c, "target ") {
			if cerr := d.parser.DetectChannelError(out); cerr != nil {
				reportStep(spec.OnProgress, step, "failed", cerr.Error())
				d.Close()
				return &GDBConnectionError{
					Host: spec.OpenOCDHost,
					Port: spec.OpenOCDPort,
					Err:  cerr,
				}
			}
		}
		reportStep(spec.OnProgress, step, "success", "")
		d.logger.Debug("attach command complete",
			zap.String("command", c),
			zap.String("output", strings.TrimSpace(out)),
		)
	}

	return nil
}

// reportStep forwards one attach step to the callback. Unnamed steps
// (console setup) are not reported.
func reportStep(onProgress func(AttachStep), name, status, message string) {
	if onProgress == nil || name == "" {
		return
	}
	onProgress(AttachStep{Name: name, Status: status, Message: message})
}

// Close terminates the GDB process. Safe to call more than once.
func (d *Driver) Close() {
	if d.cmd == nil {
		return
	}
	// Polite quit first; GDB may already be gone.
	_, _ = io.WriteString(d.stdin, "quit\n")
	_ = d.stdin.Close()

	select {
	case <-d.exited:
	case <-time.After(2 * time.Second):
		_ = d.cmd.Process.Kill()
		<-d.exited
	}
	d.cmd = nil
}

// ReadUint implements target.MemoryReader via the examine command.
func (d *Driver) ReadUint(addr uint64, width int) (uint64, error) {
	var size string
	switch width {
	case 1:
		size = "b"
	case 2:
		size = "h"
	case 4:
		size = "w"
	default:
		return 0, &target.ReadError{Addr: addr, Width: width,
			Err: fmt.Errorf("unsupported read width %d", width)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.config.CommandTimeout)
	defer cancel()

	out, err := d.run(ctx, fmt.Sprintf("x/1u%s 0x%x", size, addr))
	if err != nil {
		return 0, &target.ReadError{Addr: addr, Width: width, Err: err}
	}
	if strings.Contains(out, "Cannot access memory") {
		return 0, &target.ReadError{Addr: addr, Width: width,
			Err: fmt.Errorf("cannot access memory")}
	}

	v, err := d.parser.ExamineValue(out)
	if err != nil {
		return 0, &target.ReadError{Addr: addr, Width: width, Err: err}
	}

	d.logger.Debug("memory read",
		zap.String("addr", fmt.Sprintf("0x%08x", addr)),
		zap.Int("width", width),
		zap.Uint64("value", v),
	)
	return v, nil
}

// Continue implements target.Target. It blocks until the next stop event,
// the target terminates, or ctx is cancelled (which interrupts the session).
func (d *Driver) Continue(ctx context.Context) (target.StopEvent, error) {
	out, err := d.run(ctx, "continue")
	if err != nil {
		if ctx.Err() != nil {
			return target.StopEvent{}, ctx.Err()
		}
		return target.StopEvent{}, &target.TargetLostError{Detail: "gdb session ended", Err: err}
	}
	return d.parser.ClassifyStop(out)
}

// StepOver implements target.Target by advancing one source line past the
// current stop.
func (d *Driver) StepOver(ctx context.Context) error {
	runCtx, cancel := context.WithTimeout(ctx, d.config.CommandTimeout)
	defer cancel()
	out, err := d.run(runCtx, "next")
	if err != nil {
		return err
	}
	return d.parser.DetectChannelError(out)
}

// ReadCounter implements target.Target. Hubris exports counters as
// task-scoped statics; absence of the symbol is a valid non-error outcome.
func (d *Driver) ReadCounter(ctx context.Context, task, counter string) (int64, bool, error) {
	runCtx, cancel := context.WithTimeout(ctx, d.config.CommandTimeout)
	defer cancel()

	out, err := d.run(runCtx, fmt.Sprintf("print/d %s::COUNTERS.%s.0", task, counter))
	if err != nil {
		return 0, false, err
	}
	return d.parser.CounterValue(out)
}

// Backtrace implements target.Target, best effort.
func (d *Driver) Backtrace(ctx context.Context, limit int) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, d.config.CommandTimeout)
	defer cancel()

	out, err := d.run(runCtx, fmt.Sprintf("backtrace %d", limit))
	if err != nil {
		return "", err
	}
	return d.parser.Backtrace(out, limit), nil
}

// run sends one command and collects its output up to the echo sentinel.
// Commands are processed by GDB strictly in order, so the sentinel echo
// queued behind a blocking command (continue) completes only after it.
func (d *Driver) run(ctx context.Context, command string) (string, error) {
	if d.cmd == nil {
		return "", &GDBExecutionError{Command: command, Err: fmt.Errorf("session not started")}
	}

	d.logger.Debug("gdb command", zap.String("command", command))

	if _, err := io.WriteString(d.stdin, command+"\necho \\n"+sentinel+"\\n\n"); err != nil {
		return "", &GDBExecutionError{Command: command, Stderr: d.stderrText(), Err: err}
	}

	var out strings.Builder
	for {
		select {
		case line, ok := <-d.lines:
			if !ok {
				// Process ended mid-command. Whatever was
				// collected still matters: it may name the
				// exit reason.
				return out.String(), &GDBExecutionError{
					Command: command,
					Stderr:  d.stderrText(),
					Err:     fmt.Errorf("gdb exited"),
				}
			}
			if strings.TrimSpace(line) == sentinel {
				logging.LogGDBCommand(command, out.String())
				d.record(command, out.String())
				return out.String(), nil
			}
			out.WriteString(line)
			out.WriteByte('\n')
		case <-ctx.Done():
			// Interrupt the target so a blocked continue returns,
			// then give up on the session.
			if d.cmd != nil && d.cmd.Process != nil {
				_ = d.cmd.Process.Kill()
			}
			if ctx.Err() == context.DeadlineExceeded {
				return out.String(), &TimeoutError{
					Command: command,
					Timeout: d.config.CommandTimeout.String(),
				}
			}
			return out.String(), ctx.Err()
		}
	}
}

func (d *Driver) readLines(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		// The console prompt may prefix output on the same line.
		line = strings.TrimPrefix(line, "(gdb) ")
		d.lines <- line
	}
	close(d.lines)
}

func (d *Driver) drainStderr(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		d.stderrMu.Lock()
		d.stderr.WriteString(scanner.Text())
		d.stderr.WriteByte('\n')
		d.stderrMu.Unlock()
		d.logger.Debug("gdb stderr", zap.String("line", scanner.Text()))
	}
}

func (d *Driver) stderrText() string {
	d.stderrMu.Lock()
	defer d.stderrMu.Unlock()
	return d.stderr.String()
}

// record appends one command round trip to the transcript, evicting the
// oldest exchange once the depth limit is reached.
func (d *Driver) record(command, output string) {
	d.transcriptMu.Lock()
	defer d.transcriptMu.Unlock()
	entry := "(gdb) " + command
	if trimmed := strings.TrimRight(output, "\n"); trimmed != "" {
		entry += "\n" + trimmed
	}
	d.transcript = append(d.transcript, entry)
	if len(d.transcript) > transcriptDepth {
		d.transcript = d.transcript[len(d.transcript)-transcriptDepth:]
	}
}

// Transcript returns the most recent console exchanges, oldest first.
func (d *Driver) Transcript() string {
	d.transcriptMu.Lock()
	defer d.transcriptMu.Unlock()
	return strings.Join(d.transcript, "\n")
}
