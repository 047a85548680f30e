// Package ytdlp wraps the yt-dlp command line tool: argument construction,
// blocking metadata invocations, and long-running download processes whose
// stdout is exposed line by line.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/alessio/shellescape"
	"github.com/rs/zerolog"

	"github.com/Belphemur/MediaFetch/internal/config"
)

// maxLineLength bounds a single line read from yt-dlp output.
const maxLineLength = 1024 * 1024

// Runner starts yt-dlp invocations.
type Runner interface {
	// Output runs yt-dlp to completion and returns its stdout decoded to UTF-8.
	// A non-zero exit is returned as an error that includes stderr.
	Output(ctx context.Context, args ...string) (string, error)

	// Start launches a long-running yt-dlp process.
	Start(ctx context.Context, args ...string) (Process, error)

	// CommandLine renders args as a shell-quoted command line for logs.
	CommandLine(args ...string) string
}

// Process is a running yt-dlp invocation.
type Process interface {
	// Lines yields stdout lines once, in order, and is closed at EOF.
	// It must be drained before Wait returns.
	Lines() <-chan string

	// Wait blocks until the process exits and returns its exit code.
	// err is set only when the process could not report an exit code.
	Wait() (exitCode int, err error)
}

// ExecRunner runs the real binary through os/exec.
type ExecRunner struct {
	binary string
	logger zerolog.Logger
}

// NewExecRunner creates a runner for the given binary name or path.
func NewExecRunner(binary string) *ExecRunner {
	if binary == "" {
		binary = config.DefaultYtdlpBinary
	}
	logger := config.GetLogger()
	return &ExecRunner{
		binary: binary,
		logger: logger.With().Str("component", "ytdlp").Logger(),
	}
}

// Available reports whether the binary can be resolved.
func (r *ExecRunner) Available() error {
	_, err := exec.LookPath(r.binary)
	return err
}

func (r *ExecRunner) CommandLine(args ...string) string {
	return shellescape.QuoteCommand(append([]string{r.binary}, args...))
}

func (r *ExecRunner) command(ctx context.Context, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Env = append(os.Environ(), "PYTHONUNBUFFERED=1", "PYTHONIOENCODING=UTF-8")
	return cmd
}

func (r *ExecRunner) Output(ctx context.Context, args ...string) (string, error) {
	r.logger.Debug().Str("command", r.CommandLine(args...)).Msg("Running yt-dlp")

	var stderr bytes.Buffer
	cmd := r.command(ctx, args)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}

	return DecodeOutput(out)
}

func (r *ExecRunner) Start(ctx context.Context, args ...string) (Process, error) {
	cmd := r.command(ctx, args)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start %s: %w", r.binary, err)
	}

	p := &execProcess{
		lines: make(chan string),
		done:  make(chan struct{}),
	}

	var readers sync.WaitGroup
	readers.Add(2)
	go func() {
		defer readers.Done()
		defer close(p.lines)
		scanLines(stdout, func(line string) {
			p.lines <- line
		})
	}()
	go func() {
		defer readers.Done()
		scanLines(stderr, func(line string) {
			r.logger.Warn().Str("stderr", line).Msg("yt-dlp")
		})
	}()

	// cmd.Wait closes the pipes, so it only runs once both readers hit EOF.
	go func() {
		readers.Wait()
		p.exitCode, p.err = exitStatus(cmd.Wait())
		close(p.done)
	}()

	return p, nil
}

type execProcess struct {
	lines    chan string
	done     chan struct{}
	exitCode int
	err      error
}

func (p *execProcess) Lines() <-chan string {
	return p.lines
}

func (p *execProcess) Wait() (int, error) {
	<-p.done
	return p.exitCode, p.err
}

func exitStatus(err error) (int, error) {
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		if code < 0 {
			return code, err
		}
		return code, nil
	}
	return -1, err
}

// scanLines calls fn for every line of r. Carriage returns also end a line
// because yt-dlp redraws its progress bar with \r when not given --newline.
func scanLines(r io.Reader, fn func(string)) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	sc.Split(splitOnCRorLF)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fn(line)
	}
	// Keep draining so the child never blocks on a full pipe.
	_, _ = io.Copy(io.Discard, r)
}

func splitOnCRorLF(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}
