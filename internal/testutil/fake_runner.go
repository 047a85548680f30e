package testutil

import (
	"context"
	"os"
	"strings"
	"sync"

	"github.com/Belphemur/MediaFetch/internal/ytdlp"
)

// ProcessScript describes what a fake download process prints and how it exits.
type ProcessScript struct {
	Lines    []string
	ExitCode int
	WaitErr  error

	// OnExit runs after the last line and before Wait returns. It receives the invocation args.
	OnExit func(args []string) error

	// Gate, when set, holds the process open until it is closed.
	Gate chan struct{}
}

// FakeRunner records invocations and replays canned results.
// This is a test helper and should not be used in production code.
type FakeRunner struct {
	mu    sync.Mutex
	calls [][]string

	// OutputFunc answers blocking invocations. Nil returns an empty string.
	OutputFunc func(ctx context.Context, args []string) (string, error)

	// Script drives processes returned by Start.
	Script ProcessScript

	// StartErr makes Start fail without running anything.
	StartErr error

	// OnStart, when set, sees the context and args of every Start call.
	OnStart func(ctx context.Context, args []string)
}

var _ ytdlp.Runner = (*FakeRunner)(nil)

func (f *FakeRunner) record(args []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string(nil), args...))
}

// Calls returns a copy of every recorded argument list.
func (f *FakeRunner) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many invocations were made.
func (f *FakeRunner) CallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *FakeRunner) Output(ctx context.Context, args ...string) (string, error) {
	f.record(args)
	if f.OutputFunc == nil {
		return "", nil
	}
	return f.OutputFunc(ctx, args)
}

func (f *FakeRunner) Start(ctx context.Context, args ...string) (ytdlp.Process, error) {
	f.record(args)
	if f.OnStart != nil {
		f.OnStart(ctx, args)
	}
	if f.StartErr != nil {
		return nil, f.StartErr
	}

	p := &FakeProcess{
		lines: make(chan string),
		done:  make(chan struct{}),
	}
	script := f.Script
	go func() {
		for _, line := range script.Lines {
			p.lines <- line
		}
		if script.Gate != nil {
			<-script.Gate
		}
		close(p.lines)

		p.exitCode, p.err = script.ExitCode, script.WaitErr
		if script.OnExit != nil {
			if err := script.OnExit(args); err != nil && p.err == nil {
				p.err = err
			}
		}
		close(p.done)
	}()
	return p, nil
}

func (f *FakeRunner) CommandLine(args ...string) string {
	return "yt-dlp " + strings.Join(args, " ")
}

// FakeProcess is the ytdlp.Process returned by FakeRunner.Start.
type FakeProcess struct {
	lines    chan string
	done     chan struct{}
	exitCode int
	err      error
}

func (p *FakeProcess) Lines() <-chan string {
	return p.lines
}

func (p *FakeProcess) Wait() (int, error) {
	<-p.done
	return p.exitCode, p.err
}

// OutputPathFromArgs returns the value following -o, or "".
func OutputPathFromArgs(args []string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-o" {
			return args[i+1]
		}
	}
	return ""
}

// WriteOutputFile returns an OnExit hook that creates the -o file with content.
func WriteOutputFile(content string) func(args []string) error {
	return func(args []string) error {
		return os.WriteFile(OutputPathFromArgs(args), []byte(content), 0o644)
	}
}
