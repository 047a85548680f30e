package ytdlp

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeFakeTool writes an executable shell script standing in for yt-dlp.
func writeFakeTool(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake tool requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "yt-dlp")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write fake tool: %v", err)
	}
	return path
}

func TestExecRunner_Output(t *testing.T) {
	bin := writeFakeTool(t, "echo 'My Title'\necho 'https://img.example/t.jpg'\n")
	r := NewExecRunner(bin)

	out, err := r.Output(context.Background(), "--print", "title")
	if err != nil {
		t.Fatalf("Output: %v", err)
	}
	if out != "My Title\nhttps://img.example/t.jpg\n" {
		t.Errorf("Unexpected output %q", out)
	}
}

func TestExecRunner_OutputFailureIncludesStderr(t *testing.T) {
	bin := writeFakeTool(t, "echo 'ERROR: Unsupported URL' 1>&2\nexit 1\n")
	r := NewExecRunner(bin)

	_, err := r.Output(context.Background(), "x")
	if err == nil {
		t.Fatal("Expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "Unsupported URL") {
		t.Errorf("Expected stderr in error, got %v", err)
	}
}

func TestExecRunner_StartStreamsLinesAndExitCode(t *testing.T) {
	bin := writeFakeTool(t, `printf '[download]   1.0%%\r[download]  50.5%%\n'
echo 'some warning' 1>&2
echo '[download] 100.0%'
exit 3
`)
	r := NewExecRunner(bin)

	proc, err := r.Start(context.Background(), "url")
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	var lines []string
	for line := range proc.Lines() {
		lines = append(lines, line)
	}
	code, err := proc.Wait()
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if code != 3 {
		t.Errorf("Expected exit code 3, got %d", code)
	}
	want := []string{"[download]   1.0%", "[download]  50.5%", "[download] 100.0%"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d: %q", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExecRunner_StartMissingBinary(t *testing.T) {
	r := NewExecRunner(filepath.Join(t.TempDir(), "does-not-exist"))
	if _, err := r.Start(context.Background()); err == nil {
		t.Fatal("Expected error starting a missing binary")
	}
	if err := r.Available(); err == nil {
		t.Error("Expected Available to fail for a missing binary")
	}
}

func TestExecRunner_CommandLineQuotes(t *testing.T) {
	r := NewExecRunner("yt-dlp")
	got := r.CommandLine("-o", "downloads/My video.mp4", "https://x/?a=1&b=2")
	want := `yt-dlp -o 'downloads/My video.mp4' 'https://x/?a=1&b=2'`
	if got != want {
		t.Errorf("CommandLine() = %q, want %q", got, want)
	}
}
