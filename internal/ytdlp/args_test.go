package ytdlp

import (
	"slices"
	"testing"

	"github.com/Belphemur/MediaFetch/internal/models"
)

func TestMetadataArgs(t *testing.T) {
	got := MetadataArgs("https://example.com/watch?v=1", Options{ForceIPv4: true, CookiesPath: "/tmp/c.txt"})
	want := []string{
		"--force-ipv4", "--cookies", "/tmp/c.txt", "--no-playlist",
		"--print", "title", "--print", "thumbnail", "--", "https://example.com/watch?v=1",
	}
	if !slices.Equal(got, want) {
		t.Errorf("MetadataArgs() = %v, want %v", got, want)
	}
}

func TestDownloadArgs_MP4(t *testing.T) {
	got, err := DownloadArgs("https://example.com/v", models.FormatMP4, "downloads/My video.mp4", Options{})
	if err != nil {
		t.Fatalf("DownloadArgs: %v", err)
	}
	want := []string{
		"--no-playlist", "--newline",
		"-f", "bestvideo[ext=mp4]+bestaudio[ext=m4a]/mp4",
		"-o", "downloads/My video.mp4", "--", "https://example.com/v",
	}
	if !slices.Equal(got, want) {
		t.Errorf("DownloadArgs() = %v, want %v", got, want)
	}
}

func TestDownloadArgs_MP3WithCookies(t *testing.T) {
	got, err := DownloadArgs("https://example.com/v", models.FormatMP3, "out.mp3", Options{ForceIPv4: true, CookiesPath: "c.txt"})
	if err != nil {
		t.Fatalf("DownloadArgs: %v", err)
	}
	for _, flag := range []string{"-x", "--audio-format", "mp3", "--cookies", "--force-ipv4"} {
		if !slices.Contains(got, flag) {
			t.Errorf("Expected %q in %v", flag, got)
		}
	}
	if slices.Contains(got, "-f") {
		t.Errorf("Did not expect a format selector for mp3: %v", got)
	}
}

func TestDownloadArgs_NoCookiesFlagWhenDisabled(t *testing.T) {
	got, err := DownloadArgs("u", models.FormatMP4, "o.mp4", Options{ForceIPv4: true})
	if err != nil {
		t.Fatalf("DownloadArgs: %v", err)
	}
	if slices.Contains(got, "--cookies") {
		t.Errorf("Expected no --cookies flag, got %v", got)
	}
}

func TestDownloadArgs_UnknownFormat(t *testing.T) {
	if _, err := DownloadArgs("u", models.FormatUnknown, "o", Options{}); err == nil {
		t.Fatal("Expected error for unknown format")
	}
}
