package cookies

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Belphemur/MediaFetch/internal/config"
)

const loggedInCookies = "# Netscape HTTP Cookie File\n.youtube.com\tTRUE\t/\tTRUE\t0\tLOGIN_INFO\tabc\n"

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestUploadProvisioner_ReturnsRequestedPath(t *testing.T) {
	p := UploadProvisioner{}
	cred := p.Resolve("/tmp/uploads/x.txt")
	if !cred.Enabled() || cred.Path != "/tmp/uploads/x.txt" {
		t.Errorf("Unexpected credential %+v", cred)
	}
	if !p.Required() {
		t.Error("Expected upload provisioner to require a path")
	}
	if p.Resolve("").Enabled() {
		t.Error("Expected empty path to be disabled")
	}
}

func TestFixedFileProvisioner(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		path    string
		markers []string
		enabled bool
	}{
		{"logged in", writeFile(t, dir, "ok.txt", loggedInCookies), nil, true},
		{"secure marker", writeFile(t, dir, "secure.txt", ".youtube.com\t__Secure-3PSID\tx\n"), nil, true},
		{"no marker", writeFile(t, dir, "anon.txt", ".youtube.com\tVISITOR_INFO1_LIVE\tx\n"), nil, false},
		{"missing file", filepath.Join(dir, "absent.txt"), nil, false},
		{"custom marker", writeFile(t, dir, "custom.txt", "SESSION=1"), []string{"SESSION"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewFixedFileProvisioner(tt.path, tt.markers)
			cred := p.Resolve("/ignored/by/fixed/mode.txt")
			if cred.Enabled() != tt.enabled {
				t.Fatalf("Enabled() = %v, want %v", cred.Enabled(), tt.enabled)
			}
			if tt.enabled && cred.Path != tt.path {
				t.Errorf("Path = %q, want %q", cred.Path, tt.path)
			}
			if p.Required() {
				t.Error("Expected fixed provisioner not to require a path")
			}
		})
	}
}

func TestFixedFileProvisioner_RereadsFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "cookies.txt", "anonymous")
	p := NewFixedFileProvisioner(path, nil)

	if p.Resolve("").Enabled() {
		t.Fatal("Expected markerless file to be disabled")
	}
	writeFile(t, dir, "cookies.txt", loggedInCookies)
	if !p.Resolve("").Enabled() {
		t.Error("Expected replaced file to be picked up")
	}
}

func TestNew_SelectsByMode(t *testing.T) {
	cfg := &config.Config{}
	cfg.Cookies.Mode = config.CookieModeUpload
	if _, ok := New(cfg).(UploadProvisioner); !ok {
		t.Error("Expected UploadProvisioner for upload mode")
	}

	cfg.Cookies.Mode = config.CookieModeFixed
	cfg.Cookies.File = "cookies.txt"
	p, ok := New(cfg).(*FixedFileProvisioner)
	if !ok {
		t.Fatal("Expected FixedFileProvisioner for fixed mode")
	}
	if p.Path != "cookies.txt" || len(p.Markers) == 0 {
		t.Errorf("Unexpected provisioner %+v", p)
	}
}
