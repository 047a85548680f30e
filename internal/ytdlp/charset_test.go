package ytdlp

import "testing"

func TestDecodeOutput_UTF8Passthrough(t *testing.T) {
	got, err := DecodeOutput([]byte("Café del Mar — live\n"))
	if err != nil {
		t.Fatalf("DecodeOutput: %v", err)
	}
	if got != "Café del Mar — live\n" {
		t.Errorf("Unexpected output %q", got)
	}
}

func TestDecodeOutput_Windows1252(t *testing.T) {
	// "Café" encoded as windows-1252.
	got, err := DecodeOutput([]byte{'C', 'a', 'f', 0xe9})
	if err != nil {
		t.Fatalf("DecodeOutput: %v", err)
	}
	if got != "Café" {
		t.Errorf("Expected Café, got %q", got)
	}
}
