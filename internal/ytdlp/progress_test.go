package ytdlp

import "testing"

func TestParseProgress(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   float64
		wantOK bool
	}{
		{"bare percentage", "12.5%", 12.5, true},
		{"download line", "[download]  45.3% of  120.55MiB at    2.31MiB/s ETA 00:29", 45.3, true},
		{"complete", "[download] 100.0% of 3.00MiB in 00:00:01", 100.0, true},
		{"integer percentage is ignored", "[download] 100% of 3.00MiB", 0, false},
		{"no percentage", "[youtube] abc: Downloading webpage", 0, false},
		{"empty", "", 0, false},
		{"first match wins", "1.5% then 2.5%", 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseProgress(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ParseProgress(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseProgress(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}
