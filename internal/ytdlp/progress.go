package ytdlp

import (
	"regexp"
	"strconv"
)

// progressPattern matches the percentage yt-dlp prints on [download] lines, e.g. "12.5%".
var progressPattern = regexp.MustCompile(`(\d+\.\d+)%`)

// ParseProgress extracts the first percentage from a line of yt-dlp output.
func ParseProgress(line string) (float64, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if len(m) != 2 {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
