package testutil

import (
	"fmt"
	"strings"
)

// NetscapeCookieFile renders a cookie file in the format yt-dlp reads with --cookies.
// Each name gets a dummy value on the .youtube.com domain.
func NetscapeCookieFile(names ...string) string {
	var b strings.Builder
	b.WriteString("# Netscape HTTP Cookie File\n")
	for i, name := range names {
		fmt.Fprintf(&b, ".youtube.com\tTRUE\t/\tTRUE\t%d\t%s\tvalue%d\n", 1900000000+i, name, i)
	}
	return b.String()
}
