package models

// Format is the output container requested by a client.
type Format int

const (
	FormatUnknown Format = iota
	FormatMP4            // best video + best audio merged into mp4
	FormatMP3            // audio extracted and converted to mp3
)

// String returns the query-string value of the format
func (f Format) String() string {
	switch f {
	case FormatMP4:
		return "mp4"
	case FormatMP3:
		return "mp3"
	default:
		return "unknown"
	}
}

// Extension returns the file extension of the format, without the dot
func (f Format) Extension() string {
	return f.String()
}

// ParseFormat converts a query-string value to a Format.
// Values are matched exactly, so "MP4" is FormatUnknown.
func ParseFormat(s string) Format {
	switch s {
	case "mp4":
		return FormatMP4
	case "mp3":
		return FormatMP3
	default:
		return FormatUnknown
	}
}

// MarshalJSON implements json.Marshaler interface
func (f Format) MarshalJSON() ([]byte, error) {
	return []byte(`"` + f.String() + `"`), nil
}
