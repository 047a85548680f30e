package models

// DownloadRequest represents one /download call
type DownloadRequest struct {
	URL             string `query:"url" validate:"required,max=2048"`
	Format          string `query:"format" validate:"required"`
	CookiesFilePath string `query:"cookiesFilePath" validate:"max=4096"`
}

// VideoDetails is the metadata shown to the user before downloading
type VideoDetails struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
}

// ProgressEvent carries the percentage parsed from a yt-dlp progress line (0-100)
type ProgressEvent struct {
	Percent float64 `json:"percent"`
}

// CookiesUploadResponse is returned by /upload-cookies
type CookiesUploadResponse struct {
	CookiesFilePath string `json:"cookiesFilePath"`
}

// DetailsRequest represents one /video-details call
type DetailsRequest struct {
	URL             string `query:"url" validate:"required,max=2048"`
	CookiesFilePath string `query:"cookiesFilePath" validate:"max=4096"`
}
