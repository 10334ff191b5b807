package domain

// AllowedExtensions maps accepted upload extensions (lowercase, no dot) to
// their canonical content types.
var AllowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
	"pdf":  "application/pdf",
}

// AllowedContentTypes is the set of content types accepted after magic-byte
// detection. Sniffing never reports image/tiff reliably, so octet-stream is
// tolerated for tiff uploads.
var AllowedContentTypes = map[string]struct{}{
	"image/jpeg":               {},
	"image/png":                {},
	"image/gif":                {},
	"image/bmp":                {},
	"image/tiff":               {},
	"application/pdf":          {},
	"application/octet-stream": {},
}
