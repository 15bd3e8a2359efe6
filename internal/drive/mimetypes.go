package drive

import "strings"

const (
	// FolderMimeType is the MIME type for Google Drive folders
	FolderMimeType = "application/vnd.google-apps.folder"

	// MimeTypePDF is the default export format
	MimeTypePDF = "application/pdf"
)

// exportExtensions maps the export formats Drive offers to file extensions
var exportExtensions = map[string]string{
	MimeTypePDF:                 ".pdf",
	"text/plain":                ".txt",
	"text/html":                 ".html",
	"text/csv":                  ".csv",
	"text/tab-separated-values": ".tsv",
	"text/markdown":             ".md",
	"text/x-markdown":           ".md",
	"application/rtf":           ".rtf",
	"application/zip":           ".zip",
	"application/epub+zip":      ".epub",
	"image/jpeg":                ".jpg",
	"image/png":                 ".png",
	"image/svg+xml":             ".svg",

	"application/vnd.oasis.opendocument.text":         ".odt",
	"application/vnd.oasis.opendocument.spreadsheet":  ".ods",
	"application/vnd.oasis.opendocument.presentation": ".odp",
	"application/vnd.google-apps.script+json":         ".json",

	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   ".docx",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         ".xlsx",
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": ".pptx",
}

// ExtensionForMimeType returns the file extension for an export format, or
// "" when the format is unknown
func ExtensionForMimeType(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = mimeType[:i]
	}
	return exportExtensions[strings.ToLower(strings.TrimSpace(mimeType))]
}

// withExtension appends the extension of mimeType unless name already ends
// with it
func withExtension(name, mimeType string) string {
	ext := ExtensionForMimeType(mimeType)
	if ext == "" || strings.HasSuffix(strings.ToLower(name), ext) {
		return name
	}
	return name + ext
}
