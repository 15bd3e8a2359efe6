package instrumentation

import (
	"net/url"
	"strings"
)

// Label values must come from small fixed sets. Drive paths carry file,
// comment and permission IDs, so they are reduced to the collection they
// address before they reach a metric or span name.

// Transfer kinds are recorded in the method label of Drive metrics and
// spans, next to the HTTP verbs of plain requests.
const (
	TransferDownload   = "DOWNLOAD"
	TransferExport     = "EXPORT"
	TransferExportLink = "EXPORT_LINK"
	TransferUpload     = "UPLOAD"
)

// ResourceOther labels paths outside the known Drive collections
const ResourceOther = "other"

var driveCollections = map[string]bool{
	"files": true, "comments": true, "replies": true, "permissions": true,
	"revisions": true, "changes": true, "channels": true, "drives": true,
}

// DriveResource returns the innermost Drive collection a request path or
// absolute URL addresses.
//
// Example:
//
//	DriveResource("/files/1AbC/comments/c1/replies")           // "replies"
//	DriveResource("https://host/drive/v3/files/1AbC?alt=media") // "files"
//	DriveResource("/about")                                    // "other"
func DriveResource(path string) string {
	if strings.Contains(path, "://") {
		if u, err := url.Parse(path); err == nil {
			path = u.Path
		}
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	resource := ResourceOther
	for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
		if driveCollections[seg] {
			resource = seg
		}
	}
	return resource
}
