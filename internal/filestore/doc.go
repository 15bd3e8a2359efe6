// Package filestore keeps the binary payloads that move through the
// connector: downloaded and exported Drive files, and local files waiting to
// be uploaded. Files are addressed by a random store id that is independent
// of Drive file IDs.
package filestore
