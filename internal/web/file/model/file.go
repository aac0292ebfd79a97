// Package model contains the file blob models.
package model

import "github.com/Laisky/errors/v2"

// ErrNotFound indicates the requested blob does not exist.
var ErrNotFound = errors.New("file not found")

// ErrNoFile indicates an upload request without a file payload.
var ErrNoFile = errors.New("no file provided")

// Meta describes a stored blob without its payload.
type Meta struct {
	// Name original filename
	Name string `json:"name"`
	// Type MIME type, may be empty
	Type string `json:"type"`
	// Size byte length of the original payload
	Size int64 `json:"size"`
	// IsDownloadFile whether the blob is served as an attachment
	IsDownloadFile bool `json:"isDownloadFile"`
}

// FileBlob is the kv representation of a stored file, persisted as a
// single JSON value under the key `file:<id>`. The payload is base64
// encoded to fit a JSON-oriented kv store; blobs are immutable once
// written.
type FileBlob struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	// Data base64-encoded payload
	Data           string `json:"data"`
	IsDownloadFile bool   `json:"isDownloadFile"`
}
