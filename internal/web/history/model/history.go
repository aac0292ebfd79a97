// Package model contains the history record models.
package model

// FileRef is a file attached to a history item, pointing at a blob
// served by the file store.
type FileRef struct {
	// Name original filename
	Name string `json:"name"`
	// Type coarse media kind ('image', 'video', 'audio', 'file')
	Type string `json:"type"`
	// URL same-origin path of the blob
	URL string `json:"url"`
	// Size byte length, optional
	Size int64 `json:"size,omitempty"`
}

// HistoryItem is one content post, persisted as a single JSON value
// under the key `history:<id>`.
type HistoryItem struct {
	// ID unique identifier, `hist_<epoch-ms>_<random-suffix>`, immutable
	ID string `json:"id"`
	// Title title of the post, required
	Title string `json:"title"`
	// URL external link of the post
	URL string `json:"url,omitempty"`
	// Description short summary
	Description string `json:"description,omitempty"`
	// Category comma-joined category names
	Category string `json:"category,omitempty"`
	// Tags tags of the post
	Tags []string `json:"tags"`
	// Content markdown body
	Content string `json:"content,omitempty"`
	// ContentHTML rendered markdown, only populated on demand
	ContentHTML string `json:"content_html,omitempty"`
	// Attachments attachment URLs
	Attachments []string `json:"attachments"`
	// Files attached file blobs
	Files []FileRef `json:"files"`
	// DownloadFile standalone download URL
	DownloadFile string `json:"downloadFile,omitempty"`
	// Timestamp caller-facing epoch-ms, the sole sort and filter key
	Timestamp int64 `json:"timestamp"`
	// CreatedAt epoch-ms stamped on create, immutable
	CreatedAt int64 `json:"created_at"`
	// UpdatedAt epoch-ms stamped on every write
	UpdatedAt int64 `json:"updated_at"`
	// Author uploader identity, defaults to "anonymous"
	Author string `json:"author,omitempty"`
}
