// Package dto provides data transfer object.
package dto

// UploadResult is returned to the uploader; URL is the same-origin
// path the blob can be fetched from.
type UploadResult struct {
	URL  string `json:"url"`
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// FileContent is a decoded blob ready to be written to a response.
type FileContent struct {
	Data        []byte
	ContentType string
	Disposition string
	Size        int64
}
