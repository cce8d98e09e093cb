package models

import "io"

// UploadRequest carries a pending file through the upload call chain.
type UploadRequest struct {
	DocumentID string
	FileName   string
	MimeType   string
	Comment    string
	Content    io.Reader
}
