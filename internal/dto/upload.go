package dto

import "io"

// UploadFile is a multipart file handed from the handler to the processing
// service. Content is seekable so a deck can be forwarded and then stored.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}
