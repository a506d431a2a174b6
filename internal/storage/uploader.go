// Package storage provides blob uploads to S3-compatible object storage.
package storage

import "context"

// UploadParams describes a single blob upload.
type UploadParams struct {
	FileName    string
	ContentType string
	Body        []byte
}

// Uploader stores a named byte payload and returns a publicly reachable URL for it.
type Uploader interface {
	Upload(ctx context.Context, params UploadParams) (string, error)
}
