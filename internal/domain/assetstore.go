package domain

import "context"

// FileUpload is the raw file descriptor handed over by the delivery layer,
// independent of whether it arrived as multipart form data or anything else.
type FileUpload struct {
	Filename    string
	Content     []byte
	ContentType string
}

// AssetStore persists path-addressed binary blobs under a content root.
// It has no notion of entity ownership; coordinators decide which file is
// current for a given row.
type AssetStore interface {
	// Validate checks content, extension and size without touching disk.
	// Rejections are ValidationErrors.
	Validate(file *FileUpload) error
	// Save writes the file under a collision-free generated name and
	// returns the path to store on the owning entity.
	Save(ctx context.Context, file *FileUpload) (string, error)
	// Delete removes a previously saved file. Best-effort and idempotent:
	// a missing file is not an error, failures are logged and swallowed.
	Delete(path string)
}
