package models

// BlobRef is a handle to an object in external media storage. URL is the
// public retrieval address; Key is the opaque identifier used to delete the
// object. The service never holds the underlying bytes after an upload
// completes.
type BlobRef struct {
	URL string
	Key string
}
