package domain

import "time"

// Document records an uploaded supporting file. StoredName is the
// collision-safe key in the document store; OriginalName is the
// user-supplied filename and is untrusted. Immutable after creation.
type Document struct {
	ID            int64
	ApplicationID int64
	StoredName    string
	OriginalName  string
	UploadedAt    time.Time
}
