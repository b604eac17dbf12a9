package domain

import (
	"context"
	"io"
	"time"
)

// BlobWriter uploads objects to blob storage.
type BlobWriter interface {
	// Put uploads data under the given path with the given content type.
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}

// Archiver exports aged records to blob storage before they are deleted from
// the primary store. Deletion is a separate, explicit step so an archive can
// be verified first.
type Archiver interface {
	// ArchiveOpportunities uploads all opportunities detected before the
	// cutoff as JSONL and returns the number of records archived.
	ArchiveOpportunities(ctx context.Context, before time.Time) (int64, error)

	// ArchiveQuotes uploads all quotes observed before the cutoff as JSONL
	// and returns the number of records archived.
	ArchiveQuotes(ctx context.Context, before time.Time) (int64, error)
}
