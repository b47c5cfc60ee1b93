// Package blob stores uploaded media objects, keyed by an opaque
// reference string decoupled from the database record.
package blob

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store is the write-once-then-read media object store.
type Store interface {
	Put(ctx context.Context, ref string, data []byte) error
	Delete(ctx context.Context, ref string) error
}

// NewStorageKey returns a fresh object key for an upload, grouped by date.
func NewStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("videos/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}
