package storage

import "github.com/lbs-irtree/irtree/internal/types"

// PageStore is the pluggable page-oriented storage manager the R-tree
// engine is written against (spec §6). Node serialization is owned by
// the caller — PageStore only moves opaque bytes.
type PageStore interface {
	// StoreNode persists data under id, or allocates a fresh page when id
	// is types.NewPage, returning the page id the data now lives at.
	StoreNode(id types.PageID, data []byte) (types.PageID, error)
	// LoadNode returns the bytes previously stored under id, or
	// ErrInvalidPage if id is unknown.
	LoadNode(id types.PageID) ([]byte, error)
	// DeleteNode releases id for reuse.
	DeleteNode(id types.PageID) error
	// GetIO returns the cumulative number of physical I/O operations
	// performed by this store, for diagnostics.
	GetIO() int64
}
