// Package types holds the small shared value types used across the
// storage and tree layers, kept separate so neither layer imports the
// other just to share an identifier type.
package types

// PageID identifies a page/block on the page store. Negative values mean
// "not yet assigned a page" (newly created, in-memory-only node).
type PageID int64

// NewPage is the sentinel passed to PageStore.StoreNode to request
// allocation of a fresh page.
const NewPage PageID = -1

// PageIDSize is the on-disk width, in bytes, of a serialized PageID.
const PageIDSize = 8
