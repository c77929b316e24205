package storage

import "errors"

// ErrInvalidPage mirrors spec's InvalidPageException: the page store was
// asked for a page id it doesn't know about.
var ErrInvalidPage = errors.New("storage: invalid page")

// ErrIO wraps unexpected I/O failures surfaced from the underlying disk.
var ErrIO = errors.New("storage: io failure")
