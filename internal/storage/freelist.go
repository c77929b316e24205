package storage

import (
	"sync"

	"github.com/lbs-irtree/irtree/internal/types"
)

const metaPage types.PageID = 0

// Freelist hands out fresh page ids, reusing ids released by deletes
// before growing the file, adapted from lib/meta/freelist.go.
type Freelist struct {
	mu            sync.Mutex
	maxPage       types.PageID
	releasedPages []types.PageID
}

func NewFreelist() *Freelist {
	return &Freelist{maxPage: metaPage}
}

func (fr *Freelist) SetMaxPage(p types.PageID) { fr.maxPage = p }

func (fr *Freelist) SetReleasedPages(pages []types.PageID) { fr.releasedPages = pages }

func (fr *Freelist) ReleasePage(page types.PageID) {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	fr.releasedPages = append(fr.releasedPages, page)
}

func (fr *Freelist) MaxPage() types.PageID { return fr.maxPage }

func (fr *Freelist) ReleasedPages() []types.PageID { return fr.releasedPages }

// GetNextPage returns a released page id if one is available, otherwise
// grows the file by one page.
func (fr *Freelist) GetNextPage() types.PageID {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if n := len(fr.releasedPages); n != 0 {
		id := fr.releasedPages[n-1]
		fr.releasedPages = fr.releasedPages[:n-1]
		return id
	}
	fr.maxPage++
	return fr.maxPage
}
