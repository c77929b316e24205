package storage

import "github.com/lbs-irtree/irtree/internal/types"

// Meta is the tree's single header record: root page, height, and
// entry count.
type Meta struct {
	Root         types.PageID
	Height       int
	Size         int32
	freelistPage types.PageID
}

func NewEmptyMeta() *Meta {
	return &Meta{Root: types.NewPage, freelistPage: types.NewPage}
}

func (m *Meta) GetFreelistPage() types.PageID { return m.freelistPage }
func (m *Meta) SetFreelistPage(p types.PageID) { m.freelistPage = p }
func (m *Meta) GetRoot() types.PageID          { return m.Root }
func (m *Meta) SetRoot(r types.PageID)         { m.Root = r }
func (m *Meta) GetHeight() int                 { return m.Height }
func (m *Meta) SetHeight(h int)                { m.Height = h }
func (m *Meta) GetSize() int32                 { return m.Size }
func (m *Meta) SetSize(s int32)                { m.Size = s }
