package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lbs-irtree/irtree/internal/types"
)

const (
	dataFileName = "irtree.dat"
	logFileName  = "irtree.log"
	metaBlockNum = 0
)

// DiskStore is the disk-backed PageStore, wiring DiskManager,
// BufferPoolManager, Freelist, and Meta together behind the
// opaque-bytes PageStore interface so the rtree package owns node
// framing instead of the storage layer.
type DiskStore struct {
	disk     *DiskManager
	bpm      *BufferPoolManager
	log      *LogManager
	freelist *Freelist
	meta     *Meta
	sugar    *zap.SugaredLogger
}

// NewDiskStore opens (or creates) an IR-tree database rooted at dbDir.
func NewDiskStore(dbDir string, pageSize, poolSize int, sugar *zap.SugaredLogger) (*DiskStore, error) {
	disk, err := NewDiskManager(dbDir, pageSize)
	if err != nil {
		return nil, err
	}
	log, err := NewLogManager(disk, logFileName)
	if err != nil {
		return nil, err
	}
	bpm := NewBufferPoolManager(poolSize, disk, log, sugar)

	ds := &DiskStore{disk: disk, bpm: bpm, log: log, sugar: sugar}

	if disk.IsNew() {
		ds.freelist = NewFreelist()
		ds.meta = NewEmptyMeta()
		ds.meta.SetFreelistPage(ds.freelist.GetNextPage())
		ds.meta.SetRoot(types.NewPage)
		if err := ds.writeFreelist(); err != nil {
			return nil, err
		}
		if err := ds.writeMeta(); err != nil {
			return nil, err
		}
	} else {
		if err := ds.readMeta(); err != nil {
			return nil, err
		}
		if err := ds.readFreelist(); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func (ds *DiskStore) blockID(id types.PageID) BlockID {
	return NewBlockID(dataFileName, int(id))
}

// StoreNode persists data under id, allocating a fresh page id from the
// freelist when id is types.NewPage. Pages are written directly through
// the disk manager (a sparse write past current EOF is valid) and the
// buffer pool's cached copy, if any, is dropped so later loads refetch
// the new contents.
func (ds *DiskStore) StoreNode(id types.PageID, data []byte) (types.PageID, error) {
	if id == types.NewPage {
		id = ds.freelist.GetNextPage()
	}

	block := ds.blockID(id)
	page := NewPage(ds.disk.BlockSize())
	if _, err := page.PutBytes(0, data); err != nil {
		return types.NewPage, fmt.Errorf("storage: serialize node %d: %w", id, err)
	}
	if err := ds.disk.Write(block, page); err != nil {
		return types.NewPage, err
	}
	ds.bpm.DeletePage(block)
	return id, nil
}

// LoadNode returns the raw bytes stored under id.
func (ds *DiskStore) LoadNode(id types.PageID) ([]byte, error) {
	block := ds.blockID(id)
	page, err := ds.bpm.FetchPage(block)
	if err != nil {
		return nil, fmt.Errorf("storage: load node %d: %w", id, err)
	}
	data := page.GetBytes(0)
	ds.bpm.UnpinPage(block, false)
	return data, nil
}

// DeleteNode releases id's page back to the freelist.
func (ds *DiskStore) DeleteNode(id types.PageID) error {
	ds.bpm.DeletePage(ds.blockID(id))
	ds.freelist.ReleasePage(id)
	return nil
}

func (ds *DiskStore) GetIO() int64 {
	return ds.bpm.GetIO()
}

func (ds *DiskStore) Meta() *Meta {
	return ds.meta
}

func (ds *DiskStore) writeMeta() error {
	page := NewPage(ds.disk.BlockSize())
	page.PutInt(0, int32(ds.meta.GetRoot()))
	page.PutInt(4, int32(ds.meta.GetHeight()))
	page.PutInt(8, ds.meta.GetSize())
	page.PutInt(12, int32(ds.meta.GetFreelistPage()))
	return ds.disk.Write(NewBlockID(dataFileName, metaBlockNum), page)
}

func (ds *DiskStore) readMeta() error {
	page := NewPage(ds.disk.BlockSize())
	if err := ds.disk.Read(NewBlockID(dataFileName, metaBlockNum), page); err != nil {
		return err
	}
	m := NewEmptyMeta()
	m.SetRoot(types.PageID(page.GetInt(0)))
	m.SetHeight(int(page.GetInt(4)))
	m.SetSize(page.GetInt(8))
	m.SetFreelistPage(types.PageID(page.GetInt(12)))
	ds.meta = m
	return nil
}

func (ds *DiskStore) writeFreelist() error {
	page := NewPage(ds.disk.BlockSize())
	page.PutInt(0, int32(ds.freelist.MaxPage()))
	released := ds.freelist.ReleasedPages()
	page.PutInt(4, int32(len(released)))
	off := 8
	for _, p := range released {
		page.PutInt(off, int32(p))
		off += 4
	}
	return ds.disk.Write(NewBlockID(dataFileName, int(ds.meta.GetFreelistPage())), page)
}

func (ds *DiskStore) readFreelist() error {
	page := NewPage(ds.disk.BlockSize())
	if err := ds.disk.Read(NewBlockID(dataFileName, int(ds.meta.GetFreelistPage())), page); err != nil {
		return err
	}
	fr := NewFreelist()
	fr.SetMaxPage(types.PageID(page.GetInt(0)))
	n := int(page.GetInt(4))
	released := make([]types.PageID, n)
	off := 8
	for i := 0; i < n; i++ {
		released[i] = types.PageID(page.GetInt(off))
		off += 4
	}
	fr.SetReleasedPages(released)
	ds.freelist = fr
	return nil
}

// SaveMeta updates and persists root/height/size on the meta page.
func (ds *DiskStore) SaveMeta(root types.PageID, height int, size int32) error {
	ds.meta.SetRoot(root)
	ds.meta.SetHeight(height)
	ds.meta.SetSize(size)
	return ds.writeMeta()
}

// Close flushes all buffered pages and closes the underlying file
// handles.
func (ds *DiskStore) Close() error {
	if err := ds.writeMeta(); err != nil {
		return err
	}
	if err := ds.writeFreelist(); err != nil {
		return err
	}
	if err := ds.bpm.FlushAll(); err != nil {
		return err
	}
	ds.bpm.Close()
	return ds.disk.Close()
}
