package storage

import "iter"

// LogIterator walks log records from most recently written to oldest.
type LogIterator struct {
	disk       *DiskManager
	blockID    BlockID
	page       *Page
	currentPos int
	blockSize  int
	err        error
}

func NewLogIterator(disk *DiskManager, blockID BlockID) (*LogIterator, error) {
	page := NewPageFromBytes(make([]byte, disk.BlockSize()))
	if err := disk.Read(blockID, page); err != nil {
		return nil, err
	}

	lit := &LogIterator{
		disk:      disk,
		blockID:   blockID,
		page:      page,
		blockSize: int(page.GetInt(0)),
	}
	lit.currentPos = lit.blockSize
	return lit, nil
}

func (lit *LogIterator) moveToBlock(blockID BlockID) error {
	if err := lit.disk.Read(blockID, lit.page); err != nil {
		return err
	}
	lit.blockSize = int(lit.page.GetInt(0))
	lit.currentPos = lit.blockSize
	return nil
}

// IterateLog yields each record from newest to oldest, crossing block
// boundaries as needed.
func (lit *LogIterator) IterateLog() iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		for lit.blockID.BlockNum() >= 0 {
			if lit.currentPos >= lit.disk.BlockSize() {
				prev := NewBlockID(lit.blockID.Filename(), lit.blockID.BlockNum()-1)
				if prev.BlockNum() < 0 {
					break
				}
				lit.blockID = prev
				if err := lit.moveToBlock(prev); err != nil {
					lit.err = err
					break
				}
			}

			record := lit.page.GetBytes(lit.currentPos)
			lit.currentPos += 4 + len(record)

			if !yield(record) {
				return
			}
		}
	}
}

func (lit *LogIterator) Err() error {
	return lit.err
}
