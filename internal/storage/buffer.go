package storage

import (
	"go.uber.org/zap"

	"github.com/lbs-irtree/irtree/internal/concurrent"
)

type buffer struct {
	disk *DiskManager
	log  *LogManager
	sugar *zap.SugaredLogger

	contents *Page
	blockID  BlockID

	pins    int
	lsn     int
	isDirty bool
}

func newBuffer(disk *DiskManager, log *LogManager, sugar *zap.SugaredLogger) *buffer {
	return &buffer{
		disk:     disk,
		log:      log,
		sugar:    sugar,
		contents: NewPage(disk.BlockSize()),
		lsn:      -1,
	}
}

func (b *buffer) getContents() *Page {
	return b.contents
}

func (b *buffer) getBlockID() BlockID {
	return b.blockID
}

func (b *buffer) isPinned() bool {
	return b.pins > 0
}

// assignToBlock flushes the currently held page if dirty, then loads
// blockID's contents into this buffer.
func (b *buffer) assignToBlock(blockID BlockID, bg concurrent.WorkQueue) error {
	if b.isDirty && (b.blockID != BlockID{}) {
		if err := b.flush(); err != nil {
			b.sugar.Errorw("flush buffer before reassign", "error", err)
			return err
		}
	}

	b.blockID = blockID
	if err := b.disk.Read(blockID, b.contents); err != nil {
		return err
	}
	b.pins = 0
	return nil
}

func (b *buffer) flush() error {
	if (b.blockID == BlockID{}) {
		return nil
	}
	if err := b.disk.Write(b.blockID, b.contents); err != nil {
		return err
	}
	if b.log != nil {
		if err := b.log.Flush(b.lsn); err != nil {
			return err
		}
	}
	return nil
}

func (b *buffer) incrementPin() {
	b.pins++
}

func (b *buffer) getPinCount() int {
	return b.pins
}

func (b *buffer) decrementPin() {
	b.pins--
}

func (b *buffer) setPin(n int) {
	b.pins = n
}

func (b *buffer) setDirty(dirty bool) {
	b.isDirty = dirty
}

func (b *buffer) getIsDirty() bool {
	return b.isDirty
}

func (b *buffer) resetMemory() {
	b.contents = NewPage(b.disk.BlockSize())
}

func (b *buffer) setModified(lsn int) {
	if lsn >= 0 {
		b.lsn = lsn
	}
	b.isDirty = true
}
