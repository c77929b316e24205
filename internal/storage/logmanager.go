package storage

import "fmt"

// LogManager is a minimal write-ahead log the buffer pool consults before
// flushing a dirty page, giving the buffer pool a durability ordering
// primitive without implementing full ARIES-style recovery.
type LogManager struct {
	disk    *DiskManager
	logFile string
	page    *Page

	currentBlock BlockID
	latestLSN    int
	lastSaved    int
}

func NewLogManager(disk *DiskManager, logFile string) (*LogManager, error) {
	page := NewPageFromBytes(make([]byte, disk.BlockSize()))
	n, err := disk.BlockLength(logFile)
	if err != nil {
		return nil, err
	}

	lm := &LogManager{disk: disk, logFile: logFile, page: page}
	if n == 0 {
		block, err := lm.appendBlock()
		if err != nil {
			return nil, err
		}
		lm.currentBlock = block
	} else {
		lm.currentBlock = NewBlockID(logFile, n-1)
		if err := disk.Read(lm.currentBlock, page); err != nil {
			return nil, err
		}
	}
	return lm, nil
}

// Flush writes the log page to disk if lsn hasn't been persisted yet.
func (lm *LogManager) Flush(lsn int) error {
	if lsn > lm.lastSaved {
		return lm.FlushNow()
	}
	return nil
}

// FlushNow unconditionally writes the log page to disk.
func (lm *LogManager) FlushNow() error {
	if err := lm.disk.Write(lm.currentBlock, lm.page); err != nil {
		return err
	}
	lm.lastSaved = lm.latestLSN
	return nil
}

func (lm *LogManager) appendBlock() (BlockID, error) {
	block, err := lm.disk.Append(lm.logFile)
	if err != nil {
		return BlockID{}, err
	}
	lm.page.PutInt(0, int32(lm.disk.BlockSize()))
	if err := lm.disk.Write(block, lm.page); err != nil {
		return BlockID{}, err
	}
	return block, nil
}

// Append writes a log record, returning its LSN.
func (lm *LogManager) Append(record []byte) (int, error) {
	blockSize := int(lm.page.GetInt(0))
	needed := len(record) + 4

	if needed+4 > blockSize {
		if err := lm.FlushNow(); err != nil {
			return 0, err
		}
		block, err := lm.appendBlock()
		if err != nil {
			return 0, err
		}
		lm.currentBlock = block
		blockSize = int(lm.page.GetInt(0))
	}

	pos := blockSize - needed
	if _, err := lm.page.PutBytes(pos, record); err != nil {
		return 0, fmt.Errorf("storage: append log record: %w", err)
	}
	lm.page.PutInt(0, int32(pos))
	lm.latestLSN++
	return lm.latestLSN, nil
}

// Iterator returns a reverse iterator over every record written so far,
// most recent first.
func (lm *LogManager) Iterator() (*LogIterator, error) {
	if err := lm.FlushNow(); err != nil {
		return nil, err
	}
	return NewLogIterator(lm.disk, lm.currentBlock)
}
