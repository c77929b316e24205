package storage

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/lbs-irtree/irtree/internal/concurrent"
)

// BufferPoolManager caches disk pages in memory while pinned, evicting
// the least-recently-used unpinned page on demand. Adapted from
// lib/buffer/buffer_pool_manager.go (CMU 15-445's buffer pool design).
type BufferPoolManager struct {
	pool         []*buffer
	poolSize     int
	table        map[BlockID]int
	freeList     []int
	replacer     *lruReplacer
	bg           concurrent.WorkQueue
	nextBlockNum int
	io           int64
}

func NewBufferPoolManager(numBuffers int, disk *DiskManager, log *LogManager, sugar *zap.SugaredLogger) *BufferPoolManager {
	pool := make([]*buffer, numBuffers)
	free := make([]int, numBuffers)
	for i := 0; i < numBuffers; i++ {
		pool[i] = newBuffer(disk, log, sugar)
		free[i] = i
	}
	return &BufferPoolManager{
		pool:     pool,
		poolSize: numBuffers,
		table:    make(map[BlockID]int),
		freeList: free,
		replacer: newLRUReplacer(numBuffers),
		bg:       concurrent.NewWorkerQueue(1),
	}
}

// FetchPage returns the page for blockID, loading it from disk if it
// isn't already resident, and pins it.
func (bpm *BufferPoolManager) FetchPage(blockID BlockID) (*Page, error) {
	if frameID, ok := bpm.table[blockID]; ok {
		buf := bpm.pool[frameID]
		buf.incrementPin()
		bpm.replacer.Pin(frameID)
		return buf.getContents(), nil
	}

	frameID, err := bpm.acquireFrame()
	if err != nil {
		return nil, err
	}

	buf := bpm.pool[frameID]
	delete(bpm.table, buf.getBlockID())
	bpm.table[blockID] = frameID

	if err := buf.assignToBlock(blockID, bpm.bg); err != nil {
		return nil, fmt.Errorf("storage: assign buffer to block: %w", err)
	}
	bpm.io++
	buf.incrementPin()
	bpm.replacer.Pin(frameID)
	return buf.getContents(), nil
}

// NewPage allocates a fresh page, writes blockID into the out-param, and
// returns the (empty) page contents, pinned.
func (bpm *BufferPoolManager) NewPage(blockID *BlockID, fileName string) (*Page, error) {
	frameID, err := bpm.acquireFrame()
	if err != nil {
		return nil, err
	}

	buf := bpm.pool[frameID]
	delete(bpm.table, buf.getBlockID())

	*blockID = NewBlockID(fileName, bpm.nextBlockNum)
	bpm.nextBlockNum++

	buf.resetMemory()
	buf.blockID = *blockID
	buf.incrementPin()

	bpm.table[*blockID] = frameID
	bpm.replacer.Pin(frameID)
	return buf.getContents(), nil
}

func (bpm *BufferPoolManager) acquireFrame() (int, error) {
	if len(bpm.freeList) != 0 {
		frameID := bpm.freeList[0]
		bpm.freeList = bpm.freeList[1:]
		return frameID, nil
	}

	var frameID int
	if !bpm.replacer.Victim(&frameID) {
		return 0, fmt.Errorf("storage: no available buffer frame")
	}
	buf := bpm.pool[frameID]
	if buf.getIsDirty() {
		if err := buf.flush(); err != nil {
			return 0, err
		}
	}
	return frameID, nil
}

// UnpinPage decrements blockID's pin count, marking it dirty if isDirty.
func (bpm *BufferPoolManager) UnpinPage(blockID BlockID, isDirty bool) bool {
	frameID, ok := bpm.table[blockID]
	if !ok {
		return true
	}
	buf := bpm.pool[frameID]
	if isDirty {
		buf.setDirty(true)
	}
	if buf.getPinCount() <= 0 {
		return false
	}
	buf.decrementPin()
	if buf.getPinCount() == 0 {
		bpm.replacer.Unpin(frameID)
	}
	return true
}

// DeletePage evicts blockID from the pool (flushing first if dirty) and
// returns its frame to the free list.
func (bpm *BufferPoolManager) DeletePage(blockID BlockID) bool {
	frameID, ok := bpm.table[blockID]
	if !ok {
		return true
	}
	if bpm.pool[frameID].getPinCount() > 0 {
		return false
	}
	buf := bpm.pool[frameID]
	if buf.getIsDirty() {
		buf.flush()
		buf.setDirty(false)
	}
	delete(bpm.table, blockID)
	bpm.replacer.Remove(frameID)
	buf.resetMemory()
	bpm.freeList = append(bpm.freeList, frameID)
	return true
}

// FlushAll writes every resident dirty page back to disk.
func (bpm *BufferPoolManager) FlushAll() error {
	for _, buf := range bpm.pool {
		if (buf.getBlockID() == BlockID{}) {
			continue
		}
		if buf.getIsDirty() {
			if err := buf.flush(); err != nil {
				return err
			}
			buf.setDirty(false)
		}
	}
	return nil
}

func (bpm *BufferPoolManager) GetIO() int64 {
	return bpm.io
}

func (bpm *BufferPoolManager) NextBlockNum() int {
	return bpm.nextBlockNum
}

func (bpm *BufferPoolManager) SetNextBlockNum(n int) {
	bpm.nextBlockNum = n
}

func (bpm *BufferPoolManager) Close() {
	close(bpm.bg)
}
