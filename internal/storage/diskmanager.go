package storage

import (
	"fmt"
	"os"
	"sync"
)

// DiskManager reads and writes fixed-size blocks to files under dbDir,
// keeping one open *os.File per filename for the lifetime of the
// manager.
type DiskManager struct {
	dbDir     string
	blockSize int
	isNew     bool
	openFiles map[string]*os.File
	mu        sync.Mutex
}

func NewDiskManager(dbDir string, blockSize int) (*DiskManager, error) {
	isNew := false
	if _, err := os.Stat(dbDir); os.IsNotExist(err) {
		isNew = true
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create db dir: %w", err)
		}
	}
	return &DiskManager{
		dbDir:     dbDir,
		blockSize: blockSize,
		isNew:     isNew,
		openFiles: make(map[string]*os.File),
	}, nil
}

// Read loads one block into page.
func (dm *DiskManager) Read(blockID BlockID, page *Page) error {
	f, err := dm.getFile(blockID.Filename())
	if err != nil {
		return err
	}
	fi, err := f.Stat()
	if err != nil {
		return fmt.Errorf("storage: stat: %w", err)
	}
	end := int64(blockID.BlockNum()+1) * int64(dm.blockSize)
	if end > fi.Size() {
		return fmt.Errorf("%w: block %d of %q", ErrInvalidPage, blockID.BlockNum(), blockID.Filename())
	}
	if _, err := f.Seek(int64(blockID.BlockNum())*int64(dm.blockSize), 0); err != nil {
		return fmt.Errorf("storage: seek: %w", err)
	}
	if _, err := f.Read(page.Contents()); err != nil {
		return fmt.Errorf("storage: read: %w", err)
	}
	return nil
}

// Write persists one block from page.
func (dm *DiskManager) Write(blockID BlockID, page *Page) error {
	f, err := dm.getFile(blockID.Filename())
	if err != nil {
		return err
	}
	if _, err := f.Seek(int64(blockID.BlockNum())*int64(dm.blockSize), 0); err != nil {
		return fmt.Errorf("storage: seek: %w", err)
	}
	if _, err := f.Write(page.Contents()); err != nil {
		return fmt.Errorf("storage: write: %w", err)
	}
	return nil
}

// Append adds one empty block to the end of fileName and returns its id.
func (dm *DiskManager) Append(fileName string) (BlockID, error) {
	n, err := dm.BlockLength(fileName)
	if err != nil {
		return BlockID{}, err
	}
	block := NewBlockID(fileName, n)
	f, err := dm.getFile(fileName)
	if err != nil {
		return BlockID{}, err
	}
	if _, err := f.Seek(int64(block.BlockNum())*int64(dm.blockSize), 0); err != nil {
		return BlockID{}, fmt.Errorf("storage: seek: %w", err)
	}
	if _, err := f.Write(make([]byte, dm.blockSize)); err != nil {
		return BlockID{}, fmt.Errorf("storage: append: %w", err)
	}
	return block, nil
}

// BlockLength returns the number of blocks currently in fileName.
func (dm *DiskManager) BlockLength(fileName string) (int, error) {
	f, err := dm.getFile(fileName)
	if err != nil {
		return 0, err
	}
	fi, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("storage: stat: %w", err)
	}
	return int(fi.Size() / int64(dm.blockSize)), nil
}

func (dm *DiskManager) getFile(filename string) (*os.File, error) {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if f, ok := dm.openFiles[filename]; ok {
		return f, nil
	}
	f, err := os.OpenFile(dm.dbDir+"/"+filename, os.O_RDWR|os.O_CREATE|os.O_SYNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("storage: open %q: %w", filename, err)
	}
	dm.openFiles[filename] = f
	return f, nil
}

func (dm *DiskManager) BlockSize() int {
	return dm.blockSize
}

func (dm *DiskManager) IsNew() bool {
	return dm.isNew
}

func (dm *DiskManager) DBDir() string {
	return dm.dbDir
}

// Close closes every open file handle.
func (dm *DiskManager) Close() error {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	var firstErr error
	for _, f := range dm.openFiles {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
