package storage

// BlockID names one fixed-size block within a named file: read/write
// offset is blockNum * blockSize.
type BlockID struct {
	filename string
	blockNum int
}

func NewBlockID(filename string, blockNum int) BlockID {
	return BlockID{filename: filename, blockNum: blockNum}
}

func (b BlockID) Filename() string {
	return b.filename
}

func (b BlockID) BlockNum() int {
	return b.blockNum
}
