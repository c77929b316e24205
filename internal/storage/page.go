package storage

import (
	"encoding/binary"
	"errors"
)

// Page is one fixed-size in-memory block, read from and written to disk
// as a unit. It exposes typed accessors instead of raw []byte indexing so
// every caller writes fields at the same offsets it reads them from.
type Page struct {
	bb []byte
}

func NewPage(blockSize int) *Page {
	return &Page{bb: make([]byte, blockSize)}
}

func NewPageFromBytes(b []byte) *Page {
	return &Page{bb: b}
}

func (p *Page) Contents() []byte {
	return p.bb
}

func (p *Page) GetInt(offset int) int32 {
	return int32(binary.LittleEndian.Uint32(p.bb[offset:]))
}

func (p *Page) PutInt(offset int, val int32) {
	binary.LittleEndian.PutUint32(p.bb[offset:], uint32(val))
}

func (p *Page) GetUint16(offset int) uint16 {
	return binary.LittleEndian.Uint16(p.bb[offset:])
}

func (p *Page) PutUint16(offset int, val uint16) {
	binary.LittleEndian.PutUint16(p.bb[offset:], val)
}

func (p *Page) GetUint64(offset int) uint64 {
	return binary.LittleEndian.Uint64(p.bb[offset:])
}

func (p *Page) PutUint64(offset int, val uint64) {
	binary.LittleEndian.PutUint64(p.bb[offset:], val)
}

// GetBytes reads a length-prefixed (4-byte) byte slice starting at offset.
func (p *Page) GetBytes(offset int) []byte {
	length := int(p.GetInt(offset))
	b := make([]byte, length)
	copy(b, p.bb[offset+4:offset+4+length])
	return b
}

// PutBytes writes a length-prefixed byte slice at offset, returning the
// number of bytes consumed (len(b)+4).
func (p *Page) PutBytes(offset int, b []byte) (int, error) {
	if offset+len(b)+4 > len(p.bb) {
		return 0, errors.New("storage: put bytes out of bound")
	}
	p.PutInt(offset, int32(len(b)))
	copy(p.bb[offset+4:], b)
	return len(b) + 4, nil
}

func (p *Page) GetString(offset int) string {
	return string(p.GetBytes(offset))
}

func (p *Page) PutString(offset int, s string) (int, error) {
	return p.PutBytes(offset, []byte(s))
}

func (p *Page) PutBool(offset int, val bool) {
	if val {
		p.bb[offset] = 1
	} else {
		p.bb[offset] = 0
	}
}

func (p *Page) GetBool(offset int) bool {
	return p.bb[offset] == 1
}
