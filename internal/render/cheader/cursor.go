package cheader

import (
	"github.com/bearlytools/structhdr/internal/layout"
)

// Position is where a field sits in its structure.
type Position struct {
	// Index is the index of the field in the structure.
	Index int
	// Offset is the byte offset of the field.
	Offset int
	// Bit is the index of the bit within the byte at Offset. Only meaningful for
	// bit fields.
	Bit int
}

// Cursor walks the fields of a single structure and tracks the byte offset and
// bit index of each one. A Cursor belongs to one render pass and must not be
// shared.
type Cursor struct {
	fields []layout.Field
	index  int
	offset int
	bit    int
}

// NewCursor creates a Cursor at offset 0 for fields.
func NewCursor(fields []layout.Field) *Cursor {
	return &Cursor{fields: fields}
}

// Start positions the cursor at field i and returns its position. The position
// does not include field i's own size.
func (c *Cursor) Start(i int) Position {
	c.index = i
	return Position{Index: i, Offset: c.offset, Bit: c.bit}
}

// Field is the field the cursor is positioned at.
func (c *Cursor) Field() layout.Field {
	return c.fields[c.index]
}

// Next is the field after the current one, nil if the current field is last.
func (c *Cursor) Next() *layout.Field {
	if c.index+1 < len(c.fields) {
		return &c.fields[c.index+1]
	}
	return nil
}

// Advance moves the offset forward by size bytes. A bit field that adds no bytes
// moves to the next bit of the shared byte. Anything else starts at bit 0 again.
func (c *Cursor) Advance(size int, isBit bool) {
	c.offset += size
	if isBit && size == 0 {
		c.bit++
		return
	}
	c.bit = 0
}

// Step advances past the current field.
func (c *Cursor) Step() {
	f := c.Field()
	c.Advance(f.StorageSize(c.Next()), f.Bit)
}

// Offset is the running byte offset.
func (c *Cursor) Offset() int {
	return c.offset
}
