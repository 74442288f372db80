package lexer

import (
	"fmt"

	"mend/internal/source"

	"fortio.org/safecast"
)

// Cursor — байтовая позиция внутри файла.
type Cursor struct {
	File  *source.File
	Off   uint32
	limit uint32
}

// NewCursor creates a cursor positioned at the start of f.
func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("len file content overflow: %w", err))
	}
	return Cursor{File: f, limit: limit}
}

func (c *Cursor) EOF() bool {
	return c.Off >= c.limit
}

// Peek читает текущий байт, 0 на EOF.
func (c *Cursor) Peek() byte {
	return c.PeekAt(0)
}

// PeekAt reads the byte n positions ahead, 0 past the end.
func (c *Cursor) PeekAt(n uint32) byte {
	if c.Off+n >= c.limit {
		return 0
	}
	return c.File.Content[c.Off+n]
}

// Peek2 возвращает два следующих байта; ok=false, если их меньше двух.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if c.Off+1 >= c.limit {
		return 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], true
}

func (c *Cursor) Peek3() (b0, b1, b2 byte, ok bool) {
	if c.Off+2 >= c.limit {
		return 0, 0, 0, false
	}
	return c.File.Content[c.Off], c.File.Content[c.Off+1], c.File.Content[c.Off+2], true
}

func (c *Cursor) Peek4() (b0, b1, b2, b3 byte, ok bool) {
	if c.Off+3 >= c.limit {
		return 0, 0, 0, 0, false
	}
	s := c.File.Content[c.Off : c.Off+4]
	return s[0], s[1], s[2], s[3], true
}

// Bump сдвигает курсор на байт и возвращает его.
func (c *Cursor) Bump() byte {
	if c.EOF() {
		return 0
	}
	b := c.File.Content[c.Off]
	c.Off++
	return b
}

// Mark — сохранённая позиция для SpanFrom/Reset.
type Mark uint32

func (c *Cursor) Mark() Mark {
	return Mark(c.Off)
}

func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.File.ID, Start: uint32(m), End: c.Off}
}

// TextFrom returns the source text between m and the cursor.
func (c *Cursor) TextFrom(m Mark) string {
	return string(c.File.Content[uint32(m):c.Off])
}

func (c *Cursor) Reset(m Mark) {
	c.Off = uint32(m)
}

// Eat consumes b if it is next.
func (c *Cursor) Eat(b byte) bool {
	if !c.EOF() && c.File.Content[c.Off] == b {
		c.Off++
		return true
	}
	return false
}

// EatAny consumes the next byte if it is one of bs and reports it.
func (c *Cursor) EatAny(bs string) (byte, bool) {
	if c.EOF() {
		return 0, false
	}
	b := c.File.Content[c.Off]
	for i := 0; i < len(bs); i++ {
		if bs[i] == b {
			c.Off++
			return b, true
		}
	}
	return 0, false
}
