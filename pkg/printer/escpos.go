package printer

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ESC/POS control bytes
const (
	ESC = 0x1B
	GS  = 0x1D
	LF  = 0x0A
)

// Alignment is the justification of the following lines.
type Alignment byte

const (
	AlignLeft   Alignment = 0
	AlignCenter Alignment = 1
	AlignRight  Alignment = 2
)

// Size is a GS ! character size selector.
type Size byte

const (
	SizeNormal Size = 0x00
	SizeTall   Size = 0x01
	SizeWide   Size = 0x10
	SizeDouble Size = 0x11
)

// Common paper widths in characters.
const (
	Width58mm = 32
	Width80mm = 48
)

// Receipt builds an ESC/POS byte stream. Text is reduced to printable ASCII
// since most thermal printers default to a single byte code page.
type Receipt struct {
	buf   bytes.Buffer
	width int
}

// NewReceipt starts a receipt for paper that fits width characters per line.
func NewReceipt(width int) *Receipt {
	if width <= 0 {
		width = Width58mm
	}
	r := &Receipt{width: width}
	r.buf.Write([]byte{ESC, '@'})
	return r
}

// Width is the number of characters per line.
func (r *Receipt) Width() int {
	return r.width
}

func (r *Receipt) Align(a Alignment) *Receipt {
	r.buf.Write([]byte{ESC, 'a', byte(a)})
	return r
}

func (r *Receipt) Bold(on bool) *Receipt {
	var b byte
	if on {
		b = 1
	}
	r.buf.Write([]byte{ESC, 'E', b})
	return r
}

func (r *Receipt) Size(s Size) *Receipt {
	r.buf.Write([]byte{GS, '!', byte(s)})
	return r
}

// Line prints s, wrapping it at the paper width.
func (r *Receipt) Line(s string) *Receipt {
	for _, l := range wrap(ascii(s), r.width) {
		r.buf.WriteString(l)
		r.buf.WriteByte(LF)
	}
	return r
}

func (r *Receipt) Linef(format string, args ...any) *Receipt {
	return r.Line(fmt.Sprintf(format, args...))
}

// Rule prints a full-width line of ch.
func (r *Receipt) Rule(ch byte) *Receipt {
	r.buf.Write(bytes.Repeat([]byte{ch}, r.width))
	r.buf.WriteByte(LF)
	return r
}

// Columns prints left and right on one line, right-justified against the
// edge. A left text that does not fit wraps above the line holding right.
func (r *Receipt) Columns(left, right string) *Receipt {
	left, right = ascii(left), ascii(right)
	room := r.width - len(right) - 1
	if room < 1 {
		r.Line(left)
		return r.Align(AlignRight).Line(right).Align(AlignLeft)
	}

	lines := wrap(left, room)
	for _, l := range lines[:len(lines)-1] {
		r.buf.WriteString(l)
		r.buf.WriteByte(LF)
	}
	last := lines[len(lines)-1]
	r.buf.WriteString(last)
	r.buf.WriteString(strings.Repeat(" ", r.width-len(last)-len(right)))
	r.buf.WriteString(right)
	r.buf.WriteByte(LF)
	return r
}

func (r *Receipt) Feed(n int) *Receipt {
	for i := 0; i < n; i++ {
		r.buf.WriteByte(LF)
	}
	return r
}

// Cut feeds past the tear bar and performs a partial cut.
func (r *Receipt) Cut() *Receipt {
	r.Feed(3)
	r.buf.Write([]byte{GS, 'V', 0x01})
	return r
}

// Bytes returns the stream built so far.
func (r *Receipt) Bytes() []byte {
	return r.buf.Bytes()
}

func ascii(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, c := range s {
		switch {
		case c == '\t':
			b.WriteByte(' ')
		case c >= 0x20 && c < 0x7F:
			b.WriteRune(c)
		case c == '₹':
			b.WriteString("Rs.")
		case c >= utf8.RuneSelf:
			b.WriteByte('?')
		}
	}
	return b.String()
}

// wrap splits s into lines of at most width bytes, breaking on spaces where
// possible. Leading spaces indent every line. It always returns at least one
// line.
func wrap(s string, width int) []string {
	body := strings.TrimLeft(s, " ")
	indent := s[:len(s)-len(body)]
	if len(indent) >= width {
		indent = ""
	}
	width -= len(indent)

	words := strings.Fields(body)
	if len(words) == 0 {
		return []string{""}
	}

	var lines []string
	var cur string
	for _, w := range words {
		for len(w) > width {
			if cur != "" {
				lines = append(lines, indent+cur)
				cur = ""
			}
			lines = append(lines, indent+w[:width])
			w = w[width:]
		}
		switch {
		case cur == "":
			cur = w
		case len(cur)+1+len(w) <= width:
			cur += " " + w
		default:
			lines = append(lines, indent+cur)
			cur = w
		}
	}
	if cur != "" || len(lines) == 0 {
		lines = append(lines, indent+cur)
	}
	return lines
}
