package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sangkips/cheeta-billing/internal/domain/entity"
	"github.com/sangkips/cheeta-billing/internal/domain/enum"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// The Go fonts have no rupee glyph either.
const pngCurrency = "Rs."

const (
	pngWidth  = 800
	pngMargin = 40
)

var headerFill = color.RGBA{R: 229, G: 231, B: 235, A: 255}

var (
	pngFontsOnce sync.Once
	pngRegular   *opentype.Font
	pngBold      *opentype.Font
	pngFontsErr  error
)

func loadPNGFonts() error {
	pngFontsOnce.Do(func() {
		if pngRegular, pngFontsErr = opentype.Parse(goregular.TTF); pngFontsErr != nil {
			return
		}
		pngBold, pngFontsErr = opentype.Parse(gobold.TTF)
	})
	return pngFontsErr
}

// PNGRenderer draws the invoice as a single image for sharing in chat apps.
type PNGRenderer struct {
	loc *time.Location
}

func NewPNGRenderer(loc *time.Location) *PNGRenderer {
	return &PNGRenderer{loc: loc}
}

func (r *PNGRenderer) Format() enum.InvoiceFormat { return enum.InvoiceFormatPNG }

func (r *PNGRenderer) Render(ctx context.Context, bill *entity.Bill) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	v, err := newInvoiceView(bill, r.loc, pngCurrency)
	if err != nil {
		return nil, err
	}
	if err := loadPNGFonts(); err != nil {
		return nil, fmt.Errorf("render: png fonts: %w", err)
	}

	// opentype faces keep a glyph buffer and cannot be shared across renders.
	faces, err := newPNGFaces()
	if err != nil {
		return nil, fmt.Errorf("render: png faces: %w", err)
	}
	defer faces.close()

	c := &pngCanvas{y: pngMargin}
	drawBusinessHeader(c, faces, v)

	c.line(faces.heading, "INVOICE", pngWidth/2, alignCenter)
	c.text(faces.body, "Bill #"+v.Number, pngMargin, alignLeft)
	c.line(faces.body, v.Date, pngWidth-pngMargin, alignRight)
	c.y += 10

	c.line(faces.bold, "Bill To:", pngMargin, alignLeft)
	c.line(faces.body, v.Customer.Name, pngMargin, alignLeft)
	c.line(faces.body, v.Customer.Phone, pngMargin, alignLeft)
	if v.Customer.Email != "" {
		c.line(faces.body, v.Customer.Email, pngMargin, alignLeft)
	}
	c.y += 10

	drawItemTable(c, faces, v)

	var buf bytes.Buffer
	if err := png.Encode(&buf, c.paint()); err != nil {
		return nil, fmt.Errorf("render: png: %w", err)
	}
	return buf.Bytes(), nil
}

type pngFaces struct {
	title   font.Face
	heading font.Face
	bold    font.Face
	body    font.Face
}

func newPNGFaces() (*pngFaces, error) {
	f := &pngFaces{}
	for _, fc := range []struct {
		dst  *font.Face
		src  *opentype.Font
		size float64
	}{
		{&f.title, pngBold, 26},
		{&f.heading, pngBold, 20},
		{&f.bold, pngBold, 14},
		{&f.body, pngRegular, 14},
	} {
		face, err := opentype.NewFace(fc.src, &opentype.FaceOptions{Size: fc.size, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			f.close()
			return nil, err
		}
		*fc.dst = face
	}
	return f, nil
}

func (f *pngFaces) close() {
	for _, face := range []font.Face{f.title, f.heading, f.bold, f.body} {
		if face != nil {
			face.Close()
		}
	}
}

func drawBusinessHeader(c *pngCanvas, faces *pngFaces, v *invoiceView) {
	c.line(faces.title, v.Business.Name, pngMargin, alignLeft)
	if v.Business.Address != "" {
		for _, l := range strings.Split(v.Business.Address, "\n") {
			c.line(faces.body, l, pngMargin, alignLeft)
		}
	}
	c.line(faces.body, "Tel: "+v.Business.Phone, pngMargin, alignLeft)
	if v.Business.Email != "" {
		c.line(faces.body, v.Business.Email, pngMargin, alignLeft)
	}
	if v.Business.GSTIN != "" {
		c.line(faces.body, "GSTIN: "+v.Business.GSTIN, pngMargin, alignLeft)
	}
	c.y += 6
	c.rule(3)
}

func drawItemTable(c *pngCanvas, faces *pngFaces, v *invoiceView) {
	const pad = 8
	left, right := pngMargin, pngWidth-pngMargin
	nameX := left + pad
	qtyX := left + 418
	priceX := left + 569
	subX := right - pad
	nameWidth := qtyX - 60 - nameX

	c.fills = append(c.fills, image.Rect(left, c.y, right, c.y+lineHeight(faces.bold)+4))
	c.y += 2
	c.text(faces.bold, "Item", nameX, alignLeft)
	c.text(faces.bold, "Qty", qtyX, alignRight)
	c.text(faces.bold, "Price", priceX, alignRight)
	c.line(faces.bold, "Subtotal", subX, alignRight)
	c.y += 2

	for _, l := range v.Lines {
		c.text(faces.body, fitText(faces.body, l.Name, nameWidth), nameX, alignLeft)
		c.text(faces.body, strconv.Itoa(l.Quantity), qtyX, alignRight)
		c.text(faces.body, v.money(l.Price), priceX, alignRight)
		c.line(faces.body, v.money(l.Subtotal), subX, alignRight)
	}
	c.y += 4
	c.rule(1)

	for _, row := range [][2]string{
		{"Subtotal:", v.Subtotal},
		{v.CGSTLabel + ":", v.CGST},
		{v.SGSTLabel + ":", v.SGST},
	} {
		c.text(faces.body, row[0], priceX, alignRight)
		c.line(faces.body, v.money(row[1]), subX, alignRight)
	}
	c.y += 4
	c.text(faces.heading, "Total:", priceX, alignRight)
	c.line(faces.heading, v.money(v.Total), subX, alignRight)
}

type pngAlign int

const (
	alignLeft pngAlign = iota
	alignCenter
	alignRight
)

type pngText struct {
	face  font.Face
	s     string
	x, y  int
	align pngAlign
}

// pngCanvas queues drawing operations so the image height is known before
// any pixels are allocated.
type pngCanvas struct {
	y     int
	texts []pngText
	rules []image.Rectangle
	fills []image.Rectangle
}

func lineHeight(f font.Face) int {
	return f.Metrics().Height.Ceil() + 4
}

// text places s on the current line without advancing.
func (c *pngCanvas) text(f font.Face, s string, x int, align pngAlign) {
	c.texts = append(c.texts, pngText{face: f, s: s, x: x, y: c.y + f.Metrics().Ascent.Ceil(), align: align})
}

func (c *pngCanvas) line(f font.Face, s string, x int, align pngAlign) {
	c.text(f, s, x, align)
	c.y += lineHeight(f)
}

func (c *pngCanvas) rule(thickness int) {
	c.rules = append(c.rules, image.Rect(pngMargin, c.y, pngWidth-pngMargin, c.y+thickness))
	c.y += thickness + 8
}

func (c *pngCanvas) paint() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, pngWidth, c.y+pngMargin))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, r := range c.fills {
		draw.Draw(img, r, image.NewUniform(headerFill), image.Point{}, draw.Src)
	}
	for _, r := range c.rules {
		draw.Draw(img, r, image.Black, image.Point{}, draw.Src)
	}
	for _, t := range c.texts {
		d := &font.Drawer{Dst: img, Src: image.Black, Face: t.face}
		x := t.x
		switch t.align {
		case alignRight:
			x -= d.MeasureString(t.s).Ceil()
		case alignCenter:
			x -= d.MeasureString(t.s).Ceil() / 2
		}
		d.Dot = fixed.P(x, t.y)
		d.DrawString(t.s)
	}
	return img
}

// fitText shortens s with an ellipsis until it fits in width pixels.
func fitText(f font.Face, s string, width int) string {
	if font.MeasureString(f, s).Ceil() <= width {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		out := string(runes) + "..."
		if font.MeasureString(f, out).Ceil() <= width {
			return out
		}
	}
	return ""
}
