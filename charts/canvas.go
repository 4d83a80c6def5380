package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type align int

const (
	alignLeft align = iota
	alignCenter
	alignRight
)

var (
	white     = color.RGBA{255, 255, 255, 255}
	black     = color.RGBA{0, 0, 0, 255}
	textColor = color.RGBA{44, 62, 80, 255}
	gridColor = color.RGBA{220, 220, 220, 255}
	axisColor = color.RGBA{90, 90, 90, 255}
	trendGray = color.RGBA{128, 128, 128, 255}
	emptyCell = color.RGBA{240, 240, 240, 255}
)

// canvas is an RGBA image with the drawing primitives the charts need.
type canvas struct {
	img   *image.RGBA
	font  *truetype.Font
	faces map[float64]font.Face
}

func newCanvas(width, height int, f *truetype.Font) *canvas {
	c := &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		font:  f,
		faces: make(map[float64]font.Face),
	}
	draw.Draw(c.img, c.img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return c
}

func (c *canvas) face(size float64) font.Face {
	if f, ok := c.faces[size]; ok {
		return f
	}
	f := truetype.NewFace(c.font, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	c.faces[size] = f
	return f
}

func (c *canvas) textWidth(s string, size float64) int {
	d := &font.Drawer{Face: c.face(size)}
	return d.MeasureString(s).Ceil()
}

// text draws s with its baseline at y.
func (c *canvas) text(s string, x, y int, size float64, col color.Color, a align) {
	switch a {
	case alignCenter:
		x -= c.textWidth(s, size) / 2
	case alignRight:
		x -= c.textWidth(s, size)
	}
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: c.face(size),
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func (c *canvas) fillRect(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Over)
}

func (c *canvas) strokeRect(r image.Rectangle, col color.Color) {
	c.line(r.Min.X, r.Min.Y, r.Max.X-1, r.Min.Y, col, 1)
	c.line(r.Min.X, r.Max.Y-1, r.Max.X-1, r.Max.Y-1, col, 1)
	c.line(r.Min.X, r.Min.Y, r.Min.X, r.Max.Y-1, col, 1)
	c.line(r.Max.X-1, r.Min.Y, r.Max.X-1, r.Max.Y-1, col, 1)
}

func (c *canvas) line(x0, y0, x1, y1 int, col color.Color, width int) {
	c.pattern(x0, y0, x1, y1, col, width, 0)
}

func (c *canvas) dashed(x0, y0, x1, y1 int, col color.Color, width, dash int) {
	c.pattern(x0, y0, x1, y1, col, width, dash)
}

// pattern walks the segment with Bresenham's algorithm. A non-zero dash
// alternates dash-long runs of drawn and skipped pixels.
func (c *canvas) pattern(x0, y0, x1, y1 int, col color.Color, width, dash int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	half := width / 2
	for step := 0; ; step++ {
		if dash == 0 || (step/dash)%2 == 0 {
			c.fillRect(image.Rect(x0-half, y0-half, x0-half+width, y0-half+width), col)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// disc draws a filled circle with a one-pixel-wide outline.
func (c *canvas) disc(cx, cy, r int, fill, edge color.Color) {
	for y := -r; y <= r; y++ {
		for x := -r; x <= r; x++ {
			d := x*x + y*y
			switch {
			case d <= (r-2)*(r-2):
				c.blend(cx+x, cy+y, fill)
			case d <= r*r:
				c.blend(cx+x, cy+y, edge)
			}
		}
	}
}

func (c *canvas) blend(x, y int, col color.Color) {
	if !(image.Point{X: x, Y: y}).In(c.img.Bounds()) {
		return
	}
	c.fillRect(image.Rect(x, y, x+1, y+1), col)
}

func (c *canvas) encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, c.img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// hexColor parses "#rrggbb".
func hexColor(s string) color.RGBA {
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil || len(s) != 7 {
		return black
	}
	return color.RGBA{uint8(v >> 16), uint8(v >> 8), uint8(v), 255}
}

func withAlpha(c color.RGBA, alpha float64) color.RGBA {
	a := uint8(alpha * 255)
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: a,
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
