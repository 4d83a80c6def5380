package charts

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"

	"housing-dashboard/models"
)

// rdYlGnReversed runs from green (cheap) to red (expensive).
var rdYlGnReversed = []string{
	"#006837", "#1a9850", "#66bd63", "#a6d96a", "#d9ef8b", "#ffffbf",
	"#fee08b", "#fdae61", "#f46d43", "#d73027", "#a50026",
}

// colormap returns the colour for t in [0,1].
func colormap(t float64) color.RGBA {
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(rdYlGnReversed)-1)
	i := int(pos)
	if i >= len(rdYlGnReversed)-1 {
		return hexColor(rdYlGnReversed[len(rdYlGnReversed)-1])
	}
	a, b := hexColor(rdYlGnReversed[i]), hexColor(rdYlGnReversed[i+1])
	f := pos - float64(i)
	mix := func(x, y uint8) uint8 { return uint8(float64(x) + (float64(y)-float64(x))*f) }
	return color.RGBA{mix(a.R, b.R), mix(a.G, b.G), mix(a.B, b.B), 255}
}

// Cell is one area-band × room-count bucket.
type Cell struct {
	Mean  float64
	Count int
}

// Grid holds the mean price per m² for every area band and room count.
type Grid struct {
	Rooms []int
	Cells [][]Cell // [area band][room column]
}

// BuildGrid groups points by area band and room count. Points without an
// area band are left out.
func BuildGrid(points []models.ChartPoint) Grid {
	seen := make(map[int]bool)
	for _, p := range points {
		if _, ok := AreaCategory(p.Area); ok {
			seen[p.Rooms] = true
		}
	}
	g := Grid{Cells: make([][]Cell, len(AreaCategories))}
	for r := range seen {
		g.Rooms = append(g.Rooms, r)
	}
	sort.Ints(g.Rooms)
	col := make(map[int]int, len(g.Rooms))
	for i, r := range g.Rooms {
		col[r] = i
	}

	sums := make([][]float64, len(AreaCategories))
	for i := range g.Cells {
		g.Cells[i] = make([]Cell, len(g.Rooms))
		sums[i] = make([]float64, len(g.Rooms))
	}
	for _, p := range points {
		band, ok := AreaCategory(p.Area)
		if !ok {
			continue
		}
		j := col[p.Rooms]
		sums[band][j] += p.PricePerSqm
		g.Cells[band][j].Count++
	}
	for i := range g.Cells {
		for j := range g.Cells[i] {
			if n := g.Cells[i][j].Count; n > 0 {
				g.Cells[i][j].Mean = sums[i][j] / float64(n)
			}
		}
	}
	return g
}

func (r *Renderer) heatmap(points []models.ChartPoint, lbl labels) ([]byte, error) {
	fs := r.opts.FontSize
	width, height := r.opts.Width, r.opts.Height*6/7
	c := newCanvas(width, height, r.font)
	g := BuildGrid(points)

	title := fmt.Sprintf("Mean %s by area and room count (red = expensive, green = cheap)", lbl.unitPrice)
	c.text(title, width/2, int(fs*2.5), fs*1.3, textColor, alignCenter)

	grid := image.Rect(int(fs*9), int(fs*4.5), width-int(fs*10), height-int(fs*4.5))
	if len(g.Rooms) == 0 {
		c.text("No listings within 0-200 m²", width/2, height/2, fs, axisColor, alignCenter)
		return c.encode()
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, row := range g.Cells {
		for _, cell := range row {
			if cell.Count > 0 {
				lo, hi = math.Min(lo, cell.Mean), math.Max(hi, cell.Mean)
			}
		}
	}
	scale := func(v float64) float64 {
		if hi == lo {
			return 0.5
		}
		return (v - lo) / (hi - lo)
	}

	cw := grid.Dx() / len(g.Rooms)
	ch := grid.Dy() / len(AreaCategories)
	for i, band := range AreaCategories {
		y0 := grid.Min.Y + i*ch
		c.text(band, grid.Min.X-int(fs*0.6), y0+ch/2+int(fs*0.35), fs*0.9, textColor, alignRight)
		for j := range g.Rooms {
			x0 := grid.Min.X + j*cw
			cell := g.Cells[i][j]
			rect := image.Rect(x0+1, y0+1, x0+cw-1, y0+ch-1)
			if cell.Count == 0 {
				c.fillRect(rect, emptyCell)
				continue
			}
			c.fillRect(rect, colormap(scale(cell.Mean)))
			c.text(fmt.Sprintf("%d", int(cell.Mean)), x0+cw/2, y0+ch/2, fs, black, alignCenter)
			c.text(fmt.Sprintf("(n=%d)", cell.Count), x0+cw/2, y0+ch/2+int(fs*1.2), fs*0.8, black, alignCenter)
		}
	}
	for j, n := range g.Rooms {
		c.text(fmt.Sprintf("%d", n), grid.Min.X+j*cw+cw/2, grid.Max.Y+int(fs*1.4), fs*0.9, textColor, alignCenter)
	}
	c.text("Room count", grid.Min.X+grid.Dx()/2, grid.Max.Y+int(fs*3), fs, textColor, alignCenter)
	c.text("Area band", grid.Min.X-int(fs*0.6), grid.Min.Y-int(fs*0.8), fs, textColor, alignRight)

	// colour bar
	bar := image.Rect(grid.Max.X+int(fs*2), grid.Min.Y, grid.Max.X+int(fs*3.2), grid.Max.Y)
	for y := bar.Min.Y; y < bar.Max.Y; y++ {
		t := 1 - float64(y-bar.Min.Y)/float64(bar.Dy())
		c.fillRect(image.Rect(bar.Min.X, y, bar.Max.X, y+1), colormap(t))
	}
	c.strokeRect(bar, axisColor)
	c.text(fmt.Sprintf("%d", int(hi)), bar.Max.X+int(fs*0.4), bar.Min.Y+int(fs*0.8), fs*0.85, textColor, alignLeft)
	c.text(fmt.Sprintf("%d", int(lo)), bar.Max.X+int(fs*0.4), bar.Max.Y, fs*0.85, textColor, alignLeft)
	c.text(lbl.unitPrice+" (kr.)", bar.Min.X, bar.Min.Y-int(fs*0.8), fs*0.85, textColor, alignLeft)

	return c.encode()
}
