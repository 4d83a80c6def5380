// Package charts draws the static PNG charts embedded in the report:
// a scatter plot with a trend line, an area-by-rooms heatmap and a summary
// table. Rendering is pure; the only state is the parsed font.
package charts

import (
	"fmt"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/goregular"

	"housing-dashboard/models"
)

// Options sizes the rendered images. Zero values fall back to defaults.
type Options struct {
	Width    int
	Height   int
	FontSize float64
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 1200
	}
	if o.Height <= 0 {
		o.Height = 700
	}
	if o.FontSize <= 0 {
		o.FontSize = 14
	}
	return o
}

// Renderer draws the three charts for a cleaned dataset.
type Renderer struct {
	opts Options
	font *truetype.Font
}

// NewRenderer parses the bundled Go font once.
func NewRenderer(opts Options) (*Renderer, error) {
	f, err := freetype.ParseFont(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("charts: parse font: %w", err)
	}
	return &Renderer{opts: opts.withDefaults(), font: f}, nil
}

// Render draws the scatter, heatmap and table images.
func (r *Renderer) Render(data models.ChartData) (models.Charts, error) {
	if len(data.Points) == 0 {
		return models.Charts{}, fmt.Errorf("charts: no points to draw")
	}
	lbl := labelsFor(data.Mode)

	scatter, err := r.scatter(data.Points, lbl)
	if err != nil {
		return models.Charts{}, fmt.Errorf("charts: scatter: %w", err)
	}
	heatmap, err := r.heatmap(data.Points, lbl)
	if err != nil {
		return models.Charts{}, fmt.Errorf("charts: heatmap: %w", err)
	}
	table, err := r.table(data.Points, data.Mode, lbl)
	if err != nil {
		return models.Charts{}, fmt.Errorf("charts: table: %w", err)
	}
	return models.Charts{Scatter: scatter, Heatmap: heatmap, Table: table}, nil
}

// labels holds the mode-dependent captions.
type labels struct {
	pricePerSqm string
	unitPrice   string
	total       string
	count       string
	tableTitle  string
}

func labelsFor(mode models.ChartMode) labels {
	if mode == models.ModeRental {
		return labels{
			pricePerSqm: "Rent per m²",
			unitPrice:   "rent/m²",
			total:       "Rent per month",
			count:       "Rentals",
			tableTitle:  "Rent analysis",
		}
	}
	return labels{
		pricePerSqm: "Price per m²",
		unitPrice:   "price/m²",
		total:       "Price",
		count:       "Sales",
		tableTitle:  "Sale price analysis",
	}
}

var roomColors = map[int]string{
	2: "#f39c12",
	3: "#e74c3c",
	4: "#3498db",
	5: "#2ecc71",
	6: "#9b59b6",
	7: "#1abc9c",
}

// RoomColor returns the marker colour for a room count.
func RoomColor(rooms int) string {
	if c, ok := roomColors[rooms]; ok {
		return c
	}
	return "#95a5a6"
}

// AreaCategories are the floor-area bands used by the heatmap and table.
var AreaCategories = []string{"0-50 m²", "50-75 m²", "75-100 m²", "100-115 m²", "115-130 m²", "130+ m²"}

var areaEdges = []float64{0, 50, 75, 100, 115, 130, 200}

// AreaCategory returns the index into AreaCategories for area. Bands are
// closed on the right and the first band includes 0; areas outside 0-200
// have no band.
func AreaCategory(area float64) (int, bool) {
	if area < areaEdges[0] || area > areaEdges[len(areaEdges)-1] {
		return 0, false
	}
	for i := 1; i < len(areaEdges); i++ {
		if area <= areaEdges[i] {
			return i - 1, true
		}
	}
	return 0, false
}
