package charts

import (
	"fmt"
	"image"
	"image/color"

	"housing-dashboard/models"
	"housing-dashboard/utils"
)

// SummaryRow is one line of the summary table: per area band, or the total.
type SummaryRow struct {
	Label          string
	Count          int
	MeanPriceSqm   float64
	MeanTotalPrice float64
	MeanRooms      float64
	MeanDaysListed float64
}

// Summarise returns one row per non-empty area band followed by a total row
// covering every point.
func Summarise(points []models.ChartPoint) []SummaryRow {
	type acc struct {
		n                       int
		sqm, total, rooms, days float64
	}
	bands := make([]acc, len(AreaCategories))
	var all acc
	var area float64
	add := func(a *acc, p models.ChartPoint) {
		a.n++
		a.sqm += p.PricePerSqm
		a.total += p.TotalPrice
		a.rooms += float64(p.Rooms)
		a.days += p.DaysListed
	}
	for _, p := range points {
		add(&all, p)
		area += p.Area
		if i, ok := AreaCategory(p.Area); ok {
			add(&bands[i], p)
		}
	}
	row := func(label string, a acc) SummaryRow {
		n := float64(a.n)
		return SummaryRow{
			Label:          label,
			Count:          a.n,
			MeanPriceSqm:   a.sqm / n,
			MeanTotalPrice: a.total / n,
			MeanRooms:      a.rooms / n,
			MeanDaysListed: a.days / n,
		}
	}

	var rows []SummaryRow
	for i, a := range bands {
		if a.n > 0 {
			rows = append(rows, row(AreaCategories[i], a))
		}
	}
	if all.n > 0 {
		rows = append(rows, row(fmt.Sprintf("Mean area: %d m²", int(area/float64(all.n))), all))
	}
	return rows
}

func (r *Renderer) table(points []models.ChartPoint, mode models.ChartMode, lbl labels) ([]byte, error) {
	fs := r.opts.FontSize
	rows := Summarise(points)
	rental := mode == models.ModeRental

	header := []string{"Area", lbl.count, lbl.pricePerSqm, lbl.total, "Rooms"}
	widths := []float64{0.25, 0.2, 0.18, 0.2, 0.17}
	if rental {
		header = append(header, "Days listed")
		widths = []float64{0.2, 0.18, 0.16, 0.18, 0.15, 0.13}
	}

	cells := make([][]string, len(rows))
	for i, s := range rows {
		cells[i] = []string{
			s.Label,
			fmt.Sprintf("%d", s.Count),
			fmt.Sprintf("%d kr.", int(s.MeanPriceSqm)),
			utils.Thousands(int(s.MeanTotalPrice)) + " kr.",
			fmt.Sprintf("%.1f", s.MeanRooms),
		}
		if rental {
			cells[i] = append(cells[i], fmt.Sprintf("%d", int(s.MeanDaysListed)))
		}
	}

	rowH := int(fs * 2.4)
	top := int(fs * 4)
	width := r.opts.Width
	height := top + rowH*(len(rows)+1) + int(fs*2)
	c := newCanvas(width, height, r.font)
	c.text(lbl.tableTitle, width/2, int(fs*2.5), fs*1.4, textColor, alignCenter)

	margin := int(fs * 2)
	usable := float64(width - 2*margin)
	drawRow := func(y int, values []string, bg, fg color.Color, bold bool) {
		x := margin
		for j, v := range values {
			w := int(widths[j] * usable)
			rect := image.Rect(x, y, x+w, y+rowH)
			c.fillRect(rect, bg)
			c.strokeRect(rect, white)
			size := fs
			if bold {
				size = fs * 1.05
			}
			c.text(v, x+w/2, y+rowH/2+int(fs*0.35), size, fg, alignCenter)
			x += w
		}
	}

	drawRow(top, header, hexColor("#34495e"), white, true)
	for i, values := range cells {
		y := top + rowH*(i+1)
		bg := hexColor("#bdc3c7")
		if (i+1)%2 == 0 {
			bg = hexColor("#95a5a6")
		}
		bold := i == len(cells)-1
		if bold {
			bg = hexColor("#ecf0f1")
		}
		drawRow(y, values, bg, black, bold)
	}

	return c.encode()
}
