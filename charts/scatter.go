package charts

import (
	"fmt"
	"image"
	"math"
	"sort"

	"housing-dashboard/models"
)

// Fit returns the least-squares line y = slope*x + intercept and its R².
// ok is false with fewer than two points or when every x is equal.
func Fit(xs, ys []float64) (slope, intercept, r2 float64, ok bool) {
	n := float64(len(xs))
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0, 0, false
	}
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var sxx, sxy float64
	for i := range xs {
		sxx += (xs[i] - mx) * (xs[i] - mx)
		sxy += (xs[i] - mx) * (ys[i] - my)
	}
	if sxx == 0 {
		return 0, 0, 0, false
	}
	slope = sxy / sxx
	intercept = my - slope*mx

	var ssRes, ssTot float64
	for i := range xs {
		pred := slope*xs[i] + intercept
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - my) * (ys[i] - my)
	}
	if ssTot == 0 {
		return slope, intercept, 1, true
	}
	return slope, intercept, 1 - ssRes/ssTot, true
}

// plotArea maps data coordinates into a pixel rectangle.
type plotArea struct {
	rect                   image.Rectangle
	xMin, xMax, yMin, yMax float64
}

func (p plotArea) px(x float64) int {
	return p.rect.Min.X + int((x-p.xMin)/(p.xMax-p.xMin)*float64(p.rect.Dx()))
}

func (p plotArea) py(y float64) int {
	return p.rect.Max.Y - int((y-p.yMin)/(p.yMax-p.yMin)*float64(p.rect.Dy()))
}

func (r *Renderer) scatter(points []models.ChartPoint, lbl labels) ([]byte, error) {
	fs := r.opts.FontSize
	c := newCanvas(r.opts.Width, r.opts.Height, r.font)

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i] = p.PricePerSqm, p.Area
	}

	plot := plotArea{rect: image.Rect(int(fs*6), int(fs*5), r.opts.Width-int(fs*17), r.opts.Height-int(fs*5))}
	plot.xMin, plot.xMax = paddedRange(xs)
	plot.yMin, plot.yMax = paddedRange(ys)

	title := fmt.Sprintf("Area vs. %s (coloured by room count, n=%d)", lbl.pricePerSqm, len(points))
	c.text(title, r.opts.Width/2, int(fs*2.5), fs*1.4, textColor, alignCenter)

	for _, t := range ticks(plot.xMin, plot.xMax, 8) {
		x := plot.px(t)
		c.line(x, plot.rect.Min.Y, x, plot.rect.Max.Y, gridColor, 1)
		c.text(formatTick(t), x, plot.rect.Max.Y+int(fs*1.4), fs*0.85, axisColor, alignCenter)
	}
	for _, t := range ticks(plot.yMin, plot.yMax, 6) {
		y := plot.py(t)
		c.line(plot.rect.Min.X, y, plot.rect.Max.X, y, gridColor, 1)
		c.text(formatTick(t), plot.rect.Min.X-int(fs*0.5), y+int(fs*0.3), fs*0.85, axisColor, alignRight)
	}
	c.strokeRect(plot.rect, axisColor)
	c.text(lbl.pricePerSqm+" (kr./m²)", plot.rect.Min.X+plot.rect.Dx()/2, plot.rect.Max.Y+int(fs*3.2), fs, textColor, alignCenter)
	c.text("Area (m²)", plot.rect.Min.X, plot.rect.Min.Y-int(fs*0.8), fs, textColor, alignLeft)

	groups := make(map[int][]models.ChartPoint)
	for _, p := range points {
		groups[p.Rooms] = append(groups[p.Rooms], p)
	}
	rooms := make([]int, 0, len(groups))
	for k := range groups {
		rooms = append(rooms, k)
	}
	sort.Ints(rooms)

	radius := int(math.Max(4, fs*0.5))
	legendX, legendY := plot.rect.Max.X+int(fs*1.5), plot.rect.Min.Y+int(fs)
	for _, n := range rooms {
		col := hexColor(RoomColor(n))
		for _, p := range groups[n] {
			c.disc(plot.px(p.PricePerSqm), plot.py(p.Area), radius, withAlpha(col, 0.6), black)
		}
		c.disc(legendX, legendY-int(fs*0.35), radius, withAlpha(col, 0.6), black)
		c.text(fmt.Sprintf("%d rooms (n=%d)", n, len(groups[n])), legendX+radius+int(fs*0.6), legendY, fs*0.9, textColor, alignLeft)
		legendY += int(fs * 1.6)
	}

	if slope, intercept, r2, ok := Fit(xs, ys); ok {
		lo, hi := minMax(xs)
		c.dashed(plot.px(lo), plot.py(slope*lo+intercept), plot.px(hi), plot.py(slope*hi+intercept), trendGray, 2, 10)
		c.line(legendX-radius, legendY-int(fs*0.35), legendX+radius, legendY-int(fs*0.35), trendGray, 2)
		c.text(fmt.Sprintf("Trend (R²=%.3f)", r2), legendX+radius+int(fs*0.6), legendY, fs*0.9, textColor, alignLeft)
	}

	return c.encode()
}

func minMax(values []float64) (float64, float64) {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// paddedRange widens [min,max] by 5% on each side, or by 1 when flat.
func paddedRange(values []float64) (float64, float64) {
	lo, hi := minMax(values)
	if hi == lo {
		return lo - 1, hi + 1
	}
	pad := (hi - lo) * 0.05
	return lo - pad, hi + pad
}

// ticks returns round values inside [lo,hi], about n of them.
func ticks(lo, hi float64, n int) []float64 {
	span := hi - lo
	if span <= 0 || n < 1 {
		return nil
	}
	raw := span / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if raw <= m*mag {
			step = m * mag
			break
		}
	}
	var out []float64
	for v := math.Ceil(lo/step) * step; v <= hi; v += step {
		out = append(out, v)
	}
	return out
}

func formatTick(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.1f", v)
}
