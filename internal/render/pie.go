package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/couchcryptid/crime-forecast-dashboard/internal/domain"
)

// pieChart is a plot.Plotter drawing one wedge per category share, clockwise
// from twelve o'clock.
type pieChart struct {
	shares []domain.CategoryShare
	labels bool
}

// wedgeStep is the angular resolution of wedge arcs.
const wedgeStep = math.Pi / 90

func (pc *pieChart) Plot(c draw.Canvas, plt *plot.Plot) {
	total := 0.0
	for _, s := range pc.shares {
		total += s.Count
	}
	if total <= 0 {
		return
	}

	center := vg.Point{X: (c.Min.X + c.Max.X) / 2, Y: (c.Min.Y + c.Max.Y) / 2}
	radius := min(c.Max.X-c.Min.X, c.Max.Y-c.Min.Y) / 2 * 0.75

	sty := plt.Title.TextStyle
	sty.Font.Size = vg.Points(9)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YCenter

	start := math.Pi / 2
	for i, s := range pc.shares {
		sweep := 2 * math.Pi * s.Count / total
		steps := max(2, int(math.Ceil(sweep/wedgeStep)))

		pts := make([]vg.Point, 0, steps+2)
		pts = append(pts, center)
		for k := 0; k <= steps; k++ {
			pts = append(pts, polar(center, radius, start-sweep*float64(k)/float64(steps)))
		}
		c.FillPolygon(colorAt(i), pts)

		if pc.labels {
			mid := start - sweep/2
			c.FillText(sty, polar(center, radius*1.18, mid), fmt.Sprintf("%s %.1f%%", s.Category, s.SharePct))
		}
		start -= sweep
	}
}

// DataRange fixes the unit square so axes never rescale the pie.
func (pc *pieChart) DataRange() (xmin, xmax, ymin, ymax float64) {
	return -1, 1, -1, 1
}

func polar(center vg.Point, r vg.Length, angle float64) vg.Point {
	return vg.Point{
		X: center.X + r*vg.Length(math.Cos(angle)),
		Y: center.Y + r*vg.Length(math.Sin(angle)),
	}
}

// swatch is a solid legend thumbnail.
type swatch struct {
	color color.Color
}

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.FillPolygon(s.color, []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	})
}
