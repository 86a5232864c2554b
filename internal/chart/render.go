package chart

import (
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"osrs-flipper/internal/engine"
)

// Default PNG size.
const (
	Width  = 8 * vg.Inch
	Height = 3 * vg.Inch
)

var lineColor = color.RGBA{R: 0xff, G: 0x98, B: 0x00, A: 0xff}

// Render draws c as a PNG line chart of the average sell price.
// Days without trades are skipped. Returns ErrNoChart when nothing is plottable.
func Render(c *Chart, w io.Writer, width, height vg.Length) error {
	if c == nil {
		return ErrNoChart
	}
	xys := make(plotter.XYs, 0, len(c.Series))
	ticks := make([]plot.Tick, 0, len(c.Series))
	for i, pt := range c.Series {
		label := ""
		if i%5 == 0 || i == len(c.Series)-1 {
			label = pt.Label
		}
		ticks = append(ticks, plot.Tick{Value: float64(i), Label: label})
		if pt.Value == nil {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(i), Y: float64(*pt.Value)})
	}
	if len(xys) == 0 {
		return ErrNoChart
	}

	p := plot.New()
	p.Title.Text = c.Name
	p.Y.Label.Text = "Avg sell price"
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = gpTicks{}

	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = lineColor
	line.Width = vg.Points(2)

	dots, err := plotter.NewScatter(xys)
	if err != nil {
		return err
	}
	dots.Color = lineColor
	dots.Radius = vg.Points(2)

	p.Add(plotter.NewGrid(), line, dots)

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// gpTicks labels the price axis the same way the list abbreviates numbers.
type gpTicks struct{}

func (gpTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = engine.Simplify(int64(ticks[i].Value))
		}
	}
	return ticks
}
