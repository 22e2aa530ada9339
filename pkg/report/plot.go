package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chazu/boxcloud/pkg/decompose"
)

// ErrNoData is returned when there are no boxes to plot.
var ErrNoData = errors.New("report: no boxes to plot")

// Histogram saves a histogram of box volumes to path. The image format
// follows the file extension (png, svg, pdf).
func Histogram(boxes []decompose.Box, bins int, path string) error {
	if len(boxes) == 0 {
		return ErrNoData
	}
	if bins <= 0 {
		return fmt.Errorf("report: histogram bins must be positive, got %d", bins)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Box volumes (%d boxes)", len(boxes))
	p.X.Label.Text = "volume (cells)"
	p.Y.Label.Text = "boxes"

	h, err := plotter.NewHist(plotter.Values(Volumes(boxes)), bins)
	if err != nil {
		return fmt.Errorf("build histogram: %w", err)
	}
	h.FillColor = color.RGBA{R: 0x7c, G: 0x3a, B: 0xed, A: 0xff}
	p.Add(h)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save histogram: %w", err)
	}
	return nil
}
