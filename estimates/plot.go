package estimates

import (
	"image/color"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	observationColor = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	trainingColor    = color.RGBA{R: 20, G: 80, B: 200, A: 255}
	testingColor     = color.RGBA{R: 200, G: 30, B: 30, A: 255}
)

// Plot draws the observations of both splits and the estimates of each,
// indexed by position in the sequenced data.
func Plot(title string, training, testing []*Record) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "index"
	p.Y.Label.Text = "value"
	p.Add(plotter.NewGrid())

	all := append(append([]*Record{}, training...), testing...)
	observed := make(plotter.XYs, len(all))
	for i, r := range all {
		observed[i] = plotter.XY{X: float64(i), Y: r.Observation}
	}
	line, err := plotter.NewLine(observed)
	if err != nil {
		return nil, errors.Wrap(err, "plotting observations")
	}
	line.Color = observationColor
	line.Width = vg.Points(1)
	p.Add(line)
	p.Legend.Add("observation", line)

	offset := 0
	for _, part := range []struct {
		name    string
		records []*Record
		color   color.Color
	}{
		{Training, training, trainingColor},
		{Testing, testing, testingColor},
	} {
		if len(part.records) == 0 {
			continue
		}
		xys := make(plotter.XYs, len(part.records))
		for i, r := range part.records {
			xys[i] = plotter.XY{X: float64(offset + i), Y: r.Estimate}
		}
		offset += len(part.records)

		est, err := plotter.NewLine(xys)
		if err != nil {
			return nil, errors.Wrapf(err, "plotting %s estimates", part.name)
		}
		est.Color = part.color
		est.Width = vg.Points(0.8)
		p.Add(est)
		p.Legend.Add(part.name+" estimate", est)
	}
	return p, nil
}

func (w *Writer) writePlot(dir, title string, training, testing []*Record) error {
	p, err := Plot(title, training, testing)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(10*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return errors.Wrap(err, "rendering plot")
	}

	file := filepath.Join(dir, PlotFile)
	f, err := w.fs.Create(file)
	if err != nil {
		return errors.Wrapf(err, "creating %s", file)
	}

	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", file)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "closing %s", file)
	}
	w.logger.Info("wrote plot", zap.String("file", file))
	return nil
}
