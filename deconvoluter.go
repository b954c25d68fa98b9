// SPDX-License-Identifier: MIT

package metabodecon

import (
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// Deconvoluter orchestrates smoothing, peak detection, peak selection,
// and fitting into a single Spectrum -> Deconvolution pipeline. It is a
// builder: construct with NewDeconvoluter, configure with the With*
// methods, then call DeconvoluteSpectrum or DeconvoluteSpectra.
type Deconvoluter struct {
	smoother Smoother
	selector Selector
	fitter   Fitter
	ignore   IgnoreRegions
	threads  int
	log      *logrus.Logger
}

// NewDeconvoluter returns a Deconvoluter configured with the defaults
// carried from the reference implementation: MovingAverage(window=5,
// iterations=2) smoothing, a NoiseScoreSelector at the default
// threshold, and an analytical Fitter with the default iteration count.
func NewDeconvoluter() *Deconvoluter {
	return &Deconvoluter{
		smoother: MovingAverage{Window: 5, Iterations: 2},
		selector: NoiseScoreSelector{Threshold: DefaultNoiseScoreThreshold},
		fitter:   Fitter{Iterations: DefaultFittingIterations},
		log:      logrus.New(),
	}
}

// WithSmoother selects the smoothing strategy.
func (d *Deconvoluter) WithSmoother(s Smoother) *Deconvoluter {
	d.smoother = s
	return d
}

// WithSelector selects the peak selection strategy.
func (d *Deconvoluter) WithSelector(s Selector) *Deconvoluter {
	d.selector = s
	return d
}

// WithFitter selects the fitter settings.
func (d *Deconvoluter) WithFitter(f Fitter) *Deconvoluter {
	d.fitter = f
	return d
}

// WithIgnoreRegions sets the axis intervals skipped during selection
// and error calculation.
func (d *Deconvoluter) WithIgnoreRegions(regions [][2]float64) (*Deconvoluter, error) {
	ir, err := NewIgnoreRegions(regions)
	if err != nil {
		return d, err
	}
	d.ignore = ir
	return d, nil
}

// WithThreads overrides the parallelism width used by batch calls and
// by the parallel superposition/error-aggregation paths. 0 or negative
// means "use runtime.NumCPU()".
func (d *Deconvoluter) WithThreads(n int) *Deconvoluter {
	d.threads = n
	return d
}

// WithLogger attaches a logrus logger for diagnostic messages (the
// candidate and selected peak counts, at Debug level). A nil logger
// disables logging.
func (d *Deconvoluter) WithLogger(log *logrus.Logger) *Deconvoluter {
	d.log = log
	return d
}

func (d *Deconvoluter) logger() *logrus.Logger {
	if d.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel + 1) // effectively silent
		return l
	}
	return d.log
}

func (d *Deconvoluter) threadCount() int {
	if d.threads > 0 {
		return d.threads
	}
	return runtime.NumCPU()
}

// DeconvoluteSpectrum runs smoother -> detector -> selector -> fitter on
// a single spectrum and returns the resulting Deconvolution.
func (d *Deconvoluter) DeconvoluteSpectrum(s *Spectrum) (*Deconvolution, error) {
	log := d.logger()

	smoothed, err := d.smoother.Smooth(s.Intensities())
	if err != nil {
		return nil, err
	}

	iL, iR := s.SignalRegion()
	d2 := secondDifference(smoothed)
	candidates := detectPeaks(smoothed, d2, iL, iR)
	log.WithField("candidates", len(candidates)).Debug("peak detection complete")

	selected, err := d.selector.Select(smoothed, d2, candidates, iL, iR, d.ignore, s.ChemicalShifts())
	if err != nil {
		return nil, err
	}
	log.WithField("selected", len(selected)).Debug("peak selection complete")

	lorentzians, err := d.fitter.Fit(s.ChemicalShifts(), smoothed, selected)
	if err != nil {
		return nil, err
	}
	if len(lorentzians) == 0 {
		return nil, newErr(NoPeaksDetected, "fitting", "every selected peak was rejected by the fitter")
	}

	mse := meanSquaredError(s.ChemicalShifts(), s.Intensities(), lorentzians, iL, iR, d.ignore, d.threadCount())

	return &Deconvolution{Lorentzians: lorentzians, MSE: mse}, nil
}

// DeconvoluteSpectra runs DeconvoluteSpectrum independently over each
// spectrum, sequentially, preserving input order.
func (d *Deconvoluter) DeconvoluteSpectra(spectra []*Spectrum) ([]*Deconvolution, error) {
	out := make([]*Deconvolution, len(spectra))
	for i, s := range spectra {
		dec, err := d.DeconvoluteSpectrum(s)
		if err != nil {
			return nil, err
		}
		out[i] = dec
	}
	return out, nil
}

// DeconvoluteSpectraParallel is DeconvoluteSpectra with each spectrum
// processed on its own goroutine, up to the configured thread count.
// Results are collected in input order irrespective of completion
// order or thread count.
func (d *Deconvoluter) DeconvoluteSpectraParallel(spectra []*Spectrum) ([]*Deconvolution, error) {
	out := make([]*Deconvolution, len(spectra))
	errs := make([]error, len(spectra))

	sem := make(chan struct{}, d.threadCount())
	var wg sync.WaitGroup
	for i, s := range spectra {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, s *Spectrum) {
			defer wg.Done()
			defer func() { <-sem }()
			dec, err := d.DeconvoluteSpectrum(s)
			out[i] = dec
			errs[i] = err
		}(i, s)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// meanSquaredError computes the mean of squared residuals between
// measured and reconstructed intensities over [iL, iR], excluding
// indices whose chemical shift falls in an ignore region. The
// accumulation is a deterministic tree reduction over fixed-size
// chunks, giving numerically near-identical results across thread
// counts.
func meanSquaredError(x, y []float64, lorentzians []Lorentzian, iL, iR int, ignore IgnoreRegions, threads int) float64 {
	type partial struct {
		sum   float64
		count int
	}

	indices := make([]int, 0, iR-iL+1)
	for i := iL; i <= iR; i++ {
		if !ignore.Contains(x[i]) {
			indices = append(indices, i)
		}
	}
	if len(indices) == 0 {
		return 0
	}

	dec := &Deconvolution{Lorentzians: lorentzians}

	if threads <= 1 || len(indices) < threads {
		var p partial
		for _, i := range indices {
			d := y[i] - dec.Superposition(x[i])
			p.sum += d * d
			p.count++
		}
		return p.sum / float64(p.count)
	}

	chunk := (len(indices) + threads - 1) / threads
	partials := make([]partial, threads)
	var wg sync.WaitGroup
	for t := 0; t < threads; t++ {
		start := t * chunk
		if start >= len(indices) {
			continue
		}
		end := start + chunk
		if end > len(indices) {
			end = len(indices)
		}
		wg.Add(1)
		go func(t, start, end int) {
			defer wg.Done()
			var p partial
			for _, i := range indices[start:end] {
				d := y[i] - dec.Superposition(x[i])
				p.sum += d * d
				p.count++
			}
			partials[t] = p
		}(t, start, end)
	}
	wg.Wait()

	// Tree reduction over the fixed chunk layout: pairwise combine so
	// the result does not depend on goroutine completion order, only on
	// the (deterministic) chunk boundaries.
	for step := 1; step < len(partials); step *= 2 {
		for i := 0; i+step < len(partials); i += 2 * step {
			partials[i].sum += partials[i+step].sum
			partials[i].count += partials[i+step].count
		}
	}

	return partials[0].sum / float64(partials[0].count)
}
