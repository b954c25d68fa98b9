// SPDX-License-Identifier: MIT

// Command metabodecon fits Lorentzian line shapes to one Bruker or
// JCAMP-DX NMR spectrum (decon) or every experiment in a Bruker dataset
// directory (batch), writing each resulting Deconvolution as JSON.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/524D/metabodecon"
	"github.com/524D/metabodecon/internal/bruker"
	"github.com/524D/metabodecon/internal/jcampdx"
	"github.com/524D/metabodecon/serialize"
)

// progName is the application name shown in the CLI's help output.
const progName = "metabodecon"

// Command-line parameters shared by decon and batch, mirroring the
// flag-grouping style of mzRecal's params struct but expressed as
// cli.Flag destinations instead of the stdlib flag package.
type params struct {
	format     string
	window     int
	iterations int
	threshold  float64
	fitIters   int
	threads    int
	boundaryLo float64
	boundaryHi float64
	experiment int
	processing int
	out        string
	verbose    bool
}

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	app := &cli.App{
		Name:                 progName,
		Usage:                "Fit Lorentzian line shapes to NMR spectra",
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			deconCommand(log),
			batchCommand(log),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags(p *params) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "input format: bruker or jcampdx", Value: "bruker", Destination: &p.format},
		&cli.IntFlag{Name: "window", Usage: "moving-average smoothing window", Value: 5, Destination: &p.window},
		&cli.IntFlag{Name: "smooth-iterations", Usage: "moving-average passes", Value: 2, Destination: &p.iterations},
		&cli.Float64Flag{Name: "threshold", Usage: "noise-score selection threshold", Value: metabodecon.DefaultNoiseScoreThreshold, Destination: &p.threshold},
		&cli.IntFlag{Name: "fit-iterations", Usage: "fitter refinement iterations", Value: metabodecon.DefaultFittingIterations, Destination: &p.fitIters},
		&cli.IntFlag{Name: "threads", Usage: "parallelism width (0 = NumCPU)", Destination: &p.threads},
		&cli.Float64Flag{Name: "boundary-low", Usage: "signal region lower chemical shift", Required: true, Destination: &p.boundaryLo},
		&cli.Float64Flag{Name: "boundary-high", Usage: "signal region upper chemical shift", Required: true, Destination: &p.boundaryHi},
		&cli.IntFlag{Name: "experiment", Usage: "Bruker experiment number", Value: 1, Destination: &p.experiment},
		&cli.IntFlag{Name: "processing", Usage: "Bruker processing number", Value: 1, Destination: &p.processing},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file for decon (default <input>.deconvolution.json) or output directory for batch (default the dataset root)", Destination: &p.out},
		&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Destination: &p.verbose},
	}
}

func (p *params) deconvoluter(log *logrus.Logger) (*metabodecon.Deconvoluter, error) {
	d := metabodecon.NewDeconvoluter().
		WithSmoother(metabodecon.MovingAverage{Window: p.window, Iterations: p.iterations}).
		WithSelector(metabodecon.NoiseScoreSelector{Threshold: p.threshold}).
		WithFitter(metabodecon.Fitter{Iterations: p.fitIters}).
		WithThreads(p.threads).
		WithLogger(log)
	return d, nil
}

func (p *params) readSpectrum(path string) (*metabodecon.Spectrum, error) {
	boundaries := [2]float64{p.boundaryLo, p.boundaryHi}
	switch p.format {
	case "bruker":
		return bruker.ReadSpectrum(path, p.experiment, p.processing, boundaries)
	case "jcampdx":
		return jcampdx.ReadFile(path, boundaries)
	default:
		return nil, fmt.Errorf("unrecognized format %q", p.format)
	}
}

func deconCommand(log *logrus.Logger) *cli.Command {
	var p params
	return &cli.Command{
		Name:  "decon",
		Usage: "Deconvolute a single spectrum",
		Flags: commonFlags(&p),
		Action: func(c *cli.Context) error {
			if p.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			path := c.Args().First()
			if path == "" {
				return fmt.Errorf("decon: missing spectrum path argument")
			}

			s, err := p.readSpectrum(path)
			if err != nil {
				return err
			}
			d, err := p.deconvoluter(log)
			if err != nil {
				return err
			}
			result, err := d.DeconvoluteSpectrum(s)
			if err != nil {
				return err
			}

			out := p.out
			if out == "" {
				out = path + ".deconvolution.json"
			}
			data, err := serialize.DeconvolutionToJSON(result)
			if err != nil {
				return err
			}
			log.WithFields(logrus.Fields{"peaks": len(result.Lorentzians), "mse": result.MSE}).Info("deconvolution complete")
			return os.WriteFile(out, data, 0o644)
		},
	}
}

func batchCommand(log *logrus.Logger) *cli.Command {
	var p params
	return &cli.Command{
		Name:  "batch",
		Usage: "Deconvolute every experiment in a Bruker dataset root",
		Flags: commonFlags(&p),
		Action: func(c *cli.Context) error {
			if p.verbose {
				log.SetLevel(logrus.DebugLevel)
			}
			root := c.Args().First()
			if root == "" {
				return fmt.Errorf("batch: missing dataset root argument")
			}
			if p.format != "bruker" {
				return fmt.Errorf("batch: only bruker datasets support directory discovery")
			}

			experiments, err := bruker.DiscoverSet(root)
			if err != nil {
				return err
			}
			log.WithField("experiments", len(experiments)).Info("discovered experiments")

			spectra := make([]*metabodecon.Spectrum, 0, len(experiments))
			ids := make([]int, 0, len(experiments))
			for _, n := range experiments {
				s, err := bruker.ReadSpectrum(root, n, p.processing, [2]float64{p.boundaryLo, p.boundaryHi})
				if err != nil {
					log.WithError(err).WithField("experiment", n).Warn("skipping unreadable experiment")
					continue
				}
				spectra = append(spectra, s)
				ids = append(ids, n)
			}

			d, err := p.deconvoluter(log)
			if err != nil {
				return err
			}
			results, err := d.DeconvoluteSpectraParallel(spectra)
			if err != nil {
				return err
			}

			outDir := p.out
			if outDir == "" {
				outDir = root
			}
			for i, n := range ids {
				data, err := serialize.DeconvolutionToJSON(results[i])
				if err != nil {
					return err
				}
				out := filepath.Join(outDir, strconv.Itoa(n)+".deconvolution.json")
				if err := os.WriteFile(out, data, 0o644); err != nil {
					return err
				}
			}
			log.WithField("written", len(results)).Info("batch deconvolution complete")
			return nil
		},
	}
}
