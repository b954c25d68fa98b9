// SPDX-License-Identifier: MIT

// Package serialize persists and restores Spectrum and Deconvolution
// values as JSON and as a compact binary encoding. It is a collaborator
// of the core package, not part of it: the core never touches a file
// system or a byte stream.
package serialize

import (
	"github.com/524D/metabodecon"
)

// spectrumDTO is the serializable shape of a Spectrum. Spectrum itself
// keeps its fields private (it is a validated value, not a bag of
// public fields), so serialization goes through its accessors.
type spectrumDTO struct {
	ChemicalShifts    []float64
	Intensities       []float64
	BoundaryLow       float64
	BoundaryHigh      float64
	Nucleus           string
	CarrierFrequency  float64
	ReferenceCompound string
	Solvent           string
}

func toSpectrumDTO(s *metabodecon.Spectrum) spectrumDTO {
	a, b := s.SignalBoundaries()
	meta := s.Metadata()
	return spectrumDTO{
		ChemicalShifts:    s.ChemicalShifts(),
		Intensities:       s.Intensities(),
		BoundaryLow:       a,
		BoundaryHigh:      b,
		Nucleus:           meta.Nucleus,
		CarrierFrequency:  meta.CarrierFrequency,
		ReferenceCompound: meta.ReferenceCompound,
		Solvent:           meta.Solvent,
	}
}

func (dto spectrumDTO) toSpectrum() (*metabodecon.Spectrum, error) {
	meta := metabodecon.Metadata{
		Nucleus:           dto.Nucleus,
		CarrierFrequency:  dto.CarrierFrequency,
		ReferenceCompound: dto.ReferenceCompound,
		Solvent:           dto.Solvent,
	}
	return metabodecon.NewSpectrumWithMetadata(dto.ChemicalShifts, dto.Intensities, dto.BoundaryLow, dto.BoundaryHigh, meta)
}

// lorentzianDTO mirrors metabodecon.Lorentzian; Lorentzian's fields are
// already exported, but a DTO keeps the wire shape decoupled from the
// core type's internal layout.
type lorentzianDTO struct {
	ScaleFactor float64
	HalfWidth   float64
	MaximumPos  float64
}

type deconvolutionDTO struct {
	Lorentzians []lorentzianDTO
	MSE         float64
}

func toDeconvolutionDTO(d *metabodecon.Deconvolution) deconvolutionDTO {
	lors := make([]lorentzianDTO, len(d.Lorentzians))
	for i, l := range d.Lorentzians {
		lors[i] = lorentzianDTO{ScaleFactor: l.ScaleFactor, HalfWidth: l.HalfWidth, MaximumPos: l.MaximumPos}
	}
	return deconvolutionDTO{Lorentzians: lors, MSE: d.MSE}
}

func (dto deconvolutionDTO) toDeconvolution() *metabodecon.Deconvolution {
	lors := make([]metabodecon.Lorentzian, len(dto.Lorentzians))
	for i, l := range dto.Lorentzians {
		lors[i] = metabodecon.Lorentzian{ScaleFactor: l.ScaleFactor, HalfWidth: l.HalfWidth, MaximumPos: l.MaximumPos}
	}
	return &metabodecon.Deconvolution{Lorentzians: lors, MSE: dto.MSE}
}
