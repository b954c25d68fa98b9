// SPDX-License-Identifier: MIT

package serialize

import (
	"encoding/json"

	"github.com/524D/metabodecon"
)

// SpectrumToJSON encodes a Spectrum as human-readable JSON.
func SpectrumToJSON(s *metabodecon.Spectrum) ([]byte, error) {
	b, err := json.MarshalIndent(toSpectrumDTO(s), "", "  ")
	if err != nil {
		return nil, jsonErr(err)
	}
	return b, nil
}

// SpectrumFromJSON decodes a Spectrum previously written by
// SpectrumToJSON.
func SpectrumFromJSON(data []byte) (*metabodecon.Spectrum, error) {
	var dto spectrumDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, jsonErr(err)
	}
	s, err := dto.toSpectrum()
	if err != nil {
		return nil, jsonErr(err)
	}
	return s, nil
}

// DeconvolutionToJSON encodes a Deconvolution as human-readable JSON.
func DeconvolutionToJSON(d *metabodecon.Deconvolution) ([]byte, error) {
	b, err := json.MarshalIndent(toDeconvolutionDTO(d), "", "  ")
	if err != nil {
		return nil, jsonErr(err)
	}
	return b, nil
}

// DeconvolutionFromJSON decodes a Deconvolution previously written by
// DeconvolutionToJSON.
func DeconvolutionFromJSON(data []byte) (*metabodecon.Deconvolution, error) {
	var dto deconvolutionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, jsonErr(err)
	}
	return dto.toDeconvolution(), nil
}

func jsonErr(cause error) error {
	return &metabodecon.Error{Kind: metabodecon.SerializationError, Stage: "serialize", Cause: cause}
}
