// SPDX-License-Identifier: MIT

package serialize

import (
	"bytes"
	"encoding/gob"

	"github.com/klauspost/compress/flate"

	"github.com/524D/metabodecon"
)

// SpectrumToBinary encodes a Spectrum as a gob stream compressed with
// DEFLATE (github.com/klauspost/compress/flate), for compact storage.
func SpectrumToBinary(s *metabodecon.Spectrum) ([]byte, error) {
	return encodeBinary(toSpectrumDTO(s))
}

// SpectrumFromBinary decodes a Spectrum previously written by
// SpectrumToBinary.
func SpectrumFromBinary(data []byte) (*metabodecon.Spectrum, error) {
	var dto spectrumDTO
	if err := decodeBinary(data, &dto); err != nil {
		return nil, err
	}
	s, err := dto.toSpectrum()
	if err != nil {
		return nil, jsonErr(err)
	}
	return s, nil
}

// DeconvolutionToBinary encodes a Deconvolution as a gob stream
// compressed with DEFLATE.
func DeconvolutionToBinary(d *metabodecon.Deconvolution) ([]byte, error) {
	return encodeBinary(toDeconvolutionDTO(d))
}

// DeconvolutionFromBinary decodes a Deconvolution previously written by
// DeconvolutionToBinary.
func DeconvolutionFromBinary(data []byte) (*metabodecon.Deconvolution, error) {
	var dto deconvolutionDTO
	if err := decodeBinary(data, &dto); err != nil {
		return nil, err
	}
	return dto.toDeconvolution(), nil
}

func encodeBinary(v interface{}) ([]byte, error) {
	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(v); err != nil {
		return nil, jsonErr(err)
	}

	var compressed bytes.Buffer
	w, err := flate.NewWriter(&compressed, flate.BestCompression)
	if err != nil {
		return nil, jsonErr(err)
	}
	if _, err := w.Write(raw.Bytes()); err != nil {
		return nil, jsonErr(err)
	}
	if err := w.Close(); err != nil {
		return nil, jsonErr(err)
	}
	return compressed.Bytes(), nil
}

func decodeBinary(data []byte, v interface{}) error {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()

	if err := gob.NewDecoder(r).Decode(v); err != nil {
		return jsonErr(err)
	}
	return nil
}
