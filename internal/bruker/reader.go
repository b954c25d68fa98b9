// SPDX-License-Identifier: MIT

package bruker

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/524D/metabodecon"
)

// ReadSpectrum locates the processed data file under
// path/<experimentNumber>/pdata/<processingNumber>/1r, parses the
// companion acqus/procs parameter files for spectral width, offset,
// nucleus, and carrier frequency, and synthesizes a Spectrum with the
// given signal boundaries.
func ReadSpectrum(path string, experimentNumber, processingNumber int, boundaries [2]float64) (*metabodecon.Spectrum, error) {
	expDir := filepath.Join(path, strconv.Itoa(experimentNumber))
	acqusPath := filepath.Join(expDir, "acqus")
	procsDir := filepath.Join(expDir, "pdata", strconv.Itoa(processingNumber))
	procsPath := filepath.Join(procsDir, "procs")
	dataPath := filepath.Join(procsDir, "1r")

	p, err := readParams(acqusPath, procsPath)
	if err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(dataPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &metabodecon.Error{Kind: metabodecon.MissingData, Stage: "bruker",
				Msg: dataPath}
		}
		return nil, &metabodecon.Error{Kind: metabodecon.MalformedData, Stage: "bruker",
			Msg: dataPath, Cause: err}
	}

	y, err := decodeSamples(raw, p)
	if err != nil {
		return nil, err
	}

	x := make([]float64, p.si)
	step := p.sw / float64(p.si-1)
	for i := range x {
		// OFFSET is the maximum chemical shift; the axis rises from
		// OFFSET-SW to OFFSET, ascending with i, matching the order the
		// samples are reversed into by decodeSamples.
		x[i] = p.offset - p.sw + step*float64(i)
	}

	meta := metabodecon.Metadata{
		Nucleus:          p.nucleus,
		CarrierFrequency: p.sfo1,
	}

	return metabodecon.NewSpectrumWithMetadata(x, y, boundaries[0], boundaries[1], meta)
}

// decodeSamples interprets the raw "1r" bytes according to the byte
// order and word size declared in procs. DTYPP==0 means the samples
// are 32-bit integers, rescaled by 2^NC_proc; any other DTYPP value
// means they are already 64-bit floats, which TopSpin never rescales.
// The file stores samples in descending chemical-shift order, so the
// decoded slice is reversed to align with the ascending axis built by
// ReadSpectrum.
func decodeSamples(raw []byte, p params) ([]float64, error) {
	var order binary.ByteOrder = binary.LittleEndian
	if p.byteOrder == 1 {
		order = binary.BigEndian
	}

	wordSize := 4
	if p.dataType != 0 {
		wordSize = 8
	}

	if len(raw) < p.si*wordSize {
		return nil, &metabodecon.Error{Kind: metabodecon.MalformedData, Stage: "bruker",
			Msg: fmt.Sprintf("expected %d bytes, got %d", p.si*wordSize, len(raw))}
	}

	scale := 1.0
	if wordSize == 4 && p.ncProc != 0 {
		scale = pow2(p.ncProc)
	}

	y := make([]float64, p.si)
	for i := 0; i < p.si; i++ {
		off := i * wordSize
		switch wordSize {
		case 4:
			y[i] = float64(int32(order.Uint32(raw[off:off+4]))) * scale
		case 8:
			bits := order.Uint64(raw[off : off+8])
			y[i] = math.Float64frombits(bits)
		}
	}
	for i, j := 0, len(y)-1; i < j; i, j = i+1, j-1 {
		y[i], y[j] = y[j], y[i]
	}
	return y, nil
}

func pow2(exp int) float64 {
	v := 1.0
	if exp >= 0 {
		for i := 0; i < exp; i++ {
			v *= 2
		}
		return v
	}
	for i := 0; i < -exp; i++ {
		v /= 2
	}
	return v
}

// DiscoverSet enumerates sibling experiment directories under a
// TopSpin dataset root, returning their numeric names in ascending
// order.
func DiscoverSet(root string) ([]int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &metabodecon.Error{Kind: metabodecon.MissingData, Stage: "bruker", Msg: root, Cause: err}
	}

	var experiments []int
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		if _, err := os.Stat(filepath.Join(root, e.Name(), "acqus")); err != nil {
			continue
		}
		experiments = append(experiments, n)
	}
	sort.Ints(experiments)
	return experiments, nil
}
