// SPDX-License-Identifier: MIT

package jcampdx

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/524D/metabodecon"
)

// ReadFile parses a JCAMP-DX text file and returns the Spectrum it
// encodes, using boundaries as the signal region.
func ReadFile(path string, boundaries [2]float64) (*metabodecon.Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &metabodecon.Error{Kind: metabodecon.MissingData, Stage: "jcampdx", Msg: path}
		}
		return nil, &metabodecon.Error{Kind: metabodecon.MalformedData, Stage: "jcampdx", Msg: path, Cause: err}
	}
	defer f.Close()
	return Read(f, boundaries)
}

// ldrKey normalizes a JCAMP-DX labeled-data-record key the way the
// format requires when matching: letters are uppercased, and spaces,
// dashes, underscores, and slashes are insignificant.
func ldrKey(raw string) string {
	raw = strings.ToUpper(raw)
	var b strings.Builder
	for _, r := range raw {
		switch r {
		case ' ', '-', '_', '/':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Read parses JCAMP-DX content from r.
func Read(r io.Reader, boundaries [2]float64) (*metabodecon.Spectrum, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	headers := make(map[string]string)
	var dataLines []string
	inData := false

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "$$") {
			continue
		}
		if inData {
			if strings.HasPrefix(trimmed, "##END") {
				inData = false
				continue
			}
			dataLines = append(dataLines, trimmed)
			continue
		}
		if !strings.HasPrefix(trimmed, "##") {
			continue
		}
		key, value, ok := splitLDR(trimmed)
		if !ok {
			continue
		}
		if ldrKey(key) == "XYDATA" {
			inData = true
			continue
		}
		headers[ldrKey(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, &metabodecon.Error{Kind: metabodecon.MalformedData, Stage: "jcampdx", Cause: err}
	}

	firstX, err := requireHeaderFloat(headers, "FIRSTX")
	if err != nil {
		return nil, err
	}
	lastX, err := requireHeaderFloat(headers, "LASTX")
	if err != nil {
		return nil, err
	}
	nPoints, err := requireHeaderInt(headers, "NPOINTS")
	if err != nil {
		return nil, err
	}
	xFactor := headerFloatOr(headers, "XFACTOR", 1)
	yFactor := headerFloatOr(headers, "YFACTOR", 1)

	// FIRSTX/LASTX are already expressed in real axis units; XFACTOR only
	// rescales the raw checkpoint integers packed into the XYDATA table
	// itself, which decodeXYData uses to sanity-check each line's
	// leading X value against the axis it's about to reconstruct.
	step := 0.0
	if nPoints > 1 {
		step = (lastX - firstX) / float64(nPoints-1)
	}

	y, err := decodeXYData(dataLines, xFactor, yFactor, firstX, step)
	if err != nil {
		return nil, err
	}
	if len(y) != nPoints {
		return nil, errMalformed("NPOINTS disagrees with decoded Y vector length")
	}

	x := make([]float64, nPoints)
	for i := range x {
		x[i] = firstX + step*float64(i)
	}

	meta := metabodecon.Metadata{
		Nucleus:          headers[".OBSERVENUCLEUS"],
		CarrierFrequency: headerFloatOr(headers, ".OBSERVEFREQUENCY", 0),
	}

	return metabodecon.NewSpectrumWithMetadata(x, y, boundaries[0], boundaries[1], meta)
}

// checkpointTolerance bounds how far a line's leading X checkpoint may
// drift from the axis position decodeXYData expects it to resume at,
// as a fraction of the nominal step.
const checkpointTolerance = 0.5

// decodeXYData decodes the body of an XYDATA block: each line begins
// with a checkpoint X value, scaled by xFactor, which must agree with
// the axis position the running Y count predicts; the rest of the line
// is one or more encoded Y values, optionally spanning DIF/DUP state
// across lines.
func decodeXYData(lines []string, xFactor, yFactor, firstX, step float64) ([]float64, error) {
	var y []float64
	lastAbs := 0.0

	for _, line := range lines {
		fields := strings.SplitN(line, " ", 2)
		if len(fields) != 2 {
			return nil, errMalformed("XYDATA line missing a leading X checkpoint: " + line)
		}
		checkpoint, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, errMalformed("XYDATA checkpoint is not numeric: " + fields[0])
		}
		if step != 0 {
			expected := firstX + step*float64(len(y))
			if math.Abs(checkpoint*xFactor-expected) > checkpointTolerance*math.Abs(step) {
				return nil, errMalformed("XYDATA checkpoint does not match the expected axis position")
			}
		}

		vals, newLast, err := decodeYLine(fields[1], lastAbs)
		if err != nil {
			return nil, err
		}
		lastAbs = newLast
		for _, v := range vals {
			y = append(y, v*yFactor)
		}
	}
	return y, nil
}

func splitLDR(line string) (key, value string, ok bool) {
	line = strings.TrimPrefix(line, "##")
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], strings.TrimSpace(line[idx+1:]), true
}

func requireHeaderFloat(h map[string]string, key string) (float64, error) {
	raw, ok := h[key]
	if !ok {
		return 0, errMissing(key)
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, errMalformed(key + " is empty")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, errMalformed(key + ": " + raw)
	}
	return v, nil
}

func requireHeaderInt(h map[string]string, key string) (int, error) {
	f, err := requireHeaderFloat(h, key)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func headerFloatOr(h map[string]string, key string, fallback float64) float64 {
	raw, ok := h[key]
	if !ok {
		return fallback
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return fallback
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fallback
	}
	return v
}
