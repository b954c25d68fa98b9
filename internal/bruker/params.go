// SPDX-License-Identifier: MIT

// Package bruker reads Bruker TopSpin processed-data directories into
// metabodecon.Spectrum values.
package bruker

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/524D/metabodecon"
)

// params holds the acqus/procs parameters this reader needs to
// reconstruct a chemical-shift axis and calibrate intensities.
type params struct {
	nucleus   string
	sfo1      float64 // carrier frequency, MHz (acqus, ##$SFO1)
	sw        float64 // spectral width, ppm (acqus, ##$SW)
	offset    float64 // maximum chemical shift, ppm (procs, ##$OFFSET)
	si        int     // number of points (procs, ##$SI)
	byteOrder int     // 0 = little endian, 1 = big endian (procs, ##$BYTORDP)
	dataType  int     // 0 = int32, nonzero = float64 (procs, ##$DTYPP)
	ncProc    int     // intensity scaling exponent (procs, ##$NC_proc)
}

var paramLine = regexp.MustCompile(`^##\$([A-Za-z0-9_]+)= ?(.+)$`)

func missing(path, name string) error {
	return &metabodecon.Error{Kind: metabodecon.MissingMetadata, Stage: "bruker",
		Msg: fmt.Sprintf("%s not found in %s", name, path)}
}

func malformed(path, name string, cause error) error {
	return &metabodecon.Error{Kind: metabodecon.MalformedMetadata, Stage: "bruker",
		Msg: fmt.Sprintf("%s in %s", name, path), Cause: cause}
}

// parseParamFile reads a Bruker text parameter file (acqus or procs)
// into a flat name -> value map, matching lines of the form
// "##$NAME= value".
func parseParamFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, missing(path, "file")
		}
		return nil, malformed(path, "file", err)
	}

	values := make(map[string]string)
	for _, line := range strings.Split(string(data), "\n") {
		m := paramLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		values[m[1]] = strings.Trim(m[2], `<>" `)
	}
	return values, nil
}

func requireFloat(values map[string]string, path, name string) (float64, error) {
	raw, ok := values[name]
	if !ok {
		return 0, missing(path, name)
	}
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return 0, malformed(path, name, fmt.Errorf("empty value"))
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, malformed(path, name, err)
	}
	return v, nil
}

func requireInt(values map[string]string, path, name string) (int, error) {
	f, err := requireFloat(values, path, name)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func requireString(values map[string]string, path, name string) (string, error) {
	raw, ok := values[name]
	if !ok {
		return "", missing(path, name)
	}
	return raw, nil
}

func readParams(acqusPath, procsPath string) (params, error) {
	acqus, err := parseParamFile(acqusPath)
	if err != nil {
		return params{}, err
	}
	procs, err := parseParamFile(procsPath)
	if err != nil {
		return params{}, err
	}

	var p params
	if p.sfo1, err = requireFloat(acqus, acqusPath, "SFO1"); err != nil {
		return params{}, err
	}
	if p.nucleus, err = requireString(acqus, acqusPath, "NUC1"); err != nil {
		return params{}, err
	}
	if p.sw, err = requireFloat(acqus, acqusPath, "SW"); err != nil {
		return params{}, err
	}
	if p.offset, err = requireFloat(procs, procsPath, "OFFSET"); err != nil {
		return params{}, err
	}
	if p.si, err = requireInt(procs, procsPath, "SI"); err != nil {
		return params{}, err
	}
	if p.byteOrder, err = requireInt(procs, procsPath, "BYTORDP"); err != nil {
		return params{}, err
	}
	if p.dataType, err = requireInt(procs, procsPath, "DTYPP"); err != nil {
		return params{}, err
	}
	if p.ncProc, err = requireInt(procs, procsPath, "NC_proc"); err != nil {
		return params{}, err
	}
	if p.si <= 0 {
		return params{}, malformed(procsPath, "SI", fmt.Errorf("must be positive, got %d", p.si))
	}
	return p, nil
}
