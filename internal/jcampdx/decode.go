// SPDX-License-Identifier: MIT

package jcampdx

import (
	"strconv"
	"strings"
)

// decodeYLine decodes the Y-value portion of one XYDATA line, honoring
// the AFFN, PAC, SQZ, DIF, and DUP pseudo-digit encodings defined by the
// JCAMP-DX 5.01 specification. lastAbs is the last absolute value
// decoded on a prior line (DIF values continue across line breaks);
// it returns the decoded values and the updated running absolute value.
func decodeYLine(s string, lastAbs float64) ([]float64, float64, error) {
	if !strings.ContainsAny(s, sqzLeaders+difLeaders+dupLeaders) {
		vals, err := decodeAFFNorPAC(s)
		if len(vals) > 0 {
			lastAbs = vals[len(vals)-1]
		}
		return vals, lastAbs, err
	}
	return decodeCompressed(s, lastAbs)
}

const sqzLeaders = "@ABCDEFGHIabcdefghi"
const difLeaders = "%JKLMNOPQRjklmnopqr"
const dupLeaders = "STUVWXYZ"

// sqzDigit returns the signed leading digit for a SQZ or DIF leader
// character, and ok=false if ch is not a recognized leader.
func sqzDigit(ch byte) (digit int, ok bool) {
	switch {
	case ch == '@' || ch == '%':
		return 0, true
	case ch >= 'A' && ch <= 'I':
		return int(ch-'A') + 1, true
	case ch >= 'a' && ch <= 'i':
		return -(int(ch-'a') + 1), true
	case ch >= 'J' && ch <= 'R':
		return int(ch-'J') + 1, true
	case ch >= 'j' && ch <= 'r':
		return -(int(ch-'j') + 1), true
	}
	return 0, false
}

func dupCount(ch byte) (count int, ok bool) {
	if ch >= 'S' && ch <= 'Z' {
		return int(ch-'S') + 1, true
	}
	return 0, false
}

func isDifLeader(ch byte) bool { return ch == '%' || (ch >= 'J' && ch <= 'R') || (ch >= 'j' && ch <= 'r') }

// decodeCompressed scans a SQZ/DIF/DUP-encoded Y string left to right.
func decodeCompressed(s string, lastAbs float64) ([]float64, float64, error) {
	var values []float64
	var lastValue, lastDiff float64
	haveLastValue, lastWasDif := false, false

	i := 0
	for i < len(s) {
		ch := s[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == ',':
			i++
			continue
		case strings.IndexByte(sqzLeaders, ch) >= 0 && !isDifLeader(ch):
			digit, _ := sqzDigit(ch)
			tail, n := readDigitTail(s[i+1:])
			i += 1 + n
			v, err := composeValue(digit, tail)
			if err != nil {
				return nil, lastAbs, err
			}
			lastAbs = v
			lastValue = v
			haveLastValue, lastWasDif = true, false
			values = append(values, v)
		case isDifLeader(ch):
			digit, _ := sqzDigit(ch)
			tail, n := readDigitTail(s[i+1:])
			i += 1 + n
			d, err := composeValue(digit, tail)
			if err != nil {
				return nil, lastAbs, err
			}
			lastAbs += d
			lastValue = lastAbs
			lastDiff = d
			haveLastValue, lastWasDif = true, true
			values = append(values, lastAbs)
		case strings.IndexByte(dupLeaders, ch) >= 0:
			digit, _ := dupCount(ch)
			tail, n := readDigitTail(s[i+1:])
			i += 1 + n
			c, err := composeValue(digit, tail)
			if err != nil {
				return nil, lastAbs, err
			}
			if !haveLastValue {
				return nil, lastAbs, errMalformed("DUP with no preceding value")
			}
			// After a DIF token the difference is repeated, not the value.
			for k := 0; k < int(c)-1; k++ {
				if lastWasDif {
					lastAbs += lastDiff
					lastValue = lastAbs
				}
				values = append(values, lastValue)
			}
		default:
			return nil, lastAbs, errMalformed("unrecognized character in compressed Y data")
		}
	}

	return values, lastAbs, nil
}

// readDigitTail consumes a run of plain digits (and an optional decimal
// point) following a SQZ/DIF leader, returning the tail as a string and
// the number of bytes consumed.
func readDigitTail(s string) (string, int) {
	n := 0
	for n < len(s) && (s[n] >= '0' && s[n] <= '9' || s[n] == '.') {
		n++
	}
	return s[:n], n
}

func composeValue(leadingDigit int, tail string) (float64, error) {
	sign := 1.0
	if leadingDigit < 0 {
		sign = -1.0
		leadingDigit = -leadingDigit
	}
	literal := strconv.Itoa(leadingDigit) + tail
	v, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return 0, errMalformed("invalid numeric literal " + literal)
	}
	return sign * v, nil
}

// decodeAFFNorPAC splits a whitespace- or sign-delimited run of plain
// (AFFN) or packed (PAC) numbers.
func decodeAFFNorPAC(s string) ([]float64, error) {
	fields := strings.Fields(s)
	if len(fields) > 1 {
		values := make([]float64, 0, len(fields))
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, errMalformed("invalid AFFN literal " + f)
			}
			values = append(values, v)
		}
		return values, nil
	}

	// A single packed run: split on sign boundaries.
	var values []float64
	var current strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if (ch == '+' || ch == '-') && current.Len() > 0 {
			v, err := strconv.ParseFloat(current.String(), 64)
			if err != nil {
				return nil, errMalformed("invalid PAC literal " + current.String())
			}
			values = append(values, v)
			current.Reset()
		}
		current.WriteByte(ch)
	}
	if current.Len() > 0 {
		v, err := strconv.ParseFloat(current.String(), 64)
		if err != nil {
			return nil, errMalformed("invalid PAC literal " + current.String())
		}
		values = append(values, v)
	}
	return values, nil
}
