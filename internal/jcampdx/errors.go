// SPDX-License-Identifier: MIT

// Package jcampdx reads JCAMP-DX NMR spectra (ASTM E1947 / IUPAC 5.01
// text format) into metabodecon.Spectrum values.
package jcampdx

import "github.com/524D/metabodecon"

func errMalformed(msg string) error {
	return &metabodecon.Error{Kind: metabodecon.MalformedData, Stage: "jcampdx", Msg: msg}
}

func errMissing(msg string) error {
	return &metabodecon.Error{Kind: metabodecon.MissingMetadata, Stage: "jcampdx", Msg: msg}
}
