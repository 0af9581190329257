// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Both modes are built once at init. An option set the library rejects
// is a programming error, so init panics rather than returning it.
var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

// mustEncMode configures Core Deterministic Encoding (RFC 8949 §4.2).
// Digests and other TextMarshalers encode as text strings, the same
// form they take in JSON documents.
func mustEncMode() cbor.EncMode {
	options := cbor.CoreDetEncOptions()
	options.TextMarshaler = cbor.TextMarshalerTextString
	mode, err := options.EncMode()
	if err != nil {
		panic("codec: encoder options: " + err.Error())
	}
	return mode
}

// mustDecMode accepts any well-formed CBOR and ignores unknown map
// keys, so a record written by a newer attrspec still reads. Values
// decoded into any get string-keyed maps, which encoding/json can
// render.
func mustDecMode() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("codec: decoder options: " + err.Error())
	}
	return mode
}

// Marshal encodes v deterministically: equal values give equal bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes one CBOR item from data into v.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Encoder writes a CBOR sequence (RFC 8742), one item per Encode.
type Encoder = cbor.Encoder

// Decoder reads a CBOR sequence item by item. Decode returns io.EOF
// after the last item.
type Decoder = cbor.Decoder

// NewEncoder returns a deterministic sequence encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder returns a sequence decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return decMode.NewDecoder(r)
}

// Diagnose renders a single CBOR item in diagnostic notation
// (RFC 8949 §8).
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// DiagnoseSequence renders every item of a CBOR sequence in
// diagnostic notation, one string per item. An error names the index
// of the item that failed.
func DiagnoseSequence(data []byte) ([]string, error) {
	var items []string
	for len(data) > 0 {
		notation, rest, err := cbor.DiagnoseFirst(data)
		if err != nil {
			return items, fmt.Errorf("item %d: %w", len(items), err)
		}
		items = append(items, notation)
		data = rest
	}
	return items, nil
}
