// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"
)

// sampleRecord is shaped like a capture record: cbor struct tags, the
// convention for CBOR-only types.
type sampleRecord struct {
	Site      string `cbor:"site"`
	Signature string `cbor:"ctor"`
	Module    string `cbor:"module,omitempty"`
	Blob      []byte `cbor:"blob"`
}

// sampleDocument uses json struct tags (the convention for types that
// serve both JSON and CBOR, relying on fxamacker's fallback).
type sampleDocument struct {
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

// hexLabel implements encoding.TextMarshaler like binhash.Digest does.
type hexLabel [4]byte

func (l hexLabel) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(l[:])), nil
}

func (l *hexLabel) UnmarshalText(text []byte) error {
	_, err := hex.Decode(l[:], text)
	return err
}

func sameRecord(a, b sampleRecord) bool {
	return a.Site == b.Site && a.Signature == b.Signature && a.Module == b.Module && bytes.Equal(a.Blob, b.Blob)
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{
		Site:      "Contoso.Widget::.ctor",
		Signature: "Contoso.Fixtures.A(System.String)",
		Module:    "Contoso.Fixtures",
		Blob:      []byte{0x01, 0x00, 0xFF, 0x00, 0x00},
	}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("Marshal produced empty output")
	}

	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !sameRecord(decoded, original) {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]any{
		"zeta":  1,
		"alpha": "first",
		"mid":   []any{uint64(1), "two"},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	for range 10 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("deterministic encoding violated: %x != %x", first, again)
		}
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	records := []sampleRecord{
		{Site: "one", Signature: "A(string)", Blob: []byte{1, 0, 0xFF, 0, 0}},
		{Site: "two", Signature: "B(int, ushort)", Module: "Contoso.Fixtures", Blob: []byte{1, 0, 1, 0, 0, 0, 2, 0, 0, 0}},
		{Site: "three", Signature: "A(string)", Blob: []byte{1, 0, 0, 0, 0}},
	}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for i, want := range records {
		var got sampleRecord
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode record %d: %v", i, err)
		}
		if !sameRecord(got, want) {
			t.Errorf("record %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestJSONTagFallback(t *testing.T) {
	// Types with json tags (no cbor tags) encode through the CBOR modes
	// using the json tag names as map keys.
	original := sampleDocument{Attribute: "Contoso.Fixtures.A", Value: "hello"}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"attribute"`) {
		t.Errorf("notation %q does not use the json tag name", notation)
	}

	var decoded sampleDocument
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("json-tag roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestAnyMapsDecodeAsStringKeyed(t *testing.T) {
	// Nested maps decoded into an any target must be map[string]any so
	// the result can be re-encoded as JSON.
	original := sampleDocument{
		Attribute: "Contoso.Fixtures.ComplexAttribute",
		Value:     map[string]any{"type": "System.Int32", "value": "42"},
	}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded sampleDocument
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	nested, ok := decoded.Value.(map[string]any)
	if !ok {
		t.Fatalf("Value decoded as %T, want map[string]any", decoded.Value)
	}
	if nested["type"] != "System.Int32" {
		t.Errorf("nested type = %v", nested["type"])
	}
	if _, err := json.Marshal(decoded); err != nil {
		t.Errorf("decoded value is not JSON-encodable: %v", err)
	}
}

func TestTextMarshalerRoundtrip(t *testing.T) {
	type envelope struct {
		Label hexLabel `cbor:"label"`
	}
	original := envelope{Label: hexLabel{0xDE, 0xAD, 0xBE, 0xEF}}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"deadbeef"`) {
		t.Errorf("label not encoded as a text string: %s", notation)
	}

	var decoded envelope
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("got %x, want %x", decoded.Label, original.Label)
	}
}

func TestOmitemptyRespected(t *testing.T) {
	withModule := sampleRecord{Site: "a", Signature: "A()", Module: "m", Blob: []byte{1, 0, 0, 0}}
	withoutModule := sampleRecord{Site: "a", Signature: "A()", Blob: []byte{1, 0, 0, 0}}

	dataWith, err := Marshal(withModule)
	if err != nil {
		t.Fatal(err)
	}
	dataWithout, err := Marshal(withoutModule)
	if err != nil {
		t.Fatal(err)
	}
	if len(dataWithout) >= len(dataWith) {
		t.Errorf("omitempty not effective: without=%d bytes, with=%d bytes",
			len(dataWithout), len(dataWith))
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var record sampleRecord
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &record); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestByteStringRoundtrip(t *testing.T) {
	// Blobs must encode as CBOR byte strings (major type 2), not
	// arrays of integers.
	data, err := Marshal(sampleRecord{Blob: []byte{0x01, 0x00}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, "h'0100'") {
		t.Errorf("blob not encoded as a byte string: %s", notation)
	}
}

func TestDiagnoseSequence(t *testing.T) {
	var sequence bytes.Buffer
	encoder := NewEncoder(&sequence)
	for _, item := range []any{"hello", int64(42), sampleRecord{Site: "s", Blob: []byte{0x01, 0x00}}} {
		if err := encoder.Encode(item); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	items, err := DiagnoseSequence(sequence.Bytes())
	if err != nil {
		t.Fatalf("DiagnoseSequence: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3: %q", len(items), items)
	}
	if items[0] != `"hello"` || items[1] != "42" {
		t.Errorf("items = %q", items[:2])
	}
	if !strings.Contains(items[2], "h'0100'") {
		t.Errorf("record notation %q lacks the blob", items[2])
	}

	if items, err := DiagnoseSequence(nil); err != nil || len(items) != 0 {
		t.Errorf("empty sequence: items=%q err=%v", items, err)
	}

	truncated := sequence.Bytes()[:sequence.Len()-1]
	items, err = DiagnoseSequence(truncated)
	if err == nil || !strings.Contains(err.Error(), "item 2") {
		t.Errorf("truncated sequence: err = %v, want failure at item 2", err)
	}
	if len(items) != 2 {
		t.Errorf("truncated sequence rendered %d items before failing, want 2", len(items))
	}
}

func BenchmarkMarshal(b *testing.B) {
	record := sampleRecord{
		Site:      "Contoso.Widget::.ctor",
		Signature: "Contoso.Fixtures.A(System.String)",
		Blob:      bytes.Repeat([]byte{0xAB}, 64),
	}
	b.ReportAllocs()
	for b.Loop() {
		Marshal(record)
	}
}

func BenchmarkUnmarshal(b *testing.B) {
	record := sampleRecord{
		Site:      "Contoso.Widget::.ctor",
		Signature: "Contoso.Fixtures.A(System.String)",
		Blob:      bytes.Repeat([]byte{0xAB}, 64),
	}
	data, err := Marshal(record)
	if err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for b.Loop() {
		var decoded sampleRecord
		Unmarshal(data, &decoded)
	}
}
