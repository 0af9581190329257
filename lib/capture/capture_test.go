// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package capture

import (
	"bytes"
	"crypto/rand"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/attrspec/lib/codec"
	"github.com/bureau-foundation/attrspec/lib/testutil"
)

func fixtureRecords() []Record {
	var records []Record
	for _, fixture := range testutil.Fixtures() {
		records = append(records, Record{
			Site:        "Contoso.Fixtures.Target::" + fixture.Name,
			Constructor: fixture.Signature,
			Module:      testutil.FixturesModule,
			Blob:        fixture.Blob,
		})
	}
	return records
}

func recordsEqual(t *testing.T, got, want []Record) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d records, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Site != want[i].Site || got[i].Constructor != want[i].Constructor ||
			got[i].Module != want[i].Module || !bytes.Equal(got[i].Blob, want[i].Blob) {
			t.Errorf("record %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestCompressionString(t *testing.T) {
	tests := []struct {
		tag  Compression
		want string
	}{
		{CompressionNone, "none"},
		{CompressionLZ4, "lz4"},
		{CompressionZstd, "zstd"},
		{Compression(99), "unknown(99)"},
	}
	for _, tt := range tests {
		if got := tt.tag.String(); got != tt.want {
			t.Errorf("Compression(%d).String() = %q, want %q", tt.tag, got, tt.want)
		}
	}

	for _, name := range []string{"none", "lz4", "zstd"} {
		tag, err := ParseCompression(name)
		if err != nil {
			t.Fatalf("ParseCompression(%q): %v", name, err)
		}
		if tag.String() != name {
			t.Errorf("roundtrip: ParseCompression(%q).String() = %q", name, tag.String())
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression(\"gzip\") should fail")
	}

	var flagValue Compression
	if err := flagValue.Set("zstd"); err != nil || flagValue != CompressionZstd {
		t.Errorf("Set(zstd) = %v, value %s", err, flagValue)
	}
	if err := flagValue.Set("gzip"); err == nil || flagValue != CompressionZstd {
		t.Errorf("Set(gzip) = %v, value %s; want error and unchanged value", err, flagValue)
	}
}

func TestWriteReadRoundtrip(t *testing.T) {
	records := fixtureRecords()

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			var buffer bytes.Buffer
			written, err := Write(&buffer, records, compression)
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if written.Records != len(records) {
				t.Errorf("header records = %d, want %d", written.Records, len(records))
			}
			// The fixture set repeats type and member names, so both
			// algorithms shrink it.
			if written.Compression != compression {
				t.Errorf("header compression = %s, want %s", written.Compression, compression)
			}
			if !bytes.HasPrefix(buffer.Bytes(), Magic[:]) {
				t.Errorf("file does not start with magic: %x", buffer.Bytes()[:4])
			}

			header, decoded, err := Read(&buffer)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if header != written {
				t.Errorf("read header %+v, written %+v", header, written)
			}
			recordsEqual(t, decoded, records)
		})
	}
}

func TestReadPayload(t *testing.T) {
	records := fixtureRecords()
	var buffer bytes.Buffer
	written, err := Write(&buffer, records, CompressionZstd)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	header, payload, err := ReadPayload(&buffer)
	if err != nil {
		t.Fatalf("ReadPayload: %v", err)
	}
	if header != written {
		t.Errorf("header %+v, written %+v", header, written)
	}
	if len(payload) != header.PayloadSize {
		t.Errorf("payload is %d bytes, header says %d", len(payload), header.PayloadSize)
	}

	var want bytes.Buffer
	encoder := codec.NewEncoder(&want)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	if !bytes.Equal(payload, want.Bytes()) {
		t.Error("payload is not the uncompressed record sequence")
	}
}

func TestWriteDeterministic(t *testing.T) {
	records := fixtureRecords()
	var first, second bytes.Buffer
	if _, err := Write(&first, records, CompressionZstd); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Write(&second, records, CompressionZstd); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("the same records produced different files")
	}
}

func TestWriteIncompressibleFallsBack(t *testing.T) {
	noise := make([]byte, 4096)
	if _, err := rand.Read(noise); err != nil {
		t.Fatal(err)
	}
	noise[0], noise[1] = 0x01, 0x00
	records := []Record{{Constructor: "A(byte[])", Blob: noise}}

	for _, compression := range []Compression{CompressionLZ4, CompressionZstd} {
		var buffer bytes.Buffer
		header, err := Write(&buffer, records, compression)
		if err != nil {
			t.Fatalf("Write(%s): %v", compression, err)
		}
		if header.Compression != CompressionNone {
			t.Errorf("Write(%s) on random data used %s, want none", compression, header.Compression)
		}
		_, decoded, err := Read(&buffer)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		recordsEqual(t, decoded, records)
	}
}

func TestWriteEmpty(t *testing.T) {
	var buffer bytes.Buffer
	header, err := Write(&buffer, nil, CompressionLZ4)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if header.Records != 0 || header.PayloadSize != 0 {
		t.Errorf("header = %+v", header)
	}
	_, records, err := Read(&buffer)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records from an empty capture", len(records))
	}
}

func TestWriteRejectsInvalidRecords(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"no constructor", Record{Blob: []byte{1, 0, 0, 0}}},
		{"short blob", Record{Constructor: "A()", Blob: []byte{1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Write(&bytes.Buffer{}, []Record{tt.record}, CompressionNone); err == nil {
				t.Error("Write accepted an invalid record")
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	var valid bytes.Buffer
	if _, err := Write(&valid, fixtureRecords()[:3], CompressionNone); err != nil {
		t.Fatalf("Write: %v", err)
	}
	file := valid.Bytes()

	mutate := func(change func([]byte) []byte) []byte {
		return change(append([]byte(nil), file...))
	}

	tests := []struct {
		name       string
		data       []byte
		notCapture bool
	}{
		{"empty", nil, true},
		{"short header", file[:10], true},
		{"bad magic", mutate(func(b []byte) []byte { b[0] = 'X'; return b }), true},
		{"bad version", mutate(func(b []byte) []byte { b[4] = 9; return b }), false},
		{"bad compression", mutate(func(b []byte) []byte { b[5] = 7; return b }), false},
		{"wrong record count", mutate(func(b []byte) []byte { b[9]++; return b }), false},
		{"huge payload size", mutate(func(b []byte) []byte { b[10] = 0xFF; return b }), false},
		{"truncated payload", file[:len(file)-3], false},
		{"trailing garbage", mutate(func(b []byte) []byte { return append(b, 0xFF) }), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(bytes.NewReader(tt.data))
			if err == nil {
				t.Fatal("Read should fail")
			}
			if tt.notCapture != errors.Is(err, ErrNotCapture) {
				t.Errorf("errors.Is(err, ErrNotCapture) = %v, want %v (err: %v)", !tt.notCapture, tt.notCapture, err)
			}
		})
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixtures.atcp")
	records := fixtureRecords()

	if _, err := WriteFile(path, records, CompressionLZ4); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	_, decoded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	recordsEqual(t, decoded, records)

	if _, _, err := ReadFile(filepath.Join(t.TempDir(), "missing.atcp")); err == nil {
		t.Error("ReadFile should fail for a missing file")
	}
}

func TestRecordDigest(t *testing.T) {
	records := fixtureRecords()
	seen := make(map[string]string)
	for _, record := range records {
		key := record.Digest()
		if key.IsZero() {
			t.Fatalf("%s: zero digest", record.Label())
		}
		if previous, ok := seen[string(key[:])]; ok {
			t.Errorf("%s and %s share a digest", previous, record.Label())
		}
		seen[string(key[:])] = record.Label()
	}

	// Site and module do not take part in the digest.
	moved := records[0]
	moved.Site = "elsewhere"
	moved.Module = "Other"
	if moved.Digest() != records[0].Digest() {
		t.Error("digest depends on site or module")
	}
}

func TestRecordLabel(t *testing.T) {
	if label := (Record{Site: "S", Constructor: "C()"}).Label(); label != "S" {
		t.Errorf("Label = %q, want S", label)
	}
	if label := (Record{Constructor: "C()"}).Label(); label != "C()" {
		t.Errorf("Label = %q, want C()", label)
	}
}

func TestParseSource(t *testing.T) {
	yamlSource := `
module: Contoso.Fixtures
records:
  - site: Contoso.Widget
    ctor: "Contoso.Fixtures.A(string)"
    blob: "01 00 | ff | 00 00"
  - ctor: "Contoso.Fixtures.B(int, ushort)"
    module: Contoso.Other
    blob: |
      01 00
      07 00 00 00
      09 00
      00 00
`
	records, err := ParseSource([]byte(yamlSource), "yaml")
	if err != nil {
		t.Fatalf("ParseSource(yaml): %v", err)
	}
	want := []Record{
		{Site: "Contoso.Widget", Constructor: "Contoso.Fixtures.A(string)", Module: "Contoso.Fixtures",
			Blob: testutil.Hex("01 00 ff 00 00")},
		{Constructor: "Contoso.Fixtures.B(int, ushort)", Module: "Contoso.Other",
			Blob: testutil.Hex("01 00 07 00 00 00 09 00 00 00")},
	}
	recordsEqual(t, records, want)

	jsoncSource := `{
  // Same records, JSONC form.
  "module": "Contoso.Fixtures",
  "records": [
    {"site": "Contoso.Widget", "ctor": "Contoso.Fixtures.A(string)", "blob": "01 00 ff 00 00"},
    {"ctor": "Contoso.Fixtures.B(int, ushort)", "module": "Contoso.Other", "blob": "0100070000000900 0000"},
  ]
}`
	records, err = ParseSource([]byte(jsoncSource), "jsonc")
	if err != nil {
		t.Fatalf("ParseSource(jsonc): %v", err)
	}
	recordsEqual(t, records, want)
}

func TestParseSourceErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		wantErr string
	}{
		{"bad hex", "records:\n  - ctor: A()\n    blob: \"01 0g\"\n", "record 0"},
		{"missing ctor", "records:\n  - blob: \"01 00 00 00\"\n", "constructor"},
		{"unknown field", "records:\n  - ctor: A()\n    blob: \"01 00 00 00\"\n    colour: red\n", "colour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSource([]byte(tt.source), "yaml")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ParseSource error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "source.jsonc")
	content := `{"records": [{"ctor": "Contoso.Fixtures.A(string)", "blob": "01 00 00 00 00"}]}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := LoadSource(path)
	if err != nil {
		t.Fatalf("LoadSource: %v", err)
	}
	if len(records) != 1 || !bytes.Equal(records[0].Blob, []byte{1, 0, 0, 0, 0}) {
		t.Errorf("LoadSource = %+v", records)
	}
}
