// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/attrspec/lib/attrspec"
	"github.com/bureau-foundation/attrspec/lib/binhash"
	"github.com/bureau-foundation/attrspec/lib/codec"
	"github.com/bureau-foundation/attrspec/lib/testutil"
)

func TestDecodeBlobFixtures(t *testing.T) {
	context := testutil.FixtureContext(t)

	for _, fixture := range testutil.Fixtures() {
		t.Run(fixture.Name, func(t *testing.T) {
			constructor := testutil.MustConstructor(t, context, fixture.Signature)
			spec, document, err := decodeBlob(constructor, fixture.Blob, context)
			if err != nil {
				t.Fatalf("decodeBlob: %v", err)
			}
			wantDigest := binhash.FormatDigest(binhash.BlobDigest(constructor.Signature(), fixture.Blob))
			if document.Digest != wantDigest {
				t.Errorf("digest = %s, want %s", document.Digest, wantDigest)
			}
			if len(document.Arguments) != len(spec.Args()) || len(document.Named) != len(spec.NamedArgs()) {
				t.Errorf("document has %d/%d arguments, spec has %d/%d",
					len(document.Arguments), len(document.Named), len(spec.Args()), len(spec.NamedArgs()))
			}

			var buffer bytes.Buffer
			if err := writeText(&buffer, spec, document.Digest); err != nil {
				t.Fatalf("writeText: %v", err)
			}
			output := buffer.String()
			for _, want := range []string{constructor.Signature(), document.Digest} {
				if !strings.Contains(output, want) {
					t.Errorf("text output missing %q:\n%s", want, output)
				}
			}
			if lines := strings.Count(output, "\n"); lines != 3+len(spec.Args())+len(spec.NamedArgs()) {
				t.Errorf("text output has %d lines:\n%s", lines, output)
			}
		})
	}
}

func TestDecodeBlobError(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.B(int, ushort)")

	_, _, err := decodeBlob(constructor, testutil.Hex("01 00 07 00"), context)
	var decodeErr *attrspec.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("decodeBlob error = %v, want *DecodeError", err)
	}
	if decodeErr.Stage != attrspec.StageFixedArg || decodeErr.Arg != 0 {
		t.Errorf("stage = %s, arg = %d, want fixed argument 0", decodeErr.Stage, decodeErr.Arg)
	}
}

func TestWriteText(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.A(string)")
	blob := testutil.Concat(
		testutil.Hex("01 00"), testutil.SerString("ab"), testutil.U16(1),
		testutil.Hex("54 08"), testutil.SerString("Count"), testutil.I32(3),
	)
	spec, document, err := decodeBlob(constructor, blob, context)
	if err != nil {
		t.Fatalf("decodeBlob: %v", err)
	}

	var buffer bytes.Buffer
	if err := writeText(&buffer, spec, document.Digest); err != nil {
		t.Fatalf("writeText: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(buffer.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want 5:\n%s", len(lines), buffer.String())
	}
	if !strings.HasPrefix(lines[3], "argument 0") || !strings.Contains(lines[3], `"ab"`) {
		t.Errorf("argument line = %q", lines[3])
	}
	if !strings.HasPrefix(lines[4], "property Count") || !strings.HasSuffix(lines[4], "3") {
		t.Errorf("named line = %q", lines[4])
	}
}

func TestWriteCBOR(t *testing.T) {
	context := testutil.FixtureContext(t)
	fixture := testutil.Fixtures()[3]
	constructor := testutil.MustConstructor(t, context, fixture.Signature)
	_, document, err := decodeBlob(constructor, fixture.Blob, context)
	if err != nil {
		t.Fatalf("decodeBlob: %v", err)
	}

	var buffer bytes.Buffer
	if err := writeCBOR(&buffer, document); err != nil {
		t.Fatalf("writeCBOR: %v", err)
	}
	var decoded attrspec.Document
	if err := codec.Unmarshal(buffer.Bytes(), &decoded); err != nil {
		t.Fatalf("codec.Unmarshal: %v", err)
	}
	if decoded.Constructor != document.Constructor || decoded.Digest != document.Digest {
		t.Errorf("decoded = %+v, want %+v", decoded, document)
	}
}

func TestEncodeDocumentRoundtrip(t *testing.T) {
	context := testutil.FixtureContext(t)

	for _, fixture := range testutil.Fixtures() {
		if fixture.Name == "type in other module" {
			// The encoder writes the short assembly name, not the
			// versioned one in the fixture.
			continue
		}
		t.Run(fixture.Name, func(t *testing.T) {
			constructor := testutil.MustConstructor(t, context, fixture.Signature)
			_, document, err := decodeBlob(constructor, fixture.Blob, context)
			if err != nil {
				t.Fatalf("decodeBlob: %v", err)
			}
			data, err := json.Marshal(document)
			if err != nil {
				t.Fatalf("json.Marshal: %v", err)
			}

			encoded, err := encodeDocument(data, "", context)
			if err != nil {
				t.Fatalf("encodeDocument: %v", err)
			}
			if !bytes.Equal(encoded, fixture.Blob) {
				t.Errorf("encoded = % x\nwant      % x", encoded, fixture.Blob)
			}
		})
	}
}

func TestEncodeDocumentErrors(t *testing.T) {
	context := testutil.FixtureContext(t)

	tests := []struct {
		name      string
		document  string
		signature string
		want      string
	}{
		{"invalid JSON", `{"constructor":`, "", "parse document"},
		{"unknown field", `{"constructor":"Contoso.Fixtures.A(string)","extra":1}`, "", "parse document"},
		{"no constructor", `{"arguments":[]}`, "", "no constructor"},
		{"arity", `{"constructor":"Contoso.Fixtures.A(string)","arguments":[]}`, "", "takes 1 arguments"},
		{"override mismatch", `{"constructor":"Contoso.Fixtures.A(string)","arguments":[{"type":"System.String","value":"x"}]}`,
			"Contoso.Fixtures.B(int, ushort)", "takes 2 arguments"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := encodeDocument([]byte(test.document), test.signature, context)
			if err == nil {
				t.Fatal("encodeDocument succeeded, want error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), test.want)
			}
		})
	}
}

func TestWriteBlob(t *testing.T) {
	data := testutil.Hex("01 00 00 00")

	var raw bytes.Buffer
	if err := writeBlob(&raw, data, false); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(raw.Bytes(), data) {
		t.Errorf("raw output = % x", raw.Bytes())
	}

	var hexOutput bytes.Buffer
	if err := writeBlob(&hexOutput, data, true); err != nil {
		t.Fatal(err)
	}
	if hexOutput.String() != "01 00 00 00\n" {
		t.Errorf("hex output = %q", hexOutput.String())
	}
}

func TestDiagBlob(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.B(int, ushort)")

	var buffer bytes.Buffer
	if err := diagBlob(&buffer, constructor, testutil.Hex("01 00 | 07 00 00 00 | 09 00 | 00 00"), context); err != nil {
		t.Fatalf("diagBlob: %v", err)
	}
	output := buffer.String()
	for _, want := range []string{
		constructor.Signature(),
		"10 bytes",
		"0000  01 00",
		"prolog",
		"0002  07 00 00 00",
		"0006  09 00",
		"0008  00 00",
		"0 named",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("dump missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("dump to a buffer contains escape sequences:\n%s", output)
	}
}

func TestDiagBlobShowsFailure(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.B(int, ushort)")

	var buffer bytes.Buffer
	err := diagBlob(&buffer, constructor, testutil.Hex("01 00 | 07 00 00 00 | 09"), context)
	if err == nil {
		t.Fatal("diagBlob succeeded on a truncated blob")
	}
	output := buffer.String()
	for _, want := range []string{"0002  07 00 00 00", "0006  09", "(not decoded)", "error: "} {
		if !strings.Contains(output, want) {
			t.Errorf("dump missing %q:\n%s", want, output)
		}
	}
}

func TestElide(t *testing.T) {
	short := testutil.Hex("01 02 03")
	if got := elide(short); got != "01 02 03" {
		t.Errorf("elide(short) = %q", got)
	}

	long := make([]byte, 40)
	for i := range long {
		long[i] = byte(i)
	}
	got := elide(long)
	if got != "00 01 02 03 04 .. 23 24 25 26 27" {
		t.Errorf("elide(long) = %q", got)
	}
}

func TestValidateBlob(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.B(int, ushort)")
	canonical := testutil.Hex("01 00 | 07 00 00 00 | 09 00 | 00 00")

	tests := []struct {
		name   string
		data   []byte
		strict bool
		valid  bool
		want   string
	}{
		{"valid", canonical, false, true, "valid"},
		{"valid strict", canonical, true, true, "valid"},
		{"bad prolog", testutil.Hex("02 00 | 07 00 00 00 | 09 00 | 00 00"), false, false, "invalid: "},
		{"trailing", testutil.Concat(canonical, []byte{0xFF}), false, false, "trailing data"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var buffer bytes.Buffer
			valid := validateBlob(&buffer, constructor, test.data, context, test.strict)
			if valid != test.valid {
				t.Errorf("validateBlob = %v, want %v (output %q)", valid, test.valid, buffer.String())
			}
			if !strings.Contains(buffer.String(), test.want) {
				t.Errorf("output = %q, want it to contain %q", buffer.String(), test.want)
			}
		})
	}
}

func TestValidateBlobStrictRejectsNonCanonical(t *testing.T) {
	context := testutil.FixtureContext(t)
	constructor := testutil.MustConstructor(t, context, "Contoso.Fixtures.C(type)")
	fixture := testutil.Concat(testutil.Hex("01 00"),
		testutil.SerString("Contoso.Geometry.Point, Contoso.Geometry, Version=1.0.0.0, Culture=neutral, PublicKeyToken=null"),
		testutil.U16(0))

	var lenient bytes.Buffer
	if !validateBlob(&lenient, constructor, fixture, context, false) {
		t.Fatalf("lenient validation failed: %s", lenient.String())
	}

	var strict bytes.Buffer
	if validateBlob(&strict, constructor, fixture, context, true) {
		t.Fatal("strict validation accepted a versioned type name")
	}
	if !strings.Contains(strict.String(), "not canonical: first difference at byte 2") {
		t.Errorf("output = %q", strict.String())
	}
}

func TestReadInput(t *testing.T) {
	directory := t.TempDir()
	path := filepath.Join(directory, "blob.bin")
	if err := os.WriteFile(path, testutil.Hex("01 00 00 00"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("file argument", func(t *testing.T) {
		data, remaining, err := readInput([]string{"extra", path}, false, strings.NewReader("unused"), 1024)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, testutil.Hex("01 00 00 00")) {
			t.Errorf("data = % x", data)
		}
		if len(remaining) != 1 || remaining[0] != "extra" {
			t.Errorf("remaining = %v, want [extra]", remaining)
		}
	})

	t.Run("stdin hex", func(t *testing.T) {
		data, remaining, err := readInput(nil, true, strings.NewReader("0x01 00 | 00 00\n"), 1024)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(data, testutil.Hex("01 00 00 00")) || len(remaining) != 0 {
			t.Errorf("data = % x, remaining = %v", data, remaining)
		}
	})

	t.Run("non-file argument stays", func(t *testing.T) {
		_, remaining, err := readInput([]string{"not-a-file"}, false, strings.NewReader("\x01\x00\x00\x00"), 1024)
		if err != nil {
			t.Fatal(err)
		}
		if len(remaining) != 1 {
			t.Errorf("remaining = %v", remaining)
		}
	})

	t.Run("stdin over limit", func(t *testing.T) {
		_, _, err := readInput(nil, false, strings.NewReader("0123456789"), 4)
		if err == nil || !strings.Contains(err.Error(), "limit") {
			t.Errorf("error = %v, want limit error", err)
		}
	})

	t.Run("file over limit", func(t *testing.T) {
		_, _, err := readInput([]string{path}, false, strings.NewReader(""), 2)
		if err == nil || !strings.Contains(err.Error(), "limit") {
			t.Errorf("error = %v, want limit error", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, _, err := readInput(nil, true, strings.NewReader("  \n"), 1024)
		if err == nil || !strings.Contains(err.Error(), "empty input") {
			t.Errorf("error = %v, want empty input error", err)
		}
	})

	t.Run("bad hex", func(t *testing.T) {
		_, _, err := readInput(nil, true, strings.NewReader("zz"), 1024)
		if err == nil || !strings.Contains(err.Error(), "decode hex") {
			t.Errorf("error = %v, want hex error", err)
		}
	})
}
