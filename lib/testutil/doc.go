// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for attrspec packages.
//
// [Hex], [Concat], [SerString], [U16], [U32], and [I32] assemble
// attribute blobs by hand so that tests state the expected bytes
// directly instead of trusting the encoder under test.
//
// [Fixtures] is a corpus of compiler-shaped blobs covering every
// argument form, with [FixtureModules] and [FixtureContext] providing
// the type tables those blobs reference. Decoder, materializer,
// capture, and CLI tests all run against the same corpus.
//
// [Receive] encapsulates the timeout safety valve pattern
// (select with time.After fallback) so that tests of concurrent code
// do not need direct time.After calls.
//
// Helpers that take a testing.TB call t.Fatalf on failure rather than
// returning errors, since test setup failures are not recoverable.
package testutil
