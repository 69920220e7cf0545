// Copyright (c) 2023, ChongsKeeper.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import (
	"bytes"
	"testing"
)

// encodeAll runs both encoder passes over source in chunkSize pieces and
// returns the packed stream.
func encodeAll(t testing.TB, source []byte, chunkSize int) (*Encoder, []byte) {
	t.Helper()
	enc := NewEncoder(int64(len(source)))
	for off := 0; off < len(source); off += chunkSize {
		end := off + chunkSize
		if end > len(source) {
			end = len(source)
		}
		enc.BuildFrequencyTable(source[off:end])
	}
	if err := enc.BuildTree(); err != nil {
		t.Fatal(err)
	}
	var packed []byte
	for off := 0; off < len(source); off += chunkSize {
		end := off + chunkSize
		if end > len(source) {
			end = len(source)
		}
		out, err := enc.Encode(source[off:end])
		if err != nil {
			t.Fatal(err)
		}
		packed = append(packed, out...)
	}
	packed = append(packed, enc.Flush()...)
	if got := enc.CompressedSize(); got != int64(len(packed)) {
		t.Fatalf("CompressedSize = %d, emitted %d bytes", got, len(packed))
	}
	return enc, packed
}

// decodeAll feeds packed to a fresh Decoder in chunkSize pieces.
func decodeAll(t testing.TB, table *FrequencyTable, total int64, packed []byte, chunkSize int) []byte {
	t.Helper()
	dec, err := NewDecoder(table, total)
	if err != nil {
		t.Fatal(err)
	}
	var got []byte
	for off := 0; off < len(packed) && !dec.Done(); off += chunkSize {
		end := off + chunkSize
		if end > len(packed) {
			end = len(packed)
		}
		got = append(got, dec.Decode(packed[off:end])...)
	}
	for !dec.Done() {
		// Lone-leaf streams have no packed bytes at all; drive the decoder
		// on the length signal alone.
		out := dec.Decode(nil)
		if len(out) == 0 {
			t.Fatal("decoder stalled before reaching the target length")
		}
		got = append(got, out...)
	}
	return got
}

func TestRoundTrip(t *testing.T) {
	sources := map[string][]byte{
		"one-byte":    {0x42},
		"two-symbols": []byte("AAAAB"),
		"ascii":       []byte("the quick brown fox jumps over the lazy dog"),
		"skewed":      skewed(32 * 1024),
		"noise":       noise(t, 32 * 1024),
		"all-values":  noise(t, 256 * 64),
	}
	chunkSizes := []int{1, 3, 7, 64, 8192, 1 << 20}
	for name, source := range sources {
		for _, chunkSize := range chunkSizes {
			enc, packed := encodeAll(t, source, chunkSize)
			got := decodeAll(t, enc.FrequencyTable(), int64(len(source)), packed, chunkSize)
			if !bytes.Equal(got, source) {
				t.Fatalf("%s/chunk=%d: round trip mismatch, got %d bytes want %d",
					name, chunkSize, len(got), len(source))
			}
		}
	}
}

// "AAAAB" compresses to exactly one packed byte: two 1-bit codes, five
// code bits, three padding bits.
func TestTwoSymbolPacking(t *testing.T) {
	enc, packed := encodeAll(t, []byte("AAAAB"), 8192)
	if len(packed) != 1 {
		t.Fatalf("packed %d bytes, want 1", len(packed))
	}
	// B is the rarer symbol, popped first, so B=0 and A=1: AAAAB packs as
	// 11110 plus zero padding.
	if packed[0] != 0xf0 {
		t.Fatalf("packed byte = %#02x, want 0xf0", packed[0])
	}
	got := decodeAll(t, enc.FrequencyTable(), 5, packed, 8192)
	if !bytes.Equal(got, []byte("AAAAB")) {
		t.Fatalf("decoded %q", got)
	}
}

// A single-symbol input has a zero-length code: zero packed bytes out, and
// the decoder synthesizes the run purely from the length signal.
func TestSingleSymbolStream(t *testing.T) {
	source := bytes.Repeat([]byte{'C'}, 4)
	enc, packed := encodeAll(t, source, 8192)
	if len(packed) != 0 {
		t.Fatalf("packed %d bytes, want 0", len(packed))
	}
	if got := enc.CompressedSize(); got != 0 {
		t.Fatalf("CompressedSize = %d, want 0", got)
	}
	got := decodeAll(t, enc.FrequencyTable(), int64(len(source)), packed, 8192)
	if !bytes.Equal(got, source) {
		t.Fatalf("decoded %q", got)
	}
}

// A long single-symbol run must decode incrementally, not in one giant
// allocation.
func TestSingleSymbolLongRun(t *testing.T) {
	const total = 3*synthChunk + 17
	enc := NewEncoder(total)
	chunk := bytes.Repeat([]byte{'z'}, 4096)
	for fed := 0; fed < total; {
		n := total - fed
		if n > len(chunk) {
			n = len(chunk)
		}
		enc.BuildFrequencyTable(chunk[:n])
		fed += n
	}
	if err := enc.BuildTree(); err != nil {
		t.Fatal(err)
	}
	dec, err := NewDecoder(enc.FrequencyTable(), total)
	if err != nil {
		t.Fatal(err)
	}
	var emitted int64
	calls := 0
	for !dec.Done() {
		out := dec.Decode(nil)
		if len(out) == 0 {
			t.Fatal("no progress")
		}
		if int64(len(out)) > synthChunk {
			t.Fatalf("synthesized %d bytes in one call, cap is %d", len(out), synthChunk)
		}
		emitted += int64(len(out))
		calls++
	}
	if emitted != total || calls < 4 {
		t.Fatalf("emitted %d bytes in %d calls, want %d in >= 4", emitted, calls, total)
	}
}

func TestEncodeBeforeBuildTree(t *testing.T) {
	enc := NewEncoder(3)
	enc.BuildFrequencyTable([]byte("abc"))
	if _, err := enc.Encode([]byte("abc")); err != ErrNoTree {
		t.Fatalf("err = %v, want ErrNoTree", err)
	}
}

func TestEncodeEmptyInput(t *testing.T) {
	enc := NewEncoder(0)
	if err := enc.BuildTree(); err != ErrEmptyAlphabet {
		t.Fatalf("err = %v, want ErrEmptyAlphabet", err)
	}
}

func TestEncodeUnknownByte(t *testing.T) {
	enc := NewEncoder(4)
	enc.BuildFrequencyTable([]byte("aabb"))
	if err := enc.BuildTree(); err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Encode([]byte("aaxb")); err == nil {
		t.Fatal("encoding a byte absent from the table must fail")
	}
}

// Done must become true after exactly the packed bytes the encoder
// reported, even when the code bits fill the final byte with no padding.
func TestTerminationOnExactByteBoundary(t *testing.T) {
	// Two equal-frequency symbols get 1-bit codes, so 16 input bytes pack
	// into exactly 2 bytes with zero padding bits.
	source := bytes.Repeat([]byte("ab"), 8)
	enc, packed := encodeAll(t, source, 8192)
	if len(packed) != 2 {
		t.Fatalf("packed %d bytes, want 2", len(packed))
	}
	dec, err := NewDecoder(enc.FrequencyTable(), int64(len(source)))
	if err != nil {
		t.Fatal(err)
	}
	got := dec.Decode(packed)
	if !dec.Done() {
		t.Fatal("decoder not done after the full packed stream")
	}
	if !bytes.Equal(got, source) {
		t.Fatalf("decoded %q", got)
	}
	// Further calls only discard padding.
	if extra := dec.Decode([]byte{0xff}); len(extra) != 0 {
		t.Fatalf("decode after done emitted %d bytes", len(extra))
	}
}

// A truncated stream never reaches Done; that is the caller's corruption
// signal.
func TestTruncatedStream(t *testing.T) {
	source := skewed(4096)
	enc, packed := encodeAll(t, source, 8192)
	dec, err := NewDecoder(enc.FrequencyTable(), int64(len(source)))
	if err != nil {
		t.Fatal(err)
	}
	dec.Decode(packed[:len(packed)-1])
	dec.Decode(nil)
	if dec.Done() {
		t.Fatal("decoder claims done on a truncated stream")
	}
	if dec.Emitted() >= dec.Total() {
		t.Fatalf("emitted %d of %d", dec.Emitted(), dec.Total())
	}
}

func BenchmarkEncode(b *testing.B) {
	source := skewed(1 << 20)
	enc := NewEncoder(int64(len(source)))
	enc.BuildFrequencyTable(source)
	if err := enc.BuildTree(); err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(len(source)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := enc.Encode(source); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkDecode(b *testing.B) {
	source := skewed(1 << 20)
	enc, packed := encodeAll(b, source, 8192)
	b.SetBytes(int64(len(source)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dec, err := NewDecoder(enc.FrequencyTable(), int64(len(source)))
		if err != nil {
			b.Fatal(err)
		}
		dec.Decode(packed)
		if !dec.Done() {
			b.Fatal("not done")
		}
	}
}
