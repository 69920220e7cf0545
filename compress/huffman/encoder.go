// Copyright (c) 2023, ChongsKeeper.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import "fmt"

// Encoder packs a byte stream into Huffman code bits. It is fed in two
// passes: BuildFrequencyTable over the whole input first, then BuildTree
// once, then Encode over the whole input again followed by one Flush.
// Between Encode calls the Encoder holds up to 7 pending bits, so chunk
// boundaries never have to align with code or byte boundaries.
//
// An Encoder is used by a single caller; it is not safe for concurrent use.
type Encoder struct {
	table FrequencyTable
	codes *codeTable

	partial byte // pending output bits, left-aligned on flush
	nbits   int  // number of valid bits in partial, 0..7 between calls

	compressed int64 // whole packed bytes emitted, including the flush byte
	processed  int64 // input bytes consumed by Encode
	total      int64 // expected input length, progress reporting only
}

// NewEncoder returns an Encoder for an input of total bytes. The length is
// used only for progress reporting; correctness never depends on it.
func NewEncoder(total int64) *Encoder {
	return &Encoder{total: total}
}

// BuildFrequencyTable accumulates chunk into the frequency table. The
// entire input must be fed exactly once, in any number of chunks, before
// BuildTree.
func (e *Encoder) BuildFrequencyTable(chunk []byte) {
	e.table.Add(chunk)
}

// BuildTree builds the Huffman tree from the accumulated table and derives
// the code table. It must be called exactly once, after the first pass and
// before any Encode. ErrEmptyAlphabet is returned when no input was fed.
func (e *Encoder) BuildTree() error {
	root, err := buildTree(&e.table)
	if err != nil {
		return err
	}
	e.codes = buildCodes(root)
	return nil
}

// Encode appends the code bits of every byte in chunk to the pending bit
// buffer and returns the whole packed bytes that completed. Output bytes
// appear in the exact order their bits were appended. A single-symbol
// alphabet has a zero-length code, so Encode then returns no output; the
// decoded length recorded alongside the stream carries all the information.
//
// A chunk byte absent from the code table means the table was built from
// different data; that is a caller bug and Encode fails rather than emit a
// stream that cannot decode.
func (e *Encoder) Encode(chunk []byte) ([]byte, error) {
	if e.codes == nil {
		return nil, ErrNoTree
	}
	out := make([]byte, 0, len(chunk))
	for _, b := range chunk {
		if !e.codes.present[b] {
			return nil, fmt.Errorf("huffman: byte %#02x not in code table", b)
		}
		e.processed++
		for _, bit := range e.codes.codes[b] {
			e.partial = e.partial<<1 | bit
			e.nbits++
			if e.nbits == 8 {
				out = append(out, e.partial)
				e.partial = 0
				e.nbits = 0
				e.compressed++
			}
		}
	}
	return out, nil
}

// Flush terminates the stream. If 1 to 7 bits are pending they are shifted
// into the high end of one final byte, its low bits left zero, and that
// byte is returned; with no pending bits Flush returns nothing. The
// trailing padding bits carry no meaning: the decoder stops on the decoded
// length, not on the bitstream.
func (e *Encoder) Flush() []byte {
	if e.nbits == 0 {
		return nil
	}
	b := e.partial << (8 - e.nbits)
	e.partial = 0
	e.nbits = 0
	e.compressed++
	return []byte{b}
}

// CompressedSize returns the number of packed bytes produced so far,
// including any byte emitted by Flush. It never decreases.
func (e *Encoder) CompressedSize() int64 { return e.compressed }

// Processed returns the number of input bytes consumed by Encode.
func (e *Encoder) Processed() int64 { return e.processed }

// Total returns the expected input length the Encoder was created with.
func (e *Encoder) Total() int64 { return e.total }

// FrequencyTable exposes the accumulated table for serialization. The
// decoding side rebuilds an identical tree from it, so it must be persisted
// verbatim.
func (e *Encoder) FrequencyTable() *FrequencyTable { return &e.table }
