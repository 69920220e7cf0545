// Copyright (c) 2023, ChongsKeeper.
// SPDX-License-Identifier: BSD-3-Clause

package huffman

import "bytes"

// synthChunk caps how many bytes a lone-leaf Decoder synthesizes per
// Decode call, so a long single-symbol file is not materialized at once.
const synthChunk = 64 * 1024

// Decoder unpacks a Huffman bitstream back into the original bytes. It is
// built from the same frequency table the Encoder serialized and from the
// original decoded length. The length is the sole termination signal: the
// final packed byte may hold up to 7 padding bits with no meaning, so the
// bitstream itself cannot mark its own end.
//
// The current tree position is kept between Decode calls, so packed input
// may be chunked arbitrarily. A Decoder is used by a single caller; it is
// not safe for concurrent use.
//
// A truncated stream is not detected here: if input runs out while Done is
// still false, the caller must treat that as corruption.
type Decoder struct {
	root *node
	cur  *node

	emitted int64
	total   int64
}

// NewDecoder rebuilds the Huffman tree from table and returns a Decoder
// that will emit exactly total bytes. ErrEmptyAlphabet is returned for a
// table with no entries.
func NewDecoder(table *FrequencyTable, total int64) (*Decoder, error) {
	root, err := buildTree(table)
	if err != nil {
		return nil, err
	}
	return &Decoder{root: root, cur: root, total: total}, nil
}

// Decode consumes one chunk of packed bytes and returns the bytes decoded
// from it. Bits are taken most-significant first. At each bit step the
// current node is checked first: a leaf emits its value (unless the target
// length was already reached, in which case the remaining bits are
// padding) and resets the walk to the root, and only then is the step's
// bit consumed. That is the exact mirror of the Encoder's bit order.
//
// A lone-leaf tree has zero-length codes and therefore no bits to consume;
// Decode then synthesizes the repeated byte from the length signal alone,
// making progress even on an empty chunk.
func (d *Decoder) Decode(chunk []byte) []byte {
	if d.emitted >= d.total {
		return nil
	}
	if d.root.leaf {
		n := d.total - d.emitted
		if n > synthChunk {
			n = synthChunk
		}
		if n <= 0 {
			return nil
		}
		d.emitted += n
		return bytes.Repeat([]byte{d.root.value}, int(n))
	}

	out := make([]byte, 0, len(chunk))
	for _, b := range chunk {
		for i := 7; i >= 0; i-- {
			if d.cur.leaf {
				out = append(out, d.cur.value)
				d.emitted++
				d.cur = d.root
				if d.emitted == d.total {
					return out
				}
			}
			if (b>>uint(i))&1 == 0 {
				d.cur = d.cur.left
			} else {
				d.cur = d.cur.right
			}
		}
	}

	// A code that completes on the stream's last bit leaves its leaf
	// pending with no later bit to trigger the check above. Emitting it at
	// the end of the chunk consumes no bits and is indistinguishable from
	// emitting it at the start of the next one, so streams whose code bits
	// fill the last byte exactly still terminate.
	if d.cur.leaf && d.emitted < d.total {
		out = append(out, d.cur.value)
		d.emitted++
		d.cur = d.root
	}
	return out
}

// Done reports whether the Decoder has emitted the full decoded length.
// Further Decode calls after Done are harmless; they only discard padding.
func (d *Decoder) Done() bool { return d.emitted >= d.total }

// Emitted returns the number of decoded bytes produced so far.
func (d *Decoder) Emitted() int64 { return d.emitted }

// Total returns the decoded length the Decoder was created with.
func (d *Decoder) Total() int64 { return d.total }
