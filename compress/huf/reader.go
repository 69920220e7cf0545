// Copyright (c) 2023, ChongsKeeper.
// SPDX-License-Identifier: BSD-3-Clause

package huf

import (
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/ChongsKeeper/Huffman-File-Compressor/compress/huffman"
)

// Reader decompresses a .huf stream. The header is read and validated by
// NewReader (or Reset), so Header fields such as Name and OriginalSize are
// available before the first Read; callers typically need Name to decide
// where the output goes.
//
// Read returns exactly OriginalSize decoded bytes followed by io.EOF. The
// digest of the decoded bytes is compared against the header's at end of
// stream; a mismatch surfaces as ErrChecksum in place of io.EOF. Packed
// input running out earlier surfaces as ErrTruncated, which the decoder
// itself cannot detect: only the decoded-length signal bounds the stream.
type Reader struct {
	Header

	src    io.Reader
	dec    *huffman.Decoder
	digest *xxhash.Digest
	buf    []byte
	out    []byte // decoded bytes not yet delivered
	err    error  // sticky terminal state
}

// NewReader reads the header from src and returns a Reader delivering the
// decompressed bytes.
func NewReader(src io.Reader) (*Reader, error) {
	r := &Reader{}
	if err := r.Reset(src); err != nil {
		return nil, err
	}
	return r, nil
}

// Reset discards the Reader's state and re-initializes it from a new
// stream, retaining its buffers.
func (r *Reader) Reset(src io.Reader) error {
	h, err := ReadHeader(src)
	if err != nil {
		return err
	}
	dec, err := huffman.NewDecoder(h.Freqs, int64(h.OriginalSize))
	if err != nil {
		return fmt.Errorf("huf: %w", err)
	}
	if r.buf == nil {
		r.buf = make([]byte, ChunkSize)
	}
	if r.digest == nil {
		r.digest = xxhash.New()
	} else {
		r.digest.Reset()
	}
	r.Header = *h
	r.src = src
	r.dec = dec
	r.out = nil
	r.err = nil
	return nil
}

func (r *Reader) Read(p []byte) (int, error) {
	for {
		if len(r.out) > 0 {
			n := copy(p, r.out)
			r.out = r.out[n:]
			return n, nil
		}
		if r.err != nil {
			return 0, r.err
		}
		if r.dec.Done() {
			r.err = io.EOF
			if r.digest.Sum64() != r.Sum {
				r.err = ErrChecksum
			}
			continue
		}
		n, rerr := r.src.Read(r.buf)
		// Decode even a zero-length chunk: a lone-leaf tree synthesizes
		// output with no input at all, and a code ending flush on the last
		// byte boundary completes only on this call.
		out := r.dec.Decode(r.buf[:n])
		r.digest.Write(out)
		r.out = out
		if r.dec.Done() {
			continue
		}
		if rerr == io.EOF && len(out) == 0 {
			rerr = ErrTruncated
		}
		if rerr != nil && rerr != io.EOF {
			r.err = rerr
		}
	}
}
