// Copyright (c) 2023, ChongsKeeper.
// SPDX-License-Identifier: BSD-3-Clause

package huf

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"

	"github.com/ChongsKeeper/Huffman-File-Compressor/compress/huffman"
)

// Progress is called after each encoded chunk with the number of input
// bytes consumed so far and the total. It may be nil.
type Progress func(done, total int64)

// Compress writes src as a .huf stream to dst. Huffman coding needs the
// full frequency table before the first output bit, so src is read twice:
// pass one accumulates the table and the digest, pass two encodes. The
// compressed size is known only after the second pass and is backpatched
// into the header, which is why dst must seek.
//
// name is recorded in the header as the filename to restore on
// decompression; it should carry no path. Empty input is rejected: a
// zero-byte file has an empty alphabet and no tree.
func Compress(dst io.WriteSeeker, src io.ReadSeeker, name string, progress Progress) (*Header, error) {
	size, err := src.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, ErrEmptyInput
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	enc := huffman.NewEncoder(size)
	digest := xxhash.New()
	buf := make([]byte, ChunkSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			digest.Write(buf[:n])
			enc.BuildFrequencyTable(buf[:n])
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, rerr
		}
	}
	if err := enc.BuildTree(); err != nil {
		return nil, fmt.Errorf("huf: %w", err)
	}

	h := &Header{
		Major:        VersionMajor,
		Minor:        VersionMinor,
		Sum:          digest.Sum64(),
		OriginalSize: uint64(size),
		Name:         name,
		Freqs:        enc.FrequencyTable(),
	}
	headerStart, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if err := h.write(dst); err != nil {
		return nil, err
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			packed, err := enc.Encode(buf[:n])
			if err != nil {
				return nil, err
			}
			if _, err := dst.Write(packed); err != nil {
				return nil, err
			}
			if progress != nil {
				progress(enc.Processed(), size)
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return nil, rerr
		}
	}
	if _, err := dst.Write(enc.Flush()); err != nil {
		return nil, err
	}

	h.CompressedSize = uint64(enc.CompressedSize())
	var sizeField [8]byte
	binary.BigEndian.PutUint64(sizeField[:], h.CompressedSize)
	if _, err := dst.Seek(headerStart+compressedSizeOffset, io.SeekStart); err != nil {
		return nil, err
	}
	if _, err := dst.Write(sizeField[:]); err != nil {
		return nil, err
	}
	if _, err := dst.Seek(0, io.SeekEnd); err != nil {
		return nil, err
	}
	return h, nil
}
