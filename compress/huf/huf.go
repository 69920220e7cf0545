// Copyright (c) 2023, ChongsKeeper.
// SPDX-License-Identifier: BSD-3-Clause

// Package huf implements the .huf container around the raw Huffman codec,
// the way gzip wraps flate: a header carrying everything the decoding side
// needs (the serialized frequency table, the original length and an
// integrity digest) followed by the packed bitstream.
//
// Container layout, all integers big-endian:
//
//	offset  bytes  field
//	0       4      signature "ANHC"
//	4       2      version major, minor
//	6       8      xxhash64 of the original bytes
//	14      8      original size
//	22      8      compressed size (backpatched after encoding)
//	30      1      filename length n
//	31      n      filename
//	31+n    2      frequency table entry count
//	33+n    9*f    table entries: byte value, count (ascending byte value)
//
// The table entries are written and read in ascending byte order; the
// codec relies on that order to rebuild a tree identical to the encoding
// side's.
package huf

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/ChongsKeeper/Huffman-File-Compressor/compress/huffman"
)

// Signature opens every .huf file. A stream without it was not written by
// this format.
const Signature = "ANHC"

// Format version written by this package. Major 1 was the original layout
// with an MD5 digest; major 2 carries xxhash64.
const (
	VersionMajor = 2
	VersionMinor = 0
)

// ChunkSize is the unit both passes read and decode in.
const ChunkSize = 8192

// compressedSizeOffset is where the compressed size lives relative to the
// start of the header, for backpatching once encoding has finished.
const compressedSizeOffset = 22

var (
	ErrBadSignature = errors.New("huf: not a huf stream")
	ErrVersion      = errors.New("huf: unsupported format version")
	ErrEmptyTable   = errors.New("huf: empty frequency table")
	ErrEmptyInput   = errors.New("huf: refusing to compress empty input")
	ErrChecksum     = errors.New("huf: checksum mismatch")
	ErrTruncated    = errors.New("huf: truncated stream")
)

// Header is the decoded .huf header.
type Header struct {
	Major, Minor   uint8
	Sum            uint64 // xxhash64 of the original bytes
	OriginalSize   uint64
	CompressedSize uint64
	Name           string // original filename, no path
	Freqs          *huffman.FrequencyTable
}

// write serializes h at w's current position. The compressed size field is
// written as-is; Compress backpatches it afterwards.
func (h *Header) write(w io.Writer) error {
	if len(h.Name) > 255 {
		return fmt.Errorf("huf: filename %q longer than 255 bytes", h.Name)
	}
	buf := make([]byte, 0, 33+len(h.Name))
	buf = append(buf, Signature...)
	buf = append(buf, h.Major, h.Minor)
	buf = binary.BigEndian.AppendUint64(buf, h.Sum)
	buf = binary.BigEndian.AppendUint64(buf, h.OriginalSize)
	buf = binary.BigEndian.AppendUint64(buf, h.CompressedSize)
	buf = append(buf, byte(len(h.Name)))
	buf = append(buf, h.Name...)
	buf = binary.BigEndian.AppendUint16(buf, uint16(h.Freqs.Distinct()))
	h.Freqs.ForEach(func(b byte, count uint64) {
		buf = append(buf, b)
		buf = binary.BigEndian.AppendUint64(buf, count)
	})
	_, err := w.Write(buf)
	return err
}

// ReadHeader reads and validates a .huf header from r, leaving r
// positioned at the first packed byte. The signature, version and a
// non-empty frequency table are all checked here, so a Header returned
// without error is usable for decoding.
func ReadHeader(r io.Reader) (*Header, error) {
	fixed := make([]byte, 31)
	if _, err := io.ReadFull(r, fixed); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrBadSignature
		}
		return nil, err
	}
	if string(fixed[:4]) != Signature {
		return nil, ErrBadSignature
	}
	h := &Header{
		Major:          fixed[4],
		Minor:          fixed[5],
		Sum:            binary.BigEndian.Uint64(fixed[6:]),
		OriginalSize:   binary.BigEndian.Uint64(fixed[14:]),
		CompressedSize: binary.BigEndian.Uint64(fixed[22:]),
	}
	if h.Major != VersionMajor || h.Minor != VersionMinor {
		return nil, fmt.Errorf("%w: %d.%d", ErrVersion, h.Major, h.Minor)
	}
	name := make([]byte, fixed[30])
	if _, err := io.ReadFull(r, name); err != nil {
		return nil, fmt.Errorf("huf: short header: %w", err)
	}
	h.Name = string(name)

	var count [2]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return nil, fmt.Errorf("huf: short header: %w", err)
	}
	entries := int(binary.BigEndian.Uint16(count[:]))
	if entries == 0 {
		return nil, ErrEmptyTable
	}
	if entries > 256 {
		return nil, fmt.Errorf("huf: frequency table claims %d entries", entries)
	}
	h.Freqs = &huffman.FrequencyTable{}
	entry := make([]byte, 9)
	for i := 0; i < entries; i++ {
		if _, err := io.ReadFull(r, entry); err != nil {
			return nil, fmt.Errorf("huf: short frequency table: %w", err)
		}
		h.Freqs.Set(entry[0], binary.BigEndian.Uint64(entry[1:]))
	}
	return h, nil
}

// List reads only the header of a .huf stream, for inspection without
// decoding.
func List(r io.Reader) (*Header, error) {
	return ReadHeader(r)
}
