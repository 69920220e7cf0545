// Copyright (c) 2023, ChongsKeeper.
// SPDX-License-Identifier: BSD-3-Clause

// Package hufc is a streaming Huffman file compressor. The raw codec lives
// in compress/huffman, the .huf container format in compress/huf, and a
// command-line front end under examples/huf.
package hufc

import "github.com/ChongsKeeper/Huffman-File-Compressor/compress/huf"

// FormatVersion returns the .huf container version this build writes.
// Files written by other major versions are rejected on read.
func FormatVersion() (major, minor uint8) {
	return huf.VersionMajor, huf.VersionMinor
}
