// Copyright (c) 2023, ChongsKeeper.
// SPDX-License-Identifier: BSD-3-Clause

// Package huffman implements streaming Huffman coding over byte streams.
// A prefix code is built from observed byte frequencies; the Encoder packs
// code bits into bytes and the Decoder walks the rebuilt tree bit by bit.
// Both sides construct their tree independently from the same frequency
// table and must arrive at identical code assignments, so every step of
// tree construction is deterministic.
package huffman

import (
	"container/heap"
	"errors"
)

var (
	// ErrEmptyAlphabet is returned when a tree is requested for a
	// frequency table with no byte value present.
	ErrEmptyAlphabet = errors.New("huffman: empty alphabet")

	// ErrNoTree is returned by Encode when BuildTree has not been called.
	ErrNoTree = errors.New("huffman: encode before BuildTree")
)

// FrequencyTable counts occurrences of each byte value. The array index is
// the byte value, which fixes a total order over entries; every iteration
// over the table runs in ascending byte order so that the encoding and
// decoding sides seed their trees identically.
type FrequencyTable struct {
	counts [256]uint64
}

// Add increments the count of every byte in chunk. It may be called any
// number of times before the table is used to build a tree.
func (t *FrequencyTable) Add(chunk []byte) {
	for _, b := range chunk {
		t.counts[b]++
	}
}

// Count returns the occurrence count of b.
func (t *FrequencyTable) Count(b byte) uint64 { return t.counts[b] }

// Set overwrites the count of b. Used when reloading a serialized table.
func (t *FrequencyTable) Set(b byte, n uint64) { t.counts[b] = n }

// Total returns the sum of all counts, which equals the number of bytes
// fed to Add.
func (t *FrequencyTable) Total() (n uint64) {
	for _, c := range t.counts {
		n += c
	}
	return n
}

// Distinct returns the number of byte values with a nonzero count.
func (t *FrequencyTable) Distinct() (n int) {
	for _, c := range t.counts {
		if c != 0 {
			n++
		}
	}
	return n
}

// ForEach calls fn for every byte value with a nonzero count, in ascending
// byte order.
func (t *FrequencyTable) ForEach(fn func(b byte, count uint64)) {
	for i, c := range t.counts {
		if c != 0 {
			fn(byte(i), c)
		}
	}
}

// node is one tree node. A node is a leaf or a branch depending on the
// tag, never on whether its children are nil.
type node struct {
	left, right *node
	freq        uint64
	value       byte
	leaf        bool
}

// nodeQueue is a min-heap over tree nodes ordered by frequency. Ties are
// broken by seq, the order nodes were created in, so equal-weight subtrees
// always combine the same way on both sides.
type nodeQueue struct {
	nodes   []*node
	seqs    []int
	counter int
}

func (q *nodeQueue) Len() int { return len(q.nodes) }

func (q *nodeQueue) Less(i, j int) bool {
	if q.nodes[i].freq != q.nodes[j].freq {
		return q.nodes[i].freq < q.nodes[j].freq
	}
	return q.seqs[i] < q.seqs[j]
}

func (q *nodeQueue) Swap(i, j int) {
	q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i]
	q.seqs[i], q.seqs[j] = q.seqs[j], q.seqs[i]
}

func (q *nodeQueue) Push(x any) {
	q.nodes = append(q.nodes, x.(*node))
	q.seqs = append(q.seqs, q.next())
}

func (q *nodeQueue) Pop() any {
	n := q.nodes[len(q.nodes)-1]
	q.nodes = q.nodes[:len(q.nodes)-1]
	q.seqs = q.seqs[:len(q.seqs)-1]
	return n
}

func (q *nodeQueue) next() int {
	q.counter++
	return q.counter
}

// buildTree builds the Huffman tree for table. Leaves are seeded in
// ascending byte order, then the two smallest nodes are repeatedly merged
// under a branch until one root remains. A table with a single distinct
// byte yields a tree that is one lone leaf.
func buildTree(table *FrequencyTable) (*node, error) {
	q := &nodeQueue{}
	table.ForEach(func(b byte, count uint64) {
		q.nodes = append(q.nodes, &node{value: b, freq: count, leaf: true})
		q.seqs = append(q.seqs, q.next())
	})
	if len(q.nodes) == 0 {
		return nil, ErrEmptyAlphabet
	}
	heap.Init(q)
	for q.Len() > 1 {
		left := heap.Pop(q).(*node)
		right := heap.Pop(q).(*node)
		heap.Push(q, &node{left: left, right: right, freq: left.freq + right.freq})
	}
	return heap.Pop(q).(*node), nil
}

// codeTable maps each byte value to its root-to-leaf path, stored as a
// sequence of 0/1 bit values. A lone-leaf tree assigns its byte an empty
// path; callers special-case that (the byte is represented by zero bits).
type codeTable struct {
	codes   [256][]byte
	present [256]bool
}

// buildCodes derives the code table by one depth-first walk: left appends
// a 0, right appends a 1, a leaf records the path accumulated so far.
func buildCodes(root *node) *codeTable {
	ct := &codeTable{}
	var walk func(n *node, path []byte)
	walk = func(n *node, path []byte) {
		if n.leaf {
			ct.codes[n.value] = append([]byte(nil), path...)
			ct.present[n.value] = true
			return
		}
		walk(n.left, append(path, 0))
		walk(n.right, append(path, 1))
	}
	walk(root, nil)
	return ct
}
