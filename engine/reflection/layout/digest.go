package layout

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Digest is a content hash of a layout tree. Two trees with equal digests produce the same
// cursor offsets and the same binding-layout table.
type Digest [sha256.Size]byte

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// DigestOf hashes the canonical form of the tree rooted at n.
//
// Parameters:
//   - n: the root node
//
// Returns:
//   - Digest: the tree's digest
func DigestOf(n *Node) Digest {
	h := sha256.New()
	writeNode(h, n)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func writeNode(h hash.Hash, n *Node) {
	if n == nil {
		writeInts(h, -1)
		return
	}
	writeString(h, n.name)
	writeInts(h, int(n.kind), int(n.scalar), n.align, n.count, int(n.shape), int(n.access), n.reservedSets)
	writeInts(h, n.size[:]...)
	writeInts(h, n.stride[:]...)
	writeInts(h, n.container[:]...)
	writeInts(h, n.elementOffset[:]...)
	writeInts(h, len(n.fields))
	for _, f := range n.fields {
		writeString(h, f.Name)
		writeInts(h, f.offset[:]...)
		writeNode(h, f.Node)
	}
	writeNode(h, n.element)
}

func writeInts(h hash.Hash, values ...int) {
	var buf [8]byte
	for _, v := range values {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		h.Write(buf[:])
	}
}

func writeString(h hash.Hash, s string) {
	writeInts(h, len(s))
	h.Write([]byte(s))
}
