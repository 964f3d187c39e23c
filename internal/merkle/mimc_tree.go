package merkle

import (
	"errors"
	"math/big"

	bnmimc "github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// Depth is the height of a board commitment: 128 leaves cover 100 cells.
const Depth = 7

// Leaves is the padded leaf count of a board commitment.
const Leaves = 1 << Depth

// --- encode BN254 field elements as 32-byte big-endian ---
func feBytes(x *big.Int) []byte {
	out := make([]byte, 32)
	x.FillBytes(out)
	return out
}

// HashLeaf hashes one board cell. Consistent with the in-circuit MiMC.
func HashLeaf(bit uint8) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(new(big.Int).SetUint64(uint64(bit))))
	return new(big.Int).SetBytes(h.Sum(nil))
}

// HashNode hashes two children, left first.
func HashNode(left, right *big.Int) *big.Int {
	h := bnmimc.NewMiMC()
	h.Write(feBytes(left))
	h.Write(feBytes(right))
	return new(big.Int).SetBytes(h.Sum(nil))
}

// Tree is a fixed-size binary Merkle tree stored level by level.
type Tree struct {
	Depth  int          `json:"depth"`
	Levels [][]*big.Int `json:"levels"` // Levels[0]=leaves, Levels[Depth]=root
}

// Commit builds the board tree. Cells past the board are padded with the
// hash of water.
func Commit(cells []uint8) (*Tree, error) {
	if len(cells) > Leaves {
		return nil, errors.New("too many leaves")
	}
	leaves := make([]*big.Int, Leaves)
	water := HashLeaf(0)
	for i := range leaves {
		if i < len(cells) {
			if cells[i] > 1 {
				return nil, errors.New("cell is not binary")
			}
			leaves[i] = HashLeaf(cells[i])
		} else {
			leaves[i] = new(big.Int).Set(water)
		}
	}

	levels := [][]*big.Int{leaves}
	for prev := leaves; len(prev) > 1; {
		up := make([]*big.Int, len(prev)/2)
		for i := range up {
			up[i] = HashNode(prev[2*i], prev[2*i+1])
		}
		levels = append(levels, up)
		prev = up
	}
	return &Tree{Depth: len(levels) - 1, Levels: levels}, nil
}

func (t *Tree) Root() *big.Int { return new(big.Int).Set(t.Levels[len(t.Levels)-1][0]) }

// Path returns the sibling hashes for leaf idx, bottom first. Bit i of idx
// tells whether the node at level i is a right child.
func (t *Tree) Path(idx int) ([]*big.Int, error) {
	if idx < 0 || idx >= len(t.Levels[0]) {
		return nil, errors.New("idx OOB")
	}
	path := make([]*big.Int, 0, t.Depth)
	cur := idx
	for level := 0; level < t.Depth; level++ {
		path = append(path, new(big.Int).Set(t.Levels[level][cur^1]))
		cur /= 2
	}
	return path, nil
}

// VerifyPath recomputes the root from a leaf value and its path.
func VerifyPath(root *big.Int, bit uint8, idx int, path []*big.Int) bool {
	cur := HashLeaf(bit)
	for _, sib := range path {
		if idx%2 == 1 {
			cur = HashNode(sib, cur)
		} else {
			cur = HashNode(cur, sib)
		}
		idx /= 2
	}
	return cur.Cmp(root) == 0
}

// Salt binds a root to a secret so equal boards commit differently.
func Salt(salt, root *big.Int) *big.Int { return HashNode(salt, root) }
