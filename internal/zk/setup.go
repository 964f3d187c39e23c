package zk

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

const (
	vkFile = "shot.vk"
	pkFile = "shot.pk"
)

// ShotPublic is what a verifier learns about a shot.
type ShotPublic struct {
	Root  *big.Int `json:"root"`
	Index int      `json:"index"`
	Hit   uint8    `json:"hit"`
}

// ShotWitness is the defender's private input for one shot.
type ShotWitness struct {
	Bit   uint8
	Index int
	Path  []*big.Int
	Salt  *big.Int
	Root  *big.Int // salted root
}

// Prover holds the compiled circuit and its Groth16 keys.
type Prover struct {
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey
}

// LoadProver compiles the shot circuit and loads its keys from dir,
// running the setup and writing the keys when they are missing or
// unreadable.
func LoadProver(dir string) (*Prover, error) {
	var circuit ShotCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("compile shot circuit: %w", err)
	}

	vkPath := filepath.Join(dir, vkFile)
	pkPath := filepath.Join(dir, pkFile)
	if vk, pk, err := readKeys(vkPath, pkPath); err == nil {
		return &Prover{cs: cs, pk: pk, vk: vk}, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("groth16 setup: %w", err)
	}
	if err := writeKey(vkPath, vk); err != nil {
		return nil, err
	}
	if err := writeKey(pkPath, pk); err != nil {
		return nil, err
	}
	return &Prover{cs: cs, pk: pk, vk: vk}, nil
}

// VerifyingKeyPath is where LoadProver keeps the verifying key.
func VerifyingKeyPath(dir string) string { return filepath.Join(dir, vkFile) }

// Prove produces a serialized proof for one shot.
func (p *Prover) Prove(w ShotWitness) ([]byte, ShotPublic, error) {
	if len(w.Path) != MerkleDepth {
		return nil, ShotPublic{}, errors.New("bad path length")
	}
	if w.Salt == nil || w.Root == nil {
		return nil, ShotPublic{}, errors.New("missing salt or root")
	}

	var assign ShotCircuit
	assign.Bit = w.Bit
	assign.Salt = w.Salt
	for i := 0; i < MerkleDepth; i++ {
		assign.Path[i] = w.Path[i]
	}
	assign.Root = w.Root
	assign.Index = w.Index
	assign.Hit = w.Bit

	fullWit, err := frontend.NewWitness(&assign, ecc.BN254.ScalarField())
	if err != nil {
		return nil, ShotPublic{}, err
	}
	proof, err := groth16.Prove(p.cs, p.pk, fullWit)
	if err != nil {
		return nil, ShotPublic{}, err
	}

	var buf bytes.Buffer
	if _, err := proof.WriteTo(&buf); err != nil {
		return nil, ShotPublic{}, err
	}
	pub := ShotPublic{Root: new(big.Int).Set(w.Root), Index: w.Index, Hit: w.Bit}
	return buf.Bytes(), pub, nil
}

// Verify checks a proof against the expected root with the prover's key.
func (p *Prover) Verify(proofBin []byte, pub ShotPublic, root *big.Int) (bool, error) {
	return verify(p.vk, proofBin, pub, root)
}

// VerifyShot checks a proof with a verifying key read from vkPath.
// (Verify returns only error; nil => valid)
func VerifyShot(vkPath string, proofBin []byte, pub ShotPublic, root *big.Int) (bool, error) {
	vk, err := readVK(vkPath)
	if err != nil {
		return false, err
	}
	return verify(vk, proofBin, pub, root)
}

func verify(vk groth16.VerifyingKey, proofBin []byte, pub ShotPublic, root *big.Int) (bool, error) {
	if pub.Root == nil {
		return false, errors.New("proof payload missing public root")
	}
	if pub.Root.Cmp(root) != 0 {
		return false, errors.New("root mismatch: proof root != committed root")
	}
	if pub.Hit > 1 {
		return false, errors.New("invalid hit")
	}

	var pubAssign ShotCircuit
	pubAssign.Root = root
	pubAssign.Index = pub.Index
	pubAssign.Hit = pub.Hit
	pubWit, err := frontend.NewWitness(&pubAssign, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return false, err
	}

	pr := groth16.NewProof(ecc.BN254)
	if _, err := pr.ReadFrom(bytes.NewReader(proofBin)); err != nil {
		return false, err
	}
	if err := groth16.Verify(pr, vk, pubWit); err != nil {
		return false, nil
	}
	return true, nil
}

// --- key IO helpers using io.WriterTo / io.ReaderFrom ---

func writeKey(path string, k io.WriterTo) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = k.WriteTo(f)
	return err
}

func readVK(path string) (groth16.VerifyingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	vk := groth16.NewVerifyingKey(ecc.BN254)
	_, err = vk.ReadFrom(f)
	return vk, err
}

func readPK(path string) (groth16.ProvingKey, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	pk := groth16.NewProvingKey(ecc.BN254)
	_, err = pk.ReadFrom(f)
	return pk, err
}

func readKeys(vkPath, pkPath string) (groth16.VerifyingKey, groth16.ProvingKey, error) {
	vk, err := readVK(vkPath)
	if err != nil {
		return nil, nil, err
	}
	pk, err := readPK(pkPath)
	if err != nil {
		return nil, nil, err
	}
	return vk, pk, nil
}
