package bgv

import (
	"github.com/tuneinsight/bgv/ring"
)

// SecretKey is a structure that stores a small-coefficient secret polynomial.
// Value[i] holds the secret reduced modulo the i-th modulus of the chain, so
// that decryption is possible at every level. The key is generated once and
// never mutated afterwards.
type SecretKey struct {
	Value []ring.Poly
}

// AtLevel returns the representation of the secret modulo the modulus of the
// given level.
func (sk *SecretKey) AtLevel(p Parameters, level int) ring.Poly {
	return sk.Value[p.chainIndex(level)]
}

// PublicKey is a structure that stores an encryption of zero (b, a) with
// b = -(a*s) + e modulo the top modulus of the chain. It is shared read-only
// by any number of encryptors.
type PublicKey struct {
	Value [2]ring.Poly
}

// RelinearizationKey is a structure that stores, for every modulus of the
// chain, one ciphertext-like pair per base-B digit, encrypting B^j * s^2
// under s. It is consumed by Evaluator.Relinearize to collapse degree-2
// ciphertexts back to degree 1.
type RelinearizationKey struct {
	// Base is the digit decomposition base B.
	Base uint64

	// Keys[i][j] is the pair (b, a) with b = -(a*s) + e + B^j * s^2 modulo
	// the i-th modulus of the chain.
	Keys [][][2]ring.Poly
}

// keysAtLevel returns the digit-decomposed key pairs for the modulus of the
// given level.
func (rlk *RelinearizationKey) keysAtLevel(p Parameters, level int) [][2]ring.Poly {
	return rlk.Keys[p.chainIndex(level)]
}
