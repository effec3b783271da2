// Package sampling implements the randomness sources used by key generation
// and encryption. Randomness is always drawn through an explicit PRNG passed
// by the caller; the package exposes no process-wide generator.
package sampling

import (
	"crypto/rand"
	"io"
	"sync"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// PRNG is an interface for the generation of random bytes.
type PRNG interface {
	io.Reader
}

// ThreadSafePRNG is a PRNG backed by the system entropy source.
// It is safe for concurrent use.
type ThreadSafePRNG struct {
}

// NewPRNG returns a new PRNG backed by crypto/rand.
func NewPRNG() (*ThreadSafePRNG, error) {
	return &ThreadSafePRNG{}, nil
}

// Read fills sum with random bytes from the system entropy source.
func (prng *ThreadSafePRNG) Read(sum []byte) (n int, err error) {
	return rand.Read(sum)
}

// KeyedPRNG is a PRNG producing a deterministic stream of bytes from a key,
// using the blake2b XOF. Two KeyedPRNG instantiated with the same key produce
// the same stream, which is what makes key generation and encryption
// reproducible in tests.
// WARNING: a KeyedPRNG instantiated with key=nil is insecure.
type KeyedPRNG struct {
	mutex sync.Mutex
	key   []byte
	xof   blake2b.XOF
}

// NewKeyedPRNG creates a new KeyedPRNG from the provided key.
// A nil key is treated as []byte{}.
func NewKeyedPRNG(key []byte) (*KeyedPRNG, error) {
	var err error
	prng := new(KeyedPRNG)
	prng.key = append([]byte{}, key...)
	prng.xof, err = blake2b.NewXOF(blake2b.OutputLengthUnknown, key)
	return prng, err
}

// Key returns a copy of the key used to seed the PRNG.
// The returned value can be passed to NewKeyedPRNG to instantiate a new PRNG
// producing the same stream of bytes.
func (prng *KeyedPRNG) Key() (key []byte) {
	key = make([]byte, len(prng.key))
	copy(key, prng.key)
	return
}

// Read reads bytes from the KeyedPRNG on sum.
// Concurrent calls do not race, but interleave the deterministic stream.
func (prng *KeyedPRNG) Read(sum []byte) (n int, err error) {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	return prng.xof.Read(sum)
}

// Reset resets the PRNG to its initial state.
func (prng *KeyedPRNG) Reset() {
	prng.mutex.Lock()
	defer prng.mutex.Unlock()
	prng.xof.Reset()
}

// DeriveKey derives an independent sub-key from key and a domain separation
// label, using blake3. It is used to split a single seed into independent
// streams, e.g. one per generated key.
func DeriveKey(key []byte, label string) []byte {
	h := blake3.New()
	h.Write([]byte(label))
	h.Write(key)
	return h.Sum(nil)
}
