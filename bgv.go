/*
Package bgv implements a leveled BGV-type homomorphic encryption scheme over
the rings Z_q[X]/(X^N+1), with exact modular arithmetic, digit-decomposed
relinearization and modulus switching along a decreasing modulus chain.

Every ciphertext carries an estimate of the magnitude of its noise term.
Operations update the estimate, NoiseBudget exposes the remaining headroom
and Decrypt reports an explicit diagnostic when the estimate exceeds the
correctness bound, instead of silently returning an unreliable result.

All randomness is drawn from an explicit sampling.PRNG passed by the caller,
making key generation and encryption reproducible and safe to run
concurrently with independent PRNGs.
*/
package bgv

import (
	"errors"
)

// Version is the current version of the library.
const Version = "1.0.0"

var (
	// ErrInvalidParameters is returned when a parameter set is rejected at
	// construction.
	ErrInvalidParameters = errors.New("invalid parameters")

	// ErrValueOutOfRange is returned by the encoder when an input value does
	// not fit the plaintext space.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrLevelMismatch is returned when operating on ciphertexts at
	// different levels of the modulus chain.
	ErrLevelMismatch = errors.New("level mismatch")

	// ErrLevelExhausted is returned when a multiplication or modulus switch
	// is attempted at the bottom of the modulus chain.
	ErrLevelExhausted = errors.New("level exhausted")

	// ErrParameterMismatch is returned when deserializing data produced
	// under a different parameter set.
	ErrParameterMismatch = errors.New("parameter mismatch")
)
