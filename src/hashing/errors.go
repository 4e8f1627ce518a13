package hashing

import "errors"

// sentinel errors returned by Hasher implementations. Callers can test for
// these with errors.Is even after a Hasher wraps them with extra context.
var (
	// ErrBadAlphabet is returned when a sequence contains a symbol outside
	// {A,C,G,T} (or its canonical complement).
	ErrBadAlphabet = errors.New("hashing: symbol outside ACGT alphabet")

	// ErrLengthError is returned when a sequence is shorter than K.
	ErrLengthError = errors.New("hashing: sequence shorter than k-mer size")

	// ErrUninitialized is returned when Shift/Enumerate is called before Seed.
	ErrUninitialized = errors.New("hashing: hasher used before seed")
)
