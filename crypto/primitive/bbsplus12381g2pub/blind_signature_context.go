/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"fmt"
	"io"
	"sort"

	ml "github.com/IBM/mathlib"
)

// BlindSignatureContext is the holder's request for a blind signature: a Pedersen
// commitment to the messages kept hidden from the signer together with a proof of
// knowledge of its openings.
type BlindSignatureContext struct {
	Commitment *ml.G1
	Challenge  *ml.Zr
	PoK        *ProofG1
}

// NewBlindSignatureContext commits to the given messages, keyed by their index in
// the signed message list, and proves knowledge of the commitment openings. The
// challenge is bound to the signing nonce agreed with the signer. It returns the
// context to be sent to the signer and the blinding factor the holder unblinds
// the signature with. An empty messages map is allowed, the context then proves
// knowledge of the blinding factor alone.
func NewBlindSignatureContext(messages map[int]*SignatureMessage, generators *PublicKeyWithGenerators,
	nonce *ProofNonce, rng io.Reader) (*BlindSignatureContext, *ml.Zr, error) {
	blindingFactor, err := createRandFr(rng)
	if err != nil {
		return nil, nil, err
	}

	indexes := make([]int, 0, len(messages))

	for ind := range messages {
		if ind < 0 || ind >= generators.MessagesCount {
			return nil, nil, fmt.Errorf("%w: committed index %d is out of range of %d messages",
				ErrSizeMismatch, ind, generators.MessagesCount)
		}

		indexes = append(indexes, ind)
	}

	sort.Ints(indexes)

	bases := make([]*ml.G1, 0, len(indexes)+1)
	secrets := make([]*ml.Zr, 0, len(indexes)+1)

	bases = append(bases, generators.H0)
	secrets = append(secrets, blindingFactor)

	for _, ind := range indexes {
		bases = append(bases, generators.H[ind])
		secrets = append(secrets, messages[ind].FR)
	}

	committing := NewProverCommittingG1()
	for _, base := range bases {
		committing.Commit(base)
	}

	committed := committing.Finish()

	commitment := sumOfG1Products(bases, secrets)

	challenge := contextChallenge(generators, commitment, committed.Commitment, nonce)

	pok := committed.GenerateProof(challenge, secrets)

	zeroizeFrSlice(committed.BlindingFactors)

	return &BlindSignatureContext{
		Commitment: commitment,
		Challenge:  challenge,
		PoK:        pok,
	}, blindingFactor, nil
}

// Verify checks the proof of knowledge of the commitment openings against the
// committed indexes the signer expects and the signing nonce.
func (bsc *BlindSignatureContext) Verify(committedIndexes []int, generators *PublicKeyWithGenerators,
	nonce *ProofNonce) error {
	bases := make([]*ml.G1, 0, len(committedIndexes)+1)
	bases = append(bases, generators.H0)

	for _, ind := range committedIndexes {
		if ind < 0 || ind >= generators.MessagesCount {
			return fmt.Errorf("%w: committed index %d is out of range of %d messages",
				ErrSizeMismatch, ind, generators.MessagesCount)
		}

		bases = append(bases, generators.H[ind])
	}

	if len(bases) != len(bsc.PoK.Responses) {
		return fmt.Errorf("%w: %d commitment openings proven, %d expected",
			ErrSizeMismatch, len(bsc.PoK.Responses), len(bases))
	}

	commitment := bsc.PoK.getChallengeContribution(bases, bsc.Commitment, bsc.Challenge)

	challenge := contextChallenge(generators, bsc.Commitment, commitment, nonce)

	if !challenge.Equals(bsc.Challenge) {
		return fmt.Errorf("%w: challenge recomputation failed", ErrInvalidProof)
	}

	return nil
}

func contextChallenge(generators *PublicKeyWithGenerators, commitment, proverCommitment *ml.G1,
	nonce *ProofNonce) *ml.Zr {
	challengeBytes := generators.W.Compressed()
	challengeBytes = append(challengeBytes, commitment.Bytes()...)
	challengeBytes = append(challengeBytes, proverCommitment.Bytes()...)
	challengeBytes = append(challengeBytes, nonce.ToBytes()...)

	return frFromOKM(challengeBytes)
}

// ToBytes converts BlindSignatureContext to bytes.
func (bsc *BlindSignatureContext) ToBytes() []byte {
	bytes := make([]byte, 0, g1CompressedSize+frCompressedSize+intSize+len(bsc.PoK.Responses)*frCompressedSize)

	bytes = append(bytes, bsc.Commitment.Compressed()...)
	bytes = append(bytes, frToRepr(bsc.Challenge).Bytes()...)
	bytes = append(bytes, uint32ToBytes(uint32(len(bsc.PoK.Responses)))...)

	for _, response := range bsc.PoK.Responses {
		bytes = append(bytes, frToRepr(response).Bytes()...)
	}

	return bytes
}

// ParseBlindSignatureContext parses BlindSignatureContext from bytes.
func ParseBlindSignatureContext(bytes []byte) (*BlindSignatureContext, error) {
	if len(bytes) < g1CompressedSize+frCompressedSize+intSize {
		return nil, fmt.Errorf("%w: invalid size of blind signature context", ErrMalformedInput)
	}

	offset := 0

	commitment, err := curve.NewG1FromCompressed(bytes[:g1CompressedSize])
	if err != nil {
		return nil, fmt.Errorf("%w: deserialize commitment: %s", ErrMalformedInput, err.Error())
	}

	offset += g1CompressedSize

	challenge, err := parseFr(bytes[offset : offset+frCompressedSize])
	if err != nil {
		return nil, fmt.Errorf("parse challenge: %w", err)
	}

	offset += frCompressedSize

	responsesCount := int(uint32FromBytes(bytes[offset : offset+intSize]))
	offset += intSize

	if len(bytes) != offset+responsesCount*frCompressedSize {
		return nil, fmt.Errorf("%w: invalid size of blind signature context", ErrMalformedInput)
	}

	responses := make([]*ml.Zr, responsesCount)
	for i := range responses {
		responses[i], err = parseFr(bytes[offset : offset+frCompressedSize])
		if err != nil {
			return nil, fmt.Errorf("parse response %d: %w", i, err)
		}

		offset += frCompressedSize
	}

	return &BlindSignatureContext{
		Commitment: commitment,
		Challenge:  challenge,
		PoK:        NewProofG1(nil, responses),
	}, nil
}
