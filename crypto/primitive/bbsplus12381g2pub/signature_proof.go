/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"fmt"

	ml "github.com/IBM/mathlib"
)

// PoKOfSignature is Proof of Knowledge of a Signature that is used by the prover to construct PoKOfSignatureProof.
type PoKOfSignature struct {
	aPrime *ml.G1
	aBar   *ml.G1
	d      *ml.G1

	pokVC1   *ProverCommittedG1
	secrets1 []*ml.Zr

	pokVC2   *ProverCommittedG1
	secrets2 []*ml.Zr

	revealedMessages map[int]*SignatureMessage
}

// NewPoKOfSignature creates a new PoKOfSignature.
func NewPoKOfSignature(signature *Signature, messages []*ProofMessage,
	pubKey *PublicKeyWithGenerators) (*PoKOfSignature, error) {
	sigMessages := make([]*SignatureMessage, len(messages))
	for i, m := range messages {
		sigMessages[i] = m.Message()
	}

	err := signature.Verify(sigMessages, pubKey)
	if err != nil {
		return nil, fmt.Errorf("verify input signature: %w", err)
	}

	r1, r2 := createRandSignatureFr(), createRandSignatureFr()
	b := computeB(signature.S, sigMessages, pubKey)
	aPrime := signature.A.Mul(frToRepr(r1))

	aBarDenom := aPrime.Mul(frToRepr(signature.E))

	aBar := b.Mul(frToRepr(r1))
	aBar.Sub(aBarDenom)

	r2D := r2.Copy()
	r2D.Neg()

	commitmentBasesCount := 2
	cb := newCommitmentBuilder(commitmentBasesCount)
	cb.add(b, r1)
	cb.add(pubKey.H0, r2D)

	d := cb.build()
	r3 := r1.Copy()
	r3.InvModP(curve.GroupOrder)

	sPrime := r2.Mul(r3)
	sPrime.Neg()
	sPrime = sPrime.Plus(signature.S)

	pokVC1, secrets1 := newVC1Signature(aPrime, pubKey.H0, signature.E, r2)

	revealedMessages := make(map[int]*SignatureMessage)

	for i, m := range messages {
		if m.Revealed != nil {
			revealedMessages[i] = m.Message()
		}
	}

	pokVC2, secrets2 := newVC2Signature(d, r3, pubKey, sPrime, messages)

	return &PoKOfSignature{
		aPrime:           aPrime,
		aBar:             aBar,
		d:                d,
		pokVC1:           pokVC1,
		secrets1:         secrets1,
		pokVC2:           pokVC2,
		secrets2:         secrets2,
		revealedMessages: revealedMessages,
	}, nil
}

func newVC1Signature(aPrime *ml.G1, h0 *ml.G1,
	e, r2 *ml.Zr) (*ProverCommittedG1, []*ml.Zr) {
	committing1 := NewProverCommittingG1()
	secrets1 := make([]*ml.Zr, 2)

	committing1.Commit(aPrime)

	sigE := e.Copy()
	sigE.Neg()
	secrets1[0] = sigE

	committing1.Commit(h0)

	secrets1[1] = r2
	pokVC1 := committing1.Finish()

	return pokVC1, secrets1
}

func newVC2Signature(d *ml.G1, r3 *ml.Zr, pubKey *PublicKeyWithGenerators, sPrime *ml.Zr,
	messages []*ProofMessage) (*ProverCommittedG1, []*ml.Zr) {
	messagesCount := len(messages)
	committing2 := NewProverCommittingG1()
	baseSecretsCount := 2
	secrets2 := make([]*ml.Zr, 0, baseSecretsCount+messagesCount)

	committing2.Commit(d)

	r3D := r3.Copy()
	r3D.Neg()

	secrets2 = append(secrets2, r3D)

	committing2.Commit(pubKey.H0)

	secrets2 = append(secrets2, sPrime)

	for i := 0; i < messagesCount; i++ {
		if !messages[i].IsHidden() {
			continue
		}

		if external := messages[i].Hidden.External; external != nil {
			committing2.CommitWith(pubKey.H[i], external.Blinding)
		} else {
			committing2.Commit(pubKey.H[i])
		}

		hiddenFRCopy := messages[i].Message().FR.Copy()

		secrets2 = append(secrets2, hiddenFRCopy)
	}

	pokVC2 := committing2.Finish()

	return pokVC2, secrets2
}

// ToBytes returns the challenge transcript of the commit phase: the randomized
// signature points, both proof commitments and the revealed messages with their
// indexes in ascending order. The nonce is appended by the caller.
func (pos *PoKOfSignature) ToBytes() []byte {
	challengeBytes := pos.aPrime.Bytes()
	challengeBytes = append(challengeBytes, pos.aBar.Bytes()...)
	challengeBytes = append(challengeBytes, pos.d.Bytes()...)
	challengeBytes = append(challengeBytes, pos.pokVC1.Commitment.Bytes()...)
	challengeBytes = append(challengeBytes, pos.pokVC2.Commitment.Bytes()...)
	challengeBytes = append(challengeBytes, revealedToBytes(pos.revealedMessages)...)

	return challengeBytes
}

// GenerateProof generates PoKOfSignatureProof proof from PoKOfSignature signature.
func (pos *PoKOfSignature) GenerateProof(challengeHash *ml.Zr) *PoKOfSignatureProof {
	proof := &PoKOfSignatureProof{
		aPrime:   pos.aPrime,
		aBar:     pos.aBar,
		d:        pos.d,
		proofVC1: pos.pokVC1.GenerateProof(challengeHash, pos.secrets1),
		proofVC2: pos.pokVC2.GenerateProof(challengeHash, pos.secrets2),
	}

	pos.Zeroize()

	return proof
}

// Zeroize overwrites the secrets and blinding factors of the commit phase.
func (pos *PoKOfSignature) Zeroize() {
	zeroizeFrSlice(pos.secrets1)
	zeroizeFrSlice(pos.secrets2)
	zeroizeFrSlice(pos.pokVC1.BlindingFactors)
	zeroizeFrSlice(pos.pokVC2.BlindingFactors)
}

func zeroizeFrSlice(frs []*ml.Zr) {
	for _, fr := range frs {
		fr.Clone(frZero())
	}
}

func revealedToBytes(revealedMessages map[int]*SignatureMessage) []byte {
	bytes := uint32ToBytes(uint32(len(revealedMessages)))

	for _, ind := range sortedIndexes(revealedMessages) {
		bytes = append(bytes, uint32ToBytes(uint32(ind))...)
		bytes = append(bytes, revealedMessages[ind].ToBytes()...)
	}

	return bytes
}

// PoKOfSignatureProof defines BLS signature proof.
// It is the actual proof that is sent from prover to verifier.
type PoKOfSignatureProof struct {
	aPrime *ml.G1
	aBar   *ml.G1
	d      *ml.G1

	proofVC1 *ProofG1
	proofVC2 *ProofG1
}

// GetBytesForChallenge creates the verifier-side copy of the challenge transcript
// from the transmitted proof and the revealed messages.
func (sp *PoKOfSignatureProof) GetBytesForChallenge(revealedMessages map[int]*SignatureMessage,
	pubKey *PublicKeyWithGenerators) []byte {
	challengeBytes := sp.aPrime.Bytes()
	challengeBytes = append(challengeBytes, sp.aBar.Bytes()...)
	challengeBytes = append(challengeBytes, sp.d.Bytes()...)
	challengeBytes = append(challengeBytes, sp.proofVC1.Commitment.Bytes()...)
	challengeBytes = append(challengeBytes, sp.proofVC2.Commitment.Bytes()...)
	challengeBytes = append(challengeBytes, revealedToBytes(revealedMessages)...)

	return challengeBytes
}

// Verify verifies PoKOfSignatureProof.
func (sp *PoKOfSignatureProof) Verify(challenge *ml.Zr, pubKey *PublicKeyWithGenerators,
	revealedMessages map[int]*SignatureMessage, messages []*SignatureMessage) error {
	for ind := range revealedMessages {
		if ind >= pubKey.MessagesCount {
			return fmt.Errorf("%w: revealed index %d is out of range of %d messages",
				ErrMalformedProof, ind, pubKey.MessagesCount)
		}
	}

	if sp.aPrime.IsInfinity() {
		return &ProofStatusError{Status: BadSignature}
	}

	if !compareTwoPairings(sp.aPrime, pubKey.W, negateG1(sp.aBar), curve.GenG2) {
		return &ProofStatusError{Status: BadSignature}
	}

	if err := sp.verifyVC1Proof(challenge, pubKey); err != nil {
		return err
	}

	return sp.verifyVC2Proof(challenge, pubKey, revealedMessages)
}

func (sp *PoKOfSignatureProof) verifyVC1Proof(challenge *ml.Zr, pubKey *PublicKeyWithGenerators) error {
	basesVC1 := []*ml.G1{sp.aPrime, pubKey.H0}

	aBarD := sp.aBar.Copy()
	aBarD.Sub(sp.d)

	if err := sp.proofVC1.Verify(basesVC1, aBarD, challenge); err != nil {
		return &ProofStatusError{Status: BadHiddenMessage}
	}

	return nil
}

func (sp *PoKOfSignatureProof) verifyVC2Proof(challenge *ml.Zr, pubKey *PublicKeyWithGenerators,
	revealedMessages map[int]*SignatureMessage) error {
	basesCount := 2 + pubKey.MessagesCount - len(revealedMessages)

	basesVC2 := make([]*ml.G1, 0, basesCount)
	basesVC2 = append(basesVC2, sp.d, pubKey.H0)

	basesDisclosed := make([]*ml.G1, 0, 1+len(revealedMessages))
	exponents := make([]*ml.Zr, 0, 1+len(revealedMessages))

	basesDisclosed = append(basesDisclosed, curve.GenG1)
	exponents = append(exponents, curve.NewZrFromInt(1))

	for i := 0; i < pubKey.MessagesCount; i++ {
		if revealed, ok := revealedMessages[i]; ok {
			basesDisclosed = append(basesDisclosed, pubKey.H[i])
			exponents = append(exponents, revealed.FR)
		} else {
			basesVC2 = append(basesVC2, pubKey.H[i])
		}
	}

	pr := negateG1(sumOfG1Products(basesDisclosed, exponents))

	if err := sp.proofVC2.Verify(basesVC2, pr, challenge); err != nil {
		return &ProofStatusError{Status: BadRevealedMessage}
	}

	return nil
}

// ResponseForMessage returns the Schnorr response of the hidden message with the
// given index among the hidden messages. Equal responses across proofs sharing an
// external blinding link the message between them.
func (sp *PoKOfSignatureProof) ResponseForMessage(hiddenMessageInd int) (*ml.Zr, error) {
	const hiddenMessagesOffset = 2

	ind := hiddenMessageInd + hiddenMessagesOffset
	if hiddenMessageInd < 0 || ind >= len(sp.proofVC2.Responses) {
		return nil, fmt.Errorf("%w: no response for hidden message %d", ErrMalformedProof, hiddenMessageInd)
	}

	return sp.proofVC2.Responses[ind], nil
}

// ToBytes converts PoKOfSignatureProof to bytes.
func (sp *PoKOfSignatureProof) ToBytes() []byte {
	bytes := make([]byte, 0)

	bytes = append(bytes, sp.aPrime.Compressed()...)
	bytes = append(bytes, sp.aBar.Compressed()...)
	bytes = append(bytes, sp.d.Compressed()...)
	bytes = append(bytes, sp.proofVC1.ToBytes()...)
	bytes = append(bytes, sp.proofVC2.ToBytes()...)

	return bytes
}

// ParseSignatureProof parses PoKOfSignatureProof from bytes.
func ParseSignatureProof(sigProofBytes []byte) (*PoKOfSignatureProof, error) {
	if len(sigProofBytes) < g1CompressedSize*3 {
		return nil, fmt.Errorf("%w: invalid size of signature proof", ErrMalformedProof)
	}

	g1Points := make([]*ml.G1, 3)
	offset := 0

	for i := range g1Points {
		g1Point, err := curve.NewG1FromCompressed(sigProofBytes[offset : offset+g1CompressedSize])
		if err != nil {
			return nil, fmt.Errorf("%w: parse G1 point: %s", ErrMalformedProof, err.Error())
		}

		g1Points[i] = g1Point
		offset += g1CompressedSize
	}

	proofVC1, err := ParseProofG1(sigProofBytes[offset:])
	if err != nil {
		return nil, fmt.Errorf("parse G1 proof: %w", err)
	}

	offset += proofG1LenInBytes(len(proofVC1.Responses))

	proofVC2, err := ParseProofG1(sigProofBytes[offset:])
	if err != nil {
		return nil, fmt.Errorf("parse G1 proof: %w", err)
	}

	return &PoKOfSignatureProof{
		aPrime:   g1Points[0],
		aBar:     g1Points[1],
		d:        g1Points[2],
		proofVC1: proofVC1,
		proofVC2: proofVC2,
	}, nil
}

func proofG1LenInBytes(responsesCount int) int {
	return g1CompressedSize + intSize + responsesCount*frCompressedSize
}
