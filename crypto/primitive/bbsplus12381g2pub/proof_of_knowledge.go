/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"fmt"

	ml "github.com/IBM/mathlib"
)

// ProverCommittedG1 helps to generate a ProofG1.
type ProverCommittedG1 struct {
	Bases           []*ml.G1
	BlindingFactors []*ml.Zr
	Commitment      *ml.G1
}

// ToBytes converts ProverCommittedG1 to bytes.
func (g *ProverCommittedG1) ToBytes() []byte {
	bytes := make([]byte, 0)

	for _, base := range g.Bases {
		bytes = append(bytes, base.Bytes()...)
	}

	return append(bytes, g.Commitment.Bytes()...)
}

// GenerateProof generates proof ProofG1 for all secrets.
func (g *ProverCommittedG1) GenerateProof(challenge *ml.Zr, secrets []*ml.Zr) *ProofG1 {
	responses := make([]*ml.Zr, len(g.Bases))

	for i := range g.BlindingFactors {
		c := challenge.Mul(secrets[i])

		s := g.BlindingFactors[i].Minus(c)
		s.Mod(curve.GroupOrder)
		responses[i] = s
	}

	return &ProofG1{
		Commitment: g.Commitment,
		Responses:  responses,
	}
}

// ProverCommittingG1 is a proof of knowledge of messages in a vector commitment.
type ProverCommittingG1 struct {
	bases           []*ml.G1
	blindingFactors []*ml.Zr
}

// NewProverCommittingG1 creates a new ProverCommittingG1.
func NewProverCommittingG1() *ProverCommittingG1 {
	return &ProverCommittingG1{
		bases:           make([]*ml.G1, 0),
		blindingFactors: make([]*ml.Zr, 0),
	}
}

// Commit appends a base point and a randomly generated blinding factor.
func (pc *ProverCommittingG1) Commit(base *ml.G1) {
	pc.bases = append(pc.bases, base)
	r := createRandSignatureFr()
	pc.blindingFactors = append(pc.blindingFactors, r)
}

// CommitWith appends a base point with the supplied blinding factor. It is used
// when the blinding must be shared across proofs, for equality linkage of a
// hidden message.
func (pc *ProverCommittingG1) CommitWith(base *ml.G1, blindingFactor *ml.Zr) {
	pc.bases = append(pc.bases, base)
	pc.blindingFactors = append(pc.blindingFactors, blindingFactor.Copy())
}

// Finish helps to generate ProverCommittedG1 after commitment of all base points.
func (pc *ProverCommittingG1) Finish() *ProverCommittedG1 {
	commitment := sumOfG1Products(pc.bases, pc.blindingFactors)

	return &ProverCommittedG1{
		Bases:           pc.bases,
		BlindingFactors: pc.blindingFactors,
		Commitment:      commitment,
	}
}

// ProofG1 is a proof of knowledge of the exponents of a G1 multi-exponentiation.
// Larger proofs are composed of several ProofG1 records bound under one challenge.
type ProofG1 struct {
	Commitment *ml.G1
	Responses  []*ml.Zr
}

// NewProofG1 creates a new ProofG1.
func NewProofG1(commitment *ml.G1, responses []*ml.Zr) *ProofG1 {
	return &ProofG1{
		Commitment: commitment,
		Responses:  responses,
	}
}

// Verify verifies the ProofG1 against the bases and the commitment argument:
// the multi-exponentiation of the bases by the responses together with the
// commitment argument by the challenge must reproduce the transmitted commitment.
func (pg1 *ProofG1) Verify(bases []*ml.G1, commitment *ml.G1, challenge *ml.Zr) error {
	contribution := pg1.getChallengeContribution(bases, commitment, challenge)
	contribution.Sub(pg1.Commitment)

	if !contribution.IsInfinity() {
		return fmt.Errorf("%w: commitment is not the same", ErrInvalidProof)
	}

	return nil
}

func (pg1 *ProofG1) getChallengeContribution(bases []*ml.G1, commitment *ml.G1,
	challenge *ml.Zr) *ml.G1 {
	points := make([]*ml.G1, len(bases)+1)
	copy(points, bases)
	points[len(bases)] = commitment

	scalars := make([]*ml.Zr, len(pg1.Responses)+1)
	copy(scalars, pg1.Responses)
	scalars[len(pg1.Responses)] = challenge

	return sumOfG1Products(points, scalars)
}

// ToBytes converts ProofG1 to bytes.
func (pg1 *ProofG1) ToBytes() []byte {
	bytes := make([]byte, 0)

	commitmentBytes := pg1.Commitment.Compressed()
	bytes = append(bytes, commitmentBytes...)

	lenBytes := uint32ToBytes(uint32(len(pg1.Responses)))
	bytes = append(bytes, lenBytes...)

	for i := range pg1.Responses {
		responseBytes := frToRepr(pg1.Responses[i]).Bytes()
		bytes = append(bytes, responseBytes...)
	}

	return bytes
}

// ParseProofG1 parses ProofG1 from bytes.
func ParseProofG1(bytes []byte) (*ProofG1, error) {
	if len(bytes) < g1CompressedSize+intSize {
		return nil, fmt.Errorf("%w: invalid size of G1 signature proof", ErrMalformedProof)
	}

	offset := 0

	commitment, err := curve.NewG1FromCompressed(bytes[:g1CompressedSize])
	if err != nil {
		return nil, fmt.Errorf("%w: parse G1 point: %s", ErrMalformedProof, err.Error())
	}

	offset += g1CompressedSize
	length := int(uint32FromBytes(bytes[offset : offset+intSize]))
	offset += intSize

	if len(bytes) < g1CompressedSize+intSize+length*frCompressedSize {
		return nil, fmt.Errorf("%w: invalid size of G1 signature proof", ErrMalformedProof)
	}

	responses := make([]*ml.Zr, length)
	for i := 0; i < length; i++ {
		responses[i], err = parseFr(bytes[offset : offset+frCompressedSize])
		if err != nil {
			return nil, fmt.Errorf("%w: parse response %d: %s", ErrMalformedProof, i, err.Error())
		}

		offset += frCompressedSize
	}

	return NewProofG1(commitment, responses), nil
}
