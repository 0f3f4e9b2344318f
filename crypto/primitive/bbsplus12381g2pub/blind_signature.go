/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"fmt"

	ml "github.com/IBM/mathlib"
)

// BlindSignature defines a signature over a commitment of hidden messages and the
// signer-known messages. The holder turns it into a regular Signature with ToUnblinded.
type BlindSignature struct {
	A      *ml.G1
	E      *ml.Zr
	SPrime *ml.Zr
}

// NewBlindSignature signs the signer-known messages, keyed by their index in the
// signed message list, over the commitment of the blind signature context. The
// context proof is verified against the signing nonce before signing.
func NewBlindSignature(ctx *BlindSignatureContext, signerMessages map[int]*SignatureMessage,
	privKey *PrivateKey, generators *PublicKeyWithGenerators, nonce *ProofNonce) (*BlindSignature, error) {
	committedIndexes := make([]int, 0, generators.MessagesCount-len(signerMessages))

	for i := 0; i < generators.MessagesCount; i++ {
		if _, ok := signerMessages[i]; !ok {
			committedIndexes = append(committedIndexes, i)
		}
	}

	for ind := range signerMessages {
		if ind < 0 || ind >= generators.MessagesCount {
			return nil, fmt.Errorf("%w: signer message index %d is out of range of %d messages",
				ErrSizeMismatch, ind, generators.MessagesCount)
		}
	}

	err := ctx.Verify(committedIndexes, generators, nonce)
	if err != nil {
		return nil, fmt.Errorf("verify blind signature context: %w", err)
	}

	e, exp := createSignatureExponent(privKey)

	sTilde := createRandSignatureFr()

	cb := newCommitmentBuilder(len(signerMessages) + 3) //nolint:gomnd

	cb.add(curve.GenG1, curve.NewZrFromInt(1))
	cb.add(ctx.Commitment, curve.NewZrFromInt(1))
	cb.add(generators.H0, sTilde)

	for ind, m := range signerMessages {
		cb.add(generators.H[ind], m.FR)
	}

	blindedB := cb.build()

	return &BlindSignature{
		A:      blindedB.Mul(frToRepr(exp)),
		E:      e,
		SPrime: sTilde,
	}, nil
}

// ToUnblinded converts BlindSignature to regular Signature by adding the holder's
// blinding factor to the signer's s share. The holder must verify the resulting
// signature before accepting it.
func (bs *BlindSignature) ToUnblinded(blindingFactor *ml.Zr) *Signature {
	return &Signature{
		A: bs.A,
		E: bs.E,
		S: curve.ModAdd(bs.SPrime, blindingFactor, curve.GroupOrder),
	}
}

// ToBytes converts BlindSignature to bytes.
func (bs *BlindSignature) ToBytes() ([]byte, error) {
	bytes := make([]byte, bbsplusSignatureLen)

	copy(bytes, bs.A.Compressed())
	copy(bytes[g1CompressedSize:g1CompressedSize+frCompressedSize], frToRepr(bs.E).Bytes())
	copy(bytes[g1CompressedSize+frCompressedSize:], frToRepr(bs.SPrime).Bytes())

	return bytes, nil
}

// ParseBlindSignature parses BlindSignature from bytes.
func ParseBlindSignature(sigBytes []byte) (*BlindSignature, error) {
	if len(sigBytes) != bbsplusSignatureLen {
		return nil, fmt.Errorf("%w: invalid size of blind signature", ErrMalformedInput)
	}

	pointG1, err := curve.NewG1FromCompressed(sigBytes[:g1CompressedSize])
	if err != nil {
		return nil, fmt.Errorf("deserialize G1 compressed signature: %w", err)
	}

	e, err := parseFr(sigBytes[g1CompressedSize : g1CompressedSize+frCompressedSize])
	if err != nil {
		return nil, fmt.Errorf("parse e component: %w", err)
	}

	sPrime, err := parseFr(sigBytes[g1CompressedSize+frCompressedSize:])
	if err != nil {
		return nil, fmt.Errorf("parse s component: %w", err)
	}

	return &BlindSignature{
		A:      pointG1,
		E:      e,
		SPrime: sPrime,
	}, nil
}
