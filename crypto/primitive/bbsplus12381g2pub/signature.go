/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"fmt"

	ml "github.com/IBM/mathlib"
)

// Signature defines BBS+ signature.
type Signature struct {
	A *ml.G1
	E *ml.Zr
	S *ml.Zr
}

// ParseSignature parses a Signature from bytes.
func ParseSignature(sigBytes []byte) (*Signature, error) {
	if len(sigBytes) != bbsplusSignatureLen {
		return nil, fmt.Errorf("%w: invalid size of signature", ErrMalformedInput)
	}

	pointG1, err := curve.NewG1FromCompressed(sigBytes[:g1CompressedSize])
	if err != nil {
		return nil, fmt.Errorf("deserialize G1 compressed signature: %w", err)
	}

	e, err := parseFr(sigBytes[g1CompressedSize : g1CompressedSize+frCompressedSize])
	if err != nil {
		return nil, fmt.Errorf("parse e component: %w", err)
	}

	s, err := parseFr(sigBytes[g1CompressedSize+frCompressedSize:])
	if err != nil {
		return nil, fmt.Errorf("parse s component: %w", err)
	}

	return &Signature{
		A: pointG1,
		E: e,
		S: s,
	}, nil
}

// ToBytes converts signature to bytes using compression of G1 point and E, S scalars.
func (s *Signature) ToBytes() ([]byte, error) {
	bytes := make([]byte, bbsplusSignatureLen)

	copy(bytes, s.A.Compressed())
	copy(bytes[g1CompressedSize:g1CompressedSize+frCompressedSize], frToRepr(s.E).Bytes())
	copy(bytes[g1CompressedSize+frCompressedSize:], frToRepr(s.S).Bytes())

	return bytes, nil
}

// Verify is used for signature verification.
func (s *Signature) Verify(messages []*SignatureMessage, pubKey *PublicKeyWithGenerators) error {
	if len(messages) != pubKey.MessagesCount {
		return fmt.Errorf("%w: messages count %d differs from generators count %d",
			ErrSizeMismatch, len(messages), pubKey.MessagesCount)
	}

	if s.A.IsInfinity() {
		return ErrInvalidSignature
	}

	p2 := pubKey.W.Copy()
	p2.Add(curve.GenG2.Mul(frToRepr(s.E)))

	b := computeB(s.S, messages, pubKey)

	if compareTwoPairings(s.A, p2, negateG1(b), curve.GenG2) {
		return nil
	}

	return ErrInvalidSignature
}
