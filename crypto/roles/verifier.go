/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package roles

import (
	"github.com/pkg/errors"

	bbs "github.com/hyperledger/bbsplus-go/crypto/primitive/bbsplus12381g2pub"
)

// Verifier checks selective disclosure proofs against an issuer's public key.
type Verifier struct {
	generators *bbs.PublicKeyWithGenerators
}

// NewVerifier creates a Verifier working against the issuer's generators.
func NewVerifier(generators *bbs.PublicKeyWithGenerators) *Verifier {
	return &Verifier{generators: generators}
}

// ProofRequest names the message indexes the verifier wants revealed and carries
// the nonce the proof challenge must be bound to.
type ProofRequest struct {
	RevealedIndexes []int
	Nonce           *bbs.ProofNonce
}

// GenerateProofNonce generates the nonce for one presentation exchange.
func (v *Verifier) GenerateProofNonce() (*bbs.ProofNonce, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, errors.Wrap(err, "generate proof nonce")
	}

	return nonce, nil
}

// NewProofRequest creates a request for a proof revealing the given message indexes.
func (v *Verifier) NewProofRequest(revealedIndexes []int) (*ProofRequest, error) {
	for _, ind := range revealedIndexes {
		if ind < 0 || ind >= v.generators.MessagesCount {
			return nil, errors.Errorf("revealed index %d is out of range of %d messages",
				ind, v.generators.MessagesCount)
		}
	}

	nonce, err := v.GenerateProofNonce()
	if err != nil {
		return nil, err
	}

	return &ProofRequest{
		RevealedIndexes: revealedIndexes,
		Nonce:           nonce,
	}, nil
}

// VerifySignaturePoK verifies the proof against the request and returns the
// revealed messages by index on success.
func (v *Verifier) VerifySignaturePoK(request *ProofRequest, proof *bbs.PoKOfSignatureProof,
	revealed map[int]*bbs.SignatureMessage) (map[int]*bbs.SignatureMessage, error) {
	if len(revealed) != len(request.RevealedIndexes) {
		return nil, errors.Errorf("%d messages revealed, %d requested",
			len(revealed), len(request.RevealedIndexes))
	}

	for _, ind := range request.RevealedIndexes {
		if _, ok := revealed[ind]; !ok {
			return nil, errors.Errorf("requested message %d is not revealed", ind)
		}
	}

	challengeBytes := proof.GetBytesForChallenge(revealed, v.generators)
	challengeBytes = append(challengeBytes, request.Nonce.ToBytes()...)

	challenge := bbs.FrFromOKM(challengeBytes)

	if err := proof.Verify(challenge, v.generators, revealed, nil); err != nil {
		return nil, errors.Wrap(err, "verify signature proof of knowledge")
	}

	logger.Debugf("verified signature proof of knowledge with %d revealed messages", len(revealed))

	return revealed, nil
}
