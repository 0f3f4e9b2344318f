/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package roles

import (
	"crypto/rand"

	ml "github.com/IBM/mathlib"
	"github.com/pkg/errors"

	bbs "github.com/hyperledger/bbsplus-go/crypto/primitive/bbsplus12381g2pub"
)

// Prover holds signatures issued over its messages and derives selective
// disclosure proofs from them.
type Prover struct {
	generators *bbs.PublicKeyWithGenerators
}

// NewProver creates a Prover working against the issuer's generators.
func NewProver(generators *bbs.PublicKeyWithGenerators) *Prover {
	return &Prover{generators: generators}
}

// NewLinkSecret generates a secret message the prover can commit to towards
// several issuers without disclosing it to any of them.
func (p *Prover) NewLinkSecret() (*bbs.SignatureMessage, error) {
	secretBytes := make([]byte, nonceSize)

	if _, err := rand.Read(secretBytes); err != nil {
		return nil, errors.Wrap(err, "generate link secret")
	}

	return bbs.ParseSignatureMessage(secretBytes), nil
}

// NewBlindSignatureContext commits to the messages kept hidden from the signer
// and returns the context to send to the issuer together with the blinding
// factor needed to complete the signature later.
func (p *Prover) NewBlindSignatureContext(hidden map[int]*bbs.SignatureMessage,
	signingNonce *bbs.ProofNonce) (*bbs.BlindSignatureContext, *ml.Zr, error) {
	ctx, blinding, err := bbs.NewBlindSignatureContext(hidden, p.generators, signingNonce, nil)
	if err != nil {
		return nil, nil, errors.Wrap(err, "create blind signature context")
	}

	logger.Debugf("committed to %d hidden messages", len(hidden))

	return ctx, blinding, nil
}

// CompleteSignature unblinds the blind signature received from the issuer and
// verifies it against all messages before accepting it.
func (p *Prover) CompleteSignature(blindSig *bbs.BlindSignature, blinding *ml.Zr,
	messages []*bbs.SignatureMessage) (*bbs.Signature, error) {
	signature := blindSig.ToUnblinded(blinding)

	if err := signature.Verify(messages, p.generators); err != nil {
		return nil, errors.Wrap(err, "unblinded signature does not verify")
	}

	logger.Debugf("completed blind signature over %d messages", len(messages))

	return signature, nil
}

// CommitSignaturePoK runs the commit phase of the signature proof of knowledge
// over the messages classified as revealed or hidden.
func (p *Prover) CommitSignaturePoK(signature *bbs.Signature,
	messages []*bbs.ProofMessage) (*bbs.PoKOfSignature, error) {
	pok, err := bbs.NewPoKOfSignature(signature, messages, p.generators)
	if err != nil {
		return nil, errors.Wrap(err, "commit signature proof of knowledge")
	}

	return pok, nil
}

// GenerateSignaturePoK finishes the proof of knowledge under a challenge bound
// to the verifier's nonce.
func (p *Prover) GenerateSignaturePoK(pok *bbs.PoKOfSignature,
	proofNonce *bbs.ProofNonce) *bbs.PoKOfSignatureProof {
	challengeBytes := pok.ToBytes()
	challengeBytes = append(challengeBytes, proofNonce.ToBytes()...)

	challenge := bbs.FrFromOKM(challengeBytes)

	proof := pok.GenerateProof(challenge)

	logger.Debugf("generated signature proof of knowledge")

	return proof
}
