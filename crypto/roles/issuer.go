/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package roles orchestrates the BBS+ issuance and presentation protocol between
// an issuer, a prover and a verifier. Messages between the roles are exchanged in
// strict sequential order; apart from the held nonces the roles keep no state
// between protocol messages.
package roles

import (
	"crypto/rand"
	"crypto/sha256"

	"github.com/hyperledger/aries-framework-go/component/log"
	"github.com/pkg/errors"

	bbs "github.com/hyperledger/bbsplus-go/crypto/primitive/bbsplus12381g2pub"
)

// nolint:gochecknoglobals
var logger = log.New("bbsplus/roles")

const nonceSize = 32

// Issuer holds a BBS+ key pair and issues plain and blind signatures.
type Issuer struct {
	privKey    *bbs.PrivateKey
	pubKey     *bbs.PublicKey
	shortKey   *bbs.DeterministicPublicKey
	generators *bbs.PublicKeyWithGenerators

	signingNonce *bbs.ProofNonce
}

// NewIssuer creates an Issuer with a fresh key pair carrying messagesCount
// message generators.
func NewIssuer(messagesCount int) (*Issuer, error) {
	pubKey, privKey, err := bbs.GenerateKeyPair(sha256.New, nil, messagesCount)
	if err != nil {
		return nil, errors.Wrap(err, "generate issuer keys")
	}

	generators, err := pubKey.ToPublicKeyWithGenerators(messagesCount)
	if err != nil {
		return nil, errors.Wrap(err, "adapt issuer generators")
	}

	logger.Debugf("created issuer with %d message generators", messagesCount)

	return &Issuer{
		privKey:    privKey,
		pubKey:     pubKey,
		generators: generators,
	}, nil
}

// NewShortKeyIssuer creates an Issuer with a fresh short key pair, deriving the
// message generators from the public key under the given domain separation tag.
func NewShortKeyIssuer(messagesCount int, dst *bbs.DomainSeparationTag) (*Issuer, error) {
	shortKey, privKey, err := bbs.GenerateShortKeyPair(sha256.New, nil)
	if err != nil {
		return nil, errors.Wrap(err, "generate issuer keys")
	}

	generators, err := shortKey.Expand(messagesCount, dst)
	if err != nil {
		return nil, errors.Wrap(err, "expand issuer generators")
	}

	logger.Debugf("created short-key issuer with %d derived message generators", messagesCount)

	return &Issuer{
		privKey:    privKey,
		shortKey:   shortKey,
		generators: generators,
	}, nil
}

// Generators returns the public key with the issuer's message generators, the
// material the prover and verifier work against.
func (i *Issuer) Generators() *bbs.PublicKeyWithGenerators {
	return i.generators
}

// PublicKeyBytes returns the serialized public key, in the long form carrying the
// generators or in the short 96-byte form depending on how the issuer was created.
func (i *Issuer) PublicKeyBytes() ([]byte, error) {
	if i.pubKey != nil {
		return i.pubKey.Marshal()
	}

	return i.shortKey.Marshal()
}

// GenerateSigningNonce generates the nonce for one blind issuance exchange and
// keeps it for the verification of the incoming blind signature context.
func (i *Issuer) GenerateSigningNonce() (*bbs.ProofNonce, error) {
	nonce, err := newNonce()
	if err != nil {
		return nil, errors.Wrap(err, "generate signing nonce")
	}

	i.signingNonce = nonce

	return nonce, nil
}

// Sign issues a signature over all messages.
func (i *Issuer) Sign(messages []*bbs.SignatureMessage) (*bbs.Signature, error) {
	signature, err := bbs.SignMessages(messages, i.privKey, i.generators)
	if err != nil {
		return nil, errors.Wrap(err, "issue signature")
	}

	logger.Debugf("issued signature over %d messages", len(messages))

	return signature, nil
}

// BlindSign issues a blind signature over the holder's commitment and the
// signer-known messages. The context proof is checked against the signing nonce
// generated for this exchange; an index claimed by both parties is refused.
func (i *Issuer) BlindSign(ctx *bbs.BlindSignatureContext, signerMessages map[int]*bbs.SignatureMessage,
	committedIndexes []int) (*bbs.BlindSignature, error) {
	if i.signingNonce == nil {
		return nil, errors.New("no signing nonce, call GenerateSigningNonce first")
	}

	for _, ind := range committedIndexes {
		if _, ok := signerMessages[ind]; ok {
			return nil, errors.Errorf("message index %d is both committed and signer-known", ind)
		}
	}

	if len(signerMessages)+len(committedIndexes) != i.generators.MessagesCount {
		return nil, errors.Errorf("%d committed and %d signer-known messages do not cover %d messages",
			len(committedIndexes), len(signerMessages), i.generators.MessagesCount)
	}

	blindSig, err := bbs.NewBlindSignature(ctx, signerMessages, i.privKey, i.generators, i.signingNonce)
	if err != nil {
		return nil, errors.Wrap(err, "blind sign")
	}

	logger.Debugf("issued blind signature over %d signer-known and %d committed messages",
		len(signerMessages), len(committedIndexes))

	return blindSig, nil
}

func newNonce() (*bbs.ProofNonce, error) {
	nonceBytes := make([]byte, nonceSize)

	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, err
	}

	return bbs.ParseProofNonce(nonceBytes), nil
}
