/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bbsplus12381g2pub contains BBS+ signing primitives and keys over the BLS12-381 pairing curve,
// with public keys as points of G2. It supports multi-message signing, blind issuance and selective
// disclosure proofs of knowledge.
//
// Higher-level protocol orchestration (issuer, prover, verifier roles) is found at:
// "github.com/hyperledger/bbsplus-go/crypto/roles"
package bbsplus12381g2pub

import (
	"errors"
	"fmt"
	"sort"

	ml "github.com/IBM/mathlib"
)

// nolint:gochecknoglobals
var curve = ml.Curves[ml.BLS12_381_BBS]

// BBSPlusG2Pub defines BBS+ signature scheme where public key is a point in the field of G2.
// BBS+ signature scheme (as defined in https://eprint.iacr.org/2016/663.pdf, section 4.3).
type BBSPlusG2Pub struct{}

// New creates a new BBSPlusG2Pub.
func New() *BBSPlusG2Pub {
	return &BBSPlusG2Pub{}
}

// Number of bytes in scalar compressed form.
const frCompressedSize = 32

var (
	// nolint:gochecknoglobals
	// Signature length.
	bbsplusSignatureLen = curve.CompressedG1ByteSize + 2*frCompressedSize

	// nolint:gochecknoglobals
	// Number of bytes in G1 X coordinate.
	g1CompressedSize = curve.CompressedG1ByteSize

	// nolint:gochecknoglobals
	// Number of bytes in G1 X and Y coordinates.
	g1UncompressedSize = curve.G1ByteSize

	// nolint:gochecknoglobals
	// Number of bytes in G2 X(a, b) coordinate.
	g2CompressedSize = curve.CompressedG2ByteSize

	// nolint:gochecknoglobals
	// Number of bytes in scalar uncompressed form.
	frUncompressedSize = curve.ScalarByteSize

	// nolint:gochecknoglobals
	// Number of bytes to store integers.
	intSize = 4
)

// Verify makes BLS BBS12-381 signature verification.
func (bbs *BBSPlusG2Pub) Verify(messages [][]byte, sigBytes, pubKeyBytes []byte) error {
	signature, err := ParseSignature(sigBytes)
	if err != nil {
		return fmt.Errorf("parse signature: %w", err)
	}

	messagesCount := len(messages)

	publicKeyWithGenerators, err := expandPublicKeyBytes(pubKeyBytes, messagesCount)
	if err != nil {
		return err
	}

	messagesFr := messagesToFr(messages)

	return signature.Verify(messagesFr, publicKeyWithGenerators)
}

// Sign signs the one or more messages using private key in compressed form.
func (bbs *BBSPlusG2Pub) Sign(messages [][]byte, privKeyBytes []byte) ([]byte, error) {
	privKey, err := UnmarshalPrivateKey(privKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	if len(messages) == 0 {
		return nil, errors.New("messages are not defined")
	}

	return bbs.SignWithKey(messages, privKey)
}

// SignWithKey signs the one or more messages using BBS+ key pair.
func (bbs *BBSPlusG2Pub) SignWithKey(messages [][]byte, privKey *PrivateKey) ([]byte, error) {
	messagesCount := len(messages)

	pubKeyWithGenerators, err := privKey.PublicKey().Expand(messagesCount, DefaultDomainSeparationTag())
	if err != nil {
		return nil, fmt.Errorf("build generators from public key: %w", err)
	}

	messagesFr := make([]*SignatureMessage, len(messages))
	for i := range messages {
		messagesFr[i] = ParseSignatureMessage(messages[i])
	}

	signature, err := SignMessages(messagesFr, privKey, pubKeyWithGenerators)
	if err != nil {
		return nil, err
	}

	return signature.ToBytes()
}

// VerifyProof verifies BBS+ signature proof for one or more revealed messages.
func (bbs *BBSPlusG2Pub) VerifyProof(messagesBytes [][]byte, proof, nonce, pubKeyBytes []byte) error {
	payload, err := parsePoKPayload(proof)
	if err != nil {
		return fmt.Errorf("parse signature proof: %w", err)
	}

	signatureProof, err := ParseSignatureProof(proof[payload.lenInBytes():])
	if err != nil {
		return fmt.Errorf("parse signature proof: %w", err)
	}

	messages := messagesToFr(messagesBytes)

	publicKeyWithGenerators, err := expandPublicKeyBytes(pubKeyBytes, payload.messagesCount)
	if err != nil {
		return err
	}

	if len(payload.revealed) > len(messages) {
		return fmt.Errorf("%w: revealed indexes amount is bigger than messages amount", ErrMalformedProof)
	}

	revealedMessages := make(map[int]*SignatureMessage)
	for i := range payload.revealed {
		revealedMessages[payload.revealed[i]] = messages[i]
	}

	challengeBytes := signatureProof.GetBytesForChallenge(revealedMessages, publicKeyWithGenerators)
	proofNonce := ParseProofNonce(nonce)
	proofNonceBytes := proofNonce.ToBytes()
	challengeBytes = append(challengeBytes, proofNonceBytes...)
	proofChallenge := frFromOKM(challengeBytes)

	return signatureProof.Verify(proofChallenge, publicKeyWithGenerators, revealedMessages, messages)
}

// DeriveProof derives a proof of BBS+ signature with some messages disclosed.
func (bbs *BBSPlusG2Pub) DeriveProof(messages [][]byte, sigBytes, nonce, pubKeyBytes []byte,
	revealedIndexes []int) ([]byte, error) {
	if len(revealedIndexes) == 0 {
		return nil, errors.New("no message to reveal")
	}

	sort.Ints(revealedIndexes)

	messagesCount := len(messages)

	messagesFr := messagesToFr(messages)

	publicKeyWithGenerators, err := expandPublicKeyBytes(pubKeyBytes, messagesCount)
	if err != nil {
		return nil, err
	}

	signature, err := ParseSignature(sigBytes)
	if err != nil {
		return nil, fmt.Errorf("parse signature: %w", err)
	}

	proofMessages := proofMessagesFromRevealed(messagesFr, revealedIndexes)

	pokSignature, err := NewPoKOfSignature(signature, proofMessages, publicKeyWithGenerators)
	if err != nil {
		return nil, fmt.Errorf("init proof of knowledge signature: %w", err)
	}

	challengeBytes := pokSignature.ToBytes()

	proofNonce := ParseProofNonce(nonce)
	proofNonceBytes := proofNonce.ToBytes()
	challengeBytes = append(challengeBytes, proofNonceBytes...)

	proofChallenge := frFromOKM(challengeBytes)

	proof := pokSignature.GenerateProof(proofChallenge)

	payload := newPoKPayload(messagesCount, revealedIndexes)

	payloadBytes, err := payload.toBytes()
	if err != nil {
		return nil, fmt.Errorf("derive proof: payload to bytes: %w", err)
	}

	signatureProofBytes := append(payloadBytes, proof.ToBytes()...)

	return signatureProofBytes, nil
}

// BlindSignRequest creates a blind signing request for the messages the holder commits to.
// It returns the serialized BlindSignatureContext to be sent to the signer and the blinding
// factor the holder needs to unblind the signature with.
func (bbs *BBSPlusG2Pub) BlindSignRequest(blindedMessages map[int][]byte, messagesCount int,
	nonce, pubKeyBytes []byte) ([]byte, []byte, error) {
	publicKeyWithGenerators, err := expandPublicKeyBytes(pubKeyBytes, messagesCount)
	if err != nil {
		return nil, nil, err
	}

	messagesFr := make(map[int]*SignatureMessage, len(blindedMessages))
	for i, m := range blindedMessages {
		messagesFr[i] = ParseSignatureMessage(m)
	}

	signingNonce := ParseProofNonce(nonce)

	blindCtx, blinding, err := NewBlindSignatureContext(messagesFr, publicKeyWithGenerators, signingNonce, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create blind signature context: %w", err)
	}

	return blindCtx.ToBytes(), frToRepr(blinding).Bytes(), nil
}

// BlindSign signs the signer-known messages over a blind signature context received from the holder.
func (bbs *BBSPlusG2Pub) BlindSign(ctxBytes []byte, signerMessages map[int][]byte, messagesCount int,
	nonce, privKeyBytes []byte) ([]byte, error) {
	privKey, err := UnmarshalPrivateKey(privKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("unmarshal private key: %w", err)
	}

	pubKeyWithGenerators, err := privKey.PublicKey().Expand(messagesCount, DefaultDomainSeparationTag())
	if err != nil {
		return nil, fmt.Errorf("build generators from public key: %w", err)
	}

	blindCtx, err := ParseBlindSignatureContext(ctxBytes)
	if err != nil {
		return nil, fmt.Errorf("parse blind signature context: %w", err)
	}

	messagesFr := make(map[int]*SignatureMessage, len(signerMessages))
	for i, m := range signerMessages {
		messagesFr[i] = ParseSignatureMessage(m)
	}

	signingNonce := ParseProofNonce(nonce)

	blindSig, err := NewBlindSignature(blindCtx, messagesFr, privKey, pubKeyWithGenerators, signingNonce)
	if err != nil {
		return nil, fmt.Errorf("create blind signature: %w", err)
	}

	return blindSig.ToBytes()
}

// UnblindSignature converts a blind signature into a regular signature using the holder's blinding factor.
func (bbs *BBSPlusG2Pub) UnblindSignature(blindSigBytes, blindingBytes []byte) ([]byte, error) {
	blindSig, err := ParseBlindSignature(blindSigBytes)
	if err != nil {
		return nil, fmt.Errorf("parse blind signature: %w", err)
	}

	blinding, err := parseFr(blindingBytes)
	if err != nil {
		return nil, fmt.Errorf("parse blinding factor: %w", err)
	}

	return blindSig.ToUnblinded(blinding).ToBytes()
}

func expandPublicKeyBytes(pubKeyBytes []byte, messagesCount int) (*PublicKeyWithGenerators, error) {
	pubKey, err := UnmarshalDeterministicPublicKey(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	publicKeyWithGenerators, err := pubKey.Expand(messagesCount, DefaultDomainSeparationTag())
	if err != nil {
		return nil, fmt.Errorf("build generators from public key: %w", err)
	}

	return publicKeyWithGenerators, nil
}

// SignMessages signs the messages with the private key over the given generators.
func SignMessages(messagesFr []*SignatureMessage, privKey *PrivateKey,
	pubKeyWithGenerators *PublicKeyWithGenerators) (*Signature, error) {
	if len(messagesFr) != pubKeyWithGenerators.MessagesCount {
		return nil, fmt.Errorf("%w: messages count %d differs from generators count %d",
			ErrSizeMismatch, len(messagesFr), pubKeyWithGenerators.MessagesCount)
	}

	s := createRandSignatureFr()

	e, exp := createSignatureExponent(privKey)

	b := computeB(s, messagesFr, pubKeyWithGenerators)

	sig := b.Mul(frToRepr(exp))

	return &Signature{
		A: sig,
		E: e,
		S: s,
	}, nil
}

// createSignatureExponent picks e until x+e is invertible and returns e with (x+e)^-1.
func createSignatureExponent(privKey *PrivateKey) (*ml.Zr, *ml.Zr) {
	for {
		e := createRandSignatureFr()

		exp := privKey.FR.Copy()
		exp = exp.Plus(e)
		exp.Mod(curve.GroupOrder)

		if exp.Equals(frZero()) {
			continue
		}

		exp.InvModP(curve.GroupOrder)

		return e, exp
	}
}

func computeB(s *ml.Zr, messages []*SignatureMessage, key *PublicKeyWithGenerators) *ml.G1 {
	const basesOffset = 2

	cb := newCommitmentBuilder(len(messages) + basesOffset)

	cb.add(curve.GenG1, curve.NewZrFromInt(1))
	cb.add(key.H0, s)

	for i := 0; i < len(messages); i++ {
		cb.add(key.H[i], messages[i].FR)
	}

	return cb.build()
}

type commitmentBuilder struct {
	bases   []*ml.G1
	scalars []*ml.Zr
}

func newCommitmentBuilder(expectedSize int) *commitmentBuilder {
	return &commitmentBuilder{
		bases:   make([]*ml.G1, 0, expectedSize),
		scalars: make([]*ml.Zr, 0, expectedSize),
	}
}

func (cb *commitmentBuilder) add(base *ml.G1, scalar *ml.Zr) {
	cb.bases = append(cb.bases, base)
	cb.scalars = append(cb.scalars, scalar)
}

func (cb *commitmentBuilder) build() *ml.G1 {
	return sumOfG1Products(cb.bases, cb.scalars)
}

func sumOfG1Products(bases []*ml.G1, scalars []*ml.Zr) *ml.G1 {
	var res *ml.G1

	for i := 0; i < len(bases); i++ {
		b := bases[i]
		s := scalars[i]

		g := b.Mul(frToRepr(s))
		if res == nil {
			res = g
		} else {
			res.Add(g)
		}
	}

	return res
}

func compareTwoPairings(p1 *ml.G1, q1 *ml.G2,
	p2 *ml.G1, q2 *ml.G2) bool {
	p := curve.Pairing2(q1, p1, q2, p2)
	p = curve.FExp(p)

	return p.IsUnity()
}

func negateG1(p *ml.G1) *ml.G1 {
	neg := curve.NewG1()
	neg.Sub(p)

	return neg
}

// ProofNonce is a nonce for Proof of Knowledge proof.
type ProofNonce struct {
	fr *ml.Zr
}

// ParseProofNonce creates a new ProofNonce from bytes.
func ParseProofNonce(proofNonceBytes []byte) *ProofNonce {
	return &ProofNonce{
		frFromOKM(proofNonceBytes),
	}
}

// ToBytes converts ProofNonce into bytes.
func (pn *ProofNonce) ToBytes() []byte {
	return frToRepr(pn.fr).Bytes()
}

func messagesToFr(messages [][]byte) []*SignatureMessage {
	messagesFr := make([]*SignatureMessage, len(messages))

	for i := range messages {
		messagesFr[i] = ParseSignatureMessage(messages[i])
	}

	return messagesFr
}

func proofMessagesFromRevealed(messages []*SignatureMessage, revealedIndexes []int) []*ProofMessage {
	revealed := make(map[int]struct{}, len(revealedIndexes))
	for _, ind := range revealedIndexes {
		revealed[ind] = struct{}{}
	}

	proofMessages := make([]*ProofMessage, len(messages))

	for i, m := range messages {
		if _, ok := revealed[i]; ok {
			proofMessages[i] = RevealedProofMessage(m)
		} else {
			proofMessages[i] = HiddenProofMessage(m)
		}
	}

	return proofMessages
}
