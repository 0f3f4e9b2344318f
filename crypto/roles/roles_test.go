/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package roles_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	bbs "github.com/hyperledger/bbsplus-go/crypto/primitive/bbsplus12381g2pub"
	"github.com/hyperledger/bbsplus-go/crypto/roles"
)

func TestIssuancePresentationFlow(t *testing.T) {
	const messagesCount = 5

	issuer, err := roles.NewIssuer(messagesCount)
	require.NoError(t, err)

	prover := roles.NewProver(issuer.Generators())
	verifier := roles.NewVerifier(issuer.Generators())

	// blind issuance: the link secret at index 0 stays hidden from the issuer
	linkSecret, err := prover.NewLinkSecret()
	require.NoError(t, err)

	signingNonce, err := issuer.GenerateSigningNonce()
	require.NoError(t, err)

	ctx, blinding, err := prover.NewBlindSignatureContext(
		map[int]*bbs.SignatureMessage{0: linkSecret}, signingNonce)
	require.NoError(t, err)

	signerMessages := map[int]*bbs.SignatureMessage{
		1: bbs.ParseSignatureMessage([]byte("given name")),
		2: bbs.ParseSignatureMessage([]byte("family name")),
		3: bbs.ParseSignatureMessage([]byte("date of birth")),
		4: bbs.ParseSignatureMessage([]byte("citizenship")),
	}

	blindSig, err := issuer.BlindSign(ctx, signerMessages, []int{0})
	require.NoError(t, err)

	allMessages := []*bbs.SignatureMessage{
		linkSecret,
		signerMessages[1],
		signerMessages[2],
		signerMessages[3],
		signerMessages[4],
	}

	signature, err := prover.CompleteSignature(blindSig, blinding, allMessages)
	require.NoError(t, err)

	// presentation: reveal the names, keep the rest hidden
	request, err := verifier.NewProofRequest([]int{1, 2})
	require.NoError(t, err)

	proofMessages := []*bbs.ProofMessage{
		bbs.HiddenProofMessage(allMessages[0]),
		bbs.RevealedProofMessage(allMessages[1]),
		bbs.RevealedProofMessage(allMessages[2]),
		bbs.HiddenProofMessage(allMessages[3]),
		bbs.HiddenProofMessage(allMessages[4]),
	}

	pok, err := prover.CommitSignaturePoK(signature, proofMessages)
	require.NoError(t, err)

	proof := prover.GenerateSignaturePoK(pok, request.Nonce)

	revealed := map[int]*bbs.SignatureMessage{
		1: allMessages[1],
		2: allMessages[2],
	}

	verifiedMessages, err := verifier.VerifySignaturePoK(request, proof, revealed)
	require.NoError(t, err)
	require.Len(t, verifiedMessages, 2)
	require.Equal(t, allMessages[1], verifiedMessages[1])
}

func TestIssuerBlindSign(t *testing.T) {
	issuer, err := roles.NewIssuer(3)
	require.NoError(t, err)

	prover := roles.NewProver(issuer.Generators())

	linkSecret, err := prover.NewLinkSecret()
	require.NoError(t, err)

	signerMessages := map[int]*bbs.SignatureMessage{
		1: bbs.ParseSignatureMessage([]byte("message_1")),
		2: bbs.ParseSignatureMessage([]byte("message_2")),
	}

	t.Run("no signing nonce", func(t *testing.T) {
		freshIssuer, err := roles.NewIssuer(3)
		require.NoError(t, err)

		nonce, err := issuer.GenerateSigningNonce()
		require.NoError(t, err)

		ctx, _, err := prover.NewBlindSignatureContext(
			map[int]*bbs.SignatureMessage{0: linkSecret}, nonce)
		require.NoError(t, err)

		_, err = freshIssuer.BlindSign(ctx, signerMessages, []int{0})
		require.EqualError(t, err, "no signing nonce, call GenerateSigningNonce first")
	})

	t.Run("overlapping message index", func(t *testing.T) {
		nonce, err := issuer.GenerateSigningNonce()
		require.NoError(t, err)

		ctx, _, err := prover.NewBlindSignatureContext(
			map[int]*bbs.SignatureMessage{0: linkSecret}, nonce)
		require.NoError(t, err)

		_, err = issuer.BlindSign(ctx, signerMessages, []int{0, 1})
		require.Error(t, err)
		require.Contains(t, err.Error(), "both committed and signer-known")
	})

	t.Run("messages do not cover generators", func(t *testing.T) {
		nonce, err := issuer.GenerateSigningNonce()
		require.NoError(t, err)

		ctx, _, err := prover.NewBlindSignatureContext(
			map[int]*bbs.SignatureMessage{0: linkSecret}, nonce)
		require.NoError(t, err)

		_, err = issuer.BlindSign(ctx, map[int]*bbs.SignatureMessage{1: signerMessages[1]}, []int{0})
		require.Error(t, err)
		require.Contains(t, err.Error(), "do not cover")
	})
}

func TestShortKeyIssuer(t *testing.T) {
	issuer, err := roles.NewShortKeyIssuer(3, bbs.DefaultDomainSeparationTag())
	require.NoError(t, err)

	pubKeyBytes, err := issuer.PublicKeyBytes()
	require.NoError(t, err)
	require.Len(t, pubKeyBytes, 96)

	messages := []*bbs.SignatureMessage{
		bbs.ParseSignatureMessage([]byte("message_0")),
		bbs.ParseSignatureMessage([]byte("message_1")),
		bbs.ParseSignatureMessage([]byte("message_2")),
	}

	signature, err := issuer.Sign(messages)
	require.NoError(t, err)

	require.NoError(t, signature.Verify(messages, issuer.Generators()))

	t.Run("generators recoverable from public key", func(t *testing.T) {
		pubKey, err := bbs.UnmarshalDeterministicPublicKey(pubKeyBytes)
		require.NoError(t, err)

		generators, err := pubKey.Expand(3, bbs.DefaultDomainSeparationTag())
		require.NoError(t, err)

		require.NoError(t, signature.Verify(messages, generators))
	})
}

func TestVerifierProofRequest(t *testing.T) {
	issuer, err := roles.NewIssuer(3)
	require.NoError(t, err)

	verifier := roles.NewVerifier(issuer.Generators())

	t.Run("revealed index out of range", func(t *testing.T) {
		_, err := verifier.NewProofRequest([]int{0, 3})
		require.Error(t, err)
		require.Contains(t, err.Error(), "out of range")
	})
}

func TestVerifySignaturePoKChecks(t *testing.T) {
	issuer, err := roles.NewIssuer(3)
	require.NoError(t, err)

	prover := roles.NewProver(issuer.Generators())
	verifier := roles.NewVerifier(issuer.Generators())

	messages := []*bbs.SignatureMessage{
		bbs.ParseSignatureMessage([]byte("message_0")),
		bbs.ParseSignatureMessage([]byte("message_1")),
		bbs.ParseSignatureMessage([]byte("message_2")),
	}

	signature, err := issuer.Sign(messages)
	require.NoError(t, err)

	request, err := verifier.NewProofRequest([]int{0, 2})
	require.NoError(t, err)

	proofMessages := []*bbs.ProofMessage{
		bbs.RevealedProofMessage(messages[0]),
		bbs.HiddenProofMessage(messages[1]),
		bbs.RevealedProofMessage(messages[2]),
	}

	pok, err := prover.CommitSignaturePoK(signature, proofMessages)
	require.NoError(t, err)

	proof := prover.GenerateSignaturePoK(pok, request.Nonce)

	t.Run("revealed messages count mismatch", func(t *testing.T) {
		_, err := verifier.VerifySignaturePoK(request, proof,
			map[int]*bbs.SignatureMessage{0: messages[0]})
		require.Error(t, err)
		require.Contains(t, err.Error(), "1 messages revealed, 2 requested")
	})

	t.Run("requested message not revealed", func(t *testing.T) {
		_, err := verifier.VerifySignaturePoK(request, proof,
			map[int]*bbs.SignatureMessage{0: messages[0], 1: messages[1]})
		require.Error(t, err)
		require.Contains(t, err.Error(), "requested message 2 is not revealed")
	})

	t.Run("valid proof", func(t *testing.T) {
		revealed, err := verifier.VerifySignaturePoK(request, proof,
			map[int]*bbs.SignatureMessage{0: messages[0], 2: messages[2]})
		require.NoError(t, err)
		require.Len(t, revealed, 2)
	})
}
