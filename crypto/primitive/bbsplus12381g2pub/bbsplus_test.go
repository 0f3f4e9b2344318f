/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub_test

import (
	"crypto/sha256"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	bbs "github.com/hyperledger/bbsplus-go/crypto/primitive/bbsplus12381g2pub"
)

func TestSignVerify(t *testing.T) {
	pubKeyBytes, privKeyBytes := generateShortKeyPairBytes(t)

	messages := [][]byte{
		[]byte("message 1"),
		[]byte("message 2"),
		[]byte("message 3"),
		[]byte("message 4"),
		[]byte("message 5"),
	}

	bls := bbs.New()

	signatureBytes, err := bls.Sign(messages, privKeyBytes)
	require.NoError(t, err)
	require.Len(t, signatureBytes, 112)

	require.NoError(t, bls.Verify(messages, signatureBytes, pubKeyBytes))

	t.Run("tampered message", func(t *testing.T) {
		tampered := make([][]byte, len(messages))
		copy(tampered, messages)
		tampered[2] = []byte("message X")

		err = bls.Verify(tampered, signatureBytes, pubKeyBytes)
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrInvalidSignature))
	})

	t.Run("wrong public key", func(t *testing.T) {
		otherPubKeyBytes, _ := generateShortKeyPairBytes(t)

		err = bls.Verify(messages, signatureBytes, otherPubKeyBytes)
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrInvalidSignature))
	})

	t.Run("no messages", func(t *testing.T) {
		_, err = bls.Sign(nil, privKeyBytes)
		require.EqualError(t, err, "messages are not defined")
	})
}

func TestDeriveVerifyProof(t *testing.T) {
	pubKeyBytes, privKeyBytes := generateShortKeyPairBytes(t)

	messages := [][]byte{
		[]byte("message_0"),
		[]byte("message_1"),
		[]byte("message_2"),
		[]byte("message_3"),
		[]byte("message_4"),
	}

	nonce := []byte("verifier-nonce-1")

	bls := bbs.New()

	signatureBytes, err := bls.Sign(messages, privKeyBytes)
	require.NoError(t, err)

	proofBytes, err := bls.DeriveProof(messages, signatureBytes, nonce, pubKeyBytes, []int{1, 3})
	require.NoError(t, err)
	require.NotEmpty(t, proofBytes)

	revealedMessages := [][]byte{messages[1], messages[3]}

	require.NoError(t, bls.VerifyProof(revealedMessages, proofBytes, nonce, pubKeyBytes))

	t.Run("wrong nonce", func(t *testing.T) {
		err = bls.VerifyProof(revealedMessages, proofBytes, []byte("verifier-nonce-2"), pubKeyBytes)
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrInvalidProof))
	})

	t.Run("wrong revealed message", func(t *testing.T) {
		err = bls.VerifyProof([][]byte{messages[1], []byte("message X")}, proofBytes, nonce, pubKeyBytes)
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrInvalidProof))
	})

	t.Run("no messages to reveal", func(t *testing.T) {
		_, err = bls.DeriveProof(messages, signatureBytes, nonce, pubKeyBytes, nil)
		require.EqualError(t, err, "no message to reveal")
	})

	t.Run("malformed proof", func(t *testing.T) {
		err = bls.VerifyProof(revealedMessages, []byte{0, 0}, nonce, pubKeyBytes)
		require.Error(t, err)
		require.Contains(t, err.Error(), "parse signature proof")
	})
}

func TestBlindFlow(t *testing.T) {
	pubKeyBytes, privKeyBytes := generateShortKeyPairBytes(t)

	const messagesCount = 5

	linkSecret := []byte("link-secret")
	signerMessages := map[int][]byte{
		1: []byte("message_1"),
		2: []byte("message_2"),
		3: []byte("message_3"),
		4: []byte("message_4"),
	}

	nonce := []byte("issuer-nonce-1")

	bls := bbs.New()

	ctxBytes, blindingBytes, err := bls.BlindSignRequest(map[int][]byte{0: linkSecret},
		messagesCount, nonce, pubKeyBytes)
	require.NoError(t, err)
	require.NotEmpty(t, ctxBytes)
	require.Len(t, blindingBytes, 32)

	blindSigBytes, err := bls.BlindSign(ctxBytes, signerMessages, messagesCount, nonce, privKeyBytes)
	require.NoError(t, err)

	signatureBytes, err := bls.UnblindSignature(blindSigBytes, blindingBytes)
	require.NoError(t, err)

	allMessages := [][]byte{
		linkSecret,
		signerMessages[1],
		signerMessages[2],
		signerMessages[3],
		signerMessages[4],
	}

	require.NoError(t, bls.Verify(allMessages, signatureBytes, pubKeyBytes))

	t.Run("wrong signing nonce", func(t *testing.T) {
		_, err = bls.BlindSign(ctxBytes, signerMessages, messagesCount, []byte("issuer-nonce-2"), privKeyBytes)
		require.Error(t, err)
	})
}

func generateShortKeyPairBytes(t *testing.T) ([]byte, []byte) {
	t.Helper()

	pubKey, privKey, err := bbs.GenerateShortKeyPair(sha256.New, nil)
	require.NoError(t, err)

	pubKeyBytes, err := pubKey.Marshal()
	require.NoError(t, err)

	privKeyBytes, err := privKey.Marshal()
	require.NoError(t, err)

	return pubKeyBytes, privKeyBytes
}
