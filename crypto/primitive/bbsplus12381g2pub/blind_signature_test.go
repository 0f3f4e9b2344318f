/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub_test

import (
	"crypto/rand"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	bbs "github.com/hyperledger/bbsplus-go/crypto/primitive/bbsplus12381g2pub"
)

func TestBlindSignatureFlow(t *testing.T) {
	_, privKey, generators := generateKeyPairWithGenerators(t, 5)

	hidden := map[int]*bbs.SignatureMessage{
		0: bbs.ParseSignatureMessage([]byte("link-secret")),
	}

	signerMessages := map[int]*bbs.SignatureMessage{
		1: bbs.ParseSignatureMessage([]byte("message_1")),
		2: bbs.ParseSignatureMessage([]byte("message_2")),
		3: bbs.ParseSignatureMessage([]byte("message_3")),
		4: bbs.ParseSignatureMessage([]byte("message_4")),
	}

	nonce := newProofNonce(t)

	ctx, blinding, err := bbs.NewBlindSignatureContext(hidden, generators, nonce, rand.Reader)
	require.NoError(t, err)
	require.NotNil(t, ctx)
	require.NotNil(t, blinding)

	require.NoError(t, ctx.Verify([]int{0}, generators, nonce))

	blindSig, err := bbs.NewBlindSignature(ctx, signerMessages, privKey, generators, nonce)
	require.NoError(t, err)

	signature := blindSig.ToUnblinded(blinding)

	allMessages := []*bbs.SignatureMessage{
		hidden[0],
		signerMessages[1],
		signerMessages[2],
		signerMessages[3],
		signerMessages[4],
	}

	require.NoError(t, signature.Verify(allMessages, generators))

	t.Run("wrong signing nonce", func(t *testing.T) {
		_, err := bbs.NewBlindSignature(ctx, signerMessages, privKey, generators, newProofNonce(t))
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrInvalidProof))
	})

	t.Run("committed indexes mismatch", func(t *testing.T) {
		err := ctx.Verify([]int{0, 2}, generators, nonce)
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrSizeMismatch))
	})

	t.Run("committed index out of range", func(t *testing.T) {
		err := ctx.Verify([]int{5}, generators, nonce)
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrSizeMismatch))
	})
}

func TestNewBlindSignatureContext(t *testing.T) {
	_, _, generators := generateKeyPairWithGenerators(t, 3)

	nonce := newProofNonce(t)

	t.Run("empty messages map", func(t *testing.T) {
		ctx, blinding, err := bbs.NewBlindSignatureContext(nil, generators, nonce, rand.Reader)
		require.NoError(t, err)
		require.NotNil(t, blinding)

		require.NoError(t, ctx.Verify(nil, generators, nonce))
	})

	t.Run("committed index out of range", func(t *testing.T) {
		messages := map[int]*bbs.SignatureMessage{
			3: bbs.ParseSignatureMessage([]byte("message_3")),
		}

		_, _, err := bbs.NewBlindSignatureContext(messages, generators, nonce, rand.Reader)
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrSizeMismatch))
	})
}

func TestBlindSignatureContextToFromBytes(t *testing.T) {
	_, _, generators := generateKeyPairWithGenerators(t, 3)

	hidden := map[int]*bbs.SignatureMessage{
		0: bbs.ParseSignatureMessage([]byte("hidden_0")),
		2: bbs.ParseSignatureMessage([]byte("hidden_2")),
	}

	nonce := newProofNonce(t)

	ctx, _, err := bbs.NewBlindSignatureContext(hidden, generators, nonce, rand.Reader)
	require.NoError(t, err)

	ctxBytes := ctx.ToBytes()
	require.Len(t, ctxBytes, 48+32+4+3*32)

	parsedCtx, err := bbs.ParseBlindSignatureContext(ctxBytes)
	require.NoError(t, err)
	require.Equal(t, ctxBytes, parsedCtx.ToBytes())

	require.NoError(t, parsedCtx.Verify([]int{0, 2}, generators, nonce))

	t.Run("tampered response", func(t *testing.T) {
		tampered := make([]byte, len(ctxBytes))
		copy(tampered, ctxBytes)
		tampered[len(tampered)-1] ^= 1

		tamperedCtx, err := bbs.ParseBlindSignatureContext(tampered)
		require.NoError(t, err)

		err = tamperedCtx.Verify([]int{0, 2}, generators, nonce)
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrInvalidProof))
	})

	t.Run("truncated bytes", func(t *testing.T) {
		_, err := bbs.ParseBlindSignatureContext(ctxBytes[:40])
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrMalformedInput))
	})

	t.Run("responses count mismatch", func(t *testing.T) {
		_, err := bbs.ParseBlindSignatureContext(ctxBytes[:len(ctxBytes)-32])
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrMalformedInput))
	})
}

func TestBlindSignatureToFromBytes(t *testing.T) {
	_, privKey, generators := generateKeyPairWithGenerators(t, 2)

	hidden := map[int]*bbs.SignatureMessage{
		0: bbs.ParseSignatureMessage([]byte("hidden_0")),
	}

	signerMessages := map[int]*bbs.SignatureMessage{
		1: bbs.ParseSignatureMessage([]byte("message_1")),
	}

	nonce := newProofNonce(t)

	ctx, blinding, err := bbs.NewBlindSignatureContext(hidden, generators, nonce, rand.Reader)
	require.NoError(t, err)

	blindSig, err := bbs.NewBlindSignature(ctx, signerMessages, privKey, generators, nonce)
	require.NoError(t, err)

	blindSigBytes, err := blindSig.ToBytes()
	require.NoError(t, err)
	require.Len(t, blindSigBytes, 112)

	parsedBlindSig, err := bbs.ParseBlindSignature(blindSigBytes)
	require.NoError(t, err)

	signature := parsedBlindSig.ToUnblinded(blinding)

	require.NoError(t, signature.Verify([]*bbs.SignatureMessage{hidden[0], signerMessages[1]}, generators))

	t.Run("invalid size", func(t *testing.T) {
		_, err := bbs.ParseBlindSignature(blindSigBytes[:100])
		require.Error(t, err)
		require.True(t, errors.Is(err, bbs.ErrMalformedInput))
	})

	t.Run("corrupted G1 point", func(t *testing.T) {
		_, err := bbs.ParseBlindSignature(make([]byte, 112))
		require.Error(t, err)
		require.Contains(t, err.Error(), "deserialize G1 compressed signature")
	})
}

func newProofNonce(t *testing.T) *bbs.ProofNonce {
	t.Helper()

	nonceBytes := make([]byte, 32)

	_, err := rand.Read(nonceBytes)
	require.NoError(t, err)

	return bbs.ParseProofNonce(nonceBytes)
}
