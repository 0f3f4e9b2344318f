/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	ml "github.com/IBM/mathlib"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

const (
	logR2     = 255
	k         = 128
	csID      = "BBS_BLS12381G1_XOF:SHAKE-256_SSWU_RO_"
	h2sDST    = csID + "H2S_"
	expandLen = (logR2 + k + 7) / 8 //nolint:gomnd
)

// nolint:gochecknoglobals
var frOrder = new(big.Int).SetBytes(curve.GroupOrder.Bytes())

// parseFr parses a scalar from its canonical 32-byte big-endian form.
func parseFr(data []byte) (*ml.Zr, error) {
	if len(data) != frCompressedSize {
		return nil, fmt.Errorf("%w: invalid size of scalar bytes", ErrMalformedInput)
	}

	if new(big.Int).SetBytes(data).Cmp(frOrder) >= 0 {
		return nil, fmt.Errorf("%w: scalar is not in the field", ErrMalformedInput)
	}

	return curve.NewZrFromBytes(data), nil
}

func frZero() *ml.Zr {
	return curve.NewZrFromInt(0)
}

func f2192() *ml.Zr {
	bytes := make([]byte, frCompressedSize)
	bytes[7] = 1

	return curve.NewZrFromBytes(bytes)
}

func frFromOKM(message []byte) *ml.Zr {
	const (
		eightBytes = 8
		okmMiddle  = 24
	)

	// We pass a null key so error is impossible here.
	h, _ := blake2b.New384(nil) //nolint:errcheck

	// blake2b.digest() does not return an error.
	_, _ = h.Write(message)
	okm := h.Sum(nil)
	emptyEightBytes := make([]byte, eightBytes)

	elm := curve.NewZrFromBytes(append(emptyEightBytes, okm[:okmMiddle]...))
	elm = curve.ModMul(elm, f2192(), curve.GroupOrder)

	fr := curve.NewZrFromBytes(append(emptyEightBytes, okm[okmMiddle:]...))
	elm = curve.ModAdd(elm, fr, curve.GroupOrder)

	return elm
}

func frToRepr(fr *ml.Zr) *ml.Zr {
	frRepr := fr.Copy()
	frRepr.Mod(curve.GroupOrder)

	return frRepr
}

// frFromWideBytes reduces a wide big-endian buffer into a scalar.
func frFromWideBytes(wide []byte) *ml.Zr {
	v := new(big.Int).SetBytes(wide)
	v.Mod(v, frOrder)

	return curve.NewZrFromBytes(v.FillBytes(make([]byte, frCompressedSize)))
}

func createRandSignatureFr() *ml.Zr {
	return frToRepr(curve.NewRandomZr(rand.Reader))
}

// createRandFr returns a random scalar read from the supplied entropy source,
// surfacing a read failure to the caller. A nil source defaults to crypto/rand.
func createRandFr(rng io.Reader) (*ml.Zr, error) {
	if rng == nil {
		rng = rand.Reader
	}

	wide := make([]byte, frUncompressedSize)
	if _, err := io.ReadFull(rng, wide); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrRandomness, err.Error())
	}

	return frFromWideBytes(wide), nil
}

// FrFromOKM hashes arbitrary bytes to a scalar. It is the map used for messages
// and challenge transcripts.
func FrFromOKM(message []byte) *ml.Zr {
	return frFromOKM(message)
}

// Hash2scalar convert message represented in bytes to Fr.
func Hash2scalar(message []byte) *ml.Zr {
	return Hash2scalars(message, 1)[0]
}

// Hash2scalars convert messages represented in bytes to Fr.
func Hash2scalars(msg []byte, cnt int) []*ml.Zr {
	return hash2scalars(msg, []byte(h2sDST), cnt)
}

func hash2scalars(msg, dst []byte, cnt int) []*ml.Zr {
	bufLen := cnt * expandLen
	msgLen := len(msg)
	roundSz := 1
	msgLenSz := 4

	msgExt := make([]byte, msgLen+roundSz+msgLenSz)
	// msgExt is a concatenation of: msg || I2OSP(round, 1) || I2OSP(cnt, 4)
	copy(msgExt, msg)
	copy(msgExt[msgLen+1:], uint32ToBytes(uint32(cnt)))

	out := make([]*ml.Zr, cnt)

	for round, completed := byte(0), false; !completed; round++ {
		msgExt[msgLen] = round
		buf := expandMsgXOF(msgExt, dst, bufLen)

		ok := true
		for i := 0; i < cnt && ok; i++ {
			out[i] = frFromWideBytes(buf[i*expandLen : (i+1)*expandLen])
			ok = !out[i].Equals(frZero())
		}

		completed = ok
	}

	return out
}

// expandMsgXOF is the expand_message_xof operation of RFC 9380, section 5.3.2,
// instantiated with SHAKE-256.
func expandMsgXOF(msg, dst []byte, outLen int) []byte {
	h := sha3.NewShake256()

	// sha3 state absorption does not return an error.
	_, _ = h.Write(msg)
	_, _ = h.Write(uint16ToBytes(uint16(outLen)))
	_, _ = h.Write(dst)
	_, _ = h.Write([]byte{byte(len(dst))})

	out := make([]byte, outLen)
	_, _ = h.Read(out)

	return out
}
