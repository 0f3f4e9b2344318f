/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"crypto/rand"
	"fmt"
	"hash"
	"io"

	ml "github.com/IBM/mathlib"
	"golang.org/x/crypto/hkdf"
)

const (
	seedSize        = frCompressedSize
	generateKeySalt = "BBS-SIG-KEYGEN-SALT-"

	maxDSTSize = 255
)

// DomainSeparationTag identifies the protocol context generator derivation is bound to.
type DomainSeparationTag struct {
	ProtocolID  string
	Version     string
	Ciphersuite string
	Encoding    string
}

// Combine concatenates the tag components into the byte form passed to hash-to-curve.
func (dst *DomainSeparationTag) Combine() ([]byte, error) {
	combined := []byte(dst.ProtocolID + dst.Version + dst.Ciphersuite + dst.Encoding)

	if len(combined) > maxDSTSize {
		return nil, fmt.Errorf("%w: domain separation tag is longer than %d bytes", ErrMalformedInput, maxDSTSize)
	}

	return combined, nil
}

// DefaultDomainSeparationTag returns the tag used by the byte-level API.
func DefaultDomainSeparationTag() *DomainSeparationTag {
	return &DomainSeparationTag{
		ProtocolID:  "BBS_",
		Version:     "1.0_",
		Ciphersuite: "BLS12381G1_XOF:SHAKE-256_SSWU_RO_",
		Encoding:    "H2G_",
	}
}

// PublicKey defines a BBS+ public key carrying its own message generators.
type PublicKey struct {
	PointG2 *ml.G2
	H0      *ml.G1
	H       []*ml.G1
}

// DeterministicPublicKey defines a short BBS+ public key whose message generators
// are derived from the G2 point on demand.
type DeterministicPublicKey struct {
	PointG2 *ml.G2
}

// PrivateKey defines a BBS+ private key.
type PrivateKey struct {
	FR *ml.Zr
}

// PublicKeyWithGenerators extends a public key with the per-message generators
// used by signing, verification and proofs.
type PublicKeyWithGenerators struct {
	W  *ml.G2
	H0 *ml.G1
	H  []*ml.G1

	MessagesCount int
}

// UnmarshalPrivateKey unmarshals PrivateKey.
func UnmarshalPrivateKey(privKeyBytes []byte) (*PrivateKey, error) {
	if len(privKeyBytes) != frCompressedSize {
		return nil, fmt.Errorf("%w: invalid size of private key", ErrMalformedInput)
	}

	fr, err := parseFr(privKeyBytes)
	if err != nil {
		return nil, err
	}

	return &PrivateKey{
		FR: fr,
	}, nil
}

// Marshal marshals PrivateKey.
func (k *PrivateKey) Marshal() ([]byte, error) {
	return frToRepr(k.FR).Bytes(), nil
}

// PublicKey returns a short public key generated from the private key.
func (k *PrivateKey) PublicKey() *DeterministicPublicKey {
	pointG2 := curve.GenG2.Mul(frToRepr(k.FR))

	return &DeterministicPublicKey{pointG2}
}

// Zeroize overwrites the private scalar.
func (k *PrivateKey) Zeroize() {
	k.FR.Clone(frZero())
}

// UnmarshalDeterministicPublicKey parses a DeterministicPublicKey from its compressed G2 form.
func UnmarshalDeterministicPublicKey(pubKeyBytes []byte) (*DeterministicPublicKey, error) {
	if len(pubKeyBytes) != g2CompressedSize {
		return nil, fmt.Errorf("%w: invalid size of public key", ErrMalformedInput)
	}

	pointG2, err := curve.NewG2FromCompressed(pubKeyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: deserialize public key: %s", ErrMalformedInput, err.Error())
	}

	return &DeterministicPublicKey{
		PointG2: pointG2,
	}, nil
}

// Marshal marshals DeterministicPublicKey.
func (pk *DeterministicPublicKey) Marshal() ([]byte, error) {
	return pk.PointG2.Compressed(), nil
}

// Expand derives h0 and the message generators from the G2 point under the given
// domain separation tag. The derivation is deterministic, two calls with equal
// inputs return equal generators.
func (pk *DeterministicPublicKey) Expand(messagesCount int, dst *DomainSeparationTag) (*PublicKeyWithGenerators, error) {
	if messagesCount <= 0 {
		return nil, fmt.Errorf("%w: invalid messages count %d", ErrSizeMismatch, messagesCount)
	}

	dstBytes, err := dst.Combine()
	if err != nil {
		return nil, fmt.Errorf("combine domain separation tag: %w", err)
	}

	pkBytes := pk.PointG2.Compressed()
	genCount := messagesCount + 1

	generators := make([]*ml.G1, genCount)

	for i := 0; i < genCount; i++ {
		data := make([]byte, 0, len(pkBytes)+2*intSize)
		data = append(data, pkBytes...)
		data = append(data, uint32ToBytes(uint32(i))...)
		data = append(data, uint32ToBytes(uint32(genCount))...)

		generators[i] = curve.HashToG1WithDomain(data, dstBytes)
	}

	return &PublicKeyWithGenerators{
		W:             pk.PointG2,
		H0:            generators[0],
		H:             generators[1:],
		MessagesCount: messagesCount,
	}, nil
}

// UnmarshalPublicKey parses a PublicKey carrying its generators.
func UnmarshalPublicKey(pubKeyBytes []byte) (*PublicKey, error) {
	headerLen := g2CompressedSize + g1CompressedSize + intSize
	if len(pubKeyBytes) < headerLen {
		return nil, fmt.Errorf("%w: invalid size of public key", ErrMalformedInput)
	}

	pointG2, err := curve.NewG2FromCompressed(pubKeyBytes[:g2CompressedSize])
	if err != nil {
		return nil, fmt.Errorf("%w: deserialize public key: %s", ErrMalformedInput, err.Error())
	}

	h0, err := curve.NewG1FromCompressed(pubKeyBytes[g2CompressedSize : g2CompressedSize+g1CompressedSize])
	if err != nil {
		return nil, fmt.Errorf("%w: deserialize h0 generator: %s", ErrMalformedInput, err.Error())
	}

	messagesCount := int(uint32FromBytes(pubKeyBytes[g2CompressedSize+g1CompressedSize : headerLen]))

	if len(pubKeyBytes) != headerLen+messagesCount*g1CompressedSize {
		return nil, fmt.Errorf("%w: invalid size of public key", ErrMalformedInput)
	}

	h := make([]*ml.G1, messagesCount)

	for i := 0; i < messagesCount; i++ {
		offset := headerLen + i*g1CompressedSize

		h[i], err = curve.NewG1FromCompressed(pubKeyBytes[offset : offset+g1CompressedSize])
		if err != nil {
			return nil, fmt.Errorf("%w: deserialize generator %d: %s", ErrMalformedInput, i, err.Error())
		}
	}

	return &PublicKey{
		PointG2: pointG2,
		H0:      h0,
		H:       h,
	}, nil
}

// Marshal marshals PublicKey together with its generators.
func (pk *PublicKey) Marshal() ([]byte, error) {
	bytes := make([]byte, 0, g2CompressedSize+g1CompressedSize+intSize+len(pk.H)*g1CompressedSize)

	bytes = append(bytes, pk.PointG2.Compressed()...)
	bytes = append(bytes, pk.H0.Compressed()...)
	bytes = append(bytes, uint32ToBytes(uint32(len(pk.H)))...)

	for _, h := range pk.H {
		bytes = append(bytes, h.Compressed()...)
	}

	return bytes, nil
}

// ToPublicKeyWithGenerators adapts the stored generators for use with messagesCount messages.
func (pk *PublicKey) ToPublicKeyWithGenerators(messagesCount int) (*PublicKeyWithGenerators, error) {
	if messagesCount != len(pk.H) {
		return nil, fmt.Errorf("%w: public key has %d message generators, %d messages",
			ErrSizeMismatch, len(pk.H), messagesCount)
	}

	return &PublicKeyWithGenerators{
		W:             pk.PointG2,
		H0:            pk.H0,
		H:             pk.H,
		MessagesCount: messagesCount,
	}, nil
}

// GenerateKeyPair generates a BBS+ key pair carrying messagesCount generators.
// A non-empty seed makes the generation deterministic.
func GenerateKeyPair(h func() hash.Hash, seed []byte, messagesCount int) (*PublicKey, *PrivateKey, error) {
	if messagesCount <= 0 {
		return nil, nil, fmt.Errorf("%w: invalid messages count %d", ErrSizeMismatch, messagesCount)
	}

	seed, err := ensureSeed(seed)
	if err != nil {
		return nil, nil, err
	}

	privKey, err := privateKeyFromSeed(h, seed)
	if err != nil {
		return nil, nil, err
	}

	h0, hGens, err := generateGenerators(h, seed, messagesCount)
	if err != nil {
		return nil, nil, err
	}

	pubKey := &PublicKey{
		PointG2: privKey.PublicKey().PointG2,
		H0:      h0,
		H:       hGens,
	}

	return pubKey, privKey, nil
}

// GenerateShortKeyPair generates a BBS+ key pair with a short public key,
// leaving generator derivation to DeterministicPublicKey.Expand.
func GenerateShortKeyPair(h func() hash.Hash, seed []byte) (*DeterministicPublicKey, *PrivateKey, error) {
	seed, err := ensureSeed(seed)
	if err != nil {
		return nil, nil, err
	}

	privKey, err := privateKeyFromSeed(h, seed)
	if err != nil {
		return nil, nil, err
	}

	return privKey.PublicKey(), privKey, nil
}

func ensureSeed(seed []byte) ([]byte, error) {
	if len(seed) == 0 {
		seed = make([]byte, seedSize)

		if _, err := rand.Read(seed); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrRandomness, err.Error())
		}

		return seed, nil
	}

	if len(seed) != seedSize {
		return nil, fmt.Errorf("%w: invalid size of seed", ErrMalformedInput)
	}

	return seed, nil
}

func privateKeyFromSeed(h func() hash.Hash, seed []byte) (*PrivateKey, error) {
	ikm := make([]byte, seedSize+1)
	copy(ikm, seed)

	okm, err := newHKDF(h, ikm, []byte(generateKeySalt), make([]byte, 2), frUncompressedSize)
	if err != nil {
		return nil, err
	}

	return &PrivateKey{FR: frFromOKM(okm)}, nil
}

func generateGenerators(h func() hash.Hash, seed []byte, messagesCount int) (*ml.G1, []*ml.G1, error) {
	ikm := make([]byte, seedSize+1)
	copy(ikm, seed)
	ikm[seedSize] = 1

	dstBytes, err := DefaultDomainSeparationTag().Combine()
	if err != nil {
		return nil, nil, err
	}

	reader := hkdf.New(h, ikm, []byte(generateKeySalt), []byte("generators"))

	points := make([]*ml.G1, messagesCount+1)

	for i := range points {
		okm := make([]byte, g1UncompressedSize)
		if _, err := io.ReadFull(reader, okm); err != nil {
			return nil, nil, fmt.Errorf("expand generator seed: %w", err)
		}

		points[i] = curve.HashToG1WithDomain(okm, dstBytes)
	}

	return points[0], points[1:], nil
}

func newHKDF(h func() hash.Hash, ikm, salt, info []byte, length int) ([]byte, error) {
	reader := hkdf.New(h, ikm, salt, info)
	result := make([]byte, length)

	_, err := io.ReadFull(reader, result)
	if err != nil {
		return nil, err
	}

	return result, nil
}
