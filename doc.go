/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bbsplus provides the BBS+ signature scheme over the BLS12-381 curve.
//
// Packages for end developer usage
//
// crypto/primitive/bbsplus12381g2pub: The signature primitive. Signing and
// verification of multi-message signatures, selective disclosure proofs and blind
// issuance, with a byte-level API and a structured API over IBM/mathlib types.
// Reference: https://pkg.go.dev/github.com/hyperledger/bbsplus-go/crypto/primitive/bbsplus12381g2pub
//
// crypto/roles: Issuer, Prover and Verifier roles orchestrating the issuance and
// presentation protocol on top of the primitive.
// Reference: https://pkg.go.dev/github.com/hyperledger/bbsplus-go/crypto/roles
package bbsplus
