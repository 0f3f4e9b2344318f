/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"fmt"

	ml "github.com/IBM/mathlib"
)

// SignatureMessage defines a message to be used for a signature check.
type SignatureMessage struct {
	FR *ml.Zr
}

// ParseSignatureMessage parses SignatureMessage from bytes by hashing them to a scalar.
func ParseSignatureMessage(message []byte) *SignatureMessage {
	elm := frFromOKM(message)

	return &SignatureMessage{
		FR: elm,
	}
}

// NewSignatureMessage creates a SignatureMessage from the canonical 32-byte form of a scalar.
func NewSignatureMessage(message []byte) (*SignatureMessage, error) {
	elm, err := parseFr(message)
	if err != nil {
		return nil, fmt.Errorf("parse signature message: %w", err)
	}

	return &SignatureMessage{
		FR: elm,
	}, nil
}

// ToBytes converts SignatureMessage into its canonical 32-byte form.
func (sm *SignatureMessage) ToBytes() []byte {
	return frToRepr(sm.FR).Bytes()
}
