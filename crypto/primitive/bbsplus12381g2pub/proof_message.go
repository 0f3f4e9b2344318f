/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	ml "github.com/IBM/mathlib"
)

// ProofSpecificBlinding marks a hidden message whose blinding factor is sampled
// fresh for the proof.
type ProofSpecificBlinding struct{}

// ExternalBlinding marks a hidden message whose blinding factor is supplied by
// the caller. Reusing the same blinding across proofs makes the corresponding
// responses equal, which links the message between them.
type ExternalBlinding struct {
	Blinding *ml.Zr
}

// HiddenMessage describes how a hidden message is blinded in a proof.
// Exactly one of the fields is set.
type HiddenMessage struct {
	ProofSpecific *ProofSpecificBlinding
	External      *ExternalBlinding
}

// ProofMessage classifies a message for proof generation: either revealed to the
// verifier or hidden. Exactly one of the fields is set.
type ProofMessage struct {
	Revealed *SignatureMessage
	Hidden   *HiddenMessage

	message *SignatureMessage
}

// RevealedProofMessage marks the message as revealed.
func RevealedProofMessage(message *SignatureMessage) *ProofMessage {
	return &ProofMessage{
		Revealed: message,
		message:  message,
	}
}

// HiddenProofMessage marks the message as hidden with a proof-specific blinding.
func HiddenProofMessage(message *SignatureMessage) *ProofMessage {
	return &ProofMessage{
		Hidden: &HiddenMessage{
			ProofSpecific: &ProofSpecificBlinding{},
		},
		message: message,
	}
}

// HiddenProofMessageWithBlinding marks the message as hidden with an external blinding.
func HiddenProofMessageWithBlinding(message *SignatureMessage, blinding *ml.Zr) *ProofMessage {
	return &ProofMessage{
		Hidden: &HiddenMessage{
			External: &ExternalBlinding{Blinding: blinding},
		},
		message: message,
	}
}

// IsHidden returns true when the message is not revealed to the verifier.
func (pm *ProofMessage) IsHidden() bool {
	return pm.Hidden != nil
}

// Message returns the underlying signature message.
func (pm *ProofMessage) Message() *SignatureMessage {
	return pm.message
}
