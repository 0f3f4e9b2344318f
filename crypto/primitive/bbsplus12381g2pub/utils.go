/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bbsplus12381g2pub

import (
	"encoding/binary"
	"fmt"
	"sort"
)

func uint32ToBytes(value uint32) []byte {
	bytes := make([]byte, 4)

	binary.BigEndian.PutUint32(bytes, value)

	return bytes
}

func uint16ToBytes(value uint16) []byte {
	bytes := make([]byte, 2)

	binary.BigEndian.PutUint16(bytes, value)

	return bytes
}

func uint32FromBytes(bytes []byte) uint32 {
	return binary.BigEndian.Uint32(bytes)
}

func bitvectorToIndexes(data []byte) []int {
	revealedIndexes := make([]int, 0)
	scalar := 0

	for _, v := range data {
		remaining := 8

		for v > 0 {
			revealed := v & 1
			if revealed == 1 {
				revealedIndexes = append(revealedIndexes, scalar)
			}

			v >>= 1
			scalar++
			remaining--
		}

		scalar += remaining
	}

	return revealedIndexes
}

type pokPayload struct {
	messagesCount int
	revealed      []int
}

// nolint:gomnd
func parsePoKPayload(bytes []byte) (*pokPayload, error) {
	if len(bytes) < intSize {
		return nil, fmt.Errorf("%w: invalid size of PoK payload", ErrMalformedProof)
	}

	messagesCount := int(uint32FromBytes(bytes[0:4]))
	offset := lenInBytes(messagesCount)

	if len(bytes) < offset {
		return nil, fmt.Errorf("%w: invalid size of PoK payload", ErrMalformedProof)
	}

	revealed := bitvectorToIndexes(reverseBytes(bytes[4:offset]))

	return &pokPayload{
		messagesCount: messagesCount,
		revealed:      revealed,
	}, nil
}

func newPoKPayload(messagesCount int, revealed []int) *pokPayload {
	return &pokPayload{
		messagesCount: messagesCount,
		revealed:      revealed,
	}
}

func (p *pokPayload) toBytes() ([]byte, error) {
	bytes := make([]byte, p.lenInBytes())

	copy(bytes, uint32ToBytes(uint32(p.messagesCount)))

	bitvector := bytes[4:]

	for _, r := range p.revealed {
		idx := r / 8
		bit := r % 8

		if len(bitvector) <= idx {
			return nil, fmt.Errorf("%w: invalid size of PoK payload", ErrMalformedProof)
		}

		bitvector[idx] |= 1 << bit
	}

	reverseBytes(bitvector)

	return bytes, nil
}

func (p *pokPayload) lenInBytes() int {
	return lenInBytes(p.messagesCount)
}

func lenInBytes(messagesCount int) int {
	return 4 + (messagesCount / 8) + 1 //nolint:gomnd
}

func reverseBytes(s []byte) []byte {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}

	return s
}

func sortedIndexes(m map[int]*SignatureMessage) []int {
	indexes := make([]int, 0, len(m))

	for ind := range m {
		indexes = append(indexes, ind)
	}

	sort.Ints(indexes)

	return indexes
}
