// Package shortcode generates the short, human-typeable codes printed on
// tickets, rewards and QR posters. Codes are collision-checked by the
// caller against storage; generation only guarantees uniform randomness.
package shortcode

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Alphabet without 0/O, 1/I/L and U/V, which staff misread on receipts.
const alphabet = "23456789ABCDEFGHJKMNPQRSTWXYZ"

const DefaultLength = 8

// New returns a random code of n characters over the restricted alphabet,
// e.g. "K7PMW3QD".
func New(n int) (string, error) {
	if n <= 0 {
		n = DefaultLength
	}

	max := big.NewInt(int64(len(alphabet)))
	buf := make([]byte, n)
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("rand.Int -> %w", err)
		}
		buf[i] = alphabet[idx.Int64()]
	}

	return string(buf), nil
}
