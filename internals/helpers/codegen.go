// file: internals/helpers/codegen.go
package helper

import (
	"crypto/rand"
	"math/big"
)

// Alphabet without visually ambiguous characters (0/O, 1/I/L).
const alphaCodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// NumericCode draws a uniformly random numeric code of n digits (leading
// zeros allowed). Used for trainee portal access codes.
func NumericCode(n int) (string, error) {
	buf := make([]byte, n)
	for i := range buf {
		d, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}

// AlphaCode draws a random alphanumeric code of n characters from an
// ambiguity-free alphabet. Used for group reference numbers.
func AlphaCode(n int) (string, error) {
	buf := make([]byte, n)
	max := big.NewInt(int64(len(alphaCodeAlphabet)))
	for i := range buf {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = alphaCodeAlphabet[idx.Int64()]
	}
	return string(buf), nil
}
