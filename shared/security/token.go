package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var ErrInvalidTokenLength = errors.New("token length must be positive")

// GenerateToken returns a random alphanumeric string of the given length read from crypto/rand.
func GenerateToken(length int) (string, error) {
	if length <= 0 {
		return "", ErrInvalidTokenLength
	}

	alphabetLen := big.NewInt(int64(len(tokenAlphabet)))
	token := make([]byte, length)
	for i := range token {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", err
		}
		token[i] = tokenAlphabet[n.Int64()]
	}

	return string(token), nil
}
