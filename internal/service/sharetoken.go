package service

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// DefaultShareTokenLength yields about 132 bits of randomness with the
// nanoid alphabet.
const DefaultShareTokenLength = 22

// ShareTokenGenerator returns a new random share token.
type ShareTokenGenerator func() (string, error)

// NanoidShareTokens returns a generator of URL-safe nanoid tokens of the given length.
func NanoidShareTokens(length int) ShareTokenGenerator {
	if length <= 0 {
		length = DefaultShareTokenLength
	}
	return func() (string, error) {
		token, err := gonanoid.New(length)
		if err != nil {
			return "", fmt.Errorf("failed to generate share token: %w", err)
		}
		return token, nil
	}
}
