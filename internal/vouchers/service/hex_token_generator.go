// Package service provides redemption token generation for vouchers.
// Tokens are short, cryptographically random, and human-transcribable; global
// uniqueness is enforced by the voucher store, not the generator.
package service

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	vouchersDomain "github.com/allisson/vouchers/internal/vouchers/domain"
)

// TokenGenerator defines the interface for redemption token generation.
type TokenGenerator interface {
	Generate() (string, error)
	Validate(token string) error
}

// tokenEntropyBytes is the number of random bytes per token (48 bits of entropy,
// rendered as 12 hex characters).
const tokenEntropyBytes = 6

type hexTokenGenerator struct{}

// NewHexTokenGenerator creates a token generator producing 12-character
// uppercase hex tokens from a cryptographically secure random source.
func NewHexTokenGenerator() TokenGenerator {
	return &hexTokenGenerator{}
}

// Generate creates a new random token: 6 bytes from crypto/rand rendered as
// 12 uppercase hex characters.
func (g *hexTokenGenerator) Generate() (string, error) {
	buf := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(buf)), nil
}

// Validate checks if the token is exactly 12 uppercase hex characters [0-9A-F].
func (g *hexTokenGenerator) Validate(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}

	if len(token) != vouchersDomain.TokenLength {
		return fmt.Errorf("token must be exactly %d characters", vouchersDomain.TokenLength)
	}

	for _, c := range token {
		if !isUpperHex(c) {
			return errors.New("token must contain only uppercase hex characters [0-9A-F]")
		}
	}

	return nil
}

// isUpperHex checks if a character is an uppercase hex digit [0-9A-F].
func isUpperHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')
}
