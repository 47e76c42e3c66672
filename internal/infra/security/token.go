package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
)

const defaultTokenBytes = 32

// RandomTokenGenerator mints opaque session tokens from the OS entropy
// source. Tokens are URL-safe base64 so they travel cleanly in bearer
// Authorization headers.
type RandomTokenGenerator struct {
	Size int
}

func (g RandomTokenGenerator) NewToken() (string, error) {
	size := g.Size
	if size <= 0 {
		size = defaultTokenBytes
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", fmt.Errorf("security: token entropy: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
