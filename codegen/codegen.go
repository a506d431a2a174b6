// Package codegen provides short-code generation for links.
// Generators should be safe for concurrent use.
package codegen

import (
	"crypto/rand"
	"errors"
)

const (
	// urlSafeChars is the 64-character alphabet used for generated codes.
	// Every character is safe inside a URL path segment.
	urlSafeChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz-_"

	// DefaultLength is the length of generated codes.
	DefaultLength = 7
)

// Generator generates short codes.
// Implementations should be safe for concurrent use.
// Generated codes carry no uniqueness guarantee of their own;
// uniqueness is enforced by the store on insert.
type Generator interface {
	Generate(length int) (string, error)
}

// urlSafeGenerator implements Generator over the 64-character URL-safe alphabet.
type urlSafeGenerator struct{}

// NewURLSafe returns a new URL-safe code generator.
func NewURLSafe() Generator {
	return &urlSafeGenerator{}
}

// Generate generates a random code of the specified length.
func (g *urlSafeGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("length must be positive")
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	// 256 is a multiple of 64, so the modulo introduces no bias.
	for i := range b {
		b[i] = urlSafeChars[int(b[i])%len(urlSafeChars)]
	}

	return string(b), nil
}
