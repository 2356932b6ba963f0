package ledger

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// LinkAlphabet base62.
const LinkAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultLinkLength largo del link público de una movimentação.
const DefaultLinkLength = 16

// RandomLinkGenerator produce tokens aleatorios de largo fijo. No garantiza unicidad:
// la restricción UNIQUE de la base decide y el caso de uso reintenta.
type RandomLinkGenerator struct {
	Length int
}

// NewRandomLinkGenerator construye el generador; length <= 0 usa DefaultLinkLength.
func NewRandomLinkGenerator(length int) *RandomLinkGenerator {
	if length <= 0 {
		length = DefaultLinkLength
	}
	return &RandomLinkGenerator{Length: length}
}

// Generate devuelve un token nuevo.
func (g *RandomLinkGenerator) Generate() (string, error) {
	max := big.NewInt(int64(len(LinkAlphabet)))
	buf := make([]byte, g.Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generar link: %w", err)
		}
		buf[i] = LinkAlphabet[n.Int64()]
	}
	return string(buf), nil
}
