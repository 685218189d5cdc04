package invitation

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	codeLength   = 6
	codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	// maxCodeAttempts reintentos ante colisión del índice único de code.
	maxCodeAttempts = 5
)

// NewCode código corto en base36 mayúscula.
func NewCode() (string, error) {
	var b strings.Builder
	b.Grow(codeLength)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeCode recorta espacios y pasa a mayúsculas lo que escribe el usuario.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
