// internal/utils/crypto.go
package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const trackingCodeTemplate = "xxxxxxxx4xxxy"

// GenerateTrackingCode produces the 13-character order tracking code: hex
// digits following a UUID-v4-like template (fixed version nibble, variant
// nibble in 8..b), rendered uppercase. Uniqueness is only probabilistic; the
// orders table declares a unique index so a collision surfaces as a
// constraint violation.
func GenerateTrackingCode() (string, error) {
	var b strings.Builder
	b.Grow(len(trackingCodeTemplate))

	for _, c := range trackingCodeTemplate {
		switch c {
		case 'x':
			n, err := rand.Int(rand.Reader, big.NewInt(16))
			if err != nil {
				return "", err
			}
			b.WriteByte(hexDigit(n.Int64()))
		case 'y':
			n, err := rand.Int(rand.Reader, big.NewInt(4))
			if err != nil {
				return "", err
			}
			b.WriteByte(hexDigit(8 + n.Int64()))
		default:
			b.WriteByte(byte(c))
		}
	}

	return strings.ToUpper(b.String()), nil
}

func hexDigit(n int64) byte {
	const digits = "0123456789abcdef"
	return digits[n]
}

func GenerateRandomString(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, length)

	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		b[i] = charset[n.Int64()]
	}

	return string(b), nil
}
