package internal

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	minOTPDigits = 4
	maxOTPDigits = 10
)

// ErrInvalidOTPDigits is returned when a code length is outside 4..10.
var ErrInvalidOTPDigits = errors.New("invalid otp digits")

// NewOTP returns a numeric code whose digits are drawn independently and
// uniformly from crypto/rand.
func NewOTP(digits int) (string, error) {
	if digits < minOTPDigits || digits > maxOTPDigits {
		return "", ErrInvalidOTPDigits
	}

	var b strings.Builder
	b.Grow(digits)

	ten := big.NewInt(10)
	for i := 0; i < digits; i++ {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}

	return b.String(), nil
}

// NewID returns a random UUIDv4 string.
func NewID() string {
	return uuid.NewString()
}

// ShortID returns the first eight characters of a random UUID, used for
// request correlation in logs.
func ShortID() string {
	return uuid.NewString()[:8]
}
