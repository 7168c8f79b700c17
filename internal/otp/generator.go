package otp

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
)

var digitSpan = big.NewInt(900000)

// Generate produces a 6-digit code uniformly distributed over
// [100000, 999999]. rand.Int rejection-samples internally, so there is no
// modulo bias. The random source is injectable for tests; production passes
// crypto/rand.Reader.
func Generate(random io.Reader) (string, error) {
	n, err := rand.Int(random, digitSpan)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
