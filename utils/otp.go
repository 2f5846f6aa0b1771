package utils

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"os"
	"strconv"
	"time"
)

const otpDigits = 6

// GenerateOtp returns a zero-padded numeric one-time password.
func GenerateOtp() (string, error) {
	max := big.NewInt(1_000_000)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

// OtpMatches compares in constant time.
func OtpMatches(expected string, given string) bool {
	if len(expected) != otpDigits || len(given) != otpDigits {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(given)) == 1
}

// OtpLifespan reads OTP_MINUTE_LIFESPAN (default 5m).
func OtpLifespan() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("OTP_MINUTE_LIFESPAN"))
	if err != nil || minutes <= 0 {
		minutes = 5
	}
	return time.Duration(minutes) * time.Minute
}
