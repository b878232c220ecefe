package services

import (
	"crypto/rand"
	"errors"
	"math/big"
	"strconv"
	"time"
)

const otpValidity = 10 * time.Minute

var (
	ErrOTPExpired = errors.New("OTP has expired")
	ErrOTPInvalid = errors.New("invalid OTP code")
)

// GenerateOTP returns a uniformly random 6-digit code in
// [100000, 999999]. The code is the sole proof of email ownership, so it
// must come from crypto/rand.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+100000, 10), nil
}

// OTPExpiry returns the validity deadline for a code issued now.
func OTPExpiry() time.Time {
	return time.Now().Add(otpValidity)
}

// CheckOTP validates a submitted code against the stored one. Expiry is
// checked before equality so an expired-but-correct code reports as
// expired, not invalid.
func CheckOTP(submitted, stored string, expiry time.Time) error {
	if time.Now().After(expiry) {
		return ErrOTPExpired
	}
	if submitted != stored {
		return ErrOTPInvalid
	}
	return nil
}
