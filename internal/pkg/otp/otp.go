package otp

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Provision creates a fresh secret and provisioning URI for an account.
	Provision(issuer, accountName string, digits, period int, algorithm string) (secret string, uri string, err error)
	// GenerateCode computes the code for a secret at the given time.
	//
	// It is deterministic for identical inputs; a secret that is not valid
	// Base32 yields an error, never a panic.
	GenerateCode(secret string, digits, period int, algorithm string, at time.Time) (string, error)
}

// TOTP implements OTP using the Time-based One-Time Password algorithm.
type TOTP struct {
	secretSize uint
}

// NewTOTP constructs a TOTP generator. secretSize is the provisioned secret
// length in bytes; zero selects the RFC 4226/6238 recommended 20.
func NewTOTP(secretSize uint) *TOTP {
	if secretSize == 0 {
		secretSize = 20
	}

	return &TOTP{secretSize: secretSize}
}

// Provision creates a fresh secret and provisioning URI for an account.
func (o *TOTP) Provision(issuer, accountName string, digits, period int, algorithm string) (string, string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
		Period:      normalizePeriod(period),
		SecretSize:  o.secretSize,
		Digits:      normalizeDigits(digits),
		Algorithm:   algorithmFromString(algorithm),
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

// GenerateCode computes the code for a secret at the given time.
func (o *TOTP) GenerateCode(secret string, digits, period int, algorithm string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    normalizePeriod(period),
		Digits:    normalizeDigits(digits),
		Algorithm: algorithmFromString(algorithm),
	})
}

func normalizePeriod(period int) uint {
	if period <= 0 {
		return 30
	}
	return uint(period)
}

func normalizeDigits(digits int) otp.Digits {
	if digits == 8 {
		return otp.DigitsEight
	}
	return otp.DigitsSix
}

func algorithmFromString(algorithm string) otp.Algorithm {
	switch algorithm {
	case "SHA256":
		return otp.AlgorithmSHA256
	case "SHA512":
		return otp.AlgorithmSHA512
	default:
		return otp.AlgorithmSHA1
	}
}
