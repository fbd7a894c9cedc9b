package migration

import (
	"encoding/base32"
	"strings"
)

// secretEncoding is the RFC 4648 alphabet used by the otpauth URL standard.
// No padding character is emitted; authenticator apps do not expect one.
var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// EncodeSecret re-encodes raw secret bytes into the Base32 text form required
// by the standard OTP URL representation.
func EncodeSecret(raw []byte) string {
	return secretEncoding.EncodeToString(raw)
}

// DecodeSecret decodes Base32 secret text back into raw bytes. It tolerates
// lowercase input, surrounding whitespace and trailing padding.
func DecodeSecret(secret string) ([]byte, error) {
	clean := strings.ToUpper(strings.Join(strings.Fields(secret), ""))
	clean = strings.TrimRight(clean, "=")

	return secretEncoding.DecodeString(clean)
}
