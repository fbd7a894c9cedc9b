package entity

import (
	"time"

	"github.com/shandysiswandi/otpdeck/internal/pkg/valueobject"
)

// Token is one stored OTP account. Secret holds the unpadded Base32 text in
// memory; at rest it is encrypted and only the ciphertext touches the database.
type Token struct {
	ID        int64
	Label     string
	Issuer    string
	Secret    string
	Digits    int
	Period    int
	Algorithm Algorithm
	Source    Source
	Metadata  valueobject.JSONMap
	CreatedAt time.Time
}

// StoredToken is the persistence shape of a token: the row fields plus the
// encrypted secret. The plaintext Secret field is empty on reads until the
// usecase decrypts the ciphertext.
type StoredToken struct {
	Token
	SecretCiphertext []byte
}

// CodeSnapshot is the live scheduler view of a token.
type CodeSnapshot struct {
	Code      string
	Remaining int
	Period    int
}

// TokenWithCode joins a stored token with its current snapshot for listing.
// Secrets are never included.
type TokenWithCode struct {
	ID        int64
	Label     string
	Issuer    string
	Digits    int
	Period    int
	Algorithm Algorithm
	Source    Source
	Code      string
	Remaining int
}

// BackupEntry is one token in an exported vault snapshot. Backups are an
// operator feature, so the plaintext secret is included.
type BackupEntry struct {
	ID        int64  `json:"id,string"`
	Label     string `json:"label"`
	Issuer    string `json:"issuer"`
	Secret    string `json:"secret"`
	Digits    int    `json:"digits"`
	Period    int    `json:"period"`
	Algorithm string `json:"algorithm"`
	Source    string `json:"source"`
}
