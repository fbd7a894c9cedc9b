// Package secretbox encrypts vault token secrets at rest.
//
// Ciphertexts are bound to the owning token through AES-GCM additional
// authenticated data, so a secret copied onto another token row fails to
// decrypt instead of silently producing codes for the wrong account.
package secretbox

// Purpose identifies what a ciphertext protects.
type Purpose string

// PurposeTokenSecret scopes encryption to OTP token secrets.
const PurposeTokenSecret Purpose = "token_secret"

// Scope binds a ciphertext to its owning token. It is used as AAD
// (Additional Authenticated Data) in AES-GCM.
type Scope struct {
	// TokenID is the owning token identifier.
	TokenID int64
	// Purpose is the encryption purpose.
	Purpose Purpose
}

// Encryptor defines the interface for encrypting/decrypting scoped secrets.
type Encryptor interface {
	// Encrypt returns ciphertext for the given plaintext and scope.
	Encrypt(plaintext []byte, scope Scope) (ciphertext []byte, err error)
	// Decrypt returns plaintext for the given ciphertext and scope.
	Decrypt(ciphertext []byte, scope Scope) (plaintext []byte, err error)
}

// KeyProvider provides raw AES keys. For AES-256-GCM, keys must be 32 bytes.
type KeyProvider interface {
	// Key returns the raw AES key to use for this scope. Implementations may
	// return per-environment or KMS-backed keys.
	Key(scope Scope) ([]byte, error)
}
