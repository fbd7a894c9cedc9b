package entity

// Algorithm is the HMAC digest used to derive a token's codes.
type Algorithm int16

const (
	// AlgorithmSHA1 is the default digest used by most issuers.
	AlgorithmSHA1 Algorithm = 1

	// AlgorithmSHA256 selects HMAC-SHA256.
	AlgorithmSHA256 Algorithm = 2

	// AlgorithmSHA512 selects HMAC-SHA512.
	AlgorithmSHA512 Algorithm = 3
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmSHA256:
		return "SHA256"
	case AlgorithmSHA512:
		return "SHA512"
	default:
		return "SHA1"
	}
}

// AlgorithmFromString maps a digest name to its Algorithm value. Unrecognized
// names fall back to SHA1.
func AlgorithmFromString(s string) Algorithm {
	switch s {
	case "SHA256":
		return AlgorithmSHA256
	case "SHA512":
		return AlgorithmSHA512
	default:
		return AlgorithmSHA1
	}
}

// Source records how a token entered the vault.
type Source int16

const (
	// SourceManual is a token typed in or provisioned through the API.
	SourceManual Source = 1

	// SourceMigration is a token imported from a migration payload.
	SourceMigration Source = 2
)

func (s Source) String() string {
	switch s {
	case SourceMigration:
		return "Migration"
	default:
		return "Manual"
	}
}
