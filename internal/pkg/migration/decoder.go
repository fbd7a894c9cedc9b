package migration

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/url"
	"strings"
)

// Scheme is the URL scheme of the vendor export payload.
const Scheme = "otpauth-migration"

// defaultPeriod is applied to every imported account; the payload format does
// not carry a period field.
const defaultPeriod = 30

// ErrNoAccounts is returned when the input yields no valid account at all:
// wrong scheme, missing data parameter, undecodable payload, or a payload
// whose records were all malformed or unsupported.
var ErrNoAccounts = errors.New("migration: no accounts found")

// Account is one decoded OTP account, ready to become a vault token.
type Account struct {
	// Issuer is the issuing service name, possibly split out of the record name.
	Issuer string
	// Name is the account label, typically an email address.
	Name string
	// Secret is the shared secret re-encoded as unpadded Base32 text.
	Secret string
	// Digits is the code length, 6 or 8.
	Digits int
	// Algorithm is the digest name: SHA1, SHA256 or SHA512.
	Algorithm string
	// Period is the rotation interval in seconds, fixed at 30 for this source.
	Period int
}

// Field numbers of the top-level payload.
const fieldAccountRecord = 1

// Field numbers of one account record.
const (
	fieldSecret    = 1
	fieldName      = 2
	fieldIssuer    = 3
	fieldAlgorithm = 4
	fieldDigits    = 5
	fieldType      = 6
)

// Account type values carried by the record.
const (
	typeCounterBased = 1
	typeTimeBased    = 2
)

// Decoder is an injectable wrapper around Decode for callers that take the
// decode step as a dependency.
type Decoder struct{}

// NewDecoder returns a Decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode parses a vendor migration URL into account descriptors.
func (*Decoder) Decode(ctx context.Context, rawURL string) ([]Account, error) {
	return Decode(ctx, rawURL)
}

// Decode parses a vendor migration URL into account descriptors.
//
// Corruption is tolerated per record: a malformed or unsupported record is
// dropped and the rest of the batch survives. Decode fails with ErrNoAccounts
// only when nothing valid could be extracted.
func Decode(ctx context.Context, rawURL string) ([]Account, error) {
	payload, err := extractPayload(rawURL)
	if err != nil {
		return nil, err
	}

	accounts := parsePayload(ctx, payload)
	if len(accounts) == 0 {
		return nil, ErrNoAccounts
	}

	return accounts, nil
}

// extractPayload validates the scheme, pulls the data query parameter and
// Base64-decodes it, retrying once with '=' padding to a multiple of four.
func extractPayload(rawURL string) ([]byte, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme != Scheme {
		return nil, ErrNoAccounts
	}

	data := u.Query().Get("data")
	if data == "" {
		return nil, ErrNoAccounts
	}

	// Query decoding turns an unescaped '+' into a space; restore it before
	// Base64 decoding.
	data = strings.ReplaceAll(data, " ", "+")

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		if pad := len(data) % 4; pad != 0 {
			raw, err = base64.StdEncoding.DecodeString(data + strings.Repeat("=", 4-pad))
		}
		if err != nil {
			return nil, ErrNoAccounts
		}
	}

	return raw, nil
}

// parsePayload walks the top-level fields and collects every account record
// that parses into a usable descriptor. A truncated top-level field ends the
// walk, keeping whatever was fully parsed before the truncation point.
func parsePayload(ctx context.Context, payload []byte) []Account {
	cur := &cursor{buf: payload}
	var accounts []Account

	for !cur.done() {
		field, wire, err := cur.readTag()
		if err != nil {
			break
		}

		if field != fieldAccountRecord || wire != wireBytes {
			if err := cur.skip(wire); err != nil {
				break
			}
			continue
		}

		record, err := cur.readBytes()
		if err != nil {
			break
		}

		if account, ok := parseRecord(ctx, record); ok {
			accounts = append(accounts, account)
		}
	}

	return accounts
}

// parseRecord parses one account record's byte range. It returns ok=false for
// records that are truncated, missing their secret, or not time-based.
func parseRecord(ctx context.Context, record []byte) (Account, bool) {
	cur := &cursor{buf: record}

	var (
		secret    []byte
		name      string
		issuer    string
		algorithm uint64
		digits    uint64
		otpType   uint64
	)

	for !cur.done() {
		field, wire, err := cur.readTag()
		if err != nil {
			return Account{}, false
		}

		switch {
		case field == fieldSecret && wire == wireBytes:
			if secret, err = cur.readBytes(); err != nil {
				return Account{}, false
			}

		case field == fieldName && wire == wireBytes:
			b, err := cur.readBytes()
			if err != nil {
				return Account{}, false
			}
			name = string(b)

		case field == fieldIssuer && wire == wireBytes:
			b, err := cur.readBytes()
			if err != nil {
				return Account{}, false
			}
			issuer = string(b)

		case field == fieldAlgorithm && wire == wireVarint:
			if algorithm, err = cur.readVarint(); err != nil {
				return Account{}, false
			}

		case field == fieldDigits && wire == wireVarint:
			if digits, err = cur.readVarint(); err != nil {
				return Account{}, false
			}

		case field == fieldType && wire == wireVarint:
			if otpType, err = cur.readVarint(); err != nil {
				return Account{}, false
			}

		default:
			if err := cur.skip(wire); err != nil {
				return Account{}, false
			}
		}
	}

	if len(secret) == 0 {
		return Account{}, false
	}

	if otpType == typeCounterBased {
		slog.WarnContext(ctx, "skipping counter-based account in migration payload", "name", name)
		return Account{}, false
	}
	// An absent type (zero) is accepted as time-based; real-world payloads
	// rely on this leniency.
	if otpType != 0 && otpType != typeTimeBased {
		return Account{}, false
	}

	if issuer == "" {
		if idx := strings.Index(name, ":"); idx >= 0 {
			issuer = name[:idx]
			name = strings.TrimSpace(name[idx+1:])
		}
	}

	return Account{
		Issuer:    issuer,
		Name:      name,
		Secret:    EncodeSecret(secret),
		Digits:    mapDigits(digits),
		Algorithm: mapAlgorithm(algorithm),
		Period:    defaultPeriod,
	}, true
}

func mapAlgorithm(v uint64) string {
	switch v {
	case 2:
		return "SHA256"
	case 3:
		return "SHA512"
	default:
		return "SHA1"
	}
}

func mapDigits(v uint64) int {
	if v == 2 {
		return 8
	}
	return 6
}
