package migration

import (
	"context"
	"encoding/base64"
	"errors"
	"net/url"
	"strings"
	"testing"
)

// appendVarint encodes v as 7-bit little-endian groups.
func appendVarint(b []byte, v uint64) []byte {
	for v >= 0x80 {
		b = append(b, byte(v)|0x80)
		v >>= 7
	}

	return append(b, byte(v))
}

func appendBytesField(b []byte, field int, data []byte) []byte {
	b = appendVarint(b, uint64(field<<3|wireBytes))
	b = appendVarint(b, uint64(len(data)))

	return append(b, data...)
}

func appendVarintField(b []byte, field int, v uint64) []byte {
	b = appendVarint(b, uint64(field<<3|wireVarint))

	return appendVarint(b, v)
}

type recordOpts struct {
	secret    []byte
	name      string
	issuer    string
	algorithm uint64
	digits    uint64
	otpType   uint64
}

func buildRecord(o recordOpts) []byte {
	var b []byte
	if len(o.secret) > 0 {
		b = appendBytesField(b, fieldSecret, o.secret)
	}
	if o.name != "" {
		b = appendBytesField(b, fieldName, []byte(o.name))
	}
	if o.issuer != "" {
		b = appendBytesField(b, fieldIssuer, []byte(o.issuer))
	}
	if o.algorithm != 0 {
		b = appendVarintField(b, fieldAlgorithm, o.algorithm)
	}
	if o.digits != 0 {
		b = appendVarintField(b, fieldDigits, o.digits)
	}
	if o.otpType != 0 {
		b = appendVarintField(b, fieldType, o.otpType)
	}

	return b
}

func buildPayload(records ...[]byte) []byte {
	var b []byte
	for _, r := range records {
		b = appendBytesField(b, fieldAccountRecord, r)
	}

	return b
}

func migrationURL(payload []byte) string {
	data := base64.StdEncoding.EncodeToString(payload)

	return Scheme + "://offline?data=" + url.QueryEscape(data)
}

func TestDecode(t *testing.T) {
	ctx := context.Background()

	t.Run("SingleTimeBasedAccount", func(t *testing.T) {
		// Arrange
		secret := []byte("12345678901234567890")
		payload := buildPayload(buildRecord(recordOpts{
			secret:  secret,
			name:    "user@example.com",
			issuer:  "Example",
			otpType: typeTimeBased,
		}))

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) != 1 {
			t.Fatalf("expected 1 account, got %d", len(accounts))
		}
		a := accounts[0]
		if a.Issuer != "Example" || a.Name != "user@example.com" {
			t.Fatalf("unexpected identity: %+v", a)
		}
		if a.Secret != EncodeSecret(secret) {
			t.Fatalf("expected re-encoded secret %q, got %q", EncodeSecret(secret), a.Secret)
		}
		if a.Digits != 6 || a.Algorithm != "SHA1" || a.Period != 30 {
			t.Fatalf("unexpected defaults: %+v", a)
		}
	})

	t.Run("IssuerSplitFromName", func(t *testing.T) {
		// Arrange
		payload := buildPayload(buildRecord(recordOpts{
			secret:  []byte("secret-bytes"),
			name:    "GitHub: user@example.com",
			otpType: typeTimeBased,
		}))

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if accounts[0].Issuer != "GitHub" {
			t.Fatalf("expected issuer split from name, got %q", accounts[0].Issuer)
		}
		if accounts[0].Name != "user@example.com" {
			t.Fatalf("expected trimmed account name, got %q", accounts[0].Name)
		}
	})

	t.Run("ExplicitIssuerWins", func(t *testing.T) {
		// Arrange
		payload := buildPayload(buildRecord(recordOpts{
			secret:  []byte("secret-bytes"),
			name:    "GitHub:user@example.com",
			issuer:  "Example",
			otpType: typeTimeBased,
		}))

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if accounts[0].Issuer != "Example" {
			t.Fatalf("expected explicit issuer kept, got %q", accounts[0].Issuer)
		}
		if accounts[0].Name != "GitHub:user@example.com" {
			t.Fatalf("expected name untouched, got %q", accounts[0].Name)
		}
	})

	t.Run("AlgorithmAndDigitsMapping", func(t *testing.T) {
		// Arrange
		payload := buildPayload(
			buildRecord(recordOpts{secret: []byte("a"), name: "sha256", algorithm: 2, digits: 2, otpType: typeTimeBased}),
			buildRecord(recordOpts{secret: []byte("b"), name: "sha512", algorithm: 3, digits: 1, otpType: typeTimeBased}),
		)

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if accounts[0].Algorithm != "SHA256" || accounts[0].Digits != 8 {
			t.Fatalf("unexpected mapping for first record: %+v", accounts[0])
		}
		if accounts[1].Algorithm != "SHA512" || accounts[1].Digits != 6 {
			t.Fatalf("unexpected mapping for second record: %+v", accounts[1])
		}
	})

	t.Run("SkipsCounterBasedAccounts", func(t *testing.T) {
		// Arrange
		payload := buildPayload(
			buildRecord(recordOpts{secret: []byte("hotp"), name: "counter", otpType: typeCounterBased}),
			buildRecord(recordOpts{secret: []byte("totp"), name: "time", otpType: typeTimeBased}),
		)

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) != 1 || accounts[0].Name != "time" {
			t.Fatalf("expected only the time-based account, got %+v", accounts)
		}
	})

	t.Run("AbsentTypeIsAcceptedAsTimeBased", func(t *testing.T) {
		// Arrange
		payload := buildPayload(buildRecord(recordOpts{secret: []byte("s"), name: "untyped"}))

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) != 1 {
			t.Fatalf("expected untyped record accepted, got %d accounts", len(accounts))
		}
	})

	t.Run("DropsRecordWithoutSecret", func(t *testing.T) {
		// Arrange
		payload := buildPayload(
			buildRecord(recordOpts{name: "no-secret", otpType: typeTimeBased}),
			buildRecord(recordOpts{secret: []byte("s"), name: "ok", otpType: typeTimeBased}),
		)

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) != 1 || accounts[0].Name != "ok" {
			t.Fatalf("expected secretless record dropped, got %+v", accounts)
		}
	})

	t.Run("StrippedPaddingIsRestored", func(t *testing.T) {
		// Arrange: authenticator exports often arrive with '=' stripped by
		// intermediate tooling.
		payload := buildPayload(buildRecord(recordOpts{secret: []byte("s"), name: "padded", otpType: typeTimeBased}))
		data := strings.TrimRight(base64.StdEncoding.EncodeToString(payload), "=")
		rawURL := Scheme + "://offline?data=" + url.QueryEscape(data)

		// Act
		accounts, err := Decode(ctx, rawURL)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) != 1 {
			t.Fatalf("expected account from unpadded payload, got %d", len(accounts))
		}
	})

	t.Run("UnescapedPlusSurvivesQueryDecoding", func(t *testing.T) {
		// Arrange: find a payload whose Base64 form contains '+', then embed it
		// without escaping, the way pasted URLs usually arrive.
		var data string
		for i := 0; i < 256; i++ {
			payload := buildPayload(buildRecord(recordOpts{
				secret:  []byte{byte(i), 0xfb, 0xef},
				name:    "plus",
				otpType: typeTimeBased,
			}))
			if enc := base64.StdEncoding.EncodeToString(payload); strings.Contains(enc, "+") {
				data = enc
				break
			}
		}
		if data == "" {
			t.Fatalf("could not find payload with '+' in base64 form")
		}

		// Act
		accounts, err := Decode(ctx, Scheme+"://offline?data="+data)

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) != 1 {
			t.Fatalf("expected account despite unescaped '+', got %d", len(accounts))
		}
	})

	t.Run("TruncatedPayloadKeepsParsedRecords", func(t *testing.T) {
		// Arrange: one full record followed by a record whose declared length
		// runs past the end of the buffer.
		payload := buildPayload(buildRecord(recordOpts{secret: []byte("s"), name: "ok", otpType: typeTimeBased}))
		payload = appendVarint(payload, uint64(fieldAccountRecord<<3|wireBytes))
		payload = appendVarint(payload, 200)
		payload = append(payload, 0x01, 0x02)

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) != 1 || accounts[0].Name != "ok" {
			t.Fatalf("expected the record before the truncation point, got %+v", accounts)
		}
	})

	t.Run("UnknownTopLevelFieldIsSkipped", func(t *testing.T) {
		// Arrange: a varint version field ahead of the account record.
		payload := appendVarintField(nil, 2, 1)
		payload = append(payload, buildPayload(buildRecord(recordOpts{secret: []byte("s"), name: "ok", otpType: typeTimeBased}))...)

		// Act
		accounts, err := Decode(ctx, migrationURL(payload))

		// Assert
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(accounts) != 1 {
			t.Fatalf("expected unknown field skipped, got %d accounts", len(accounts))
		}
	})

	t.Run("NoAccountsErrors", func(t *testing.T) {
		cases := map[string]string{
			"WrongScheme":   "otpauth://totp/Example?secret=ABC",
			"MissingData":   Scheme + "://offline",
			"EmptyData":     Scheme + "://offline?data=",
			"GarbageBase64": Scheme + "://offline?data=%%%",
			"NotAURL":       "://",
		}

		for name, rawURL := range cases {
			t.Run(name, func(t *testing.T) {
				if _, err := Decode(ctx, rawURL); !errors.Is(err, ErrNoAccounts) {
					t.Fatalf("expected ErrNoAccounts, got %v", err)
				}
			})
		}
	})

	t.Run("AllRecordsInvalidErrors", func(t *testing.T) {
		// Arrange
		payload := buildPayload(
			buildRecord(recordOpts{name: "no-secret"}),
			buildRecord(recordOpts{secret: []byte("hotp"), name: "counter", otpType: typeCounterBased}),
		)

		// Act
		_, err := Decode(ctx, migrationURL(payload))

		// Assert
		if !errors.Is(err, ErrNoAccounts) {
			t.Fatalf("expected ErrNoAccounts, got %v", err)
		}
	})
}

func TestSecretEncoding(t *testing.T) {
	t.Run("EncodeOmitsPadding", func(t *testing.T) {
		if got := EncodeSecret([]byte("12345678901234567890")); got != "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ" {
			t.Fatalf("unexpected encoding: %q", got)
		}
		if strings.Contains(EncodeSecret([]byte("a")), "=") {
			t.Fatalf("expected no padding characters")
		}
	})

	t.Run("DecodeToleratesMessyInput", func(t *testing.T) {
		want := []byte("12345678901234567890")

		for _, in := range []string{
			"GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ",
			"gezdgnbvgy3tqojqgezdgnbvgy3tqojq",
			"  GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ  ",
			"GEZD GNBV GY3T QOJQ GEZD GNBV GY3T QOJQ",
		} {
			got, err := DecodeSecret(in)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", in, err)
			}
			if string(got) != string(want) {
				t.Fatalf("unexpected decode for %q: %q", in, got)
			}
		}
	})

	t.Run("DecodeRejectsInvalidAlphabet", func(t *testing.T) {
		if _, err := DecodeSecret("NOT!BASE32"); err == nil {
			t.Fatalf("expected error for invalid alphabet")
		}
	})
}
