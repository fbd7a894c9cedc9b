// Package otp computes time-based one-time passwords.
//
// It is the vault's code generation collaborator: given a Base32 secret, a
// digit count, a period and a digest algorithm, it produces the numeric code
// valid at a point in time, and can provision fresh secrets with their
// otpauth URIs for newly created tokens.
package otp
