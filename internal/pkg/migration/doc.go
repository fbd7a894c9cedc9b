// Package migration decodes vendor OTP export payloads.
//
// The payload travels as a URL whose data parameter carries the Base64 of a
// minimal protobuf-like wire format: varint tags, length-delimited records,
// unknown fields skipped by wire type. Decoding is a pure single pass over the
// bytes; partial corruption drops the affected record, not the batch.
package migration
