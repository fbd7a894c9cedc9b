package migration

import (
	"bytes"
	"errors"
	"testing"
)

func TestCursorReadVarint(t *testing.T) {
	t.Run("SingleByte", func(t *testing.T) {
		c := &cursor{buf: []byte{0x07}}

		v, err := c.readVarint()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 7 {
			t.Fatalf("expected 7, got %d", v)
		}
		if !c.done() {
			t.Fatalf("expected cursor exhausted")
		}
	})

	t.Run("MultiByte", func(t *testing.T) {
		// 300 = 0b100101100 -> 0xac 0x02
		c := &cursor{buf: []byte{0xac, 0x02}}

		v, err := c.readVarint()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 300 {
			t.Fatalf("expected 300, got %d", v)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		c := &cursor{buf: []byte{0x80}}

		if _, err := c.readVarint(); !errors.Is(err, errTruncated) {
			t.Fatalf("expected errTruncated, got %v", err)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		c := &cursor{buf: bytes.Repeat([]byte{0x80}, 11)}

		if _, err := c.readVarint(); !errors.Is(err, errVarintOverflow) {
			t.Fatalf("expected errVarintOverflow, got %v", err)
		}
	})
}

func TestCursorReadTag(t *testing.T) {
	// field 1, wire 2 -> tag 0x0a
	c := &cursor{buf: []byte{0x0a}}

	field, wire, err := c.readTag()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if field != 1 || wire != wireBytes {
		t.Fatalf("expected field 1 wire 2, got field %d wire %d", field, wire)
	}
}

func TestCursorReadBytes(t *testing.T) {
	t.Run("ReadsDeclaredLength", func(t *testing.T) {
		c := &cursor{buf: []byte{0x03, 'a', 'b', 'c', 'd'}}

		out, err := c.readBytes()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if string(out) != "abc" {
			t.Fatalf("expected abc, got %q", out)
		}
		if c.pos != 4 {
			t.Fatalf("expected cursor at 4, got %d", c.pos)
		}
	})

	t.Run("LengthPastEndIsTruncation", func(t *testing.T) {
		c := &cursor{buf: []byte{0x05, 'a', 'b'}}

		if _, err := c.readBytes(); !errors.Is(err, errTruncated) {
			t.Fatalf("expected errTruncated, got %v", err)
		}
	})
}

func TestCursorSkip(t *testing.T) {
	t.Run("SkipsEveryKnownWireType", func(t *testing.T) {
		var buf []byte
		buf = append(buf, 0x07)                                     // varint
		buf = append(buf, 1, 2, 3, 4, 5, 6, 7, 8)                   // fixed64
		buf = append(buf, 0x02, 'a', 'b')                           // bytes
		buf = append(buf, 1, 2, 3, 4)                               // fixed32
		c := &cursor{buf: buf}

		for _, wire := range []int{wireVarint, wireFixed64, wireBytes, wireFixed32} {
			if err := c.skip(wire); err != nil {
				t.Fatalf("unexpected error skipping wire %d: %v", wire, err)
			}
		}
		if !c.done() {
			t.Fatalf("expected cursor exhausted, at %d of %d", c.pos, len(c.buf))
		}
	})

	t.Run("UnknownWireType", func(t *testing.T) {
		c := &cursor{buf: []byte{0x00}}

		if err := c.skip(3); !errors.Is(err, errUnknownWireType) {
			t.Fatalf("expected errUnknownWireType, got %v", err)
		}
	})

	t.Run("TruncatedFixedWidth", func(t *testing.T) {
		c := &cursor{buf: []byte{1, 2}}

		if err := c.skip(wireFixed64); !errors.Is(err, errTruncated) {
			t.Fatalf("expected errTruncated, got %v", err)
		}
	})
}
