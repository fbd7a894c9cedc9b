package migration

import "errors"

// Wire types of the length-delimited binary payload format.
const (
	wireVarint  = 0
	wireFixed64 = 1
	wireBytes   = 2
	wireFixed32 = 5
)

// maxVarintGroups bounds a varint to 10 seven-bit groups so corrupt input
// cannot loop forever.
const maxVarintGroups = 10

var (
	// errTruncated indicates the cursor ran past the end of the buffer.
	errTruncated = errors.New("migration: payload truncated")

	// errVarintOverflow indicates a varint had no terminating byte within bounds.
	errVarintOverflow = errors.New("migration: varint overflow")

	// errUnknownWireType indicates a tag carried an unskippable wire type.
	errUnknownWireType = errors.New("migration: unknown wire type")
)

// cursor advances an index over an immutable byte buffer. All read failures
// are plain errors; the caller truncates the current record and moves on.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) done() bool {
	return c.pos >= len(c.buf)
}

// readVarint consumes 7-bit groups little-endian, the high bit of each byte
// signaling continuation.
func (c *cursor) readVarint() (uint64, error) {
	var value uint64

	for group := 0; group < maxVarintGroups; group++ {
		if c.pos >= len(c.buf) {
			return 0, errTruncated
		}

		b := c.buf[c.pos]
		c.pos++

		value |= uint64(b&0x7f) << (7 * group)
		if b&0x80 == 0 {
			return value, nil
		}
	}

	return 0, errVarintOverflow
}

// readTag splits the next varint into a field number and a wire type.
func (c *cursor) readTag() (field int, wire int, err error) {
	tag, err := c.readVarint()
	if err != nil {
		return 0, 0, err
	}

	return int(tag >> 3), int(tag & 0x7), nil
}

// readBytes reads a length-delimited field: a length varint followed by that
// many raw bytes. A declared length past the end of the buffer is truncation.
func (c *cursor) readBytes() ([]byte, error) {
	length, err := c.readVarint()
	if err != nil {
		return nil, err
	}

	if length > uint64(len(c.buf)-c.pos) {
		return nil, errTruncated
	}

	out := c.buf[c.pos : c.pos+int(length)]
	c.pos += int(length)

	return out, nil
}

// skip advances past one field's value according to its wire type, so unknown
// fields never abort the parse.
func (c *cursor) skip(wire int) error {
	switch wire {
	case wireVarint:
		_, err := c.readVarint()
		return err

	case wireFixed64:
		return c.skipN(8)

	case wireBytes:
		_, err := c.readBytes()
		return err

	case wireFixed32:
		return c.skipN(4)

	default:
		return errUnknownWireType
	}
}

func (c *cursor) skipN(n int) error {
	if n > len(c.buf)-c.pos {
		return errTruncated
	}
	c.pos += n

	return nil
}
