package ber

import "fmt"

// Cursor is a read position over one chunk of input.
type Cursor struct {
	buf []byte
	pos int
}

// NewCursor creates a cursor at the start of buf.
func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Reset points the cursor at the start of a new chunk.
func (c *Cursor) Reset(buf []byte) {
	c.buf = buf
	c.pos = 0
}

// Pos returns the number of bytes consumed from the current chunk.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

// Rest returns the unread bytes without consuming them.
func (c *Cursor) Rest() []byte {
	return c.buf[c.pos:]
}

func (c *Cursor) readByte() (byte, bool) {
	if c.pos >= len(c.buf) {
		return 0, false
	}
	b := c.buf[c.pos]
	c.pos++
	return b, true
}

// TLV is one scanned element. For constructed elements only the header has
// been consumed and Value is nil; the children are scanned next.
type TLV struct {
	Tag       Tag
	Length    int    // Length of the value in bytes
	HeaderLen int    // Identifier plus length octets
	Value     []byte // Primitive content, valid until the next Scanner call
}

// Constructed reports whether the TLV carries nested elements.
func (t *TLV) Constructed() bool {
	return t.Tag.Constructed()
}

// Size returns the full encoded size of the TLV.
func (t *TLV) Size() int {
	return t.HeaderLen + t.Length
}

type scanPhase uint8

const (
	phaseTag scanPhase = iota
	phaseLength
	phaseValue
)

// Scanner reads TLVs incrementally. It keeps whatever part of the current
// TLV has already been consumed so that scanning can resume on the next
// chunk without re-reading any byte.
//
// A Scanner is not safe for concurrent use.
type Scanner struct {
	// MaxLength bounds any single length value. Zero means no limit beyond
	// the four octet long form.
	MaxLength int

	phase scanPhase

	tag       Tag
	tagOctets int
	tagDone   bool

	length    int
	lenOctets int // octets of the length field read so far
	lenWant   int // long form octets still expected, -1 before the first octet
	lenDone   bool

	value   []byte
	accum   bool
	current TLV
}

// Reset discards any partial TLV.
func (s *Scanner) Reset() {
	value := s.value[:0]
	*s = Scanner{MaxLength: s.MaxLength, value: value}
	s.lenWant = -1
}

// Partial reports whether some bytes of a TLV have been consumed without
// the TLV being complete.
func (s *Scanner) Partial() bool {
	return s.phase != phaseTag || s.tagOctets > 0
}

// HeaderLen returns the identifier and length octets consumed so far for
// the current TLV.
func (s *Scanner) HeaderLen() int {
	return s.tagOctets + s.lenOctets
}

// ReadTag reads the identifier octets of the next TLV.
func (s *Scanner) ReadTag(cur *Cursor) (Tag, error) {
	if s.tagDone {
		return s.tag, nil
	}
	for {
		b, ok := cur.readByte()
		if !ok {
			return 0, ErrNeedMoreData
		}
		if s.tagOctets == 0 {
			if b == 0x00 {
				return 0, fmt.Errorf("%w: end-of-contents identifier", ErrInvalidTag)
			}
			s.tag = Tag(b)
			s.tagOctets = 1
			if b&0x1F != 0x1F {
				s.tagDone = true
				return s.tag, nil
			}
			continue
		}
		if s.tagOctets == MaxTagOctets {
			return 0, fmt.Errorf("%w: more than %d identifier octets", ErrInvalidTag, MaxTagOctets)
		}
		if s.tagOctets == 1 && b == 0x80 {
			return 0, fmt.Errorf("%w: non-minimal tag number", ErrInvalidTag)
		}
		s.tag = s.tag<<8 | Tag(b)
		s.tagOctets++
		if b&0x80 == 0 {
			s.tagDone = true
			return s.tag, nil
		}
	}
}

// ReadLength reads the length octets of the current TLV.
func (s *Scanner) ReadLength(cur *Cursor) (int, error) {
	if s.lenDone {
		return s.length, nil
	}
	if s.lenOctets == 0 {
		s.lenWant = -1
	}
	for {
		b, ok := cur.readByte()
		if !ok {
			return 0, ErrNeedMoreData
		}
		s.lenOctets++
		if s.lenWant < 0 {
			switch {
			case b&LengthLongFormBit == 0:
				s.length = int(b)
				return s.finishLength()
			case b == LengthLongFormBit:
				return 0, ErrIndefiniteLength
			}
			s.lenWant = int(b & 0x7F)
			if s.lenWant > MaxLengthOctets {
				return 0, fmt.Errorf("%w: %d length octets", ErrInvalidLength, s.lenWant)
			}
			s.length = 0
			continue
		}
		s.length = s.length<<8 | int(b)
		s.lenWant--
		if s.lenWant == 0 {
			return s.finishLength()
		}
	}
}

func (s *Scanner) finishLength() (int, error) {
	if s.MaxLength > 0 && s.length > s.MaxLength {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrLengthOverflow, s.length, s.MaxLength)
	}
	s.lenDone = true
	return s.length, nil
}

// ReadValue reads n value bytes. The result aliases the chunk when the whole
// value is available in it, otherwise it is assembled in an internal buffer
// that is reused by later calls.
func (s *Scanner) ReadValue(cur *Cursor, n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	if !s.accum {
		if cur.Remaining() >= n {
			v := cur.buf[cur.pos : cur.pos+n]
			cur.pos += n
			return v, nil
		}
		s.accum = true
		s.value = s.value[:0]
	}
	take := n - len(s.value)
	if r := cur.Remaining(); r < take {
		take = r
	}
	s.value = append(s.value, cur.buf[cur.pos:cur.pos+take]...)
	cur.pos += take
	if len(s.value) < n {
		return nil, ErrNeedMoreData
	}
	return s.value, nil
}

// Next scans the next TLV. It returns ErrNeedMoreData when the cursor is
// exhausted first; the returned TLV is owned by the scanner and valid until
// the next call.
func (s *Scanner) Next(cur *Cursor) (*TLV, error) {
	for {
		switch s.phase {
		case phaseTag:
			if _, err := s.ReadTag(cur); err != nil {
				return nil, err
			}
			s.phase = phaseLength
		case phaseLength:
			if _, err := s.ReadLength(cur); err != nil {
				return nil, err
			}
			if s.tag.Constructed() {
				return s.emit(nil), nil
			}
			s.phase = phaseValue
		case phaseValue:
			v, err := s.ReadValue(cur, s.length)
			if err != nil {
				return nil, err
			}
			return s.emit(v), nil
		}
	}
}

func (s *Scanner) emit(value []byte) *TLV {
	s.current = TLV{
		Tag:       s.tag,
		Length:    s.length,
		HeaderLen: s.tagOctets + s.lenOctets,
		Value:     value,
	}
	s.phase = phaseTag
	s.tag, s.tagOctets, s.tagDone = 0, 0, false
	s.length, s.lenOctets, s.lenWant, s.lenDone = 0, 0, -1, false
	s.accum = false
	return &s.current
}
