package ber

// Encoder writes BER elements into a fixed buffer. It never grows the
// buffer: a write that does not fit fails with ErrBufferTooSmall and leaves
// the already written bytes untouched.
type Encoder struct {
	buf []byte
	pos int
}

// NewEncoder creates an encoder writing into buf.
func NewEncoder(buf []byte) *Encoder {
	return &Encoder{buf: buf}
}

// Bytes returns the bytes written so far.
func (e *Encoder) Bytes() []byte {
	return e.buf[:e.pos]
}

// Len returns the number of bytes written.
func (e *Encoder) Len() int {
	return e.pos
}

// Available returns the free space left in the buffer.
func (e *Encoder) Available() int {
	return len(e.buf) - e.pos
}

// Reset rewinds the encoder to the start of its buffer.
func (e *Encoder) Reset() {
	e.pos = 0
}

func (e *Encoder) reserve(n int) ([]byte, error) {
	if n > e.Available() {
		return nil, ErrBufferTooSmall
	}
	return e.buf[e.pos : e.pos : e.pos+n], nil
}

// WriteTag writes the identifier octets of tag.
func (e *Encoder) WriteTag(tag Tag) error {
	dst, err := e.reserve(tag.Size())
	if err != nil {
		return err
	}
	e.pos += len(tag.AppendTo(dst))
	return nil
}

// WriteLength writes a definite length, short form when possible.
func (e *Encoder) WriteLength(length int) error {
	if length < 0 {
		return ErrNegativeLength
	}
	size := LengthSize(length)
	dst, err := e.reserve(size)
	if err != nil {
		return err
	}
	if size == 1 {
		dst = append(dst, byte(length))
	} else {
		dst = append(dst, LengthLongFormBit|byte(size-1))
		for i := size - 2; i >= 0; i-- {
			dst = append(dst, byte(length>>(8*i)))
		}
	}
	e.pos += len(dst)
	return nil
}

// WriteHeader writes a tag followed by a length.
func (e *Encoder) WriteHeader(tag Tag, length int) error {
	if TLVSize(tag, length)-length > e.Available() {
		return ErrBufferTooSmall
	}
	if err := e.WriteTag(tag); err != nil {
		return err
	}
	return e.WriteLength(length)
}

// WriteRaw copies b into the buffer as is.
func (e *Encoder) WriteRaw(b []byte) error {
	if len(b) > e.Available() {
		return ErrBufferTooSmall
	}
	e.pos += copy(e.buf[e.pos:], b)
	return nil
}

// WriteOctetString writes a primitive element holding v.
func (e *Encoder) WriteOctetString(tag Tag, v []byte) error {
	if TLVSize(tag, len(v)) > e.Available() {
		return ErrBufferTooSmall
	}
	_ = e.WriteHeader(tag, len(v))
	return e.WriteRaw(v)
}

// WriteString writes a primitive element holding s.
func (e *Encoder) WriteString(tag Tag, s string) error {
	if TLVSize(tag, len(s)) > e.Available() {
		return ErrBufferTooSmall
	}
	_ = e.WriteHeader(tag, len(s))
	e.pos += copy(e.buf[e.pos:], s)
	return nil
}

// WriteInteger writes an INTEGER or ENUMERATED element.
func (e *Encoder) WriteInteger(tag Tag, n int64) error {
	size := IntegerSize(n)
	if TLVSize(tag, size) > e.Available() {
		return ErrBufferTooSmall
	}
	_ = e.WriteHeader(tag, size)
	e.pos += len(AppendInteger(e.buf[e.pos:e.pos], n))
	return nil
}

// WriteBoolean writes a BOOLEAN element; true is encoded as 0xFF.
func (e *Encoder) WriteBoolean(tag Tag, v bool) error {
	if TLVSize(tag, 1) > e.Available() {
		return ErrBufferTooSmall
	}
	_ = e.WriteHeader(tag, 1)
	if v {
		e.buf[e.pos] = 0xFF
	} else {
		e.buf[e.pos] = 0x00
	}
	e.pos++
	return nil
}

// WriteOID writes the binary form of a dotted OID under tag.
func (e *Encoder) WriteOID(tag Tag, oid string) error {
	size, err := OIDSize(oid)
	if err != nil {
		return err
	}
	if TLVSize(tag, size) > e.Available() {
		return ErrBufferTooSmall
	}
	_ = e.WriteHeader(tag, size)
	out, _ := AppendOID(e.buf[e.pos:e.pos], oid)
	e.pos += len(out)
	return nil
}
