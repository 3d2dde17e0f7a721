package ber

import "fmt"

// Tag class constants (bits 7-8 of the tag byte)
const (
	ClassUniversal       = 0x00 // 00xxxxxx
	ClassApplication     = 0x40 // 01xxxxxx
	ClassContextSpecific = 0x80 // 10xxxxxx
	ClassPrivate         = 0xC0 // 11xxxxxx
)

// Constructed flag (bit 6 of the tag byte)
const (
	TypePrimitive   = 0x00 // xx0xxxxx
	TypeConstructed = 0x20 // xx1xxxxx
)

// Universal tag numbers for primitive types
const (
	TagBoolean     = 0x01
	TagInteger     = 0x02
	TagBitString   = 0x03
	TagOctetString = 0x04
	TagNull        = 0x05
	TagOID         = 0x06
	TagEnumerated  = 0x0A
	TagUTF8String  = 0x0C
	TagSequence    = 0x10
	TagSet         = 0x11
)

// Length encoding constants
const (
	// LengthLongFormBit indicates long form length encoding (bit 8 set)
	LengthLongFormBit = 0x80
	// MaxShortFormLength is the maximum length encodable in short form (0-127)
	MaxShortFormLength = 127
	// MaxLengthOctets is the largest number of long form length octets accepted.
	MaxLengthOctets = 4
	// MaxTagOctets is the largest number of identifier octets accepted.
	MaxTagOctets = 4
)

// Tag holds the identifier octets of a TLV packed big-endian, so the common
// single-octet tags compare directly against their wire byte (0x30, 0x04...).
// High-tag-number form tags keep all of their octets.
type Tag uint32

// Frequently used complete identifiers.
const (
	// TagEndOfContents never appears on the wire here; the grammar engine
	// uses it to signal that a constructed value has been fully consumed.
	TagEndOfContents Tag = 0x00

	TagBooleanValue     Tag = ClassUniversal | TypePrimitive | TagBoolean
	TagIntegerValue     Tag = ClassUniversal | TypePrimitive | TagInteger
	TagOctetStringValue Tag = ClassUniversal | TypePrimitive | TagOctetString
	TagEnumeratedValue  Tag = ClassUniversal | TypePrimitive | TagEnumerated
	TagSequenceOf       Tag = ClassUniversal | TypeConstructed | TagSequence
	TagSetOf            Tag = ClassUniversal | TypeConstructed | TagSet
)

// NewTag builds a Tag from its class, constructed flag and number.
// Numbers above 30 use the high-tag-number form.
func NewTag(class, constructed, number int) Tag {
	if number <= 30 {
		return Tag(class | constructed | number)
	}
	t := Tag(class | constructed | 0x1F)
	var groups [5]byte
	n := 0
	for v := number; v > 0; v >>= 7 {
		groups[n] = byte(v & 0x7F)
		n++
	}
	for i := n - 1; i >= 0; i-- {
		b := groups[i]
		if i > 0 {
			b |= 0x80
		}
		t = t<<8 | Tag(b)
	}
	return t
}

// Application returns the [APPLICATION n] tag.
func Application(number int, constructed bool) Tag {
	if constructed {
		return NewTag(ClassApplication, TypeConstructed, number)
	}
	return NewTag(ClassApplication, TypePrimitive, number)
}

// Context returns the [n] context-specific tag.
func Context(number int, constructed bool) Tag {
	if constructed {
		return NewTag(ClassContextSpecific, TypeConstructed, number)
	}
	return NewTag(ClassContextSpecific, TypePrimitive, number)
}

// Size returns the number of identifier octets.
func (t Tag) Size() int {
	switch {
	case t <= 0xFF:
		return 1
	case t <= 0xFFFF:
		return 2
	case t <= 0xFFFFFF:
		return 3
	default:
		return 4
	}
}

// first returns the leading identifier octet.
func (t Tag) first() byte {
	return byte(t >> (8 * (t.Size() - 1)))
}

// Class returns the tag class bits.
func (t Tag) Class() int {
	return int(t.first() & 0xC0)
}

// Constructed reports whether the constructed bit is set.
func (t Tag) Constructed() bool {
	return t.first()&TypeConstructed != 0
}

// Number returns the tag number, decoding the high-tag-number form.
func (t Tag) Number() int {
	f := t.first()
	if f&0x1F != 0x1F {
		return int(f & 0x1F)
	}
	number := 0
	for i := t.Size() - 2; i >= 0; i-- {
		number = number<<7 | int(byte(t>>(8*i))&0x7F)
	}
	return number
}

// AppendTo appends the identifier octets to dst.
func (t Tag) AppendTo(dst []byte) []byte {
	for i := t.Size() - 1; i >= 0; i-- {
		dst = append(dst, byte(t>>(8*i)))
	}
	return dst
}

// String returns the tag in hexadecimal form.
func (t Tag) String() string {
	if t == TagEndOfContents {
		return "EOC"
	}
	return fmt.Sprintf("0x%02X", uint32(t))
}
