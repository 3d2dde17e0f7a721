package ber

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseInteger decodes big-endian two's complement content octets.
// Between 1 and 8 octets are accepted.
func ParseInteger(v []byte) (int64, error) {
	if len(v) == 0 {
		return 0, fmt.Errorf("%w: empty integer", ErrInvalidInteger)
	}
	if len(v) > 8 {
		return 0, fmt.Errorf("%w: %d octets", ErrInvalidInteger, len(v))
	}
	var n int64
	if v[0]&0x80 != 0 {
		n = -1
	}
	for _, b := range v {
		n = n<<8 | int64(b)
	}
	return n, nil
}

// ParseBoolean decodes a BOOLEAN. Any non-zero octet is true.
func ParseBoolean(v []byte) (bool, error) {
	if len(v) != 1 {
		return false, fmt.Errorf("%w: length %d", ErrInvalidBoolean, len(v))
	}
	return v[0] != 0x00, nil
}

// IntegerSize returns the number of content octets of the minimal two's
// complement encoding of n.
func IntegerSize(n int64) int {
	size := 1
	for n > 127 || n < -128 {
		size++
		n >>= 8
	}
	return size
}

// AppendInteger appends the minimal two's complement content octets of n.
func AppendInteger(dst []byte, n int64) []byte {
	for i := IntegerSize(n) - 1; i >= 0; i-- {
		dst = append(dst, byte(n>>(8*i)))
	}
	return dst
}

// LengthSize returns the number of octets needed to encode length.
func LengthSize(length int) int {
	if length <= MaxShortFormLength {
		return 1
	}
	size := 1
	for l := length; l > 0; l >>= 8 {
		size++
	}
	return size
}

// TLVSize returns the full encoded size of an element with the given tag
// and value length.
func TLVSize(tag Tag, valueLen int) int {
	return tag.Size() + LengthSize(valueLen) + valueLen
}

// ParseOID converts the content octets of an OBJECT IDENTIFIER to its
// dotted form.
func ParseOID(v []byte) (string, error) {
	if len(v) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalidOID)
	}
	var sb strings.Builder
	var arc uint64
	first := true
	for i, b := range v {
		if arc == 0 && b == 0x80 {
			return "", fmt.Errorf("%w: non-minimal arc at octet %d", ErrInvalidOID, i)
		}
		if arc > (1<<57)-1 {
			return "", fmt.Errorf("%w: arc overflow", ErrInvalidOID)
		}
		arc = arc<<7 | uint64(b&0x7F)
		if b&0x80 != 0 {
			continue
		}
		if first {
			switch {
			case arc < 40:
				sb.WriteString("0.")
			case arc < 80:
				sb.WriteString("1.")
				arc -= 40
			default:
				sb.WriteString("2.")
				arc -= 80
			}
			first = false
		} else {
			sb.WriteByte('.')
		}
		sb.WriteString(strconv.FormatUint(arc, 10))
		arc = 0
	}
	if v[len(v)-1]&0x80 != 0 {
		return "", fmt.Errorf("%w: truncated arc", ErrInvalidOID)
	}
	return sb.String(), nil
}

// parseArcs splits a dotted OID into its arcs, folding the first two.
func parseArcs(oid string) ([]uint64, error) {
	parts := strings.Split(oid, ".")
	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOID, oid)
	}
	arcs := make([]uint64, 0, len(parts)-1)
	var first uint64
	for i, p := range parts {
		if p == "" || (len(p) > 1 && p[0] == '0') {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOID, oid)
		}
		n, err := strconv.ParseUint(p, 10, 63)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidOID, oid)
		}
		switch i {
		case 0:
			if n > 2 {
				return nil, fmt.Errorf("%w: first arc %d", ErrInvalidOID, n)
			}
			first = n
		case 1:
			if first < 2 && n > 39 {
				return nil, fmt.Errorf("%w: second arc %d", ErrInvalidOID, n)
			}
			arcs = append(arcs, first*40+n)
		default:
			arcs = append(arcs, n)
		}
	}
	return arcs, nil
}

func arcSize(arc uint64) int {
	size := 1
	for arc >>= 7; arc > 0; arc >>= 7 {
		size++
	}
	return size
}

// OIDSize returns the content length of the binary form of a dotted OID.
func OIDSize(oid string) (int, error) {
	arcs, err := parseArcs(oid)
	if err != nil {
		return 0, err
	}
	size := 0
	for _, a := range arcs {
		size += arcSize(a)
	}
	return size, nil
}

// AppendOID appends the binary form of a dotted OID.
func AppendOID(dst []byte, oid string) ([]byte, error) {
	arcs, err := parseArcs(oid)
	if err != nil {
		return dst, err
	}
	for _, a := range arcs {
		for i := arcSize(a) - 1; i >= 0; i-- {
			b := byte(a>>(7*i)) & 0x7F
			if i > 0 {
				b |= 0x80
			}
			dst = append(dst, b)
		}
	}
	return dst, nil
}
