// Package ber implements the ASN.1 BER (Basic Encoding Rules) subset used by
// LDAP as specified in ITU-T X.690.
//
// Only definite lengths are accepted. Lengths use at most four long form
// octets and identifiers at most four octets (high-tag-number form included).
//
// # Scanning
//
// Scanner reads one TLV at a time from a Cursor over the current network
// chunk. When the chunk ends in the middle of a TLV, Next returns
// ErrNeedMoreData and keeps the partial identifier, length or value; the next
// call with a fresh chunk resumes exactly where scanning stopped:
//
//	var s ber.Scanner
//	cur := ber.NewCursor(chunk)
//	for {
//	    tlv, err := s.Next(cur)
//	    if errors.Is(err, ber.ErrNeedMoreData) {
//	        break // wait for the next chunk
//	    }
//	    ...
//	}
//
// Constructed TLVs are returned as a header only; their children follow as
// separate TLVs. Primitive values are returned in TLV.Value, which is only
// valid until the next call to Next.
//
// # Encoding
//
// Encoder writes into a caller supplied buffer and fails with
// ErrBufferTooSmall instead of growing it. Callers compute lengths first:
//
//	buf := make([]byte, ber.TLVSize(ber.TagIntegerValue, ber.IntegerSize(42)))
//	enc := ber.NewEncoder(buf)
//	err := enc.WriteInteger(ber.TagIntegerValue, 42)
//
// # References
//
//   - ITU-T X.690: ASN.1 encoding rules
//   - RFC 4511: LDAP Protocol (uses BER encoding)
package ber
