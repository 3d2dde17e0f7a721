// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
//
// This package provides the LDAPv3 message model, an incremental decoder
// that accepts input in arbitrary chunks, and a two-pass encoder.
//
// # Message Structure
//
// All LDAP messages follow the LDAPMessage envelope structure:
//
//	LDAPMessage ::= SEQUENCE {
//	    messageID       MessageID,
//	    protocolOp      CHOICE { ... },
//	    controls        [0] Controls OPTIONAL
//	}
//
// # Decoding
//
// A Container is created once per connection and fed every chunk read
// from the transport:
//
//	c := ldap.NewContainer(ldap.WithMaxMessageSize(1 << 20))
//	res, err := c.Decode(chunk)
//	for err == nil && res.Status == ldap.Complete {
//	    switch op := res.Message.Op.(type) {
//	    case *ldap.BindRequest:
//	        // handle bind request
//	    case *ldap.SearchRequest:
//	        // handle search request, op.Filter.String() gives (uid=alice)
//	    }
//	    res, err = c.Decode(nil)
//	}
//
// When the transport reaches end of stream, Finish reports a message that
// was cut short.
//
// # Encoding
//
// Encoding measures the message first and then writes it into a buffer of
// exactly the measured size:
//
//	enc, err := ldap.ComputeLength(msg)
//	buf := make([]byte, enc.Len())
//	n, err := enc.EncodeTo(buf)
//
// Encode does both steps and allocates the buffer.
//
// # Supported Operations
//
// The package supports all LDAPv3 protocol operations:
//
//   - Bind (APPLICATION 0, 1): Authentication
//   - Unbind (APPLICATION 2): Connection termination
//   - Search (APPLICATION 3, 4, 5, 19): Entry lookup
//   - Modify (APPLICATION 6, 7): Entry modification
//   - Add (APPLICATION 8, 9): Entry creation
//   - Delete (APPLICATION 10, 11): Entry removal
//   - ModifyDN (APPLICATION 12, 13): Entry rename and move
//   - Compare (APPLICATION 14, 15): Assertion check
//   - Abandon (APPLICATION 16): Operation cancellation
//   - Extended (APPLICATION 23, 24): Extended operations
//
// # Result Codes
//
// LDAP operations return standardized result codes defined in RFC 4511:
//
//	result := ldap.ResultSuccess            // Operation succeeded
//	result := ldap.ResultInvalidCredentials // Authentication failed
//	result := ldap.ResultNoSuchObject       // Entry not found
//
// Codes outside the known set are kept numerically.
package ldap
