// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

// ProtocolOp is one of the LDAP protocol operations. The set of
// implementations is closed: only the operation types of this package
// satisfy it.
type ProtocolOp interface {
	// Type returns the APPLICATION tag number of the operation.
	Type() OperationType

	encode(e emitter)
}

// Response is a protocol operation that carries an LDAPResult.
type Response interface {
	ProtocolOp
	Result() *LDAPResult
}

// Message represents an LDAP protocol message envelope.
// Per RFC 4511 Section 4.1.1:
//
//	LDAPMessage ::= SEQUENCE {
//	    messageID       MessageID,
//	    protocolOp      CHOICE { ... },
//	    controls        [0] Controls OPTIONAL }
type Message struct {
	// MessageID uniquely identifies the message within a connection
	MessageID int
	// Op is the protocol operation
	Op ProtocolOp
	// Controls is nil when the controls element is absent
	Controls []Control
}

// Control represents an LDAP control as defined in RFC 4511 Section 4.1.11
//
//	Control ::= SEQUENCE {
//	    controlType             LDAPOID,
//	    criticality             BOOLEAN DEFAULT FALSE,
//	    controlValue            OCTET STRING OPTIONAL }
type Control struct {
	// OID is the control type
	OID string
	// Criticality indicates whether the control is critical
	Criticality bool
	// Value is nil when the control has no value
	Value []byte
}

// OperationType returns the type of operation in this message
func (m *Message) OperationType() OperationType {
	if m.Op == nil {
		return -1
	}
	return m.Op.Type()
}

// Control returns the first control with the given OID.
func (m *Message) Control(oid string) (*Control, bool) {
	for i := range m.Controls {
		if m.Controls[i].OID == oid {
			return &m.Controls[i], true
		}
	}
	return nil, false
}
