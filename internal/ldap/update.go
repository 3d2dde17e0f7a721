// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

// ModifyOperation is the kind of change applied by a ModifyRequest.
type ModifyOperation int

// Modification operations per RFC 4511 Section 4.6 and RFC 4525
const (
	ModifyAdd       ModifyOperation = 0
	ModifyDelete    ModifyOperation = 1
	ModifyReplace   ModifyOperation = 2
	ModifyIncrement ModifyOperation = 3
)

// String returns the name of the operation.
func (o ModifyOperation) String() string {
	switch o {
	case ModifyAdd:
		return "add"
	case ModifyDelete:
		return "delete"
	case ModifyReplace:
		return "replace"
	case ModifyIncrement:
		return "increment"
	default:
		return "unknown"
	}
}

// Change is one element of a ModifyRequest.
//
//	change SEQUENCE {
//	    operation       ENUMERATED { add (0), delete (1), replace (2), ... },
//	    modification    PartialAttribute }
type Change struct {
	Operation    ModifyOperation
	Modification Attribute
}

// ModifyRequest represents an LDAP Modify Request.
//
//	ModifyRequest ::= [APPLICATION 6] SEQUENCE {
//	    object          LDAPDN,
//	    changes         SEQUENCE OF change }
type ModifyRequest struct {
	Object  string
	Changes []Change
}

// Type implements ProtocolOp.
func (*ModifyRequest) Type() OperationType { return ApplicationModifyRequest }

// AddRequest represents an LDAP Add Request.
//
//	AddRequest ::= [APPLICATION 8] SEQUENCE {
//	    entry           LDAPDN,
//	    attributes      AttributeList }
type AddRequest struct {
	Entry      string
	Attributes []Attribute
}

// Type implements ProtocolOp.
func (*AddRequest) Type() OperationType { return ApplicationAddRequest }

// DelRequest ::= [APPLICATION 10] LDAPDN
type DelRequest struct {
	DN string
}

// Type implements ProtocolOp.
func (*DelRequest) Type() OperationType { return ApplicationDelRequest }

// ModifyDNRequest represents an LDAP Modify DN Request.
//
//	ModifyDNRequest ::= [APPLICATION 12] SEQUENCE {
//	    entry           LDAPDN,
//	    newrdn          RelativeLDAPDN,
//	    deleteoldrdn    BOOLEAN,
//	    newSuperior     [0] LDAPDN OPTIONAL }
type ModifyDNRequest struct {
	Entry        string
	NewRDN       string
	DeleteOldRDN bool
	// NewSuperior is empty when absent
	NewSuperior string
}

// Type implements ProtocolOp.
func (*ModifyDNRequest) Type() OperationType { return ApplicationModifyDNRequest }

// CompareRequest represents an LDAP Compare Request.
//
//	CompareRequest ::= [APPLICATION 14] SEQUENCE {
//	    entry           LDAPDN,
//	    ava             AttributeValueAssertion }
type CompareRequest struct {
	Entry     string
	Attribute string
	Value     []byte
}

// Type implements ProtocolOp.
func (*CompareRequest) Type() OperationType { return ApplicationCompareRequest }

// ExtendedRequest represents an LDAP Extended Request.
//
//	ExtendedRequest ::= [APPLICATION 23] SEQUENCE {
//	    requestName      [0] LDAPOID,
//	    requestValue     [1] OCTET STRING OPTIONAL }
//
// The request name travels in the binary OBJECT IDENTIFIER form.
type ExtendedRequest struct {
	// Name is the dotted request OID
	Name string
	// Value is nil when absent
	Value []byte
}

// Type implements ProtocolOp.
func (*ExtendedRequest) Type() OperationType { return ApplicationExtendedRequest }
