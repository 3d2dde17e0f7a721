// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

// AuthMethod identifies the authentication choice of a BindRequest.
type AuthMethod int

// Authentication choices per RFC 4511 Section 4.2
const (
	// AuthSimple is simple authentication [0]
	AuthSimple AuthMethod = 0
	// AuthSASL is SASL authentication [3]
	AuthSASL AuthMethod = 3
)

// String returns the name of the authentication method.
func (a AuthMethod) String() string {
	switch a {
	case AuthSimple:
		return "simple"
	case AuthSASL:
		return "sasl"
	default:
		return "unknown"
	}
}

// SASLCredentials holds the SASL mechanism and optional credentials.
//
//	SaslCredentials ::= SEQUENCE {
//	    mechanism               LDAPString,
//	    credentials             OCTET STRING OPTIONAL }
type SASLCredentials struct {
	Mechanism string
	// Credentials is nil when absent
	Credentials []byte
}

// BindRequest represents an LDAP Bind Request.
//
//	BindRequest ::= [APPLICATION 0] SEQUENCE {
//	    version                 INTEGER (1 ..  127),
//	    name                    LDAPDN,
//	    authentication          AuthenticationChoice }
type BindRequest struct {
	// Version is the LDAP protocol version (1..127, normally 3)
	Version int
	// Name is the DN of the entry to bind as
	Name string
	// AuthMethod selects SimplePassword or SASL
	AuthMethod AuthMethod
	// SimplePassword is used when AuthMethod is AuthSimple
	SimplePassword []byte
	// SASL is used when AuthMethod is AuthSASL
	SASL *SASLCredentials
}

// Type implements ProtocolOp.
func (*BindRequest) Type() OperationType { return ApplicationBindRequest }

// IsAnonymous returns true if this is an anonymous simple bind.
func (r *BindRequest) IsAnonymous() bool {
	return r.AuthMethod == AuthSimple && r.Name == "" && len(r.SimplePassword) == 0
}

// UnbindRequest ::= [APPLICATION 2] NULL
type UnbindRequest struct{}

// Type implements ProtocolOp.
func (*UnbindRequest) Type() OperationType { return ApplicationUnbindRequest }

// AbandonRequest ::= [APPLICATION 16] MessageID
type AbandonRequest struct {
	MessageID int
}

// Type implements ProtocolOp.
func (*AbandonRequest) Type() OperationType { return ApplicationAbandonRequest }
