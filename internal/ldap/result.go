// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

// LDAPResult represents the common result structure used in most LDAP responses.
// Per RFC 4511 Section 4.1.9:
//
//	LDAPResult ::= SEQUENCE {
//	    resultCode         ENUMERATED { ... },
//	    matchedDN          LDAPDN,
//	    diagnosticMessage  LDAPString,
//	    referral           [3] Referral OPTIONAL }
type LDAPResult struct {
	// ResultCode indicates the outcome of the operation
	ResultCode ResultCode
	// MatchedDN is the DN of the last entry used in finding the target entry
	MatchedDN string
	// DiagnosticMessage contains additional diagnostic information
	DiagnosticMessage string
	// Referral contains referral URLs; nil or empty when absent
	Referral []string
}

// Result returns the embedded result.
func (r *LDAPResult) Result() *LDAPResult {
	return r
}

// NewSuccessResult creates a successful LDAPResult
func NewSuccessResult() LDAPResult {
	return LDAPResult{ResultCode: ResultSuccess}
}

// NewErrorResult creates an LDAPResult with the given error code and message
func NewErrorResult(code ResultCode, message string) LDAPResult {
	return LDAPResult{ResultCode: code, DiagnosticMessage: message}
}

// BindResponse represents an LDAP Bind Response.
//
//	BindResponse ::= [APPLICATION 1] SEQUENCE {
//	    COMPONENTS OF LDAPResult,
//	    serverSaslCreds    [7] OCTET STRING OPTIONAL }
type BindResponse struct {
	LDAPResult
	// ServerSASLCreds is nil when absent
	ServerSASLCreds []byte
}

// Type implements ProtocolOp.
func (*BindResponse) Type() OperationType { return ApplicationBindResponse }

// SearchResultDone ::= [APPLICATION 5] LDAPResult
type SearchResultDone struct{ LDAPResult }

// Type implements ProtocolOp.
func (*SearchResultDone) Type() OperationType { return ApplicationSearchResultDone }

// ModifyResponse ::= [APPLICATION 7] LDAPResult
type ModifyResponse struct{ LDAPResult }

// Type implements ProtocolOp.
func (*ModifyResponse) Type() OperationType { return ApplicationModifyResponse }

// AddResponse ::= [APPLICATION 9] LDAPResult
type AddResponse struct{ LDAPResult }

// Type implements ProtocolOp.
func (*AddResponse) Type() OperationType { return ApplicationAddResponse }

// DelResponse ::= [APPLICATION 11] LDAPResult
type DelResponse struct{ LDAPResult }

// Type implements ProtocolOp.
func (*DelResponse) Type() OperationType { return ApplicationDelResponse }

// ModifyDNResponse ::= [APPLICATION 13] LDAPResult
type ModifyDNResponse struct{ LDAPResult }

// Type implements ProtocolOp.
func (*ModifyDNResponse) Type() OperationType { return ApplicationModifyDNResponse }

// CompareResponse ::= [APPLICATION 15] LDAPResult
type CompareResponse struct{ LDAPResult }

// Type implements ProtocolOp.
func (*CompareResponse) Type() OperationType { return ApplicationCompareResponse }

// ExtendedResponse represents an LDAP Extended Response.
//
//	ExtendedResponse ::= [APPLICATION 24] SEQUENCE {
//	    COMPONENTS OF LDAPResult,
//	    responseName     [10] LDAPOID OPTIONAL,
//	    responseValue    [11] OCTET STRING OPTIONAL }
//
// The response name travels in the binary OBJECT IDENTIFIER form.
type ExtendedResponse struct {
	LDAPResult
	// Name is the dotted response OID, empty when absent
	Name string
	// Value is nil when absent
	Value []byte
}

// Type implements ProtocolOp.
func (*ExtendedResponse) Type() OperationType { return ApplicationExtendedResponse }

// Attribute is an attribute description with its values. It serves both
// Attribute and PartialAttribute of RFC 4511 Section 4.1.7.
//
//	PartialAttribute ::= SEQUENCE {
//	    type       AttributeDescription,
//	    vals       SET OF value AttributeValue }
type Attribute struct {
	Type   string
	Values [][]byte
}

// SearchResultEntry represents a search result entry.
//
//	SearchResultEntry ::= [APPLICATION 4] SEQUENCE {
//	    objectName      LDAPDN,
//	    attributes      PartialAttributeList }
type SearchResultEntry struct {
	ObjectName string
	Attributes []Attribute
}

// Type implements ProtocolOp.
func (*SearchResultEntry) Type() OperationType { return ApplicationSearchResultEntry }

// SearchResultReference ::= [APPLICATION 19] SEQUENCE SIZE (1..MAX) OF uri URI
type SearchResultReference struct {
	URIs []string
}

// Type implements ProtocolOp.
func (*SearchResultReference) Type() OperationType { return ApplicationSearchResultReference }
