// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"errors"
	"fmt"

	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
)

// LDAP protocol operation tags (APPLICATION class)
// Per RFC 4511 Section 4.2
const (
	ApplicationBindRequest           = 0  // [APPLICATION 0]
	ApplicationBindResponse          = 1  // [APPLICATION 1]
	ApplicationUnbindRequest         = 2  // [APPLICATION 2]
	ApplicationSearchRequest         = 3  // [APPLICATION 3]
	ApplicationSearchResultEntry     = 4  // [APPLICATION 4]
	ApplicationSearchResultDone      = 5  // [APPLICATION 5]
	ApplicationModifyRequest         = 6  // [APPLICATION 6]
	ApplicationModifyResponse        = 7  // [APPLICATION 7]
	ApplicationAddRequest            = 8  // [APPLICATION 8]
	ApplicationAddResponse           = 9  // [APPLICATION 9]
	ApplicationDelRequest            = 10 // [APPLICATION 10]
	ApplicationDelResponse           = 11 // [APPLICATION 11]
	ApplicationModifyDNRequest       = 12 // [APPLICATION 12]
	ApplicationModifyDNResponse      = 13 // [APPLICATION 13]
	ApplicationCompareRequest        = 14 // [APPLICATION 14]
	ApplicationCompareResponse       = 15 // [APPLICATION 15]
	ApplicationAbandonRequest        = 16 // [APPLICATION 16]
	ApplicationSearchResultReference = 19 // [APPLICATION 19]
	ApplicationExtendedRequest       = 23 // [APPLICATION 23]
	ApplicationExtendedResponse      = 24 // [APPLICATION 24]
)

// Wire identifiers of the protocol operations.
const (
	tagBindRequest           = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationBindRequest)
	tagBindResponse          = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationBindResponse)
	tagUnbindRequest         = ber.Tag(ber.ClassApplication | ber.TypePrimitive | ApplicationUnbindRequest)
	tagSearchRequest         = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationSearchRequest)
	tagSearchResultEntry     = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationSearchResultEntry)
	tagSearchResultDone      = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationSearchResultDone)
	tagModifyRequest         = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationModifyRequest)
	tagModifyResponse        = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationModifyResponse)
	tagAddRequest            = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationAddRequest)
	tagAddResponse           = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationAddResponse)
	tagDelRequest            = ber.Tag(ber.ClassApplication | ber.TypePrimitive | ApplicationDelRequest)
	tagDelResponse           = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationDelResponse)
	tagModifyDNRequest       = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationModifyDNRequest)
	tagModifyDNResponse      = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationModifyDNResponse)
	tagCompareRequest        = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationCompareRequest)
	tagCompareResponse       = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationCompareResponse)
	tagAbandonRequest        = ber.Tag(ber.ClassApplication | ber.TypePrimitive | ApplicationAbandonRequest)
	tagSearchResultReference = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationSearchResultReference)
	tagExtendedRequest       = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationExtendedRequest)
	tagExtendedResponse      = ber.Tag(ber.ClassApplication | ber.TypeConstructed | ApplicationExtendedResponse)
)

// Context-specific identifiers used inside the operations.
const (
	tagControls         = ber.Tag(ber.ClassContextSpecific | ber.TypeConstructed | 0)
	tagReferral         = ber.Tag(ber.ClassContextSpecific | ber.TypeConstructed | 3)
	tagAuthSimple       = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 0)
	tagAuthSASL         = ber.Tag(ber.ClassContextSpecific | ber.TypeConstructed | 3)
	tagServerSASLCreds  = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 7)
	tagNewSuperior      = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 0)
	tagRequestName      = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 0)
	tagRequestValue     = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 1)
	tagResponseName     = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 10)
	tagResponseValue    = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 11)
	tagGracefulDelay    = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 0)
	tagSubstringInitial = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | SubstringInitial)
	tagSubstringAny     = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | SubstringAny)
	tagSubstringFinal   = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | SubstringFinal)
	tagExtMatchingRule  = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 1)
	tagExtType          = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 2)
	tagExtMatchValue    = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 3)
	tagExtDNAttributes  = ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | 4)
)

// OperationType represents the type of LDAP operation
type OperationType int

var operationNames = map[OperationType]string{
	ApplicationBindRequest:           "BindRequest",
	ApplicationBindResponse:          "BindResponse",
	ApplicationUnbindRequest:         "UnbindRequest",
	ApplicationSearchRequest:         "SearchRequest",
	ApplicationSearchResultEntry:     "SearchResultEntry",
	ApplicationSearchResultDone:      "SearchResultDone",
	ApplicationModifyRequest:         "ModifyRequest",
	ApplicationModifyResponse:        "ModifyResponse",
	ApplicationAddRequest:            "AddRequest",
	ApplicationAddResponse:           "AddResponse",
	ApplicationDelRequest:            "DelRequest",
	ApplicationDelResponse:           "DelResponse",
	ApplicationModifyDNRequest:       "ModifyDNRequest",
	ApplicationModifyDNResponse:      "ModifyDNResponse",
	ApplicationCompareRequest:        "CompareRequest",
	ApplicationCompareResponse:       "CompareResponse",
	ApplicationAbandonRequest:        "AbandonRequest",
	ApplicationSearchResultReference: "SearchResultReference",
	ApplicationExtendedRequest:       "ExtendedRequest",
	ApplicationExtendedResponse:      "ExtendedResponse",
}

// String returns the string representation of the operation type
func (o OperationType) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(o))
}

// MaxMessageID is the maximum valid message ID per RFC 4511
// MessageID ::= INTEGER (0 .. maxInt)
// maxInt INTEGER ::= 2147483647 -- (2^^31 - 1)
const MaxMessageID = 2147483647

// MinMessageID is the minimum valid message ID
const MinMessageID = 0

// Decoding errors
var (
	// ErrTruncatedInput is returned when the stream ends inside a message.
	ErrTruncatedInput = errors.New("ldap: input ended inside a message")

	// ErrUnrecognizedFilterChoice is returned for a filter tag that is not
	// one of the Filter CHOICE alternatives.
	ErrUnrecognizedFilterChoice = errors.New("ldap: unrecognized filter choice")

	// ErrEmptySubstrings is returned for a substrings filter without any
	// initial, any or final component.
	ErrEmptySubstrings = errors.New("ldap: substrings filter without components")

	// ErrInvalidValue is returned when a field is well formed BER but its
	// value is outside the range LDAP allows.
	ErrInvalidValue = errors.New("ldap: invalid field value")

	// ErrMessageTooLarge is returned when a message exceeds the configured size.
	ErrMessageTooLarge = errors.New("ldap: message too large")
)

// Encoding errors
var (
	// ErrMissingOperation is returned when a message has no protocol operation.
	ErrMissingOperation = errors.New("ldap: missing protocol operation")

	// ErrGraphMutated is returned when a message changed between computing
	// its length and encoding it.
	ErrGraphMutated = errors.New("ldap: message changed after its length was computed")
)

// DecodeError reports where in a message decoding failed.
type DecodeError struct {
	// Offset of the offending element from the first byte of the message
	Offset int64
	Err    error
}

// Error implements the error interface
func (e *DecodeError) Error() string {
	return fmt.Sprintf("ldap: decode error at offset %d: %v", e.Offset, e.Err)
}

// Unwrap returns the underlying error
func (e *DecodeError) Unwrap() error {
	return e.Err
}

func invalidValue(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidValue, fmt.Sprintf(format, args...))
}
