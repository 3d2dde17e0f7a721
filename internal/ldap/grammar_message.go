// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"math"

	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
	"github.com/KilimcininKorOglu/ldapwire/internal/ber/grammar"
)

// action is the transition action type of every LDAP grammar.
type action = grammar.Action[*Container]

func newGrammar(name string) *grammar.Builder[*Container] {
	return grammar.NewBuilder[*Container](name, 0)
}

// LDAPMessage envelope states
const (
	msgStart grammar.State = iota
	msgSequence
	msgID
	msgOp
	msgControls
	msgEnd
)

// messageGrammar is the root grammar of the decoder.
var messageGrammar = func() *grammar.Grammar[*Container] {
	b := newGrammar("LDAPMessage").
		On(msgStart, ber.TagSequenceOf, msgSequence, initMessage).
		On(msgSequence, ber.TagIntegerValue, msgID, storeMessageID).
		Enter(msgOp, tagControls, controlsGrammar, msgControls).
		On(msgOp, ber.TagEndOfContents, msgEnd, nil).
		On(msgControls, ber.TagEndOfContents, msgEnd, nil).
		Exit(msgEnd)
	for tag, g := range operationGrammars() {
		b.Enter(msgID, tag, g, msgOp)
	}
	return b.Build()
}()

// operationGrammars maps each protocolOp identifier to its grammar.
func operationGrammars() map[ber.Tag]*grammar.Grammar[*Container] {
	return map[ber.Tag]*grammar.Grammar[*Container]{
		tagBindRequest:           bindRequestGrammar,
		tagBindResponse:          bindResponseGrammar,
		tagUnbindRequest:         unbindRequestGrammar,
		tagSearchRequest:         searchRequestGrammar,
		tagSearchResultEntry:     searchResultEntryGrammar,
		tagSearchResultReference: searchResultReferenceGrammar,
		tagSearchResultDone:      searchResultDoneGrammar,
		tagModifyRequest:         modifyRequestGrammar,
		tagModifyResponse:        modifyResponseGrammar,
		tagAddRequest:            addRequestGrammar,
		tagAddResponse:           addResponseGrammar,
		tagDelRequest:            delRequestGrammar,
		tagDelResponse:           delResponseGrammar,
		tagModifyDNRequest:       modifyDNRequestGrammar,
		tagModifyDNResponse:      modifyDNResponseGrammar,
		tagCompareRequest:        compareRequestGrammar,
		tagCompareResponse:       compareResponseGrammar,
		tagAbandonRequest:        abandonRequestGrammar,
		tagExtendedRequest:       extendedRequestGrammar,
		tagExtendedResponse:      extendedResponseGrammar,
	}
}

func initMessage(c *Container, tlv *ber.TLV) error {
	if c.maxSize > 0 && tlv.Size() > c.maxSize {
		return invalidSize(tlv.Size(), c.maxSize)
	}
	c.msg = &Message{}
	return nil
}

func storeMessageID(c *Container, tlv *ber.TLV) error {
	id, err := parseInt(tlv, MinMessageID, MaxMessageID, "message ID")
	c.msg.MessageID = id
	return err
}

// Controls states
const (
	ctlsStart grammar.State = iota
	ctlsOpen
	ctlsEnd
)

var controlsGrammar = newGrammar("Controls").
	On(ctlsStart, tagControls, ctlsOpen, func(c *Container, _ *ber.TLV) error {
		c.msg.Controls = []Control{}
		return nil
	}).
	Enter(ctlsOpen, ber.TagSequenceOf, controlGrammar, ctlsOpen).
	On(ctlsOpen, ber.TagEndOfContents, ctlsEnd, nil).
	Exit(ctlsEnd).
	Build()

// Control states
const (
	ctlStart grammar.State = iota
	ctlSequence
	ctlType
	ctlCriticality
	ctlValue
	ctlEnd
)

var controlGrammar = newGrammar("Control").
	On(ctlStart, ber.TagSequenceOf, ctlSequence, func(c *Container, _ *ber.TLV) error {
		c.msg.Controls = append(c.msg.Controls, Control{})
		return nil
	}).
	On(ctlSequence, ber.TagOctetStringValue, ctlType, func(c *Container, tlv *ber.TLV) error {
		currentControl(c).OID = string(tlv.Value)
		return nil
	}).
	On(ctlType, ber.TagBooleanValue, ctlCriticality, func(c *Container, tlv *ber.TLV) error {
		v, err := parseBool(tlv, "control criticality")
		currentControl(c).Criticality = v
		return err
	}).
	On(ctlType, ber.TagOctetStringValue, ctlValue, storeControlValue).
	On(ctlCriticality, ber.TagOctetStringValue, ctlValue, storeControlValue).
	On(ctlType, ber.TagEndOfContents, ctlEnd, nil).
	On(ctlCriticality, ber.TagEndOfContents, ctlEnd, nil).
	On(ctlValue, ber.TagEndOfContents, ctlEnd, nil).
	Exit(ctlEnd).
	Build()

func currentControl(c *Container) *Control {
	return &c.msg.Controls[len(c.msg.Controls)-1]
}

func storeControlValue(c *Container, tlv *ber.TLV) error {
	currentControl(c).Value = cloneBytes(tlv.Value)
	return nil
}

// LDAPResult states. The grammar is entered on the resultCode and left
// after the diagnostic message or the referral.
const (
	resStart grammar.State = iota
	resCode
	resMatchedDN
	resDiagnostic
	resReferral
)

var resultGrammar = newGrammar("LDAPResult").
	On(resStart, ber.TagEnumeratedValue, resCode, func(c *Container, tlv *ber.TLV) error {
		code, err := parseInt(tlv, math.MinInt32, math.MaxInt32, "result code")
		c.result().ResultCode = ResultCode(code)
		return err
	}).
	On(resCode, ber.TagOctetStringValue, resMatchedDN, func(c *Container, tlv *ber.TLV) error {
		c.result().MatchedDN = string(tlv.Value)
		return nil
	}).
	On(resMatchedDN, ber.TagOctetStringValue, resDiagnostic, func(c *Container, tlv *ber.TLV) error {
		c.result().DiagnosticMessage = string(tlv.Value)
		return nil
	}).
	Enter(resDiagnostic, tagReferral, referralGrammar, resReferral).
	Exit(resDiagnostic, resReferral).
	Build()

// Referral states
const (
	refStart grammar.State = iota
	refOpen
	refURL
	refEnd
)

// referralGrammar reads Referral ::= SEQUENCE SIZE (1..MAX) OF uri URI.
var referralGrammar = newGrammar("Referral").
	On(refStart, tagReferral, refOpen, nil).
	On(refOpen, ber.TagOctetStringValue, refURL, appendReferral).
	On(refURL, ber.TagOctetStringValue, refURL, appendReferral).
	On(refURL, ber.TagEndOfContents, refEnd, nil).
	Exit(refEnd).
	Build()

func appendReferral(c *Container, tlv *ber.TLV) error {
	r := c.result()
	r.Referral = append(r.Referral, string(tlv.Value))
	return nil
}
