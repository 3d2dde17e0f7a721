// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
	"github.com/KilimcininKorOglu/ldapwire/internal/ber/grammar"
)

// setOpAction returns an action installing a fresh operation.
func setOpAction(newOp func() ProtocolOp) action {
	return func(c *Container, _ *ber.TLV) error {
		c.setOp(newOp())
		return nil
	}
}

// Responses that are a bare LDAPResult
const (
	rrStart grammar.State = iota
	rrOpen
	rrResult
	rrEnd
)

func resultResponseGrammar(name string, tag ber.Tag, newOp func() ProtocolOp) *grammar.Grammar[*Container] {
	return newGrammar(name).
		On(rrStart, tag, rrOpen, setOpAction(newOp)).
		Enter(rrOpen, ber.TagEnumeratedValue, resultGrammar, rrResult).
		On(rrResult, ber.TagEndOfContents, rrEnd, nil).
		Exit(rrEnd).
		Build()
}

var (
	searchResultDoneGrammar = resultResponseGrammar("SearchResultDone", tagSearchResultDone,
		func() ProtocolOp { return &SearchResultDone{} })
	modifyResponseGrammar = resultResponseGrammar("ModifyResponse", tagModifyResponse,
		func() ProtocolOp { return &ModifyResponse{} })
	addResponseGrammar = resultResponseGrammar("AddResponse", tagAddResponse,
		func() ProtocolOp { return &AddResponse{} })
	delResponseGrammar = resultResponseGrammar("DelResponse", tagDelResponse,
		func() ProtocolOp { return &DelResponse{} })
	modifyDNResponseGrammar = resultResponseGrammar("ModifyDNResponse", tagModifyDNResponse,
		func() ProtocolOp { return &ModifyDNResponse{} })
	compareResponseGrammar = resultResponseGrammar("CompareResponse", tagCompareResponse,
		func() ProtocolOp { return &CompareResponse{} })
)

// BindRequest states
const (
	bindStart grammar.State = iota
	bindOpen
	bindVersion
	bindName
	bindSASL
	bindMechanism
	bindCredentials
	bindAuth
	bindEnd
)

var bindRequestGrammar = newGrammar("BindRequest").
	On(bindStart, tagBindRequest, bindOpen, setOpAction(func() ProtocolOp { return &BindRequest{} })).
	On(bindOpen, ber.TagIntegerValue, bindVersion, func(c *Container, tlv *ber.TLV) error {
		v, err := parseInt(tlv, 1, 127, "bind version")
		op[*BindRequest](c).Version = v
		return err
	}).
	On(bindVersion, ber.TagOctetStringValue, bindName, func(c *Container, tlv *ber.TLV) error {
		op[*BindRequest](c).Name = string(tlv.Value)
		return nil
	}).
	On(bindName, tagAuthSimple, bindAuth, func(c *Container, tlv *ber.TLV) error {
		r := op[*BindRequest](c)
		r.AuthMethod = AuthSimple
		r.SimplePassword = requiredBytes(tlv.Value)
		return nil
	}).
	On(bindName, tagAuthSASL, bindSASL, func(c *Container, _ *ber.TLV) error {
		r := op[*BindRequest](c)
		r.AuthMethod = AuthSASL
		r.SASL = &SASLCredentials{}
		return nil
	}).
	On(bindSASL, ber.TagOctetStringValue, bindMechanism, func(c *Container, tlv *ber.TLV) error {
		op[*BindRequest](c).SASL.Mechanism = string(tlv.Value)
		return nil
	}).
	On(bindMechanism, ber.TagOctetStringValue, bindCredentials, func(c *Container, tlv *ber.TLV) error {
		op[*BindRequest](c).SASL.Credentials = cloneBytes(tlv.Value)
		return nil
	}).
	On(bindMechanism, ber.TagEndOfContents, bindAuth, nil).
	On(bindCredentials, ber.TagEndOfContents, bindAuth, nil).
	On(bindAuth, ber.TagEndOfContents, bindEnd, nil).
	Exit(bindEnd).
	Build()

// BindResponse states
const (
	bindRespStart grammar.State = iota
	bindRespOpen
	bindRespResult
	bindRespCreds
	bindRespEnd
)

var bindResponseGrammar = newGrammar("BindResponse").
	On(bindRespStart, tagBindResponse, bindRespOpen, setOpAction(func() ProtocolOp { return &BindResponse{} })).
	Enter(bindRespOpen, ber.TagEnumeratedValue, resultGrammar, bindRespResult).
	On(bindRespResult, tagServerSASLCreds, bindRespCreds, func(c *Container, tlv *ber.TLV) error {
		op[*BindResponse](c).ServerSASLCreds = cloneBytes(tlv.Value)
		return nil
	}).
	On(bindRespResult, ber.TagEndOfContents, bindRespEnd, nil).
	On(bindRespCreds, ber.TagEndOfContents, bindRespEnd, nil).
	Exit(bindRespEnd).
	Build()

// UnbindRequest states
const (
	unbindStart grammar.State = iota
	unbindEnd
)

var unbindRequestGrammar = newGrammar("UnbindRequest").
	On(unbindStart, tagUnbindRequest, unbindEnd, func(c *Container, tlv *ber.TLV) error {
		if tlv.Length != 0 {
			return invalidValue("unbind request with %d value bytes", tlv.Length)
		}
		c.setOp(&UnbindRequest{})
		return nil
	}).
	Exit(unbindEnd).
	Build()

// SearchRequest states
const (
	searchStart grammar.State = iota
	searchOpen
	searchBase
	searchScope
	searchDeref
	searchSizeLimit
	searchTimeLimit
	searchTypesOnly
	searchFilter
	searchAttributes
	searchAttributesEnd
	searchEnd
)

var searchRequestGrammar = func() *grammar.Grammar[*Container] {
	b := newGrammar("SearchRequest").
		On(searchStart, tagSearchRequest, searchOpen, setOpAction(func() ProtocolOp { return &SearchRequest{} })).
		On(searchOpen, ber.TagOctetStringValue, searchBase, func(c *Container, tlv *ber.TLV) error {
			op[*SearchRequest](c).BaseObject = string(tlv.Value)
			return nil
		}).
		On(searchBase, ber.TagEnumeratedValue, searchScope, func(c *Container, tlv *ber.TLV) error {
			v, err := parseInt(tlv, int64(ScopeBaseObject), int64(ScopeWholeSubtree), "search scope")
			op[*SearchRequest](c).Scope = SearchScope(v)
			return err
		}).
		On(searchScope, ber.TagEnumeratedValue, searchDeref, func(c *Container, tlv *ber.TLV) error {
			v, err := parseInt(tlv, int64(DerefNever), int64(DerefAlways), "deref aliases")
			op[*SearchRequest](c).DerefAliases = DerefAliases(v)
			return err
		}).
		On(searchDeref, ber.TagIntegerValue, searchSizeLimit, func(c *Container, tlv *ber.TLV) error {
			v, err := parseInt(tlv, 0, MaxMessageID, "size limit")
			op[*SearchRequest](c).SizeLimit = v
			return err
		}).
		On(searchSizeLimit, ber.TagIntegerValue, searchTimeLimit, func(c *Container, tlv *ber.TLV) error {
			v, err := parseInt(tlv, 0, MaxMessageID, "time limit")
			op[*SearchRequest](c).TimeLimit = v
			return err
		}).
		On(searchTimeLimit, ber.TagBooleanValue, searchTypesOnly, func(c *Container, tlv *ber.TLV) error {
			v, err := parseBool(tlv, "typesOnly")
			op[*SearchRequest](c).TypesOnly = v
			return err
		}).
		Choice(searchTypesOnly, ErrUnrecognizedFilterChoice).
		On(searchFilter, ber.TagSequenceOf, searchAttributes, nil).
		On(searchAttributes, ber.TagOctetStringValue, searchAttributes, func(c *Container, tlv *ber.TLV) error {
			r := op[*SearchRequest](c)
			r.Attributes = append(r.Attributes, string(tlv.Value))
			return nil
		}).
		On(searchAttributes, ber.TagEndOfContents, searchAttributesEnd, nil).
		On(searchAttributesEnd, ber.TagEndOfContents, searchEnd, nil).
		Exit(searchEnd)
	for _, tag := range filterTags {
		b.Enter(searchTypesOnly, tag, filterGrammar, searchFilter)
	}
	return b.Build()
}()

// SearchResultEntry states
const (
	entryStart grammar.State = iota
	entryOpen
	entryName
	entryAttributes
	entryAttributesEnd
	entryEnd
)

var searchResultEntryGrammar = newGrammar("SearchResultEntry").
	On(entryStart, tagSearchResultEntry, entryOpen, setOpAction(func() ProtocolOp { return &SearchResultEntry{} })).
	On(entryOpen, ber.TagOctetStringValue, entryName, func(c *Container, tlv *ber.TLV) error {
		op[*SearchResultEntry](c).ObjectName = string(tlv.Value)
		return nil
	}).
	On(entryName, ber.TagSequenceOf, entryAttributes, nil).
	Enter(entryAttributes, ber.TagSequenceOf, attributeGrammar, entryAttributes).
	On(entryAttributes, ber.TagEndOfContents, entryAttributesEnd, nil).
	On(entryAttributesEnd, ber.TagEndOfContents, entryEnd, nil).
	Exit(entryEnd).
	Build()

// SearchResultReference states
const (
	srefStart grammar.State = iota
	srefOpen
	srefURI
	srefEnd
)

var searchResultReferenceGrammar = newGrammar("SearchResultReference").
	On(srefStart, tagSearchResultReference, srefOpen, setOpAction(func() ProtocolOp { return &SearchResultReference{} })).
	On(srefOpen, ber.TagOctetStringValue, srefURI, appendReference).
	On(srefURI, ber.TagOctetStringValue, srefURI, appendReference).
	On(srefURI, ber.TagEndOfContents, srefEnd, nil).
	Exit(srefEnd).
	Build()

func appendReference(c *Container, tlv *ber.TLV) error {
	r := op[*SearchResultReference](c)
	r.URIs = append(r.URIs, string(tlv.Value))
	return nil
}

// PartialAttribute states
const (
	attrStart grammar.State = iota
	attrOpen
	attrType
	attrValues
	attrValuesEnd
	attrEnd
)

// attributeGrammar reads one attribute of an entry, an add request or a
// modify request change.
var attributeGrammar = newGrammar("PartialAttribute").
	On(attrStart, ber.TagSequenceOf, attrOpen, func(c *Container, _ *ber.TLV) error {
		c.beginAttribute()
		return nil
	}).
	On(attrOpen, ber.TagOctetStringValue, attrType, func(c *Container, tlv *ber.TLV) error {
		c.attr.Type = string(tlv.Value)
		return nil
	}).
	On(attrType, ber.TagSetOf, attrValues, nil).
	On(attrValues, ber.TagOctetStringValue, attrValues, func(c *Container, tlv *ber.TLV) error {
		c.attr.Values = append(c.attr.Values, cloneBytes(tlv.Value))
		return nil
	}).
	On(attrValues, ber.TagEndOfContents, attrValuesEnd, nil).
	On(attrValuesEnd, ber.TagEndOfContents, attrEnd, nil).
	Exit(attrEnd).
	Build()

// ModifyRequest states
const (
	modStart grammar.State = iota
	modOpen
	modObject
	modChanges
	modChange
	modOperation
	modModification
	modChangesEnd
	modEnd
)

var modifyRequestGrammar = newGrammar("ModifyRequest").
	On(modStart, tagModifyRequest, modOpen, setOpAction(func() ProtocolOp { return &ModifyRequest{} })).
	On(modOpen, ber.TagOctetStringValue, modObject, func(c *Container, tlv *ber.TLV) error {
		op[*ModifyRequest](c).Object = string(tlv.Value)
		return nil
	}).
	On(modObject, ber.TagSequenceOf, modChanges, nil).
	On(modChanges, ber.TagSequenceOf, modChange, func(c *Container, _ *ber.TLV) error {
		r := op[*ModifyRequest](c)
		r.Changes = append(r.Changes, Change{})
		return nil
	}).
	On(modChange, ber.TagEnumeratedValue, modOperation, func(c *Container, tlv *ber.TLV) error {
		v, err := parseInt(tlv, int64(ModifyAdd), int64(ModifyIncrement), "modify operation")
		r := op[*ModifyRequest](c)
		r.Changes[len(r.Changes)-1].Operation = ModifyOperation(v)
		return err
	}).
	Enter(modOperation, ber.TagSequenceOf, attributeGrammar, modModification).
	On(modModification, ber.TagEndOfContents, modChanges, nil).
	On(modChanges, ber.TagEndOfContents, modChangesEnd, nil).
	On(modChangesEnd, ber.TagEndOfContents, modEnd, nil).
	Exit(modEnd).
	Build()

// AddRequest states
const (
	addStart grammar.State = iota
	addOpen
	addEntry
	addAttributes
	addAttributesEnd
	addEnd
)

var addRequestGrammar = newGrammar("AddRequest").
	On(addStart, tagAddRequest, addOpen, setOpAction(func() ProtocolOp { return &AddRequest{} })).
	On(addOpen, ber.TagOctetStringValue, addEntry, func(c *Container, tlv *ber.TLV) error {
		op[*AddRequest](c).Entry = string(tlv.Value)
		return nil
	}).
	On(addEntry, ber.TagSequenceOf, addAttributes, nil).
	Enter(addAttributes, ber.TagSequenceOf, attributeGrammar, addAttributes).
	On(addAttributes, ber.TagEndOfContents, addAttributesEnd, nil).
	On(addAttributesEnd, ber.TagEndOfContents, addEnd, nil).
	Exit(addEnd).
	Build()

// DelRequest states
const (
	delStart grammar.State = iota
	delEnd
)

var delRequestGrammar = newGrammar("DelRequest").
	On(delStart, tagDelRequest, delEnd, func(c *Container, tlv *ber.TLV) error {
		c.setOp(&DelRequest{DN: string(tlv.Value)})
		return nil
	}).
	Exit(delEnd).
	Build()

// ModifyDNRequest states
const (
	mdnStart grammar.State = iota
	mdnOpen
	mdnEntry
	mdnNewRDN
	mdnDeleteOld
	mdnNewSuperior
	mdnEnd
)

var modifyDNRequestGrammar = newGrammar("ModifyDNRequest").
	On(mdnStart, tagModifyDNRequest, mdnOpen, setOpAction(func() ProtocolOp { return &ModifyDNRequest{} })).
	On(mdnOpen, ber.TagOctetStringValue, mdnEntry, func(c *Container, tlv *ber.TLV) error {
		op[*ModifyDNRequest](c).Entry = string(tlv.Value)
		return nil
	}).
	On(mdnEntry, ber.TagOctetStringValue, mdnNewRDN, func(c *Container, tlv *ber.TLV) error {
		op[*ModifyDNRequest](c).NewRDN = string(tlv.Value)
		return nil
	}).
	On(mdnNewRDN, ber.TagBooleanValue, mdnDeleteOld, func(c *Container, tlv *ber.TLV) error {
		v, err := parseBool(tlv, "deleteoldrdn")
		op[*ModifyDNRequest](c).DeleteOldRDN = v
		return err
	}).
	On(mdnDeleteOld, tagNewSuperior, mdnNewSuperior, func(c *Container, tlv *ber.TLV) error {
		op[*ModifyDNRequest](c).NewSuperior = string(tlv.Value)
		return nil
	}).
	On(mdnDeleteOld, ber.TagEndOfContents, mdnEnd, nil).
	On(mdnNewSuperior, ber.TagEndOfContents, mdnEnd, nil).
	Exit(mdnEnd).
	Build()

// CompareRequest states
const (
	cmpStart grammar.State = iota
	cmpOpen
	cmpEntry
	cmpAssertion
	cmpAttribute
	cmpValue
	cmpAssertionEnd
	cmpEnd
)

var compareRequestGrammar = newGrammar("CompareRequest").
	On(cmpStart, tagCompareRequest, cmpOpen, setOpAction(func() ProtocolOp { return &CompareRequest{} })).
	On(cmpOpen, ber.TagOctetStringValue, cmpEntry, func(c *Container, tlv *ber.TLV) error {
		op[*CompareRequest](c).Entry = string(tlv.Value)
		return nil
	}).
	On(cmpEntry, ber.TagSequenceOf, cmpAssertion, nil).
	On(cmpAssertion, ber.TagOctetStringValue, cmpAttribute, func(c *Container, tlv *ber.TLV) error {
		op[*CompareRequest](c).Attribute = string(tlv.Value)
		return nil
	}).
	On(cmpAttribute, ber.TagOctetStringValue, cmpValue, func(c *Container, tlv *ber.TLV) error {
		op[*CompareRequest](c).Value = requiredBytes(tlv.Value)
		return nil
	}).
	On(cmpValue, ber.TagEndOfContents, cmpAssertionEnd, nil).
	On(cmpAssertionEnd, ber.TagEndOfContents, cmpEnd, nil).
	Exit(cmpEnd).
	Build()

// AbandonRequest states
const (
	abandonStart grammar.State = iota
	abandonEnd
)

var abandonRequestGrammar = newGrammar("AbandonRequest").
	On(abandonStart, tagAbandonRequest, abandonEnd, func(c *Container, tlv *ber.TLV) error {
		id, err := parseInt(tlv, MinMessageID, MaxMessageID, "abandoned message ID")
		c.setOp(&AbandonRequest{MessageID: id})
		return err
	}).
	Exit(abandonEnd).
	Build()

// ExtendedRequest states
const (
	extStart grammar.State = iota
	extOpen
	extName
	extValue
	extEnd
)

var extendedRequestGrammar = newGrammar("ExtendedRequest").
	On(extStart, tagExtendedRequest, extOpen, setOpAction(func() ProtocolOp { return &ExtendedRequest{} })).
	On(extOpen, tagRequestName, extName, func(c *Container, tlv *ber.TLV) error {
		oid, err := parseOID(tlv, "request name")
		op[*ExtendedRequest](c).Name = oid
		return err
	}).
	On(extName, tagRequestValue, extValue, func(c *Container, tlv *ber.TLV) error {
		op[*ExtendedRequest](c).Value = cloneBytes(tlv.Value)
		return nil
	}).
	On(extName, ber.TagEndOfContents, extEnd, nil).
	On(extValue, ber.TagEndOfContents, extEnd, nil).
	Exit(extEnd).
	Build()

// ExtendedResponse states
const (
	extRespStart grammar.State = iota
	extRespOpen
	extRespResult
	extRespName
	extRespValue
	extRespEnd
)

var extendedResponseGrammar = newGrammar("ExtendedResponse").
	On(extRespStart, tagExtendedResponse, extRespOpen, setOpAction(func() ProtocolOp { return &ExtendedResponse{} })).
	Enter(extRespOpen, ber.TagEnumeratedValue, resultGrammar, extRespResult).
	On(extRespResult, tagResponseName, extRespName, storeResponseName).
	On(extRespResult, tagResponseValue, extRespValue, storeResponseValue).
	On(extRespName, tagResponseValue, extRespValue, storeResponseValue).
	On(extRespResult, ber.TagEndOfContents, extRespEnd, nil).
	On(extRespName, ber.TagEndOfContents, extRespEnd, nil).
	On(extRespValue, ber.TagEndOfContents, extRespEnd, nil).
	Exit(extRespEnd).
	Build()

func storeResponseName(c *Container, tlv *ber.TLV) error {
	oid, err := parseOID(tlv, "response name")
	op[*ExtendedResponse](c).Name = oid
	return err
}

func storeResponseValue(c *Container, tlv *ber.TLV) error {
	op[*ExtendedResponse](c).Value = cloneBytes(tlv.Value)
	return nil
}
