// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
	"github.com/KilimcininKorOglu/ldapwire/internal/ber/grammar"
)

// filterTags lists the identifier of every Filter alternative.
var filterTags = []ber.Tag{
	filterTag(FilterAnd, true),
	filterTag(FilterOr, true),
	filterTag(FilterNot, true),
	filterTag(FilterEqualityMatch, true),
	filterTag(FilterSubstrings, true),
	filterTag(FilterGreaterOrEqual, true),
	filterTag(FilterLessOrEqual, true),
	filterTag(FilterPresent, false),
	filterTag(FilterApproxMatch, true),
	filterTag(FilterExtensibleMatch, true),
}

// Filter states
const (
	fStart grammar.State = iota
	fSet
	fNot
	fNotChild
	fAVA
	fAVAAttr
	fAVAValue
	fSub
	fSubType
	fSubSeq
	fSubInitial
	fSubAny
	fSubFinal
	fSubClosed
	fExt
	fExtRule
	fExtType
	fExtValue
	fExtDN
	fDone
)

// filterGrammar reads one Filter. AND, OR and NOT enter the grammar again
// for each operand, so the nesting is bounded only by the engine depth.
var filterGrammar = func() *grammar.Grammar[*Container] {
	b := newGrammar("Filter")
	self := b.Self()

	b.On(fStart, filterTag(FilterAnd, true), fSet, openFilter).
		On(fStart, filterTag(FilterOr, true), fSet, openFilter).
		On(fStart, filterTag(FilterNot, true), fNot, openFilter).
		On(fStart, filterTag(FilterEqualityMatch, true), fAVA, openFilter).
		On(fStart, filterTag(FilterGreaterOrEqual, true), fAVA, openFilter).
		On(fStart, filterTag(FilterLessOrEqual, true), fAVA, openFilter).
		On(fStart, filterTag(FilterApproxMatch, true), fAVA, openFilter).
		On(fStart, filterTag(FilterSubstrings, true), fSub, openFilter).
		On(fStart, filterTag(FilterExtensibleMatch, true), fExt, func(c *Container, tlv *ber.TLV) error {
			c.pushFilter(&Filter{Type: FilterExtensibleMatch, Extensible: &ExtensibleMatch{}}, true)
			return nil
		}).
		On(fStart, filterTag(FilterPresent, false), fDone, func(c *Container, tlv *ber.TLV) error {
			c.pushFilter(&Filter{Type: FilterPresent, Attribute: string(tlv.Value)}, false)
			return nil
		}).
		Choice(fStart, ErrUnrecognizedFilterChoice)

	// AND, OR and NOT
	for _, tag := range filterTags {
		b.Enter(fSet, tag, self, fSet)
		b.Enter(fNot, tag, self, fNotChild)
	}
	b.On(fSet, ber.TagEndOfContents, fDone, closeFilter).
		On(fNotChild, ber.TagEndOfContents, fDone, closeFilter).
		Choice(fSet, ErrUnrecognizedFilterChoice).
		Choice(fNot, ErrUnrecognizedFilterChoice)

	// AttributeValueAssertion
	b.On(fAVA, ber.TagOctetStringValue, fAVAAttr, storeFilterAttribute).
		On(fAVAAttr, ber.TagOctetStringValue, fAVAValue, func(c *Container, tlv *ber.TLV) error {
			c.topFilter().Value = requiredBytes(tlv.Value)
			return nil
		}).
		On(fAVAValue, ber.TagEndOfContents, fDone, closeFilter)

	// SubstringFilter
	b.On(fSub, ber.TagOctetStringValue, fSubType, storeFilterAttribute).
		On(fSubType, ber.TagSequenceOf, fSubSeq, func(c *Container, _ *ber.TLV) error {
			c.topFilter().Substrings = &Substrings{}
			return nil
		}).
		On(fSubSeq, tagSubstringInitial, fSubInitial, func(c *Container, tlv *ber.TLV) error {
			c.topFilter().Substrings.Initial = cloneBytes(tlv.Value)
			return nil
		}).
		On(fSubSeq, tagSubstringAny, fSubAny, appendSubstringAny).
		On(fSubInitial, tagSubstringAny, fSubAny, appendSubstringAny).
		On(fSubAny, tagSubstringAny, fSubAny, appendSubstringAny).
		On(fSubSeq, tagSubstringFinal, fSubFinal, storeSubstringFinal).
		On(fSubInitial, tagSubstringFinal, fSubFinal, storeSubstringFinal).
		On(fSubAny, tagSubstringFinal, fSubFinal, storeSubstringFinal).
		On(fSubSeq, ber.TagEndOfContents, fSubClosed, func(*Container, *ber.TLV) error {
			return ErrEmptySubstrings
		}).
		On(fSubInitial, ber.TagEndOfContents, fSubClosed, nil).
		On(fSubAny, ber.TagEndOfContents, fSubClosed, nil).
		On(fSubFinal, ber.TagEndOfContents, fSubClosed, nil).
		On(fSubClosed, ber.TagEndOfContents, fDone, closeFilter)

	// MatchingRuleAssertion
	b.On(fExt, tagExtMatchingRule, fExtRule, func(c *Container, tlv *ber.TLV) error {
		c.topFilter().Extensible.MatchingRule = string(tlv.Value)
		return nil
	}).
		On(fExt, tagExtType, fExtType, storeExtensibleType).
		On(fExtRule, tagExtType, fExtType, storeExtensibleType).
		On(fExt, tagExtMatchValue, fExtValue, storeMatchValue).
		On(fExtRule, tagExtMatchValue, fExtValue, storeMatchValue).
		On(fExtType, tagExtMatchValue, fExtValue, storeMatchValue).
		On(fExtValue, tagExtDNAttributes, fExtDN, func(c *Container, tlv *ber.TLV) error {
			v, err := parseBool(tlv, "dnAttributes")
			c.topFilter().Extensible.DNAttributes = v
			return err
		}).
		On(fExtValue, ber.TagEndOfContents, fDone, closeExtensible).
		On(fExtDN, ber.TagEndOfContents, fDone, closeExtensible)

	return b.Exit(fDone).Build()
}()

func openFilter(c *Container, tlv *ber.TLV) error {
	c.pushFilter(&Filter{Type: FilterType(tlv.Tag.Number())}, true)
	return nil
}

func closeFilter(c *Container, _ *ber.TLV) error {
	c.popFilter()
	return nil
}

func storeFilterAttribute(c *Container, tlv *ber.TLV) error {
	c.topFilter().Attribute = string(tlv.Value)
	return nil
}

func appendSubstringAny(c *Container, tlv *ber.TLV) error {
	s := c.topFilter().Substrings
	s.Any = append(s.Any, cloneBytes(tlv.Value))
	return nil
}

func storeSubstringFinal(c *Container, tlv *ber.TLV) error {
	c.topFilter().Substrings.Final = cloneBytes(tlv.Value)
	return nil
}

func storeExtensibleType(c *Container, tlv *ber.TLV) error {
	c.topFilter().Extensible.Type = string(tlv.Value)
	return nil
}

func storeMatchValue(c *Container, tlv *ber.TLV) error {
	c.topFilter().Extensible.MatchValue = requiredBytes(tlv.Value)
	return nil
}

func closeExtensible(c *Container, _ *ber.TLV) error {
	x := c.topFilter().Extensible
	if x.MatchingRule == "" && x.Type == "" {
		return invalidValue("extensible match without matching rule or type")
	}
	c.popFilter()
	return nil
}
