// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"errors"
	"fmt"

	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
)

// emitter receives the element tree of a message in pre-order. The same
// encode methods drive both the sizing pass and the writing pass, so the two
// passes cannot disagree about which elements exist.
type emitter interface {
	begin(tag ber.Tag)
	end()
	octets(tag ber.Tag, v []byte)
	str(tag ber.Tag, s string)
	integer(tag ber.Tag, n int64)
	boolean(tag ber.Tag, v bool)
	oid(tag ber.Tag, oid string)
	fail(err error)
}

type sizeFrame struct {
	slot int
	tag  ber.Tag
	size int
}

// sizer computes the value length of every constructed element. Lengths are
// stored in pre-order, the order in which the writer needs them.
type sizer struct {
	lengths []int
	stack   []sizeFrame
	total   int
	err     error
}

func (s *sizer) add(n int) {
	if k := len(s.stack); k > 0 {
		s.stack[k-1].size += n
		return
	}
	s.total += n
}

func (s *sizer) begin(tag ber.Tag) {
	s.stack = append(s.stack, sizeFrame{slot: len(s.lengths), tag: tag})
	s.lengths = append(s.lengths, 0)
}

func (s *sizer) end() {
	k := len(s.stack) - 1
	f := s.stack[k]
	s.stack = s.stack[:k]
	s.lengths[f.slot] = f.size
	s.add(ber.TLVSize(f.tag, f.size))
}

func (s *sizer) octets(tag ber.Tag, v []byte) { s.add(ber.TLVSize(tag, len(v))) }
func (s *sizer) str(tag ber.Tag, v string)    { s.add(ber.TLVSize(tag, len(v))) }
func (s *sizer) integer(tag ber.Tag, n int64) { s.add(ber.TLVSize(tag, ber.IntegerSize(n))) }
func (s *sizer) boolean(tag ber.Tag, _ bool)  { s.add(ber.TLVSize(tag, 1)) }

func (s *sizer) oid(tag ber.Tag, oid string) {
	n, err := ber.OIDSize(oid)
	if err != nil {
		s.fail(fmt.Errorf("%w: %w", ErrInvalidValue, err))
		return
	}
	s.add(ber.TLVSize(tag, n))
}

func (s *sizer) fail(err error) {
	if s.err == nil {
		s.err = err
	}
}

// writer replays the element tree into a fixed buffer using the lengths
// recorded by the sizer.
type writer struct {
	enc     *ber.Encoder
	lengths []int
	next    int
	err     error
}

func (w *writer) set(err error) {
	if err != nil && w.err == nil {
		w.err = err
	}
}

func (w *writer) begin(tag ber.Tag) {
	if w.next >= len(w.lengths) {
		w.set(ErrGraphMutated)
		return
	}
	l := w.lengths[w.next]
	w.next++
	w.set(w.enc.WriteHeader(tag, l))
}

func (w *writer) end()                         {}
func (w *writer) octets(tag ber.Tag, v []byte) { w.set(w.enc.WriteOctetString(tag, v)) }
func (w *writer) str(tag ber.Tag, s string)    { w.set(w.enc.WriteString(tag, s)) }
func (w *writer) integer(tag ber.Tag, n int64) { w.set(w.enc.WriteInteger(tag, n)) }
func (w *writer) boolean(tag ber.Tag, v bool)  { w.set(w.enc.WriteBoolean(tag, v)) }
func (w *writer) oid(tag ber.Tag, oid string)  { w.set(w.enc.WriteOID(tag, oid)) }
func (w *writer) fail(err error)               { w.set(err) }

// encodable is an element tree that can be measured and written.
type encodable interface {
	encode(e emitter)
}

// Encoding is a message whose length has been computed. It is the only way
// to produce the wire form of a message.
type Encoding struct {
	v       encodable
	lengths []int
	total   int
}

// ComputeLength runs the sizing pass over m and validates it. The message
// must not be modified until it has been encoded.
func ComputeLength(m *Message) (*Encoding, error) {
	return computeLength(m)
}

func computeLength(v encodable) (*Encoding, error) {
	s := &sizer{}
	v.encode(s)
	if s.err != nil {
		return nil, s.err
	}
	return &Encoding{v: v, lengths: s.lengths, total: s.total}, nil
}

// Len returns the encoded size of the message in bytes.
func (e *Encoding) Len() int {
	return e.total
}

// EncodeTo writes the message into buf and returns the number of bytes
// written. It fails with ber.ErrBufferTooSmall when buf is shorter than Len.
func (e *Encoding) EncodeTo(buf []byte) (int, error) {
	if len(buf) < e.total {
		return 0, ber.ErrBufferTooSmall
	}
	w := &writer{enc: ber.NewEncoder(buf[:e.total]), lengths: e.lengths}
	e.v.encode(w)
	if w.err != nil {
		if errors.Is(w.err, ber.ErrBufferTooSmall) {
			return 0, ErrGraphMutated
		}
		return 0, w.err
	}
	if w.enc.Len() != e.total || w.next != len(e.lengths) {
		return 0, ErrGraphMutated
	}
	return e.total, nil
}

// Bytes allocates a buffer of exactly Len bytes and encodes into it.
func (e *Encoding) Bytes() ([]byte, error) {
	buf := make([]byte, e.total)
	if _, err := e.EncodeTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Encode computes the length of m and encodes it.
func Encode(m *Message) ([]byte, error) {
	enc, err := ComputeLength(m)
	if err != nil {
		return nil, err
	}
	return enc.Bytes()
}

// Encode returns the BER encoding of the message.
func (m *Message) Encode() ([]byte, error) {
	return Encode(m)
}

func (m *Message) encode(e emitter) {
	if m.MessageID < MinMessageID || m.MessageID > MaxMessageID {
		e.fail(invalidValue("message ID %d", m.MessageID))
		return
	}
	if m.Op == nil {
		e.fail(ErrMissingOperation)
		return
	}
	e.begin(ber.TagSequenceOf)
	e.integer(ber.TagIntegerValue, int64(m.MessageID))
	m.Op.encode(e)
	if m.Controls != nil {
		e.begin(tagControls)
		for i := range m.Controls {
			c := &m.Controls[i]
			e.begin(ber.TagSequenceOf)
			e.str(ber.TagOctetStringValue, c.OID)
			if c.Criticality {
				e.boolean(ber.TagBooleanValue, true)
			}
			if c.Value != nil {
				e.octets(ber.TagOctetStringValue, c.Value)
			}
			e.end()
		}
		e.end()
	}
	e.end()
}

// encodeComponents writes the LDAPResult fields inside an already open element.
func (r *LDAPResult) encodeComponents(e emitter) {
	if int64(r.ResultCode) != int64(int32(r.ResultCode)) {
		e.fail(invalidValue("result code %d", r.ResultCode))
		return
	}
	e.integer(ber.TagEnumeratedValue, int64(r.ResultCode))
	e.str(ber.TagOctetStringValue, r.MatchedDN)
	e.str(ber.TagOctetStringValue, r.DiagnosticMessage)
	if len(r.Referral) > 0 {
		e.begin(tagReferral)
		for _, url := range r.Referral {
			e.str(ber.TagOctetStringValue, url)
		}
		e.end()
	}
}

func encodeResult(e emitter, tag ber.Tag, r *LDAPResult) {
	e.begin(tag)
	r.encodeComponents(e)
	e.end()
}

func (r *BindRequest) encode(e emitter) {
	if r.Version < 1 || r.Version > 127 {
		e.fail(invalidValue("bind version %d", r.Version))
		return
	}
	e.begin(tagBindRequest)
	e.integer(ber.TagIntegerValue, int64(r.Version))
	e.str(ber.TagOctetStringValue, r.Name)
	switch r.AuthMethod {
	case AuthSimple:
		e.octets(tagAuthSimple, r.SimplePassword)
	case AuthSASL:
		if r.SASL == nil {
			e.fail(invalidValue("SASL bind without credentials"))
			return
		}
		e.begin(tagAuthSASL)
		e.str(ber.TagOctetStringValue, r.SASL.Mechanism)
		if r.SASL.Credentials != nil {
			e.octets(ber.TagOctetStringValue, r.SASL.Credentials)
		}
		e.end()
	default:
		e.fail(invalidValue("authentication method %d", r.AuthMethod))
		return
	}
	e.end()
}

func (r *BindResponse) encode(e emitter) {
	e.begin(tagBindResponse)
	r.encodeComponents(e)
	if r.ServerSASLCreds != nil {
		e.octets(tagServerSASLCreds, r.ServerSASLCreds)
	}
	e.end()
}

func (*UnbindRequest) encode(e emitter) {
	e.octets(tagUnbindRequest, nil)
}

func (r *SearchRequest) encode(e emitter) {
	switch {
	case r.Scope < ScopeBaseObject || r.Scope > ScopeWholeSubtree:
		e.fail(invalidValue("search scope %d", r.Scope))
		return
	case r.DerefAliases < DerefNever || r.DerefAliases > DerefAlways:
		e.fail(invalidValue("deref aliases %d", r.DerefAliases))
		return
	case r.SizeLimit < 0 || r.SizeLimit > MaxMessageID:
		e.fail(invalidValue("size limit %d", r.SizeLimit))
		return
	case r.TimeLimit < 0 || r.TimeLimit > MaxMessageID:
		e.fail(invalidValue("time limit %d", r.TimeLimit))
		return
	case r.Filter == nil:
		e.fail(invalidValue("search request without filter"))
		return
	}
	e.begin(tagSearchRequest)
	e.str(ber.TagOctetStringValue, r.BaseObject)
	e.integer(ber.TagEnumeratedValue, int64(r.Scope))
	e.integer(ber.TagEnumeratedValue, int64(r.DerefAliases))
	e.integer(ber.TagIntegerValue, int64(r.SizeLimit))
	e.integer(ber.TagIntegerValue, int64(r.TimeLimit))
	e.boolean(ber.TagBooleanValue, r.TypesOnly)
	r.Filter.encode(e)
	e.begin(ber.TagSequenceOf)
	for _, a := range r.Attributes {
		e.str(ber.TagOctetStringValue, a)
	}
	e.end()
	e.end()
}

func filterTag(t FilterType, constructed bool) ber.Tag {
	if constructed {
		return ber.Tag(ber.ClassContextSpecific | ber.TypeConstructed | int(t))
	}
	return ber.Tag(ber.ClassContextSpecific | ber.TypePrimitive | int(t))
}

func (f *Filter) encode(e emitter) {
	if f == nil {
		e.fail(invalidValue("nil filter"))
		return
	}
	switch f.Type {
	case FilterAnd, FilterOr:
		e.begin(filterTag(f.Type, true))
		for _, c := range f.Children {
			c.encode(e)
		}
		e.end()
	case FilterNot:
		e.begin(filterTag(f.Type, true))
		f.Child.encode(e)
		e.end()
	case FilterEqualityMatch, FilterGreaterOrEqual, FilterLessOrEqual, FilterApproxMatch:
		e.begin(filterTag(f.Type, true))
		e.str(ber.TagOctetStringValue, f.Attribute)
		e.octets(ber.TagOctetStringValue, f.Value)
		e.end()
	case FilterPresent:
		e.str(filterTag(f.Type, false), f.Attribute)
	case FilterSubstrings:
		s := f.Substrings
		if s == nil || (s.Initial == nil && len(s.Any) == 0 && s.Final == nil) {
			e.fail(fmt.Errorf("%w: %w", ErrInvalidValue, ErrEmptySubstrings))
			return
		}
		e.begin(filterTag(f.Type, true))
		e.str(ber.TagOctetStringValue, f.Attribute)
		e.begin(ber.TagSequenceOf)
		if s.Initial != nil {
			e.octets(tagSubstringInitial, s.Initial)
		}
		for _, a := range s.Any {
			e.octets(tagSubstringAny, a)
		}
		if s.Final != nil {
			e.octets(tagSubstringFinal, s.Final)
		}
		e.end()
		e.end()
	case FilterExtensibleMatch:
		x := f.Extensible
		if x == nil || (x.MatchingRule == "" && x.Type == "") {
			e.fail(invalidValue("extensible match needs a matching rule or a type"))
			return
		}
		e.begin(filterTag(f.Type, true))
		if x.MatchingRule != "" {
			e.str(tagExtMatchingRule, x.MatchingRule)
		}
		if x.Type != "" {
			e.str(tagExtType, x.Type)
		}
		e.octets(tagExtMatchValue, x.MatchValue)
		if x.DNAttributes {
			e.boolean(tagExtDNAttributes, true)
		}
		e.end()
	default:
		e.fail(invalidValue("filter type %d", f.Type))
	}
}

func encodeAttribute(e emitter, a *Attribute) {
	e.begin(ber.TagSequenceOf)
	e.str(ber.TagOctetStringValue, a.Type)
	e.begin(ber.TagSetOf)
	for _, v := range a.Values {
		e.octets(ber.TagOctetStringValue, v)
	}
	e.end()
	e.end()
}

func (r *SearchResultEntry) encode(e emitter) {
	e.begin(tagSearchResultEntry)
	e.str(ber.TagOctetStringValue, r.ObjectName)
	e.begin(ber.TagSequenceOf)
	for i := range r.Attributes {
		encodeAttribute(e, &r.Attributes[i])
	}
	e.end()
	e.end()
}

func (r *SearchResultReference) encode(e emitter) {
	if len(r.URIs) == 0 {
		e.fail(invalidValue("search result reference without URIs"))
		return
	}
	e.begin(tagSearchResultReference)
	for _, uri := range r.URIs {
		e.str(ber.TagOctetStringValue, uri)
	}
	e.end()
}

func (r *SearchResultDone) encode(e emitter) { encodeResult(e, tagSearchResultDone, &r.LDAPResult) }
func (r *ModifyResponse) encode(e emitter)   { encodeResult(e, tagModifyResponse, &r.LDAPResult) }
func (r *AddResponse) encode(e emitter)      { encodeResult(e, tagAddResponse, &r.LDAPResult) }
func (r *DelResponse) encode(e emitter)      { encodeResult(e, tagDelResponse, &r.LDAPResult) }
func (r *ModifyDNResponse) encode(e emitter) { encodeResult(e, tagModifyDNResponse, &r.LDAPResult) }
func (r *CompareResponse) encode(e emitter)  { encodeResult(e, tagCompareResponse, &r.LDAPResult) }

func (r *ModifyRequest) encode(e emitter) {
	e.begin(tagModifyRequest)
	e.str(ber.TagOctetStringValue, r.Object)
	e.begin(ber.TagSequenceOf)
	for i := range r.Changes {
		c := &r.Changes[i]
		if c.Operation < ModifyAdd || c.Operation > ModifyIncrement {
			e.fail(invalidValue("modify operation %d", c.Operation))
			return
		}
		e.begin(ber.TagSequenceOf)
		e.integer(ber.TagEnumeratedValue, int64(c.Operation))
		encodeAttribute(e, &c.Modification)
		e.end()
	}
	e.end()
	e.end()
}

func (r *AddRequest) encode(e emitter) {
	e.begin(tagAddRequest)
	e.str(ber.TagOctetStringValue, r.Entry)
	e.begin(ber.TagSequenceOf)
	for i := range r.Attributes {
		encodeAttribute(e, &r.Attributes[i])
	}
	e.end()
	e.end()
}

func (r *DelRequest) encode(e emitter) {
	e.str(tagDelRequest, r.DN)
}

func (r *ModifyDNRequest) encode(e emitter) {
	e.begin(tagModifyDNRequest)
	e.str(ber.TagOctetStringValue, r.Entry)
	e.str(ber.TagOctetStringValue, r.NewRDN)
	e.boolean(ber.TagBooleanValue, r.DeleteOldRDN)
	if r.NewSuperior != "" {
		e.str(tagNewSuperior, r.NewSuperior)
	}
	e.end()
}

func (r *CompareRequest) encode(e emitter) {
	e.begin(tagCompareRequest)
	e.str(ber.TagOctetStringValue, r.Entry)
	e.begin(ber.TagSequenceOf)
	e.str(ber.TagOctetStringValue, r.Attribute)
	e.octets(ber.TagOctetStringValue, r.Value)
	e.end()
	e.end()
}

func (r *AbandonRequest) encode(e emitter) {
	if r.MessageID < MinMessageID || r.MessageID > MaxMessageID {
		e.fail(invalidValue("abandoned message ID %d", r.MessageID))
		return
	}
	e.integer(tagAbandonRequest, int64(r.MessageID))
}

func (r *ExtendedRequest) encode(e emitter) {
	e.begin(tagExtendedRequest)
	e.oid(tagRequestName, r.Name)
	if r.Value != nil {
		e.octets(tagRequestValue, r.Value)
	}
	e.end()
}

func (r *ExtendedResponse) encode(e emitter) {
	e.begin(tagExtendedResponse)
	r.encodeComponents(e)
	if r.Name != "" {
		e.oid(tagResponseName, r.Name)
	}
	if r.Value != nil {
		e.octets(tagResponseValue, r.Value)
	}
	e.end()
}
