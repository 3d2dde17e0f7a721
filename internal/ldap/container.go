// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"fmt"

	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
	"github.com/KilimcininKorOglu/ldapwire/internal/ber/grammar"
)

// Status tells whether Decode produced a message.
type Status int

const (
	// NeedMoreData means the buffered input ends inside a message.
	NeedMoreData Status = iota
	// Complete means DecodeResult.Message holds a decoded message.
	Complete
)

// String returns the status name.
func (s Status) String() string {
	if s == Complete {
		return "Complete"
	}
	return "NeedMoreData"
}

// DecodeResult is the outcome of one Decode call.
type DecodeResult struct {
	Status  Status
	Message *Message
}

// Container decodes a stream of LDAP messages delivered in arbitrary
// chunks. It keeps the partial state of the message in flight and any bytes
// received after a completed message, and is reused for the whole stream.
//
// A Container belongs to a single connection and is not safe for
// concurrent use.
type Container struct {
	engine  grammar.Engine[*Container]
	cur     ber.Cursor
	pending []byte
	maxSize int

	msg     *Message
	filters []*Filter
	attr    *Attribute
}

// Option configures a Container.
type Option func(*Container)

// WithMaxMessageSize rejects messages whose encoding exceeds n bytes.
func WithMaxMessageSize(n int) Option {
	return func(c *Container) {
		c.maxSize = n
	}
}

// WithMaxDepth bounds the nesting of grammars and constructed elements.
func WithMaxDepth(n int) Option {
	return func(c *Container) {
		c.engine.MaxDepth = n
	}
}

// NewContainer creates a Container ready to decode the first message.
func NewContainer(opts ...Option) *Container {
	c := &Container{}
	for _, opt := range opts {
		opt(c)
	}
	c.engine.Init(messageGrammar)
	return c
}

// Decode feeds the next chunk of input. It returns Complete with the
// decoded message as soon as one message ends; bytes after that message
// are kept and consumed by the following calls, so a caller that received
// Complete should call Decode(nil) until it reports NeedMoreData.
//
// On error the message in flight and all buffered bytes are discarded and
// the returned *DecodeError carries the offset of the offending element.
// The chunk is not retained after Decode returns.
func (c *Container) Decode(chunk []byte) (DecodeResult, error) {
	input := chunk
	if len(c.pending) > 0 {
		c.pending = append(c.pending, chunk...)
		input = c.pending
	}
	c.cur.Reset(input)

	done, err := c.engine.Run(c, &c.cur)
	if err != nil {
		derr := &DecodeError{Offset: c.engine.Offset(), Err: err}
		c.discard()
		return DecodeResult{}, derr
	}
	if !done {
		c.pending = c.pending[:0]
		return DecodeResult{Status: NeedMoreData}, nil
	}

	msg := c.msg
	c.pending = append(c.pending[:0], c.cur.Rest()...)
	c.cur.Reset(nil)
	c.reset()
	return DecodeResult{Status: Complete, Message: msg}, nil
}

// Finish tells the container that the stream has ended. It returns
// ErrTruncatedInput when a message was still in flight or undecoded bytes
// remain buffered.
func (c *Container) Finish() error {
	if c.engine.InProgress() || len(c.pending) > 0 {
		derr := &DecodeError{Offset: c.engine.Consumed(), Err: ErrTruncatedInput}
		c.discard()
		return derr
	}
	return nil
}

// Buffered returns the number of received bytes not yet decoded.
func (c *Container) Buffered() int {
	return len(c.pending)
}

// InProgress reports whether part of a message has been consumed.
func (c *Container) InProgress() bool {
	return c.engine.InProgress()
}

// reset clears the per-message state, keeping the buffered bytes.
func (c *Container) reset() {
	c.engine.Reset()
	c.msg = nil
	c.filters = c.filters[:0]
	c.attr = nil
}

// discard clears the per-message state and the buffered bytes.
func (c *Container) discard() {
	c.reset()
	c.pending = c.pending[:0]
	c.cur.Reset(nil)
}

func (c *Container) result() *LDAPResult {
	return c.msg.Op.(Response).Result()
}

// op returns the operation under construction as its concrete type. The
// grammar guarantees the type.
func op[T ProtocolOp](c *Container) T {
	return c.msg.Op.(T)
}

func (c *Container) setOp(p ProtocolOp) {
	c.msg.Op = p
}

// beginAttribute appends an attribute to the operation under construction
// and makes it the target of the following values.
func (c *Container) beginAttribute() {
	switch p := c.msg.Op.(type) {
	case *SearchResultEntry:
		p.Attributes = append(p.Attributes, Attribute{})
		c.attr = &p.Attributes[len(p.Attributes)-1]
	case *AddRequest:
		p.Attributes = append(p.Attributes, Attribute{})
		c.attr = &p.Attributes[len(p.Attributes)-1]
	case *ModifyRequest:
		c.attr = &p.Changes[len(p.Changes)-1].Modification
	default:
		panic(fmt.Sprintf("ldap: attribute inside %T", p))
	}
}

// pushFilter attaches f to the filter under construction. Constructed
// filters stay on the stack until their end.
func (c *Container) pushFilter(f *Filter, open bool) {
	if n := len(c.filters); n > 0 {
		parent := c.filters[n-1]
		switch parent.Type {
		case FilterAnd, FilterOr:
			parent.Children = append(parent.Children, f)
		case FilterNot:
			parent.Child = f
		}
	} else {
		op[*SearchRequest](c).Filter = f
	}
	if open {
		c.filters = append(c.filters, f)
	}
}

func (c *Container) topFilter() *Filter {
	return c.filters[len(c.filters)-1]
}

func (c *Container) popFilter() {
	c.filters = c.filters[:len(c.filters)-1]
}

func invalidSize(size, limit int) error {
	return fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, size, limit)
}

// cloneBytes copies a scanned value; the result is never nil so that a
// present but empty value stays distinguishable from an absent one.
func cloneBytes(v []byte) []byte {
	return append([]byte{}, v...)
}

// requiredBytes copies the value of a field that is always encoded. An
// empty value decodes to nil, the zero value that encodes to it.
func requiredBytes(v []byte) []byte {
	if len(v) == 0 {
		return nil
	}
	return cloneBytes(v)
}

// parseInt decodes an INTEGER or ENUMERATED value constrained to [lo, hi].
func parseInt(tlv *ber.TLV, lo, hi int64, field string) (int, error) {
	n, err := ber.ParseInteger(tlv.Value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if n < lo || n > hi {
		return 0, invalidValue("%s %d out of range [%d, %d]", field, n, lo, hi)
	}
	return int(n), nil
}

func parseBool(tlv *ber.TLV, field string) (bool, error) {
	v, err := ber.ParseBoolean(tlv.Value)
	if err != nil {
		return false, fmt.Errorf("%s: %w", field, err)
	}
	return v, nil
}

func parseOID(tlv *ber.TLV, field string) (string, error) {
	oid, err := ber.ParseOID(tlv.Value)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrInvalidValue, field, err)
	}
	return oid, nil
}
