// Package ldap implements LDAP protocol message parsing and encoding
// as specified in RFC 4511.
package ldap

import (
	"github.com/KilimcininKorOglu/ldapwire/internal/ber"
	"github.com/KilimcininKorOglu/ldapwire/internal/ber/grammar"
)

// Extended operation names
const (
	OIDNoticeOfDisconnect = "1.3.6.1.4.1.1466.20036"
	OIDStartTLS           = "1.3.6.1.4.1.1466.20037"
	OIDGracefulShutdown   = "1.3.6.1.4.1.18060.0.1.3"
	OIDGracefulDisconnect = "1.3.6.1.4.1.18060.0.1.5"
)

// Limits of the GracefulDisconnect fields
const (
	MaxTimeOffline = 720   // minutes
	MaxDelay       = 86400 // seconds
)

// NewNoticeOfDisconnect builds the unsolicited notification a server sends
// before closing a connection (RFC 4511 Section 4.4.1).
func NewNoticeOfDisconnect(code ResultCode, diagnostic string) *Message {
	return &Message{
		MessageID: 0,
		Op: &ExtendedResponse{
			LDAPResult: NewErrorResult(code, diagnostic),
			Name:       OIDNoticeOfDisconnect,
		},
	}
}

// GracefulDisconnect is the value of the graceful disconnect notification.
//
//	GracefulDisconnect ::= SEQUENCE {
//	    timeOffline        INTEGER (0..720) DEFAULT 0,
//	    delay              [0] INTEGER (0..86400) DEFAULT 0,
//	    replicatedContexts Referral OPTIONAL }
type GracefulDisconnect struct {
	// TimeOffline is the expected downtime in minutes, 0 when unknown
	TimeOffline int
	// Delay is the number of seconds before the server disconnects
	Delay int
	// ReplicatedContexts lists LDAP URLs of replicas
	ReplicatedContexts []string
}

func (g *GracefulDisconnect) encode(e emitter) {
	if g.TimeOffline < 0 || g.TimeOffline > MaxTimeOffline {
		e.fail(invalidValue("time offline %d", g.TimeOffline))
		return
	}
	if g.Delay < 0 || g.Delay > MaxDelay {
		e.fail(invalidValue("delay %d", g.Delay))
		return
	}
	e.begin(ber.TagSequenceOf)
	if g.TimeOffline != 0 {
		e.integer(ber.TagIntegerValue, int64(g.TimeOffline))
	}
	if g.Delay != 0 {
		e.integer(tagGracefulDelay, int64(g.Delay))
	}
	if len(g.ReplicatedContexts) > 0 {
		e.begin(ber.TagSequenceOf)
		for _, url := range g.ReplicatedContexts {
			e.str(ber.TagOctetStringValue, url)
		}
		e.end()
	}
	e.end()
}

// Encode returns the BER encoding of the value. Fields at their default
// are omitted.
func (g *GracefulDisconnect) Encode() ([]byte, error) {
	enc, err := computeLength(g)
	if err != nil {
		return nil, err
	}
	return enc.Bytes()
}

// NewGracefulDisconnect builds the unsolicited notification announcing
// that the server is about to go offline.
func NewGracefulDisconnect(g *GracefulDisconnect) (*Message, error) {
	value, err := g.Encode()
	if err != nil {
		return nil, err
	}
	return &Message{
		MessageID: 0,
		Op: &ExtendedResponse{
			LDAPResult: NewErrorResult(ResultUnavailable, "server going offline"),
			Name:       OIDGracefulDisconnect,
			Value:      value,
		},
	}, nil
}

// GracefulDisconnect states
const (
	gdStart grammar.State = iota
	gdOpen
	gdTimeOffline
	gdDelay
	gdContexts
	gdContext
	gdContextsEnd
	gdEnd
)

var gracefulDisconnectGrammar = grammar.NewBuilder[*GracefulDisconnect]("GracefulDisconnect", gdStart).
	On(gdStart, ber.TagSequenceOf, gdOpen, nil).
	On(gdOpen, ber.TagIntegerValue, gdTimeOffline, func(g *GracefulDisconnect, tlv *ber.TLV) error {
		v, err := parseInt(tlv, 0, MaxTimeOffline, "time offline")
		g.TimeOffline = v
		return err
	}).
	On(gdOpen, tagGracefulDelay, gdDelay, storeDelay).
	On(gdTimeOffline, tagGracefulDelay, gdDelay, storeDelay).
	On(gdOpen, ber.TagSequenceOf, gdContexts, nil).
	On(gdTimeOffline, ber.TagSequenceOf, gdContexts, nil).
	On(gdDelay, ber.TagSequenceOf, gdContexts, nil).
	On(gdContexts, ber.TagOctetStringValue, gdContext, appendReplicatedContext).
	On(gdContext, ber.TagOctetStringValue, gdContext, appendReplicatedContext).
	On(gdContext, ber.TagEndOfContents, gdContextsEnd, nil).
	On(gdOpen, ber.TagEndOfContents, gdEnd, nil).
	On(gdTimeOffline, ber.TagEndOfContents, gdEnd, nil).
	On(gdDelay, ber.TagEndOfContents, gdEnd, nil).
	On(gdContextsEnd, ber.TagEndOfContents, gdEnd, nil).
	Exit(gdEnd).
	Build()

func storeDelay(g *GracefulDisconnect, tlv *ber.TLV) error {
	v, err := parseInt(tlv, 0, MaxDelay, "delay")
	g.Delay = v
	return err
}

func appendReplicatedContext(g *GracefulDisconnect, tlv *ber.TLV) error {
	g.ReplicatedContexts = append(g.ReplicatedContexts, string(tlv.Value))
	return nil
}

// DecodeGracefulDisconnect decodes the value of a graceful disconnect
// notification. The whole buffer must hold exactly one value.
func DecodeGracefulDisconnect(value []byte) (*GracefulDisconnect, error) {
	var engine grammar.Engine[*GracefulDisconnect]
	engine.Init(gracefulDisconnectGrammar)

	g := &GracefulDisconnect{}
	cur := ber.NewCursor(value)
	done, err := engine.Run(g, cur)
	if err != nil {
		return nil, &DecodeError{Offset: engine.Offset(), Err: err}
	}
	if !done {
		return nil, &DecodeError{Offset: engine.Consumed(), Err: ErrTruncatedInput}
	}
	if cur.Remaining() > 0 {
		return nil, &DecodeError{
			Offset: engine.Consumed(),
			Err:    invalidValue("%d bytes after graceful disconnect value", cur.Remaining()),
		}
	}
	return g, nil
}
