package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"

	asn1ber "github.com/go-asn1-ber/asn1-ber"

	"github.com/KilimcininKorOglu/ldapwire/internal/ldap"
)

// decodeCmd handles the decode command. The hex input is taken from the
// arguments, or from stdin when there are none, and may hold several
// messages back to back.
func decodeCmd(args []string, opts options, stdin io.Reader, stdout, stderr io.Writer) int {
	input := strings.Join(args, "")
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return ExitError
		}
		input = string(data)
	}

	data, err := parseHex(input)
	if err != nil {
		fmt.Fprintf(stderr, "Error: invalid hex input: %v\n", err)
		return ExitError
	}
	if len(data) == 0 {
		fmt.Fprintln(stderr, "Error: no input")
		return ExitMissingArg
	}

	c := ldap.NewContainer()
	start := 0
	res, err := c.Decode(data)
	for err == nil && res.Status == ldap.Complete {
		end := len(data) - c.Buffered()
		describeMessage(stdout, res.Message)
		if opts.dump {
			dumpPacket(stdout, data[start:end])
		}
		start = end
		res, err = c.Decode(nil)
	}
	if err == nil {
		err = c.Finish()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}

	return ExitSuccess
}

// parseHex decodes hex text, ignoring white space and an optional 0x prefix.
func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

// dumpPacket prints the BER tree of one message.
func dumpPacket(w io.Writer, data []byte) {
	p, err := asn1ber.DecodePacketErr(data)
	if err != nil {
		fmt.Fprintf(w, "  (no BER dump: %v)\n", err)
		return
	}
	asn1ber.WritePacket(w, p)
}

var extendedNames = map[string]string{
	ldap.OIDStartTLS:           "StartTLS",
	ldap.OIDNoticeOfDisconnect: "Notice of Disconnection",
	ldap.OIDGracefulShutdown:   "graceful shutdown",
	ldap.OIDGracefulDisconnect: "graceful disconnect",
}

// extendedName appends the name of a well known extended operation OID.
func extendedName(oid string) string {
	if name, ok := extendedNames[oid]; ok {
		return oid + " (" + name + ")"
	}
	return oid
}

// describeMessage prints a readable summary of msg.
func describeMessage(w io.Writer, msg *ldap.Message) {
	fmt.Fprintf(w, "message %d: %s\n", msg.MessageID, msg.OperationType())

	field := func(name string, value interface{}) {
		fmt.Fprintf(w, "  %s: %v\n", name, value)
	}

	switch op := msg.Op.(type) {
	case *ldap.BindRequest:
		field("version", op.Version)
		field("name", op.Name)
		field("auth", op.AuthMethod)
		if op.SASL != nil {
			field("mechanism", op.SASL.Mechanism)
		}
	case *ldap.SearchRequest:
		field("base", op.BaseObject)
		field("scope", op.Scope)
		field("sizeLimit", op.SizeLimit)
		field("timeLimit", op.TimeLimit)
		field("typesOnly", op.TypesOnly)
		field("filter", op.Filter)
		if len(op.Attributes) > 0 {
			field("attributes", strings.Join(op.Attributes, ", "))
		}
	case *ldap.SearchResultEntry:
		field("dn", op.ObjectName)
		describeAttributes(w, op.Attributes)
	case *ldap.SearchResultReference:
		field("uris", strings.Join(op.URIs, ", "))
	case *ldap.ModifyRequest:
		field("object", op.Object)
		for _, ch := range op.Changes {
			fmt.Fprintf(w, "  %s %s: %d value(s)\n", ch.Operation, ch.Modification.Type, len(ch.Modification.Values))
		}
	case *ldap.AddRequest:
		field("entry", op.Entry)
		describeAttributes(w, op.Attributes)
	case *ldap.DelRequest:
		field("dn", op.DN)
	case *ldap.ModifyDNRequest:
		field("entry", op.Entry)
		field("newRDN", op.NewRDN)
		field("deleteOldRDN", op.DeleteOldRDN)
		if op.NewSuperior != "" {
			field("newSuperior", op.NewSuperior)
		}
	case *ldap.CompareRequest:
		field("entry", op.Entry)
		field("assertion", fmt.Sprintf("%s=%q", op.Attribute, op.Value))
	case *ldap.AbandonRequest:
		field("abandon", op.MessageID)
	case *ldap.ExtendedRequest:
		field("name", extendedName(op.Name))
		if op.Value != nil {
			field("value", hex.EncodeToString(op.Value))
		}
	case *ldap.ExtendedResponse:
		describeResult(w, &op.LDAPResult)
		if op.Name != "" {
			field("name", extendedName(op.Name))
		}
		if op.Value == nil {
			break
		}
		if op.Name == ldap.OIDGracefulDisconnect {
			if g, err := ldap.DecodeGracefulDisconnect(op.Value); err == nil {
				field("timeOffline", fmt.Sprintf("%d min", g.TimeOffline))
				field("delay", fmt.Sprintf("%d s", g.Delay))
				if len(g.ReplicatedContexts) > 0 {
					field("replicatedContexts", strings.Join(g.ReplicatedContexts, ", "))
				}
				break
			}
		}
		field("value", hex.EncodeToString(op.Value))
	case ldap.Response:
		describeResult(w, op.Result())
	}

	for _, c := range msg.Controls {
		fmt.Fprintf(w, "  control %s critical=%t\n", c.OID, c.Criticality)
	}
}

func describeResult(w io.Writer, r *ldap.LDAPResult) {
	fmt.Fprintf(w, "  result: %s (%d)\n", r.ResultCode, int64(r.ResultCode))
	if r.MatchedDN != "" {
		fmt.Fprintf(w, "  matchedDN: %s\n", r.MatchedDN)
	}
	if r.DiagnosticMessage != "" {
		fmt.Fprintf(w, "  diagnostic: %s\n", r.DiagnosticMessage)
	}
	for _, uri := range r.Referral {
		fmt.Fprintf(w, "  referral: %s\n", uri)
	}
}

func describeAttributes(w io.Writer, attrs []ldap.Attribute) {
	for _, a := range attrs {
		values := make([]string, len(a.Values))
		for i, v := range a.Values {
			values[i] = fmt.Sprintf("%q", v)
		}
		fmt.Fprintf(w, "  %s: %s\n", a.Type, strings.Join(values, ", "))
	}
}
