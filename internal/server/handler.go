package server

import (
	"github.com/KilimcininKorOglu/ldapwire/internal/ldap"
)

// OperationResult represents the result of an LDAP operation.
type OperationResult struct {
	// ResultCode is the LDAP result code
	ResultCode ldap.ResultCode
	// MatchedDN is the matched DN (for certain error conditions)
	MatchedDN string
	// DiagnosticMessage is an optional diagnostic message
	DiagnosticMessage string
	// Referral lists the referral URIs when ResultCode is ResultReferral
	Referral []string
}

func (r *OperationResult) ldapResult() ldap.LDAPResult {
	return ldap.LDAPResult{
		ResultCode:        r.ResultCode,
		MatchedDN:         r.MatchedDN,
		DiagnosticMessage: r.DiagnosticMessage,
		Referral:          r.Referral,
	}
}

// SearchResult represents the result of a search operation.
type SearchResult struct {
	OperationResult
	// Entries are sent before the SearchResultDone, in order
	Entries []*ldap.SearchResultEntry
	// References are continuation references sent after the entries
	References []*ldap.SearchResultReference
}

// ExtendedResult represents the result of an extended operation.
type ExtendedResult struct {
	OperationResult
	// Name is the response OID, empty when absent
	Name string
	// Value is nil when absent
	Value []byte
}

// BindHandler handles bind requests.
type BindHandler func(conn *Connection, req *ldap.BindRequest) *OperationResult

// SearchHandler handles search requests.
type SearchHandler func(conn *Connection, req *ldap.SearchRequest) *SearchResult

// AddHandler handles add requests.
type AddHandler func(conn *Connection, req *ldap.AddRequest) *OperationResult

// DeleteHandler handles delete requests.
type DeleteHandler func(conn *Connection, req *ldap.DelRequest) *OperationResult

// ModifyHandler handles modify requests.
type ModifyHandler func(conn *Connection, req *ldap.ModifyRequest) *OperationResult

// ModifyDNHandler handles modify DN requests.
type ModifyDNHandler func(conn *Connection, req *ldap.ModifyDNRequest) *OperationResult

// CompareHandler handles compare requests.
type CompareHandler func(conn *Connection, req *ldap.CompareRequest) *OperationResult

// ExtendedHandler handles extended requests.
type ExtendedHandler func(conn *Connection, req *ldap.ExtendedRequest) *ExtendedResult

// Handler routes decoded requests to per-operation handlers. Operations
// without a handler are answered with unwillingToPerform.
type Handler struct {
	bindHandler     BindHandler
	searchHandler   SearchHandler
	addHandler      AddHandler
	deleteHandler   DeleteHandler
	modifyHandler   ModifyHandler
	modifyDNHandler ModifyDNHandler
	compareHandler  CompareHandler
	extendedHandler ExtendedHandler
}

// NewHandler creates a Handler that accepts anonymous simple binds and
// refuses everything else.
func NewHandler() *Handler {
	return &Handler{
		bindHandler: defaultBindHandler,
	}
}

// SetBindHandler sets the bind handler.
func (h *Handler) SetBindHandler(handler BindHandler) {
	h.bindHandler = handler
}

// SetSearchHandler sets the search handler.
func (h *Handler) SetSearchHandler(handler SearchHandler) {
	h.searchHandler = handler
}

// SetAddHandler sets the add handler.
func (h *Handler) SetAddHandler(handler AddHandler) {
	h.addHandler = handler
}

// SetDeleteHandler sets the delete handler.
func (h *Handler) SetDeleteHandler(handler DeleteHandler) {
	h.deleteHandler = handler
}

// SetModifyHandler sets the modify handler.
func (h *Handler) SetModifyHandler(handler ModifyHandler) {
	h.modifyHandler = handler
}

// SetModifyDNHandler sets the modify DN handler.
func (h *Handler) SetModifyDNHandler(handler ModifyDNHandler) {
	h.modifyDNHandler = handler
}

// SetCompareHandler sets the compare handler.
func (h *Handler) SetCompareHandler(handler CompareHandler) {
	h.compareHandler = handler
}

// SetExtendedHandler sets the extended operation handler.
func (h *Handler) SetExtendedHandler(handler ExtendedHandler) {
	h.extendedHandler = handler
}

// Dispatch runs the handler for a request and returns the response
// operations in the order they must be sent. Abandon, unbind and
// unsolicited responses from the client produce no response.
func (h *Handler) Dispatch(conn *Connection, msg *ldap.Message) []ldap.ProtocolOp {
	switch req := msg.Op.(type) {
	case *ldap.BindRequest:
		res := call(h.bindHandler, conn, req, "bind")
		if res.ResultCode == ldap.ResultSuccess && conn != nil {
			conn.setBindDN(req.Name)
		}
		return []ldap.ProtocolOp{&ldap.BindResponse{LDAPResult: res.ldapResult()}}

	case *ldap.SearchRequest:
		return h.search(conn, req)

	case *ldap.AddRequest:
		res := call(h.addHandler, conn, req, "add")
		return []ldap.ProtocolOp{&ldap.AddResponse{LDAPResult: res.ldapResult()}}

	case *ldap.DelRequest:
		res := call(h.deleteHandler, conn, req, "delete")
		return []ldap.ProtocolOp{&ldap.DelResponse{LDAPResult: res.ldapResult()}}

	case *ldap.ModifyRequest:
		res := call(h.modifyHandler, conn, req, "modify")
		return []ldap.ProtocolOp{&ldap.ModifyResponse{LDAPResult: res.ldapResult()}}

	case *ldap.ModifyDNRequest:
		res := call(h.modifyDNHandler, conn, req, "modify DN")
		return []ldap.ProtocolOp{&ldap.ModifyDNResponse{LDAPResult: res.ldapResult()}}

	case *ldap.CompareRequest:
		res := call(h.compareHandler, conn, req, "compare")
		return []ldap.ProtocolOp{&ldap.CompareResponse{LDAPResult: res.ldapResult()}}

	case *ldap.ExtendedRequest:
		return []ldap.ProtocolOp{h.extended(conn, req)}
	}

	return nil
}

func (h *Handler) search(conn *Connection, req *ldap.SearchRequest) []ldap.ProtocolOp {
	if h.searchHandler == nil {
		res := notConfigured("search")
		return []ldap.ProtocolOp{&ldap.SearchResultDone{LDAPResult: res.ldapResult()}}
	}

	res := h.searchHandler(conn, req)
	if res == nil {
		res = &SearchResult{OperationResult: *notConfigured("search")}
	}
	ops := make([]ldap.ProtocolOp, 0, len(res.Entries)+len(res.References)+1)
	for _, entry := range res.Entries {
		ops = append(ops, entry)
	}
	for _, ref := range res.References {
		ops = append(ops, ref)
	}
	return append(ops, &ldap.SearchResultDone{LDAPResult: res.ldapResult()})
}

func (h *Handler) extended(conn *Connection, req *ldap.ExtendedRequest) ldap.ProtocolOp {
	if h.extendedHandler == nil {
		res := notConfigured("extended operation " + req.Name)
		return &ldap.ExtendedResponse{LDAPResult: res.ldapResult()}
	}

	res := h.extendedHandler(conn, req)
	if res == nil {
		res = &ExtendedResult{OperationResult: *notConfigured("extended operation " + req.Name)}
	}
	return &ldap.ExtendedResponse{
		LDAPResult: res.ldapResult(),
		Name:       res.Name,
		Value:      res.Value,
	}
}

// call invokes handler. A missing handler or a nil result is reported as
// unwillingToPerform.
func call[R any](handler func(*Connection, R) *OperationResult, conn *Connection, req R, name string) *OperationResult {
	if handler == nil {
		return notConfigured(name)
	}
	if res := handler(conn, req); res != nil {
		return res
	}
	return notConfigured(name)
}

func notConfigured(name string) *OperationResult {
	return &OperationResult{
		ResultCode:        ldap.ResultUnwillingToPerform,
		DiagnosticMessage: name + " not supported",
	}
}

func defaultBindHandler(_ *Connection, req *ldap.BindRequest) *OperationResult {
	if req.IsAnonymous() {
		return &OperationResult{ResultCode: ldap.ResultSuccess}
	}
	return notConfigured("authenticated bind")
}
