// Package server runs LDAP connections on top of the incremental decoder.
//
// # Connections
//
// Each client connection owns one ldap.Container. The connection reads
// chunks of up to server.readBufferSize bytes, feeds them to the container
// and handles every message the container completes, so requests may be
// split across reads or pipelined several to a read:
//
//	conn := server.NewConnection(netConn, srv)
//	go conn.Handle()
//
// A decoding error ends the connection. Before closing, the client receives
// a Notice of Disconnection (RFC 4511 Section 4.4.1) carrying protocolError
// and the decoder's diagnostic.
//
// # Handlers
//
// Requests are routed to per-operation handlers. The default Handler
// accepts anonymous simple binds and answers every other request with
// unwillingToPerform; abandon and unbind never get a response:
//
//	handler := server.NewHandler()
//	handler.SetCompareHandler(func(conn *server.Connection, req *ldap.CompareRequest) *server.OperationResult {
//	    return &server.OperationResult{ResultCode: ldap.ResultCompareFalse}
//	})
//
// # Serving
//
//	srv := server.NewServer(cfg, handler, logger)
//	go srv.ListenAndServe()
//	...
//	srv.Shutdown(ctx)
//
// Connections beyond server.maxConnections receive a busy Notice of
// Disconnection and are closed. Shutdown sends every open connection an
// unavailable notice before closing it.
//
// With the logger at debug level every response is logged as "Encoded PDU"
// with its hex encoding.
package server
