// Package wire defines the decoded SLPv2 message shapes and the
// transport-facing interfaces the Directory Agent core runs against (RFC
// 2608, spec §6). It does not encode or decode the RFC 2608 binary PDU
// format, does not open sockets, and does not know about UDP or TCP as
// such - it is the boundary the dispatcher and handlers are written
// against, grounded in the "decoded message objects handed to a single
// listener" shape the original Java implementation used
// (srv/net.MessageListener, srv/net.MessageEvent).
package wire
