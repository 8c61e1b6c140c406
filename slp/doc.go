// Package slp implements the core SLP (RFC 2608) data model shared by a
// Directory Agent: service identity, scopes, attributes, and the service
// registry record types. It has no knowledge of the wire format or of any
// transport; see the wire and transport packages for that.
package slp
