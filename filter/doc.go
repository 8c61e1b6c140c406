// Package filter implements the LDAPv3-style filter grammar SLP uses to
// match a service's Attributes against a SrvRqst's filter string (RFC 2608
// §4.2, spec §4.2): (tag=value), (tag=*), (!X), (&X Y ...), (|X Y ...), and
// the integer-only (tag<=v) / (tag>=v) comparisons. Only the evaluation
// contract is part of the Directory Agent's core; this package is the
// concrete implementation the rest of the repository runs against.
package filter
