// Package transport implements the UDP and TCP connector servers the wire
// package's interfaces describe, over real sockets (net.UDPConn,
// net.TCPListener), grounded in remote.Remote's net.Listen("tcp", ...)
// shape. Each message travels as an encoding/gob-encoded envelope: TCP
// frames it with a 4-byte big-endian length prefix, while a UDP datagram
// carries exactly one envelope with no prefix. This is the repository's own convenience
// codec, not the RFC 2608 binary PDU format, which remains out of scope
// for the core (spec §6 "the core consumes decoded message objects").
package transport
