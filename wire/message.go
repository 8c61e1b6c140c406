package wire

import "github.com/slpgo/slpd/slp"

// MessageType tags the concrete payload carried by a Message, so the
// dispatcher can switch on it directly instead of on the Go type of the
// payload (§9 "dispatcher polymorphism").
type MessageType int

const (
	TypeSrvRqst MessageType = iota
	TypeSrvRply
	TypeSrvReg
	TypeSrvDeReg
	TypeSrvAck
	TypeDAAdvert
)

func (t MessageType) String() string {
	switch t {
	case TypeSrvRqst:
		return "SrvRqst"
	case TypeSrvRply:
		return "SrvRply"
	case TypeSrvReg:
		return "SrvReg"
	case TypeSrvDeReg:
		return "SrvDeReg"
	case TypeSrvAck:
		return "SrvAck"
	case TypeDAAdvert:
		return "DAAdvert"
	default:
		return "Unknown"
	}
}

// Message is any decoded SLPv2 PDU the core exchanges with peers.
type Message interface {
	Type() MessageType
	XID() uint16
	Language() string
}

// URLEntry is one matched registration as it appears in a SrvRply.
type URLEntry struct {
	URL      string
	Lifetime uint16
}

// SrvRqst is a service request, sent multicast by UAs discovering services
// or unicast/TCP once a DA is known.
type SrvRqst struct {
	Xid               uint16
	Lang              string
	PreviousResponders []string
	ServiceType       slp.ServiceType
	Scopes            slp.Scopes
	Filter            string
}

func (m SrvRqst) Type() MessageType { return TypeSrvRqst }
func (m SrvRqst) XID() uint16       { return m.Xid }
func (m SrvRqst) Language() string  { return m.Lang }

// SrvRply answers a SrvRqst with a result code and zero or more URLEntries.
type SrvRply struct {
	Xid       uint16
	Lang      string
	ErrorCode slp.ErrorCode
	URLs      []URLEntry
}

func (m SrvRply) Type() MessageType { return TypeSrvRply }
func (m SrvRply) XID() uint16       { return m.Xid }
func (m SrvRply) Language() string  { return m.Lang }

// SrvReg registers or updates a service. Fresh, when true, means "replace
// this registration wholesale"; when false it means "merge these
// attributes into the existing registration" (the wire's "fresh bit
// cleared" per RFC 2608 §8.3).
type SrvReg struct {
	Xid        uint16
	Lang       string
	URL        slp.ServiceURL
	Scopes     slp.Scopes
	Attributes slp.Attributes
	Fresh      bool
}

func (m SrvReg) Type() MessageType { return TypeSrvReg }
func (m SrvReg) XID() uint16       { return m.Xid }
func (m SrvReg) Language() string  { return m.Lang }

// SrvDeReg deregisters a service, in whole or - when Updating is true -
// only the named attribute tags/values.
type SrvDeReg struct {
	Xid        uint16
	Lang       string
	URL        slp.ServiceURL
	Scopes     slp.Scopes
	Attributes slp.Attributes // tags/values to remove, only when Updating
	Updating   bool
}

func (m SrvDeReg) Type() MessageType { return TypeSrvDeReg }
func (m SrvDeReg) XID() uint16       { return m.Xid }
func (m SrvDeReg) Language() string  { return m.Lang }

// SrvAck acknowledges a SrvReg or SrvDeReg.
type SrvAck struct {
	Xid       uint16
	Lang      string
	ErrorCode slp.ErrorCode
}

func (m SrvAck) Type() MessageType { return TypeSrvAck }
func (m SrvAck) XID() uint16       { return m.Xid }
func (m SrvAck) Language() string  { return m.Lang }

// DAAdvert is a DA's self-announcement, sent multicast (unsolicited,
// boot, shutdown) or unicast (reply to a multicast SrvRqst).
type DAAdvert struct {
	Xid        uint16
	Lang       string
	ErrorCode  slp.ErrorCode
	URL        string
	Scopes     slp.Scopes
	Attributes slp.Attributes
	BootTime   int64
}

func (m DAAdvert) Type() MessageType { return TypeDAAdvert }
func (m DAAdvert) XID() uint16       { return m.Xid }
func (m DAAdvert) Language() string  { return m.Lang }
