package wire

// MessageEvent is what a Connector hands to the dispatcher for every
// inbound datagram or TCP request: the decoded Message plus enough
// transport context to classify and answer it, mirroring the shape of the
// original MessageEvent/MessageListener pair.
type MessageEvent struct {
	Message Message

	// Multicast is true for UDP multicast traffic, false for unicast UDP
	// or TCP. It is the bit handleMulticastSrvRqst/the dispatcher switch
	// on first (§4.4).
	Multicast bool

	// LocalAddress is the literal address this event arrived on - the
	// bound interface, used to resolve which DirectoryAgentInfo answers
	// it (§4.3, §9 "wildcard bind addresses").
	LocalAddress string

	// RemoteAddress is the peer's presentation-form address (dotted IPv4
	// or compressed IPv6), compared stringly against previousResponders
	// per §9 "Responder equality" - never canonicalized.
	RemoteAddress string

	// Conn is non-nil for TCP events and is used to write the reply.
	// UDP multicast/unicast replies go through an Advertiser instead.
	Conn Connection
}

// Connection is a single TCP request/response exchange. Handlers must not
// retain it after returning (§5).
type Connection interface {
	WriteSrvRply(SrvRply) error
	WriteSrvAck(SrvAck) error
	Close() error
}

// Advertiser emits DAAdverts over UDP, unicast in response to a discovered
// multicast SrvRqst, multicast for the periodic/boot/shutdown adverts
// (§4.5, §6).
type Advertiser interface {
	UnicastDAAdvert(remoteAddress string, advert DAAdvert) error
	MulticastDAAdvert(advert DAAdvert) error
}

// Listener is the single callback both the UDP and TCP connector servers
// deliver every MessageEvent to (§4.4 "single listener registered with
// both UDP and TCP servers").
type Listener interface {
	Handle(event MessageEvent)
}

// ListenerFunc adapts a plain function to a Listener.
type ListenerFunc func(event MessageEvent)

func (f ListenerFunc) Handle(event MessageEvent) { f(event) }
