package da

import (
	"time"

	"github.com/slpgo/slpd/log"
	"github.com/slpgo/slpd/ratelimit"
	"github.com/slpgo/slpd/wire"
)

// Dispatcher is the single wire.Listener registered with both the UDP and
// TCP connector servers (§4.4). It classifies each inbound MessageEvent by
// the multicast bit and message type and routes to the matching handler;
// everything else is dropped silently at debug level.
type Dispatcher struct {
	handlers *Handlers
	limiter  ratelimit.Limiter // nil disables SrvReg rate limiting
}

func NewDispatcher(handlers *Handlers, limiter ratelimit.Limiter) *Dispatcher {
	return &Dispatcher{handlers: handlers, limiter: limiter}
}

func (d *Dispatcher) Handle(event wire.MessageEvent) {
	switch {
	case event.Multicast:
		d.dispatchMulticast(event)
	default:
		d.dispatchUnicast(event)
	}
}

func (d *Dispatcher) dispatchMulticast(event wire.MessageEvent) {
	if event.Message.Type() != wire.TypeSrvRqst {
		log.Debugw("dropping multicast message: not a SrvRqst", log.M{"type": event.Message.Type().String()})
		d.handlers.drop("not_srvrqst")
		return
	}
	d.handlers.HandleMulticastSrvRqst(event.Message.(wire.SrvRqst), event.LocalAddress, event.RemoteAddress)
}

func (d *Dispatcher) dispatchUnicast(event wire.MessageEvent) {
	switch event.Message.Type() {
	case wire.TypeSrvRqst:
		d.handlers.HandleTCPSrvRqst(event.Message.(wire.SrvRqst), event.LocalAddress, event.Conn)
	case wire.TypeSrvReg:
		if d.limiter != nil && !d.limiter.Allow(event.RemoteAddress, time.Now()) {
			log.Debugw("dropping SrvReg: rate limited", log.M{"remote": event.RemoteAddress})
			d.handlers.drop("rate_limited")
			return
		}
		d.handlers.HandleTCPSrvReg(event.Message.(wire.SrvReg), event.Conn)
	case wire.TypeSrvDeReg:
		d.handlers.HandleTCPSrvDeReg(event.Message.(wire.SrvDeReg), event.Conn)
	default:
		log.Debugw("dropping unicast message: not handled by a directory agent", log.M{"type": event.Message.Type().String()})
		d.handlers.drop("unhandled_message_type")
	}
}
