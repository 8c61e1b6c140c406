package transport

import (
	"fmt"
	"net"

	"github.com/slpgo/slpd/wire"
)

// Advertiser implements wire.Advertiser over a pair of UDPConnectors: one
// for unicast replies to a discovered requester, one bound to the
// multicast group for unsolicited/boot/shutdown adverts.
type Advertiser struct {
	unicast   *UDPConnector
	multicast *UDPConnector
	group     *net.UDPAddr
	port      int
}

func NewAdvertiser(unicast, multicast *UDPConnector, group string, port int) *Advertiser {
	return &Advertiser{
		unicast:   unicast,
		multicast: multicast,
		group:     &net.UDPAddr{IP: net.ParseIP(group), Port: port},
		port:      port,
	}
}

func (a *Advertiser) UnicastDAAdvert(remoteAddress string, advert wire.DAAdvert) error {
	ip := net.ParseIP(remoteAddress)
	if ip == nil {
		return fmt.Errorf("transport: invalid unicast address %q", remoteAddress)
	}
	return a.unicast.WriteTo(&net.UDPAddr{IP: ip, Port: a.port}, envelope{Message: advert})
}

func (a *Advertiser) MulticastDAAdvert(advert wire.DAAdvert) error {
	return a.multicast.WriteTo(a.group, envelope{Message: advert})
}
