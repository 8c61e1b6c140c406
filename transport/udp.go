package transport

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/slpgo/slpd/log"
	"github.com/slpgo/slpd/wire"
)

// UDPConnector is a single UDP socket that both serves inbound
// MessageEvents to a wire.Listener and, via WriteTo, sends outbound
// datagrams. One instance is unicast (multicast=false, bound to the DA's
// own address); a second, separate instance joins the SLP multicast
// group (multicast=true) to receive multicast SrvRqsts.
type UDPConnector struct {
	localAddress string
	multicast    bool

	mu     sync.Mutex
	conn   *net.UDPConn
	listen wire.Listener
}

// NewUnicastUDPConnector binds a plain UDP socket on host:port.
func NewUnicastUDPConnector(host string, port int) (*UDPConnector, error) {
	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(host), Port: port})
	if err != nil {
		return nil, fmt.Errorf("transport: binding UDP %s:%d: %w", host, port, err)
	}
	return &UDPConnector{localAddress: host, multicast: false, conn: conn}, nil
}

// NewMulticastUDPConnector joins the given multicast group on port,
// marking every event it delivers as Multicast.
func NewMulticastUDPConnector(localAddress, group string, port int) (*UDPConnector, error) {
	iface, err := interfaceFor(localAddress)
	if err != nil {
		return nil, err
	}
	conn, err := net.ListenMulticastUDP("udp", iface, &net.UDPAddr{IP: net.ParseIP(group), Port: port})
	if err != nil {
		return nil, fmt.Errorf("transport: joining multicast group %s:%d: %w", group, port, err)
	}
	return &UDPConnector{localAddress: localAddress, multicast: true, conn: conn}, nil
}

func interfaceFor(addr string) (*net.Interface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for i := range ifaces {
		addrs, err := ifaces[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			ipNet, ok := a.(*net.IPNet)
			if ok && ipNet.IP.String() == addr {
				return &ifaces[i], nil
			}
		}
	}
	return nil, nil // let the kernel pick a default interface
}

func (u *UDPConnector) AddListener(l wire.Listener) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.listen = l
}

func (u *UDPConnector) RemoveListener(l wire.Listener) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.listen = nil
}

func (u *UDPConnector) Start(ctx context.Context) error {
	go u.readLoop(ctx)
	return nil
}

func (u *UDPConnector) Stop() error {
	return u.conn.Close()
}

func (u *UDPConnector) readLoop(ctx context.Context) {
	buf := make([]byte, maxFrameSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, remote, err := u.conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnw("udp read error", log.M{"error": err.Error()})
			return
		}

		e, err := decodeDatagram(buf[:n])
		if err != nil {
			log.Debugw("dropping undecodable UDP datagram", log.M{"remote": remote.String(), "error": err.Error()})
			continue
		}

		u.mu.Lock()
		listener := u.listen
		u.mu.Unlock()
		if listener == nil {
			continue
		}

		listener.Handle(wire.MessageEvent{
			Message:       e.Message,
			Multicast:     u.multicast,
			LocalAddress:  u.localAddress,
			RemoteAddress: remote.IP.String(),
		})
	}
}

// WriteTo sends a single envelope to remoteAddr.
func (u *UDPConnector) WriteTo(remoteAddr *net.UDPAddr, e envelope) error {
	data, err := encodeDatagram(e)
	if err != nil {
		return err
	}
	_, err = u.conn.WriteToUDP(data, remoteAddr)
	return err
}
