package transport

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/slpgo/slpd/log"
	"github.com/slpgo/slpd/wire"
)

// TCPConnector listens for TCP requests and delivers each as a
// wire.MessageEvent with a Connection bound to that one exchange. The DA
// must listen on TCP even though UAs/SAs don't, because requesters prefer
// TCP once a DA is known (spec §6).
type TCPConnector struct {
	localAddress string

	mu       sync.Mutex
	listen   wire.Listener
	listener net.Listener
}

func NewTCPConnector(host string, port int) (*TCPConnector, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: binding TCP %s: %w", addr, err)
	}
	return &TCPConnector{localAddress: host, listener: ln}, nil
}

func (t *TCPConnector) AddListener(l wire.Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listen = l
}

func (t *TCPConnector) RemoveListener(l wire.Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listen = nil
}

func (t *TCPConnector) Start(ctx context.Context) error {
	go t.acceptLoop(ctx)
	return nil
}

func (t *TCPConnector) Stop() error {
	return t.listener.Close()
}

func (t *TCPConnector) acceptLoop(ctx context.Context) {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warnw("tcp accept error", log.M{"error": err.Error()})
			return
		}
		go t.serve(conn)
	}
}

func (t *TCPConnector) serve(raw net.Conn) {
	defer raw.Close()

	r := bufio.NewReader(raw)
	e, err := readFrame(r)
	if err != nil {
		log.Debugw("dropping undecodable TCP request", log.M{"remote": raw.RemoteAddr().String(), "error": err.Error()})
		return
	}

	t.mu.Lock()
	listener := t.listen
	t.mu.Unlock()
	if listener == nil {
		return
	}

	conn := &tcpConnection{raw: raw}
	listener.Handle(wire.MessageEvent{
		Message:       e.Message,
		Multicast:     false,
		LocalAddress:  t.localAddress,
		RemoteAddress: remoteHost(raw),
		Conn:          conn,
	})
}

func remoteHost(conn net.Conn) string {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return strings.TrimSpace(conn.RemoteAddr().String())
	}
	return host
}

// tcpConnection is the wire.Connection handed to a handler for the
// lifetime of one request.
type tcpConnection struct {
	raw net.Conn
}

func (c *tcpConnection) WriteSrvRply(r wire.SrvRply) error {
	return writeFrame(c.raw, envelope{Message: r})
}

func (c *tcpConnection) WriteSrvAck(a wire.SrvAck) error {
	return writeFrame(c.raw, envelope{Message: a})
}

func (c *tcpConnection) Close() error {
	return c.raw.Close()
}
