package wire

import "context"

// ConnectorServer is a UDP or TCP listening endpoint that delivers every
// inbound message to a single registered Listener, mirroring
// UDPConnectorServer/TCPConnectorServer from the original implementation.
// AddListener/RemoveListener are not expected to be called concurrently
// with Start/Stop.
type ConnectorServer interface {
	AddListener(l Listener)
	RemoveListener(l Listener)
	Start(ctx context.Context) error
	Stop() error
}
