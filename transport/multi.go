package transport

import (
	"context"
	"errors"

	"github.com/slpgo/slpd/wire"
)

// Multi fans one wire.Listener out to several independently-bound
// connector servers, e.g. one multicast UDP socket per local interface
// address a wildcard bind expanded to.
type Multi struct {
	servers []wire.ConnectorServer
}

func NewMulti(servers ...wire.ConnectorServer) *Multi {
	return &Multi{servers: servers}
}

func (m *Multi) AddListener(l wire.Listener) {
	for _, s := range m.servers {
		s.AddListener(l)
	}
}

func (m *Multi) RemoveListener(l wire.Listener) {
	for _, s := range m.servers {
		s.RemoveListener(l)
	}
}

func (m *Multi) Start(ctx context.Context) error {
	started := make([]wire.ConnectorServer, 0, len(m.servers))
	for _, s := range m.servers {
		if err := s.Start(ctx); err != nil {
			for _, up := range started {
				_ = up.Stop()
			}
			return err
		}
		started = append(started, s)
	}
	return nil
}

func (m *Multi) Stop() error {
	var errs []error
	for _, s := range m.servers {
		if err := s.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
