package transport

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slpgo/slpd/wire"
)

type fakeServer struct {
	startErr  error
	stopErr   error
	started   bool
	stopped   bool
	listeners []wire.Listener
}

func (f *fakeServer) AddListener(l wire.Listener)    { f.listeners = append(f.listeners, l) }
func (f *fakeServer) RemoveListener(l wire.Listener) {}
func (f *fakeServer) Start(ctx context.Context) error {
	f.started = true
	return f.startErr
}
func (f *fakeServer) Stop() error {
	f.stopped = true
	return f.stopErr
}

func TestMultiStartsAndStopsEverySubserver(t *testing.T) {
	a, b := &fakeServer{}, &fakeServer{}
	m := NewMulti(a, b)

	m.AddListener(wire.ListenerFunc(func(wire.MessageEvent) {}))
	require.Len(t, a.listeners, 1)
	require.Len(t, b.listeners, 1)

	require.NoError(t, m.Start(context.Background()))
	assert.True(t, a.started)
	assert.True(t, b.started)

	require.NoError(t, m.Stop())
	assert.True(t, a.stopped)
	assert.True(t, b.stopped)
}

func TestMultiStartRollsBackOnPartialFailure(t *testing.T) {
	a := &fakeServer{}
	b := &fakeServer{startErr: errors.New("bind failed")}
	m := NewMulti(a, b)

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.True(t, a.stopped, "previously started servers must be rolled back")
}
