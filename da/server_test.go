package da

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slpgo/slpd/slp"
	"github.com/slpgo/slpd/wire"
)

type fakeConnectorServer struct {
	listener   wire.Listener
	startErr   error
	stopErr    error
	startCalls int
	stopCalls  int
}

func (f *fakeConnectorServer) AddListener(l wire.Listener)    { f.listener = l }
func (f *fakeConnectorServer) RemoveListener(wire.Listener)    { f.listener = nil }
func (f *fakeConnectorServer) Start(context.Context) error {
	f.startCalls++
	return f.startErr
}
func (f *fakeConnectorServer) Stop() error {
	f.stopCalls++
	return f.stopErr
}

func newTestServer(t *testing.T) (*Server, *fakeAdvertiser, *fakeConnectorServer, *fakeConnectorServer) {
	t.Helper()
	cache := NewServiceInfoCache()
	ads := &fakeAdvertiser{}
	udp := &fakeConnectorServer{}
	tcp := &fakeConnectorServer{}
	cfg := ServerConfig{
		DirectoryAgents: []slp.DirectoryAgentInfo{
			slp.NewDirectoryAgentInfo("10.0.0.1", slp.NewScopes("DEFAULT"), slp.NewAttributes(), "en", 427, 0),
		},
		Scopes: slp.NewScopes("DEFAULT"),
	}
	return NewServer(cfg, cache, ads, udp, tcp, nil, nil), ads, udp, tcp
}

func TestServerStartSendsBootAdvert(t *testing.T) {
	s, ads, udp, tcp := newTestServer(t)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 1, udp.startCalls)
	assert.Equal(t, 1, tcp.startCalls)
	require.Len(t, ads.multicast, 1)
	assert.NotZero(t, ads.multicast[0].BootTime)
}

func TestServerStartIsIdempotent(t *testing.T) {
	s, _, udp, _ := newTestServer(t)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Equal(t, 1, udp.startCalls)
}

func TestServerStopSendsShutdownAdvertAndIsIdempotent(t *testing.T) {
	s, ads, udp, tcp := newTestServer(t)
	require.NoError(t, s.Start(context.Background()))

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())

	assert.Equal(t, 1, udp.stopCalls)
	assert.Equal(t, 1, tcp.stopCalls)
	require.Len(t, ads.multicast, 2) // boot + shutdown
	assert.Zero(t, ads.multicast[1].BootTime)
}

func TestServerStartPropagatesBindFailure(t *testing.T) {
	s, _, udp, _ := newTestServer(t)
	udp.startErr = assertErr{"bind failed"}

	err := s.Start(context.Background())
	assert.Error(t, err)
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }

func TestServerRunsPurgerOnSchedule(t *testing.T) {
	cache := NewServiceInfoCache()
	ads := &fakeAdvertiser{}
	udp := &fakeConnectorServer{}
	tcp := &fakeConnectorServer{}
	cfg := ServerConfig{
		DirectoryAgents:            []slp.DirectoryAgentInfo{slp.NewDirectoryAgentInfo("10.0.0.1", slp.NewScopes("DEFAULT"), slp.NewAttributes(), "en", 427, 0)},
		Scopes:                     slp.NewScopes("DEFAULT"),
		ExpiredServicesPurgePeriod: 20 * time.Millisecond,
	}
	s := NewServer(cfg, cache, ads, udp, tcp, nil, nil)

	info, err := slp.NewServiceInfo(slp.NewServiceURL("service:printer://p1", 1), slp.NewScopes("DEFAULT"), slp.NewAttributes(), "en", time.Now().Add(-2*time.Second))
	require.NoError(t, err)
	_, err = cache.Put(info)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	require.Eventually(t, func() bool { return cache.Len() == 0 }, time.Second, 10*time.Millisecond)
}
