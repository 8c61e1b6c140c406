package da

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slpgo/slpd/slp"
	"github.com/slpgo/slpd/wire"
)

type fakeConn struct {
	replies []wire.SrvRply
	acks    []wire.SrvAck
}

func (c *fakeConn) WriteSrvRply(r wire.SrvRply) error { c.replies = append(c.replies, r); return nil }
func (c *fakeConn) WriteSrvAck(a wire.SrvAck) error    { c.acks = append(c.acks, a); return nil }
func (c *fakeConn) Close() error                       { return nil }

type fakeAdvertiser struct {
	unicast   []wire.DAAdvert
	multicast []wire.DAAdvert
}

func (a *fakeAdvertiser) UnicastDAAdvert(remote string, advert wire.DAAdvert) error {
	a.unicast = append(a.unicast, advert)
	return nil
}

func (a *fakeAdvertiser) MulticastDAAdvert(advert wire.DAAdvert) error {
	a.multicast = append(a.multicast, advert)
	return nil
}

func newTestHandlers(t *testing.T) (*Handlers, *fakeAdvertiser) {
	t.Helper()
	cache := NewServiceInfoCache()
	das := newDirectoryAgents([]slp.DirectoryAgentInfo{
		slp.NewDirectoryAgentInfo("10.0.0.1", slp.NewScopes("DEFAULT"), slp.NewAttributes(), "en", 427, 1000),
	})
	ads := &fakeAdvertiser{}
	return newHandlers(cache, das, ads, slp.NewScopes("DEFAULT"), nil), ads
}

func TestDispatcherDiscoveryViaMulticast(t *testing.T) {
	handlers, ads := newTestHandlers(t)
	d := NewDispatcher(handlers, nil)

	req := wire.SrvRqst{
		Xid:         7,
		Lang:        "en",
		ServiceType: slp.DirectoryAgent,
		Scopes:      slp.NewScopes("DEFAULT"),
	}
	d.Handle(wire.MessageEvent{
		Message:       req,
		Multicast:     true,
		LocalAddress:  "10.0.0.1",
		RemoteAddress: "10.0.0.9",
	})

	require.Len(t, ads.unicast, 1)
	advert := ads.unicast[0]
	assert.Equal(t, uint16(7), advert.Xid)
	assert.Equal(t, "en", advert.Lang)
	assert.Equal(t, "service:directory-agent://10.0.0.1", advert.URL)
	assert.Equal(t, slp.Success, advert.ErrorCode)
}

func TestDispatcherResponderSuppression(t *testing.T) {
	handlers, ads := newTestHandlers(t)
	d := NewDispatcher(handlers, nil)

	req := wire.SrvRqst{
		Xid:                7,
		ServiceType:        slp.DirectoryAgent,
		Scopes:             slp.NewScopes("DEFAULT"),
		PreviousResponders: []string{"10.0.0.1"},
	}
	d.Handle(wire.MessageEvent{
		Message:       req,
		Multicast:     true,
		LocalAddress:  "10.0.0.1",
		RemoteAddress: "10.0.0.1",
	})

	assert.Empty(t, ads.unicast)
}

func TestDispatcherUnknownLocalAddressDrops(t *testing.T) {
	handlers, ads := newTestHandlers(t)
	d := NewDispatcher(handlers, nil)

	req := wire.SrvRqst{ServiceType: slp.DirectoryAgent, Scopes: slp.NewScopes("DEFAULT")}
	d.Handle(wire.MessageEvent{Message: req, Multicast: true, LocalAddress: "10.0.0.99"})

	assert.Empty(t, ads.unicast)
}

func TestDispatcherRegisterThenQuery(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	d := NewDispatcher(handlers, nil)

	attrs, err := slp.AttributesFrom("(color=true),(ppm=10)")
	require.NoError(t, err)
	reg := wire.SrvReg{
		Xid:        1,
		Lang:       "en",
		URL:        slp.NewServiceURL("service:printer://p1", 60),
		Scopes:     slp.NewScopes("DEFAULT"),
		Attributes: attrs,
		Fresh:      true,
	}
	conn := &fakeConn{}
	d.Handle(wire.MessageEvent{Message: reg, LocalAddress: "10.0.0.1", Conn: conn})

	require.Len(t, conn.acks, 1)
	assert.Equal(t, slp.Success, conn.acks[0].ErrorCode)

	printerType, err := slp.ParseServiceType("service:printer")
	require.NoError(t, err)
	req := wire.SrvRqst{
		Xid:         2,
		Lang:        "en",
		ServiceType: printerType,
		Scopes:      slp.NewScopes("DEFAULT"),
		Filter:      "(ppm>=5)",
	}
	d.Handle(wire.MessageEvent{Message: req, LocalAddress: "10.0.0.1", Conn: conn})

	require.Len(t, conn.replies, 1)
	reply := conn.replies[0]
	assert.Equal(t, slp.Success, reply.ErrorCode)
	require.Len(t, reply.URLs, 1)
	assert.Equal(t, "service:printer://p1", reply.URLs[0].URL)
}

func TestDispatcherScopeRejection(t *testing.T) {
	cache := NewServiceInfoCache()
	das := newDirectoryAgents([]slp.DirectoryAgentInfo{
		slp.NewDirectoryAgentInfo("10.0.0.1", slp.NewScopes("A"), slp.NewAttributes(), "en", 427, 1000),
	})
	handlers := newHandlers(cache, das, &fakeAdvertiser{}, slp.NewScopes("A"), nil)
	d := NewDispatcher(handlers, nil)

	reg := wire.SrvReg{
		URL:    slp.NewServiceURL("service:printer://p1", 60),
		Scopes: slp.NewScopes("B"),
		Fresh:  true,
	}
	conn := &fakeConn{}
	d.Handle(wire.MessageEvent{Message: reg, LocalAddress: "10.0.0.1", Conn: conn})

	require.Len(t, conn.acks, 1)
	assert.Equal(t, slp.ScopeNotSupported, conn.acks[0].ErrorCode)
	assert.Equal(t, 0, cache.Len())
}

func TestDispatcherMalformedFilterReturnsErrorReplyNotDrop(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	d := NewDispatcher(handlers, nil)

	req := wire.SrvRqst{ServiceType: slp.DirectoryAgent, Filter: "(("}
	conn := &fakeConn{}
	d.Handle(wire.MessageEvent{Message: req, LocalAddress: "10.0.0.1", Conn: conn})

	require.Len(t, conn.replies, 1)
	assert.Equal(t, slp.InvalidRegistration, conn.replies[0].ErrorCode)
	assert.Empty(t, conn.replies[0].URLs)
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(key string, now time.Time) bool { return false }

func TestDispatcherRateLimitedSrvRegIsDropped(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	d := NewDispatcher(handlers, denyAllLimiter{})

	reg := wire.SrvReg{
		URL:    slp.NewServiceURL("service:printer://p1", 60),
		Scopes: slp.NewScopes("DEFAULT"),
		Fresh:  true,
	}
	conn := &fakeConn{}
	d.Handle(wire.MessageEvent{Message: reg, LocalAddress: "10.0.0.1", RemoteAddress: "10.0.0.9", Conn: conn})

	assert.Empty(t, conn.acks)
}

func TestDispatcherDropsUnhandledUnicastMessageType(t *testing.T) {
	handlers, _ := newTestHandlers(t)
	d := NewDispatcher(handlers, nil)

	conn := &fakeConn{}
	d.Handle(wire.MessageEvent{Message: wire.SrvAck{ErrorCode: slp.Success}, LocalAddress: "10.0.0.1", Conn: conn})

	assert.Empty(t, conn.replies)
	assert.Empty(t, conn.acks)
}
