package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slpgo/slpd/slp"
	"github.com/slpgo/slpd/wire"
)

func TestUDPConnectorRoundTrip(t *testing.T) {
	server, err := NewUnicastUDPConnector("127.0.0.1", 0)
	require.NoError(t, err)
	defer server.Stop()

	received := make(chan wire.MessageEvent, 1)
	server.AddListener(wire.ListenerFunc(func(e wire.MessageEvent) { received <- e }))
	require.NoError(t, server.Start(context.Background()))

	client, err := net.DialUDP("udp", nil, server.conn.LocalAddr().(*net.UDPAddr))
	require.NoError(t, err)
	defer client.Close()

	scopes := slp.NewScopes("DEFAULT", "eng")
	data, err := encodeDatagram(envelope{Message: wire.SrvRqst{Xid: 42, Lang: "en", Scopes: scopes}})
	require.NoError(t, err)
	_, err = client.Write(data)
	require.NoError(t, err)

	select {
	case e := <-received:
		req, ok := e.Message.(wire.SrvRqst)
		require.True(t, ok)
		assert.Equal(t, uint16(42), req.Xid)
		assert.False(t, e.Multicast)
		assert.True(t, scopes.Match(req.Scopes))
		assert.True(t, req.Scopes.Match(scopes))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for datagram")
	}
}

func TestAdvertiserUnicastDAAdvert(t *testing.T) {
	listener, err := NewUnicastUDPConnector("127.0.0.1", 0)
	require.NoError(t, err)
	defer listener.Stop()

	sender, err := NewUnicastUDPConnector("127.0.0.1", 0)
	require.NoError(t, err)
	defer sender.Stop()

	ads := NewAdvertiser(sender, sender, "127.0.0.1", listener.conn.LocalAddr().(*net.UDPAddr).Port)

	received := make(chan wire.MessageEvent, 1)
	listener.AddListener(wire.ListenerFunc(func(e wire.MessageEvent) { received <- e }))
	require.NoError(t, listener.Start(context.Background()))

	scopes := slp.NewScopes("DEFAULT", "eng")
	attrs := slp.NewAttributes()
	attrs.SetValues("service:directory-agent.tcp-port", slp.IntValue(427))

	require.NoError(t, ads.UnicastDAAdvert("127.0.0.1", wire.DAAdvert{
		URL:        "service:directory-agent://127.0.0.1",
		Scopes:     scopes,
		Attributes: attrs,
	}))

	select {
	case e := <-received:
		advert, ok := e.Message.(wire.DAAdvert)
		require.True(t, ok)
		assert.Equal(t, "service:directory-agent://127.0.0.1", advert.URL)
		assert.True(t, scopes.Match(advert.Scopes))
		assert.True(t, advert.Scopes.Match(scopes))
		assert.Equal(t, []string{"427"}, attrsStrings(advert.Attributes.Values("service:directory-agent.tcp-port")))
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for advert")
	}
}

func attrsStrings(values []slp.Value) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
