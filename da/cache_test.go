package da

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slpgo/slpd/filter"
	"github.com/slpgo/slpd/slp"
)

func newTestService(t *testing.T, url string, lifetime uint16, attrs string) slp.ServiceInfo {
	t.Helper()
	a, err := slp.AttributesFrom(attrs)
	require.NoError(t, err)
	info, err := slp.NewServiceInfo(slp.NewServiceURL(url, lifetime), slp.NewScopes("DEFAULT"), a, "en", time.Now())
	require.NoError(t, err)
	return info
}

func TestCachePutRejectsEmptyScopes(t *testing.T) {
	c := NewServiceInfoCache()
	info, err := slp.NewServiceInfo(slp.NewServiceURL("service:printer://p1", 60), slp.Scopes{}, slp.NewAttributes(), "en", time.Now())
	require.NoError(t, err)

	_, err = c.Put(info)
	require.Error(t, err)
	assert.Equal(t, slp.InvalidRegistration, slp.CodeOf(err))
}

func TestCachePutAndMatch(t *testing.T) {
	c := NewServiceInfoCache()
	s := newTestService(t, "service:printer://p1", 60, "(color=true),(ppm=10)")

	_, err := c.Put(s)
	require.NoError(t, err)

	all := c.Match(slp.ServiceType{}, "", slp.Scopes{}, nil)
	assert.Len(t, all, 1)
	assert.Equal(t, s.URL, all[0].URL)
}

func TestCachePutReplacementOrdersRemovedBeforeAdded(t *testing.T) {
	c := NewServiceInfoCache()
	var events []string
	c.AddServiceListener(ServiceListenerFuncs{
		OnAdded:   func(slp.ServiceInfo) { events = append(events, "added") },
		OnRemoved: func(slp.ServiceInfo) { events = append(events, "removed") },
	})

	s := newTestService(t, "service:printer://p1", 60, "")
	_, err := c.Put(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"added"}, events)

	events = nil
	_, err = c.Put(s)
	require.NoError(t, err)
	assert.Equal(t, []string{"removed", "added"}, events)
}

func TestCacheRemoveMissIsNotError(t *testing.T) {
	c := NewServiceInfoCache()
	key := slp.NewServiceKey(slp.NewServiceURL("service:printer://missing", 60), "en")
	result := c.Remove(key)
	assert.Nil(t, result.Previous)
}

func TestCacheAddAttributesFailsWhenAbsent(t *testing.T) {
	c := NewServiceInfoCache()
	key := slp.NewServiceKey(slp.NewServiceURL("service:printer://p1", 60), "en")
	_, err := c.AddAttributes(key, slp.NewAttributes())
	require.Error(t, err)
	assert.Equal(t, slp.InvalidUpdate, slp.CodeOf(err))
}

func TestCachePartialUpdatePreservesRegisteredAt(t *testing.T) {
	c := NewServiceInfoCache()
	s := newTestService(t, "service:printer://p1", 60, "(color=true)")
	_, err := c.Put(s)
	require.NoError(t, err)

	extra, err := slp.AttributesFrom("(location=floor2)")
	require.NoError(t, err)

	result, err := c.AddAttributes(s.Key, extra)
	require.NoError(t, err)
	require.NotNil(t, result.Current)
	assert.True(t, result.Current.RegisteredAt.Equal(s.RegisteredAt))
	assert.True(t, result.Current.Attributes.Has("location"))
}

func TestCacheMatchByScopeFilterAndType(t *testing.T) {
	c := NewServiceInfoCache()
	s := newTestService(t, "service:printer://p1", 60, "(ppm=10)")
	_, err := c.Put(s)
	require.NoError(t, err)

	printerType, err := slp.ParseServiceType("service:printer")
	require.NoError(t, err)

	f, err := filter.Parse("(ppm>=5)")
	require.NoError(t, err)
	matches := c.Match(printerType, "en", slp.NewScopes("DEFAULT"), f)
	assert.Len(t, matches, 1)

	fNoMatch, err := filter.Parse("(ppm>=50)")
	require.NoError(t, err)
	assert.Empty(t, c.Match(printerType, "en", slp.NewScopes("DEFAULT"), fNoMatch))
}

// A service registered in a superset of scopes must still match a request
// for a scope it covers - request.scopes must be contained in entry.scopes,
// not the other way around.
func TestCacheMatchByScopeAllowsEntrySupersetOfRequest(t *testing.T) {
	c := NewServiceInfoCache()
	a, err := slp.AttributesFrom("(ppm=10)")
	require.NoError(t, err)
	info, err := slp.NewServiceInfo(slp.NewServiceURL("service:printer://p1", 60), slp.NewScopes("DEFAULT", "eng"), a, "en", time.Now())
	require.NoError(t, err)
	_, err = c.Put(info)
	require.NoError(t, err)

	printerType, err := slp.ParseServiceType("service:printer")
	require.NoError(t, err)

	matches := c.Match(printerType, "en", slp.NewScopes("DEFAULT"), nil)
	assert.Len(t, matches, 1)
}

func TestCachePurgeRemovesExpired(t *testing.T) {
	c := NewServiceInfoCache()
	s := newTestService(t, "service:printer://p1", 1, "")
	_, err := c.Put(s)
	require.NoError(t, err)

	removed := c.Purge(s.RegisteredAt.Add(2 * time.Second))
	assert.Len(t, removed, 1)
	assert.Equal(t, 0, c.Len())
}

func TestCachePurgeKeepsPermanent(t *testing.T) {
	c := NewServiceInfoCache()
	s := newTestService(t, "service:printer://p1", slp.LifetimePermanent, "")
	_, err := c.Put(s)
	require.NoError(t, err)

	removed := c.Purge(s.RegisteredAt.Add(time.Hour * 24 * 365))
	assert.Empty(t, removed)
	assert.Equal(t, 1, c.Len())
}
