package da

import (
	"math"
	"math/rand"

	"github.com/slpgo/slpd/log"
	"github.com/slpgo/slpd/safemap"
	"github.com/slpgo/slpd/slp"
)

// ServiceListener observes ServiceInfoCache mutations. Callbacks run
// synchronously, under the cache's write lock (§5): a listener must not
// call back into the same Cache, and must not block for long.
type ServiceListener interface {
	ServiceAdded(info slp.ServiceInfo)
	ServiceRemoved(info slp.ServiceInfo)
	ServiceUpdated(previous, current slp.ServiceInfo)
}

// ServiceListenerFuncs adapts plain functions to a ServiceListener; a nil
// field is simply skipped.
type ServiceListenerFuncs struct {
	OnAdded   func(info slp.ServiceInfo)
	OnRemoved func(info slp.ServiceInfo)
	OnUpdated func(previous, current slp.ServiceInfo)
}

func (f ServiceListenerFuncs) ServiceAdded(info slp.ServiceInfo) {
	if f.OnAdded != nil {
		f.OnAdded(info)
	}
}

func (f ServiceListenerFuncs) ServiceRemoved(info slp.ServiceInfo) {
	if f.OnRemoved != nil {
		f.OnRemoved(info)
	}
}

func (f ServiceListenerFuncs) ServiceUpdated(previous, current slp.ServiceInfo) {
	if f.OnUpdated != nil {
		f.OnUpdated(previous, current)
	}
}

// ListenerSub identifies a registered listener for later removal, the
// same token-based pattern as actor.EventStream's Subscribe/Unsubscribe.
type ListenerSub struct {
	id uint32
}

type listenerSet struct {
	subs *safemap.SafeMap[*ListenerSub, ServiceListener]
}

func newListenerSet() *listenerSet {
	return &listenerSet{subs: safemap.New[*ListenerSub, ServiceListener]()}
}

func (l *listenerSet) add(listener ServiceListener) *ListenerSub {
	sub := &ListenerSub{id: uint32(rand.Intn(math.MaxUint32))}
	l.subs.Set(sub, listener)
	return sub
}

func (l *listenerSet) remove(sub *ListenerSub) {
	l.subs.Delete(sub)
}

// fireAdded/fireRemoved/fireUpdated run every registered listener in turn,
// recovering individual panics so one broken listener cannot corrupt the
// mutation already committed to the cache (§4.1, §7 "listener exceptions
// must be caught and logged without aborting the mutation").
func (l *listenerSet) fireAdded(info slp.ServiceInfo) {
	l.subs.ForEach(func(_ *ListenerSub, listener ServiceListener) {
		safeCall(func() { listener.ServiceAdded(info) })
	})
}

func (l *listenerSet) fireRemoved(info slp.ServiceInfo) {
	l.subs.ForEach(func(_ *ListenerSub, listener ServiceListener) {
		safeCall(func() { listener.ServiceRemoved(info) })
	})
}

func (l *listenerSet) fireUpdated(previous, current slp.ServiceInfo) {
	l.subs.ForEach(func(_ *ListenerSub, listener ServiceListener) {
		safeCall(func() { listener.ServiceUpdated(previous, current) })
	})
}

func safeCall(f func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorw("service listener panicked", log.M{"recover": r})
		}
	}()
	f()
}
