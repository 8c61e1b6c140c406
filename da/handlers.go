package da

import (
	"time"

	"github.com/slpgo/slpd/filter"
	"github.com/slpgo/slpd/log"
	"github.com/slpgo/slpd/metrics"
	"github.com/slpgo/slpd/slp"
	"github.com/slpgo/slpd/wire"
)

// Handlers implements the four request handlers of §4.3, grounded in
// StandardDirectoryAgentServer's handleMulticastSrvRqst/handleTCPSrvRqst/
// handleTCPSrvReg/handleTCPSrvDeReg.
type Handlers struct {
	cache   *ServiceInfoCache
	das     *directoryAgents
	ads     wire.Advertiser
	scopes  slp.Scopes // this DA's configured, registration-side scope set
	clock   func() time.Time
	metrics *metrics.Metrics // nil disables metrics
}

func newHandlers(cache *ServiceInfoCache, das *directoryAgents, ads wire.Advertiser, scopes slp.Scopes, m *metrics.Metrics) *Handlers {
	return &Handlers{cache: cache, das: das, ads: ads, scopes: scopes, clock: time.Now, metrics: m}
}

// drop records a dispatch-level drop under reason. No-op if metrics are disabled.
func (h *Handlers) drop(reason string) {
	if h.metrics != nil {
		h.metrics.DropsByReason.WithLabelValues(reason).Inc()
	}
}

// HandleMulticastSrvRqst implements §4.3 step 1-5: drop silently on any
// unmet precondition, otherwise unicast a DAAdvert back to the requester.
func (h *Handlers) HandleMulticastSrvRqst(req wire.SrvRqst, localAddress, remoteAddress string) {
	info, ok := h.das.lookup(localAddress)
	if !ok {
		log.Debugw("dropping multicast SrvRqst: no DA bound to local address", log.M{"local": localAddress})
		h.drop("unknown_local_address")
		return
	}

	if containsResponder(req.PreviousResponders, remoteAddress) {
		log.Debugw("dropping multicast SrvRqst: responder suppression", log.M{"remote": remoteAddress})
		h.drop("responder_suppression")
		return
	}

	if !info.Scopes.WeakMatch(req.Scopes) {
		log.Debugw("dropping multicast SrvRqst: no scope overlap", log.M{"da": info.Scopes.String(), "req": req.Scopes.String()})
		h.drop("scope_mismatch")
		return
	}

	if !req.ServiceType.Equals(slp.DirectoryAgent) {
		log.Debugw("dropping multicast SrvRqst: not a directory-agent request", log.M{"type": req.ServiceType.String()})
		h.drop("wrong_service_type")
		return
	}

	advert := wire.DAAdvert{
		Xid:        req.Xid,
		Lang:       req.Lang,
		ErrorCode:  slp.Success,
		URL:        info.URL(),
		Scopes:     info.Scopes,
		Attributes: info.Attributes,
		BootTime:   info.BootTime,
	}
	if err := h.ads.UnicastDAAdvert(remoteAddress, advert); err != nil {
		log.Warnw("failed to write unicast DAAdvert", log.M{"remote": remoteAddress, "error": err.Error()})
		return
	}
	if h.metrics != nil {
		h.metrics.AdvertsSent.WithLabelValues("unicast").Inc()
	}
}

func containsResponder(previousResponders []string, host string) bool {
	for _, r := range previousResponders {
		if r == host {
			return true
		}
	}
	return false
}

// HandleTCPSrvRqst implements §4.3: reply with matches, or with
// errorCode=INVALID_REGISTRATION and an empty list for a malformed filter
// - never drop a unicast request once a binding is known.
func (h *Handlers) HandleTCPSrvRqst(req wire.SrvRqst, localAddress string, conn wire.Connection) {
	if _, ok := h.das.lookup(localAddress); !ok {
		log.Debugw("dropping TCP SrvRqst: no DA bound to local address", log.M{"local": localAddress})
		h.drop("unknown_local_address")
		return
	}

	f, err := filter.Parse(req.Filter)
	if err != nil {
		h.writeSrvRply(conn, req, slp.InvalidRegistration, nil)
		return
	}

	matches := h.cache.Match(req.ServiceType, req.Language(), req.Scopes, f)
	if h.metrics != nil {
		h.metrics.Queries.Inc()
		h.metrics.Matches.Observe(float64(len(matches)))
	}
	urls := make([]wire.URLEntry, len(matches))
	for i, m := range matches {
		urls[i] = wire.URLEntry{URL: m.URL.URL, Lifetime: m.URL.Lifetime}
	}
	h.writeSrvRply(conn, req, slp.Success, urls)
}

func (h *Handlers) writeSrvRply(conn wire.Connection, req wire.SrvRqst, code slp.ErrorCode, urls []wire.URLEntry) {
	reply := wire.SrvRply{Xid: req.Xid, Lang: req.Lang, ErrorCode: code, URLs: urls}
	if err := conn.WriteSrvRply(reply); err != nil {
		log.Warnw("failed to write SrvRply", log.M{"error": err.Error()})
	}
}

// HandleTCPSrvReg implements §4.3: admit only if the DA owns every scope
// of the service; fresh registrations replace, non-fresh ones merge
// attributes into the existing entry.
func (h *Handlers) HandleTCPSrvReg(reg wire.SrvReg, conn wire.Connection) {
	service, err := slp.NewServiceInfo(reg.URL, reg.Scopes, reg.Attributes, reg.Language(), h.clock())
	if err != nil {
		h.writeSrvAck(conn, reg.Xid, reg.Lang, slp.InvalidRegistration)
		return
	}

	if !h.scopes.Match(service.Scopes) {
		log.Debugw("rejecting SrvReg: scope mismatch", log.M{"da": h.scopes.String(), "service": service.Scopes.String()})
		h.writeSrvAck(conn, reg.Xid, reg.Lang, slp.ScopeNotSupported)
		return
	}

	var cacheErr error
	if reg.Fresh {
		_, cacheErr = h.cache.Put(service)
	} else {
		_, cacheErr = h.cache.AddAttributes(service.Key, service.Attributes)
	}
	if cacheErr != nil {
		h.writeSrvAck(conn, reg.Xid, reg.Lang, slp.CodeOf(cacheErr))
		return
	}
	if h.metrics != nil {
		if reg.Fresh {
			h.metrics.Registrations.Inc()
		} else {
			h.metrics.Updates.Inc()
		}
	}
	h.writeSrvAck(conn, reg.Xid, reg.Lang, slp.Success)
}

// HandleTCPSrvDeReg implements §4.3: a partial deregistration (Updating)
// removes named attributes/values, a full one removes the registration.
func (h *Handlers) HandleTCPSrvDeReg(dereg wire.SrvDeReg, conn wire.Connection) {
	service, err := slp.NewServiceInfo(dereg.URL, dereg.Scopes, dereg.Attributes, dereg.Language(), h.clock())
	if err != nil {
		h.writeSrvAck(conn, dereg.Xid, dereg.Lang, slp.InvalidRegistration)
		return
	}

	if !h.scopes.Match(service.Scopes) {
		log.Debugw("rejecting SrvDeReg: scope mismatch", log.M{"da": h.scopes.String(), "service": service.Scopes.String()})
		h.writeSrvAck(conn, dereg.Xid, dereg.Lang, slp.ScopeNotSupported)
		return
	}

	if dereg.Updating {
		if _, cacheErr := h.cache.RemoveAttributes(service.Key, service.Attributes); cacheErr != nil {
			h.writeSrvAck(conn, dereg.Xid, dereg.Lang, slp.CodeOf(cacheErr))
			return
		}
		if h.metrics != nil {
			h.metrics.Updates.Inc()
		}
	} else {
		h.cache.Remove(service.Key)
		if h.metrics != nil {
			h.metrics.Deregistrations.Inc()
		}
	}
	h.writeSrvAck(conn, dereg.Xid, dereg.Lang, slp.Success)
}

func (h *Handlers) writeSrvAck(conn wire.Connection, xid uint16, lang string, code slp.ErrorCode) {
	if err := conn.WriteSrvAck(wire.SrvAck{Xid: xid, Lang: lang, ErrorCode: code}); err != nil {
		log.Warnw("failed to write SrvAck", log.M{"error": err.Error()})
	}
}
