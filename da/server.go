package da

import (
	"context"
	"sync"
	"time"

	"github.com/slpgo/slpd/log"
	"github.com/slpgo/slpd/metrics"
	"github.com/slpgo/slpd/ratelimit"
	"github.com/slpgo/slpd/slp"
	"github.com/slpgo/slpd/wire"
)

// ServerConfig is everything a Server needs at construction time. Illegal
// to mutate after Start (§5 "configuration setters are illegal after
// start").
type ServerConfig struct {
	DirectoryAgents            []slp.DirectoryAgentInfo
	Scopes                     slp.Scopes
	AdvertisementPeriod        time.Duration // <= 0 disables unsolicited adverts
	ExpiredServicesPurgePeriod time.Duration // <= 0 disables the purger
}

// Server is the DA process: it owns the cache, wires the dispatcher to
// both connector servers, and runs the periodic tasks of §4.5. Grounded in
// StandardDirectoryAgentServer's doStart/doStop.
type Server struct {
	cfg     ServerConfig
	cache   *ServiceInfoCache
	das     *directoryAgents
	ads     wire.Advertiser
	udp     wire.ConnectorServer
	tcp     wire.ConnectorServer
	metrics *metrics.Metrics
	limiter ratelimit.Limiter

	dispatcher *Dispatcher

	mu             sync.Mutex
	started        bool
	advertRepeater *repeater
	purgeRepeater  *repeater
}

// NewServer constructs a Server. m may be nil to disable metrics entirely,
// and limiter may be nil to disable SrvReg rate limiting entirely;
// m's CacheSize gauge should already be wired to cache.Len.
func NewServer(cfg ServerConfig, cache *ServiceInfoCache, ads wire.Advertiser, udp, tcp wire.ConnectorServer, m *metrics.Metrics, limiter ratelimit.Limiter) *Server {
	return &Server{
		cfg:     cfg,
		cache:   cache,
		das:     newDirectoryAgents(cfg.DirectoryAgents),
		ads:     ads,
		udp:     udp,
		tcp:     tcp,
		metrics: m,
		limiter: limiter,
	}
}

// Start binds both connector servers and, on success, emits the boot
// DAAdvert and starts the periodic tasks. Idempotent: calling Start twice
// is a no-op on the second call. Bind failures propagate to the caller and
// leave the server stopped (§7.4).
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}

	bootTime := time.Now().Unix()
	for i := range s.cfg.DirectoryAgents {
		s.cfg.DirectoryAgents[i].BootTime = bootTime
	}
	s.das = newDirectoryAgents(s.cfg.DirectoryAgents)

	handlers := newHandlers(s.cache, s.das, s.ads, s.cfg.Scopes, s.metrics)
	s.dispatcher = NewDispatcher(handlers, s.limiter)

	s.udp.AddListener(s.dispatcher)
	s.tcp.AddListener(s.dispatcher)

	if err := s.udp.Start(ctx); err != nil {
		s.udp.RemoveListener(s.dispatcher)
		s.tcp.RemoveListener(s.dispatcher)
		return err
	}
	if err := s.tcp.Start(ctx); err != nil {
		_ = s.udp.Stop()
		s.udp.RemoveListener(s.dispatcher)
		s.tcp.RemoveListener(s.dispatcher)
		return err
	}

	s.started = true
	for _, info := range s.das.all() {
		s.multicastAdvert(info, slp.Success)
	}

	if s.cfg.AdvertisementPeriod > 0 {
		s.advertRepeater = startRepeater(s.cfg.AdvertisementPeriod, s.sendUnsolicitedAdverts)
	}
	if s.cfg.ExpiredServicesPurgePeriod > 0 {
		s.purgeRepeater = startRepeater(s.cfg.ExpiredServicesPurgePeriod, s.runPurge)
	}
	return nil
}

// Stop cancels the scheduler first, then sends the shutdown DAAdvert,
// then detaches the dispatcher from both servers and stops them (§5).
// Idempotent; inner failures are logged and swallowed so teardown always
// completes (§7.4).
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return nil
	}

	if s.advertRepeater != nil {
		s.advertRepeater.Stop()
		s.advertRepeater = nil
	}
	if s.purgeRepeater != nil {
		s.purgeRepeater.Stop()
		s.purgeRepeater = nil
	}

	s.sendShutdownAdverts()

	s.udp.RemoveListener(s.dispatcher)
	s.tcp.RemoveListener(s.dispatcher)

	if err := s.tcp.Stop(); err != nil {
		log.Warnw("error stopping TCP connector server", log.M{"error": err.Error()})
	}
	if err := s.udp.Stop(); err != nil {
		log.Warnw("error stopping UDP connector server", log.M{"error": err.Error()})
	}

	s.started = false
	return nil
}

func (s *Server) sendShutdownAdverts() {
	for _, info := range s.das.all() {
		info.BootTime = 0 // bootTime=0 signals "going down" (§4.5)
		s.multicastAdvert(info, slp.Success)
	}
}

func (s *Server) sendUnsolicitedAdverts() {
	for _, info := range s.das.all() {
		s.multicastAdvert(info, slp.Success)
	}
}

func (s *Server) multicastAdvert(info slp.DirectoryAgentInfo, code slp.ErrorCode) {
	advert := wire.DAAdvert{
		ErrorCode:  code,
		URL:        info.URL(),
		Scopes:     info.Scopes,
		Attributes: info.Attributes,
		BootTime:   info.BootTime,
		Lang:       info.Language,
	}
	if err := s.ads.MulticastDAAdvert(advert); err != nil {
		log.Warnw("failed to send multicast DAAdvert", log.M{"address": info.Address, "error": err.Error()})
		return
	}
	if s.metrics != nil {
		s.metrics.AdvertsSent.WithLabelValues("multicast").Inc()
	}
}

func (s *Server) runPurge() {
	removed := s.cache.Purge(time.Now())
	if s.metrics != nil {
		s.metrics.PurgeRuns.Inc()
		s.metrics.Purged.Add(float64(len(removed)))
	}
	if len(removed) > 0 {
		log.Debugw("purged expired services", log.M{"count": len(removed)})
	}
}
