// Package app wires a directory agent's configuration, transport,
// admin surface, and metrics together and runs its lifecycle, grounded
// in MrSnakeDoc-jump-blueprint's internal/app.App.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/slpgo/slpd/admin"
	"github.com/slpgo/slpd/config"
	"github.com/slpgo/slpd/da"
	"github.com/slpgo/slpd/diag"
	"github.com/slpgo/slpd/log"
	"github.com/slpgo/slpd/metrics"
	"github.com/slpgo/slpd/ratelimit"
	"github.com/slpgo/slpd/slp"
	"github.com/slpgo/slpd/transport"
	"github.com/slpgo/slpd/wire"
)

const shutdownTimeout = 10 * time.Second

// Options configures the process-level knobs that have no place in the
// DA's own YAML config: where to read it from, where the admin HTTP
// surface listens, and an optional Redis address for shared rate
// limiting across multiple DA processes.
type Options struct {
	ConfigPath string
	AdminAddr  string // empty disables the admin server
	RedisAddr  string // empty disables the Redis-backed rate limiter
}

// App owns every long-lived component of a running directory agent.
type App struct {
	cfg       config.Config
	adminAddr string
	cache     *da.ServiceInfoCache
	srv       *da.Server
	httpd     *admin.Server
	redis     *goredis.Client
}

// New loads configuration and binds every network component, but does
// not start serving until Run is called. Multiple resolved bind
// addresses (from a wildcard "addresses" entry) each get their own
// multicast-UDP and TCP socket, fanned into the server through
// transport.Multi; unicast advert replies go out over the first
// address's send socket.
func New(opts Options) (*App, error) {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		loaded, err := config.Load(opts.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("app: loading config: %w", err)
		}
		cfg = loaded
	}

	addresses, err := config.ExpandAddresses(cfg.Addresses)
	if err != nil {
		return nil, fmt.Errorf("app: expanding bind addresses: %w", err)
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("app: no bind addresses resolved from %v", cfg.Addresses)
	}

	cache := da.NewServiceInfoCache()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg, func() float64 { return float64(cache.Len()) })

	memLimiter := ratelimit.NewMemory(ratelimit.MemoryConfig{Burst: 20, RefillPerMin: 120})
	var limiter ratelimit.Limiter = memLimiter
	var redisClient *goredis.Client
	if opts.RedisAddr != "" {
		redisClient = goredis.NewClient(&goredis.Options{Addr: opts.RedisAddr})
		redisLimiter := ratelimit.NewRedis(redisClient, 20, time.Minute)
		limiter = ratelimit.NewFallback(redisLimiter, memLimiter, func(err error) {
			log.Warnw("rate limiter falling back to memory", log.M{"error": err.Error()})
		})
	}

	das := make([]slp.DirectoryAgentInfo, len(addresses))
	multicastServers := make([]wire.ConnectorServer, len(addresses))
	tcpServers := make([]wire.ConnectorServer, len(addresses))
	var unicastSender *transport.UDPConnector
	var multicastSender *transport.UDPConnector

	for i, addr := range addresses {
		das[i] = slp.NewDirectoryAgentInfo(addr, cfg.Scopes, cfg.Attributes, cfg.Language, cfg.Port, 0)

		mc, err := transport.NewMulticastUDPConnector(addr, slp.MulticastGroup, cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("app: binding multicast UDP on %s: %w", addr, err)
		}
		multicastServers[i] = mc
		if multicastSender == nil {
			multicastSender = mc
		}

		tcp, err := transport.NewTCPConnector(addr, cfg.Port)
		if err != nil {
			return nil, fmt.Errorf("app: binding TCP on %s: %w", addr, err)
		}
		tcpServers[i] = tcp

		if unicastSender == nil {
			unicastSender, err = transport.NewUnicastUDPConnector(addr, 0)
			if err != nil {
				return nil, fmt.Errorf("app: opening unicast UDP send socket on %s: %w", addr, err)
			}
		}
	}

	ads := transport.NewAdvertiser(unicastSender, multicastSender, slp.MulticastGroup, cfg.Port)

	srv := da.NewServer(da.ServerConfig{
		DirectoryAgents:            das,
		Scopes:                     cfg.Scopes,
		AdvertisementPeriod:        cfg.AdvertisementPeriod,
		ExpiredServicesPurgePeriod: cfg.ExpiredServicesPurgePeriod,
	}, cache, ads, transport.NewMulti(multicastServers...), transport.NewMulti(tcpServers...), m, limiter)

	var httpd *admin.Server
	if opts.AdminAddr != "" {
		httpd = admin.New(opts.AdminAddr, cache, reg)
	}

	return &App{cfg: cfg, adminAddr: opts.AdminAddr, cache: cache, srv: srv, httpd: httpd, redis: redisClient}, nil
}

// Run starts every component and blocks until SIGINT/SIGTERM, then stops
// the directory agent, the admin server and the Redis client, in that
// order.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.srv.Start(ctx); err != nil {
		log.Errorw("failed to start directory agent", log.M{"error": err.Error(), "goroutines": diag.DumpGoroutines()})
		return fmt.Errorf("app: starting directory agent: %w", err)
	}
	log.Infow("directory agent started", log.M{"port": a.cfg.Port, "scopes": a.cfg.Scopes.String()})

	if a.httpd != nil {
		a.httpd.Start()
		log.Infow("admin server started", log.M{"addr": a.adminAddr})
	}

	<-ctx.Done()
	log.Infow("shutting down", log.M{})

	if err := a.srv.Stop(); err != nil {
		log.Warnw("error stopping directory agent", log.M{"error": err.Error()})
	}

	if a.httpd != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.httpd.Stop(shutdownCtx); err != nil {
			log.Warnw("error stopping admin server", log.M{"error": err.Error()})
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Warnw("error closing redis client", log.M{"error": err.Error()})
		}
	}

	log.Infow("stopped cleanly", log.M{})
	return nil
}
