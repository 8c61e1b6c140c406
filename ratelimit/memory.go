package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Limiter decides whether the caller identified by key may proceed.
type Limiter interface {
	Allow(key string, now time.Time) bool
}

// MemoryConfig configures a token bucket per key.
type MemoryConfig struct {
	Burst         int
	RefillPerMin  int
	SweepInterval time.Duration
	IdleTTL       time.Duration
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	lastRef  time.Time
	lastSeen time.Time
}

// Memory is an in-process token bucket limiter, one bucket per key.
// Grounded in MrSnakeDoc-jump-blueprint's mw.limiter.
type Memory struct {
	cfg       MemoryConfig
	rate      float64
	capacity  float64
	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func NewMemory(cfg MemoryConfig) *Memory {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerMin < 1 {
		cfg.RefillPerMin = 1
	}
	return &Memory{
		cfg:      cfg,
		rate:     float64(cfg.RefillPerMin) / 60.0,
		capacity: float64(cfg.Burst),
		buckets:  make(map[string]*bucket, 1024),
	}
}

func (m *Memory) Allow(key string, now time.Time) bool {
	m.sweepMaybe(now)
	b := m.getBucket(key, now)

	b.mu.Lock()
	defer b.mu.Unlock()

	if elapsed := now.Sub(b.lastRef).Seconds(); elapsed > 0 {
		b.tokens = math.Min(m.capacity, b.tokens+elapsed*m.rate)
		b.lastRef = now
	}
	if b.tokens < 1.0 {
		return false
	}
	b.tokens -= 1.0
	b.lastSeen = now
	return true
}

func (m *Memory) getBucket(key string, now time.Time) *bucket {
	m.mu.Lock()
	defer m.mu.Unlock()
	b := m.buckets[key]
	if b == nil {
		b = &bucket{tokens: m.capacity, lastRef: now, lastSeen: now}
		m.buckets[key] = b
	}
	return b
}

func (m *Memory) sweepMaybe(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now.Sub(m.lastSweep) < m.cfg.SweepInterval {
		return
	}
	for key, b := range m.buckets {
		if now.Sub(b.lastSeen) > m.cfg.IdleTTL {
			delete(m.buckets, key)
		}
	}
	m.lastSweep = now
}
