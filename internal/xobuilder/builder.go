package xobuilder

import (
    "context"
    "fmt"
    "time"

    "github.com/park285/xo-kakao-bot/internal/config"
    "github.com/park285/xo-kakao-bot/internal/metrics"
    "github.com/park285/xo-kakao-bot/internal/obslog"
    "github.com/park285/xo-kakao-bot/internal/pvpchan"
    "github.com/park285/xo-kakao-bot/internal/pvpxo"
    "github.com/park285/xo-kakao-bot/internal/registry"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"
)

// Deps is the session stack selected by STORE_BACKEND.
type Deps struct {
    Games    *pvpxo.Manager
    Registry registry.Registry
    Metrics  *metrics.Metrics
    Redis    redis.UniversalClient // nil for the memory backend

    memory *registry.Memory
    ttl    time.Duration
}

func New(ctx context.Context, cfg *config.AppConfig, m *metrics.Metrics) (*Deps, error) {
    if cfg == nil {
        return nil, fmt.Errorf("nil config")
    }
    d := &Deps{Metrics: m, ttl: cfg.SessionTTL}

    var store pvpchan.Store
    switch cfg.StoreBackend {
    case config.StoreRedis:
        opts, err := redis.ParseURL(cfg.RedisURL)
        if err != nil {
            return nil, fmt.Errorf("parse redis url: %w", err)
        }
        rdb := redis.NewClient(opts)
        pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
        defer cancel()
        if err := rdb.Ping(pctx).Err(); err != nil {
            _ = rdb.Close()
            return nil, fmt.Errorf("ping redis: %w", err)
        }
        d.Redis = rdb
        d.Registry = registry.NewRedis(rdb, registry.WithTTL(cfg.SessionTTL))
        store = pvpchan.NewRedisStore(rdb)
        obslog.L().Info("store_backend", zap.String("backend", "redis"), zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
    default:
        d.memory = registry.NewMemory()
        d.Registry = d.memory
        store = pvpchan.NewMemoryStore()
        obslog.L().Info("store_backend", zap.String("backend", "memory"))
    }

    lobby := pvpchan.NewManager(store, d.Registry)
    d.Games = pvpxo.NewManager(d.Registry, lobby,
        pvpxo.WithResetPolicy(cfg.ResetPolicy),
        pvpxo.WithMetrics(m),
    )
    m.ActiveSessions(func() float64 {
        n, err := d.Registry.Count(context.Background())
        if err != nil {
            return 0
        }
        return float64(n)
    })
    return d, nil
}

// RunJanitor prunes idle in-memory sessions until ctx ends. Redis expires keys on its own.
func (d *Deps) RunJanitor(ctx context.Context, every time.Duration) {
    if d.memory == nil || d.ttl <= 0 {
        return
    }
    if every <= 0 {
        every = time.Minute
    }
    t := time.NewTicker(every)
    defer t.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case now := <-t.C:
            if n := d.memory.Prune(ctx, d.ttl, now); n > 0 {
                obslog.L().Info("xo_sessions_pruned", zap.Int("count", n))
            }
        }
    }
}

func (d *Deps) Close() error {
    if d == nil || d.Redis == nil {
        return nil
    }
    return d.Redis.Close()
}
