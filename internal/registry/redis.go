package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/park285/xo-kakao-bot/internal/obslog"
	"github.com/park285/xo-kakao-bot/internal/xo"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL   = 24 * time.Hour
	maxTxRetries = 16
)

var (
	ErrNilSession = errors.New("registry: nil session")
	ErrContention = errors.New("registry: too much contention on session")
)

// stored is the JSON value kept under xo:session:<id>.
type stored struct {
	CreatorID string      `json:"creator_id"`
	Session   *xo.Session `json:"session"`
}

// Redis keeps sessions as JSON values so several bot replicas can share them.
// Mutations use WATCH on the session key; the TTL is refreshed on every write.
type Redis struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	prefix string
}

type RedisOption func(*Redis)

func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) {
		if d > 0 {
			r.ttl = d
		}
	}
}

func WithKeyPrefix(p string) RedisOption {
	return func(r *Redis) {
		if p = strings.TrimSpace(p); p != "" {
			r.prefix = p
		}
	}
}

func NewRedis(rdb redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, ttl: DefaultTTL, prefix: "xo"}
	for _, o := range opts {
		o(r)
	}
	return r
}

func (r *Redis) keySession(id string) string      { return r.prefix + ":session:" + strings.TrimSpace(id) }
func (r *Redis) keyCreator(creator string) string { return r.prefix + ":creator:" + strings.TrimSpace(creator) }
func (r *Redis) keyAll() string                   { return r.prefix + ":sessions" }

func (r *Redis) Create(ctx context.Context, creatorID string, s *xo.Session) (string, error) {
	if s == nil {
		return "", ErrNilSession
	}
	creatorID = strings.TrimSpace(creatorID)
	rec := stored{CreatorID: creatorID, Session: s.Clone()}
	for i := 0; i < 3; i++ {
		id := newID()
		rec.Session.ID = id
		raw, err := json.Marshal(&rec)
		if err != nil {
			return "", err
		}
		ok, err := r.rdb.SetNX(ctx, r.keySession(id), raw, r.ttl).Result()
		if err != nil {
			return "", fmt.Errorf("create session: %w", err)
		}
		if !ok {
			continue
		}
		pipe := r.rdb.TxPipeline()
		pipe.SAdd(ctx, r.keyCreator(creatorID), id)
		pipe.Expire(ctx, r.keyCreator(creatorID), r.ttl)
		pipe.SAdd(ctx, r.keyAll(), id)
		if _, err := pipe.Exec(ctx); err != nil {
			return "", fmt.Errorf("index session: %w", err)
		}
		return id, nil
	}
	return "", fmt.Errorf("failed to allocate session id")
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *Redis) load(ctx context.Context, c getter, id string) (*stored, error) {
	raw, err := c.Get(ctx, r.keySession(id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec stored
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	if rec.Session == nil {
		return nil, fmt.Errorf("decode session %s: empty record", id)
	}
	return &rec, nil
}

func (r *Redis) FindByID(ctx context.Context, id string) (string, *xo.Session, error) {
	if strings.TrimSpace(id) == "" {
		return "", nil, nil
	}
	rec, err := r.load(ctx, r.rdb, id)
	if err != nil || rec == nil {
		return "", nil, err
	}
	return rec.CreatorID, rec.Session, nil
}

func (r *Redis) Update(ctx context.Context, id string, fn func(s *xo.Session) error) (*xo.Session, error) {
	key := r.keySession(id)
	var out *xo.Session
	txf := func(tx *redis.Tx) error {
		rec, err := r.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return xo.ErrSessionNotFound
		}
		if err := fn(rec.Session); err != nil {
			return err
		}
		raw, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, r.ttl)
			pipe.Expire(ctx, r.keyCreator(rec.CreatorID), r.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		out = rec.Session.Clone()
		return nil
	}
	for i := 0; i < maxTxRetries; i++ {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			obslog.L().Debug("registry_tx_retry", zap.String("session_id", id), zap.Int("attempt", i+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		return out, nil
	}
	return nil, ErrContention
}

func (r *Redis) Delete(ctx context.Context, id string) (bool, error) {
	key := r.keySession(id)
	for i := 0; i < maxTxRetries; i++ {
		rec, err := r.load(ctx, r.rdb, id)
		if err != nil {
			return false, err
		}
		if rec == nil {
			// expired or already gone; drop a stale index entry if any
			if err := r.rdb.SRem(ctx, r.keyAll(), strings.TrimSpace(id)).Err(); err != nil {
				obslog.L().Debug("registry_index_cleanup_error", zap.String("session_id", id), zap.Error(err))
			}
			return false, nil
		}
		bucket := r.keyCreator(rec.CreatorID)
		deleted := false
		err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
			n, err := tx.Exists(ctx, key).Result()
			if err != nil {
				return err
			}
			if n == 0 {
				return nil
			}
			members, err := tx.SCard(ctx, bucket).Result()
			if err != nil {
				return err
			}
			isMember, err := tx.SIsMember(ctx, bucket, id).Result()
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				pipe.SRem(ctx, r.keyAll(), id)
				if isMember && members == 1 {
					pipe.Del(ctx, bucket)
				} else {
					pipe.SRem(ctx, bucket, id)
				}
				return nil
			})
			if err == nil {
				deleted = true
			}
			return err
		}, key, bucket)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, err
		}
		return deleted, nil
	}
	return false, ErrContention
}

// Count reports live sessions and prunes index entries whose key expired.
func (r *Redis) Count(ctx context.Context) (int, error) {
	ids, err := r.rdb.SMembers(ctx, r.keyAll()).Result()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	pipe := r.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Exists(ctx, r.keySession(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	live := 0
	var stale []any
	for i, c := range cmds {
		if c.Val() > 0 {
			live++
		} else {
			stale = append(stale, ids[i])
		}
	}
	if len(stale) > 0 {
		if err := r.rdb.SRem(ctx, r.keyAll(), stale...).Err(); err != nil {
			obslog.L().Debug("registry_index_cleanup_error", zap.Int("stale", len(stale)), zap.Error(err))
		}
	}
	return live, nil
}

// CreatorSessions lists the ids indexed under a creator.
func (r *Redis) CreatorSessions(ctx context.Context, creatorID string) ([]string, error) {
	return r.rdb.SMembers(ctx, r.keyCreator(creatorID)).Result()
}
