package pvpchan

import (
    "context"
    "encoding/json"
    "strings"

    "github.com/park285/xo-kakao-bot/internal/obslog"
    "github.com/redis/go-redis/v9"
    "go.uber.org/zap"
)

type RedisStore struct{ rdb redis.UniversalClient }

func NewRedisStore(rdb redis.UniversalClient) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) keyMeta(token string) string  { return "inv:" + strings.TrimSpace(token) }
func (s *RedisStore) keyClaim(token string) string { return s.keyMeta(token) + ":session" }
func (s *RedisStore) keyLobby() string             { return "inv:lobby" }

func (s *RedisStore) CreateInvitation(ctx context.Context, inv *Invitation) (bool, error) {
    raw, err := json.Marshal(inv)
    if err != nil { return false, err }
    return s.rdb.SetNX(ctx, s.keyMeta(inv.Token), raw, ttlInvitation).Result()
}

func (s *RedisStore) SaveInvitation(ctx context.Context, inv *Invitation) error {
    raw, err := json.Marshal(inv)
    if err != nil { return err }
    if err := s.rdb.Set(ctx, s.keyMeta(inv.Token), raw, ttlInvitation).Err(); err != nil { return err }
    // ensure TTL on companion
    if err := s.rdb.Expire(ctx, s.keyClaim(inv.Token), ttlInvitation).Err(); err != nil {
        obslog.L().Debug("lobby_claim_expire_error", zap.String("token", inv.Token), zap.Error(err))
    }
    return nil
}

func (s *RedisStore) LoadInvitation(ctx context.Context, token string) (*Invitation, error) {
    raw, err := s.rdb.Get(ctx, s.keyMeta(token)).Bytes()
    if err == redis.Nil { return nil, nil }
    if err != nil { return nil, err }
    var inv Invitation
    if err := json.Unmarshal(raw, &inv); err != nil { return nil, err }
    return &inv, nil
}

func (s *RedisStore) Claim(ctx context.Context, token, sessionID string) (string, error) {
    ok, err := s.rdb.SetNX(ctx, s.keyClaim(token), sessionID, ttlInvitation).Result()
    if err != nil { return "", err }
    if ok { return sessionID, nil }
    return s.Bound(ctx, token)
}

func (s *RedisStore) Bound(ctx context.Context, token string) (string, error) {
    id, err := s.rdb.Get(ctx, s.keyClaim(token)).Result()
    if err == redis.Nil { return "", nil }
    return id, err
}

func (s *RedisStore) Forget(ctx context.Context, token string) error {
    pipe := s.rdb.TxPipeline()
    pipe.Del(ctx, s.keyMeta(token), s.keyClaim(token))
    pipe.SRem(ctx, s.keyLobby(), token)
    _, err := pipe.Exec(ctx)
    return err
}

func (s *RedisStore) Touch(ctx context.Context, token string) error {
    pipe := s.rdb.Pipeline()
    pipe.Expire(ctx, s.keyMeta(token), ttlInvitation)
    pipe.Expire(ctx, s.keyClaim(token), ttlInvitation)
    _, err := pipe.Exec(ctx)
    return err
}

// Lobby index helpers
func (s *RedisStore) AddLobby(ctx context.Context, token string) error {
    if strings.TrimSpace(token) == "" { return nil }
    if err := s.rdb.SAdd(ctx, s.keyLobby(), token).Err(); err != nil { return err }
    // refresh TTL of the lobby index
    if err := s.rdb.Expire(ctx, s.keyLobby(), ttlInvitation).Err(); err != nil {
        obslog.L().Debug("lobby_index_expire_error", zap.Error(err))
    }
    return nil
}

func (s *RedisStore) RemoveLobby(ctx context.Context, token string) error {
    if strings.TrimSpace(token) == "" { return nil }
    return s.rdb.SRem(ctx, s.keyLobby(), token).Err()
}

func (s *RedisStore) LobbyTokens(ctx context.Context) ([]string, error) {
    return s.rdb.SMembers(ctx, s.keyLobby()).Result()
}
