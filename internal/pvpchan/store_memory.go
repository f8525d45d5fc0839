package pvpchan

import (
    "context"
    "sort"
    "strings"
    "sync"
    "time"
)

// MemoryStore backs invitations when no Redis is configured. Entries expire lazily.
type MemoryStore struct {
    mu     sync.Mutex
    now    func() time.Time
    invs   map[string]memInv
    claims map[string]string
    lobby  map[string]struct{}
}

type memInv struct {
    inv     Invitation
    expires time.Time
}

type MemoryOption func(*MemoryStore)

// WithStoreClock replaces time.Now for expiry checks.
func WithStoreClock(now func() time.Time) MemoryOption {
    return func(s *MemoryStore) { if now != nil { s.now = now } }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
    s := &MemoryStore{
        now:    time.Now,
        invs:   make(map[string]memInv),
        claims: make(map[string]string),
        lobby:  make(map[string]struct{}),
    }
    for _, o := range opts { o(s) }
    return s
}

// live must be called with mu held.
func (s *MemoryStore) live(token string) (memInv, bool) {
    e, ok := s.invs[token]
    if !ok { return memInv{}, false }
    if s.now().After(e.expires) {
        delete(s.invs, token)
        delete(s.claims, token)
        delete(s.lobby, token)
        return memInv{}, false
    }
    return e, true
}

func (s *MemoryStore) CreateInvitation(ctx context.Context, inv *Invitation) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.live(inv.Token); ok { return false, nil }
    s.invs[inv.Token] = memInv{inv: *inv, expires: s.now().Add(ttlInvitation)}
    return true, nil
}

func (s *MemoryStore) SaveInvitation(ctx context.Context, inv *Invitation) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.invs[inv.Token] = memInv{inv: *inv, expires: s.now().Add(ttlInvitation)}
    return nil
}

func (s *MemoryStore) LoadInvitation(ctx context.Context, token string) (*Invitation, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    e, ok := s.live(strings.TrimSpace(token))
    if !ok { return nil, nil }
    inv := e.inv
    return &inv, nil
}

func (s *MemoryStore) Claim(ctx context.Context, token, sessionID string) (string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if id, ok := s.claims[token]; ok { return id, nil }
    s.claims[token] = sessionID
    return sessionID, nil
}

func (s *MemoryStore) Bound(ctx context.Context, token string) (string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.live(token); !ok { return "", nil }
    return s.claims[token], nil
}

func (s *MemoryStore) Forget(ctx context.Context, token string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.invs, token)
    delete(s.claims, token)
    delete(s.lobby, token)
    return nil
}

func (s *MemoryStore) Touch(ctx context.Context, token string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    e, ok := s.live(token)
    if !ok { return nil }
    e.expires = s.now().Add(ttlInvitation)
    s.invs[token] = e
    return nil
}

func (s *MemoryStore) AddLobby(ctx context.Context, token string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.lobby[token] = struct{}{}
    return nil
}

func (s *MemoryStore) RemoveLobby(ctx context.Context, token string) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    delete(s.lobby, token)
    return nil
}

func (s *MemoryStore) LobbyTokens(ctx context.Context) ([]string, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    out := make([]string, 0, len(s.lobby))
    for t := range s.lobby {
        if _, ok := s.live(t); ok { out = append(out, t) }
    }
    sort.Strings(out)
    return out, nil
}
