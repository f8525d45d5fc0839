package registry

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/park285/xo-kakao-bot/internal/xo"
)

type memRecord struct {
	mu      sync.Mutex
	creator string
	s       *xo.Session
	gone    bool
}

// Memory is an in-process registry. The map lock is held only to find or
// unlink a record; each record has its own mutex so sessions never contend.
type Memory struct {
	mu        sync.RWMutex
	byID      map[string]*memRecord
	byCreator map[string]map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		byID:      make(map[string]*memRecord),
		byCreator: make(map[string]map[string]struct{}),
	}
}

func (m *Memory) Create(ctx context.Context, creatorID string, s *xo.Session) (string, error) {
	if s == nil {
		return "", ErrNilSession
	}
	creatorID = strings.TrimSpace(creatorID)
	rec := &memRecord{creator: creatorID, s: s.Clone()}

	m.mu.Lock()
	defer m.mu.Unlock()
	id := newID()
	for _, taken := m.byID[id]; taken; _, taken = m.byID[id] {
		id = newID()
	}
	rec.s.ID = id
	m.byID[id] = rec
	bucket := m.byCreator[creatorID]
	if bucket == nil {
		bucket = make(map[string]struct{})
		m.byCreator[creatorID] = bucket
	}
	bucket[id] = struct{}{}
	return id, nil
}

func (m *Memory) lookup(id string) *memRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.byID[strings.TrimSpace(id)]
}

func (m *Memory) FindByID(ctx context.Context, id string) (string, *xo.Session, error) {
	rec := m.lookup(id)
	if rec == nil {
		return "", nil, nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.gone {
		return "", nil, nil
	}
	return rec.creator, rec.s.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, id string, fn func(s *xo.Session) error) (*xo.Session, error) {
	rec := m.lookup(id)
	if rec == nil {
		return nil, xo.ErrSessionNotFound
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.gone {
		return nil, xo.ErrSessionNotFound
	}
	work := rec.s.Clone()
	if err := fn(work); err != nil {
		return nil, err
	}
	rec.s = work
	return work.Clone(), nil
}

func (m *Memory) Delete(ctx context.Context, id string) (bool, error) {
	id = strings.TrimSpace(id)
	m.mu.Lock()
	rec := m.byID[id]
	if rec != nil {
		delete(m.byID, id)
		if bucket := m.byCreator[rec.creator]; bucket != nil {
			delete(bucket, id)
			if len(bucket) == 0 {
				delete(m.byCreator, rec.creator)
			}
		}
	}
	m.mu.Unlock()
	if rec == nil {
		return false, nil
	}
	// wait for an in-flight Update on this record before reporting it gone
	rec.mu.Lock()
	rec.gone = true
	rec.mu.Unlock()
	return true, nil
}

func (m *Memory) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID), nil
}

// Creators reports how many creator buckets exist.
func (m *Memory) Creators() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byCreator)
}

// Prune deletes sessions idle for longer than ttl and returns how many were removed.
func (m *Memory) Prune(ctx context.Context, ttl time.Duration, now time.Time) int {
	if ttl <= 0 {
		return 0
	}
	m.mu.RLock()
	recs := make(map[string]*memRecord, len(m.byID))
	for id, rec := range m.byID {
		recs[id] = rec
	}
	m.mu.RUnlock()

	var stale []string
	for id, rec := range recs {
		rec.mu.Lock()
		if !rec.gone && now.Sub(rec.s.UpdatedAt) > ttl {
			stale = append(stale, id)
		}
		rec.mu.Unlock()
	}
	n := 0
	for _, id := range stale {
		if ok, _ := m.Delete(ctx, id); ok {
			n++
		}
	}
	return n
}
