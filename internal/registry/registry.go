package registry

import (
	"context"

	"github.com/google/uuid"
	"github.com/park285/xo-kakao-bot/internal/xo"
)

// Registry stores live sessions by id. Creator buckets are bookkeeping only.
type Registry interface {
	// Create assigns a fresh id, stores a copy of s under creatorID and returns the id.
	Create(ctx context.Context, creatorID string, s *xo.Session) (string, error)
	// FindByID returns a detached copy; a missing session yields ("", nil, nil).
	FindByID(ctx context.Context, id string) (string, *xo.Session, error)
	// Update runs fn on a private copy while holding the record exclusively and
	// commits the copy when fn returns nil. It returns a copy of the committed state.
	Update(ctx context.Context, id string, fn func(s *xo.Session) error) (*xo.Session, error)
	// Delete removes the session and an emptied creator bucket. Deleting twice is not an error.
	Delete(ctx context.Context, id string) (bool, error)
	// Count reports live sessions.
	Count(ctx context.Context) (int, error)
}

func newID() string { return uuid.NewString() }
