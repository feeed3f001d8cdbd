package storage

import (
	"context"
	"errors"
	"time"

	"github.com/louisbranch/tangram.space/internal/arrangement"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// Attempt is one recorded validation outcome for an arrangement.
type Attempt struct {
	ID                  string
	ArrangementID       string
	Passed              bool
	AnchorID            string
	GlobalRotationIndex int
	ViolatedConstraints []string
	OverlapCount        int
	CreatedAt           time.Time
}

// ArrangementStore persists arrangement definitions and validation
// attempts.
type ArrangementStore interface {
	PutArrangement(ctx context.Context, arr arrangement.GridArrangement) error
	GetArrangement(ctx context.Context, id string) (arrangement.GridArrangement, error)
	ListArrangements(ctx context.Context) ([]arrangement.GridArrangement, error)
	DeleteArrangement(ctx context.Context, id string) error

	RecordAttempt(ctx context.Context, attempt Attempt) error
	ListAttempts(ctx context.Context, arrangementID string) ([]Attempt, error)
}
