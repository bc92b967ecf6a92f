package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const writeTimeout = 5 * time.Second

// Recorder writes audit entries without ever failing the operation being
// audited. Record returns immediately; the write happens on a detached
// goroutine and failures are logged and dropped.
type Recorder struct {
	repo   Repository
	logger zerolog.Logger
	wg     sync.WaitGroup
}

func NewRecorder(repo Repository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

// RecordInput carries the facts of an audited operation.
type RecordInput struct {
	UserID     uuid.UUID
	Action     string
	Resource   string
	ResourceID *uuid.UUID
	Changes    map[string]interface{}
	IPAddress  string
	UserAgent  string
}

// Record persists an audit entry asynchronously. Invalid input is logged and
// dropped; it never panics or blocks the caller.
func (r *Recorder) Record(in RecordInput) {
	if !validActions[in.Action] {
		r.logger.Error().Str("action", in.Action).Msg("audit entry dropped: unknown action")
		return
	}
	if !validResources[in.Resource] {
		r.logger.Error().Str("resource", in.Resource).Msg("audit entry dropped: unknown resource")
		return
	}
	if in.UserID == uuid.Nil {
		r.logger.Error().Str("action", in.Action).Msg("audit entry dropped: missing user")
		return
	}

	entry := &Entry{
		ID:         uuid.New(),
		UserID:     in.UserID,
		Action:     in.Action,
		Resource:   in.Resource,
		ResourceID: in.ResourceID,
		Changes:    in.Changes,
		IPAddress:  in.IPAddress,
		UserAgent:  in.UserAgent,
		CreatedAt:  time.Now().UTC(),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		// The request context may already be gone when this runs.
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		if err := r.repo.Insert(ctx, entry); err != nil {
			r.logger.Error().Err(err).
				Str("action", entry.Action).
				Str("resource", entry.Resource).
				Msg("audit write failed")
		}
	}()
}

// Drain blocks until all in-flight audit writes have finished. Called on
// shutdown and from tests.
func (r *Recorder) Drain() {
	r.wg.Wait()
}
