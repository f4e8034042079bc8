// Package matches lists jobs from the shared pool and moves them to the wish list.
package matches

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/jtrack/internal/gateway"
	"github.com/jonathan/jtrack/internal/types"
)

// EmptyMessage is shown when the pool has no jobs and the backend sent no message.
const EmptyMessage = "No new jobs found at the moment. Take a break!"

// Backend is the part of the API the recommendations page calls.
type Backend interface {
	SharedJobs(ctx context.Context) ([]byte, error)
	AddToWishlist(ctx context.Context, jobID string) error
}

// WishListCache records wish-listed jobs locally.
type WishListCache interface {
	WishList(ctx context.Context) ([]types.SharedJob, error)
	SaveWishList(ctx context.Context, jobs []types.SharedJob) error
}

// Result is the recommendations page state. Message is set instead of Jobs when the
// backend has nothing to recommend.
type Result struct {
	Jobs    []types.SharedJob
	Message string
}

// WishlistError is returned when a job could not be wish-listed.
type WishlistError struct {
	JobID string
	Cause error
}

func (e *WishlistError) Error() string {
	msg := e.Cause.Error()
	var gwErr *gateway.Error
	if errors.As(e.Cause, &gwErr) && gwErr.Message != "" {
		msg = gwErr.Message
	}
	return "Failed to add job to wishlist: " + msg
}

func (e *WishlistError) Unwrap() error {
	return e.Cause
}

// View holds the recommended jobs.
type View struct {
	backend Backend
	cache   WishListCache
	logger  *zap.Logger
	result  Result
}

// New creates a View.
func New(backend Backend, cache WishListCache, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{backend: backend, cache: cache, logger: logger}
}

// Result returns the current page state.
func (v *View) Result() Result {
	jobs := make([]types.SharedJob, len(v.result.Jobs))
	copy(jobs, v.result.Jobs)
	return Result{Jobs: jobs, Message: v.result.Message}
}

// Fetch loads the shared job pool.
func (v *View) Fetch(ctx context.Context) (Result, error) {
	raw, err := v.backend.SharedJobs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	result, err := decodeShared(raw)
	if err != nil {
		return Result{}, err
	}
	v.result = result
	v.logger.Debug("recommendations loaded", zap.Int("jobs", len(result.Jobs)))
	return v.Result(), nil
}

func decodeShared(raw []byte) (Result, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var jobs []types.SharedJob
		if err := json.Unmarshal(trimmed, &jobs); err != nil {
			return Result{}, fmt.Errorf("failed to decode recommendations: %w", err)
		}
		if len(jobs) == 0 {
			return Result{Message: EmptyMessage}, nil
		}
		return Result{Jobs: jobs}, nil
	}
	var payload struct {
		Message string `json:"message"`
	}
	if len(trimmed) > 0 {
		if err := json.Unmarshal(trimmed, &payload); err != nil {
			return Result{}, fmt.Errorf("failed to decode recommendations: %w", err)
		}
	}
	if payload.Message == "" {
		payload.Message = EmptyMessage
	}
	return Result{Message: payload.Message}, nil
}

// Wishlist adds the job to the wish list. On success it leaves the
// recommendations and is recorded locally; on failure nothing changes.
func (v *View) Wishlist(ctx context.Context, jobID string) error {
	if err := v.backend.AddToWishlist(ctx, jobID); err != nil {
		v.logger.Error("failed to add job to wishlist", zap.String("job_id", jobID), zap.Error(err))
		return &WishlistError{JobID: jobID, Cause: err}
	}

	var job *types.SharedJob
	kept := v.result.Jobs[:0:0]
	for i := range v.result.Jobs {
		if v.result.Jobs[i].ID == jobID {
			j := v.result.Jobs[i]
			job = &j
			continue
		}
		kept = append(kept, v.result.Jobs[i])
	}
	v.result.Jobs = kept
	if len(kept) == 0 && job != nil {
		v.result.Message = EmptyMessage
	}

	if job == nil {
		job = &types.SharedJob{ID: jobID}
	}
	v.remember(ctx, *job)
	v.logger.Info("job added to wishlist", zap.String("job_id", jobID))
	return nil
}

func (v *View) remember(ctx context.Context, job types.SharedJob) {
	if v.cache == nil {
		return
	}
	list, err := v.cache.WishList(ctx)
	if err != nil {
		v.logger.Warn("failed to read wish list cache", zap.Error(err))
		return
	}
	for _, j := range list {
		if j.ID == job.ID {
			return
		}
	}
	if err := v.cache.SaveWishList(ctx, append(list, job)); err != nil {
		v.logger.Warn("failed to write wish list cache", zap.Error(err))
	}
}
