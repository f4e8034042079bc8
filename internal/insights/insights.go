// Package insights runs the search-and-compare cycle: career insights for a role,
// the user's parsed resume, and a comparison of the two. Completed cycles are kept
// as an analysis history that can be replayed without network calls.
package insights

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jtrack/internal/api"
	"github.com/jonathan/jtrack/internal/types"
)

// MsgSearchFailed is shown when the insight call fails.
const MsgSearchFailed = "Failed to fetch insights. Please try again."

// ErrStale is returned by a search that was overtaken by a newer one. Its result
// is dropped.
var ErrStale = errors.New("search superseded by a newer search")

// SearchError is returned when the insights for a role could not be fetched.
type SearchError struct {
	Term  string
	Cause error
}

func (e *SearchError) Error() string {
	return MsgSearchFailed
}

func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Backend is the part of the API the view calls.
type Backend interface {
	Search(ctx context.Context, keywords string) (*types.Insights, error)
	ParseResume(ctx context.Context, fileName string, content io.Reader) (*types.ParsedResume, error)
	CompareResume(ctx context.Context, req types.CompareRequest) (*types.Comparison, error)
	Analyses(ctx context.Context) ([]types.Analysis, error)
	SaveAnalysis(ctx context.Context, a types.Analysis) error
}

// ResumeSource downloads the stored resume.
type ResumeSource interface {
	Download(ctx context.Context) (*api.Resume, error)
}

// HistoryCache mirrors the analysis history locally.
type HistoryCache interface {
	PastAnalyses(ctx context.Context) ([]types.Analysis, error)
	SavePastAnalyses(ctx context.Context, analyses []types.Analysis) error
}

// Result is what the page shows for one search.
type Result struct {
	SearchTerm string
	Insights   *types.Insights
	// Comparison is nil when the resume could not be used or the comparison failed.
	Comparison *types.Comparison
	ResumeErr  error
	CompareErr error
	// Analysis is set when the cycle completed and was recorded.
	Analysis *types.Analysis
	// SaveErr is set when the analysis could not be stored on the backend.
	SaveErr error
}

// Partial reports whether insights were shown without a comparison.
func (r *Result) Partial() bool {
	return r != nil && r.Insights != nil && r.Comparison == nil
}

// HistorySource says where LoadHistory got its entries.
type HistorySource string

const (
	HistoryFromBackend HistorySource = "backend"
	HistoryFromCache   HistorySource = "cache"
)

// Options configures a View.
type Options struct {
	Backend Backend
	Resume  ResumeSource
	Cache   HistoryCache
	Logger  *zap.Logger
	Now     func() time.Time
	NewID   func() string
}

// View is the search page state. It is safe for concurrent use.
type View struct {
	backend Backend
	resume  ResumeSource
	cache   HistoryCache
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string

	mu         sync.Mutex
	generation uint64
	current    *Result
	history    []types.Analysis
	selected   string
}

// New creates a View.
func New(opts Options) *View {
	v := &View{
		backend: opts.Backend,
		resume:  opts.Resume,
		cache:   opts.Cache,
		logger:  opts.Logger,
		now:     opts.Now,
		newID:   opts.NewID,
	}
	if v.logger == nil {
		v.logger = zap.NewNop()
	}
	if v.now == nil {
		v.now = time.Now
	}
	if v.newID == nil {
		v.newID = uuid.NewString
	}
	return v
}

// Search runs the cycle for term. An empty term does nothing and returns (nil, nil).
// A failed insight call fails the search; a missing or unreadable resume only
// skips the comparison.
func (v *View) Search(ctx context.Context, term string) (*Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}

	v.mu.Lock()
	v.generation++
	gen := v.generation
	v.mu.Unlock()

	logger := v.logger.With(zap.String("term", term), zap.Uint64("generation", gen))

	var (
		insights  *types.Insights
		parsed    *types.ParsedResume
		resumeErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ins, err := v.backend.Search(gctx, term)
		if err != nil {
			return &SearchError{Term: term, Cause: err}
		}
		insights = ins
		return nil
	})
	g.Go(func() error {
		parsed, resumeErr = v.parseResume(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Error("search failed", zap.Error(err))
		if !v.isCurrent(gen) {
			return nil, ErrStale
		}
		return nil, err
	}

	if !v.isCurrent(gen) {
		logger.Debug("dropping stale search before compare")
		return nil, ErrStale
	}

	result := &Result{SearchTerm: term, Insights: insights, ResumeErr: resumeErr}
	if resumeErr != nil {
		logger.Info("resume unavailable, showing insights only", zap.Error(resumeErr))
	} else {
		cmp, err := v.backend.CompareResume(ctx, types.CompareRequest{Resume: parsed, JobInsights: insights})
		if err != nil {
			logger.Warn("compare failed, showing insights only", zap.Error(err))
			result.CompareErr = err
		} else {
			result.Comparison = cmp
		}
	}

	if result.Comparison != nil {
		analysis := types.Analysis{
			ID:         v.newID(),
			SearchTerm: term,
			Date:       v.now().UTC().Format(time.RFC3339),
			Insights:   insights,
			Comparison: result.Comparison,
		}
		result.Analysis = &analysis
	}

	v.mu.Lock()
	if gen != v.generation {
		v.mu.Unlock()
		logger.Debug("dropping stale search result")
		return nil, ErrStale
	}
	v.current = result
	v.selected = ""
	var history []types.Analysis
	if result.Analysis != nil {
		v.history = append(v.history, *result.Analysis)
		history = v.historyLocked()
	}
	v.mu.Unlock()

	if result.Analysis != nil {
		if err := v.backend.SaveAnalysis(ctx, *result.Analysis); err != nil {
			logger.Warn("failed to save analysis", zap.String("analysis_id", result.Analysis.ID), zap.Error(err))
			result.SaveErr = err
		}
		v.mirror(ctx, history)
	}
	return result, nil
}

func (v *View) parseResume(ctx context.Context) (*types.ParsedResume, error) {
	if v.resume == nil {
		return nil, errors.New("resume source is not configured")
	}
	r, err := v.resume.Download(ctx)
	if err != nil {
		return nil, err
	}
	parsed, err := v.backend.ParseResume(ctx, r.FileName, bytes.NewReader(r.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse resume: %w", err)
	}
	return parsed, nil
}

func (v *View) isCurrent(gen uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return gen == v.generation
}

func (v *View) mirror(ctx context.Context, history []types.Analysis) {
	if v.cache == nil {
		return
	}
	if err := v.cache.SavePastAnalyses(ctx, history); err != nil {
		v.logger.Warn("failed to mirror analysis history", zap.Error(err))
	}
}

// Current returns the live result, or nil before the first search.
func (v *View) Current() *Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// LoadHistory loads the analyses from the backend. If that fails the local mirror
// is used instead.
func (v *View) LoadHistory(ctx context.Context) (HistorySource, error) {
	analyses, err := v.backend.Analyses(ctx)
	if err == nil {
		v.mu.Lock()
		v.history = analyses
		v.mu.Unlock()
		v.mirror(ctx, analyses)
		return HistoryFromBackend, nil
	}
	v.logger.Warn("failed to load analyses, using local copy", zap.Error(err))
	if v.cache == nil {
		return "", fmt.Errorf("failed to load analyses: %w", err)
	}
	cached, cacheErr := v.cache.PastAnalyses(ctx)
	if cacheErr != nil {
		return "", fmt.Errorf("failed to load analyses: %w", errors.Join(err, cacheErr))
	}
	v.mu.Lock()
	v.history = cached
	v.mu.Unlock()
	return HistoryFromCache, nil
}

// History returns a copy of the analyses, oldest first.
func (v *View) History() []types.Analysis {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.historyLocked()
}

func (v *View) historyLocked() []types.Analysis {
	out := make([]types.Analysis, len(v.history))
	copy(out, v.history)
	return out
}

// Select replays a history entry into the view. It makes no network call.
func (v *View) Select(id string) (*Result, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for i := range v.history {
		if v.history[i].ID == id {
			v.selected = id
			return replay(v.history[i]), nil
		}
	}
	return nil, fmt.Errorf("no analysis with id %q", id)
}

// Deselect returns the view to the live result.
func (v *View) Deselect() *Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.selected = ""
	return v.current
}

// Selected returns the id of the selected history entry, or "".
func (v *View) Selected() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selected
}

// Displayed returns what the page shows: the selected entry, else the live result.
func (v *View) Displayed() *Result {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.selected != "" {
		for i := range v.history {
			if v.history[i].ID == v.selected {
				return replay(v.history[i])
			}
		}
	}
	return v.current
}

func replay(a types.Analysis) *Result {
	analysis := a
	return &Result{
		SearchTerm: a.SearchTerm,
		Insights:   a.Insights,
		Comparison: a.Comparison,
		Analysis:   &analysis,
	}
}
