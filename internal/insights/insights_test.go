package insights

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/jtrack/internal/api"
	"github.com/jonathan/jtrack/internal/gateway"
	"github.com/jonathan/jtrack/internal/resume"
	"github.com/jonathan/jtrack/internal/session"
	"github.com/jonathan/jtrack/internal/types"
)

type fakeBackend struct {
	mu sync.Mutex

	searchFn    func(ctx context.Context, term string) (*types.Insights, error)
	parseErr    error
	compareErr  error
	comparison  *types.Comparison
	analyses    []types.Analysis
	analysesErr error
	saveErr     error

	calls []string
	saved []types.Analysis
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) Search(ctx context.Context, term string) (*types.Insights, error) {
	f.record("search " + term)
	if f.searchFn != nil {
		return f.searchFn(ctx, term)
	}
	return &types.Insights{RoleOverview: "overview of " + term}, nil
}

func (f *fakeBackend) ParseResume(_ context.Context, _ string, content io.Reader) (*types.ParsedResume, error) {
	f.record("parse")
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	if _, err := io.ReadAll(content); err != nil {
		return nil, err
	}
	return &types.ParsedResume{Skills: []string{"Go"}}, nil
}

func (f *fakeBackend) CompareResume(_ context.Context, req types.CompareRequest) (*types.Comparison, error) {
	f.record("compare")
	if req.Resume == nil || req.JobInsights == nil {
		return nil, errors.New("compare needs both inputs")
	}
	if f.compareErr != nil {
		return nil, f.compareErr
	}
	if f.comparison != nil {
		return f.comparison, nil
	}
	return &types.Comparison{OverallMatch: 80, MatchingSkills: []string{"Go"}}, nil
}

func (f *fakeBackend) Analyses(context.Context) ([]types.Analysis, error) {
	f.record("analyses")
	return f.analyses, f.analysesErr
}

func (f *fakeBackend) SaveAnalysis(_ context.Context, a types.Analysis) error {
	f.record("save")
	f.mu.Lock()
	f.saved = append(f.saved, a)
	f.mu.Unlock()
	return f.saveErr
}

type fakeResume struct {
	err error
}

func (f fakeResume) Download(context.Context) (*api.Resume, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &api.Resume{FileName: "cv.pdf", Data: []byte("%PDF-1.4")}, nil
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newView(t *testing.T, backend *fakeBackend, res ResumeSource) (*View, *session.Store) {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage(), nil)
	v := New(Options{
		Backend: backend,
		Resume:  res,
		Cache:   store,
		Logger:  zaptest.NewLogger(t),
		Now:     func() time.Time { return fixedNow },
		NewID:   func() string { return "analysis-1" },
	})
	return v, store
}

func TestView_SearchFullCycle(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{}
	v, store := newView(t, backend, fakeResume{})

	res, err := v.Search(ctx, "  go developer ")
	require.NoError(t, err)

	assert.Equal(t, "go developer", res.SearchTerm)
	assert.Equal(t, "overview of go developer", res.Insights.RoleOverview)
	require.NotNil(t, res.Comparison)
	assert.False(t, res.Partial())
	require.NotNil(t, res.Analysis)
	assert.Equal(t, "analysis-1", res.Analysis.ID)
	assert.Equal(t, "2026-03-04T05:06:07Z", res.Analysis.Date)

	calls := backend.Calls()
	assert.ElementsMatch(t, []string{"search go developer", "parse", "compare", "save"}, calls)
	assert.Equal(t, "compare", calls[2], "compare runs after both inputs resolve")
	assert.Equal(t, "save", calls[3])

	require.Len(t, v.History(), 1)
	mirrored, err := store.PastAnalyses(ctx)
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.Equal(t, "analysis-1", mirrored[0].ID)
}

func TestView_SearchEmptyTermIsNoop(t *testing.T) {
	backend := &fakeBackend{}
	v, _ := newView(t, backend, fakeResume{})

	res, err := v.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, backend.Calls())
}

func TestView_SearchPartialWhenResumeFails(t *testing.T) {
	tests := []struct {
		name    string
		resume  ResumeSource
		backend *fakeBackend
	}{
		{"no resume uploaded", fakeResume{err: resume.ErrNoResume}, &fakeBackend{}},
		{"download fails", fakeResume{err: &gateway.Error{Status: http.StatusInternalServerError}}, &fakeBackend{}},
		{"parse fails", fakeResume{}, &fakeBackend{parseErr: errors.New("unreadable pdf")}},
		{"no resume source", nil, &fakeBackend{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, store := newView(t, tt.backend, tt.resume)

			res, err := v.Search(context.Background(), "sre")
			require.NoError(t, err)
			require.NotNil(t, res.Insights)
			assert.Nil(t, res.Comparison)
			assert.Error(t, res.ResumeErr)
			assert.True(t, res.Partial())
			assert.Nil(t, res.Analysis)
			assert.NotContains(t, tt.backend.Calls(), "compare")
			assert.NotContains(t, tt.backend.Calls(), "save")
			assert.Empty(t, v.History())

			mirrored, err := store.PastAnalyses(context.Background())
			require.NoError(t, err)
			assert.Empty(t, mirrored)
		})
	}
}

func TestView_SearchCompareFailureIsPartial(t *testing.T) {
	backend := &fakeBackend{compareErr: errors.New("invalid comparison payload")}
	v, _ := newView(t, backend, fakeResume{})

	res, err := v.Search(context.Background(), "sre")
	require.NoError(t, err)
	assert.True(t, res.Partial())
	assert.NoError(t, res.ResumeErr)
	assert.Error(t, res.CompareErr)
	assert.Empty(t, v.History())
}

func TestView_SearchInsightsFailure(t *testing.T) {
	backend := &fakeBackend{searchFn: func(context.Context, string) (*types.Insights, error) {
		return nil, &gateway.Error{Status: http.StatusInternalServerError, Message: "model offline"}
	}}
	v, _ := newView(t, backend, fakeResume{})

	res, err := v.Search(context.Background(), "sre")
	assert.Nil(t, res)
	var searchErr *SearchError
	require.ErrorAs(t, err, &searchErr)
	assert.Equal(t, MsgSearchFailed, err.Error())
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusOf(err))
	assert.Nil(t, v.Current())
}

func TestView_SaveFailureStillMirrors(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{saveErr: errors.New("db down")}
	v, store := newView(t, backend, fakeResume{})

	res, err := v.Search(ctx, "sre")
	require.NoError(t, err)
	assert.Error(t, res.SaveErr)

	mirrored, err := store.PastAnalyses(ctx)
	require.NoError(t, err)
	assert.Len(t, mirrored, 1)
	assert.Len(t, v.History(), 1)
}

func TestView_StaleSearchIsDropped(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	started := make(chan struct{})
	backend := &fakeBackend{searchFn: func(_ context.Context, term string) (*types.Insights, error) {
		if term == "first" {
			close(started)
			<-release
		}
		return &types.Insights{RoleOverview: term}, nil
	}}
	v, _ := newView(t, backend, fakeResume{})

	type outcome struct {
		res *Result
		err error
	}
	firstDone := make(chan outcome, 1)
	go func() {
		res, err := v.Search(ctx, "first")
		firstDone <- outcome{res, err}
	}()
	<-started

	second, err := v.Search(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, "second", second.Insights.RoleOverview)

	close(release)
	first := <-firstDone
	assert.ErrorIs(t, first.err, ErrStale)
	assert.Nil(t, first.res)

	require.NotNil(t, v.Current())
	assert.Equal(t, "second", v.Current().SearchTerm)
	assert.Len(t, v.History(), 1)
}

func TestView_SelectAndDeselectMakeNoCalls(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{analyses: []types.Analysis{
		{ID: "old-1", SearchTerm: "data engineer", Insights: &types.Insights{RoleOverview: "pipelines"},
			Comparison: &types.Comparison{OverallMatch: 40}},
	}}
	v, _ := newView(t, backend, fakeResume{})

	source, err := v.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, HistoryFromBackend, source)

	live, err := v.Search(ctx, "sre")
	require.NoError(t, err)
	before := len(backend.Calls())

	replayed, err := v.Select("old-1")
	require.NoError(t, err)
	assert.Equal(t, "data engineer", replayed.SearchTerm)
	assert.InDelta(t, 40, float64(replayed.Comparison.OverallMatch), 1e-9)
	assert.Equal(t, "old-1", v.Selected())
	assert.Equal(t, "data engineer", v.Displayed().SearchTerm)

	back := v.Deselect()
	assert.Same(t, live, back)
	assert.Empty(t, v.Selected())
	assert.Equal(t, "sre", v.Displayed().SearchTerm)

	assert.Len(t, backend.Calls(), before, "select/deselect are local")

	_, err = v.Select("missing")
	require.Error(t, err)
}

func TestView_LoadHistoryFallsBackToCache(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{analysesErr: errors.New("offline")}
	v, store := newView(t, backend, fakeResume{})
	require.NoError(t, store.SavePastAnalyses(ctx, []types.Analysis{{ID: "cached-1", SearchTerm: "qa"}}))

	source, err := v.LoadHistory(ctx)
	require.NoError(t, err)
	assert.Equal(t, HistoryFromCache, source)
	require.Len(t, v.History(), 1)
	assert.Equal(t, "cached-1", v.History()[0].ID)
}

func TestView_LoadHistoryWithoutCache(t *testing.T) {
	v := New(Options{Backend: &fakeBackend{analysesErr: errors.New("offline")}})
	_, err := v.LoadHistory(context.Background())
	require.Error(t, err)
}

func TestView_DefaultIDIsUUID(t *testing.T) {
	v := New(Options{Backend: &fakeBackend{}, Resume: fakeResume{}})
	res, err := v.Search(context.Background(), "sre")
	require.NoError(t, err)
	require.NotNil(t, res.Analysis)
	assert.Len(t, res.Analysis.ID, 36)
}
