package tracker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/jtrack/internal/fetch"
	"github.com/jonathan/jtrack/internal/types"
)

// Messages shown when an operation fails.
const (
	MsgCreateFailed  = "Adding application failed!"
	MsgUpdateFailed  = "Update Failed!"
	MsgDeleteFailed  = "Error while deleting the application!"
	MsgRefreshFailed = "Failed to load applications."
)

// OpError is returned when a tracker operation fails.
type OpError struct {
	Op      string
	Message string
	Cause   error
}

func (e *OpError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *OpError) Unwrap() error {
	return e.Cause
}

// Backend is the part of the API the tracker calls.
type Backend interface {
	Applications(ctx context.Context) ([]types.Application, error)
	CreateApplication(ctx context.Context, app types.Application) (*types.Application, error)
	UpdateApplication(ctx context.Context, app types.Application) error
	DeleteApplication(ctx context.Context, id int) error
}

// Previewer fetches job link previews.
type Previewer interface {
	Preview(ctx context.Context, link string) (*fetch.Preview, error)
}

// Tracker owns the board and keeps it in step with the backend.
type Tracker struct {
	backend   Backend
	previewer Previewer
	board     *Board
	logger    *zap.Logger
}

// New creates a Tracker with an empty board. previewer may be nil.
func New(backend Backend, previewer Previewer, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{backend: backend, previewer: previewer, board: NewBoard(nil), logger: logger}
}

// Board returns the board for rendering and filtering.
func (t *Tracker) Board() *Board {
	return t.board
}

// Refresh replaces the list with the backend's.
func (t *Tracker) Refresh(ctx context.Context) error {
	apps, err := t.backend.Applications(ctx)
	if err != nil {
		t.logger.Error("failed to load applications", zap.Error(err))
		return &OpError{Op: "refresh", Message: MsgRefreshFailed, Cause: err}
	}
	t.board.SetApplications(apps)
	t.logger.Debug("applications loaded", zap.Int("count", len(apps)))
	return nil
}

// Create posts a new application and appends it with the id the backend assigned.
func (t *Tracker) Create(ctx context.Context, app types.Application) (*types.Application, error) {
	app.ID = nil
	if app.Status == "" {
		app.Status = types.StatusWishList
	}
	if err := app.Validate(); err != nil {
		return nil, &OpError{Op: "create", Message: MsgCreateFailed, Cause: err}
	}
	created, err := t.backend.CreateApplication(ctx, app)
	if err != nil {
		t.logger.Error("failed to create application", zap.String("company", app.CompanyName), zap.Error(err))
		return nil, &OpError{Op: "create", Message: MsgCreateFailed, Cause: err}
	}
	t.board.Append(*created)
	t.logger.Info("application created", zap.Int("id", created.IDValue()))
	return created, nil
}

// Update replaces the application on the backend and then in place in the list.
func (t *Tracker) Update(ctx context.Context, app types.Application) error {
	if app.IsNew() {
		return &OpError{Op: "update", Message: MsgUpdateFailed, Cause: fmt.Errorf("application has no id")}
	}
	if err := app.Validate(); err != nil {
		return &OpError{Op: "update", Message: MsgUpdateFailed, Cause: err}
	}
	if err := t.backend.UpdateApplication(ctx, app); err != nil {
		t.logger.Error("failed to update application", zap.Int("id", app.IDValue()), zap.Error(err))
		return &OpError{Op: "update", Message: MsgUpdateFailed, Cause: err}
	}
	if !t.board.Replace(app) {
		t.logger.Warn("updated application is not on the board", zap.Int("id", app.IDValue()))
	}
	return nil
}

// Delete removes the application on the backend and then reloads the whole list.
// The list is not edited locally.
func (t *Tracker) Delete(ctx context.Context, id int) error {
	if err := t.backend.DeleteApplication(ctx, id); err != nil {
		t.logger.Error("failed to delete application", zap.Int("id", id), zap.Error(err))
		return &OpError{Op: "delete", Message: MsgDeleteFailed, Cause: err}
	}
	return t.Refresh(ctx)
}

// Preview fetches the job link and returns what the posting page says.
func (t *Tracker) Preview(ctx context.Context, link string) (*fetch.Preview, error) {
	if t.previewer == nil {
		return nil, fmt.Errorf("job link preview is not configured")
	}
	return t.previewer.Preview(ctx, link)
}

// FillFromPreview sets the empty title, company, and location of app from the preview.
func FillFromPreview(app types.Application, p *fetch.Preview) types.Application {
	if p == nil {
		return app
	}
	if app.JobTitle == "" {
		app.JobTitle = p.Title
	}
	if app.CompanyName == "" {
		app.CompanyName = p.Company
	}
	if app.Location == "" {
		app.Location = p.Location
	}
	if app.JobLink == "" {
		app.JobLink = p.URL
	}
	return app
}
