// Package shell decides which page the user sees: it restores the session on
// start, handles login, signup, OAuth capture, and logout, and keeps the current
// page and profile.
package shell

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/jonathan/jtrack/internal/gateway"
	"github.com/jonathan/jtrack/internal/session"
	"github.com/jonathan/jtrack/internal/types"
)

// Messages shown for failed authentication actions.
const (
	MsgLoginFailed  = "Error while logging in! Wrong username or password"
	MsgSignupFailed = "Error while signing up!"
)

// AuthError is returned when login or signup fails.
type AuthError struct {
	Op      string
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// Backend is the part of the API the shell calls.
type Backend interface {
	Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error)
	Signup(ctx context.Context, req types.SignupRequest) (*types.SignupResponse, error)
	Logout(ctx context.Context) error
	GetProfile(ctx context.Context, userID string) (*types.Profile, error)
}

// SessionStore is the part of the session store the shell uses.
type SessionStore interface {
	Load(ctx context.Context) (session.Session, error)
	Save(ctx context.Context, sess session.Session) error
	Clear(ctx context.Context) error
}

// State is what the shell shows.
type State struct {
	Page    Page
	Profile *types.Profile
}

// Title returns the current page title.
func (s State) Title() string {
	return s.Page.Title()
}

// Shell is the root of the client.
type Shell struct {
	backend Backend
	store   SessionStore
	logger  *zap.Logger

	page    Page
	profile *types.Profile
}

// New creates a Shell showing the login page.
func New(backend Backend, store SessionStore, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Shell{backend: backend, store: store, logger: logger, page: PageLogin}
}

// State returns the current page and profile.
func (s *Shell) State() State {
	return State{Page: s.page, Profile: s.profile}
}

// Bootstrap restores the session. Without a token it shows login. Otherwise it
// fetches the profile, falling back to the cached one, and routes on it.
func (s *Shell) Bootstrap(ctx context.Context) (State, error) {
	sess, err := s.store.Load(ctx)
	if err != nil {
		return s.toLogin(), fmt.Errorf("failed to load session: %w", err)
	}
	if !sess.LoggedIn() {
		return s.toLogin(), nil
	}

	profile, err := s.backend.GetProfile(ctx, sess.UserID)
	if err != nil {
		if gateway.IsUnauthorized(err) {
			s.logger.Info("session rejected by backend")
			return s.toLogin(), nil
		}
		if sess.Profile == nil {
			s.logger.Warn("failed to fetch profile and no cached profile", zap.Error(err))
			return s.toLogin(), nil
		}
		s.logger.Warn("failed to fetch profile, using cached profile", zap.Error(err))
		profile = sess.Profile
	}
	return s.route(profile), nil
}

// Login authenticates, saves the session, and routes on the returned profile.
func (s *Shell) Login(ctx context.Context, username, password string) (State, error) {
	req := types.LoginRequest{Username: username, Password: password}
	if err := req.Validate(); err != nil {
		return s.State(), &AuthError{Op: "login", Message: MsgLoginFailed, Cause: err}
	}
	resp, err := s.backend.Login(ctx, req)
	if err != nil {
		s.logger.Error("login failed", zap.String("username", username), zap.Error(err))
		return s.State(), &AuthError{Op: "login", Message: MsgLoginFailed, Cause: err}
	}

	sess := session.Session{
		Token:   resp.Token,
		Expiry:  resp.Expiry,
		UserID:  strconv.Itoa(resp.Profile.ID),
		Profile: resp.Profile,
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return s.State(), fmt.Errorf("failed to save session: %w", err)
	}
	s.logger.Info("logged in", zap.String("user_id", sess.UserID))
	return s.route(resp.Profile), nil
}

// Signup creates the account and then logs in with the same credentials.
func (s *Shell) Signup(ctx context.Context, fullName, username, password string) (State, error) {
	req := types.SignupRequest{Username: username, Password: password, FullName: fullName}
	if err := req.Validate(); err != nil {
		return s.State(), &AuthError{Op: "signup", Message: MsgSignupFailed, Cause: err}
	}
	if _, err := s.backend.Signup(ctx, req); err != nil {
		s.logger.Error("signup failed", zap.String("username", username), zap.Error(err))
		return s.State(), &AuthError{Op: "signup", Message: MsgSignupFailed, Cause: err}
	}
	return s.Login(ctx, username, password)
}

// CaptureOAuth stores the token, expiry, and userId query parameters of an OAuth
// redirect when no session exists yet. It returns the URL with those parameters
// removed and whether a session was captured.
func (s *Shell) CaptureOAuth(ctx context.Context, redirect string) (string, bool, error) {
	u, err := url.Parse(redirect)
	if err != nil {
		return redirect, false, fmt.Errorf("invalid redirect URL: %w", err)
	}
	sess, err := s.store.Load(ctx)
	if err != nil {
		return redirect, false, fmt.Errorf("failed to load session: %w", err)
	}
	if sess.LoggedIn() {
		return redirect, false, nil
	}

	q := u.Query()
	token := q.Get("token")
	if token == "" {
		return redirect, false, nil
	}
	captured := session.Session{Token: token, Expiry: q.Get("expiry"), UserID: q.Get("userId")}
	if err := s.store.Save(ctx, captured); err != nil {
		return redirect, false, fmt.Errorf("failed to save session: %w", err)
	}

	q.Del("token")
	q.Del("expiry")
	q.Del("userId")
	u.RawQuery = q.Encode()
	s.logger.Info("captured OAuth session", zap.String("user_id", captured.UserID))
	return u.String(), true, nil
}

// Navigate switches to page. Every page resolves to login when there is no token.
// An incomplete profile does not redirect to onboarding.
func (s *Shell) Navigate(ctx context.Context, page Page) (State, error) {
	sess, err := s.store.Load(ctx)
	if err != nil {
		return s.toLogin(), fmt.Errorf("failed to load session: %w", err)
	}
	if !sess.LoggedIn() {
		return s.toLogin(), nil
	}
	if s.profile == nil {
		s.profile = sess.Profile
	}
	s.page = page
	return s.State(), nil
}

// CompleteOnboarding adopts the profile produced by the wizard and shows the profile page.
func (s *Shell) CompleteOnboarding(profile types.Profile) State {
	s.profile = &profile
	s.page = PageProfile
	return s.State()
}

// Logout tells the backend, then clears the local session. The backend call is
// best effort.
func (s *Shell) Logout(ctx context.Context) (State, error) {
	if err := s.backend.Logout(ctx); err != nil {
		s.logger.Warn("backend logout failed", zap.Error(err))
	}
	if err := s.store.Clear(ctx); err != nil {
		return s.State(), fmt.Errorf("failed to clear session: %w", err)
	}
	return s.toLogin(), nil
}

func (s *Shell) route(profile *types.Profile) State {
	s.profile = profile
	if profile.Incomplete() {
		s.page = PageOnboarding
	} else {
		s.page = PageProfile
	}
	return s.State()
}

func (s *Shell) toLogin() State {
	s.page = PageLogin
	return s.State()
}
