package shell

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jonathan/jtrack/internal/gateway"
	"github.com/jonathan/jtrack/internal/session"
	"github.com/jonathan/jtrack/internal/types"
)

type fakeBackend struct {
	loginResp  *types.LoginResponse
	loginErr   error
	signupErr  error
	logoutErr  error
	profile    *types.Profile
	profileErr error

	logins      []types.LoginRequest
	profileUser string
	logouts     int
}

func (f *fakeBackend) Login(_ context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	f.logins = append(f.logins, req)
	return f.loginResp, f.loginErr
}

func (f *fakeBackend) Signup(_ context.Context, req types.SignupRequest) (*types.SignupResponse, error) {
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &types.SignupResponse{ID: 9, FullName: req.FullName, Username: req.Username}, nil
}

func (f *fakeBackend) Logout(context.Context) error {
	f.logouts++
	return f.logoutErr
}

func (f *fakeBackend) GetProfile(_ context.Context, userID string) (*types.Profile, error) {
	f.profileUser = userID
	return f.profile, f.profileErr
}

func completeProfile() *types.Profile {
	return &types.Profile{ID: 7, FullName: "Alice", Skills: types.TagList{{Label: "Go", Value: "go"}}}
}

func newShell(t *testing.T, backend *fakeBackend) (*Shell, *session.Store) {
	t.Helper()
	store := session.NewStore(session.NewMemoryStorage(), nil)
	return New(backend, store, zaptest.NewLogger(t)), store
}

func TestBootstrap_NoToken(t *testing.T) {
	backend := &fakeBackend{}
	sh, _ := newShell(t, backend)

	state, err := sh.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.Equal(t, PageLogin, state.Page)
	assert.Empty(t, backend.profileUser, "no profile fetch without token")
}

func TestBootstrap_Routes(t *testing.T) {
	tests := []struct {
		name    string
		profile *types.Profile
		want    Page
	}{
		{"complete profile", completeProfile(), PageProfile},
		{"no skills", &types.Profile{ID: 7, FullName: "Alice"}, PageOnboarding},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			backend := &fakeBackend{profile: tt.profile}
			sh, store := newShell(t, backend)
			require.NoError(t, store.Save(ctx, session.Session{Token: "7.x", UserID: "7"}))

			state, err := sh.Bootstrap(ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, state.Page)
			assert.Equal(t, "7", backend.profileUser)
			require.NotNil(t, state.Profile)
			assert.Equal(t, "Alice", state.Profile.FullName)
		})
	}
}

func TestBootstrap_FallsBackToCachedProfile(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{profileErr: &gateway.Error{Status: 0, Message: "request failed"}}
	sh, store := newShell(t, backend)
	require.NoError(t, store.Save(ctx, session.Session{Token: "7.x", UserID: "7", Profile: completeProfile()}))

	state, err := sh.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, PageProfile, state.Page)
	assert.Equal(t, "Alice", state.Profile.FullName)
}

func TestBootstrap_NoCachedProfileGoesToLogin(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{profileErr: errors.New("down")}
	sh, store := newShell(t, backend)
	require.NoError(t, store.Save(ctx, session.Session{Token: "7.x", UserID: "7"}))

	state, err := sh.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, PageLogin, state.Page)
}

func TestBootstrap_UnauthorizedGoesToLogin(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{profileErr: &gateway.Error{Status: http.StatusUnauthorized}}
	sh, store := newShell(t, backend)
	require.NoError(t, store.Save(ctx, session.Session{Token: "7.x", UserID: "7", Profile: completeProfile()}))

	state, err := sh.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, PageLogin, state.Page)
}

func TestLogin_SavesSessionAndRoutes(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{loginResp: &types.LoginResponse{
		Token: "7.abc", Expiry: "01/02/2026, 10:00:00", Profile: &types.Profile{ID: 7, FullName: "Alice"},
	}}
	sh, store := newShell(t, backend)

	state, err := sh.Login(ctx, "alice", "pw")
	require.NoError(t, err)
	assert.Equal(t, PageOnboarding, state.Page)

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "7.abc", sess.Token)
	assert.Equal(t, "7", sess.UserID)
	assert.Equal(t, "01/02/2026, 10:00:00", sess.Expiry)
	require.NotNil(t, sess.Profile)
	assert.Equal(t, "Alice", sess.Profile.FullName)
}

func TestLogin_Failure(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{loginErr: &gateway.Error{Status: http.StatusBadRequest, Message: "Username or password incorrect"}}
	sh, store := newShell(t, backend)

	state, err := sh.Login(ctx, "alice", "bad")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, MsgLoginFailed, authErr.Message)
	assert.Equal(t, PageLogin, state.Page)

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, sess.LoggedIn())
}

func TestLogin_EmptyCredentials(t *testing.T) {
	backend := &fakeBackend{}
	sh, _ := newShell(t, backend)
	_, err := sh.Login(context.Background(), "", "")
	require.Error(t, err)
	assert.Empty(t, backend.logins)
}

func TestSignup_ThenLogin(t *testing.T) {
	backend := &fakeBackend{loginResp: &types.LoginResponse{Token: "9.x", Profile: &types.Profile{ID: 9, FullName: "Bob"}}}
	sh, _ := newShell(t, backend)

	state, err := sh.Signup(context.Background(), "Bob", "bob", "pw")
	require.NoError(t, err)
	assert.Equal(t, PageOnboarding, state.Page)
	require.Len(t, backend.logins, 1)
	assert.Equal(t, types.LoginRequest{Username: "bob", Password: "pw"}, backend.logins[0])
}

func TestSignup_Failure(t *testing.T) {
	backend := &fakeBackend{signupErr: errors.New("taken")}
	sh, _ := newShell(t, backend)

	_, err := sh.Signup(context.Background(), "Bob", "bob", "pw")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, MsgSignupFailed, authErr.Message)
	assert.Empty(t, backend.logins)
}

func TestCaptureOAuth(t *testing.T) {
	ctx := context.Background()
	sh, store := newShell(t, &fakeBackend{})

	cleaned, captured, err := sh.CaptureOAuth(ctx, "http://localhost:3000/app?token=5.xyz&expiry=01%2F02%2F2026&userId=5&tab=profile")
	require.NoError(t, err)
	assert.True(t, captured)
	assert.Equal(t, "http://localhost:3000/app?tab=profile", cleaned)

	sess, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "5.xyz", sess.Token)
	assert.Equal(t, "5", sess.UserID)
	assert.Equal(t, "01/02/2026", sess.Expiry)
}

func TestCaptureOAuth_NoOp(t *testing.T) {
	ctx := context.Background()

	sh, _ := newShell(t, &fakeBackend{})
	link := "http://localhost:3000/app?tab=x"
	cleaned, captured, err := sh.CaptureOAuth(ctx, link)
	require.NoError(t, err)
	assert.False(t, captured)
	assert.Equal(t, link, cleaned)

	sh, store := newShell(t, &fakeBackend{})
	require.NoError(t, store.Save(ctx, session.Session{Token: "existing", UserID: "1"}))
	link = "http://localhost:3000/app?token=other&userId=2"
	cleaned, captured, err = sh.CaptureOAuth(ctx, link)
	require.NoError(t, err)
	assert.False(t, captured)
	assert.Equal(t, link, cleaned)
	assert.Equal(t, "existing", store.Token(ctx))
}

func TestNavigate(t *testing.T) {
	ctx := context.Background()
	sh, store := newShell(t, &fakeBackend{})

	for _, p := range Pages() {
		state, err := sh.Navigate(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, PageLogin, state.Page, "logged out: %s", p)
	}

	require.NoError(t, store.Save(ctx, session.Session{Token: "t", UserID: "1", Profile: completeProfile()}))
	state, err := sh.Navigate(ctx, PageApplications)
	require.NoError(t, err)
	assert.Equal(t, PageApplications, state.Page)
	assert.Equal(t, "Application Tracker", state.Title())
	require.NotNil(t, state.Profile)
}

func TestNavigate_IncompleteProfileIsNotRedirected(t *testing.T) {
	ctx := context.Background()
	sh, store := newShell(t, &fakeBackend{})

	require.NoError(t, store.Save(ctx, session.Session{Token: "t", UserID: "1", Profile: &types.Profile{ID: 1, FullName: "Bob"}}))
	state, err := sh.Navigate(ctx, PageApplications)
	require.NoError(t, err)
	assert.Equal(t, PageApplications, state.Page)
}

func TestCompleteOnboarding(t *testing.T) {
	sh, _ := newShell(t, &fakeBackend{})
	state := sh.CompleteOnboarding(*completeProfile())
	assert.Equal(t, PageProfile, state.Page)
	assert.Equal(t, "Alice", state.Profile.FullName)
}

func TestLogout_BestEffort(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{logoutErr: errors.New("offline")}
	sh, store := newShell(t, backend)
	require.NoError(t, store.Save(ctx, session.Session{Token: "t", UserID: "1", Profile: completeProfile()}))

	state, err := sh.Logout(ctx)
	require.NoError(t, err)
	assert.Equal(t, PageLogin, state.Page)
	assert.Equal(t, 1, backend.logouts)
	assert.Empty(t, store.Token(ctx))

	cached, err := store.CachedProfile(ctx)
	require.NoError(t, err)
	assert.NotNil(t, cached, "profile cache survives logout")
}
