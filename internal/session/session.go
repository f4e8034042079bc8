package session

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/jtrack/internal/types"
)

// Session is the authenticated identity.
type Session struct {
	Token   string
	Expiry  string
	UserID  string
	Profile *types.Profile
}

// LoggedIn reports whether the session holds a token. Other fields do not matter.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// Store reads and writes the session and the client caches through a Storage.
// It satisfies gateway.Session.
type Store struct {
	storage Storage
	logger  *zap.Logger
}

// NewStore creates a Store. A nil logger is replaced by a no-op logger.
func NewStore(storage Storage, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{storage: storage, logger: logger}
}

// Save persists the session. A session without a token is not written; the
// attempt is logged and Save returns nil.
func (s *Store) Save(ctx context.Context, sess Session) error {
	if sess.Token == "" {
		s.logger.Error("refusing to save session without token", zap.String("user_id", sess.UserID))
		return nil
	}
	if err := s.storage.Set(ctx, KeyToken, sess.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	if err := s.storage.Set(ctx, KeyExpiry, sess.Expiry); err != nil {
		return fmt.Errorf("failed to save expiry: %w", err)
	}
	if err := s.storage.Set(ctx, KeyUserID, sess.UserID); err != nil {
		return fmt.Errorf("failed to save user id: %w", err)
	}
	if sess.Profile != nil {
		if err := s.SaveProfile(ctx, *sess.Profile); err != nil {
			return err
		}
	}
	s.logger.Debug("session saved", zap.String("user_id", sess.UserID))
	return nil
}

// Load reads the session. The profile is the cached one, if any.
func (s *Store) Load(ctx context.Context) (Session, error) {
	var sess Session
	var err error
	if sess.Token, _, err = s.storage.Get(ctx, KeyToken); err != nil {
		return Session{}, fmt.Errorf("failed to load token: %w", err)
	}
	if sess.Expiry, _, err = s.storage.Get(ctx, KeyExpiry); err != nil {
		return Session{}, fmt.Errorf("failed to load expiry: %w", err)
	}
	if sess.UserID, _, err = s.storage.Get(ctx, KeyUserID); err != nil {
		return Session{}, fmt.Errorf("failed to load user id: %w", err)
	}
	if sess.Profile, err = s.CachedProfile(ctx); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Token returns the stored token or "". Read errors are logged.
func (s *Store) Token(ctx context.Context) string {
	token, _, err := s.storage.Get(ctx, KeyToken)
	if err != nil {
		s.logger.Warn("failed to read token", zap.Error(err))
		return ""
	}
	return token
}

// UserID returns the stored user id or "".
func (s *Store) UserID(ctx context.Context) (string, error) {
	id, _, err := s.storage.Get(ctx, KeyUserID)
	if err != nil {
		return "", fmt.Errorf("failed to load user id: %w", err)
	}
	return id, nil
}

// Clear removes the token and user id. The profile cache is kept.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, KeyToken, KeyUserID); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// CachedProfile returns the cached profile, or nil when there is none.
func (s *Store) CachedProfile(ctx context.Context) (*types.Profile, error) {
	var p types.Profile
	ok, err := s.getJSON(ctx, KeyUserProfile, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// SaveProfile caches the normalized profile.
func (s *Store) SaveProfile(ctx context.Context, p types.Profile) error {
	return s.setJSON(ctx, KeyUserProfile, p.Normalized())
}

// PastAnalyses returns the mirrored analysis history.
func (s *Store) PastAnalyses(ctx context.Context) ([]types.Analysis, error) {
	var out []types.Analysis
	if _, err := s.getJSON(ctx, KeyPastAnalyses, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SavePastAnalyses mirrors the analysis history.
func (s *Store) SavePastAnalyses(ctx context.Context, analyses []types.Analysis) error {
	if analyses == nil {
		analyses = []types.Analysis{}
	}
	return s.setJSON(ctx, KeyPastAnalyses, analyses)
}

// WishList returns the jobs recorded by the recommendations page.
func (s *Store) WishList(ctx context.Context) ([]types.SharedJob, error) {
	var out []types.SharedJob
	if _, err := s.getJSON(ctx, KeyWishList, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveWishList replaces the recorded wish list.
func (s *Store) SaveWishList(ctx context.Context, jobs []types.SharedJob) error {
	if jobs == nil {
		jobs = []types.SharedJob{}
	}
	return s.setJSON(ctx, KeyWishList, jobs)
}

func (s *Store) getJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := s.storage.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// A corrupt cache entry is treated as missing.
		s.logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Store) setJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := s.storage.Set(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}
