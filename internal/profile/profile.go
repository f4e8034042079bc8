// Package profile maps the user's profile to what the profile page shows and
// applies the edit dialogs.
package profile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jtrack/internal/tracker"
	"github.com/jonathan/jtrack/internal/types"
)

// Backend is the part of the API the profile page calls.
type Backend interface {
	Applications(ctx context.Context) ([]types.Application, error)
	Analyses(ctx context.Context) ([]types.Analysis, error)
	UpdateProfile(ctx context.Context, p types.Profile) error
	UploadProfilePhoto(ctx context.Context, fileName string, content io.Reader) error
	ProfilePhoto(ctx context.Context) (string, error)
}

// Cache stores the profile locally after a successful edit.
type Cache interface {
	SaveProfile(ctx context.Context, p types.Profile) error
}

// ContactLine is one labelled contact detail.
type ContactLine struct {
	Label string
	Value string
}

// Summary is the rendered profile page.
type Summary struct {
	Initials     string
	FullName     string
	Contact      []ContactLine
	Skills       []string
	JobLevels    []string
	Locations    []string
	PhotoURL     string
	Applications int
	// Counts holds the number of applications per status label.
	Counts   map[string]int
	Analyses []types.Analysis
}

// Initials returns the first letters of the first and last words of name.
func Initials(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	out := firstRune(words[0])
	if len(words) > 1 {
		out += firstRune(words[len(words)-1])
	}
	return out
}

func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}

// View holds the profile shown on the page.
type View struct {
	profile types.Profile
	backend Backend
	cache   Cache
	logger  *zap.Logger
}

// New creates a View for profile.
func New(profile types.Profile, backend Backend, cache Cache, logger *zap.Logger) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &View{profile: profile, backend: backend, cache: cache, logger: logger}
}

// Profile returns the current profile.
func (v *View) Profile() types.Profile {
	return v.profile
}

// Summarize maps the profile alone, without backend data.
func (v *View) Summarize() *Summary {
	p := v.profile
	s := &Summary{
		Initials:  Initials(p.FullName),
		FullName:  strings.TrimSpace(p.FullName),
		Skills:    p.Skills.Labels(),
		JobLevels: p.JobLevels.Labels(),
		Locations: p.Locations.Labels(),
		PhotoURL:  p.ProfilePhoto,
		Counts:    map[string]int{},
	}
	for _, line := range []ContactLine{
		{"Email", p.Email},
		{"Phone", p.PhoneNumber},
		{"Address", p.Address},
		{"Institution", p.Institution},
	} {
		if strings.TrimSpace(line.Value) != "" {
			s.Contact = append(s.Contact, line)
		}
	}
	return s
}

// Load fetches applications and analyses concurrently and fills the summary.
// Analyses are optional; their failure is logged and leaves the list empty.
func (v *View) Load(ctx context.Context) (*Summary, error) {
	var (
		apps     []types.Application
		analyses []types.Analysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		apps, err = v.backend.Applications(gctx)
		if err != nil {
			return fmt.Errorf("failed to load applications: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		analyses, err = v.backend.Analyses(gctx)
		if err != nil {
			v.logger.Warn("failed to load analyses", zap.Error(err))
			analyses = nil
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := v.Summarize()
	s.Applications = len(apps)
	s.Counts = tracker.Counts(apps)
	s.Analyses = analyses
	return s, nil
}

// EditDetails replaces the personal details group.
func (v *View) EditDetails(ctx context.Context, d types.PersonalDetails) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("invalid personal details: %w", err)
	}
	return v.save(ctx, v.profile.WithDetails(d))
}

// EditSkills replaces the skills.
func (v *View) EditSkills(ctx context.Context, skills types.TagList) error {
	p := v.profile
	p.Skills = skills
	return v.save(ctx, p)
}

// EditJobLevels replaces the experience levels.
func (v *View) EditJobLevels(ctx context.Context, levels types.TagList) error {
	p := v.profile
	p.JobLevels = levels
	return v.save(ctx, p)
}

// EditLocations replaces the preferred locations.
func (v *View) EditLocations(ctx context.Context, locations types.TagList) error {
	p := v.profile
	p.Locations = locations
	return v.save(ctx, p)
}

// save sends the whole new profile and adopts it once the backend accepts it.
func (v *View) save(ctx context.Context, p types.Profile) error {
	if err := v.backend.UpdateProfile(ctx, p.Normalized()); err != nil {
		v.logger.Error("failed to update profile", zap.Error(err))
		return fmt.Errorf("failed to update profile: %w", err)
	}
	v.profile = p
	if v.cache != nil {
		if err := v.cache.SaveProfile(ctx, p); err != nil {
			return fmt.Errorf("failed to cache profile: %w", err)
		}
	}
	return nil
}

// UploadPhoto uploads the image at path and records the URL the backend serves it
// from. The updated profile is written to the cache.
func (v *View) UploadPhoto(ctx context.Context, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open photo: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := v.backend.UploadProfilePhoto(ctx, filepath.Base(path), f); err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}
	url, err := v.backend.ProfilePhoto(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to fetch photo URL: %w", err)
	}
	v.profile.ProfilePhoto = url
	if v.cache != nil {
		if err := v.cache.SaveProfile(ctx, v.profile); err != nil {
			return url, fmt.Errorf("failed to cache profile: %w", err)
		}
	}
	return url, nil
}
