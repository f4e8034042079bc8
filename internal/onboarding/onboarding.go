// Package onboarding implements the three-step profile setup wizard shown to users
// whose profile has no skills yet.
package onboarding

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jonathan/jtrack/internal/types"
)

// Step is the wizard state.
type Step int

const (
	StepPersonalInfo Step = iota + 1
	StepSkillsExperience
	StepPreferences
	StepComplete
)

// TotalSteps is the number of form steps before completion.
const TotalSteps = 3

func (s Step) String() string {
	switch s {
	case StepPersonalInfo:
		return "Personal Information"
	case StepSkillsExperience:
		return "Skills & Experience"
	case StepPreferences:
		return "Job Preferences"
	case StepComplete:
		return "Complete"
	default:
		return fmt.Sprintf("Step(%d)", int(s))
	}
}

// Form holds everything the wizard collects. It has the same shape as the
// cached profile.
type Form struct {
	FullName    string
	Email       string
	PhoneNumber string
	Address     string
	Institution string
	Skills      types.TagList
	JobLevels   types.TagList
	Locations   types.TagList
}

// Profile returns the form as a profile, with empty lists instead of nil.
func (f Form) Profile() types.Profile {
	return types.Profile{
		FullName:    f.FullName,
		Email:       f.Email,
		PhoneNumber: f.PhoneNumber,
		Address:     f.Address,
		Institution: f.Institution,
		Skills:      f.Skills,
		JobLevels:   f.JobLevels,
		Locations:   f.Locations,
	}.Normalized()
}

// TransitionError is returned when a transition is not allowed from the current step.
type TransitionError struct {
	From   Step
	Action string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s from %s: %s", e.Action, e.From, e.Reason)
}

// Submitter sends the completed form to the backend.
type Submitter interface {
	UpdateProfile(ctx context.Context, p types.Profile) error
}

// ProfileCache stores the completed form locally.
type ProfileCache interface {
	SaveProfile(ctx context.Context, p types.Profile) error
}

// Result is what Complete hands back to the shell.
type Result struct {
	Profile types.Profile
	// Warning is set when the backend rejected the submission. The profile was
	// still cached locally and the wizard is complete.
	Warning error
}

// SaveFailedMessage is shown when the submission fails but the wizard completes anyway.
const SaveFailedMessage = "There was an error communicating with the server, but your profile has been saved locally."

// Wizard is the onboarding state machine. Leaving the first step needs a full
// name and email that are non-blank after trimming, so "  " does not pass.
// Leaving the second step needs at least one skill.
type Wizard struct {
	step      Step
	form      Form
	submitter Submitter
	cache     ProfileCache
	logger    *zap.Logger
}

// New creates a wizard prefilled from profile, which may be nil.
func New(profile *types.Profile, submitter Submitter, cache ProfileCache, logger *zap.Logger) *Wizard {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &Wizard{step: StepPersonalInfo, submitter: submitter, cache: cache, logger: logger}
	if profile != nil {
		w.form = Form{
			FullName:    profile.FullName,
			Email:       profile.Email,
			PhoneNumber: profile.PhoneNumber,
			Address:     profile.Address,
			Institution: profile.Institution,
			Skills:      profile.Skills,
			JobLevels:   profile.JobLevels,
			Locations:   profile.Locations,
		}
	}
	return w
}

// Step returns the current step.
func (w *Wizard) Step() Step {
	return w.step
}

// Form returns a copy of the form.
func (w *Wizard) Form() Form {
	return w.form
}

// SetForm replaces the form. Edits are allowed at any step before completion.
func (w *Wizard) SetForm(f Form) {
	w.form = f
}

// Update applies fn to the form.
func (w *Wizard) Update(fn func(*Form)) {
	fn(&w.form)
}

// Progress is the completed share of the form steps, from 1/3 at the first step to 1.
func (w *Wizard) Progress() float64 {
	step := w.step
	if step > TotalSteps {
		step = TotalSteps
	}
	return float64(step) / TotalSteps
}

// CanNext reports whether Next would succeed.
func (w *Wizard) CanNext() bool {
	return w.nextBlocker() == ""
}

func (w *Wizard) nextBlocker() string {
	switch w.step {
	case StepPersonalInfo:
		if strings.TrimSpace(w.form.FullName) == "" || strings.TrimSpace(w.form.Email) == "" {
			return "full name and email are required"
		}
		return ""
	case StepSkillsExperience:
		if len(w.form.Skills) == 0 {
			return "select at least one skill"
		}
		return ""
	case StepPreferences:
		return "use Complete Setup on the last step"
	default:
		return "onboarding is complete"
	}
}

// Next moves one step forward when the current step's guard holds.
func (w *Wizard) Next() error {
	if reason := w.nextBlocker(); reason != "" {
		return &TransitionError{From: w.step, Action: "go to next step", Reason: reason}
	}
	w.step++
	return nil
}

// Previous moves one step back.
func (w *Wizard) Previous() error {
	if w.step == StepPersonalInfo || w.step == StepComplete {
		return &TransitionError{From: w.step, Action: "go to previous step", Reason: "no previous step"}
	}
	w.step--
	return nil
}

// Complete submits the form from the last step. The wizard completes and the form
// is cached whether or not the backend accepts it. A backend failure comes back
// as Result.Warning; only a wrong step or a failed local write is an error.
func (w *Wizard) Complete(ctx context.Context) (*Result, error) {
	if w.step != StepPreferences {
		return nil, &TransitionError{From: w.step, Action: "complete setup", Reason: "not on the last step"}
	}
	profile := w.form.Profile()

	result := &Result{Profile: profile}
	if err := w.submitter.UpdateProfile(ctx, profile); err != nil {
		w.logger.Warn("onboarding profile update failed, keeping local copy", zap.Error(err))
		result.Warning = fmt.Errorf("failed to update profile: %w", err)
	}

	w.step = StepComplete
	if err := w.cache.SaveProfile(ctx, profile); err != nil {
		return result, fmt.Errorf("failed to cache profile: %w", err)
	}
	w.logger.Info("onboarding completed", zap.Int("skills", len(profile.Skills)))
	return result, nil
}

// ParseTags turns "Go, Python" into tags with matching label and value.
// Blank entries and repeats are dropped.
func ParseTags(s string) types.TagList {
	out := types.TagList{}
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		label := strings.TrimSpace(part)
		if label == "" || seen[strings.ToLower(label)] {
			continue
		}
		seen[strings.ToLower(label)] = true
		out = append(out, types.Tag{Label: label, Value: label})
	}
	return out
}
