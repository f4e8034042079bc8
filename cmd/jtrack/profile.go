package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jtrack/internal/onboarding"
	"github.com/jonathan/jtrack/internal/profile"
	"github.com/jonathan/jtrack/internal/shell"
	"github.com/jonathan/jtrack/internal/types"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit the profile",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the profile with application and analysis counts",
	RunE:  runProfileShow,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit personal details, skills, job levels, or locations",
	RunE:  runProfileEdit,
}

var profilePhotoCmd = &cobra.Command{
	Use:   "photo <image-file>",
	Short: "Upload a profile photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilePhoto,
}

func init() {
	addFormFlags(profileEditCmd)
	profileCmd.AddCommand(profileShowCmd, profileEditCmd, profilePhotoCmd)
	rootCmd.AddCommand(profileCmd)
}

func (a *app) profileView(ctx context.Context) (*profile.View, error) {
	p, err := a.open(ctx, shell.PageProfile)
	if err != nil {
		return nil, err
	}
	return profile.New(*p, a.api, a.store, a.logger.Named("profile")), nil
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		view, err := a.profileView(ctx)
		if err != nil {
			return err
		}
		summary, err := view.Load(ctx)
		if err != nil {
			return err
		}
		a.printer.PrintProfile(summary)
		return nil
	})
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		view, err := a.profileView(ctx)
		if err != nil {
			return err
		}

		changed := cmd.Flags().Changed
		saved := false

		details := view.Profile().Details()
		if applyDetails(cmd, &details) {
			if err := view.EditDetails(ctx, details); err != nil {
				return err
			}
			saved = true
		}
		if changed("skills") {
			if err := view.EditSkills(ctx, onboarding.ParseTags(form.skills)); err != nil {
				return err
			}
			saved = true
		}
		if changed("job-levels") {
			if err := view.EditJobLevels(ctx, onboarding.ParseTags(form.jobLevels)); err != nil {
				return err
			}
			saved = true
		}
		if changed("locations") {
			if err := view.EditLocations(ctx, onboarding.ParseTags(form.locations)); err != nil {
				return err
			}
			saved = true
		}
		if !saved {
			return fmt.Errorf("nothing to edit, pass at least one field flag")
		}
		a.printer.PrintProfile(view.Summarize())
		return nil
	})
}

func runProfilePhoto(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		view, err := a.profileView(ctx)
		if err != nil {
			return err
		}
		url, err := view.UploadPhoto(ctx, args[0])
		if err != nil {
			return err
		}
		a.printer.PrintMessage(fmt.Sprintf("Profile photo updated: %s", url))
		return nil
	})
}

// applyDetails copies the personal detail flags the user set onto d and reports
// whether any was set.
func applyDetails(cmd *cobra.Command, d *types.PersonalDetails) bool {
	changed := cmd.Flags().Changed
	set := false
	if changed("full-name") {
		d.FullName, set = form.fullName, true
	}
	if changed("email") {
		d.Email, set = form.email, true
	}
	if changed("phone") {
		d.PhoneNumber, set = form.phone, true
	}
	if changed("address") {
		d.Address, set = form.address, true
	}
	if changed("institution") {
		d.Institution, set = form.institution, true
	}
	return set
}
