package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/jtrack/internal/onboarding"
	"github.com/jonathan/jtrack/internal/shell"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Fill in the profile through the onboarding steps",
	Long:  "Walks the three onboarding steps with the given values, prefilled from the current profile, and submits the result. Lists are comma separated.",
	RunE:  runOnboard,
}

var form struct {
	fullName    string
	email       string
	phone       string
	address     string
	institution string
	skills      string
	jobLevels   string
	locations   string
}

func init() {
	addFormFlags(onboardCmd)
	rootCmd.AddCommand(onboardCmd)
}

// addFormFlags registers the profile form fields on cmd.
func addFormFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&form.fullName, "full-name", "", "Full name")
	f.StringVar(&form.email, "email", "", "Email address")
	f.StringVar(&form.phone, "phone", "", "Phone number")
	f.StringVar(&form.address, "address", "", "Address")
	f.StringVar(&form.institution, "institution", "", "School or employer")
	f.StringVar(&form.skills, "skills", "", "Skills, e.g. \"Go, SQL\"")
	f.StringVar(&form.jobLevels, "job-levels", "", "Experience levels you are looking for")
	f.StringVar(&form.locations, "locations", "", "Preferred locations")
}

// applyForm copies the flags the user set onto f.
func applyForm(cmd *cobra.Command, f *onboarding.Form) {
	changed := cmd.Flags().Changed
	if changed("full-name") {
		f.FullName = form.fullName
	}
	if changed("email") {
		f.Email = form.email
	}
	if changed("phone") {
		f.PhoneNumber = form.phone
	}
	if changed("address") {
		f.Address = form.address
	}
	if changed("institution") {
		f.Institution = form.institution
	}
	if changed("skills") {
		f.Skills = onboarding.ParseTags(form.skills)
	}
	if changed("job-levels") {
		f.JobLevels = onboarding.ParseTags(form.jobLevels)
	}
	if changed("locations") {
		f.Locations = onboarding.ParseTags(form.locations)
	}
}

func runOnboard(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		profile, err := a.open(ctx, shell.PageOnboarding)
		if err != nil {
			return err
		}

		wizard := onboarding.New(profile, a.api, a.store, a.logger.Named("onboarding"))
		wizard.Update(func(f *onboarding.Form) { applyForm(cmd, f) })

		for wizard.Step() < onboarding.StepPreferences {
			a.printer.PrintWizard(wizard)
			if err := wizard.Next(); err != nil {
				return err
			}
		}
		a.printer.PrintWizard(wizard)

		result, err := wizard.Complete(ctx)
		if err != nil {
			return err
		}
		if result.Warning != nil {
			a.printer.PrintMessage(onboarding.SaveFailedMessage)
		}
		a.printer.PrintState(a.shell.CompleteOnboarding(result.Profile))
		return nil
	})
}
