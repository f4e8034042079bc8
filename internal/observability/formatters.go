// Package observability provides logging and formatted terminal output for the CLI.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/jtrack/internal/fetch"
	"github.com/jonathan/jtrack/internal/insights"
	"github.com/jonathan/jtrack/internal/matches"
	"github.com/jonathan/jtrack/internal/onboarding"
	"github.com/jonathan/jtrack/internal/profile"
	"github.com/jonathan/jtrack/internal/shell"
	"github.com/jonathan/jtrack/internal/tracker"
	"github.com/jonathan/jtrack/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
	// textWidth is the usable width inside a box
	textWidth = boxWidth - 4
)

// Printer renders jtrack views as boxes on a terminal.
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", textWidth, truncate(title, textWidth))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", textWidth, truncate(line, textWidth))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintMessage prints a single-line notice.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintMessage(msg string) {
	fmt.Fprintln(p.out, msg)
}

// PrintState shows the page the session lands on.
func (p *Printer) PrintState(state shell.State) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Page:     %s\n", state.Page))
	if state.Profile == nil {
		sb.WriteString("Signed in: no")
	} else {
		sb.WriteString("Signed in: yes\n")
		if state.Profile.Username != "" {
			sb.WriteString(fmt.Sprintf("User:     %s\n", state.Profile.Username))
		}
		sb.WriteString(fmt.Sprintf("Name:     %s", state.Profile.FullName))
	}
	p.printBox(strings.ToUpper(state.Title()), sb.String())
}

// PrintWizard shows the current onboarding step and what it holds.
func (p *Printer) PrintWizard(w *onboarding.Wizard) {
	if w == nil {
		return
	}
	form := w.Form()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Step %s  %s\n\n", stepCounter(w.Step()), progressBar(w.Progress(), 20)))
	switch w.Step() {
	case onboarding.StepPersonalInfo:
		sb.WriteString(fmt.Sprintf("Full name:   %s\n", form.FullName))
		sb.WriteString(fmt.Sprintf("Email:       %s\n", form.Email))
		sb.WriteString(fmt.Sprintf("Phone:       %s\n", form.PhoneNumber))
		sb.WriteString(fmt.Sprintf("Address:     %s\n", form.Address))
		sb.WriteString(fmt.Sprintf("Institution: %s", form.Institution))
	case onboarding.StepSkillsExperience:
		sb.WriteString(fmt.Sprintf("Skills:     %s\n", joinOrDash(form.Skills.Labels())))
		sb.WriteString(fmt.Sprintf("Job levels: %s", joinOrDash(form.JobLevels.Labels())))
	case onboarding.StepPreferences:
		sb.WriteString(fmt.Sprintf("Locations: %s", joinOrDash(form.Locations.Labels())))
	default:
		sb.WriteString("All set.")
	}
	p.printBox(strings.ToUpper(w.Step().String()), sb.String())
}

func stepCounter(s onboarding.Step) string {
	if s > onboarding.TotalSteps {
		return "done"
	}
	return fmt.Sprintf("%d/%d", int(s), onboarding.TotalSteps)
}

func progressBar(share float64, width int) string {
	filled := int(share*float64(width) + 0.5)
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}

// PrintBoard outputs the grouped application list. Closed sections show only
// their header.
func (p *Printer) PrintBoard(sections []tracker.Section) {
	if len(sections) == 0 {
		p.printBox("APPLICATIONS", "No applications yet.")
		return
	}

	var sb strings.Builder
	for i, s := range sections {
		marker := "▾"
		if !s.Open {
			marker = "▸"
		}
		sb.WriteString(fmt.Sprintf("%s %s\n", marker, s.Header()))
		if s.Open {
			for _, app := range s.Apps {
				sb.WriteString("  " + applicationLine(app) + "\n")
			}
		}
		if i < len(sections)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("APPLICATIONS", strings.TrimSuffix(sb.String(), "\n"))
}

func applicationLine(app types.Application) string {
	id := "-"
	if app.ID != nil {
		id = fmt.Sprintf("%d", *app.ID)
	}
	line := fmt.Sprintf("#%s %s @ %s", id, app.JobTitle, app.CompanyName)
	if app.Location != "" {
		line += " (" + app.Location + ")"
	}
	return line
}

// PrintApplication outputs one application in full.
func (p *Printer) PrintApplication(app types.Application) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Job title: %s\n", app.JobTitle))
	sb.WriteString(fmt.Sprintf("Company:   %s\n", app.CompanyName))
	sb.WriteString(fmt.Sprintf("Location:  %s\n", valueOrDash(app.Location)))
	sb.WriteString(fmt.Sprintf("Date:      %s\n", valueOrDash(app.Date)))
	sb.WriteString(fmt.Sprintf("Status:    %s\n", app.Status.Label()))
	sb.WriteString(fmt.Sprintf("Link:      %s", valueOrDash(app.JobLink)))

	title := "NEW APPLICATION"
	if app.ID != nil {
		title = fmt.Sprintf("APPLICATION #%d", *app.ID)
	}
	p.printBox(title, sb.String())
}

// PrintPreview outputs what a job posting page says about itself.
func (p *Printer) PrintPreview(preview *fetch.Preview) {
	if preview == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Platform: %s\n", preview.Platform))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", valueOrDash(preview.Title)))
	sb.WriteString(fmt.Sprintf("Company:  %s\n", valueOrDash(preview.Company)))
	sb.WriteString(fmt.Sprintf("Location: %s", valueOrDash(preview.Location)))
	if preview.Description != "" {
		sb.WriteString("\n\n")
		sb.WriteString(wrap(preview.Description, textWidth))
	}
	p.printBox("JOB POSTING PREVIEW", sb.String())
}

// PrintProfile outputs the profile page summary.
func (p *Printer) PrintProfile(s *profile.Summary) {
	if s == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("(%s)  %s\n", s.Initials, s.FullName))
	if s.PhotoURL != "" {
		sb.WriteString(fmt.Sprintf("Photo: %s\n", s.PhotoURL))
	}
	sb.WriteString("\n")
	for _, c := range s.Contact {
		sb.WriteString(fmt.Sprintf("%-12s %s\n", c.Label+":", c.Value))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Skills:     %s\n", joinOrDash(s.Skills)))
	sb.WriteString(fmt.Sprintf("Job levels: %s\n", joinOrDash(s.JobLevels)))
	sb.WriteString(fmt.Sprintf("Locations:  %s\n", joinOrDash(s.Locations)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Applications: %d\n", s.Applications))

	labels := make([]string, 0, len(s.Counts))
	for label := range s.Counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		sb.WriteString(fmt.Sprintf("  • %s: %d\n", label, s.Counts[label]))
	}
	sb.WriteString(fmt.Sprintf("Analyses:     %d", len(s.Analyses)))

	p.printBox("PROFILE", sb.String())
}

// PrintSearchResult outputs a search cycle: insights, the comparison when there
// is one, and why it is missing when there is not.
func (p *Printer) PrintSearchResult(r *insights.Result) {
	if r == nil {
		return
	}
	p.PrintInsights(r.SearchTerm, r.Insights)

	switch {
	case r.Comparison != nil:
		p.PrintComparison(r.Comparison)
	case r.ResumeErr != nil:
		p.printBox("RESUME MATCH", "Comparison skipped: "+r.ResumeErr.Error())
	case r.CompareErr != nil:
		p.printBox("RESUME MATCH", "Comparison skipped: "+r.CompareErr.Error())
	}
	if r.SaveErr != nil {
		p.PrintMessage("Warning: analysis was not saved: " + r.SaveErr.Error())
	}
}

// PrintInsights outputs the career insight report for a role.
func (p *Printer) PrintInsights(term string, in *types.Insights) {
	if in == nil {
		return
	}

	var sb strings.Builder
	if in.RoleOverview != "" {
		sb.WriteString("Role Overview:\n")
		sb.WriteString(wrap(in.RoleOverview, textWidth) + "\n\n")
	}
	if pre := in.Prerequisites; pre != nil {
		sb.WriteString("Prerequisites:\n")
		writeList(&sb, "Education", pre.Education)
		writeList(&sb, "Experience", pre.Experience)
		writeList(&sb, "Skills", pre.Skills)
		sb.WriteString("\n")
	}
	if len(in.TechnicalSkills) > 0 {
		sb.WriteString("Technical Skills:\n")
		for _, set := range limit(in.TechnicalSkills) {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", set.Category, strings.Join(set.Tools, ", ")))
		}
		writeMore(&sb, len(in.TechnicalSkills))
		sb.WriteString("\n")
	}
	writeSection(&sb, "Soft Skills", in.SoftSkills)
	if len(in.Certifications) > 0 {
		sb.WriteString("Recommended Certifications:\n")
		for _, c := range limit(in.Certifications) {
			sb.WriteString(fmt.Sprintf("  • %s (%s, %s)\n", c.Name, c.Provider, c.Level))
		}
		writeMore(&sb, len(in.Certifications))
		sb.WriteString("\n")
	}
	if len(in.ProjectIdeas) > 0 {
		sb.WriteString("Project Ideas:\n")
		for _, idea := range limit(in.ProjectIdeas) {
			sb.WriteString(fmt.Sprintf("  • %s\n", idea.Title))
			if len(idea.Technologies) > 0 {
				sb.WriteString(fmt.Sprintf("    [%s]\n", strings.Join(idea.Technologies, ", ")))
			}
		}
		writeMore(&sb, len(in.ProjectIdeas))
		sb.WriteString("\n")
	}
	writeSection(&sb, "Industry Trends", in.IndustryTrends)
	if sr := in.SalaryRange; sr != nil {
		sb.WriteString("Salary Ranges:\n")
		sb.WriteString(fmt.Sprintf("  Entry:  %s\n", sr.Entry))
		sb.WriteString(fmt.Sprintf("  Mid:    %s\n", sr.Mid))
		sb.WriteString(fmt.Sprintf("  Senior: %s\n", sr.Senior))
		sb.WriteString("\n")
	}
	if cp := in.CareerPath; cp != nil {
		sb.WriteString("Career Path:\n")
		sb.WriteString(fmt.Sprintf("  Entry:  %s\n", cp.EntryLevel))
		sb.WriteString(fmt.Sprintf("  Mid:    %s\n", cp.MidLevel))
		sb.WriteString(fmt.Sprintf("  Senior: %s\n", cp.Senior))
		sb.WriteString("\n")
	}
	if len(in.LearningResources) > 0 {
		sb.WriteString("Learning Resources:\n")
		for _, r := range limit(in.LearningResources) {
			sb.WriteString(fmt.Sprintf("  • %s (%s, %s)\n", r.Name, r.Type, r.Cost))
			if r.URL != "" {
				sb.WriteString(fmt.Sprintf("    %s\n", r.URL))
			}
		}
		writeMore(&sb, len(in.LearningResources))
	}

	p.printBox("CAREER INSIGHTS: "+term, strings.TrimRight(sb.String(), "\n"))
}

// PrintComparison outputs how the resume matches the role.
func (p *Printer) PrintComparison(c *types.Comparison) {
	if c == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall match: %.0f%%  %s\n\n", float64(c.OverallMatch), progressBar(float64(c.OverallMatch)/100, 20)))
	writeSection(&sb, "Matching Skills", c.MatchingSkills)
	writeSection(&sb, "Missing Skills", c.MissingSkills)
	writeSection(&sb, "Recommendations", c.Recommendations)

	p.printBox("RESUME MATCH", strings.TrimRight(sb.String(), "\n"))
}

// PrintHistory outputs past analyses, newest first, marking the selected one.
func (p *Printer) PrintHistory(history []types.Analysis, selected string) {
	if len(history) == 0 {
		p.printBox("PAST ANALYSES", "No past analyses.")
		return
	}

	var sb strings.Builder
	for i := len(history) - 1; i >= 0; i-- {
		a := history[i]
		marker := " "
		if a.ID == selected {
			marker = "▶"
		}
		line := fmt.Sprintf("%s %s  %s", marker, shortDate(a.Date), a.SearchTerm)
		if a.Comparison != nil {
			line += fmt.Sprintf(" (%.0f%%)", float64(a.Comparison.OverallMatch))
		}
		sb.WriteString(line + "\n")
		sb.WriteString(fmt.Sprintf("  id: %s\n", a.ID))
	}
	p.printBox("PAST ANALYSES", strings.TrimSuffix(sb.String(), "\n"))
}

func shortDate(date string) string {
	if len(date) >= 10 {
		return date[:10]
	}
	return date
}

// PrintMatches outputs shared jobs or the empty-pool message.
func (p *Printer) PrintMatches(r matches.Result) {
	if len(r.Jobs) == 0 {
		msg := r.Message
		if msg == "" {
			msg = matches.EmptyMessage
		}
		p.printBox("RECOMMENDED JOBS", wrap(msg, textWidth))
		return
	}

	var sb strings.Builder
	for i, job := range r.Jobs {
		sb.WriteString(fmt.Sprintf("• %s @ %s\n", job.JobTitle, job.CompanyName))
		if job.Location != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", job.Location))
		}
		sb.WriteString(fmt.Sprintf("  Applied by %d  id: %s\n", job.AppliedBy, job.ID))
		if job.JobLink != "" {
			sb.WriteString(fmt.Sprintf("  %s\n", job.JobLink))
		}
		if i < len(r.Jobs)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox("RECOMMENDED JOBS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResumeText outputs extracted resume text.
func (p *Printer) PrintResumeText(name, text string) {
	if strings.TrimSpace(text) == "" {
		text = "(no text found)"
	}
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		lines = append(lines, wrap(line, textWidth))
	}
	p.printBox("RESUME: "+name, strings.Join(lines, "\n"))
}

func writeSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	for _, item := range limit(items) {
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	writeMore(sb, len(items))
	sb.WriteString("\n")
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("  %s: %s\n", label, strings.Join(items, ", ")))
}

func writeMore(sb *strings.Builder, total int) {
	if total > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", total-maxItemsToShow))
	}
}

func limit[T any](items []T) []T {
	return items[:min(len(items), maxItemsToShow)]
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens s to width runes, ending in "..." when cut.
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	r := []rune(s)
	return string(r[:width-3]) + "..."
}

// wrap breaks s into lines of at most width runes on word boundaries.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if utf8.RuneCountInString(line)+1+utf8.RuneCountInString(w) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}
