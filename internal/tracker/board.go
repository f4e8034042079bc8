// Package tracker holds the application list, groups it into status sections for
// display, and applies create/update/delete against the backend.
package tracker

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/jonathan/jtrack/internal/types"
)

// Section is one status group of the board.
type Section struct {
	Status types.Status // empty for applications without a status
	Label  string
	Apps   []types.Application
	Open   bool
}

// Header renders "Label (count)".
func (s Section) Header() string {
	return fmt.Sprintf("%s (%d)", s.Label, len(s.Apps))
}

// Board groups applications by status. Sections keep the order in which their
// status first appears in the list. The query filters every section by company name.
type Board struct {
	apps   []types.Application
	query  string
	closed map[types.Status]bool
}

// NewBoard creates a board over apps. All sections start open.
func NewBoard(apps []types.Application) *Board {
	b := &Board{closed: make(map[types.Status]bool)}
	b.SetApplications(apps)
	return b
}

// Applications returns a copy of the underlying list.
func (b *Board) Applications() []types.Application {
	out := make([]types.Application, len(b.apps))
	copy(out, b.apps)
	return out
}

// SetApplications replaces the list.
func (b *Board) SetApplications(apps []types.Application) {
	b.apps = make([]types.Application, len(apps))
	copy(b.apps, apps)
}

// Append adds an application at the end of the list.
func (b *Board) Append(app types.Application) {
	b.apps = append(b.apps, app)
}

// Replace swaps the element with app's id for app. It reports whether one matched.
func (b *Board) Replace(app types.Application) bool {
	if app.ID == nil {
		return false
	}
	for i := range b.apps {
		if b.apps[i].ID != nil && *b.apps[i].ID == *app.ID {
			b.apps[i] = app
			return true
		}
	}
	return false
}

// Find returns the application with id.
func (b *Board) Find(id int) (types.Application, bool) {
	for _, a := range b.apps {
		if a.ID != nil && *a.ID == id {
			return a, true
		}
	}
	return types.Application{}, false
}

// Query returns the live search query.
func (b *Board) Query() string {
	return b.query
}

// SetQuery sets the company-name filter.
func (b *Board) SetQuery(q string) {
	b.query = q
}

// Toggle flips a section between open and closed.
func (b *Board) Toggle(status types.Status) {
	b.closed[status] = !b.closed[status]
}

// SetOpen opens or closes a section.
func (b *Board) SetOpen(status types.Status, open bool) {
	b.closed[status] = !open
}

// Sections returns the grouped, filtered view. Sections left empty by the
// filter are omitted.
func (b *Board) Sections() []Section {
	return Group(b.apps, b.query, b.closed)
}

// Counts returns the number of applications per status label.
func (b *Board) Counts() map[string]int {
	return Counts(b.apps)
}

// Group builds sections from apps. closed marks sections that are collapsed; nil
// means all open.
func Group(apps []types.Application, query string, closed map[types.Status]bool) []Section {
	folder := cases.Fold()
	needle := folder.String(query)

	var order []types.Status
	groups := make(map[types.Status][]types.Application)
	for _, app := range apps {
		if _, seen := groups[app.Status]; !seen {
			order = append(order, app.Status)
			groups[app.Status] = nil
		}
		if needle == "" || strings.Contains(folder.String(app.CompanyName), needle) {
			groups[app.Status] = append(groups[app.Status], app)
		}
	}

	sections := make([]Section, 0, len(order))
	for _, status := range order {
		matched := groups[status]
		if len(matched) == 0 {
			continue
		}
		sections = append(sections, Section{
			Status: status,
			Label:  status.Label(),
			Apps:   matched,
			Open:   !closed[status],
		})
	}
	return sections
}

// Counts returns the number of applications per status label.
func Counts(apps []types.Application) map[string]int {
	out := make(map[string]int)
	for _, a := range apps {
		out[a.Status.Label()]++
	}
	return out
}
