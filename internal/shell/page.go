package shell

import (
	"fmt"
	"strings"
)

// Page is the page the shell is showing.
type Page int

const (
	PageLogin Page = iota
	PageOnboarding
	PageProfile
	PageApplications
	PageSearch
	PageResume
	PageMatches
)

var pageNames = map[Page]string{
	PageLogin:        "login",
	PageOnboarding:   "onboarding",
	PageProfile:      "profile",
	PageApplications: "applications",
	PageSearch:       "search",
	PageResume:       "resume",
	PageMatches:      "matches",
}

// Pages lists every page in sidebar order.
func Pages() []Page {
	return []Page{PageLogin, PageOnboarding, PageProfile, PageApplications, PageSearch, PageResume, PageMatches}
}

func (p Page) String() string {
	if name, ok := pageNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Page(%d)", int(p))
}

// Title returns the heading shown for the page.
func (p Page) Title() string {
	switch p {
	case PageLogin:
		return "Login"
	case PageOnboarding:
		return "Welcome to J-Tracker"
	case PageProfile:
		return "Profile"
	case PageApplications:
		return "Application Tracker"
	case PageSearch:
		return "Job Search"
	case PageResume:
		return "Manage Resume"
	case PageMatches:
		return "Recommended Jobs"
	default:
		return "J-Tracker"
	}
}

// ParsePage maps a name such as "applications" to its page.
func ParsePage(name string) (Page, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range pageNames {
		if n == name {
			return p, nil
		}
	}
	return PageLogin, fmt.Errorf("unknown page %q", name)
}
