package fetch

import (
	"net/url"
	"strings"
)

// Platform is a job board or applicant tracking system.
type Platform string

const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformLinkedIn   Platform = "linkedin"
	PlatformIndeed     Platform = "indeed"
	PlatformUnknown    Platform = "unknown"
)

var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
	{"linkedin.com", PlatformLinkedIn},
	{"indeed.com", PlatformIndeed},
}

// DetectPlatform identifies the platform from the link's host.
func DetectPlatform(link string) Platform {
	parsed, err := url.Parse(link)
	if err != nil {
		return PlatformUnknown
	}
	host := strings.ToLower(parsed.Hostname())
	for _, h := range platformHosts {
		if host == h.suffix || strings.HasSuffix(host, "."+h.suffix) {
			return h.platform
		}
	}
	return PlatformUnknown
}

type selectorSet struct {
	title    []string
	company  []string
	location []string
	content  []string
	noise    []string
}

var genericContent = []string{
	".job-description",
	"#job-description",
	"[data-testid='job-description']",
	".posting-content",
	".job-details",
	"main",
	"article",
	"#content",
	"body",
}

var platformSelectors = map[Platform]selectorSet{
	PlatformGreenhouse: {
		title:    []string{".app-title", ".job__title h1"},
		company:  []string{".company-name"},
		location: []string{".location", ".job__location"},
		content:  []string{".job__description.body", ".job__description", "#content"},
		noise:    []string{".application--wrapper", "#application", ".voluntary-self-id"},
	},
	PlatformLever: {
		title:    []string{".posting-headline h2"},
		location: []string{".posting-categories .location", ".sort-by-time.posting-category"},
		content:  []string{".posting-description", ".section-wrapper.page-full-width"},
		noise:    []string{".posting-apply", ".apply-section"},
	},
	PlatformWorkday: {
		title:    []string{"[data-automation-id='jobPostingHeader']"},
		location: []string{"[data-automation-id='locations']"},
		content:  []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']"},
		noise:    []string{"[data-automation-id='applyButton']"},
	},
	PlatformLinkedIn: {
		title:    []string{".top-card-layout__title"},
		company:  []string{".topcard__org-name-link"},
		location: []string{".topcard__flavor--bullet"},
		content:  []string{".show-more-less-html__markup", ".description__text"},
	},
	PlatformIndeed: {
		title:    []string{"[data-testid='jobsearch-JobInfoHeader-title']"},
		company:  []string{"[data-testid='inlineHeader-companyName']"},
		location: []string{"[data-testid='inlineHeader-companyLocation']"},
		content:  []string{"#jobDescriptionText"},
	},
}

func selectors(p Platform) selectorSet {
	return platformSelectors[p]
}
