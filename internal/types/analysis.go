//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Insights is the career insight report returned by /search for a role.
type Insights struct {
	RoleOverview      string             `json:"roleOverview"`
	Prerequisites     *Prerequisites     `json:"prerequisites,omitempty"`
	TechnicalSkills   []SkillSet         `json:"technicalSkills"`
	SoftSkills        []string           `json:"softSkills"`
	Certifications    []Certification    `json:"certifications"`
	ProjectIdeas      []ProjectIdea      `json:"projectIdeas"`
	IndustryTrends    []string           `json:"industryTrends"`
	SalaryRange       *SalaryRange       `json:"salaryRange,omitempty"`
	CareerPath        *CareerPath        `json:"careerPath,omitempty"`
	LearningResources []LearningResource `json:"learningResources"`
}

// Prerequisites lists what a role expects before hiring.
type Prerequisites struct {
	Education  []string `json:"education"`
	Experience []string `json:"experience"`
	Skills     []string `json:"skills"`
}

// SkillSet groups tools under a technical category.
type SkillSet struct {
	Category string   `json:"category"`
	Tools    []string `json:"tools"`
}

// Certification is a recommended certification.
type Certification struct {
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Level       string `json:"level"`
	Description string `json:"description"`
}

// ProjectIdea is a suggested portfolio project.
type ProjectIdea struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Technologies     []string `json:"technologies"`
	LearningOutcomes []string `json:"learningOutcomes"`
}

// SalaryRange holds salary bands by seniority.
type SalaryRange struct {
	Entry   string   `json:"entry"`
	Mid     string   `json:"mid"`
	Senior  string   `json:"senior"`
	Factors []string `json:"factors"`
}

// CareerPath describes progression within the role.
type CareerPath struct {
	EntryLevel  string   `json:"entryLevel"`
	MidLevel    string   `json:"midLevel"`
	Senior      string   `json:"senior"`
	Advancement []string `json:"advancement"`
}

// LearningResource is a course, book, or site for the role.
type LearningResource struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Cost        string `json:"cost"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// ParsedResume is the structured resume returned by /parse-resume.
type ParsedResume struct {
	Skills         []string `json:"skills"`
	Experience     []string `json:"experience"`
	Education      []string `json:"education"`
	Certifications []string `json:"certifications"`
}

// Percent is a 0-100 match score. The backend relays model output, so it
// accepts both 85 and "85%".
type Percent float64

// UnmarshalJSON implements json.Unmarshaler.
func (p *Percent) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = 0
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid percentage %q: %w", s, err)
		}
		*p = Percent(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*p = Percent(v)
	return nil
}

// Valid reports whether the score is inside 0-100.
func (p Percent) Valid() bool {
	return p >= 0 && p <= 100
}

// Comparison is the resume-vs-role comparison returned by /compare-resume.
type Comparison struct {
	OverallMatch    Percent  `json:"overallMatch"`
	MatchingSkills  []string `json:"matchingSkills"`
	MissingSkills   []string `json:"missingSkills"`
	Recommendations []string `json:"recommendations"`
}

// CompareRequest is the body posted to /compare-resume.
type CompareRequest struct {
	Resume      *ParsedResume `json:"resume"`
	JobInsights *Insights     `json:"jobInsights"`
}

// Analysis is one completed search-and-compare cycle kept in the history.
type Analysis struct {
	ID         string      `json:"id"`
	SearchTerm string      `json:"searchTerm"`
	Date       string      `json:"date"`
	Insights   *Insights   `json:"insights"`
	Comparison *Comparison `json:"comparison"`
}
