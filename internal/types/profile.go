//nolint:revive // types is a standard Go package name pattern
package types

import (
	"bytes"
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// Tag is a label/value pair used by the multi-select profile fields.
type Tag struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// TagList is a list of tags. Anything other than a JSON array decodes to a nil
// list, which is how the profile records a missing or malformed field.
type TagList []Tag

// UnmarshalJSON implements json.Unmarshaler.
func (l *TagList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		*l = nil
		return nil
	}
	var tags []Tag
	if err := json.Unmarshal(trimmed, &tags); err != nil {
		return err
	}
	*l = tags
	return nil
}

// Labels returns the display labels of the list in order.
func (l TagList) Labels() []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		out = append(out, t.Label)
	}
	return out
}

// Profile is the user's profile as stored by the backend.
type Profile struct {
	ID           int     `json:"id,omitempty"`
	Username     string  `json:"username,omitempty"`
	FullName     string  `json:"fullName"`
	Email        string  `json:"email"`
	PhoneNumber  string  `json:"phone_number"`
	Address      string  `json:"address"`
	Institution  string  `json:"institution"`
	Skills       TagList `json:"skills"`
	JobLevels    TagList `json:"job_levels"`
	Locations    TagList `json:"locations"`
	ProfilePhoto string  `json:"profilePhoto,omitempty"`
}

// Incomplete reports whether the profile still needs onboarding.
// A profile without skills has not been through the wizard.
func (p *Profile) Incomplete() bool {
	return p == nil || len(p.Skills) == 0
}

// Normalized returns the subset of the profile that is cached on the client.
// List fields are never nil so they encode as [] rather than null.
func (p Profile) Normalized() Profile {
	out := Profile{
		FullName:    p.FullName,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Address:     p.Address,
		Institution: p.Institution,
		Skills:      nonNilTags(p.Skills),
		JobLevels:   nonNilTags(p.JobLevels),
		Locations:   nonNilTags(p.Locations),
	}
	return out
}

func nonNilTags(l TagList) TagList {
	if l == nil {
		return TagList{}
	}
	return l
}

// PersonalDetails is the field group edited by the profile details dialog.
type PersonalDetails struct {
	FullName    string `json:"fullName" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
	Institution string `json:"institution"`
}

// Validate validates the PersonalDetails using the validator.
func (d *PersonalDetails) Validate() error {
	validate := validator.New()
	return validate.Struct(d)
}

// Details extracts the personal details group from the profile.
func (p Profile) Details() PersonalDetails {
	return PersonalDetails{
		FullName:    p.FullName,
		Email:       p.Email,
		PhoneNumber: p.PhoneNumber,
		Address:     p.Address,
		Institution: p.Institution,
	}
}

// WithDetails returns a copy of the profile with the personal details replaced.
func (p Profile) WithDetails(d PersonalDetails) Profile {
	p.FullName = d.FullName
	p.Email = d.Email
	p.PhoneNumber = d.PhoneNumber
	p.Address = d.Address
	p.Institution = d.Institution
	return p
}
