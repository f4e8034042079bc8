//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Status is the tracker column an application sits in.
type Status string

// Known application statuses. The backend stores them as numeric strings.
const (
	StatusWishList        Status = "1"
	StatusWaitingReferral Status = "2"
	StatusApplied         Status = "3"
	StatusRejected        Status = "4"
)

// UnknownLabel is shown for statuses outside the known set.
const UnknownLabel = "Unknown"

// Statuses lists the known statuses in display order.
var Statuses = []Status{StatusWishList, StatusWaitingReferral, StatusApplied, StatusRejected}

// Label returns the display name for the status.
func (s Status) Label() string {
	switch s {
	case StatusWishList:
		return "Wish List"
	case StatusWaitingReferral:
		return "Waiting for Referral"
	case StatusApplied:
		return "Applied"
	case StatusRejected:
		return "Rejected"
	default:
		return UnknownLabel
	}
}

// Known reports whether s is one of the four tracker statuses.
func (s Status) Known() bool {
	return s.Label() != UnknownLabel
}

// ParseStatus accepts a status code ("3") or its label ("applied", any case).
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if s == string(st) || strings.EqualFold(s, st.Label()) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Application is one tracked job application.
// A nil ID means the application has not been created on the backend yet.
type Application struct {
	ID          *int   `json:"id"`
	JobTitle    string `json:"jobTitle" validate:"required"`
	CompanyName string `json:"companyName" validate:"required"`
	Location    string `json:"location"`
	Date        string `json:"date"`
	Status      Status `json:"status" validate:"omitempty,oneof=1 2 3 4"`
	JobLink     string `json:"jobLink" validate:"omitempty,url"`
}

// IsNew reports whether the application still needs to be created.
func (a *Application) IsNew() bool {
	return a.ID == nil
}

// IDValue returns the application id, or 0 when it has not been assigned.
func (a *Application) IDValue() int {
	if a.ID == nil {
		return 0
	}
	return *a.ID
}

// Validate validates the Application using the validator.
func (a *Application) Validate() error {
	validate := validator.New()
	return validate.Struct(a)
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int {
	return &v
}
