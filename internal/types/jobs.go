//nolint:revive // types is a standard Go package name pattern
package types

// SharedJob is a job from the shared pool that other users have applied to.
type SharedJob struct {
	ID          string `json:"id"`
	JobTitle    string `json:"jobTitle"`
	CompanyName string `json:"companyName"`
	Location    string `json:"location"`
	JobLink     string `json:"jobLink"`
	Date        string `json:"date,omitempty"`
	AppliedBy   int    `json:"appliedBy"`
}

// WishlistRequest is the body posted to /wishlist.
type WishlistRequest struct {
	JobID string `json:"jobId"`
}

// PhotoResponse is returned by GET /profilePhoto.
type PhotoResponse struct {
	URL string `json:"url"`
}
