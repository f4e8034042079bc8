// Package api exposes each J-Tracker backend endpoint as a typed method over the gateway.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jonathan/jtrack/internal/gateway"
	"github.com/jonathan/jtrack/internal/schemas"
	"github.com/jonathan/jtrack/internal/types"
)

// Doer is the gateway surface the client needs.
type Doer interface {
	Do(ctx context.Context, req gateway.Request, out any) error
	DoRaw(ctx context.Context, req gateway.Request) (*gateway.Response, error)
}

// Client calls the backend endpoints.
type Client struct {
	gw Doer
}

// New wraps a gateway.
func New(gw Doer) *Client {
	return &Client{gw: gw}
}

// Login posts the credentials. A payload carrying an error or no profile is a failure.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	if err := c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, URL: "/users/login", Body: req}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &gateway.Error{Method: http.MethodPost, URL: "/users/login", Status: http.StatusOK, Message: resp.Error}
	}
	if resp.Profile == nil {
		return nil, &gateway.Error{Method: http.MethodPost, URL: "/users/login", Status: http.StatusOK, Message: "login response has no profile"}
	}
	return &resp, nil
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, req types.SignupRequest) (*types.SignupResponse, error) {
	var resp types.SignupResponse
	if err := c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, URL: "/users/signup", Body: req}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout tells the backend to drop the token.
func (c *Client) Logout(ctx context.Context) error {
	return c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, URL: "/users/logout"}, nil)
}

// GetProfile fetches the profile of userID.
func (c *Client) GetProfile(ctx context.Context, userID string) (*types.Profile, error) {
	var p types.Profile
	req := gateway.Request{URL: "/getProfile", Headers: map[string]string{"userid": userID}}
	if err := c.gw.Do(ctx, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProfile replaces the profile on the backend.
func (c *Client) UpdateProfile(ctx context.Context, p types.Profile) error {
	return c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, URL: "/updateProfile", Body: p}, nil)
}

// UploadProfilePhoto sends the photo as multipart field "profilePhoto".
func (c *Client) UploadProfilePhoto(ctx context.Context, fileName string, content io.Reader) error {
	body := &gateway.Multipart{Files: []gateway.FilePart{{Field: "profilePhoto", FileName: fileName, Content: content}}}
	return c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, URL: "/profilePhoto", Body: body}, nil)
}

// ProfilePhoto returns the URL of the stored profile photo.
func (c *Client) ProfilePhoto(ctx context.Context) (string, error) {
	var resp types.PhotoResponse
	if err := c.gw.Do(ctx, gateway.Request{URL: "/profilePhoto"}, &resp); err != nil {
		return "", err
	}
	return resp.URL, nil
}

type applicationEnvelope struct {
	Application types.Application `json:"application"`
}

// Applications lists the user's applications in backend order.
func (c *Client) Applications(ctx context.Context) ([]types.Application, error) {
	var apps []types.Application
	if err := c.gw.Do(ctx, gateway.Request{URL: "/applications"}, &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// CreateApplication posts a new application and returns it with the assigned id.
func (c *Client) CreateApplication(ctx context.Context, app types.Application) (*types.Application, error) {
	app.ID = nil
	var created types.Application
	req := gateway.Request{Method: http.MethodPost, URL: "/applications", Body: applicationEnvelope{Application: app}}
	if err := c.gw.Do(ctx, req, &created); err != nil {
		return nil, err
	}
	if created.ID == nil {
		return nil, &gateway.Error{Method: http.MethodPost, URL: "/applications", Status: http.StatusOK, Message: "created application has no id"}
	}
	// The backend may echo only the id; fill the rest from what was sent.
	out := app
	out.ID = created.ID
	if created.Status != "" {
		out.Status = created.Status
	}
	return &out, nil
}

// UpdateApplication replaces the application with app.ID.
func (c *Client) UpdateApplication(ctx context.Context, app types.Application) error {
	if app.ID == nil {
		return fmt.Errorf("cannot update an application without id")
	}
	req := gateway.Request{Method: http.MethodPut, URL: applicationPath(*app.ID), Body: applicationEnvelope{Application: app}}
	return c.gw.Do(ctx, req, nil)
}

// DeleteApplication removes the application with id.
func (c *Client) DeleteApplication(ctx context.Context, id int) error {
	return c.gw.Do(ctx, gateway.Request{Method: http.MethodDelete, URL: applicationPath(id)}, nil)
}

func applicationPath(id int) string {
	return "/applications/" + strconv.Itoa(id)
}

// Search fetches career insights for a role.
func (c *Client) Search(ctx context.Context, keywords string) (*types.Insights, error) {
	req := gateway.Request{Method: http.MethodGet, URL: "/search", Params: url.Values{"keywords": {keywords}}}
	var insights types.Insights
	if err := c.doValidated(ctx, req, schemas.Insights, &insights); err != nil {
		return nil, err
	}
	return &insights, nil
}

// doValidated checks the payload against the named schema before decoding it.
func (c *Client) doValidated(ctx context.Context, req gateway.Request, schema string, out any) error {
	resp, err := c.gw.DoRaw(ctx, req)
	if err != nil {
		return err
	}
	if err := schemas.Validate(schema, resp.Body); err != nil {
		return fmt.Errorf("%s %s returned an unexpected payload: %w", req.Method, req.URL, err)
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &gateway.Error{Method: req.Method, URL: req.URL, Status: resp.Status, Message: "failed to decode response", Cause: err}
	}
	return nil
}

// Resume is a downloaded resume file.
type Resume struct {
	FileName    string
	ContentType string
	Data        []byte
}

// DownloadResume fetches the stored resume file.
func (c *Client) DownloadResume(ctx context.Context) (*Resume, error) {
	resp, err := c.gw.DoRaw(ctx, gateway.Request{URL: "/resume", Headers: map[string]string{"Accept": "*/*"}})
	if err != nil {
		return nil, err
	}
	name := resp.Header.Get("x-filename")
	if name == "" {
		name = "resume.pdf"
	}
	return &Resume{FileName: name, ContentType: resp.Header.Get("Content-Type"), Data: resp.Body}, nil
}

// UploadResume sends the resume as multipart field "file".
func (c *Client) UploadResume(ctx context.Context, fileName string, content io.Reader) error {
	body := &gateway.Multipart{Files: []gateway.FilePart{{Field: "file", FileName: fileName, Content: content}}}
	return c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, URL: "/resume", Body: body}, nil)
}

// ParseResume sends the resume as multipart field "resume" and returns its structure.
func (c *Client) ParseResume(ctx context.Context, fileName string, content io.Reader) (*types.ParsedResume, error) {
	body := &gateway.Multipart{Files: []gateway.FilePart{{Field: "resume", FileName: fileName, Content: content}}}
	var parsed types.ParsedResume
	if err := c.doValidated(ctx, gateway.Request{Method: http.MethodPost, URL: "/parse-resume", Body: body}, schemas.ParsedResume, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// CompareResume compares a parsed resume with a role's insights.
func (c *Client) CompareResume(ctx context.Context, req types.CompareRequest) (*types.Comparison, error) {
	var cmp types.Comparison
	if err := c.doValidated(ctx, gateway.Request{Method: http.MethodPost, URL: "/compare-resume", Body: req}, schemas.Comparison, &cmp); err != nil {
		return nil, err
	}
	return &cmp, nil
}

// Analyses lists the saved analyses.
func (c *Client) Analyses(ctx context.Context) ([]types.Analysis, error) {
	var out []types.Analysis
	if err := c.gw.Do(ctx, gateway.Request{URL: "/analyses"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveAnalysis stores an analysis on the backend.
func (c *Client) SaveAnalysis(ctx context.Context, a types.Analysis) error {
	return c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, URL: "/analyses", Body: a}, nil)
}

// SharedJobs returns the raw recommendations payload. It is either an array of jobs
// or {"message": "..."}.
func (c *Client) SharedJobs(ctx context.Context) ([]byte, error) {
	resp, err := c.gw.DoRaw(ctx, gateway.Request{URL: "/jobs/shared"})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// AddToWishlist records a shared job on the user's wish list.
func (c *Client) AddToWishlist(ctx context.Context, jobID string) error {
	return c.gw.Do(ctx, gateway.Request{Method: http.MethodPost, URL: "/wishlist", Body: types.WishlistRequest{JobID: jobID}}, nil)
}
