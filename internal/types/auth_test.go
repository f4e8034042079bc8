//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequest_Validation(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
	}{
		{name: "valid request", request: LoginRequest{Username: "jdoe", Password: "secret"}},
		{name: "missing username", request: LoginRequest{Password: "secret"}, wantErr: true},
		{name: "missing password", request: LoginRequest{Username: "jdoe"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "required")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSignupRequest_Validation(t *testing.T) {
	req := SignupRequest{Username: "jdoe", Password: "secret"}
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FullName")

	req.FullName = "John Doe"
	assert.NoError(t, req.Validate())
}

func TestLoginResponse_Unmarshal(t *testing.T) {
	body := `{
		"message": "Login successful",
		"token": "7.abc",
		"expiry": "01/02/2025, 10:00:00",
		"profile": {"id": 7, "fullName": "Ann Lee", "username": "ann", "skills": [{"label": "Go", "value": "go"}]}
	}`

	var resp LoginResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, "7.abc", resp.Token)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, 7, resp.Profile.ID)
	assert.Equal(t, []string{"Go"}, resp.Profile.Skills.Labels())
	assert.Empty(t, resp.Error)
}
