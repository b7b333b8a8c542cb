package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gestaopro/internal/domain/auth"
)

func TestRegisterRequest_Binding(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterRequest
		valid bool
	}{
		{"ok", RegisterRequest{Email: "ana@example.com", Password: "s3cret-pass"}, true},
		{"short password", RegisterRequest{Email: "ana@example.com", Password: "short"}, false},
		{"password past bcrypt limit", RegisterRequest{Email: "ana@example.com", Password: strings.Repeat("x", 73)}, false},
		{"bad email", RegisterRequest{Email: "ana", Password: "s3cret-pass"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := binding.Validator.ValidateStruct(tt.req)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestRegisterRequest_Domain(t *testing.T) {
	got := RegisterRequest{Email: " Ana@Example.com ", Password: " pw ", Name: "  Ana "}.Domain()
	assert.Equal(t, "Ana@Example.com", got.Email)
	assert.Equal(t, " pw ", got.Password, "passwords are taken verbatim")
	assert.Equal(t, "Ana", got.Name)
}

func TestSession_JSON(t *testing.T) {
	u := auth.NewUser("ana@example.com", "$2a$10$hash", "Ana")
	u.FailedLoginAttempts = 2
	tokens := &auth.TokenPair{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		TokenType:    "Bearer",
	}

	raw, err := json.Marshal(NewSession(tokens, u))
	require.NoError(t, err)

	var body map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "access", body["tokens"]["accessToken"])
	assert.Equal(t, "Bearer", body["tokens"]["tokenType"])
	assert.Equal(t, u.ID.String(), body["user"]["id"])
	assert.NotContains(t, string(raw), "$2a$10$hash")
	assert.NotContains(t, body["user"], "failedLoginAttempts")
}
