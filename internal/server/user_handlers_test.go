package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pulse/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestEnsureUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	app, s := newHandlerTestApp(userRepo, postRepo, "u1")
	app.Post("/api/users/ensure", s.EnsureUser)

	userRepo.On("Ensure", mock.Anything, mock.AnythingOfType("*models.User")).
		Return(&models.User{ID: "u1", Username: "ada", Points: 0}, nil)

	resp, err := app.Test(postJSON(t, "/api/users/ensure", map[string]string{"username": "ada"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "ada", user.Username)
}

func TestEnsureUser_Unauthenticated(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	app, s := newHandlerTestApp(userRepo, postRepo, "")
	app.Post("/api/users/ensure", s.EnsureUser)

	resp, err := app.Test(postJSON(t, "/api/users/ensure", map[string]string{"username": "ada"}))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	userRepo.AssertNotCalled(t, "Ensure", mock.Anything, mock.Anything)
}

func TestGetMyProfile(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	app, s := newHandlerTestApp(userRepo, postRepo, "u1")
	app.Get("/api/users/me", s.GetMyProfile)

	userRepo.On("GetByID", mock.Anything, "u1").
		Return(&models.User{ID: "u1", Username: "ada", Points: 120, DailyStreak: 3}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, 120, user.Points)
	assert.Equal(t, 3, user.DailyStreak)
}

func TestClaimDaily(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	app, s := newHandlerTestApp(userRepo, postRepo, "u1")
	app.Post("/api/users/me/claim-daily", s.ClaimDaily)

	userRepo.On("GetByID", mock.Anything, "u1").
		Return(&models.User{ID: "u1", Points: 50, DailyStreak: 0}, nil)
	userRepo.On("Update", mock.Anything, "u1", mock.Anything).
		Return(&models.User{ID: "u1", Points: 60, DailyStreak: 1}, nil)

	resp, err := app.Test(postJSON(t, "/api/users/me/claim-daily", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	assert.Equal(t, 60, user.Points)
	assert.Equal(t, 1, user.DailyStreak)
}

func TestClaimDaily_AlreadyClaimed(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	app, s := newHandlerTestApp(userRepo, postRepo, "u1")
	app.Post("/api/users/me/claim-daily", s.ClaimDaily)

	now := time.Now()
	userRepo.On("GetByID", mock.Anything, "u1").
		Return(&models.User{ID: "u1", Points: 60, DailyStreak: 1, LastClaimAt: &now}, nil)

	resp, err := app.Test(postJSON(t, "/api/users/me/claim-daily", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetFeatureFlags(t *testing.T) {
	userRepo := new(MockUserRepository)
	postRepo := new(MockPostRepository)
	app, s := newHandlerTestApp(userRepo, postRepo, "u1")
	app.Get("/api/flags", s.GetFeatureFlags)

	req := httptest.NewRequest(http.MethodGet, "/api/flags", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var flags map[string]bool
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&flags))
	assert.True(t, flags["live_feed"])
}
