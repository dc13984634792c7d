// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/pinboard/internal/api"
	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/config"
	"github.com/taibuivan/pinboard/internal/platform/sec"
	"github.com/taibuivan/pinboard/internal/posts"
	"github.com/taibuivan/pinboard/internal/users/account"
	"github.com/taibuivan/pinboard/internal/users/saved"
	"github.com/taibuivan/pinboard/pkg/pagination"
)

// # In-Memory Backend
//
// directory backs both the account repository and the saved-posts store with
// one shared user map, mirroring the production layout where the saved set
// is a column of the account row.

type directory struct {
	mu    sync.Mutex
	users map[string]*account.User
}

func newDirectory() *directory {
	return &directory{users: make(map[string]*account.User)}
}

func (d *directory) Create(_ context.Context, user *account.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.EmailExists()
		}
	}
	clone := *user
	d.users[user.ID] = &clone
	return nil
}

func (d *directory) FindByID(_ context.Context, id string) (*account.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (d *directory) FindByEmail(_ context.Context, email string) (*account.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, user := range d.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (d *directory) FindAll(_ context.Context) ([]*account.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	users := make([]*account.User, 0, len(d.users))
	for _, user := range d.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

func (d *directory) Update(_ context.Context, user *account.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	clone := *user
	d.users[user.ID] = &clone
	return nil
}

func (d *directory) Delete(_ context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(d.users, id)
	return nil
}

// Saved-posts relation over the same user map.

func (d *directory) AddPost(_ context.Context, userID, postID string) (*account.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[userID]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	already := false
	for _, existing := range user.SavedPosts {
		if existing == postID {
			already = true
			break
		}
	}
	if !already {
		user.SavedPosts = append(user.SavedPosts, postID)
	}
	clone := *user
	return &clone, nil
}

func (d *directory) RemovePost(_ context.Context, userID, postID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[userID]
	if !ok {
		return nil
	}
	filtered := user.SavedPosts[:0]
	for _, existing := range user.SavedPosts {
		if existing != postID {
			filtered = append(filtered, existing)
		}
	}
	user.SavedPosts = filtered
	return nil
}

func (d *directory) FindSavers(_ context.Context, userID, postID string) ([]*account.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	user, ok := d.users[userID]
	if !ok {
		return []*account.User{}, nil
	}
	for _, existing := range user.SavedPosts {
		if existing == postID {
			clone := *user
			return []*account.User{&clone}, nil
		}
	}
	return []*account.User{}, nil
}

// fakePostRepository is an in-memory [posts.Repository].
type fakePostRepository struct {
	mu    sync.Mutex
	items []*posts.Post
}

func (r *fakePostRepository) Create(_ context.Context, post *posts.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *post
	r.items = append(r.items, &clone)
	return nil
}

func (r *fakePostRepository) FindByID(_ context.Context, id string) (*posts.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, post := range r.items {
		if post.ID == id {
			clone := *post
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Post")
}

func (r *fakePostRepository) FindPage(_ context.Context, params pagination.Params) ([]*posts.Post, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	page := make([]*posts.Post, 0, len(r.items))
	for _, post := range r.items {
		clone := *post
		page = append(page, &clone)
	}
	return page, len(r.items), nil
}

func (r *fakePostRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, post := range r.items {
		if post.ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("Post")
}

// # Test Server

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := newDirectory()

	tokenService, err := sec.NewTokenService("e2e-test-secret", "pinboard.app", time.Hour)
	require.NoError(t, err)

	accountService := account.NewService(backend, sec.NewPasswordHasher(4), tokenService, nil, logger)
	savedService := saved.NewService(backend, nil, logger)
	postService := posts.NewService(&fakePostRepository{}, nil, logger)

	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{}, logger)

	cfg := &config.Config{
		ServerPort:  "0",
		Environment: "development",
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	server := api.NewServer(ctx, cfg, logger, tokenService, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Account:   account.NewHandler(accountService),
		Saved:     saved.NewHandler(savedService),
		Posts:     posts.NewHandler(postService),
	})

	testServer := httptest.NewServer(server.Router())
	t.Cleanup(testServer.Close)
	return testServer
}

func postJSON(t *testing.T, url string, payload any, token string) (*http.Response, map[string]any) {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	request, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	require.NoError(t, err)
	request.Header.Set("Content-Type", "application/json")
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	return response, decodeBody(t, response)
}

func getJSON(t *testing.T, url, token string) (*http.Response, map[string]any) {
	t.Helper()

	request, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	return response, decodeBody(t, response)
}

func decodeBody(t *testing.T, response *http.Response) map[string]any {
	t.Helper()
	defer response.Body.Close()

	raw, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	if len(raw) == 0 {
		return nil
	}

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded), "body: %s", raw)
	return decoded
}

// # End-to-End Flow

/*
TestAPI_RegisterLoginSaveFlow drives the full user journey over HTTP:
register, login, fetch the profile, save a post, query membership, unsave.
*/
func TestAPI_RegisterLoginSaveFlow(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	// ── 1. Register ──────────────────────────────────────────────────────
	response, body := postJSON(t, base+"/users/register", map[string]string{
		"full_name":     "Tai Bui",
		"email":         "tai@pinboard.app",
		"phone":         "+84 912 345 678",
		"date_of_birth": "1995-06-15",
		"password":      "super-secret-password",
	}, "")
	require.Equal(t, http.StatusCreated, response.StatusCode)

	created := body["data"].(map[string]any)
	userID := created["id"].(string)
	require.NotEmpty(t, userID)

	// The password hash must never appear on the wire.
	rawCreated, _ := json.Marshal(created)
	assert.NotContains(t, string(rawCreated), "passwordhash")
	assert.NotContains(t, string(rawCreated), "password_hash")

	// ── 2. Login ─────────────────────────────────────────────────────────
	response, body = postJSON(t, base+"/users/login", map[string]string{
		"email":    "tai@pinboard.app",
		"password": "super-secret-password",
	}, "")
	require.Equal(t, http.StatusOK, response.StatusCode)

	loginData := body["data"].(map[string]any)
	token := loginData["token"].(string)
	require.NotEmpty(t, token)

	// ── 3. Profile (authenticated) ───────────────────────────────────────
	response, body = getJSON(t, base+"/users/profile", token)
	require.Equal(t, http.StatusOK, response.StatusCode)

	profile := body["data"].(map[string]any)
	assert.Equal(t, userID, profile["id"])
	assert.Equal(t, "tai@pinboard.app", profile["email"])

	// Profile is unreachable without a token.
	response, _ = getJSON(t, base+"/users/profile", "")
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	// ── 4. Save a post ───────────────────────────────────────────────────
	// Post ids are opaque to the relation; no particular format is imposed.
	postID := "p1"

	response, body = postJSON(t, base+"/users/saved-posts", map[string]string{
		"userId": userID,
		"postId": postID,
	}, "")
	require.Equal(t, http.StatusOK, response.StatusCode)

	savedRecord := body["data"].(map[string]any)
	assert.Equal(t, userID, savedRecord["id"])
	assert.Contains(t, savedRecord["saved_posts"], postID)

	rawSaved, _ := json.Marshal(savedRecord)
	assert.NotContains(t, string(rawSaved), "password_hash")

	// Saving again is an idempotent success and still returns the record
	// with a single entry.
	response, body = postJSON(t, base+"/users/saved-posts", map[string]string{
		"userId": userID,
		"postId": postID,
	}, "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Len(t, body["data"].(map[string]any)["saved_posts"], 1)

	// ── 5. Membership query ──────────────────────────────────────────────
	// The lookup answers with the matching record, carrying the saved post.
	membershipURL := fmt.Sprintf("%s/users/saved-posts?userId=%s&postId=%s", base, userID, postID)

	response, body = getJSON(t, membershipURL, "")
	require.Equal(t, http.StatusOK, response.StatusCode)

	matches := body["data"].([]any)
	require.Len(t, matches, 1)
	assert.Equal(t, userID, matches[0].(map[string]any)["id"])
	assert.Contains(t, matches[0].(map[string]any)["saved_posts"], postID)

	// ── 6. Unsave ────────────────────────────────────────────────────────
	request, err := http.NewRequest(http.MethodDelete, membershipURL, nil)
	require.NoError(t, err)
	response, err = http.DefaultClient.Do(request)
	require.NoError(t, err)
	response.Body.Close()
	require.Equal(t, http.StatusNoContent, response.StatusCode)

	response, body = getJSON(t, membershipURL, "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Empty(t, body["data"].([]any))
}

/*
TestAPI_PostCatalog drives the post endpoints: authenticated create, public
list and fetch, and the admin-only delete rule.
*/
func TestAPI_PostCatalog(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	// Register and log in a member.
	response, _ := postJSON(t, base+"/users/register", map[string]string{
		"full_name":     "Tai Bui",
		"email":         "tai@pinboard.app",
		"phone":         "+84 912 345 678",
		"date_of_birth": "1995-06-15",
		"password":      "super-secret-password",
	}, "")
	require.Equal(t, http.StatusCreated, response.StatusCode)

	_, loginBody := postJSON(t, base+"/users/login", map[string]string{
		"email":    "tai@pinboard.app",
		"password": "super-secret-password",
	}, "")
	token := loginBody["data"].(map[string]any)["token"].(string)

	payload := map[string]any{
		"title":       "Garage Sale Saturday",
		"description": "Everything must go.",
		"time_start":  time.Now().Format(time.RFC3339),
		"time_end":    time.Now().Add(6 * time.Hour).Format(time.RFC3339),
	}

	// Anonymous creation is rejected.
	response, _ = postJSON(t, base+"/posts", payload, "")
	assert.Equal(t, http.StatusUnauthorized, response.StatusCode)

	// Authenticated creation succeeds and derives the slug from the title.
	response, body := postJSON(t, base+"/posts", payload, token)
	require.Equal(t, http.StatusCreated, response.StatusCode)

	created := body["data"].(map[string]any)
	postID := created["id"].(string)
	assert.Equal(t, "garage-sale-saturday", created["slug"])

	// Public list includes the post with pagination metadata.
	response, body = getJSON(t, base+"/posts", "")
	require.Equal(t, http.StatusOK, response.StatusCode)
	assert.Len(t, body["data"].([]any), 1)
	assert.EqualValues(t, 1, body["meta"].(map[string]any)["total"])

	// Public fetch by ID works.
	response, _ = getJSON(t, base+"/posts/"+postID, "")
	assert.Equal(t, http.StatusOK, response.StatusCode)

	// A member may not delete; the route is admin-only.
	request, err := http.NewRequest(http.MethodDelete, base+"/posts/"+postID, nil)
	require.NoError(t, err)
	request.Header.Set("Authorization", "Bearer "+token)
	response, err = http.DefaultClient.Do(request)
	require.NoError(t, err)
	response.Body.Close()
	assert.Equal(t, http.StatusForbidden, response.StatusCode)
}

/*
TestAPI_LoginFailuresAreGeneric verifies that the API answers unknown emails
and wrong passwords identically.
*/
func TestAPI_LoginFailuresAreGeneric(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	_, _ = postJSON(t, base+"/users/register", map[string]string{
		"full_name":     "Tai Bui",
		"email":         "tai@pinboard.app",
		"phone":         "+84 912 345 678",
		"date_of_birth": "1995-06-15",
		"password":      "super-secret-password",
	}, "")

	unknownResp, unknownBody := postJSON(t, base+"/users/login", map[string]string{
		"email":    "nobody@pinboard.app",
		"password": "super-secret-password",
	}, "")
	wrongResp, wrongBody := postJSON(t, base+"/users/login", map[string]string{
		"email":    "tai@pinboard.app",
		"password": "wrong-password",
	}, "")

	assert.Equal(t, http.StatusUnauthorized, unknownResp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, wrongResp.StatusCode)
	assert.Equal(t, unknownBody["error"], wrongBody["error"])
	assert.Equal(t, unknownBody["code"], wrongBody["code"])
	assert.Equal(t, "INVALID_CREDENTIALS", wrongBody["code"])
}

/*
TestAPI_ExpiredAndForgedTokens verifies that both failure modes produce the
same external 401 response.
*/
func TestAPI_ExpiredAndForgedTokens(t *testing.T) {
	server := newTestServer(t)
	base := server.URL + "/api/v1"

	// A token signed by a different service is forged from this server's view.
	forger, err := sec.NewTokenService("some-other-secret", "pinboard.app", time.Hour)
	require.NoError(t, err)
	forged, err := forger.Issue("user-123", "tai@pinboard.app", "member")
	require.NoError(t, err)

	// A token issued far in the past by the right secret is expired.
	issuer, err := sec.NewTokenService("e2e-test-secret", "pinboard.app", time.Hour)
	require.NoError(t, err)
	past := time.Now().Add(-48 * time.Hour)
	expired, err := issuer.WithClock(func() time.Time { return past }).Issue("user-123", "tai@pinboard.app", "member")
	require.NoError(t, err)

	forgedResp, forgedBody := getJSON(t, base+"/users/profile", forged)
	expiredResp, expiredBody := getJSON(t, base+"/users/profile", expired)

	assert.Equal(t, http.StatusUnauthorized, forgedResp.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, expiredResp.StatusCode)
	assert.Equal(t, forgedBody["error"], expiredBody["error"])
	assert.Equal(t, forgedBody["code"], expiredBody["code"])
}
