// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/sec"
	"github.com/taibuivan/pinboard/internal/users/account"
)

// # Test Fakes

// fakeUserRepository is an in-memory [account.UserRepository].
type fakeUserRepository struct {
	mu    sync.Mutex
	users map[string]*account.User
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*account.User)}
}

func (repository *fakeUserRepository) Create(_ context.Context, user *account.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, existing := range repository.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return apperr.EmailExists()
		}
	}

	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *fakeUserRepository) FindByID(_ context.Context, id string) (*account.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	user, ok := repository.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	clone := *user
	return &clone, nil
}

func (repository *fakeUserRepository) FindByEmail(_ context.Context, email string) (*account.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	for _, user := range repository.users {
		if strings.EqualFold(user.Email, email) {
			clone := *user
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repository *fakeUserRepository) FindAll(_ context.Context) ([]*account.User, error) {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	users := make([]*account.User, 0, len(repository.users))
	for _, user := range repository.users {
		clone := *user
		users = append(users, &clone)
	}
	return users, nil
}

func (repository *fakeUserRepository) Update(_ context.Context, user *account.User) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.users[user.ID]; !ok {
		return apperr.NotFound("User")
	}
	clone := *user
	repository.users[user.ID] = &clone
	return nil
}

func (repository *fakeUserRepository) Delete(_ context.Context, id string) error {
	repository.mu.Lock()
	defer repository.mu.Unlock()

	if _, ok := repository.users[id]; !ok {
		return apperr.NotFound("User")
	}
	delete(repository.users, id)
	return nil
}

// fakeTokenProvider records issued identities and returns a static token.
type fakeTokenProvider struct {
	issuedFor string
}

func (provider *fakeTokenProvider) Issue(userID, _, _ string) (string, error) {
	provider.issuedFor = userID
	return "test-token", nil
}

// # Test Setup

func newTestService(t *testing.T) (*account.Service, *fakeUserRepository, *fakeTokenProvider) {
	t.Helper()

	repository := newFakeUserRepository()
	tokens := &fakeTokenProvider{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := account.NewService(repository, sec.NewPasswordHasher(4), tokens, nil, logger)

	return service, repository, tokens
}

func validRegisterInput() account.RegisterInput {
	return account.RegisterInput{
		FullName:    "Tai Bui",
		Email:       "tai@pinboard.app",
		Phone:       "+84 912 345 678",
		DateOfBirth: "1995-06-15",
		Password:    "super-secret-password",
	}
}

// # Registration

/*
TestService_Register verifies the happy path: the account is created with the
member role, an empty saved-posts set, and a bcrypt hash instead of the
plain-text password.
*/
func TestService_Register(t *testing.T) {
	service, repository, _ := newTestService(t)

	user, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Tai Bui", user.FullName)
	assert.Equal(t, "tai@pinboard.app", user.Email)
	assert.Equal(t, sec.RoleMember, user.Role)
	assert.Empty(t, user.SavedPosts)
	assert.NotNil(t, user.SavedPosts)

	// The stored hash must never equal the raw password.
	stored, err := repository.FindByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "super-secret-password", stored.PasswordHash)
	assert.True(t, sec.NewPasswordHasher(4).Verify("super-secret-password", stored.PasswordHash))
}

/*
TestService_Register_EmailNormalization verifies that the email is lowercased
and trimmed before persistence.
*/
func TestService_Register_EmailNormalization(t *testing.T) {
	service, _, _ := newTestService(t)

	input := validRegisterInput()
	input.Email = "  Tai@Pinboard.App  "

	user, err := service.Register(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "tai@pinboard.app", user.Email)
}

/*
TestService_Register_DuplicateEmail verifies that a second registration with
the same email (any casing) fails with EMAIL_EXISTS.
*/
func TestService_Register_DuplicateEmail(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	input := validRegisterInput()
	input.Email = "TAI@PINBOARD.APP"

	_, err = service.Register(context.Background(), input)
	require.Error(t, err)

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, "EMAIL_EXISTS", ae.Code)
}

/*
TestService_Register_Validation verifies that malformed input is rejected
before any persistence happens.
*/
func TestService_Register_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*account.RegisterInput)
	}{
		{"missing_full_name", func(i *account.RegisterInput) { i.FullName = "" }},
		{"bad_email", func(i *account.RegisterInput) { i.Email = "not-an-email" }},
		{"bad_phone", func(i *account.RegisterInput) { i.Phone = "abc" }},
		{"bad_date", func(i *account.RegisterInput) { i.DateOfBirth = "15/06/1995" }},
		{"short_password", func(i *account.RegisterInput) { i.Password = "short" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repository, _ := newTestService(t)

			input := validRegisterInput()
			tt.mutate(&input)

			_, err := service.Register(context.Background(), input)
			require.Error(t, err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "VALIDATION_ERROR", ae.Code)
			assert.Empty(t, repository.users)
		})
	}
}

// # Login

/*
TestService_Login verifies the happy path: correct credentials return the
user and a session token.
*/
func TestService_Login(t *testing.T) {
	service, _, tokens := newTestService(t)

	registered, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	user, token, err := service.Login(context.Background(), "tai@pinboard.app", "super-secret-password")
	require.NoError(t, err)

	assert.Equal(t, registered.ID, user.ID)
	assert.Equal(t, "test-token", token)
	assert.Equal(t, registered.ID, tokens.issuedFor)
}

/*
TestService_Login_GenericFailure verifies that unknown emails and wrong
passwords produce the SAME external error, with no token issued.
*/
func TestService_Login_GenericFailure(t *testing.T) {
	service, _, tokens := newTestService(t)

	_, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown_email", "nobody@pinboard.app", "super-secret-password"},
		{"wrong_password", "tai@pinboard.app", "wrong-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, token, err := service.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.Empty(t, token)
			assert.Empty(t, tokens.issuedFor)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, "INVALID_CREDENTIALS", ae.Code)
			assert.Equal(t, "Invalid email or password", ae.Message)
		})
	}
}

// # Profile & Updates

/*
TestService_GetProfile verifies the public projection never carries the hash.
*/
func TestService_GetProfile(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	profile, err := service.GetProfile(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, user.ID, profile.ID)
	assert.Equal(t, user.Email, profile.Email)
	assert.Equal(t, user.FullName, profile.FullName)
}

/*
TestService_Update_SelfOrAdmin verifies the write-authorization rule:
the owner and admins may update; other members may not.
*/
func TestService_Update_SelfOrAdmin(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	newName := "Updated Name"

	tests := []struct {
		name      string
		actor     *sec.AuthClaims
		expectErr string
	}{
		{"self", &sec.AuthClaims{UserID: user.ID, Role: "member"}, ""},
		{"admin", &sec.AuthClaims{UserID: "someone-else", Role: "admin"}, ""},
		{"other_member", &sec.AuthClaims{UserID: "someone-else", Role: "member"}, "FORBIDDEN"},
		{"anonymous", nil, "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updated, err := service.Update(context.Background(), tt.actor, user.ID, account.UpdateInput{
				FullName: &newName,
			})

			if tt.expectErr == "" {
				require.NoError(t, err)
				assert.Equal(t, newName, updated.FullName)
				return
			}

			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.expectErr, ae.Code)
		})
	}
}

/*
TestService_Update_PartialFields verifies PATCH semantics: nil fields stay
untouched, provided fields are re-validated.
*/
func TestService_Update_PartialFields(t *testing.T) {
	service, _, _ := newTestService(t)

	user, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)
	actor := &sec.AuthClaims{UserID: user.ID, Role: "member"}

	// Only the phone changes.
	newPhone := "+84 999 888 777"
	updated, err := service.Update(context.Background(), actor, user.ID, account.UpdateInput{Phone: &newPhone})
	require.NoError(t, err)
	assert.Equal(t, newPhone, updated.Phone)
	assert.Equal(t, user.FullName, updated.FullName)
	assert.Equal(t, user.Email, updated.Email)

	// An invalid email is rejected.
	badEmail := "not-an-email"
	_, err = service.Update(context.Background(), actor, user.ID, account.UpdateInput{Email: &badEmail})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_ERROR", apperr.As(err).Code)
}

/*
TestService_Delete verifies hard deletion and its authorization rule.
*/
func TestService_Delete(t *testing.T) {
	service, repository, _ := newTestService(t)

	user, err := service.Register(context.Background(), validRegisterInput())
	require.NoError(t, err)

	// Another member may not delete the account.
	err = service.Delete(context.Background(), &sec.AuthClaims{UserID: "other", Role: "member"}, user.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)

	// The owner may.
	err = service.Delete(context.Background(), &sec.AuthClaims{UserID: user.ID, Role: "member"}, user.ID)
	require.NoError(t, err)
	assert.Empty(t, repository.users)

	// Deleting again reports not found.
	err = service.Delete(context.Background(), &sec.AuthClaims{UserID: user.ID, Role: "member"}, user.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperr.As(err).Code)
}

/*
TestService_Register_ImageWithoutStorage verifies that an image upload with no
configured object store aborts the registration with SERVICE_UNAVAILABLE.
*/
func TestService_Register_ImageWithoutStorage(t *testing.T) {
	service, repository, _ := newTestService(t)

	input := validRegisterInput()
	input.Image = &account.ImageUpload{
		Reader:      strings.NewReader("fake-image-bytes"),
		ContentType: "image/png",
		Extension:   "png",
	}

	_, err := service.Register(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "SERVICE_UNAVAILABLE", apperr.As(err).Code)

	// The mutation must be aborted, not partially persisted.
	assert.Empty(t, repository.users)
}
