// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/blob"
	"github.com/taibuivan/pinboard/internal/platform/sec"
	"github.com/taibuivan/pinboard/internal/platform/validate"
	"github.com/taibuivan/pinboard/pkg/pointer"
	"github.com/taibuivan/pinboard/pkg/uuid"
)

// # Collaborator Contracts

// TokenProvider issues signed session tokens. Satisfied by [sec.TokenService].
type TokenProvider interface {
	Issue(userID, email, role string) (string, error)
}

// # Service

// Service implements the account directory use cases: registration, login,
// lookup, profile retrieval, updates, and deletion.
type Service struct {
	userRepository UserRepository
	hasher         *sec.PasswordHasher
	tokens         TokenProvider
	images         blob.ObjectStore
	logger         *slog.Logger
}

// NewService wires up the account service with its collaborators.
//
// images may be nil when object storage is not configured; upload attempts
// then fail with SERVICE_UNAVAILABLE instead of crashing.
func NewService(
	userRepository UserRepository,
	hasher *sec.PasswordHasher,
	tokens TokenProvider,
	images blob.ObjectStore,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepository,
		hasher:         hasher,
		tokens:         tokens,
		images:         images,
		logger:         logger,
	}
}

// # Inputs

// ImageUpload carries an uploaded avatar image through the service layer.
type ImageUpload struct {
	Reader      io.Reader
	ContentType string
	Extension   string
}

// RegisterInput is the payload for creating a new account.
type RegisterInput struct {
	FullName    string
	Email       string
	Phone       string
	DateOfBirth string
	Password    string
	Image       *ImageUpload
}

// UpdateInput carries partial profile changes. Nil fields are left untouched.
type UpdateInput struct {
	FullName    *string
	Email       *string
	Phone       *string
	DateOfBirth *string
	Password    *string
	Image       *ImageUpload
}

// # Use Cases

/*
Register creates a new account from the given input.

The password is bcrypt-hashed before persistence; the plain text never leaves
this function. An optional avatar image is uploaded first, and an upload
failure aborts the registration entirely.

Parameters:
  - requestContext: context.Context
  - input: RegisterInput

Returns:
  - *User: The created account
  - error: apperr.ValidationError, apperr.EmailExists, or infrastructure failures
*/
func (service *Service) Register(requestContext context.Context, input RegisterInput) (*User, error) {

	// ── 1. Normalize & validate ──────────────────────────────────────────
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	validator := &validate.Validator{}
	err := validator.
		Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, 120).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPhone, input.Phone).
		Phone(FieldPhone, input.Phone).
		Required(FieldDateOfBirth, input.DateOfBirth).
		Date(FieldDateOfBirth, input.DateOfBirth).
		Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		MaxLen(FieldPassword, input.Password, 72). // bcrypt input limit
		Err()
	if err != nil {
		return nil, err
	}

	dateOfBirth, _ := time.Parse(validate.DateLayout, input.DateOfBirth)

	// ── 2. Best-effort duplicate check ───────────────────────────────────
	// The unique index on lower(email) is the real guard; this check only
	// exists to fail fast with a friendly error in the common case.
	if _, findErr := service.userRepository.FindByEmail(requestContext, input.Email); findErr == nil {
		return nil, apperr.EmailExists()
	}

	// ── 3. Hash the password ─────────────────────────────────────────────
	passwordHash, err := service.hasher.Hash(input.Password)
	if err != nil {
		service.logger.Error("account_service_hash_failed", slog.String("error", err.Error()))
		return nil, apperr.Internal(err)
	}

	// ── 4. Upload the avatar (optional, aborts on failure) ───────────────
	imagePath := ""
	if input.Image != nil {
		imagePath, err = service.uploadImage(requestContext, input.Image)
		if err != nil {
			return nil, err
		}
	}

	// ── 5. Persist ───────────────────────────────────────────────────────
	currentTime := time.Now().UTC()
	user := &User{
		ID:           uuid.New(),
		FullName:     strings.TrimSpace(input.FullName),
		Email:        input.Email,
		Phone:        strings.TrimSpace(input.Phone),
		DateOfBirth:  dateOfBirth,
		PasswordHash: passwordHash,
		ImagePath:    imagePath,
		Role:         sec.RoleMember,
		SavedPosts:   []string{},
		CreatedAt:    currentTime,
		UpdatedAt:    currentTime,
	}

	if err := service.userRepository.Create(requestContext, user); err != nil {
		return nil, err
	}

	service.logger.Info("account_registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

/*
Login authenticates an email/password pair and issues a session token.

Both "unknown email" and "wrong password" surface as the same generic
INVALID_CREDENTIALS error so the API never reveals whether an account exists.
The distinction is preserved in server-side logs only.

Parameters:
  - requestContext: context.Context
  - email: string
  - password: string

Returns:
  - *User: The authenticated account
  - string: Signed session token
  - error: apperr.InvalidCredentials or infrastructure failures
*/
func (service *Service) Login(requestContext context.Context, email, password string) (*User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	validator := &validate.Validator{}
	err := validator.
		Required(FieldEmail, email).
		Required(FieldPassword, password).
		Err()
	if err != nil {
		return nil, "", err
	}

	// ── 1. Look up the account ───────────────────────────────────────────
	user, err := service.userRepository.FindByEmail(requestContext, email)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.Code == "NOT_FOUND" {
			service.logger.Info("login_unknown_email")
			return nil, "", apperr.InvalidCredentials()
		}
		return nil, "", err
	}

	// ── 2. Verify the password ───────────────────────────────────────────
	if !service.hasher.Verify(password, user.PasswordHash) {
		service.logger.Info("login_wrong_password", slog.String("user_id", user.ID))
		return nil, "", apperr.InvalidCredentials()
	}

	// ── 3. Issue the session token ───────────────────────────────────────
	token, err := service.tokens.Issue(user.ID, user.Email, string(user.Role))
	if err != nil {
		service.logger.Error("login_token_issue_failed",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return nil, "", apperr.Internal(err)
	}

	service.logger.Info("login_succeeded", slog.String("user_id", user.ID))

	return user, token, nil
}

// GetByID returns a single account by its ID.
func (service *Service) GetByID(requestContext context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(requestContext, userID)
}

// List returns all registered accounts.
func (service *Service) List(requestContext context.Context) ([]*User, error) {
	return service.userRepository.FindAll(requestContext)
}

// GetProfile returns the public profile projection for the authenticated user.
func (service *Service) GetProfile(requestContext context.Context, userID string) (*PublicProfile, error) {
	user, err := service.userRepository.FindByID(requestContext, userID)
	if err != nil {
		return nil, err
	}
	return user.Profile(), nil
}

/*
Update applies partial changes to an account. Only the actor themselves or an
admin may modify an account.

Parameters:
  - requestContext: context.Context
  - actor: *sec.AuthClaims (the authenticated caller)
  - userID: string (the target account)
  - input: UpdateInput

Returns:
  - *User: The updated account
  - error: apperr.Forbidden, apperr.NotFound, apperr.ValidationError,
    apperr.EmailExists, or infrastructure failures
*/
func (service *Service) Update(requestContext context.Context, actor *sec.AuthClaims, userID string, input UpdateInput) (*User, error) {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return nil, err
	}

	user, err := service.userRepository.FindByID(requestContext, userID)
	if err != nil {
		return nil, err
	}

	// ── 1. Apply & re-validate the merged state ──────────────────────────
	user.FullName = strings.TrimSpace(pointer.Fallback(input.FullName, user.FullName))
	user.Phone = strings.TrimSpace(pointer.Fallback(input.Phone, user.Phone))

	newEmail := strings.ToLower(strings.TrimSpace(pointer.Fallback(input.Email, user.Email)))
	emailChanged := newEmail != user.Email
	user.Email = newEmail

	validator := &validate.Validator{}
	validator.
		Required(FieldFullName, user.FullName).
		MaxLen(FieldFullName, user.FullName, 120).
		Required(FieldEmail, user.Email).
		Email(FieldEmail, user.Email).
		Required(FieldPhone, user.Phone).
		Phone(FieldPhone, user.Phone)

	if input.DateOfBirth != nil {
		validator.Date(FieldDateOfBirth, *input.DateOfBirth)
	}
	if input.Password != nil {
		validator.MinLen(FieldPassword, *input.Password, 8).
			MaxLen(FieldPassword, *input.Password, 72)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if input.DateOfBirth != nil {
		user.DateOfBirth, _ = time.Parse(validate.DateLayout, *input.DateOfBirth)
	}

	// ── 2. Re-hash if the password changed ───────────────────────────────
	if input.Password != nil {
		passwordHash, hashErr := service.hasher.Hash(*input.Password)
		if hashErr != nil {
			service.logger.Error("account_service_hash_failed", slog.String("error", hashErr.Error()))
			return nil, apperr.Internal(hashErr)
		}
		user.PasswordHash = passwordHash
	}

	// ── 3. Upload the replacement avatar (aborts on failure) ─────────────
	if input.Image != nil {
		imagePath, uploadErr := service.uploadImage(requestContext, input.Image)
		if uploadErr != nil {
			return nil, uploadErr
		}
		user.ImagePath = imagePath
	}

	// ── 4. Persist ───────────────────────────────────────────────────────
	if emailChanged {
		if _, findErr := service.userRepository.FindByEmail(requestContext, user.Email); findErr == nil {
			return nil, apperr.EmailExists()
		}
	}

	user.UpdatedAt = time.Now().UTC()
	if err := service.userRepository.Update(requestContext, user); err != nil {
		return nil, err
	}

	service.logger.Info("account_updated", slog.String("user_id", user.ID))

	return user, nil
}

/*
Delete permanently removes an account and its embedded saved-posts set.
Only the actor themselves or an admin may delete an account.

Parameters:
  - requestContext: context.Context
  - actor: *sec.AuthClaims (the authenticated caller)
  - userID: string (the target account)

Returns:
  - error: apperr.Forbidden, apperr.NotFound, or infrastructure failures
*/
func (service *Service) Delete(requestContext context.Context, actor *sec.AuthClaims, userID string) error {
	if err := requireSelfOrAdmin(actor, userID); err != nil {
		return err
	}

	if err := service.userRepository.Delete(requestContext, userID); err != nil {
		return err
	}

	service.logger.Info("account_deleted",
		slog.String("user_id", userID),
		slog.String("actor_id", actor.UserID),
	)

	return nil
}

// # Internal Helpers

// requireSelfOrAdmin enforces the write-authorization rule for accounts:
// a user may modify only their own record unless they hold the admin role.
func requireSelfOrAdmin(actor *sec.AuthClaims, targetUserID string) error {
	if actor == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if actor.UserID == targetUserID {
		return nil
	}
	if sec.UserRole(actor.Role).AtLeast(sec.RoleAdmin) {
		return nil
	}
	return apperr.Forbidden("You may only modify your own account")
}

// uploadImage stores an avatar image and returns its public address.
func (service *Service) uploadImage(requestContext context.Context, upload *ImageUpload) (string, error) {
	if service.images == nil {
		return "", apperr.ServiceUnavailable("Image uploads are not configured")
	}

	key := blob.NewObjectKey("users", upload.Extension)
	address, err := service.images.Store(requestContext, key, upload.ContentType, upload.Reader)
	if err != nil {
		service.logger.Error("account_image_upload_failed", slog.String("error", err.Error()))
		return "", apperr.Internal(err)
	}

	return address, nil
}
