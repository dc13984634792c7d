// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/constants"
	"github.com/taibuivan/pinboard/internal/platform/middleware"
	requestutil "github.com/taibuivan/pinboard/internal/platform/request"
	"github.com/taibuivan/pinboard/internal/platform/respond"
)

// # HTTP Delivery

// Handler exposes the account directory over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the account HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes builds the router for the account endpoints.
//
// Mounted under /users by the API server. The saved-posts sub-router is
// mounted separately BEFORE this one so its static /saved-posts path wins
// over the /{userID} wildcard.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/profile", handler.profile)
		protected.Patch("/{userID}", handler.update)
		protected.Delete("/{userID}", handler.delete)
	})

	router.Get("/{userID}", handler.getByID)

	return router
}

// # Wire Payloads

type registerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	DateOfBirth string `json:"date_of_birth"`
	Password    string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type updateRequest struct {
	FullName    *string `json:"full_name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	Password    *string `json:"password"`
}

// # Handlers

// register handles POST /users/register.
//
// Accepts either a JSON body or multipart/form-data with an optional "file"
// part carrying the avatar image.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var payload registerRequest
	var image *ImageUpload

	if isMultipart(request) {
		file, upload, err := parseUpload(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
		if file != nil {
			defer file.Close()
		}
		image = upload

		payload = registerRequest{
			FullName:    request.FormValue(FieldFullName),
			Email:       request.FormValue(FieldEmail),
			Phone:       request.FormValue(FieldPhone),
			DateOfBirth: request.FormValue(FieldDateOfBirth),
			Password:    request.FormValue(FieldPassword),
		}
	} else {
		if err := requestutil.DecodeJSON(request, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	user, err := handler.service.Register(request.Context(), RegisterInput{
		FullName:    payload.FullName,
		Email:       payload.Email,
		Phone:       payload.Phone,
		DateOfBirth: payload.DateOfBirth,
		Password:    payload.Password,
		Image:       image,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// login handles POST /users/login.
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var payload loginRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, token, err := handler.service.Login(request.Context(), payload.Email, payload.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, loginResponse{Token: token, User: user})
}

// profile handles GET /users/profile for the authenticated user.
func (handler *Handler) profile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.service.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// list handles GET /users.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	users, err := handler.service.List(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, users)
}

// getByID handles GET /users/{userID}.
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Param(request, "userID")

	user, err := handler.service.GetByID(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// update handles PATCH /users/{userID}. Self-or-admin only.
//
// Accepts either a JSON body or multipart/form-data with an optional "file"
// part replacing the avatar image.
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	userID := requestutil.Param(request, "userID")

	var payload updateRequest
	var image *ImageUpload

	if isMultipart(request) {
		file, upload, parseErr := parseUpload(request)
		if parseErr != nil {
			respond.Error(writer, request, parseErr)
			return
		}
		if file != nil {
			defer file.Close()
		}
		image = upload

		payload = updateRequest{
			FullName:    formValuePtr(request, FieldFullName),
			Email:       formValuePtr(request, FieldEmail),
			Phone:       formValuePtr(request, FieldPhone),
			DateOfBirth: formValuePtr(request, FieldDateOfBirth),
			Password:    formValuePtr(request, FieldPassword),
		}
	} else {
		if err := requestutil.DecodeJSON(request, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	user, err := handler.service.Update(request.Context(), claims, userID, UpdateInput{
		FullName:    payload.FullName,
		Email:       payload.Email,
		Phone:       payload.Phone,
		DateOfBirth: payload.DateOfBirth,
		Password:    payload.Password,
		Image:       image,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// delete handles DELETE /users/{userID}. Self-or-admin only.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	userID := requestutil.Param(request, "userID")

	if err := handler.service.Delete(request.Context(), claims, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// # Multipart Helpers

// isMultipart reports whether the request body is multipart/form-data.
func isMultipart(request *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "multipart/")
}

// parseUpload parses a multipart form and extracts the optional "file" part.
//
// The returned file must be closed by the caller after the service call
// completes; the upload streams from it.
func parseUpload(request *http.Request) (multipart.File, *ImageUpload, error) {
	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		return nil, nil, apperr.ValidationError("Invalid multipart form data")
	}

	file, header, err := request.FormFile("file")
	if err != nil {
		// The file part is optional for both register and update.
		if err == http.ErrMissingFile {
			return nil, nil, nil
		}
		return nil, nil, apperr.ValidationError("Invalid file upload")
	}

	return file, &ImageUpload{
		Reader:      file,
		ContentType: header.Header.Get("Content-Type"),
		Extension:   strings.TrimPrefix(filepath.Ext(header.Filename), "."),
	}, nil
}

// formValuePtr returns a pointer to a form value, or nil when absent.
// PATCH semantics need the absent/empty distinction.
func formValuePtr(request *http.Request, field string) *string {
	if request.MultipartForm == nil {
		return nil
	}
	values, ok := request.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}
