// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package saved

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/pinboard/internal/platform/request"
	"github.com/taibuivan/pinboard/internal/platform/respond"
	"github.com/taibuivan/pinboard/internal/platform/validate"
)

// Wire parameter names for the saved-posts endpoints.
const (
	paramUserID = "userId"
	paramPostID = "postId"
)

// # HTTP Delivery

// Handler exposes the saved-posts relation over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the saved-posts HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes builds the router for the saved-posts endpoints.
//
// Mounted under /users/saved-posts by the API server.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.find)
	router.Post("/", handler.add)
	router.Delete("/", handler.remove)

	return router
}

// # Wire Payloads

type addRequest struct {
	UserID string `json:"userId"`
	PostID string `json:"postId"`
}

// # Handlers

// find handles GET /users/saved-posts?userId=&postId=.
//
// It answers with the matching account record(s): a one-element array when
// the user has saved the post, an empty array otherwise.
func (handler *Handler) find(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Query(request, paramUserID)
	postID := requestutil.Query(request, paramPostID)

	if err := validatePair(userID, postID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	savers, err := handler.service.FindSavers(request.Context(), userID, postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, savers)
}

// add handles POST /users/saved-posts with a JSON body {userId, postId}.
//
// It answers with the updated account record; the password hash never
// serializes.
func (handler *Handler) add(writer http.ResponseWriter, request *http.Request) {
	var payload addRequest
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := validatePair(payload.UserID, payload.PostID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.service.AddPost(request.Context(), payload.UserID, payload.PostID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// remove handles DELETE /users/saved-posts?userId=&postId=.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	userID := requestutil.Query(request, paramUserID)
	postID := requestutil.Query(request, paramPostID)

	if err := validatePair(userID, postID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemovePost(request.Context(), userID, postID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

// validatePair checks that both identifiers are present. The user id must be
// a UUID because accounts are keyed that way; post ids are treated as opaque
// strings so the relation works with any post catalog.
func validatePair(userID, postID string) error {
	validator := &validate.Validator{}
	return validator.
		Required(paramUserID, userID).
		UUID(paramUserID, userID).
		Required(paramPostID, postID).
		Err()
}
