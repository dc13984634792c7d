// Copyright (c) 2026 Pinboard. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package posts

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/pinboard/internal/platform/apperr"
	"github.com/taibuivan/pinboard/internal/platform/constants"
	"github.com/taibuivan/pinboard/internal/platform/middleware"
	requestutil "github.com/taibuivan/pinboard/internal/platform/request"
	"github.com/taibuivan/pinboard/internal/platform/respond"
	"github.com/taibuivan/pinboard/internal/platform/sec"
	"github.com/taibuivan/pinboard/pkg/pagination"
)

// # HTTP Delivery

// Handler exposes the post catalog over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates the posts HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes builds the router for the post endpoints.
//
// Mounted under /posts by the API server.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/", handler.list)
	router.Get("/{postID}", handler.getByID)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/", handler.create)
	})

	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Delete("/{postID}", handler.delete)
	})

	return router
}

// # Wire Payloads

type createRequest struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TimeStart   time.Time `json:"time_start"`
	TimeEnd     time.Time `json:"time_end"`
}

// # Handlers

// list handles GET /posts with page/limit query parameters.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	page, meta, err := handler.service.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, page, meta)
}

// getByID handles GET /posts/{postID}.
func (handler *Handler) getByID(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, "postID")

	post, err := handler.service.GetByID(request.Context(), postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, post)
}

// create handles POST /posts for authenticated users.
//
// Accepts either a JSON body or multipart/form-data where repeated "file"
// parts carry the listing photos.
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var payload createRequest
	var images []*ImageUpload

	if isMultipart(request) {
		payload, images, err = parseMultipartCreate(request)
		if err != nil {
			respond.Error(writer, request, err)
			return
		}
	} else {
		if err := requestutil.DecodeJSON(request, &payload); err != nil {
			respond.Error(writer, request, err)
			return
		}
	}

	post, err := handler.service.Create(request.Context(), CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		TimeStart:   payload.TimeStart,
		TimeEnd:     payload.TimeEnd,
		Images:      images,
		CreatedBy:   userID,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, post)
}

// delete handles DELETE /posts/{postID}. Admin only.
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	postID := requestutil.Param(request, "postID")

	if err := handler.service.Delete(request.Context(), postID); err != nil {
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

// parseMultipartCreate extracts the post fields and photo uploads from a
// multipart form. Time fields use RFC 3339.
func parseMultipartCreate(request *http.Request) (createRequest, []*ImageUpload, error) {
	if err := request.ParseMultipartForm(constants.MaxUploadBytes); err != nil {
		return createRequest{}, nil, apperr.ValidationError("Invalid multipart form data")
	}

	payload := createRequest{
		Title:       request.FormValue(FieldTitle),
		Description: request.FormValue(FieldDescription),
	}

	if raw := request.FormValue(FieldTimeStart); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return createRequest{}, nil, apperr.ValidationError("time_start must be RFC 3339")
		}
		payload.TimeStart = parsed
	}
	if raw := request.FormValue(FieldTimeEnd); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return createRequest{}, nil, apperr.ValidationError("time_end must be RFC 3339")
		}
		payload.TimeEnd = parsed
	}

	var images []*ImageUpload
	if request.MultipartForm != nil {
		for _, header := range request.MultipartForm.File["file"] {
			file, err := header.Open()
			if err != nil {
				return createRequest{}, nil, apperr.ValidationError("Invalid file upload")
			}
			// Closed when the multipart form is cleaned up at request end.
			images = append(images, &ImageUpload{
				Reader:      file,
				ContentType: header.Header.Get("Content-Type"),
				Extension:   strings.TrimPrefix(filepath.Ext(header.Filename), "."),
			})
		}
	}

	return payload, images, nil
}
