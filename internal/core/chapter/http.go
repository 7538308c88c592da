// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package chapter provides the HTTP interface for chapters and their page images.

# Routing Strategy

  - Public: reading endpoints (chapter metadata, ordered images, navigation, views).
  - Restricted: mutations require an administrator token.

Uploads get their own, longer request deadline; every other route shares the
global one.
*/
package chapter

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	"github.com/taibuivan/yomira-toon/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-toon/internal/platform/request"
	"github.com/taibuivan/yomira-toon/internal/platform/respond"
	"github.com/taibuivan/yomira-toon/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for chapter management and delivery.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the /chapters endpoints to router.
func (handler *Handler) RegisterRoutes(router chi.Router) {

	// ## Public Reading Endpoints
	router.Group(func(public chi.Router) {
		public.Use(chimw.Timeout(constants.GlobalRequestTimeout))

		public.Get("/{id}", handler.getChapter)
		public.Get("/{id}/images", handler.listImages)
		public.Get("/{id}/next", handler.nextChapter)
		public.Get("/{id}/prev", handler.previousChapter)
		public.Post("/{id}/view", handler.recordView)
	})

	// ## Content Management (Admin Protected)
	router.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin)

		admin.With(chimw.Timeout(constants.UploadRequestTimeout)).Post("/{id}/upload", handler.uploadImages)

		admin.Group(func(standard chi.Router) {
			standard.Use(chimw.Timeout(constants.GlobalRequestTimeout))

			standard.Patch("/{id}", handler.updateStatus)
			standard.Delete("/{id}", handler.deleteChapter)
			standard.Delete("/{id}/images/{imageID}", handler.deleteImage)
			standard.Put("/{id}/images/order", handler.reorderImages)
			standard.Post("/{id}/reconcile", handler.reconcileStorage)
		})
	})
}

// RegisterSeriesRoutes attaches the /series/{id}/chapters endpoints to router.
func (handler *Handler) RegisterSeriesRoutes(router chi.Router) {
	router.Use(chimw.Timeout(constants.GlobalRequestTimeout))

	router.Get("/", handler.listChapters)
	router.Get("/{number}", handler.getChapterByNumber)

	router.With(middleware.RequireAdmin).Post("/", handler.createChapter)
}

// # Chapter Retrieval

/*
GET /api/v1/chapters/{id}.

Response:
  - 200: Chapter
  - 404: ErrNotFound
*/
func (handler *Handler) getChapter(writer http.ResponseWriter, request *http.Request) {
	chapter, err := handler.service.GetChapter(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

/*
GET /api/v1/series/{id}/chapters.

Request:
  - search: string (title contains, case-insensitive)
  - status: string (PUBLISHED, DRAFT, SCHEDULED)
  - sortBy: string (chapterNumber, createdAt, views)
  - sortOrder: string (asc, desc)
  - page, limit: int

Response:
  - 200: []Chapter with pagination meta
  - 404: ErrNotFound: Series not found
*/
func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		Query:   query.Get("search"),
		Status:  Status(query.Get("status")),
		SortBy:  query.Get("sortBy"),
		SortDir: query.Get("sortOrder"),
	}

	// The admin UI sends ALL for "no filter"
	if filter.Status == "ALL" {
		filter.Status = ""
	}

	chapters, total, err := handler.service.ListChapters(request.Context(), requestutil.ID(request, "id"), filter, page)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, chapters, pagination.NewMeta(page.Page, page.Limit, total))
}

/*
GET /api/v1/series/{id}/chapters/{number}.

Response:
  - 200: Reading: chapter, ordered images and the chapter list for navigation
  - 404: ErrNotFound
*/
func (handler *Handler) getChapterByNumber(writer http.ResponseWriter, request *http.Request) {
	number, err := requestutil.IntParam(request, "number")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	reading, err := handler.service.GetChapterByNumber(request.Context(), requestutil.ID(request, "id"), number)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, reading)
}

// GET /api/v1/chapters/{id}/next.
func (handler *Handler) nextChapter(writer http.ResponseWriter, request *http.Request) {
	chapter, err := handler.service.NextChapter(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// GET /api/v1/chapters/{id}/prev.
func (handler *Handler) previousChapter(writer http.ResponseWriter, request *http.Request) {
	chapter, err := handler.service.PreviousChapter(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

/*
POST /api/v1/chapters/{id}/view.

Description: Counts one view per client IP per de-duplication window.

Response:
  - 200: {counted: bool}
  - 404: ErrNotFound
*/
func (handler *Handler) recordView(writer http.ResponseWriter, request *http.Request) {
	counted, err := handler.service.RecordView(request.Context(), requestutil.ID(request, "id"), middleware.RealIP(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]bool{"counted": counted})
}

// # Chapter Management

// chapterRequest is the inbound JSON schema for chapter creation and status changes.
type chapterRequest struct {
	Title         string     `json:"title"`
	ChapterNumber int        `json:"chapterNumber"`
	Status        Status     `json:"status"`
	PublishDate   *time.Time `json:"publishDate"`
	ScheduledDate *time.Time `json:"scheduledDate"`
}

/*
POST /api/v1/series/{id}/chapters.

Response:
  - 201: Chapter
  - 400: Validation
  - 401: Unauthorized
  - 404: Series not found
  - 409: Chapter number already used in the series
*/
func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	var input chapterRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.CreateChapter(request.Context(), CreateInput{
		SeriesID:    requestutil.ID(request, "id"),
		Title:       input.Title,
		Number:      input.ChapterNumber,
		Status:      input.Status,
		PublishDate: input.PublishDate,
		ScheduledAt: input.ScheduledDate,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, chapter)
}

/*
PATCH /api/v1/chapters/{id}.

Request:
  - status: PUBLISHED | DRAFT | SCHEDULED
  - publishDate: RFC 3339 timestamp (optional)
  - scheduledDate: RFC 3339 timestamp (required to schedule an unscheduled chapter)

Response:
  - 200: Chapter
  - 400: Validation
  - 401: Unauthorized
  - 404: ErrNotFound
*/
func (handler *Handler) updateStatus(writer http.ResponseWriter, request *http.Request) {
	var input chapterRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.UpdateStatus(request.Context(), requestutil.ID(request, "id"), StatusChange{
		Status:      input.Status,
		PublishDate: input.PublishDate,
		ScheduledAt: input.ScheduledDate,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, chapter)
}

/*
DELETE /api/v1/chapters/{id}.

Response:
  - 204: Deleted, with its images and stored pages
  - 401: Unauthorized
  - 404: ErrNotFound
*/
func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	if err := handler.service.DeleteChapter(request.Context(), requestutil.ID(request, "id")); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
