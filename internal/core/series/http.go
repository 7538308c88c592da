// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package series

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	"github.com/taibuivan/yomira-toon/internal/platform/middleware"
	requestutil "github.com/taibuivan/yomira-toon/internal/platform/request"
	"github.com/taibuivan/yomira-toon/internal/platform/respond"
	"github.com/taibuivan/yomira-toon/pkg/convert"
	"github.com/taibuivan/yomira-toon/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for series.
type Handler struct {
	service *Service
}

// NewHandler constructs a new series [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the /series endpoints to router.
//
// Routes are grouped so the caller can still mount sub-routers (chapters) on
// the same router afterwards.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.Group(func(group chi.Router) {
		group.Use(chimw.Timeout(constants.GlobalRequestTimeout))

		group.Get("/", handler.listSeries)
		group.Get("/{id}", handler.getSeries)

		group.With(middleware.RequireAdmin).Post("/", handler.createSeries)
		group.With(middleware.RequireAdmin).Patch("/{id}", handler.updateSeries)
	})
}

/*
GET /api/v1/series.

Request:
  - q: string (title or author contains)
  - status: string (ongoing, completed, hiatus, cancelled)
  - featured: bool
  - sortBy: string (views, updatedAt, createdAt)
  - sortOrder: string (asc, desc)
  - page, limit: int

Response:
  - 200: []Series with pagination meta
*/
func (handler *Handler) listSeries(writer http.ResponseWriter, request *http.Request) {
	page := pagination.FromRequest(request)
	query := request.URL.Query()

	filter := Filter{
		Query:    query.Get("q"),
		Status:   Status(query.Get("status")),
		Featured: convert.ToBoolPtr(query.Get("featured")),
		SortBy:   query.Get("sortBy"),
		SortDir:  query.Get("sortOrder"),
	}

	list, total, err := handler.service.ListSeries(request.Context(), filter, page.Limit, page.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, list, pagination.NewMeta(page.Page, page.Limit, total))
}

/*
GET /api/v1/series/{id}.

Response:
  - 200: Series
  - 404: ErrNotFound
*/
func (handler *Handler) getSeries(writer http.ResponseWriter, request *http.Request) {
	series, err := handler.service.GetSeries(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, series)
}

type createRequest struct {
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description"`
	CoverURL    string `json:"coverUrl"`
	Status      Status `json:"status"`
	IsFeatured  bool   `json:"isFeatured"`
}

/*
POST /api/v1/series.

Response:
  - 201: Series
  - 400: ErrValidation
  - 409: ErrConflict: Slug already taken
*/
func (handler *Handler) createSeries(writer http.ResponseWriter, request *http.Request) {
	var input createRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	series, err := handler.service.CreateSeries(request.Context(), CreateInput(input))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, series)
}

/*
PATCH /api/v1/series/{id}.

Response:
  - 200: Series
  - 400: ErrValidation
  - 404: ErrNotFound
*/
func (handler *Handler) updateSeries(writer http.ResponseWriter, request *http.Request) {
	var update Update
	if err := requestutil.DecodeJSON(writer, request, &update); err != nil {
		respond.Error(writer, request, err)
		return
	}

	series, err := handler.service.UpdateSeries(request.Context(), requestutil.ID(request, "id"), update)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, series)
}
