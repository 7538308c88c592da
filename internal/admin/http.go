// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	requestutil "github.com/taibuivan/yomira-toon/internal/platform/request"
	"github.com/taibuivan/yomira-toon/internal/platform/respond"
	"github.com/taibuivan/yomira-toon/internal/platform/validate"
)

// Handler implements the administrator login endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the /admin endpoints to router.
//
// # Endpoints
//   - POST /login : Authenticates and returns a JWT.
func (handler *Handler) RegisterRoutes(router chi.Router) {
	router.With(chimw.Timeout(constants.GlobalRequestTimeout)).Post("/login", handler.login)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

/*
POST /api/v1/admin/login.

Response:
  - 200: Session: Access token, expiry and the administrator profile
  - 400: ErrValidation: Missing username or password
  - 401: ErrUnauthorized: Invalid credentials
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username)
	validator.Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.service.Login(request.Context(), input.Username, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, session)
}
