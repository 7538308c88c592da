// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/sec"
	"github.com/taibuivan/yomira-toon/internal/platform/validate"
	"github.com/taibuivan/yomira-toon/pkg/uuid"
)

// invalidCredentials is the single message for every failed login.
const invalidCredentials = "Invalid login credentials"

// Service implements administrator login and enrolment.
//
// # Review Process
//
// Changes to hashing or token issuance here affect every protected route.
type Service struct {
	repository AdminRepository
	tokens     TokenProvider
	tokenTTL   time.Duration
	logger     *slog.Logger
	now        func() time.Time

	// dummyHash is compared against when the username is unknown, so both
	// failure paths pay for one bcrypt comparison.
	dummyHash string
}

// NewService constructs a new [Service]. tokenTTL is the lifetime of issued tokens.
func NewService(repository AdminRepository, tokens TokenProvider, tokenTTL time.Duration, logger *slog.Logger) (*Service, error) {
	dummyHash, err := sec.HashPassword(uuid.New())
	if err != nil {
		return nil, err
	}

	return &Service{
		repository: repository,
		tokens:     tokens,
		tokenTTL:   tokenTTL,
		logger:     logger,
		now:        time.Now,
		dummyHash:  dummyHash,
	}, nil
}

// Session is a successful login.
type Session struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Admin       *Admin    `json:"admin"`
}

/*
Login verifies credentials and issues an administrator token.

Description: An unknown username and a wrong password produce the same
apperr.Unauthorized, so accounts cannot be enumerated.

Returns:
  - *Session: The signed token and its expiry
  - error: apperr.Unauthorized, or internal failures
*/
func (service *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	admin, err := service.repository.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if appErr := apperr.As(err); appErr == nil || appErr.HTTPStatus != http.StatusNotFound {
			return nil, err
		}
		sec.CheckPasswordHash(password, service.dummyHash)
		return nil, apperr.Unauthorized(invalidCredentials)
	}

	if !sec.CheckPasswordHash(password, admin.PasswordHash) {
		service.logger.Warn("admin_login_rejected", slog.String("admin_id", admin.ID))
		return nil, apperr.Unauthorized(invalidCredentials)
	}

	issuedAt := service.now()
	token, err := service.tokens.GenerateAccessToken(admin.ID, admin.Username, string(sec.RoleAdmin), service.tokenTTL)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("admin: failed to issue token: %w", err))
	}

	if err := service.repository.RecordLogin(ctx, admin.ID, issuedAt); err != nil {
		service.logger.Warn("admin_login_stamp_failed", slog.String("admin_id", admin.ID), slog.Any("error", err))
	}
	admin.LastLoginAt = &issuedAt

	service.logger.Info("admin_logged_in", slog.String("admin_id", admin.ID))

	return &Session{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   issuedAt.Add(service.tokenTTL),
		Admin:       admin,
	}, nil
}

// CreateInput holds a new administrator's details.
type CreateInput struct {
	Username string
	Email    string
	Name     string
	Password string
}

/*
CreateAdmin validates and stores a new administrator with a bcrypt hash.

Returns:
  - *Admin: The created account
  - error: Validation errors, or apperr.Conflict for a taken username or email
*/
func (service *Service) CreateAdmin(ctx context.Context, input CreateInput) (*Admin, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).MinLen(FieldUsername, input.Username, 3).MaxLen(FieldUsername, input.Username, 64)
	validator.Required(FieldEmail, input.Email)
	if input.Email != "" {
		_, err := mail.ParseAddress(input.Email)
		validator.Custom(FieldEmail, err != nil, "Must be a valid email address")
	}
	validator.MinLen(FieldPassword, input.Password, MinPasswordLength)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(input.Password)
	if err != nil {
		if errors.Is(err, sec.ErrPasswordTooLong) {
			return nil, validate.RequiredError(FieldPassword, "Maximum 72 bytes")
		}
		return nil, apperr.Internal(err)
	}

	admin := &Admin{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: hash,
	}
	if err := service.repository.Create(ctx, admin); err != nil {
		return nil, err
	}

	service.logger.Info("admin_created", slog.String("admin_id", admin.ID), slog.String("username", admin.Username))
	return admin, nil
}
