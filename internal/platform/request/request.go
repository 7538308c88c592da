// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package requestutil provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-toon/internal/platform/sec"
	"github.com/taibuivan/yomira-toon/internal/platform/validate"
)

// maxJSONBodyBytes caps JSON request bodies.
const maxJSONBodyBytes = 1 << 20

/*
DecodeJSON reads the request body and decodes it into the target structure.

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(writer http.ResponseWriter, request *http.Request, target any) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
IntParam retrieves a named URL parameter and parses it as an integer.

Returns:
  - error: a VALIDATION_ERROR naming the parameter when it is not an integer
*/
func IntParam(request *http.Request, name string) (int, error) {
	value, err := strconv.Atoi(chi.URLParam(request, name))
	if err != nil {
		return 0, validate.RequiredError(name, "Must be an integer")
	}
	return value, nil
}

/*
Claims extracts the authenticated user claims from the request context.

Returns nil if the request is not authenticated.
*/
func Claims(request *http.Request) *sec.AuthClaims {
	return ctxutil.GetClaims(request.Context())
}

/*
ParseMultipart parses a multipart body capped at maxBytes.

Bodies above the cap are reported as PAYLOAD_TOO_LARGE; every other parse
failure (wrong content type, truncated body) is a validation error.
*/
func ParseMultipart(writer http.ResponseWriter, request *http.Request, maxBytes, memoryBytes int64) error {
	request.Body = http.MaxBytesReader(writer, request.Body, maxBytes)

	if err := request.ParseMultipartForm(memoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.PayloadTooLarge("Upload exceeds the maximum request size")
		}
		return apperr.ValidationError("Request must be multipart/form-data")
	}

	return nil
}
