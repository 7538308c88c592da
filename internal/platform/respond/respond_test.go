// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package respond_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/respond"
)

/*
TestError_AppError renders the status, code and field details of an AppError.
*/
func TestError_AppError(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, apperr.ValidationError("Validation failed",
		apperr.FieldError{Field: "images", Message: "c.exe is not a supported image"}))

	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	var body respond.ErrorEnvelope
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Details, 1)
	assert.Equal(t, "images", body.Details[0].Field)
}

/*
TestError_HidesInternalCause never leaks unclassified error text.
*/
func TestError_HidesInternalCause(t *testing.T) {
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/", nil)

	respond.Error(recorder, request, errors.New("pq: relation core.chapter does not exist"))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.NotContains(t, recorder.Body.String(), "core.chapter")
}

func TestOK_Envelope(t *testing.T) {
	recorder := httptest.NewRecorder()
	respond.OK(recorder, map[string]int{"count": 3})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"count":3}}`, recorder.Body.String())
}
