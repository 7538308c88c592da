// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	"github.com/taibuivan/yomira-toon/internal/platform/ctxutil"
	"github.com/taibuivan/yomira-toon/internal/platform/middleware"
	"github.com/taibuivan/yomira-toon/internal/platform/sec"
)

type httpFixture struct {
	*fixture
	router http.Handler
	token  string
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	tokens := sec.NewTokenServiceFromKeys(key, &key.PublicKey, constants.AuthIssuer)

	token, err := tokens.GenerateAccessToken("a1", "root", string(sec.RoleAdmin), time.Hour)
	require.NoError(t, err)

	fx := newFixture(t)
	handler := NewHandler(fx.service)

	router := chi.NewRouter()
	router.Use(middleware.Authenticate(tokens))
	router.Route("/chapters", handler.RegisterRoutes)
	router.Route("/series/{id}/chapters", handler.RegisterSeriesRoutes)

	return &httpFixture{fixture: fx, router: router, token: token}
}

type part struct {
	name        string
	contentType string
	data        []byte
}

// multipartBody encodes parts under the upload field with explicit content types.
func multipartBody(t *testing.T, parts ...part) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, p := range parts {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, constants.UploadFieldName, p.name))
		header.Set("Content-Type", p.contentType)

		fileWriter, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = fileWriter.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func (fx *httpFixture) do(t *testing.T, method, target string, body *bytes.Buffer, contentType string, authorized bool) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	request := httptest.NewRequest(method, target, body)
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if authorized {
		request.Header.Set("Authorization", "Bearer "+fx.token)
	}

	recorder := httptest.NewRecorder()
	fx.router.ServeHTTP(recorder, request)
	return recorder
}

// decodeData unwraps the {data: ...} envelope into target.
func decodeData(t *testing.T, recorder *httptest.ResponseRecorder, target any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, target))
}

func TestHTTP_UploadLogsAdmin(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, true)

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	router := fx.router
	fx.router = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		router.ServeHTTP(writer, request.WithContext(ctxutil.WithLogger(request.Context(), logger)))
	})

	body, contentType := multipartBody(t, part{"01.png", "image/png", pngBytes(t)})
	recorder := fx.do(t, http.MethodPost, "/chapters/"+chapter.ID+"/upload", body, contentType, true)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	assert.Contains(t, logs.String(), `"msg":"chapter_upload_received"`)
	assert.Contains(t, logs.String(), `"admin_id":"a1"`)
	assert.Contains(t, logs.String(), `"files":1`)
}

func TestHTTP_UploadThenRead(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, true)
	png := pngBytes(t)

	body, contentType := multipartBody(t,
		part{"01.png", "image/png", png},
		part{"02.png", "image/png", png},
		part{"03.jpg", "image/jpeg", jpegBytes(t)},
	)

	recorder := fx.do(t, http.MethodPost, "/chapters/"+chapter.ID+"/upload", body, contentType, true)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var uploaded struct {
		Images []Image `json:"images"`
	}
	decodeData(t, recorder, &uploaded)
	require.Len(t, uploaded.Images, 3)
	for index, image := range uploaded.Images {
		assert.Equal(t, index, image.Order)
		assert.NotEmpty(t, image.ID)
		assert.Contains(t, image.ImageURL, "/chapters/"+chapter.ID+"/")
	}

	recorder = fx.do(t, http.MethodGet, "/chapters/"+chapter.ID+"/images", nil, "", false)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "no-store", recorder.Header().Get("Cache-Control"))

	var listed []Image
	decodeData(t, recorder, &listed)
	require.Len(t, listed, 3)
	assert.Equal(t, uploaded.Images[0].ImageURL, listed[0].ImageURL)
	assert.Equal(t, uploaded.Images[2].ImageURL, listed[2].ImageURL)
}

func TestHTTP_UploadRequiresAdmin(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, true)

	body, contentType := multipartBody(t, part{"01.png", "image/png", pngBytes(t)})
	recorder := fx.do(t, http.MethodPost, "/chapters/"+chapter.ID+"/upload", body, contentType, false)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Unauthorized")
	assert.Zero(t, fx.store.writes)
}

func TestHTTP_UploadNamesRejectedFile(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, true)

	body, contentType := multipartBody(t,
		part{"a.png", "image/png", pngBytes(t)},
		part{"c.exe", "application/x-msdownload", []byte("MZ\x90\x00")},
	)

	recorder := fx.do(t, http.MethodPost, "/chapters/"+chapter.ID+"/upload", body, contentType, true)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "c.exe")
	assert.Zero(t, fx.store.writes)
}

func TestHTTP_UploadRejectsNonMultipart(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, true)

	recorder := fx.do(t, http.MethodPost, "/chapters/"+chapter.ID+"/upload", bytes.NewBufferString(`{}`), "application/json", true)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHTTP_DeleteChapter(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, true)

	body, contentType := multipartBody(t, part{"01.png", "image/png", pngBytes(t)})
	require.Equal(t, http.StatusCreated, fx.do(t, http.MethodPost, "/chapters/"+chapter.ID+"/upload", body, contentType, true).Code)

	assert.Equal(t, http.StatusUnauthorized, fx.do(t, http.MethodDelete, "/chapters/"+chapter.ID, nil, "", false).Code)
	assert.Equal(t, http.StatusNoContent, fx.do(t, http.MethodDelete, "/chapters/"+chapter.ID, nil, "", true).Code)
	assert.Equal(t, http.StatusNotFound, fx.do(t, http.MethodGet, "/chapters/"+chapter.ID+"/images", nil, "", false).Code)
	assert.Empty(t, fx.storedFor(t, chapter.ID))
}

func TestHTTP_UpdateStatus(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, false)

	recorder := fx.do(t, http.MethodPatch, "/chapters/"+chapter.ID,
		bytes.NewBufferString(`{"status":"SCHEDULED","scheduledDate":"2030-01-01T09:00:00Z"}`), "application/json", true)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var updated Chapter
	decodeData(t, recorder, &updated)
	assert.False(t, updated.IsPublished)
	require.NotNil(t, updated.ScheduledAt)

	recorder = fx.do(t, http.MethodPatch, "/chapters/"+chapter.ID, bytes.NewBufferString(`{"status":`), "application/json", true)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHTTP_ReorderRejectsWrongSet(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, true)

	created, err := fx.service.UploadImages(t.Context(), chapter.ID, []Upload{pngUpload(t, "a.png"), pngUpload(t, "b.png")})
	require.NoError(t, err)

	wrong := fmt.Sprintf(`{"imageIds":[%q]}`, created[0].ID)
	recorder := fx.do(t, http.MethodPut, "/chapters/"+chapter.ID+"/images/order", bytes.NewBufferString(wrong), "application/json", true)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	right := fmt.Sprintf(`{"imageIds":[%q,%q]}`, created[1].ID, created[0].ID)
	recorder = fx.do(t, http.MethodPut, "/chapters/"+chapter.ID+"/images/order", bytes.NewBufferString(right), "application/json", true)
	require.Equal(t, http.StatusOK, recorder.Code)

	var images []Image
	decodeData(t, recorder, &images)
	assert.Equal(t, created[1].ID, images[0].ID)
}

func TestHTTP_SeriesChapters(t *testing.T) {
	fx := newHTTPFixture(t)

	create := `{"title":"Prologue","chapterNumber":1,"status":"PUBLISHED"}`
	recorder := fx.do(t, http.MethodPost, "/series/"+fx.seriesID+"/chapters", bytes.NewBufferString(create), "application/json", true)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = fx.do(t, http.MethodPost, "/series/"+fx.seriesID+"/chapters", bytes.NewBufferString(create), "application/json", true)
	assert.Equal(t, http.StatusConflict, recorder.Code)

	recorder = fx.do(t, http.MethodGet, "/series/"+fx.seriesID+"/chapters?status=ALL", nil, "", false)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, strings.Contains(recorder.Body.String(), `"total":1`))

	recorder = fx.do(t, http.MethodGet, "/series/"+fx.seriesID+"/chapters/1", nil, "", false)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"chaptersList"`)

	recorder = fx.do(t, http.MethodGet, "/series/"+fx.seriesID+"/chapters/one", nil, "", false)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestHTTP_RecordView(t *testing.T) {
	fx := newHTTPFixture(t)
	chapter := fx.addChapter(t, 1, true)

	recorder := fx.do(t, http.MethodPost, "/chapters/"+chapter.ID+"/view", nil, "", false)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"counted":true`)

	recorder = fx.do(t, http.MethodPost, "/chapters/"+chapter.ID+"/view", nil, "", false)
	assert.Contains(t, recorder.Body.String(), `"counted":false`)
}
