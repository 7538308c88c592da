// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/taibuivan/yomira-toon/internal/platform/constants"
	"github.com/taibuivan/yomira-toon/internal/platform/ctxutil"
	requestutil "github.com/taibuivan/yomira-toon/internal/platform/request"
	"github.com/taibuivan/yomira-toon/internal/platform/respond"
	"github.com/taibuivan/yomira-toon/pkg/slice"
)

// # Image Delivery

/*
GET /api/v1/chapters/{id}/images.

Description: The ordered page list for the reader. Always read from the
catalog; responses must not be cached. The list is wrapped in the standard
envelope, so the body is {"data": [...]} rather than a bare array.

Response:
  - 200: {data: []Image} sorted by order
  - 404: ErrNotFound
*/
func (handler *Handler) listImages(writer http.ResponseWriter, request *http.Request) {
	images, err := handler.service.ListImages(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	writer.Header().Set("Cache-Control", "no-store")
	respond.OK(writer, images)
}

// # Image Management

/*
POST /api/v1/chapters/{id}/upload.

Description: Multipart upload of page images under the "images" field. Files
are appended after the chapter's last page, in request order. The created
pages sit under the envelope's data key, as {"data": {"images": [...]}}.

Response:
  - 201: {data: {images: []Image}}
  - 400: Validation, naming the offending file
  - 401: Unauthorized
  - 404: Chapter not found
  - 413: Request body too large
*/
func (handler *Handler) uploadImages(writer http.ResponseWriter, request *http.Request) {
	if err := requestutil.ParseMultipart(writer, request, constants.MaxUploadRequestBytes, constants.MultipartMemoryBytes); err != nil {
		respond.Error(writer, request, err)
		return
	}
	defer func() { _ = request.MultipartForm.RemoveAll() }()

	uploads := slice.Map(request.MultipartForm.File[constants.UploadFieldName], uploadFromPart)
	chapterID := requestutil.ID(request, "id")

	if claims := requestutil.Claims(request); claims != nil {
		ctxutil.GetLogger(request.Context()).InfoContext(request.Context(), "chapter_upload_received",
			slog.String("admin_id", claims.UserID),
			slog.String("chapter_id", chapterID),
			slog.Int("files", len(uploads)),
		)
	}

	images, err := handler.service.UploadImages(request.Context(), chapterID, uploads)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{constants.FieldImages: images})
}

// uploadFromPart adapts a multipart file part to an [Upload].
func uploadFromPart(header *multipart.FileHeader) Upload {
	return Upload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Open: func() (io.ReadCloser, error) {
			return header.Open()
		},
	}
}

// deleteImage handles DELETE /api/v1/chapters/{id}/images/{imageID}.
func (handler *Handler) deleteImage(writer http.ResponseWriter, request *http.Request) {
	err := handler.service.DeleteImage(request.Context(), requestutil.ID(request, "id"), requestutil.ID(request, "imageID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// reorderRequest lists every image ID of the chapter in the desired order.
type reorderRequest struct {
	ImageIDs []string `json:"imageIds"`
}

/*
PUT /api/v1/chapters/{id}/images/order.

Response:
  - 200: []Image in the new order
  - 400: The IDs are not exactly the chapter's images
*/
func (handler *Handler) reorderImages(writer http.ResponseWriter, request *http.Request) {
	var input reorderRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	images, err := handler.service.ReorderImages(request.Context(), requestutil.ID(request, "id"), input.ImageIDs)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, images)
}

// reconcileStorage handles POST /api/v1/chapters/{id}/reconcile.
func (handler *Handler) reconcileStorage(writer http.ResponseWriter, request *http.Request) {
	report, err := handler.service.ReconcileStorage(request.Context(), requestutil.ID(request, "id"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, report)
}
