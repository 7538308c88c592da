// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package chapter

import (
	"fmt"
	"image"
	"io"
	"mime"
	"slices"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"

	"github.com/taibuivan/yomira-toon/internal/platform/apperr"
	"github.com/taibuivan/yomira-toon/internal/platform/constants"
)

// # Upload Validation

// inspected is an upload that passed every check, with facts learned from its bytes.
type inspected struct {
	upload      Upload
	contentType string
	width       int
	height      int
}

// rejectFile builds the validation error naming the offending file.
func rejectFile(fileName, reason string) *apperr.AppError {
	return apperr.ValidationError(fmt.Sprintf("%s: %s", fileName, reason),
		apperr.FieldError{Field: fileName, Message: reason})
}

// declaredType normalises a client-declared content type ("image/PNG; x=y" -> "image/png").
func declaredType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

/*
checkDeclared validates what the client claims about a file: its type and size.

Description: Runs without reading the body. The type is checked before the
size, so a wrong type is reported even for an oversized file.
*/
func checkDeclared(upload Upload) error {
	contentType := declaredType(upload.ContentType)
	if !slices.Contains(constants.AllowedImageTypes, contentType) {
		return rejectFile(upload.FileName, fmt.Sprintf("unsupported file type %q; allowed: %s",
			upload.ContentType, strings.Join(constants.AllowedImageTypes, ", ")))
	}

	if upload.Size > constants.MaxImageBytes {
		return rejectFile(upload.FileName, fmt.Sprintf("file is %d bytes; the limit is %d bytes",
			upload.Size, constants.MaxImageBytes))
	}

	if upload.Size <= 0 {
		return rejectFile(upload.FileName, "file is empty")
	}

	return nil
}

/*
inspectContent validates the bytes of a file against its declared type.

Description: The content is sniffed with mimetype and must match the declared
type; then the image header is decoded for its pixel dimensions.
*/
func inspectContent(upload Upload) (*inspected, error) {
	contentType := declaredType(upload.ContentType)

	// Sniff the leading bytes
	detected, err := withBody(upload, mimetype.DetectReader)
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, apperr.Internal(fmt.Errorf("chapter: failed to read %s: %w", upload.FileName, err))
	}
	if !sniffedAs(detected, contentType) {
		return nil, rejectFile(upload.FileName, fmt.Sprintf("content is %s, not %s", detected.String(), contentType))
	}

	// Decode dimensions
	config, err := withBody(upload, func(body io.Reader) (image.Config, error) {
		config, _, err := image.DecodeConfig(body)
		return config, err
	})
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, rejectFile(upload.FileName, "image could not be decoded")
	}

	return &inspected{
		upload:      upload,
		contentType: contentType,
		width:       config.Width,
		height:      config.Height,
	}, nil
}

// sniffedAs reports whether detected, or one of the types it specialises,
// is contentType. An animated PNG is detected as image/vnd.mozilla.apng and
// still satisfies image/png.
func sniffedAs(detected *mimetype.MIME, contentType string) bool {
	for current := detected; current != nil; current = current.Parent() {
		if current.Is(contentType) {
			return true
		}
	}
	return false
}

// withBody opens the upload, applies read, and closes it again.
func withBody[T any](upload Upload, read func(io.Reader) (T, error)) (T, error) {
	var zero T

	body, err := upload.Open()
	if err != nil {
		return zero, apperr.Internal(fmt.Errorf("chapter: failed to open %s: %w", upload.FileName, err))
	}
	defer body.Close()

	return read(io.LimitReader(body, constants.MaxImageBytes))
}

/*
validateUploads checks a whole request before anything is written.

Description: Declared type and size are checked for every file first, then the
content of every file. The first failure aborts with an error naming that file.
*/
func validateUploads(uploads []Upload) ([]*inspected, error) {
	if len(uploads) == 0 {
		return nil, apperr.ValidationError("At least one image is required",
			apperr.FieldError{Field: constants.UploadFieldName, Message: "No files were uploaded"})
	}

	if len(uploads) > constants.MaxImagesPerUpload {
		return nil, apperr.ValidationError(fmt.Sprintf("At most %d images can be uploaded at once", constants.MaxImagesPerUpload),
			apperr.FieldError{Field: constants.UploadFieldName, Message: "Too many files"})
	}

	for _, upload := range uploads {
		if err := checkDeclared(upload); err != nil {
			return nil, err
		}
	}

	accepted := make([]*inspected, 0, len(uploads))
	for _, upload := range uploads {
		file, err := inspectContent(upload)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, file)
	}

	return accepted, nil
}
