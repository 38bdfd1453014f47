package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
)

var ErrMissingFile = errors.New("missing upload file")

// uploadedFile returns the uploaded workbook and its name. A multipart
// request must carry the file in the "file" field; any other request body is
// taken as the workbook itself, named by the "filename" query parameter.
func uploadedFile(r *http.Request) (string, io.ReadCloser, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		name := r.URL.Query().Get("filename")
		if name == "" {
			name = defaultUploadName
		}
		return filepath.Base(name), r.Body, nil
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil, ErrMissingFile
	}
	if err != nil {
		return "", nil, fmt.Errorf("parse upload: %w", err)
	}

	name := filepath.Base(header.Filename)
	if name == "" || name == "." {
		name = defaultUploadName
	}
	return name, file, nil
}

func uploadStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
