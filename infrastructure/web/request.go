package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrBodyTooLarge is returned when a request body exceeds the allowed size.
var ErrBodyTooLarge = errors.New("request body too large")

// Param returns the web call parameters from the request.
func Param(r *http.Request, key string) string {
	return r.PathValue(key)
}

// QueryParam returns query parameters from the request.
func QueryParam(r *http.Request, key string) string {
	query := r.URL.Query()
	return query.Get(key)
}

// Decoder represents data that can be decoded.
type Decoder interface {
	Decode(data []byte) error
}

// Validator interface for request validation
type validator interface {
	Validate() error
}

// Decode reads the body of an HTTP request and decodes it into the specified data model.
// If the data model implements the validator interface, the Validate method will be called.
func Decode(r *http.Request, v any) error {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("unable to read request body: %w", err)
	}

	if len(data) == 0 {
		return fmt.Errorf("request body is empty")
	}

	if decoder, ok := v.(Decoder); ok {
		if err := decoder.Decode(data); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
	} else {
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("json decode: %w", err)
		}
	}

	if validator, ok := v.(validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("validation: %w", err)
		}
	}

	return nil
}

// DecodeIfPresent is Decode for optional bodies: an empty body leaves v
// untouched and reports false.
func DecodeIfPresent(r *http.Request, v any) (bool, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return false, fmt.Errorf("unable to read request body: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return false, nil
	}

	r.Body = io.NopCloser(bytes.NewReader(data))
	return true, Decode(r, v)
}

// IsMultipart reports whether the request carries a multipart/form-data body.
func IsMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// UploadedFile is a single file part read fully into memory.
type UploadedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// FormFile parses a multipart body limited to maxBytes and returns the named
// file part. The remaining form values stay available through r.FormValue.
func FormFile(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (UploadedFile, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return UploadedFile{}, ErrBodyTooLarge
		}
		return UploadedFile{}, fmt.Errorf("parse multipart form: %w", err)
	}

	f, hdr, err := r.FormFile(field)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("form file %q: %w", field, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return UploadedFile{}, fmt.Errorf("read form file: %w", err)
	}

	return UploadedFile{
		Filename:    hdr.Filename,
		ContentType: hdr.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}
