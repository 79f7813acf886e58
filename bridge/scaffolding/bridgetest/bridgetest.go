// Package bridgetest builds an authenticated handler chain for bridge tests.
package bridgetest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/jrazmi/artplanner/bridge/scaffolding/mid"
	"github.com/jrazmi/artplanner/infrastructure/web"
	"github.com/jrazmi/artplanner/sdk/logger"
)

// Verifier accepts tokens of the form "token-<userID>".
type Verifier struct{}

func (Verifier) VerifyToken(_ context.Context, token string) (string, error) {
	userID, ok := strings.CutPrefix(token, "token-")
	if !ok || userID == "" {
		return "", errors.New("bad token")
	}
	return userID, nil
}

// Token returns a bearer token Verifier accepts for userID.
func Token(userID string) string {
	return "token-" + userID
}

// NewHandler mounts routes under /api behind the errors, panics and
// authenticate middleware.
func NewHandler(register func(api *web.RouteGroup)) http.Handler {
	wh := newWebHandler()
	register(wh.Group("/api", mid.Authenticate(Verifier{})))
	return wh
}

// NewPublicHandler is NewHandler without authentication.
func NewPublicHandler(register func(api *web.RouteGroup)) http.Handler {
	wh := newWebHandler()
	register(wh.Group("/api"))
	return wh
}

func newWebHandler() *web.WebHandler {
	log := logger.NewDiscard()
	return web.NewWebHandler(
		web.WithLogging(log),
		web.WithGlobalMiddleware(mid.Errors(log), mid.Panics()),
	)
}

// Do sends a JSON request (body may be nil) as userID and returns the
// recorded response. An empty userID sends no Authorization header.
func Do(t *testing.T, h http.Handler, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+Token(userID))
	}

	return Serve(h, req)
}

// Serve records h's response to req.
func Serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// DecodeJSON decodes a recorded response body into v.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// PNG is the smallest body content sniffing reports as image/png.
var PNG = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// Upload builds a multipart request carrying one file part and the given
// form fields, sent as userID.
func Upload(t *testing.T, path, userID, field, filename, contentType string, data []byte, fields map[string]string) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="`+field+`"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := mw.CreatePart(hdr)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if userID != "" {
		req.Header.Set("Authorization", "Bearer "+Token(userID))
	}
	return req
}
