package filestore

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// pngHeader is enough for http.DetectContentType to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dir := t.TempDir()
	s, err := New(Options{
		UploadsDir: filepath.Join(dir, "uploads"),
		ResultsDir: filepath.Join(dir, "results"),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return s
}

func TestSaveUpload(t *testing.T) {
	s := newTestStore(t)

	name, err := s.SaveUpload("../My Sketch.PNG", "image/png", pngHeader)
	if err != nil {
		t.Fatalf("SaveUpload failed: %v", err)
	}
	if name != "1700000000123-my-sketch.png" {
		t.Errorf("Unexpected stored name %q", name)
	}

	encoded, err := s.ReadUploadBase64(name)
	if err != nil {
		t.Fatalf("ReadUploadBase64 failed: %v", err)
	}
	if encoded != base64.StdEncoding.EncodeToString(pngHeader) {
		t.Error("Round-tripped upload does not match")
	}

	if err := s.RemoveUpload(name); err != nil {
		t.Fatalf("RemoveUpload failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.UploadsDir(), name)); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected upload to be removed, stat err %v", err)
	}
	if err := s.RemoveUpload(name); err != nil {
		t.Errorf("Expected removing a missing file to succeed, got %v", err)
	}
}

func TestSaveUpload_Rejects(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.SaveUpload("a.png", "image/png", nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
	if _, err := s.SaveUpload("a.txt", "text/plain", []byte("hello")); !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage, got %v", err)
	}
	if _, err := s.SaveUpload("a.png", "image/png", []byte("not really a png")); !errors.Is(err, ErrNotImage) {
		t.Errorf("Expected ErrNotImage for sniffed text, got %v", err)
	}
	if _, err := s.ReadUploadBase64("../secret"); !errors.Is(err, ErrBadName) {
		t.Errorf("Expected ErrBadName, got %v", err)
	}
}

func TestWriteResults(t *testing.T) {
	s := newTestStore(t)

	res, err := s.WriteResults("art-1", pngHeader, "Good line weight.")
	if err != nil {
		t.Fatalf("WriteResults failed: %v", err)
	}
	if res.ImageName != "processed-art-1.png" || res.FeedbackName != "feedback-art-1.txt" {
		t.Errorf("Unexpected result names %+v", res)
	}

	text, err := os.ReadFile(filepath.Join(s.ResultsDir(), res.FeedbackName))
	if err != nil {
		t.Fatalf("read feedback: %v", err)
	}
	if string(text) != "Good line weight." {
		t.Errorf("Unexpected feedback %q", text)
	}

	entries, err := os.ReadDir(s.ResultsDir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Errorf("Temp file left behind: %s", e.Name())
		}
	}

	if _, err := s.WriteResults("../x", nil, ""); !errors.Is(err, ErrBadName) {
		t.Errorf("Expected ErrBadName, got %v", err)
	}
}
