// Package filestore keeps uploaded drawings and analysis results on local
// disk. Files are referenced by bare name; the directories are served by the
// web layer under /uploads and /results.
package filestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jrazmi/artplanner/sdk/environment"
	"github.com/jrazmi/artplanner/sdk/validation"
)

var (
	ErrNotImage = errors.New("uploaded file is not an image")
	ErrEmpty    = errors.New("uploaded file is empty")
	ErrBadName  = errors.New("invalid file name")
)

// Options represents the exportable file storage configuration
type Options struct {
	UploadsDir     string `env:"UPLOADS_DIR" default:"uploads"`
	ResultsDir     string `env:"RESULTS_DIR" default:"results"`
	MaxUploadBytes int64  `env:"UPLOAD_MAX_BYTES" default:"10485760"`
}

type Store struct {
	opts Options
	now  func() time.Time
}

// NewFromEnv builds a Store from environment variables.
func NewFromEnv(prefix string) (*Store, error) {
	var opts Options
	if err := environment.ParseEnvTags(prefix, &opts); err != nil {
		return nil, fmt.Errorf("parsing filestore config: %w", err)
	}
	return New(opts)
}

// New creates the upload and result directories if needed.
func New(opts Options) (*Store, error) {
	if opts.UploadsDir == "" || opts.ResultsDir == "" {
		return nil, fmt.Errorf("uploads and results directories are required")
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}

	for _, dir := range []string{opts.UploadsDir, opts.ResultsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", dir, err)
		}
	}

	return &Store{opts: opts, now: time.Now}, nil
}

func (s *Store) UploadsDir() string    { return s.opts.UploadsDir }
func (s *Store) ResultsDir() string    { return s.opts.ResultsDir }
func (s *Store) MaxUploadBytes() int64 { return s.opts.MaxUploadBytes }

// SaveUpload writes an uploaded image as <unix millis>-<sanitized name> and
// returns the stored name. The declared content type and the sniffed one must
// both be images.
func (s *Store) SaveUpload(originalName, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if !isImage(contentType) || !isImage(http.DetectContentType(data)) {
		return "", ErrNotImage
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), validation.SanitizeFilename(originalName))
	if err := writeFile(filepath.Join(s.opts.UploadsDir, name), data); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}

	return name, nil
}

// ReadUploadBase64 returns the stored upload encoded as standard base64.
func (s *Store) ReadUploadBase64(name string) (string, error) {
	path, err := s.path(s.opts.UploadsDir, name)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// RemoveUpload deletes a stored upload. A missing file is not an error.
func (s *Store) RemoveUpload(name string) error {
	path, err := s.path(s.opts.UploadsDir, name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove upload: %w", err)
	}
	return nil
}

// Results names the files written for one analyzed art.
type Results struct {
	ImageName    string
	FeedbackName string
}

// WriteResults stores the annotated image as processed-<artID>.png and the
// feedback as feedback-<artID>.txt. Rewriting the same art replaces both.
func (s *Store) WriteResults(artID string, image []byte, feedback string) (Results, error) {
	if artID == "" || strings.ContainsAny(artID, `/\`) {
		return Results{}, ErrBadName
	}

	res := Results{
		ImageName:    "processed-" + artID + ".png",
		FeedbackName: "feedback-" + artID + ".txt",
	}

	if err := writeFile(filepath.Join(s.opts.ResultsDir, res.ImageName), image); err != nil {
		return Results{}, fmt.Errorf("write processed image: %w", err)
	}
	if err := writeFile(filepath.Join(s.opts.ResultsDir, res.FeedbackName), []byte(feedback)); err != nil {
		return Results{}, fmt.Errorf("write feedback: %w", err)
	}

	return res, nil
}

func (s *Store) path(dir, name string) (string, error) {
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrBadName
	}
	return filepath.Join(dir, name), nil
}

func isImage(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "image/")
}

// writeFile writes through a temp file and rename so readers never see a
// partial file.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}
