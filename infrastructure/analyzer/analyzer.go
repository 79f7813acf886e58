// Package analyzer is the HTTP client for the external drawing analysis
// provider. One call sends a base64 image with the instructor system prompt
// and the user's question, and returns an annotated image and written
// feedback.
package analyzer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrazmi/artplanner/sdk/environment"
	"github.com/jrazmi/artplanner/sdk/logger"
)

const DefaultSystemPrompt = "You are a professional academic drawing instructor. " +
	"Review the student's drawing for construction, proportion, perspective, values and line quality. " +
	"Mark the problem areas directly on the image and explain each correction briefly."

var (
	ErrUpstream      = errors.New("analysis provider error")
	ErrRejected      = errors.New("analysis provider rejected the request")
	ErrBadResponse   = errors.New("malformed analysis response")
	ErrNotConfigured = errors.New("analysis provider url is not configured")
)

// Options represents the exportable analyzer configuration
type Options struct {
	URL          string        `env:"ANALYZER_URL"`
	APIKey       string        `env:"ANALYZER_API_KEY"`
	Timeout      time.Duration `env:"ANALYZER_TIMEOUT" default:"60s"`
	SystemPrompt string        `env:"ANALYZER_SYSTEM_PROMPT"`
}

type Request struct {
	SystemPrompt string `json:"system_prompt"`
	Image        string `json:"image"`
	UserPrompt   string `json:"user_prompt"`
}

type response struct {
	AnnotatedImageBase64 string `json:"annotated_image_base64"`
	AnalysisText         string `json:"analysis_text"`
}

// Result is a decoded provider answer.
type Result struct {
	Image    []byte
	Feedback string
}

type Client struct {
	log  *logger.Logger
	opts Options
	http *http.Client
}

// NewFromEnv builds a Client from environment variables.
func NewFromEnv(prefix string, log *logger.Logger) (*Client, error) {
	var opts Options
	if err := environment.ParseEnvTags(prefix, &opts); err != nil {
		return nil, fmt.Errorf("parsing analyzer config: %w", err)
	}
	return New(log, opts), nil
}

func New(log *logger.Logger, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}

	return &Client{
		log:  log,
		opts: opts,
		http: &http.Client{},
	}
}

// Analyze posts the image and prompt and decodes the annotated image. The
// call is bounded by the configured timeout on top of ctx.
func (c *Client) Analyze(ctx context.Context, imageBase64, userPrompt string) (Result, error) {
	if c.opts.URL == "" {
		return Result{}, ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, err := json.Marshal(Request{
		SystemPrompt: c.opts.SystemPrompt,
		Image:        imageBase64,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.opts.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "analysis provider responded", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		kind := ErrUpstream
		if rejected(resp.StatusCode) {
			kind = ErrRejected
		}
		return Result{}, fmt.Errorf("%w: status %d: %s", kind, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("%w: decode: %v", ErrBadResponse, err)
	}
	if out.AnnotatedImageBase64 == "" {
		return Result{}, fmt.Errorf("%w: missing annotated image", ErrBadResponse)
	}

	image, err := base64.StdEncoding.DecodeString(out.AnnotatedImageBase64)
	if err != nil {
		return Result{}, fmt.Errorf("%w: image: %v", ErrBadResponse, err)
	}

	return Result{Image: image, Feedback: out.AnalysisText}, nil
}

// rejected is a 4xx that retrying the same request will not fix.
func rejected(status int) bool {
	return status >= 400 && status < 500 &&
		status != http.StatusRequestTimeout && status != http.StatusTooManyRequests
}
