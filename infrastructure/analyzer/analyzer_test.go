package analyzer_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrazmi/artplanner/infrastructure/analyzer"
	"github.com/jrazmi/artplanner/sdk/logger"
)

func TestAnalyze_Success(t *testing.T) {
	var got analyzer.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("Expected bearer key, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"annotated_image_base64": base64.StdEncoding.EncodeToString([]byte("png-bytes")),
			"analysis_text":          "Shorten the forearm.",
		})
	}))
	defer srv.Close()

	c := analyzer.New(logger.NewDiscard(), analyzer.Options{URL: srv.URL, APIKey: "secret"})

	res, err := c.Analyze(context.Background(), "aW1n", "hands?")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if string(res.Image) != "png-bytes" || res.Feedback != "Shorten the forearm." {
		t.Errorf("Unexpected result %+v", res)
	}
	if got.Image != "aW1n" || got.UserPrompt != "hands?" || got.SystemPrompt != analyzer.DefaultSystemPrompt {
		t.Errorf("Unexpected request %+v", got)
	}
}

func TestAnalyze_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "upstream status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusBadGateway)
			},
			want: analyzer.ErrUpstream,
		},
		{
			name: "rejected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "image too large", http.StatusRequestEntityTooLarge)
			},
			want: analyzer.ErrRejected,
		},
		{
			name: "rate limited is retryable",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "slow down", http.StatusTooManyRequests)
			},
			want: analyzer.ErrUpstream,
		},
		{
			name: "missing image",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"analysis_text":"x"}`))
			},
			want: analyzer.ErrBadResponse,
		},
		{
			name: "bad base64",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"annotated_image_base64":"%%%","analysis_text":"x"}`))
			},
			want: analyzer.ErrBadResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := analyzer.New(logger.NewDiscard(), analyzer.Options{URL: srv.URL})
			if _, err := c.Analyze(context.Background(), "aW1n", ""); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestAnalyze_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := analyzer.New(logger.NewDiscard(), analyzer.Options{URL: srv.URL, Timeout: 50 * time.Millisecond})
	if _, err := c.Analyze(context.Background(), "aW1n", ""); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected deadline exceeded, got %v", err)
	}
}

func TestAnalyze_NotConfigured(t *testing.T) {
	c := analyzer.New(logger.NewDiscard(), analyzer.Options{})
	if _, err := c.Analyze(context.Background(), "aW1n", ""); !errors.Is(err, analyzer.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}
