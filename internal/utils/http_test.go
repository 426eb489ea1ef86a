package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/leofalp/recall/providers/ai"
)

type valueResponse struct {
	Value int `json:"value"`
}

// TestDoPostSync_Success verifies that a 200 response with valid JSON is
// unmarshaled into the output struct and returned without error.
func TestDoPostSync_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected bearer header, got %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected json content type, got %q", r.Header.Get("Content-Type"))
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":42}`)
	}))
	defer server.Close()

	_, result, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "test-key", map[string]string{"q": "test"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result == nil || result.Value != 42 {
		t.Fatalf("expected Value=42, got %+v", result)
	}
}

// TestDoPostSync_NoAPIKeyOmitsHeader verifies no-auth callers never send an
// Authorization header.
func TestDoPostSync_NoAPIKeyOmitsHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := r.Header["Authorization"]; ok {
			t.Errorf("expected no Authorization header, got %q", r.Header.Get("Authorization"))
		}
		fmt.Fprint(w, `{"value":1}`)
	}))
	defer server.Close()

	if _, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "", struct{}{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestDoPostSync_Non2xxStatus verifies that a non-2xx HTTP status produces a
// status TransportError carrying the code.
func TestDoPostSync_Non2xxStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, "bad request")
	}))
	defer server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "k", struct{}{})

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transportErr.Kind != ai.TransportStatus || transportErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected status 400 error, got %+v", transportErr)
	}
	if !strings.Contains(err.Error(), "bad request") {
		t.Errorf("expected body preview in error, got %q", err.Error())
	}
}

func TestDoPostSync_MalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{not json`)
	}))
	defer server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), server.Client(), server.URL, "k", struct{}{})

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) || transportErr.Kind != ai.TransportMalformed {
		t.Fatalf("expected malformed TransportError, got %v", err)
	}
}

// TestDoPostSync_UnreachableHost verifies a closed server yields a network error.
func TestDoPostSync_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, _, err := DoPostSync[valueResponse](context.Background(), nil, url, "k", struct{}{})

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) || transportErr.Kind != ai.TransportNetwork {
		t.Fatalf("expected network TransportError, got %v", err)
	}
}

func TestDoPostSync_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, _, err := DoPostSync[valueResponse](ctx, server.Client(), server.URL, "k", struct{}{})

	var transportErr *ai.TransportError
	if !errors.As(err, &transportErr) || transportErr.Kind != ai.TransportTimeout {
		t.Fatalf("expected timeout TransportError, got %v", err)
	}
}
